package mutual

import (
	"context"
	"fmt"
	"time"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

// GetLowUsageUsersInput represents the input for the candidate finder.
type GetLowUsageUsersInput struct {
	ThresholdMinutes int
}

// GetLowUsageUsersOutput holds the candidates, least active first.
type GetLowUsageUsersOutput struct {
	Candidates []*entity.LowUsageCandidate
	MonthStart time.Time
}

// GetLowUsageUsersUseCase finds active subscribers who watched less than the threshold this month.
type GetLowUsageUsersUseCase struct {
	directory adapter.SubscriberDirectory
	now       func() time.Time
}

// NewGetLowUsageUsersUseCase creates a new GetLowUsageUsersUseCase instance.
func NewGetLowUsageUsersUseCase(directory adapter.SubscriberDirectory) *GetLowUsageUsersUseCase {
	return &GetLowUsageUsersUseCase{
		directory: directory,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Execute runs the aggregation for the current calendar month.
func (uc *GetLowUsageUsersUseCase) Execute(ctx context.Context, input GetLowUsageUsersInput) (*GetLowUsageUsersOutput, error) {
	if input.ThresholdMinutes < 0 {
		return nil, domainerror.NewMutualError(
			domainerror.ErrCodeInvalidThreshold,
			"threshold minutes must not be negative",
			domainerror.ErrInvalidThreshold,
		)
	}

	monthStart := startOfMonth(uc.now())
	candidates, err := uc.directory.FindLowUsageSubscribers(ctx, input.ThresholdMinutes, monthStart)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to find low usage subscribers: %w", err))
	}

	return &GetLowUsageUsersOutput{
		Candidates: candidates,
		MonthStart: monthStart,
	}, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
