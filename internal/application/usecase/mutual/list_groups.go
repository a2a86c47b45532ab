package mutual

import (
	"context"
	"fmt"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
)

// ListGroupsOutput holds every group with its invitation tally, newest first.
type ListGroupsOutput struct {
	Groups []*entity.MutualGroupSummary
}

// ListGroupsUseCase returns the admin overview of all mutual groups.
type ListGroupsUseCase struct {
	registry adapter.GroupRegistry
}

// NewListGroupsUseCase creates a new ListGroupsUseCase instance.
func NewListGroupsUseCase(registry adapter.GroupRegistry) *ListGroupsUseCase {
	return &ListGroupsUseCase{registry: registry}
}

// Execute lists the groups.
func (uc *ListGroupsUseCase) Execute(ctx context.Context) (*ListGroupsOutput, error) {
	groups, err := uc.registry.ListWithCounts(ctx)
	if err != nil {
		return nil, storageError(fmt.Errorf("failed to list groups: %w", err))
	}
	return &ListGroupsOutput{Groups: groups}, nil
}
