// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/domain/entity"
)

// GroupRegistry defines the persistence operations for mutual connection groups.
type GroupRegistry interface {
	// Create persists a new group in the FORMING state.
	Create(ctx context.Context, group *entity.MutualGroup) error

	// FindByID retrieves a group by its ID. Returns nil when it does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.MutualGroup, error)

	// FindByIDForUpdate retrieves a group and locks its row until the surrounding
	// transaction ends, serializing concurrent recounts of the same group.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.MutualGroup, error)

	// PromoteToActive moves a FORMING group to ACTIVE.
	// Returns false without error if the group was not FORMING.
	PromoteToActive(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkStalled moves a FORMING group to STALLED.
	// Returns false without error if the group was not FORMING.
	MarkStalled(ctx context.Context, id uuid.UUID) (bool, error)

	// ListWithCounts retrieves all groups with their invitation tallies, newest first.
	ListWithCounts(ctx context.Context) ([]*entity.MutualGroupSummary, error)
}

// Transactor runs a function inside a single storage transaction.
// Repositories called with the context passed to fn take part in the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
