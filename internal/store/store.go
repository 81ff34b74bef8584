package store

import (
	"context"
	"errors"

	"meeting-minutes-go/internal/types"
)

// ErrNotFound is returned when no meeting matches the lookup.
var ErrNotFound = errors.New("meeting not found")

// ErrAlreadyExists is returned by Create when a non-deleted meeting already
// holds the same source file ID. Callers rely on this as the atomic
// check-then-act guard against duplicate pipeline runs.
var ErrAlreadyExists = errors.New("meeting already exists for source file")

// Store is durable meeting storage. Update writes the whole record so an
// observer never sees a half-updated stage.
type Store interface {
	Create(ctx context.Context, m *types.Meeting) error
	Get(ctx context.Context, id string) (*types.Meeting, error)
	GetBySourceFileID(ctx context.Context, sourceFileID string) (*types.Meeting, error)
	Update(ctx context.Context, m *types.Meeting) error
	List(ctx context.Context) ([]*types.Meeting, error)
	Delete(ctx context.Context, id string) error
}
