package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/pricing"
)

// DraftRepository holds the in-progress order of each session until it is
// submitted or cancelled. Drafts expire when left untouched.
type DraftRepository interface {
	// Get returns (nil, nil) when the session has no draft.
	Get(ctx context.Context, storeID uuid.UUID, sessionID string) (*pricing.Draft, error)
	Save(ctx context.Context, draft *pricing.Draft) error
	Delete(ctx context.Context, storeID uuid.UUID, sessionID string) error
}
