package usecase

import (
	"context"

	domain "github.com/aq2208/storefront-api/internal/entity"
)

// CartPersistence is the durable backend for cart items. One logical key,
// whole-snapshot reads and writes. Load returning (nil, nil) means no
// prior snapshot exists.
type CartPersistence interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, items []domain.CartLine) error
}

// CartEvents receives a message for every committed item mutation.
// Publishing is best-effort; the store ignores errors.
type CartEvents interface {
	Publish(ctx context.Context, msg CartEventMsg) error
}
