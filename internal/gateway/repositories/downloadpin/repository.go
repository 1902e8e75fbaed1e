package downloadpin

import "context"

type Repository interface {
	// Get returns common.ErrorNotFound while no PIN has been stored.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, pin string) error
}
