package port

import (
	"context"

	"github.com/marketfront/cartstate/internal/domain"
)

// Notifier delivers user-facing notifications fire-and-forget. Callers never
// depend on delivery; implementations must not block on failure.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}
