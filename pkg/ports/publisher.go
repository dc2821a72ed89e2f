package ports

import (
	"context"

	"github.com/aretw0/quiver/pkg/domain"
)

// DiffPublisher fans out structural changes of a session.
// Publishing is best effort: callers log failures and carry on.
type DiffPublisher interface {
	Publish(ctx context.Context, diff *domain.GraphDiff) error
	Close() error
}
