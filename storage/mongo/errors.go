package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/voicetrack/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// classify wraps a driver error with the storage error kind it represents.
// Server selection timeouts are reported by mongo.IsTimeout.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w: %w", op, storage.ErrConstraintViolation, err)
	case errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%s: %w: %w", op, storage.ErrStorageClosed, err)
	case mongo.IsNetworkError(err),
		mongo.IsTimeout(err),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, storage.ErrConnection, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
