package users

import (
	"context"
	"fmt"
)

// Store persists user records, one document per user id. Timestamps come back in UTC without a
// monotonic reading, so compare them with time.Time.Equal unless they were saved that way.
type Store interface {
	// Save writes the user's document under its id, replacing any previous document.
	Save(ctx context.Context, user User) error
	// Fetch reads the document stored under id.
	Fetch(ctx context.Context, id string) (User, error)
}

// readFailed folds a backend read error into ErrRecordNotFound without dropping the cause.
func readFailed(id string, err error) error {
	return fmt.Errorf("%w: %w: read %s/%s: %w", ErrRecordNotFound, ErrReadFailed, Collection, id, err)
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, Collection, id)
}
