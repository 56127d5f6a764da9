package track

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEntity is returned when registering a name that is
	// already tracked for the same owner after normalization.
	ErrDuplicateEntity = errors.New("entity already tracked")

	// ErrEntityNotFound is returned when neither an exact nor a fuzzy
	// name lookup clears the similarity threshold.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrSourceUnreadable marks a single source whose text cannot be
	// scanned. Backfill skips such sources instead of aborting.
	ErrSourceUnreadable = errors.New("source unreadable")
)

// PersistenceError wraps a storage failure during mention writes. The
// scan unit that produced the writes is rolled back; the entity
// registration it belongs to is not.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
