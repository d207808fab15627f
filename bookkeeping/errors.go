package bookkeeping

import (
	"errors"
	"fmt"

	"github.com/warp/books-engine/ledger"
)

var (
	// ErrInvalidSnapshot is returned for imports that are not a valid backup.
	ErrInvalidSnapshot = errors.New("invalid file format")

	// ErrPersist is returned when the new state could not be saved. The
	// in-memory state has already advanced.
	ErrPersist = errors.New("failed to persist snapshot")
)

const (
	KindInvalidSnapshot ledger.ErrorKind = "InvalidSnapshot"
	KindPersist         ledger.ErrorKind = "Persist"
)

// InvalidSnapshotError explains why an import was rejected.
type InvalidSnapshotError struct {
	Reason string
	Cause  error
}

func (e *InvalidSnapshotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrInvalidSnapshot, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidSnapshot, e.Reason)
}

// Unwrap exposes only the sentinel. Cause is kept for the message.
func (e *InvalidSnapshotError) Unwrap() error { return ErrInvalidSnapshot }

func (e *InvalidSnapshotError) Kind() ledger.ErrorKind { return KindInvalidSnapshot }

// PersistError wraps the store failure.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPersist, e.Err)
}

func (e *PersistError) Unwrap() []error { return []error{ErrPersist, e.Err} }

func (e *PersistError) Kind() ledger.ErrorKind { return KindPersist }
