package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// IDSource hands out identifiers for products, transactions and entries.
// IDs only need to be unique within one running instance.
type IDSource interface {
	NewID() string
}

// UUIDSource generates random UUIDs.
type UUIDSource struct{}

func (UUIDSource) NewID() string { return uuid.NewString() }

// SequenceSource generates prefix-1, prefix-2, ... and is safe for
// concurrent use. Used by tests and demo scenarios for readable IDs.
type SequenceSource struct {
	Prefix string

	mu   sync.Mutex
	next int
}

func NewSequenceSource(prefix string) *SequenceSource {
	return &SequenceSource{Prefix: prefix}
}

func (s *SequenceSource) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.Prefix, s.next)
}

// =============================================================================
// CLOCK
// =============================================================================

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns At.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
