// Package ids supplies identifiers and timestamps to every record constructor.
//
// Constructors take a Provider instead of reaching for process-wide random or
// clock state, so tests can pin both.
package ids

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Provider mints identifiers and reads the clock.
type Provider interface {
	// NewID returns a new globally unique identifier
	NewID() string
	// Now returns the current time in UTC
	Now() time.Time
}

type systemProvider struct{}

func (systemProvider) NewID() string  { return uuid.NewString() }
func (systemProvider) Now() time.Time { return time.Now().UTC() }

// System returns the production provider: random v4 UUIDs and the wall clock
// in UTC. It holds no state and is safe for concurrent use.
func System() Provider {
	return systemProvider{}
}

// OrSystem returns p, or System() when p is nil.
func OrSystem(p Provider) Provider {
	if p == nil {
		return System()
	}
	return p
}

// Sequence is a deterministic Provider for tests and fixtures.
type Sequence struct {
	prefix string
	next   int
	now    time.Time
	step   time.Duration
	mu     sync.Mutex
}

// NewSequence returns a provider yielding "<prefix>-1", "<prefix>-2", ...
// and a clock that starts at start and advances by step on every Now call.
func NewSequence(prefix string, start time.Time, step time.Duration) *Sequence {
	return &Sequence{prefix: prefix, next: 1, now: start.UTC(), step: step}
}

// NewID returns the next identifier in the sequence
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("%s-%d", s.prefix, s.next)
	s.next++
	return id
}

// Now returns the current fake time and advances the clock
func (s *Sequence) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now
	s.now = s.now.Add(s.step)
	return t
}
