// Package audit keeps a bounded, hash-chained trail of review decisions.
package audit

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
)

// Action types for audit events
type Action string

const (
	ActionCreate  Action = "create"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionComment Action = "comment"
)

// ResourceType represents the kind of record acted on
type ResourceType string

const (
	ResourceProposal ResourceType = "proposal"
	ResourcePlan     ResourceType = "plan"
	ResourceAlert    ResourceType = "alert"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// DefaultCapacity is the number of events a trail retains.
const DefaultCapacity = 1024

// ErrChainBroken is returned by Verify when events were altered or reordered.
var ErrChainBroken = errors.New("audit chain broken")

// Event is a single audit entry. Hash covers every other field, so editing
// a recorded event or dropping one from the middle is detectable.
type Event struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	Actor        string       `json:"actor,omitempty"`
	Action       Action       `json:"action"`
	ResourceType ResourceType `json:"resource_type"`
	ResourceID   string       `json:"resource_id,omitempty"`
	Status       Status       `json:"status"`
	Message      string       `json:"message,omitempty"`
	Metadata     metadata.Map `json:"metadata,omitempty"`
	PreviousHash string       `json:"previous_hash"`
	Hash         string       `json:"hash"`
}

func (e *Event) digest() (string, error) {
	c := *e
	c.Hash = ""
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Filter selects events. Zero fields match everything.
type Filter struct {
	Actor        string
	Action       Action
	ResourceType ResourceType
	ResourceID   string
	Status       Status
	StartTime    *time.Time
	EndTime      *time.Time
}

func (f *Filter) matches(e *Event) bool {
	if f == nil {
		return true
	}
	switch {
	case f.Actor != "" && e.Actor != f.Actor,
		f.Action != "" && e.Action != f.Action,
		f.ResourceType != "" && e.ResourceType != f.ResourceType,
		f.ResourceID != "" && e.ResourceID != f.ResourceID,
		f.Status != "" && e.Status != f.Status,
		f.StartTime != nil && e.Timestamp.Before(*f.StartTime),
		f.EndTime != nil && e.Timestamp.After(*f.EndTime):
		return false
	}
	return true
}

// Trail stores events in a circular buffer. Events are chained across
// evictions, so the oldest retained event points at a hash no longer held.
type Trail struct {
	mu       sync.RWMutex
	provider ids.Provider
	events   []*Event
	capacity int
	index    int
	count    int
	total    int64
	lastHash string
}

// NewTrail returns a trail retaining capacity events (DefaultCapacity when
// not positive). Ids and timestamps come from p.
func NewTrail(capacity int, p ids.Provider) *Trail {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Trail{
		provider: ids.OrSystem(p),
		events:   make([]*Event, capacity),
		capacity: capacity,
	}
}

// Record stamps, chains and stores ev, and returns the stored copy.
func (t *Trail) Record(ev Event) (*Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ev.ID == "" {
		ev.ID = t.provider.NewID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = t.provider.Now()
	}
	ev.Timestamp = ev.Timestamp.UTC()
	if ev.Status == "" {
		ev.Status = StatusSuccess
	}
	ev.Metadata = ev.Metadata.Clone()
	ev.PreviousHash = t.lastHash
	hash, err := ev.digest()
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", ev.Action, err)
	}
	ev.Hash = hash

	stored := &ev
	t.events[t.index] = stored
	t.index = (t.index + 1) % t.capacity
	if t.count < t.capacity {
		t.count++
	}
	t.total++
	t.lastHash = hash
	return stored, nil
}

// Events returns the retained events matching filter, oldest first.
func (t *Trail) Events(filter *Filter) []*Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Event, 0, t.count)
	for _, e := range t.ordered() {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Recent returns up to n of the newest events, oldest first.
func (t *Trail) Recent(n int) []*Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	all := t.ordered()
	if n < len(all) {
		all = all[len(all)-n:]
	}
	return all
}

// Total counts every event ever recorded, evicted ones included.
func (t *Trail) Total() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

func (t *Trail) ordered() []*Event {
	out := make([]*Event, 0, t.count)
	start := (t.index - t.count + t.capacity) % t.capacity
	for i := 0; i < t.count; i++ {
		out = append(out, t.events[(start+i)%t.capacity])
	}
	return out
}

// Verify checks every event's hash and that each event links to the one
// before it. The first event's PreviousHash is taken as given.
func Verify(events []*Event) error {
	prev := ""
	for i, e := range events {
		if i > 0 && e.PreviousHash != prev {
			return fmt.Errorf("%w: event %d (%s) does not follow %s", ErrChainBroken, i, e.ID, prev)
		}
		hash, err := e.digest()
		if err != nil {
			return err
		}
		if hash != e.Hash {
			return fmt.Errorf("%w: event %d (%s) hash mismatch", ErrChainBroken, i, e.ID)
		}
		prev = e.Hash
	}
	return nil
}
