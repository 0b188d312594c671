// Package generator provides the sources the video service draws synthetic
// upload metadata from: identifiers, the current time and random numbers.
// Production code uses the UUID, system clock and math/rand implementations;
// tests plug in the fixed ones.
package generator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator issues fresh record identifiers.
type IDGenerator interface {
	NewID() string
}

// Clock tells the current time.
type Clock interface {
	Now() time.Time
}

// RandSource returns a pseudo-random integer in [0, n).
type RandSource interface {
	Intn(n int) int
}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SystemClock reports the wall clock in UTC, truncated to milliseconds.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// LockedRand is a math/rand source safe for concurrent use.
type LockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rnd.Intn(n)
}

// Sequence hands out the given ids in order and starts over when exhausted.
type Sequence struct {
	mu   sync.Mutex
	ids  []string
	next int
}

func NewSequence(ids ...string) *Sequence {
	return &Sequence{ids: ids}
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.ids[s.next%len(s.ids)]
	s.next++

	return id
}

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// FixedRand returns Value for every draw, clamped into [0, n).
type FixedRand struct {
	Value int
}

func (r FixedRand) Intn(n int) int {
	if r.Value >= n {
		return n - 1
	}
	if r.Value < 0 {
		return 0
	}

	return r.Value
}
