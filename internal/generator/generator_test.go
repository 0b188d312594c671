package generator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	gen := UUIDGenerator{}

	first := gen.NewID()
	second := gen.NewID()

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLockedRandStaysInRange(t *testing.T) {
	rnd := NewLockedRand(42)
	for i := 0; i < 1000; i++ {
		n := rnd.Intn(3600)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 3600)
	}
}

func TestSequenceWrapsAround(t *testing.T) {
	seq := NewSequence("a", "b")

	assert.Equal(t, "a", seq.NewID())
	assert.Equal(t, "b", seq.NewID())
	assert.Equal(t, "a", seq.NewID())
}

func TestFixedSources(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, at, FixedClock{At: at}.Now())

	assert.Equal(t, 7, FixedRand{Value: 7}.Intn(10))
	assert.Equal(t, 9, FixedRand{Value: 70}.Intn(10))
	assert.Equal(t, 0, FixedRand{Value: -1}.Intn(10))
}
