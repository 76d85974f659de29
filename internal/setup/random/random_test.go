package random

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeRandomShrinksPool(t *testing.T) {
	src := NewSeeded(7)
	pool := []string{"a", "b", "c", "d", "e"}
	original := append([]string(nil), pool...)

	seen := make(map[string]bool)
	for n := len(pool); n > 0; n-- {
		item, err := TakeRandom(src, &pool)
		require.NoError(t, err)
		assert.Contains(t, original, item)
		assert.False(t, seen[item], "item %s drawn twice", item)
		seen[item] = true
		assert.Len(t, pool, n-1)
	}
	assert.Len(t, seen, len(original))
}

func TestTakeRandomEmptyPool(t *testing.T) {
	var pool []int
	_, err := TakeRandom(NewSeeded(1), &pool)
	assert.True(t, errors.Is(err, ErrEmptyPool))
}

func TestTakeRandomKeepsOrder(t *testing.T) {
	pool := []int{10, 20, 30, 40}
	item, err := TakeRandom(NewSequence(1), &pool)
	require.NoError(t, err)
	assert.Equal(t, 20, item)
	assert.Equal(t, []int{10, 30, 40}, pool)
}

func TestSeededDeterministic(t *testing.T) {
	a := NewSeeded(12345)
	b := NewSeeded(12345)
	for i := 0; i < 20; i++ {
		require.Equal(t, a.IntN(100000), b.IntN(100000), "mismatch at %d", i)
	}
}

func TestSeedWordChangesWithSalt(t *testing.T) {
	assert.NotEqual(t, seedWord(99, "a"), seedWord(99, "b"))
}

func TestSequence(t *testing.T) {
	seq := NewSequence(3, 5)
	assert.Equal(t, 1, seq.IntN(2))
	assert.Equal(t, 2, seq.IntN(3))
	assert.Equal(t, 0, seq.IntN(3))
}

func TestLocked(t *testing.T) {
	locked := NewLocked(NewSequence(4))
	assert.Equal(t, 4, locked.IntN(10))
}

func TestNewSeed(t *testing.T) {
	_, err := NewSeed()
	assert.NoError(t, err)
}
