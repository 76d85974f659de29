// Package random provides the pool sampling used during setup and the
// pluggable sources it draws from.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"sync"
)

// ErrEmptyPool is returned when drawing from a pool with no elements left.
// Callers are expected to check the pool size first.
var ErrEmptyPool = errors.New("take from empty pool")

// Source yields uniform integers in [0, n)
type Source interface {
	IntN(n int) int
}

// TakeRandom removes a uniformly chosen element from pool and returns it.
// The remaining elements keep their relative order.
func TakeRandom[T any](src Source, pool *[]T) (T, error) {
	var zero T
	if len(*pool) == 0 {
		return zero, ErrEmptyPool
	}
	index := src.IntN(len(*pool))
	item := (*pool)[index]
	*pool = slices.Delete(*pool, index, index+1)
	return item, nil
}

// NewSeeded returns a deterministic source for seed.
func NewSeeded(seed int64) *rand.Rand {
	// Non-cryptographic PRNG is intentional so setups can be replayed from a seed.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Locked serialises access to a source shared by several sessions.
type Locked struct {
	mu  sync.Mutex
	src Source
}

// NewLocked wraps src for concurrent use
func NewLocked(src Source) *Locked {
	return &Locked{src: src}
}

// IntN implements Source
func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// Sequence is a scripted source: each call returns the next value modulo n.
// Once exhausted it keeps returning 0.
type Sequence struct {
	values []int
	next   int
}

// NewSequence builds a scripted source from values
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

// IntN implements Source
func (s *Sequence) IntN(n int) int {
	if s.next >= len(s.values) {
		return 0
	}
	v := s.values[s.next] % n
	s.next++
	return v
}
