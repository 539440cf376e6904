// Package sampler picks bounded, non-repeating random subsets of a pool.
package sampler

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// ErrInvalidSampleSize means more elements were requested than the pool holds.
// Callers must clamp before sampling; hitting this is a programming error.
var ErrInvalidSampleSize = errors.New("invalid sample size")

// Source is the entropy the sampler draws from. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Sampler draws uniform samples without replacement.
type Sampler struct {
	mu  sync.Mutex
	src Source
}

// New creates a Sampler over the given entropy source.
func New(src Source) *Sampler {
	return &Sampler{src: src}
}

// NewSeeded creates a Sampler with a private math/rand generator.
// A zero seed uses the current time.
func NewSeeded(seed int64) *Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return New(rand.New(rand.NewSource(seed)))
}

// Intn returns a value in [0, n) from the sampler's source.
func (s *Sampler) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Intn(n)
}

// IntRange returns a value in [lo, hi]. An inverted range yields lo.
func (s *Sampler) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.Intn(hi-lo+1)
}

// Sample returns n distinct elements of pool chosen uniformly at random.
// The pool itself is left untouched.
func Sample[T any](s *Sampler, pool []T, n int) ([]T, error) {
	if n < 0 || n > len(pool) {
		return nil, fmt.Errorf("%w: requested %d from pool of %d", ErrInvalidSampleSize, n, len(pool))
	}
	out := make([]T, 0, n)
	if n == 0 {
		return out, nil
	}

	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}

	// Partial Fisher-Yates: the first n slots end up holding a uniform n-subset.
	s.mu.Lock()
	for i := 0; i < n; i++ {
		j := i + s.src.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	s.mu.Unlock()

	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out, nil
}
