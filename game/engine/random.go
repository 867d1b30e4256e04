package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// TileSource supplies the randomness used to spawn tiles. *rand.Rand
// satisfies it; tests substitute a scripted source.
type TileSource interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
	// Float64 returns a uniform value in [0.0, 1.0).
	Float64() float64
}

// NewRandomSource returns a pseudo-random TileSource seeded with seed.
func NewRandomSource(seed int64) TileSource {
	return rand.New(rand.NewSource(seed))
}

// NewSeed generates a high-entropy seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ScriptedSource replays fixed choices. Each spawn consumes one cell index
// (reduced modulo the number of empty cells) and one probability sample.
// Exhausted scripts fall back to index 0 and a sample that yields a 2.
type ScriptedSource struct {
	Cells   []int
	Samples []float64
}

// Intn returns the next scripted cell index.
func (s *ScriptedSource) Intn(n int) int {
	if len(s.Cells) == 0 {
		return 0
	}
	v := s.Cells[0]
	s.Cells = s.Cells[1:]
	return ((v % n) + n) % n
}

// Float64 returns the next scripted probability sample.
func (s *ScriptedSource) Float64() float64 {
	if len(s.Samples) == 0 {
		return 0.5
	}
	v := s.Samples[0]
	s.Samples = s.Samples[1:]
	return v
}
