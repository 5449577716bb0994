// Package rng provides the engine's deterministic random stream (spec
// §1 "Random source": "the engine consumes an injectable deterministic
// random stream; it does not define an RNG [as a strategy component]").
// No example in the pack carries a dice/PRNG library (the teacher's
// combat math in ships/compute.go is entirely deterministic formulas),
// so this is one of the few places the module falls back to the
// standard library: math/rand/v2's PCG source is seeded, deterministic,
// and — uniquely among stdlib RNGs — supports AppendBinary/UnmarshalBinary,
// which is exactly the serializable-snapshot requirement of spec §6.3
// and property P8 (replay determinism). See DESIGN.md for the
// no-third-party-alternative justification.
package rng

import (
	"encoding/binary"
	"math/rand/v2"
)

// Stream is the engine's injectable random source boundary. GameState
// holds one; all dice rolls and shuffles go through it so that replaying
// an intent log against the same seed reproduces identical states.
type Stream struct {
	pcg *rand.PCG
	r   *rand.Rand
}

// New derives a Stream from a seed byte slice (spec StartGame.seed).
func New(seed []byte) *Stream {
	var s1, s2 uint64
	padded := make([]byte, 16)
	copy(padded, seed)
	s1 = binary.LittleEndian.Uint64(padded[0:8])
	s2 = binary.LittleEndian.Uint64(padded[8:16])
	pcg := rand.NewPCG(s1, s2)
	return &Stream{pcg: pcg, r: rand.New(pcg)}
}

// IntN returns a uniform value in [0, n).
func (s *Stream) IntN(n int) int {
	return s.r.IntN(n)
}

// D10 rolls one ten-sided die (TI4 combat/vote-tie dice), returning 1-10.
func (s *Stream) D10() int {
	return s.r.IntN(10) + 1
}

// Shuffle permutes a slice of length n in place using swap(i, j).
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}

// MarshalBinary serializes the stream's PCG state for snapshotting.
func (s *Stream) MarshalBinary() ([]byte, error) {
	return s.pcg.MarshalBinary()
}

// UnmarshalBinary restores the stream's PCG state from a snapshot.
func (s *Stream) UnmarshalBinary(data []byte) error {
	if s.pcg == nil {
		s.pcg = &rand.PCG{}
	}
	if err := s.pcg.UnmarshalBinary(data); err != nil {
		return err
	}
	s.r = rand.New(s.pcg)
	return nil
}
