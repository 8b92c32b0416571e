package dice

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
)

// Source is the randomness provider for dice rolls.
//
// Every draw advances the source; the engine is single-threaded and
// implementations are not required to be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource implements Source with a PCG generator so a given seed always
// yields the same draw sequence.
type seededSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source for (seed, stream).
//
// Postcondition: Two sources built from the same (seed, stream) produce identical sequences.
func NewSeededSource(seed, stream uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, stream))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.IntN(n)
}

// Stream identifiers used to derive independent generators from one seed.
const (
	simulationStream uint64 = 0x51a7_0001
	commitStream     uint64 = 0xc0a1_0002
)

// Streams holds two logically separate random sources: Simulation feeds the
// probability estimates shown during setup, Commit feeds the rolls that
// decide outcomes. Draws on one never shift the sequence of the other.
type Streams struct {
	Seed       uint64
	Simulation Source
	Commit     Source
}

// NewStreams derives both streams deterministically from seed.
//
// Postcondition: Simulation and Commit are independent seeded sources.
func NewStreams(seed uint64) Streams {
	return Streams{
		Seed:       seed,
		Simulation: NewSeededSource(seed, simulationStream),
		Commit:     NewSeededSource(seed, commitStream),
	}
}

// NewRandomStreams seeds both streams from crypto/rand.
//
// Postcondition: Returns Streams whose Seed records the generated seed, or an error.
func NewRandomStreams() (Streams, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return Streams{}, fmt.Errorf("dice: reading random seed: %w", err)
	}
	return NewStreams(binary.LittleEndian.Uint64(b[:])), nil
}
