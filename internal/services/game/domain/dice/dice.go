// Package dice implements the seedable dice rolls the turn engine depends on.
package dice

import (
	"errors"
	"math/rand"

	"github.com/fableforge/fableforge/internal/platform/random"
)

// Die sizes used by the engine.
const (
	// D20 drives initiative rolls.
	D20 = 20
	// D100 drives option outcome checks.
	D100 = 100
)

// ErrInvalidSpec indicates a roll request has invalid sides or count.
var ErrInvalidSpec = errors.New("dice must have positive sides and count")

// Roll rolls count dice with the given number of sides.
//
// Roll is deterministic with respect to seed: the same seed, sides, and
// count always produce the same results in the same order.
func Roll(seed int64, sides, count int) ([]int, error) {
	if sides <= 0 || count <= 0 {
		return nil, ErrInvalidSpec
	}

	rng := rand.New(rand.NewSource(seed))
	results := make([]int, count)
	for i := range results {
		results[i] = rng.Intn(sides) + 1
	}
	return results, nil
}

// Roller produces a single die result per call. The engine takes a Roller
// so tests can stub exact draws.
type Roller interface {
	Roll(sides int) (int, error)
}

// SeededRoller draws a fresh cryptographic seed for every roll.
type SeededRoller struct {
	// Seed overrides the seed source; nil uses random.NewSeed.
	Seed func() (int64, error)
}

// Roll returns a uniform result in [1, sides].
func (r SeededRoller) Roll(sides int) (int, error) {
	seedFn := r.Seed
	if seedFn == nil {
		seedFn = random.NewSeed
	}
	seed, err := seedFn()
	if err != nil {
		return 0, err
	}
	results, err := Roll(seed, sides, 1)
	if err != nil {
		return 0, err
	}
	return results[0], nil
}
