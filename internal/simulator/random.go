package simulator

import (
	"math/rand/v2"
)

// RandomSource yields uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// GlobalSource draws from the process-wide generator and is safe for
// concurrent use.
var GlobalSource RandomSource = globalSource{}

// NewSeededSource returns a reproducible source. It must not be shared
// between goroutines.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSourceFunc returns a constructor that hands out independent seeded
// sources derived from seed, one per call.
func NewSourceFunc(seed uint64) func() RandomSource {
	parent := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() RandomSource {
		return rand.New(rand.NewPCG(parent.Uint64(), parent.Uint64()))
	}
}
