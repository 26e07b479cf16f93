package runtime

import (
	"math/rand/v2"

	"github.com/aretw0/sortvis/pkg/domain"
)

// GenerateArray returns size uniform random bar heights in [domain.MinValue, domain.MaxValue).
func GenerateArray(rng *rand.Rand, size int) []int {
	if size < 0 {
		size = 0
	}
	values := make([]int, size)
	for i := range values {
		values[i] = rng.IntN(domain.MaxValue-domain.MinValue) + domain.MinValue
	}
	return values
}

// newRand returns a PCG source; seed 0 picks a random seed.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
