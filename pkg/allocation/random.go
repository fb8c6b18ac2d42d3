package allocation

import "math/rand/v2"

// NewRandom returns the random source used by placement searches. A zero seed draws a fresh seed, so
// repeated runs over the same input may produce different schedules.
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}
