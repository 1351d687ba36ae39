package qpgen

import rand2 "bitbucket.org/MaVo159/rand"

// NewMersenneRand returns an Rng seeded deterministically, for property
// tests that need the exact same sequence of generated QPs across runs.
// Grounded on bench_test.go's
// `optim.Rand = rand2.New(rand2.NewMersenneTwister(seed))`.
func NewMersenneRand(seed int64) Rng {
	return rand2.New(rand2.NewMersenneTwister(seed))
}
