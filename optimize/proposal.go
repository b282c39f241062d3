package optimize

import (
	"math/rand"
)

// DiscreteProposal returns a random state out of nstates which is
// different from the current state. Every other state has the same
// probability.
func DiscreteProposal(rng *rand.Rand, state int, nstates int) (newstate int) {
	if nstates <= 1 {
		panic("number of states should be at least 2")
	}
	if state < 0 || state >= nstates {
		panic("incorrect state")
	}
	newstate = rng.Intn(nstates - 1)
	if newstate >= state {
		newstate++
	}
	return
}
