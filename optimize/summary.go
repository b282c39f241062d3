package optimize

import (
	"bitbucket.org/Davydov/cdsopt/objective"
)

// Summary is storing walk summary information.
type Summary struct {
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// Steps is the number of completed mutation steps.
	Steps int `json:"steps"`
	// Evaluations is the number of objective calls.
	Evaluations int `json:"evaluations"`
	// Accepted is the number of accepted mutations.
	Accepted int `json:"accepted"`
	// AcceptanceRate is accepted/steps.
	AcceptanceRate float64 `json:"acceptanceRate"`
	// InitialFitness is the fitness of the starting CDS.
	InitialFitness float64 `json:"initialFitness"`
	// FinalFitness is the best fitness.
	FinalFitness float64 `json:"finalFitness"`
	// Measures of the last evaluated sequence.
	Measures objective.Measures `json:"measures"`
	// FinalCDS is the best sequence.
	FinalCDS string `json:"finalCDS"`
	// Error is set if the walk failed.
	Error string `json:"error,omitempty"`
}

// Summary returns the walk summary.
func (w *AdaptiveWalk) Summary() Summary {
	steps := 0
	if w.step > 0 {
		steps = w.step - 1
	}
	s := Summary{
		Seed:           w.seed,
		Steps:          steps,
		Evaluations:    w.calls,
		Accepted:       w.accepted,
		InitialFitness: w.initial,
		FinalFitness:   w.best,
		Measures:       w.res.Measures,
		FinalCDS:       w.cds.RNA(),
	}
	if steps > 0 {
		s.AcceptanceRate = float64(w.accepted) / float64(steps)
	}
	if w.err != nil {
		s.Error = w.err.Error()
	}
	return s
}
