// Package optimize implements the adaptive random walk over synonymous
// coding sequences.
//
// The walk starts from an initial CDS and at every step mutates a
// single codon to a random synonymous one. The mutant replaces the
// current CDS only if its fitness is strictly higher. Results are
// pulled one step at a time:
//
//	w, err := optimize.NewAdaptiveWalk(cfg)
//	...
//	for w.Next() {
//		r := w.Result()
//		...
//	}
//	if err := w.Err(); err != nil {
//		...
//	}
package optimize

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/cdsopt/codon"
	"bitbucket.org/Davydov/cdsopt/objective"
)

// log is the global logging variable.
var log = logging.MustGetLogger("optimize")

var (
	// ErrInvalidConfig is returned for incorrect walk settings.
	ErrInvalidConfig = errors.New("invalid walk configuration")
	// ErrInvalidInitialSequence is returned if the initial CDS
	// doesn't encode the amino-acid sequence.
	ErrInvalidInitialSequence = errors.New("invalid initial sequence")
	// ErrNoMutableResidue is returned if every amino acid has a
	// single codon, so no mutation is possible.
	ErrNoMutableResidue = errors.New("no mutable residue")
)

// WalkConfig stores settings of a single walk.
type WalkConfig struct {
	// AA is the amino-acid sequence.
	AA string
	// Usage is the codon usage model.
	Usage *codon.Usage
	// Objective is the function to maximize.
	Objective objective.Objective
	// Steps is the number of mutation attempts.
	Steps int
	// InitCDS is the starting sequence; random if nil.
	InitCDS codon.CDS
	// Seed fixes all the random choices; time based if nil.
	Seed *int64
	// Verbose enables logging of the walk progress.
	Verbose bool
}

// Result is emitted for every step, including the initial step 0.
type Result struct {
	// CDS is the best sequence after the step.
	CDS codon.CDS `json:"cds"`
	// Step is 0 for the initial sequence.
	Step int `json:"step"`
	// Measures of the sequence evaluated at this step.
	Measures objective.Measures `json:"measures"`
	// Fitness of the sequence evaluated at this step.
	Fitness float64 `json:"fitness"`
	// BestFitness is the highest fitness so far.
	BestFitness float64 `json:"bestFitness"`
	// Accepted is true if the CDS was replaced at this step. It
	// is false for the initial step.
	Accepted bool `json:"accepted"`
}

// StepError is an error which occurred during a step.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// AdaptiveWalk is a greedy adaptive random walk. It owns its random
// number generator, so several walks never share random state.
type AdaptiveWalk struct {
	cfg  WalkConfig
	seed int64
	rng  *rand.Rand

	// synonyms for every position
	synonyms [][]string
	// positions with at least two synonymous codons
	mutable []int

	cds  codon.CDS
	best float64
	// step is the index of the next step
	step int
	res  Result
	err  error

	calls    int
	accepted int
	initial  float64
}

// NewAdaptiveWalk validates the configuration and creates a walk.
func NewAdaptiveWalk(cfg WalkConfig) (*AdaptiveWalk, error) {
	if cfg.Usage == nil {
		return nil, fmt.Errorf("%w: no codon usage", ErrInvalidConfig)
	}
	if cfg.Objective == nil {
		return nil, fmt.Errorf("%w: no objective", ErrInvalidConfig)
	}
	if cfg.Steps < 0 {
		return nil, fmt.Errorf("%w: negative number of steps (%d)", ErrInvalidConfig, cfg.Steps)
	}
	if len(cfg.AA) == 0 {
		return nil, fmt.Errorf("%w: empty amino-acid sequence", ErrInvalidConfig)
	}

	w := &AdaptiveWalk{
		cfg:      cfg,
		synonyms: make([][]string, len(cfg.AA)),
	}
	for i := 0; i < len(cfg.AA); i++ {
		codons, err := cfg.Usage.CodonsFor(cfg.AA[i])
		if err != nil {
			return nil, fmt.Errorf("%w: position %d: %w", ErrInvalidConfig, i, err)
		}
		w.synonyms[i] = codons
		if len(codons) > 1 {
			w.mutable = append(w.mutable, i)
		}
	}
	if len(w.mutable) == 0 && cfg.Steps > 0 {
		return nil, ErrNoMutableResidue
	}

	if cfg.InitCDS != nil {
		if err := cfg.Usage.Validate(cfg.AA, cfg.InitCDS); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInitialSequence, err)
		}
		w.cds = cfg.InitCDS.Copy()
	}

	if cfg.Seed != nil {
		w.seed = *cfg.Seed
	} else {
		w.seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	w.rng = rand.New(rand.NewSource(w.seed))

	log.Infof("Adaptive walk: %d codons, %d mutable positions, %d steps", len(cfg.AA), len(w.mutable), cfg.Steps)
	return w, nil
}

// Seed returns the seed of the random number generator.
func (w *AdaptiveWalk) Seed() int64 {
	return w.seed
}

// Next performs the next step. It returns false when the walk is
// finished or an error occurred.
func (w *AdaptiveWalk) Next() bool {
	if w.err != nil || w.step > w.cfg.Steps {
		return false
	}
	var err error
	if w.step == 0 {
		err = w.initialize()
	} else {
		err = w.mutate()
	}
	if err != nil {
		w.err = &StepError{Step: w.step, Err: err}
		log.Errorf("Walk failed at step %d: %v", w.step, err)
		return false
	}
	w.step++
	return true
}

// Result returns the result of the last step.
func (w *AdaptiveWalk) Result() Result {
	r := w.res
	r.CDS = r.CDS.Copy()
	return r
}

// Err returns the error which stopped the walk, if any.
func (w *AdaptiveWalk) Err() error {
	return w.err
}

// initialize evaluates the starting sequence.
func (w *AdaptiveWalk) initialize() error {
	if w.cds == nil {
		cds, err := w.cfg.Usage.Random(w.cfg.AA, w.rng)
		if err != nil {
			return err
		}
		w.cds = cds
	}
	f, m, err := w.cfg.Objective.Evaluate(w.cds)
	if err != nil {
		return err
	}
	w.calls++
	w.best = f
	w.initial = f
	if w.cfg.Verbose {
		log.Infof("Initial CDS: %v", w.cds)
		log.Infof("Step: 0, Fitness: %v", f)
	}
	w.res = Result{
		CDS:         w.cds,
		Step:        0,
		Measures:    m,
		Fitness:     f,
		BestFitness: f,
	}
	return nil
}

// mutate proposes a synonymous mutation and accepts it if fitness
// increases.
func (w *AdaptiveWalk) mutate() error {
	pos := w.mutable[w.rng.Intn(len(w.mutable))]
	syn := w.synonyms[pos]
	cur := sort.SearchStrings(syn, w.cds[pos])
	cand := w.cds.With(pos, syn[DiscreteProposal(w.rng, cur, len(syn))])

	f, m, err := w.cfg.Objective.Evaluate(cand)
	if err != nil {
		return err
	}
	w.calls++

	accepted := f > w.best
	if accepted {
		w.cds = cand
		w.best = f
		w.accepted++
		if w.cfg.Verbose {
			log.Infof("New CDS: %v", cand)
		}
	}
	if w.cfg.Verbose {
		log.Infof("Step: %d, Fitness: %v, Best Fitness: %v", w.step, f, w.best)
	}
	w.res = Result{
		CDS:         w.cds,
		Step:        w.step,
		Measures:    m,
		Fitness:     f,
		BestFitness: w.best,
		Accepted:    accepted,
	}
	return nil
}

// Walk runs the whole walk and returns the final result.
func Walk(cfg WalkConfig) (Result, error) {
	w, err := NewAdaptiveWalk(cfg)
	if err != nil {
		return Result{}, err
	}
	var last Result
	for w.Next() {
		last = w.Result()
	}
	return last, w.Err()
}
