// Package objective implements fitness functions of coding sequences
// combining the codon adaptation index with RNA stability.
package objective

import (
	"errors"
	"fmt"
	"math"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/cdsopt/codon"
	"bitbucket.org/Davydov/cdsopt/fold"
)

// log is the global logging variable.
var log = logging.MustGetLogger("objective")

var (
	// ErrOracle wraps errors returned by a folding oracle.
	ErrOracle = errors.New("folding oracle failure")
	// ErrInvalidConfig is returned for incorrect objective settings.
	ErrInvalidConfig = errors.New("invalid objective configuration")
)

// Kind specifies which measures are set.
type Kind int

const (
	// CAIOnly measures contain CAI.
	CAIOnly Kind = iota
	// CAIAndAUP measures contain CAI and average unpaired
	// probability.
	CAIAndAUP
	// CAIAndEFE measures contain CAI and ensemble free energy.
	CAIAndEFE
)

// String returns the name of the kind as used on the command line.
func (k Kind) String() string {
	switch k {
	case CAIOnly:
		return "none"
	case CAIAndAUP:
		return "aup"
	case CAIAndEFE:
		return "efe"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Measures are metrics computed alongside fitness.
type Measures struct {
	Kind Kind `json:"-"`
	// CAI is the codon adaptation index.
	CAI float64 `json:"cai"`
	// AUP is the average unpaired probability (CAIAndAUP only).
	AUP float64 `json:"aup,omitempty"`
	// EFE is the ensemble free energy (CAIAndEFE only).
	EFE float64 `json:"efe,omitempty"`
}

// Names returns names of the measures set for the kind.
func (k Kind) Names() []string {
	switch k {
	case CAIAndAUP:
		return []string{"CAI", "AUP"}
	case CAIAndEFE:
		return []string{"CAI", "EFE"}
	}
	return []string{"CAI"}
}

// Values returns the measures in the Names order.
func (m Measures) Values() []float64 {
	switch m.Kind {
	case CAIAndAUP:
		return []float64{m.CAI, m.AUP}
	case CAIAndEFE:
		return []float64{m.CAI, m.EFE}
	}
	return []float64{m.CAI}
}

// Objective computes fitness of a coding sequence. Higher is better.
type Objective interface {
	Evaluate(cds codon.CDS) (float64, Measures, error)
}

// Func is an adapter to use ordinary functions as an Objective.
type Func func(cds codon.CDS) (float64, Measures, error)

// Evaluate calls f(cds).
func (f Func) Evaluate(cds codon.CDS) (float64, Measures, error) {
	return f(cds)
}

// Config stores settings shared by all the objectives.
type Config struct {
	// Usage is the codon usage model.
	Usage *codon.Usage
	// Threshold is the CAI value below which fitness is penalized,
	// in (0, 1].
	Threshold float64
	// ExpScale is the penalty exponent multiplier, > 0.
	ExpScale float64
	// Verbose enables logging of every evaluation.
	Verbose bool
}

// NewConfig returns a configuration with the default threshold (0.8)
// and scale (1).
func NewConfig(u *codon.Usage) Config {
	return Config{
		Usage:     u,
		Threshold: 0.8,
		ExpScale:  1,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Usage == nil {
		return fmt.Errorf("%w: no codon usage", ErrInvalidConfig)
	}
	if !(c.Threshold > 0 && c.Threshold <= 1) {
		return fmt.Errorf("%w: CAI threshold should be in (0, 1], got %v", ErrInvalidConfig, c.Threshold)
	}
	if !(c.ExpScale > 0) || math.IsInf(c.ExpScale, 1) {
		return fmt.Errorf("%w: CAI exponent scale should be > 0, got %v", ErrInvalidConfig, c.ExpScale)
	}
	return nil
}

// factor returns exp(max(0, threshold-cai)*scale).
func (c Config) factor(cai float64) float64 {
	return math.Exp(math.Max(0, c.Threshold-cai) * c.ExpScale)
}

// penalty returns factor(cai) - 1; it is 0 when cai >= threshold.
func (c Config) penalty(cai float64) float64 {
	return c.factor(cai) - 1
}

// NewCAIThreshold creates an objective optimizing CAI up to the
// threshold: -(e^(max(0,threshold-cai)*scale)-1).
func NewCAIThreshold(c Config) (Objective, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return Func(func(cds codon.CDS) (float64, Measures, error) {
		cai, err := c.Usage.CAI(cds)
		if err != nil {
			return 0, Measures{}, err
		}
		if c.Verbose {
			log.Debugf("Objective: CAI=%v", cai)
		}
		return -c.penalty(cai), Measures{Kind: CAIOnly, CAI: cai}, nil
	}), nil
}

// NewCAIAndAUP creates an objective optimizing CAI and paired
// probability: (1-aup)-(e^(max(0,threshold-cai)*scale)-1).
func NewCAIAndAUP(c Config, o fold.Oracle) (Objective, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: no folding oracle", ErrInvalidConfig)
	}
	return Func(func(cds codon.CDS) (float64, Measures, error) {
		cai, err := c.Usage.CAI(cds)
		if err != nil {
			return 0, Measures{}, err
		}
		res, err := o.Fold(cds.RNA())
		if err != nil {
			return 0, Measures{}, fmt.Errorf("%w: %w", ErrOracle, err)
		}
		if c.Verbose {
			log.Debugf("Objective: CAI=%v, AUP=%v", cai, res.AverageUnpaired)
		}
		fitness := (1 - res.AverageUnpaired) - c.penalty(cai)
		return fitness, Measures{Kind: CAIAndAUP, CAI: cai, AUP: res.AverageUnpaired}, nil
	}), nil
}

// NewCAIAndEFE creates an objective optimizing CAI and ensemble free
// energy: -efe/e^(max(0,threshold-cai)*scale).
func NewCAIAndEFE(c Config, o fold.Oracle) (Objective, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: no folding oracle", ErrInvalidConfig)
	}
	return Func(func(cds codon.CDS) (float64, Measures, error) {
		cai, err := c.Usage.CAI(cds)
		if err != nil {
			return 0, Measures{}, err
		}
		res, err := o.Fold(cds.RNA())
		if err != nil {
			return 0, Measures{}, fmt.Errorf("%w: %w", ErrOracle, err)
		}
		if c.Verbose {
			log.Debugf("Objective: CAI=%v, EFE=%v", cai, res.EnsembleFreeEnergy)
		}
		fitness := -res.EnsembleFreeEnergy * (1 / c.factor(cai))
		return fitness, Measures{Kind: CAIAndEFE, CAI: cai, EFE: res.EnsembleFreeEnergy}, nil
	}), nil
}

// New creates an objective from the stability name: "none", "aup" or
// "efe". The oracle is ignored for "none".
func New(stability string, c Config, o fold.Oracle) (Objective, error) {
	switch stability {
	case "none":
		log.Info("Using CAI threshold objective")
		return NewCAIThreshold(c)
	case "aup":
		log.Info("Using CAI and average unpaired probability objective")
		return NewCAIAndAUP(c, o)
	case "efe":
		log.Info("Using CAI and ensemble free energy objective")
		return NewCAIAndEFE(c, o)
	}
	return nil, fmt.Errorf("%w: unknown stability objective: %s", ErrInvalidConfig, stability)
}
