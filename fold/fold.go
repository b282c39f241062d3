// Package fold provides RNA secondary structure stability oracles.
//
// An Oracle computes ensemble level stability metrics of an RNA
// sequence: the average unpaired probability and the ensemble free
// energy. Simple is a reference partition function implementation
// with a base-pair energy model; any other folding engine can be
// plugged in by implementing Oracle.
package fold

import (
	"errors"

	"github.com/op/go-logging"
)

// log is the global logging variable.
var log = logging.MustGetLogger("fold")

var (
	// ErrEmpty is returned when folding an empty sequence.
	ErrEmpty = errors.New("empty RNA sequence")
	// ErrAlphabet is returned if a sequence contains anything but
	// A, C, G and U.
	ErrAlphabet = errors.New("non RNA letter in sequence")
	// ErrOverflow is returned if the partition function cannot be
	// represented.
	ErrOverflow = errors.New("partition function overflow")
)

// Result stores folding metrics of a sequence.
type Result struct {
	// AverageUnpaired is the mean probability of a base being
	// unpaired, in [0, 1].
	AverageUnpaired float64 `json:"aup"`
	// EnsembleFreeEnergy is the free energy of the ensemble in
	// kcal/mol.
	EnsembleFreeEnergy float64 `json:"efe"`
	// MFE is the minimum free energy in kcal/mol.
	MFE float64 `json:"mfe"`
}

// Oracle folds RNA sequences.
type Oracle interface {
	Fold(rna string) (Result, error)
}

// Func is an adapter to use ordinary functions as an Oracle.
type Func func(rna string) (Result, error)

// Fold calls f(rna).
func (f Func) Fold(rna string) (Result, error) {
	return f(rna)
}
