// Package codon implements the codon usage model: synonymous codon
// groups, codon frequencies, codon adaptation weights and the codon
// adaptation index (CAI).
package codon

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/cdsopt/bio"
)

// tinyProduct is the CAI running product below which it is
// renormalized.
const tinyProduct = 0x1p-500

// log is the global logging variable.
var log = logging.MustGetLogger("codon")

var (
	// ErrUnknownAminoAcid is returned if an amino acid is not
	// present in the model.
	ErrUnknownAminoAcid = errors.New("unknown amino acid")
	// ErrUnknownCodon is returned if a codon is not present in the
	// model.
	ErrUnknownCodon = errors.New("unknown codon")
	// ErrEmptySequence is returned if CAI is requested for an
	// empty sequence.
	ErrEmptySequence = errors.New("empty sequence")
	// ErrMismatch is returned if a codon doesn't encode the
	// amino acid at its position.
	ErrMismatch = errors.New("codon doesn't encode the amino acid")
	// ErrInvalidEntry is returned when a model is built from
	// inconsistent entries.
	ErrInvalidEntry = errors.New("invalid codon usage entry")
)

// Entry is a single codon usage record.
type Entry struct {
	// AA is the one-letter amino-acid code.
	AA byte
	// Codon is a nucleotide triplet; T is converted to U.
	Codon string
	// Freq is the usage frequency (count or relative frequency).
	Freq float64
}

// Usage is a codon usage model. It is immutable after creation and
// can be shared between runs.
type Usage struct {
	codonAA   map[string]byte
	aaCodons  map[byte][]string
	freq      map[string]float64
	aaMaxFreq map[byte]float64
	aas       []byte
}

// NewUsage creates a codon usage model from entries. Stop codon
// entries are skipped. Every codon must be unique, consist of three
// RNA letters and have a positive frequency.
func NewUsage(entries []Entry) (*Usage, error) {
	u := &Usage{
		codonAA:   make(map[string]byte, len(entries)),
		aaCodons:  make(map[byte][]string, 21),
		freq:      make(map[string]float64, len(entries)),
		aaMaxFreq: make(map[byte]float64, 21),
	}
	for _, e := range entries {
		if e.AA == bio.Stop {
			continue
		}
		c := bio.ToRNA(e.Codon)
		if len(c) != 3 || !bio.IsRNA(c) {
			return nil, fmt.Errorf("%w: bad codon %q", ErrInvalidEntry, e.Codon)
		}
		if _, ok := u.codonAA[c]; ok {
			return nil, fmt.Errorf("%w: duplicate codon %s", ErrInvalidEntry, c)
		}
		if !(e.Freq > 0) || math.IsInf(e.Freq, 0) {
			return nil, fmt.Errorf("%w: frequency of %s must be positive, got %v", ErrInvalidEntry, c, e.Freq)
		}
		u.codonAA[c] = e.AA
		u.aaCodons[e.AA] = append(u.aaCodons[e.AA], c)
		u.freq[c] = e.Freq
		if e.Freq > u.aaMaxFreq[e.AA] {
			u.aaMaxFreq[e.AA] = e.Freq
		}
	}
	if len(u.aaCodons) == 0 {
		return nil, fmt.Errorf("%w: no codons", ErrInvalidEntry)
	}
	for aa, codons := range u.aaCodons {
		sort.Strings(codons)
		u.aas = append(u.aas, aa)
	}
	sort.Slice(u.aas, func(i, j int) bool { return u.aas[i] < u.aas[j] })
	log.Debugf("Codon usage model: %d codons, %d amino acids", len(u.codonAA), len(u.aas))
	return u, nil
}

// Uniform returns a model with equal frequencies for all sense
// codons of the standard genetic code.
func Uniform() *Usage {
	entries := make([]Entry, 0, len(bio.GeneticCode))
	for c, aa := range bio.GeneticCode {
		entries = append(entries, Entry{AA: aa, Codon: c, Freq: 1})
	}
	u, err := NewUsage(entries)
	if err != nil {
		// the standard code is always consistent
		panic(err)
	}
	return u
}

// AminoAcids returns a sorted list of amino acids in the model.
func (u *Usage) AminoAcids() []byte {
	return append([]byte(nil), u.aas...)
}

// CodonsFor returns the sorted synonymous codons of an amino acid.
// The returned slice must not be modified.
func (u *Usage) CodonsFor(aa byte) ([]string, error) {
	codons, ok := u.aaCodons[aa]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAminoAcid, aa)
	}
	return codons, nil
}

// AminoAcidOf returns the amino acid encoded by a codon.
func (u *Usage) AminoAcidOf(codon string) (byte, error) {
	aa, ok := u.codonAA[codon]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodon, codon)
	}
	return aa, nil
}

// Frequency returns the codon usage frequency.
func (u *Usage) Frequency(codon string) (float64, error) {
	f, ok := u.freq[codon]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodon, codon)
	}
	return f, nil
}

// MaxFrequency returns the frequency of the most used codon of an
// amino acid.
func (u *Usage) MaxFrequency(aa byte) (float64, error) {
	f, ok := u.aaMaxFreq[aa]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAminoAcid, aa)
	}
	return f, nil
}

// AdaptationWeight returns the codon adaptation weight, i.e. codon
// frequency relative to the most frequent synonymous codon.
func (u *Usage) AdaptationWeight(codon string) (float64, error) {
	f, ok := u.freq[codon]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodon, codon)
	}
	return f / u.aaMaxFreq[u.codonAA[codon]], nil
}

// CAI computes the codon adaptation index, the geometric mean of the
// adaptation weights. A small product is split into a mantissa and a
// binary exponent, so long sequences do not underflow.
func (u *Usage) CAI(cds CDS) (float64, error) {
	if len(cds) == 0 {
		return 0, ErrEmptySequence
	}
	prod := 1.0
	exp := 0
	for _, c := range cds {
		w, err := u.AdaptationWeight(c)
		if err != nil {
			return 0, err
		}
		prod *= w
		if prod < tinyProduct {
			var e int
			prod, e = math.Frexp(prod)
			exp += e
		}
	}
	n := float64(len(cds))
	cai := math.Pow(prod, 1/n)
	if exp != 0 {
		cai *= math.Pow(2, float64(exp)/n)
	}
	return cai, nil
}

// LogCAI computes the mean logarithm of the adaptation weights.
func (u *Usage) LogCAI(cds CDS) (float64, error) {
	if len(cds) == 0 {
		return 0, ErrEmptySequence
	}
	s := 0.0
	for _, c := range cds {
		w, err := u.AdaptationWeight(c)
		if err != nil {
			return 0, err
		}
		s += math.Log(w)
	}
	return s / float64(len(cds)), nil
}

// MaxSynonyms returns the size of the largest synonymous codon group.
func (u *Usage) MaxSynonyms() (n int) {
	for _, codons := range u.aaCodons {
		if len(codons) > n {
			n = len(codons)
		}
	}
	return
}

// OneHot encodes every codon as a vector of MaxSynonyms() length
// with 1 at the position of the codon among its sorted synonyms.
func (u *Usage) OneHot(cds CDS) ([][]float64, error) {
	width := u.MaxSynonyms()
	res := make([][]float64, len(cds))
	for i, c := range cds {
		aa, err := u.AminoAcidOf(c)
		if err != nil {
			return nil, err
		}
		codons := u.aaCodons[aa]
		res[i] = make([]float64, width)
		res[i][sort.SearchStrings(codons, c)] = 1
	}
	return res, nil
}

// Validate checks that the CDS encodes the amino-acid sequence.
func (u *Usage) Validate(aaSeq string, cds CDS) error {
	if len(cds) != len(aaSeq) {
		return fmt.Errorf("%w: %d codons for %d amino acids", ErrMismatch, len(cds), len(aaSeq))
	}
	for i, c := range cds {
		aa, err := u.AminoAcidOf(c)
		if err != nil {
			return fmt.Errorf("position %d: %w", i, err)
		}
		if aa != aaSeq[i] {
			return fmt.Errorf("position %d: %w: %s is %c, not %c", i, ErrMismatch, c, aa, aaSeq[i])
		}
	}
	return nil
}

// Random creates a CDS choosing every codon uniformly among the
// synonymous codons of the amino acid.
func (u *Usage) Random(aaSeq string, rng *rand.Rand) (CDS, error) {
	cds := make(CDS, len(aaSeq))
	for i := 0; i < len(aaSeq); i++ {
		codons, err := u.CodonsFor(aaSeq[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		cds[i] = codons[rng.Intn(len(codons))]
	}
	return cds, nil
}

// Optimal creates a CDS using the most frequent codon at every
// position. Ties are resolved by the codon order.
func (u *Usage) Optimal(aaSeq string) (CDS, error) {
	cds := make(CDS, len(aaSeq))
	for i := 0; i < len(aaSeq); i++ {
		codons, err := u.CodonsFor(aaSeq[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		best := codons[0]
		for _, c := range codons[1:] {
			if u.freq[c] > u.freq[best] {
				best = c
			}
		}
		cds[i] = best
	}
	return cds, nil
}
