package fold

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/cdsopt/bio"
)

const (
	// gasConstant is in kcal/(mol K).
	gasConstant = 1.98717e-3
	// kelvin is 0 C in K.
	kelvin = 273.15
	// DefaultTemperature is the default folding temperature in C.
	DefaultTemperature = 37.0
	// MinHairpin is the minimum number of unpaired bases enclosed
	// by a base pair.
	MinHairpin = 3
)

// PairEnergy returns the energy (kcal/mol) of a base pair. The second
// value is false if the bases cannot pair.
func PairEnergy(a, b byte) (float64, bool) {
	switch {
	case a == 'G' && b == 'C', a == 'C' && b == 'G':
		return -3, true
	case a == 'A' && b == 'U', a == 'U' && b == 'A':
		return -2, true
	case a == 'G' && b == 'U', a == 'U' && b == 'G':
		return -1, true
	}
	return 0, false
}

// Simple is a partition function folding oracle with an energy model
// where every base pair contributes PairEnergy independently of its
// neighbours. Loops have no energy, hairpins must enclose at least
// MinHairpin bases. Pseudoknots are not allowed.
type Simple struct {
	// Temperature is the folding temperature in C.
	Temperature float64
}

// NewSimple creates a Simple oracle at the default temperature.
func NewSimple() *Simple {
	return &Simple{Temperature: DefaultTemperature}
}

// ensemble stores inside and outside partition function tables. All
// the values for an interval of length l are scaled by s^-l.
type ensemble struct {
	seq string
	n   int
	kT  float64
	s   float64
	mfe float64
	// pair Boltzmann factors divided by s^2
	b *mat.Dense
	// z is the partition function of an interval, zb is the same
	// given that the interval ends are paired.
	z, zb *mat.Dense
}

// zAt returns the scaled partition function, empty intervals have 1.
func (e *ensemble) zAt(i, j int) float64 {
	if j < i {
		return 1
	}
	return e.z.At(i, j)
}

// minFreeEnergy computes the minimum free energy of a sequence.
func minFreeEnergy(seq string) float64 {
	n := len(seq)
	em := mat.NewDense(n, n, nil)
	at := func(i, j int) float64 {
		if j < i {
			return 0
		}
		return em.At(i, j)
	}
	for l := 1; l <= n; l++ {
		for i := 0; i+l <= n; i++ {
			j := i + l - 1
			best := at(i, j-1)
			for k := i; k < j-MinHairpin; k++ {
				pe, ok := PairEnergy(seq[k], seq[j])
				if !ok {
					continue
				}
				if v := at(i, k-1) + pe + at(k+1, j-1); v < best {
					best = v
				}
			}
			em.Set(i, j, best)
		}
	}
	return at(0, n-1)
}

// inside fills the partition function tables.
func (f *Simple) inside(seq string) (*ensemble, error) {
	if len(seq) == 0 {
		return nil, ErrEmpty
	}
	if !bio.IsRNA(seq) {
		return nil, ErrAlphabet
	}
	n := len(seq)
	e := &ensemble{
		seq: seq,
		n:   n,
		kT:  gasConstant * (f.Temperature + kelvin),
		mfe: minFreeEnergy(seq),
		b:   mat.NewDense(n, n, nil),
		z:   mat.NewDense(n, n, nil),
		zb:  mat.NewDense(n, n, nil),
	}
	// scale so that the MFE structure has the weight of about 1
	e.s = math.Exp(-e.mfe / (e.kT * float64(n)))
	s2 := e.s * e.s

	for i := 0; i < n; i++ {
		for j := i + MinHairpin + 1; j < n; j++ {
			if pe, ok := PairEnergy(seq[i], seq[j]); ok {
				e.b.Set(i, j, math.Exp(-pe/e.kT)/s2)
			}
		}
	}

	for l := 1; l <= n; l++ {
		for i := 0; i+l <= n; i++ {
			j := i + l - 1
			if l > MinHairpin+1 {
				e.zb.Set(i, j, e.b.At(i, j)*e.zAt(i+1, j-1))
			}
			v := e.zAt(i, j-1) / e.s
			for k := i; k < j-MinHairpin; k++ {
				if zb := e.zb.At(k, j); zb != 0 {
					v += e.zAt(i, k-1) * zb
				}
			}
			e.z.Set(i, j, v)
		}
	}

	z := e.z.At(0, n-1)
	if z == 0 || math.IsInf(z, 0) || math.IsNaN(z) {
		return nil, ErrOverflow
	}
	return e, nil
}

// lnZ returns the logarithm of the unscaled partition function.
func (e *ensemble) lnZ() float64 {
	return math.Log(e.z.At(0, e.n-1)) + float64(e.n)*math.Log(e.s)
}

// probabilities computes the base pair probability matrix using the
// outside algorithm. Off-diagonal elements are pair probabilities,
// diagonal elements are probabilities of a base being unpaired.
func (e *ensemble) probabilities() *mat.Dense {
	n := e.n
	oz := mat.NewDense(n, n, nil)
	ozb := mat.NewDense(n, n, nil)
	oz.Set(0, n-1, 1)
	for l := n; l >= 1; l-- {
		for i := 0; i+l <= n; i++ {
			j := i + l - 1
			if o := oz.At(i, j); o != 0 {
				if j > i {
					oz.Set(i, j-1, oz.At(i, j-1)+o/e.s)
				}
				for k := i; k < j-MinHairpin; k++ {
					zb := e.zb.At(k, j)
					if zb == 0 {
						continue
					}
					ozb.Set(k, j, ozb.At(k, j)+o*e.zAt(i, k-1))
					if k > i {
						oz.Set(i, k-1, oz.At(i, k-1)+o*zb)
					}
				}
			}
			// all the outside contributions to (i, j) pair
			// come from intervals processed before
			if ob := ozb.At(i, j); ob != 0 {
				oz.Set(i+1, j-1, oz.At(i+1, j-1)+ob*e.b.At(i, j))
			}
		}
	}

	z := e.z.At(0, n-1)
	p := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + MinHairpin + 1; j < n; j++ {
			if zb := e.zb.At(i, j); zb != 0 {
				v := ozb.At(i, j) * zb / z
				p.Set(i, j, v)
				p.Set(j, i, v)
			}
		}
	}
	for i := 0; i < n; i++ {
		u := 1 - floats.Sum(p.RawRowView(i))
		p.Set(i, i, math.Min(1, math.Max(0, u)))
	}
	return p
}

// PairProbabilities returns the base pair probability matrix of an
// RNA sequence. Diagonal elements are unpaired probabilities.
func (f *Simple) PairProbabilities(rna string) (*mat.Dense, error) {
	e, err := f.inside(rna)
	if err != nil {
		return nil, err
	}
	return e.probabilities(), nil
}

// Fold computes the average unpaired probability, the ensemble free
// energy and the minimum free energy of an RNA sequence.
func (f *Simple) Fold(rna string) (Result, error) {
	e, err := f.inside(rna)
	if err != nil {
		return Result{}, err
	}
	p := e.probabilities()
	res := Result{
		AverageUnpaired:    mat.Trace(p) / float64(e.n),
		EnsembleFreeEnergy: -e.kT * e.lnZ(),
		MFE:                e.mfe,
	}
	log.Debugf("Folded %d nt: MFE=%.2f, EFE=%.4f, AUP=%.4f", e.n, res.MFE, res.EnsembleFreeEnergy, res.AverageUnpaired)
	return res, nil
}
