package fold

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/op/go-logging"
)

const smallDiff = 1e-9

func init() {
	logging.SetLevel(logging.WARNING, "fold")
}

// structures enumerates all secondary structures of seq[i..j] as
// lists of base pairs.
func structures(seq string, i, j int) [][][2]int {
	if j < i {
		return [][][2]int{nil}
	}
	res := structures(seq, i, j-1)
	for k := i; k < j-MinHairpin; k++ {
		if _, ok := PairEnergy(seq[k], seq[j]); !ok {
			continue
		}
		for _, left := range structures(seq, i, k-1) {
			for _, in := range structures(seq, k+1, j-1) {
				s := make([][2]int, 0, len(left)+len(in)+1)
				s = append(s, left...)
				s = append(s, in...)
				s = append(s, [2]int{k, j})
				res = append(res, s)
			}
		}
	}
	return res
}

// bruteForce computes EFE, MFE and pair probabilities by
// enumeration.
func bruteForce(seq string, kT float64) (efe, mfe float64, p [][]float64) {
	n := len(seq)
	p = make([][]float64, n)
	for i := range p {
		p[i] = make([]float64, n)
	}
	z := 0.0
	for _, s := range structures(seq, 0, n-1) {
		en := 0.0
		for _, bp := range s {
			pe, _ := PairEnergy(seq[bp[0]], seq[bp[1]])
			en += pe
		}
		mfe = math.Min(mfe, en)
		w := math.Exp(-en / kT)
		z += w
		for _, bp := range s {
			p[bp[0]][bp[1]] += w
		}
	}
	for i := range p {
		for j := range p[i] {
			p[i][j] /= z
		}
	}
	return -kT * math.Log(z), mfe, p
}

func TestSimpleBruteForce(tst *testing.T) {
	f := NewSimple()
	kT := gasConstant * (f.Temperature + kelvin)
	rng := rand.New(rand.NewSource(7))
	seqs := []string{"GGGAAACCC", "GCAUGCAUAGCU", "GGGGAAAACCCCUUUU"}
	for i := 0; i < 5; i++ {
		b := make([]byte, 8+rng.Intn(8))
		for j := range b {
			b[j] = "ACGU"[rng.Intn(4)]
		}
		seqs = append(seqs, string(b))
	}
	for _, seq := range seqs {
		efe, mfe, refP := bruteForce(seq, kT)
		res, err := f.Fold(seq)
		if err != nil {
			tst.Fatal("Error: ", err)
		}
		tst.Log(seq, ": EFE=", res.EnsembleFreeEnergy, ", Ref=", efe)
		if math.Abs(res.EnsembleFreeEnergy-efe) > smallDiff {
			tst.Errorf("%s: expected EFE=%v, got %v", seq, efe, res.EnsembleFreeEnergy)
		}
		if res.MFE != mfe {
			tst.Errorf("%s: expected MFE=%v, got %v", seq, mfe, res.MFE)
		}
		if res.EnsembleFreeEnergy > res.MFE+smallDiff {
			tst.Errorf("%s: EFE=%v is larger than MFE=%v", seq, res.EnsembleFreeEnergy, res.MFE)
		}
		p, err := f.PairProbabilities(seq)
		if err != nil {
			tst.Fatal("Error: ", err)
		}
		unpaired := 0.0
		for i := 0; i < len(seq); i++ {
			u := 1.0
			for j := 0; j < len(seq); j++ {
				if i == j {
					continue
				}
				ref := refP[i][j] + refP[j][i]
				if math.Abs(p.At(i, j)-ref) > smallDiff {
					tst.Errorf("%s: P(%d,%d) expected %v, got %v", seq, i, j, ref, p.At(i, j))
				}
				u -= ref
			}
			if math.Abs(p.At(i, i)-u) > smallDiff {
				tst.Errorf("%s: unpaired(%d) expected %v, got %v", seq, i, u, p.At(i, i))
			}
			unpaired += u
		}
		aup := unpaired / float64(len(seq))
		if math.Abs(res.AverageUnpaired-aup) > smallDiff {
			tst.Errorf("%s: expected AUP=%v, got %v", seq, aup, res.AverageUnpaired)
		}
	}
}

func TestSimpleUnpairable(tst *testing.T) {
	res, err := NewSimple().Fold("AAAAAAAAAAAA")
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if res.AverageUnpaired != 1 || res.MFE != 0 || math.Abs(res.EnsembleFreeEnergy) > smallDiff {
		tst.Error("Unexpected result for an unpairable sequence:", res)
	}
}

func TestSimpleLong(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := make([]byte, 600)
	for j := range b {
		b[j] = "ACGU"[rng.Intn(4)]
	}
	res, err := NewSimple().Fold(string(b))
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	tst.Log("600 nt:", res)
	if res.AverageUnpaired < 0 || res.AverageUnpaired > 1 {
		tst.Error("AUP out of range:", res.AverageUnpaired)
	}
	if res.EnsembleFreeEnergy > res.MFE || math.IsNaN(res.EnsembleFreeEnergy) {
		tst.Error("EFE should not exceed MFE:", res)
	}
}

func TestSimpleErrors(tst *testing.T) {
	f := NewSimple()
	if _, err := f.Fold(""); !errors.Is(err, ErrEmpty) {
		tst.Error("Expected ErrEmpty, got", err)
	}
	if _, err := f.Fold("ACGT"); !errors.Is(err, ErrAlphabet) {
		tst.Error("Expected ErrAlphabet, got", err)
	}
}

func TestCache(tst *testing.T) {
	calls := 0
	o := Func(func(rna string) (Result, error) {
		calls++
		if rna == "bad" {
			return Result{}, ErrAlphabet
		}
		return Result{MFE: float64(len(rna))}, nil
	})
	c := NewCache(o, 2)
	for _, s := range []string{"A", "AA", "A", "AAA", "A", "bad", "bad"} {
		c.Fold(s)
	}
	// A, AA, hit A, AAA evicts A, A evicts AA, bad twice
	if calls != 6 {
		tst.Error("Expected 6 oracle calls, got", calls)
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 6 {
		tst.Error("Unexpected stats:", hits, misses)
	}
	r, err := c.Fold("AAA")
	if err != nil || r.MFE != 3 || calls != 6 {
		tst.Error("Expected a cached result, got", r, err)
	}
}
