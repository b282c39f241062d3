package codon

import (
	"bytes"
	"errors"
	"strings"

	"bitbucket.org/Davydov/cdsopt/bio"
)

// CDS is a coding sequence, one codon (RNA alphabet) per amino acid.
type CDS []string

// ParseCDS splits a nucleotide string into codons. DNA letters are
// converted to RNA.
func ParseCDS(nseq string) (CDS, error) {
	nseq = bio.ToRNA(strings.TrimSpace(nseq))
	if len(nseq)%3 != 0 {
		return nil, errors.New("sequence length doesn't divide by 3")
	}
	cds := make(CDS, 0, len(nseq)/3)
	for i := 0; i < len(nseq); i += 3 {
		cds = append(cds, nseq[i:i+3])
	}
	return cds, nil
}

// RNA concatenates codons into an RNA string.
func (cds CDS) RNA() string {
	return strings.Join(cds, "")
}

// Copy returns a copy of the CDS.
func (cds CDS) Copy() CDS {
	return append(CDS(nil), cds...)
}

// With returns a copy of the CDS with codon at position pos replaced.
func (cds CDS) With(pos int, codon string) CDS {
	n := cds.Copy()
	n[pos] = codon
	return n
}

// Equal tests if two coding sequences are identical.
func (cds CDS) Equal(other CDS) bool {
	if len(cds) != len(other) {
		return false
	}
	for i := range cds {
		if cds[i] != other[i] {
			return false
		}
	}
	return true
}

// String returns codons separated by spaces.
func (cds CDS) String() string {
	var b bytes.Buffer
	for i, c := range cds {
		if i != 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c)
	}
	return b.String()
}
