// Package bio provides functions related to the genetic code,
// amino-acid letters and nucleotide alphabets.
package bio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// Stop is the amino-acid letter used for stop codons.
const Stop = '*'

var (
	// GeneticCode is the standard genetic code. Codon string (RNA
	// alphabet, capital letters) is the key, amino acids (capital
	// letter) are values.
	GeneticCode = map[string]byte{
		"AUA": 'I', "AUC": 'I', "AUU": 'I', "AUG": 'M',
		"ACA": 'T', "ACC": 'T', "ACG": 'T', "ACU": 'T',
		"AAC": 'N', "AAU": 'N', "AAA": 'K', "AAG": 'K',
		"AGC": 'S', "AGU": 'S', "AGA": 'R', "AGG": 'R',
		"CUA": 'L', "CUC": 'L', "CUG": 'L', "CUU": 'L',
		"CCA": 'P', "CCC": 'P', "CCG": 'P', "CCU": 'P',
		"CAC": 'H', "CAU": 'H', "CAA": 'Q', "CAG": 'Q',
		"CGA": 'R', "CGC": 'R', "CGG": 'R', "CGU": 'R',
		"GUA": 'V', "GUC": 'V', "GUG": 'V', "GUU": 'V',
		"GCA": 'A', "GCC": 'A', "GCG": 'A', "GCU": 'A',
		"GAC": 'D', "GAU": 'D', "GAA": 'E', "GAG": 'E',
		"GGA": 'G', "GGC": 'G', "GGG": 'G', "GGU": 'G',
		"UCA": 'S', "UCC": 'S', "UCG": 'S', "UCU": 'S',
		"UUC": 'F', "UUU": 'F', "UUA": 'L', "UUG": 'L',
		"UAC": 'Y', "UAU": 'Y', "UAA": Stop, "UAG": Stop,
		"UGC": 'C', "UGU": 'C', "UGA": Stop, "UGG": 'W'}

	// AminoAcidNames maps three-letter amino-acid names to
	// one-letter codes. "End" is the stop codon.
	AminoAcidNames = map[string]byte{
		"Ala": 'A', "Arg": 'R', "Asn": 'N', "Asp": 'D',
		"Cys": 'C', "Gln": 'Q', "Glu": 'E', "Gly": 'G',
		"His": 'H', "Ile": 'I', "Leu": 'L', "Lys": 'K',
		"Met": 'M', "Phe": 'F', "Pro": 'P', "Ser": 'S',
		"Thr": 'T', "Trp": 'W', "Tyr": 'Y', "Val": 'V',
		"End": Stop}
)

// IsAminoAcid tests if the letter is one of the twenty standard
// amino acids. Stop is not an amino acid.
func IsAminoAcid(aa byte) bool {
	switch aa {
	case 'A', 'R', 'N', 'D', 'C', 'Q', 'E', 'G', 'H', 'I',
		'L', 'K', 'M', 'F', 'P', 'S', 'T', 'W', 'Y', 'V':
		return true
	}
	return false
}

// ToRNA converts a nucleotide string to the capital RNA alphabet
// (T is replaced by U).
func ToRNA(nseq string) string {
	return strings.Replace(strings.ToUpper(nseq), "T", "U", -1)
}

// IsRNA tests if the string uses capital RNA letters only.
func IsRNA(seq string) bool {
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'U':
		default:
			return false
		}
	}
	return true
}

// Translate translates nucleotide sequence string into the protein
// string. Both DNA and RNA alphabets are accepted. Error is returned
// if sequence is not divisible by three, non-terminal stop-codon is
// found or wrong codon is encountered.
func Translate(nseq string) (string, error) {
	var buffer bytes.Buffer

	if len(nseq)%3 != 0 {
		return "", errors.New("sequence length doesn't divide by 3")
	}

	nseq = ToRNA(nseq)

	for i := 0; i < len(nseq); i += 3 {
		aa := GeneticCode[nseq[i:i+3]]
		if aa == 0 {
			return buffer.String(), errors.New("unknown codon")
		} else if aa == Stop {
			if i+3 >= len(nseq) {
				// it's ok if this is the last codon
				break
			}
			return buffer.String(), errors.New("premature stop codon")
		}
		buffer.WriteByte(aa)
	}
	return buffer.String(), nil
}

// Sequence is a type which is intended for storing nucleotide or
// protein sequence with it's name.
type Sequence struct {
	Name     string
	Sequence string
}

// Sequences stores multiple sequences.
type Sequences []Sequence

// ParseFasta parses FASTA sequences from a reader.
func ParseFasta(rd io.Reader) (seqs Sequences, err error) {
	seqs = make(Sequences, 0, 10)
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			seq := Sequence{Name: line[1:]}
			seqs = append(seqs, seq)
		} else {
			if len(seqs) == 0 {
				return nil, errors.New("sequence w/o prefix")
			}
			line = strings.ToUpper(strings.Replace(line, " ", "", -1))
			seqs[len(seqs)-1].Sequence += line
		}
	}
	return seqs, scanner.Err()
}

// ProteinSequence returns the sequence with a single trailing stop
// symbol removed. An error is returned if the sequence contains
// anything but the standard amino acids.
func ProteinSequence(seq string) (string, error) {
	seq = strings.TrimSuffix(strings.ToUpper(seq), string(Stop))
	if seq == "" {
		return "", errors.New("empty protein sequence")
	}
	for i := 0; i < len(seq); i++ {
		if !IsAminoAcid(seq[i]) {
			return "", errors.New("non amino acid letter in protein sequence: " + string(seq[i]))
		}
	}
	return seq, nil
}

// Wrap inputs a string and wraps it so string length is n characters
// or less.
func Wrap(seq string, n int) (s string) {
	for i := 0; i < len(seq); i += n {
		end := i + n
		if end > len(seq) {
			end = len(seq)
		}
		s += seq[i:end] + "\n"
	}
	return
}

// String returns a sequence in FASTA format.
func (seq Sequence) String() (s string) {
	s = ">" + seq.Name + "\n" + Wrap(seq.Sequence, 80)
	return
}
