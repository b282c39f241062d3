package bio

import (
	"strings"
	"testing"
)

func TestTranslate(tst *testing.T) {
	for _, c := range []struct {
		nseq, prot string
	}{
		{"ATGGGC", "MG"},
		{"AUGGGCUAA", "MG"},
		{"augaaa", "MK"},
	} {
		p, err := Translate(c.nseq)
		if err != nil {
			tst.Error("Error: ", err)
		}
		if p != c.prot {
			tst.Errorf("Expected %s, got %s", c.prot, p)
		}
	}
	if _, err := Translate("AUGUAAGGC"); err == nil {
		tst.Error("Premature stop codon not detected")
	}
	if _, err := Translate("AUGG"); err == nil {
		tst.Error("Length not divisible by 3 not detected")
	}
}

func TestGeneticCodeSynonyms(tst *testing.T) {
	count := map[byte]int{}
	for _, aa := range GeneticCode {
		count[aa]++
	}
	if len(GeneticCode) != 64 {
		tst.Error("Expected 64 codons, got", len(GeneticCode))
	}
	if count['M'] != 1 || count['W'] != 1 {
		tst.Error("M and W should have a single codon")
	}
	if count['L'] != 6 || count['G'] != 4 || count[Stop] != 3 {
		tst.Error("Unexpected synonym counts:", count)
	}
	for name, aa := range AminoAcidNames {
		if aa != Stop && !IsAminoAcid(aa) {
			tst.Error("Unknown amino acid for", name)
		}
	}
}

func TestParseFasta(tst *testing.T) {
	seqs, err := ParseFasta(strings.NewReader(">p1 protein\nMGK\nlv\n\n>p2\nMW*\n"))
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(seqs) != 2 {
		tst.Fatal("Expected 2 sequences, got", len(seqs))
	}
	if seqs[0].Name != "p1 protein" || seqs[0].Sequence != "MGKLV" {
		tst.Error("Incorrect first sequence:", seqs[0])
	}
	p, err := ProteinSequence(seqs[1].Sequence)
	if err != nil || p != "MW" {
		tst.Error("Expected MW, got", p, err)
	}
	if _, err := ProteinSequence("MBX"); err == nil {
		tst.Error("Invalid letters not detected")
	}
	if _, err := ParseFasta(strings.NewReader("MGK\n")); err == nil {
		tst.Error("Sequence without a header not detected")
	}
}

func TestRNA(tst *testing.T) {
	if r := ToRNA("atgT"); r != "AUGU" {
		tst.Error("Expected AUGU, got", r)
	}
	if !IsRNA("ACGU") || IsRNA("ACGT") {
		tst.Error("Incorrect IsRNA")
	}
}
