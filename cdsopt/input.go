package main

import (
	"errors"
	"os"

	"bitbucket.org/Davydov/cdsopt/bio"
	"bitbucket.org/Davydov/cdsopt/codon"
	"bitbucket.org/Davydov/cdsopt/fold"
)

// readProtein returns the amino-acid sequence either from the string
// or from the first record of a FASTA file.
func readProtein(aa, fastaFileName string) (string, error) {
	switch {
	case aa != "" && fastaFileName != "":
		return "", errors.New("use either amino-acid sequence or FASTA file")
	case aa != "":
		return bio.ProteinSequence(aa)
	case fastaFileName == "":
		return "", errors.New("no amino-acid sequence specified")
	}

	f, err := os.Open(fastaFileName)
	if err != nil {
		return "", err
	}
	defer f.Close()

	seqs, err := bio.ParseFasta(f)
	if err != nil {
		return "", err
	}
	if len(seqs) == 0 {
		return "", errors.New("no sequences in FASTA file")
	}
	if len(seqs) > 1 {
		log.Warningf("FASTA file has %d sequences, using the first one (%s)", len(seqs), seqs[0].Name)
	}
	return bio.ProteinSequence(seqs[0].Sequence)
}

// readUsage reads a codon usage table; the uniform table is used if
// the file name is empty.
func readUsage(fileName string) (*codon.Usage, error) {
	if fileName == "" {
		log.Info("Uniform codon usage")
		return codon.Uniform(), nil
	}
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return codon.ReadUsage(f)
}

// getOracle returns a folding oracle, cached if size > 0.
func getOracle(temperature float64, size int) fold.Oracle {
	o := fold.NewSimple()
	o.Temperature = temperature
	log.Infof("Folding temperature: %v C", temperature)
	if size > 0 {
		log.Infof("Caching %d folding results", size)
		return fold.NewCache(o, size)
	}
	return o
}
