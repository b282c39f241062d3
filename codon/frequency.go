package codon

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bitbucket.org/Davydov/cdsopt/bio"
)

// ReadUsage reads a codon usage table from a reader. Every line
// starts with a three-letter amino-acid name, a codon (DNA or RNA
// alphabet) and a frequency; the rest of the line is ignored, as are
// comments (#) and lines with fewer than three fields. Stop codons
// ("End") are skipped. Frequencies are used as they are, without
// rounding to integers.
func ReadUsage(rd io.Reader) (*Usage, error) {
	var entries []Entry

	scanner := bufio.NewScanner(rd)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		aa, ok := bio.AminoAcidNames[fields[0]]
		if !ok {
			return nil, fmt.Errorf("line %d: %w: %s", line, ErrUnknownAminoAcid, fields[0])
		}
		f, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		entries = append(entries, Entry{AA: aa, Codon: fields[1], Freq: f})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	u, err := NewUsage(entries)
	if err != nil {
		return nil, err
	}

	// non-standard genetic codes are allowed
	for c, aa := range u.codonAA {
		if std := bio.GeneticCode[c]; std != aa {
			log.Debugf("Codon %s encodes %c, standard code has %c", c, aa, std)
		}
	}
	log.Infof("Read codon usage table, %d codons, max synonyms %d", len(u.codonAA), u.MaxSynonyms())
	return u, nil
}
