package main

import (
	"bitbucket.org/Davydov/cdsopt/bio"
	"bitbucket.org/Davydov/cdsopt/codon"
	"bitbucket.org/Davydov/cdsopt/fold"
	"bitbucket.org/Davydov/cdsopt/optimize"
)

// RunSummary is storing cdsopt run summary information.
type RunSummary struct {
	// Version stores cdsopt version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
	// Key is the checkpoint key of this run.
	Key string `json:"key,omitempty"`
	// AA is the amino-acid sequence.
	AA string `json:"aa"`
	// Stability is the objective name.
	Stability string `json:"stability"`
	// Walk is the adaptive walk summary.
	Walk optimize.Summary `json:"walk"`
	// Final is the report on the final CDS.
	Final *Report `json:"final,omitempty"`
	// CacheHits and CacheMisses are folding cache statistics.
	CacheHits   int `json:"cacheHits,omitempty"`
	CacheMisses int `json:"cacheMisses,omitempty"`
}

// Report stores all the measures of a CDS, independent of the
// objective used. Protein is the translation with the standard genetic
// code.
type Report struct {
	CDS     string  `json:"cds"`
	Protein string  `json:"protein"`
	CAI     float64 `json:"cai"`
	AUP     float64 `json:"aup"`
	EFE     float64 `json:"efe"`
	MFE     float64 `json:"mfe"`
}

// newReport computes CAI, translates and folds the CDS. A translation
// different from aa is only reported, since a usage table may follow
// a non-standard genetic code.
func newReport(u *codon.Usage, o fold.Oracle, aa string, cds codon.CDS) (*Report, error) {
	cai, err := u.CAI(cds)
	if err != nil {
		return nil, err
	}
	protein, err := bio.Translate(cds.RNA())
	if err != nil {
		log.Warning("Error translating CDS with the standard genetic code:", err)
	} else if protein != aa {
		log.Warning("CDS translation with the standard genetic code differs from the input protein")
	}
	res, err := o.Fold(cds.RNA())
	if err != nil {
		return nil, err
	}
	return &Report{
		CDS:     cds.RNA(),
		Protein: protein,
		CAI:     cai,
		AUP:     res.AverageUnpaired,
		EFE:     res.EnsembleFreeEnergy,
		MFE:     res.MFE,
	}, nil
}

// print logs the report.
func (r *Report) print() {
	log.Noticef("CDS: %s", r.CDS)
	log.Noticef("CAI: %f", r.CAI)
	log.Noticef("AUP: %f", r.AUP)
	log.Noticef("EFE: %f", r.EFE)
	log.Noticef("MFE: %f", r.MFE)
}
