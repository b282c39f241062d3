package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"bitbucket.org/Davydov/cdsopt/bio"
	"bitbucket.org/Davydov/cdsopt/checkpoint"
	"bitbucket.org/Davydov/cdsopt/codon"
	"bitbucket.org/Davydov/cdsopt/fold"
	"bitbucket.org/Davydov/cdsopt/objective"
	"bitbucket.org/Davydov/cdsopt/optimize"
)

// loadStart reads the initial CDS from a checkpoint.
func loadStart(db *bolt.DB, startKey string, aa string) (codon.CDS, error) {
	if db == nil {
		return nil, fmt.Errorf("checkpoint database is required to start from %s", startKey)
	}
	data, err := checkpoint.Load(db, []byte(startKey))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", startKey, err)
	}
	if data.AA != aa {
		return nil, fmt.Errorf("checkpoint %s is for a different amino-acid sequence", startKey)
	}
	return codon.ParseCDS(data.CDS)
}

// resumeCDS returns the CDS of an unfinished checkpoint stored under
// the run key, or nil if there is nothing to resume.
func resumeCDS(cp *checkpoint.CheckpointIO, aa string) (codon.CDS, error) {
	data, err := cp.Load()
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if data.Final {
		log.Warningf("Checkpoint %s is finished and will be overwritten", cp.Key())
		return nil, nil
	}
	if data.AA != aa {
		return nil, fmt.Errorf("checkpoint %s is for a different amino-acid sequence", cp.Key())
	}
	return codon.ParseCDS(data.CDS)
}

// listCheckpoints writes all the stored checkpoints.
func listCheckpoints(db *bolt.DB, w io.Writer) error {
	keys, err := checkpoint.Keys(db)
	if err != nil {
		return err
	}
	for _, k := range keys {
		data, err := checkpoint.Load(db, []byte(k))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%f\t%t\t%s\n", k, data.Step, data.Fitness, data.Final, data.Stability)
	}
	return nil
}

// writeFasta writes the CDS in FASTA format.
func writeFasta(fileName, name string, cds codon.CDS) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer f.Close()
	seq := bio.Sequence{Name: name, Sequence: cds.RNA()}
	if _, err := f.WriteString(seq.String()); err != nil {
		return err
	}
	return f.Close()
}

// walkOptions stores everything the walk loop needs besides the walk
// configuration.
type walkOptions struct {
	out       io.Writer
	report    int
	cp        *checkpoint.CheckpointIO
	stability string
	plot      *fitnessPlot
}

// runWalk runs the walk, writing the trajectory and the checkpoints.
func runWalk(cfg optimize.WalkConfig, opts walkOptions) (*optimize.AdaptiveWalk, optimize.Result, error) {
	w, err := optimize.NewAdaptiveWalk(cfg)
	if err != nil {
		return nil, optimize.Result{}, err
	}
	traj := optimize.NewTrajectory(opts.out, opts.report)

	data := func(r optimize.Result, final bool) *checkpoint.CheckpointData {
		return &checkpoint.CheckpointData{
			AA:        cfg.AA,
			CDS:       r.CDS.RNA(),
			Step:      r.Step,
			Fitness:   r.BestFitness,
			Stability: opts.stability,
			Seed:      w.Seed(),
			Final:     final,
		}
	}

	var last optimize.Result
	for w.Next() {
		last = w.Result()
		if err := traj.Write(last); err != nil {
			return w, last, err
		}
		if opts.plot != nil {
			opts.plot.Add(last)
		}
		if opts.cp != nil && opts.cp.Old() {
			log.Debugf("Saving checkpoint at step %d", last.Step)
			if err := opts.cp.Save(data(last, false)); err != nil {
				return w, last, err
			}
		}
	}
	if err := traj.Flush(); err != nil {
		return w, last, err
	}
	if err := w.Err(); err != nil {
		return w, last, err
	}
	if opts.cp != nil {
		if err := opts.cp.Save(data(last, true)); err != nil {
			return w, last, err
		}
		log.Noticef("Saved checkpoint %s", opts.cp.Key())
	}
	return w, last, nil
}

func run() (summary *RunSummary) {
	summary = &RunSummary{Stability: *stability}

	if *list {
		if *checkpointF == "" {
			log.Fatal("Checkpoint database is required to list runs")
		}
		db, err := bolt.Open(*checkpointF, 0666, &bolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
		if err != nil {
			log.Fatal("Error opening checkpoint database:", err)
		}
		defer db.Close()
		if err := listCheckpoints(db, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	aa, err := readProtein(*aaSeq, *fastaF)
	if err != nil {
		log.Fatal(err)
	}
	summary.AA = aa
	log.Infof("Read amino-acid sequence of %d residues", len(aa))

	u, err := readUsage(*tableF)
	if err != nil {
		log.Fatal(err)
	}

	oracle := getOracle(*temperature, *cacheSize)

	c := objective.NewConfig(u)
	c.Threshold = *caiThreshold
	c.ExpScale = *caiExpScale
	c.Verbose = *verbose
	obj, err := objective.New(*stability, c, oracle)
	if err != nil {
		log.Fatal(err)
	}

	var db *bolt.DB
	if *checkpointF != "" {
		db, err = bolt.Open(*checkpointF, 0666, &bolt.Options{Timeout: 1 * time.Second})
		if err != nil {
			log.Fatal("Error opening checkpoint database:", err)
		}
		defer db.Close()
	}

	var initCDS codon.CDS
	if *startKey != "" {
		initCDS, err = loadStart(db, *startKey, aa)
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("Starting from checkpoint %s", *startKey)
	}

	opts := walkOptions{
		out:       os.Stdout,
		report:    *report,
		stability: *stability,
	}
	if *outF != "" {
		f, err := os.Create(*outF)
		if err != nil {
			log.Fatal("Error creating trajectory file:", err)
		}
		defer f.Close()
		opts.out = f
	}
	if db != nil {
		if *key == "" {
			*key = checkpoint.NewKey()
		}
		log.Infof("Checkpoint key: %s", *key)
		summary.Key = *key
		opts.cp = checkpoint.NewCheckpointIO(db, []byte(*key), *checkpointS)
		if initCDS == nil {
			initCDS, err = resumeCDS(opts.cp, aa)
			if err != nil {
				log.Fatal(err)
			}
			if initCDS != nil {
				log.Noticef("Resuming unfinished run %s", *key)
			}
		}
	}
	if *plotF != "" {
		opts.plot = &fitnessPlot{}
	}

	cfg := optimize.WalkConfig{
		AA:        aa,
		Usage:     u,
		Objective: obj,
		Steps:     *steps,
		InitCDS:   initCDS,
		Seed:      seed,
		Verbose:   *verbose,
	}

	w, last, err := runWalk(cfg, opts)
	if w != nil {
		summary.Walk = w.Summary()
	}
	if err != nil {
		log.Fatal(err)
	}

	if cache, ok := oracle.(*fold.Cache); ok {
		summary.CacheHits, summary.CacheMisses = cache.Stats()
		log.Infof("Folding cache: %d hits, %d misses", summary.CacheHits, summary.CacheMisses)
	}

	summary.Final, err = newReport(u, oracle, aa, last.CDS)
	if err != nil {
		log.Fatal("Error computing final report:", err)
	}
	log.Noticef("Fitness: %f", last.BestFitness)
	summary.Final.print()

	if *fastaOutF != "" {
		if err := writeFasta(*fastaOutF, fmt.Sprintf("cdsopt CAI=%.4f", summary.Final.CAI), last.CDS); err != nil {
			log.Error("Error writing FASTA output:", err)
		}
	}

	if opts.plot != nil {
		if err := opts.plot.Save(*plotF); err != nil {
			log.Error("Error saving plot:", err)
		}
	}

	return
}
