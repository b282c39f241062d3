package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/op/go-logging"
	bolt "go.etcd.io/bbolt"

	"bitbucket.org/Davydov/cdsopt/bio"
	"bitbucket.org/Davydov/cdsopt/checkpoint"
	"bitbucket.org/Davydov/cdsopt/codon"
	"bitbucket.org/Davydov/cdsopt/fold"
	"bitbucket.org/Davydov/cdsopt/objective"
	"bitbucket.org/Davydov/cdsopt/optimize"
)

const smallDiff = 1e-9

func init() {
	for _, pkg := range packages {
		logging.SetLevel(logging.WARNING, pkg)
	}
}

func TestReadProtein(tst *testing.T) {
	dir := tst.TempDir()
	fn := filepath.Join(dir, "protein.fst")
	if err := os.WriteFile(fn, []byte(">p1\nMGK\nLV*\n>p2\nMM\n"), 0644); err != nil {
		tst.Fatal("Error: ", err)
	}
	aa, err := readProtein("", fn)
	if err != nil || aa != "MGKLV" {
		tst.Error("Expected MGKLV, got", aa, err)
	}
	aa, err = readProtein("mgk*", "")
	if err != nil || aa != "MGK" {
		tst.Error("Expected MGK, got", aa, err)
	}
	for _, c := range [][2]string{{"", ""}, {"MGK", fn}, {"MBK", ""}} {
		if _, err := readProtein(c[0], c[1]); err == nil {
			tst.Error("Expected an error for", c)
		}
	}
}

func TestReadUsage(tst *testing.T) {
	u, err := readUsage("")
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if codons, _ := u.CodonsFor('L'); len(codons) != 6 {
		tst.Error("Expected 6 leucine codons, got", codons)
	}
	u, err = readUsage(filepath.Join("..", "codon", "testdata", "homosapiens.txt"))
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if w, _ := u.AdaptationWeight("CUG"); w != 1 {
		tst.Error("Expected CUG to be the optimal leucine codon, got weight", w)
	}
}

func TestGetOracle(tst *testing.T) {
	if _, ok := getOracle(37, 10).(*fold.Cache); !ok {
		tst.Error("Expected a cached oracle")
	}
	o, ok := getOracle(25, 0).(*fold.Simple)
	if !ok || o.Temperature != 25 {
		tst.Error("Expected a simple oracle at 25 C")
	}
}

func testDB(tst *testing.T) *bolt.DB {
	db, err := bolt.Open(filepath.Join(tst.TempDir(), "cp.db"), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	tst.Cleanup(func() { db.Close() })
	return db
}

func TestRunWalkCheckpoint(tst *testing.T) {
	const aa = "MGKLVW"
	u := codon.Uniform()
	oracle := getOracle(37, 100)
	obj, err := objective.New("aup", objective.NewConfig(u), oracle)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	db := testDB(tst)
	var out bytes.Buffer
	seed := int64(11)
	cfg := optimize.WalkConfig{
		AA:        aa,
		Usage:     u,
		Objective: obj,
		Steps:     30,
		Seed:      &seed,
	}
	fp := &fitnessPlot{}
	opts := walkOptions{
		out:       &out,
		report:    10,
		cp:        checkpoint.NewCheckpointIO(db, []byte("run1"), 1000),
		stability: "aup",
		plot:      fp,
	}
	w, last, err := runWalk(cfg, opts)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if last.Step != 30 || w.Summary().Steps != 30 {
		tst.Error("Unexpected last result:", last)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 || !strings.HasPrefix(lines[0], "step\tfitness\tbest_fitness\tCAI\tAUP") {
		tst.Error("Unexpected trajectory:", out.String())
	}
	if len(fp.fitness) != 31 || fp.best[30].Y != last.BestFitness {
		tst.Error("Unexpected plot data")
	}

	data, err := checkpoint.Load(db, []byte("run1"))
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if !data.Final || data.CDS != last.CDS.RNA() || data.Step != 30 || data.Seed != 11 {
		tst.Error("Unexpected checkpoint:", data)
	}

	start, err := loadStart(db, "run1", aa)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if !start.Equal(last.CDS) {
		tst.Error("Expected", last.CDS, ", got", start)
	}
	if _, err := loadStart(db, "run1", "MGK"); err == nil {
		tst.Error("Expected an error for a different protein")
	}
	if _, err := loadStart(db, "run2", aa); err == nil {
		tst.Error("Expected an error for a missing key")
	}
	if _, err := loadStart(nil, "run1", aa); err == nil {
		tst.Error("Expected an error without a database")
	}

	// continue from the saved CDS
	cfg.InitCDS = start
	cfg.Steps = 0
	out.Reset()
	opts.cp = nil
	opts.plot = nil
	_, first, err := runWalk(cfg, opts)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if math.Abs(first.Fitness-last.BestFitness) > smallDiff {
		tst.Error("Expected fitness", last.BestFitness, ", got", first.Fitness)
	}

	r, err := newReport(u, oracle, aa, last.CDS)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if r.Protein != aa || r.CAI != 1 || r.AUP < 0 || r.AUP > 1 || r.EFE > r.MFE+smallDiff {
		tst.Error("Unexpected report:", r)
	}
}

func TestRunWalkSaveError(tst *testing.T) {
	u := codon.Uniform()
	obj, err := objective.New("none", objective.NewConfig(u), nil)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	db := testDB(tst)
	seed := int64(3)
	cfg := optimize.WalkConfig{AA: "MGK", Usage: u, Objective: obj, Steps: 20, Seed: &seed}
	opts := walkOptions{
		out:    &bytes.Buffer{},
		report: 1,
		// every step is old enough to be saved
		cp: checkpoint.NewCheckpointIO(db, []byte("run"), -1),
	}
	db.Close()
	_, last, err := runWalk(cfg, opts)
	if err == nil {
		tst.Fatal("Expected an error saving to a closed database")
	}
	if last.Step != 0 {
		tst.Error("Expected the walk to stop at step 0, got", last.Step)
	}
}

func TestResumeAndList(tst *testing.T) {
	db := testDB(tst)
	cp := checkpoint.NewCheckpointIO(db, []byte("run"), 10)
	cds, err := resumeCDS(cp, "MGK")
	if err != nil || cds != nil {
		tst.Error("Expected nothing to resume, got", cds, err)
	}

	unfinished := &checkpoint.CheckpointData{AA: "MGK", CDS: "AUGGGAAAA", Step: 5, Fitness: 0.5, Stability: "aup"}
	if err := cp.Save(unfinished); err != nil {
		tst.Fatal("Error: ", err)
	}
	cds, err = resumeCDS(cp, "MGK")
	if err != nil || cds.RNA() != "AUGGGAAAA" {
		tst.Error("Expected to resume AUGGGAAAA, got", cds, err)
	}
	if _, err := resumeCDS(cp, "MG"); err == nil {
		tst.Error("Expected an error for a different protein")
	}

	unfinished.Final = true
	if err := cp.Save(unfinished); err != nil {
		tst.Fatal("Error: ", err)
	}
	if cds, err := resumeCDS(cp, "MGK"); err != nil || cds != nil {
		tst.Error("Finished run shouldn't be resumed, got", cds, err)
	}

	var b bytes.Buffer
	if err := listCheckpoints(db, &b); err != nil {
		tst.Fatal("Error: ", err)
	}
	if b.String() != "run\t5\t0.500000\ttrue\taup\n" {
		tst.Errorf("Unexpected list: %q", b.String())
	}
}

func TestWriteFasta(tst *testing.T) {
	cds := make(codon.CDS, 40)
	for i := range cds {
		cds[i] = "GGU"
	}
	fn := filepath.Join(tst.TempDir(), "out.fst")
	if err := writeFasta(fn, "best", cds); err != nil {
		tst.Fatal("Error: ", err)
	}
	b, err := os.ReadFile(fn)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) != 3 || lines[0] != ">best" || len(lines[1]) != 80 || len(lines[2]) != 40 {
		tst.Errorf("Unexpected FASTA: %q", b)
	}
	f, err := os.Open(fn)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	defer f.Close()
	seqs, err := bio.ParseFasta(f)
	if err != nil || len(seqs) != 1 || seqs[0].Sequence != cds.RNA() {
		tst.Error("FASTA doesn't read back:", seqs, err)
	}
}

func TestSetLevels(tst *testing.T) {
	defer func() {
		for _, pkg := range packages {
			logging.SetLevel(logging.WARNING, pkg)
		}
	}()
	setLevels(logging.NOTICE, false)
	if logging.GetLevel("optimize") != logging.NOTICE || logging.GetLevel("objective") != logging.NOTICE {
		tst.Error("Expected notice level")
	}
	setLevels(logging.NOTICE, true)
	if logging.GetLevel("optimize") != logging.INFO || logging.GetLevel("objective") != logging.DEBUG {
		tst.Error("Verbose mode should show walk progress and objective values")
	}
	if logging.GetLevel("fold") != logging.NOTICE {
		tst.Error("Verbose mode shouldn't change other packages")
	}
	setLevels(logging.DEBUG, true)
	if logging.GetLevel("optimize") != logging.DEBUG {
		tst.Error("Verbose mode shouldn't lower the level")
	}
}

func TestPlot(tst *testing.T) {
	fp := &fitnessPlot{}
	for i := 0; i < 10; i++ {
		fp.Add(optimize.Result{Step: i, Fitness: float64(i % 3), BestFitness: float64(i)})
	}
	fn := filepath.Join(tst.TempDir(), "fitness.png")
	if err := fp.Save(fn); err != nil {
		tst.Fatal("Error: ", err)
	}
	if st, err := os.Stat(fn); err != nil || st.Size() == 0 {
		tst.Error("Plot file wasn't created:", err)
	}
}
