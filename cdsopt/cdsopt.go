/*

Cdsopt optimizes a protein coding sequence (CDS) for expression. It
performs an adaptive random walk over synonymous codons maximizing
the codon adaptation index (CAI) together with mRNA stability.

The basic usage of cdsopt looks like this:

	cdsopt --aa MVSKGEELFTGVVPILVELDGDVNGHKFSVSGEG

, this will optimize CAI (uniform codon usage table) and the average
unpaired probability for 1000 steps.

You can change the usage table, the stability measure and the number
of steps:

	cdsopt --table homosapiens.txt --stability efe --steps 5000 --fasta protein.fst

To see all the options run:

	cdsopt -h

*/
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("cdsopt")
var formatter = logging.MustStringFormatter(`%{message}`)

// packages are logger names configured from the command line.
var packages = []string{"cdsopt", "optimize", "objective", "codon", "fold", "checkpoint"}

// command-line options
var (
	// application
	app = kingpin.New("cdsopt", "mRNA coding sequence optimizer").Version(version)

	// input
	aaSeq     = app.Flag("aa", "amino-acid sequence").String()
	fastaF    = app.Flag("fasta", "read amino-acid sequence from a FASTA file (first record)").ExistingFile()
	tableF    = app.Flag("table", "codon usage table, uniform by default").ExistingFile()
	stability = app.Flag("stability", "stability objective "+
		"(none: CAI only, "+
		"aup: CAI and average unpaired probability, "+
		"efe: CAI and ensemble free energy"+
		")").Default("aup").Enum("none", "aup", "efe")

	// objective parameters
	caiThreshold = app.Flag("cai-threshold", "CAI below this value is penalized").Default("0.8").Float64()
	caiExpScale  = app.Flag("cai-exp-scale", "CAI penalty exponent scale").Default("1.0").Float64()
	temperature  = app.Flag("temperature", "folding temperature in C").Default("37").Float64()
	cacheSize    = app.Flag("cache", "number of folding results to cache (0 disables caching)").Default("1000").Int()

	// walk parameters
	steps   = app.Flag("steps", "number of steps").Default("1000").Int()
	report  = app.Flag("report", "report every N steps").Default("1").Int()
	seed    = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()
	verbose = app.Flag("verbose", "log walk progress").Bool()

	// checkpoints
	checkpointF = app.Flag("checkpoint", "checkpoint database file").String()
	checkpointS = app.Flag("checkpoint-seconds", "save checkpoint every N seconds").Default("60").Float64()
	key         = app.Flag("key", "checkpoint key for this run, random by default").String()
	startKey    = app.Flag("start", "checkpoint key to read the initial CDS from").String()
	list        = app.Flag("list", "list runs stored in the checkpoint database and exit").Bool()

	// input/output
	outLogF   = app.Flag("log", "write log to a file").String()
	outF      = app.Flag("out", "write walk trajectory to a file").String()
	fastaOutF = app.Flag("fasta-out", "write the final CDS to a FASTA file").String()
	plotF     = app.Flag("plot", "plot fitness to a PNG file").String()
	logLevel  = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json output to a file").String()
)

// setLevels sets the log level of all the packages. Verbose mode
// makes sure the walk progress (info) and the objective values (debug)
// are shown.
func setLevels(level logging.Level, verbose bool) {
	for _, pkg := range packages {
		logging.SetLevel(level, pkg)
	}
	if !verbose {
		return
	}
	if level < logging.INFO {
		logging.SetLevel(logging.INFO, "optimize")
	}
	logging.SetLevel(logging.DEBUG, "objective")
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	setLevels(level, *verbose)

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)

	startTime := time.Now()
	summary := run()
	summary.Version = version
	summary.CommandLine = os.Args
	summary.Seed = *seed
	summary.Time = time.Since(startTime).Seconds()
	log.Noticef("Running time: %v", time.Since(startTime))

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			f, err := os.Create(*jsonF)
			if err != nil {
				log.Error("Error creating json output file:", err)
			} else {
				f.Write(j)
				f.Close()
			}
		}
	}
}
