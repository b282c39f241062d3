package optimize

import (
	"fmt"
	"io"
	"strings"
)

// Trajectory writes walk results as tab separated lines:
// step, fitness, best fitness, measures, accepted flag and the best CDS.
// Only every period-th step is written; the last result passed to
// Write is always written by Flush.
type Trajectory struct {
	w       io.Writer
	period  int
	header  bool
	pending *Result
}

// NewTrajectory creates a trajectory writer. Period values < 1 mean
// every step is written.
func NewTrajectory(w io.Writer, period int) *Trajectory {
	if period < 1 {
		period = 1
	}
	return &Trajectory{w: w, period: period}
}

// PrintHeader writes the header line for the given measure names.
func (t *Trajectory) PrintHeader(names []string) error {
	t.header = true
	_, err := fmt.Fprintf(t.w, "step\tfitness\tbest_fitness\t%s\taccepted\tcds\n", strings.Join(names, "\t"))
	return err
}

// PrintLine writes a single result line.
func (t *Trajectory) PrintLine(r Result) error {
	vals := r.Measures.Values()
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = fmt.Sprintf("%f", v)
	}
	_, err := fmt.Fprintf(t.w, "%d\t%f\t%f\t%s\t%t\t%s\n",
		r.Step, r.Fitness, r.BestFitness, strings.Join(s, "\t"), r.Accepted, r.CDS.RNA())
	return err
}

// Write adds a result. The header is written before the first result.
func (t *Trajectory) Write(r Result) error {
	if !t.header {
		if err := t.PrintHeader(r.Measures.Kind.Names()); err != nil {
			return err
		}
	}
	if r.Step%t.period == 0 {
		t.pending = nil
		return t.PrintLine(r)
	}
	t.pending = &r
	return nil
}

// Flush writes the last result if it was skipped.
func (t *Trajectory) Flush() error {
	if t.pending == nil {
		return nil
	}
	r := *t.pending
	t.pending = nil
	return t.PrintLine(r)
}
