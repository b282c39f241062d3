package main

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/cdsopt/optimize"
)

// fitnessPlot collects fitness values for plotting.
type fitnessPlot struct {
	fitness plotter.XYs
	best    plotter.XYs
}

// Add adds a walk result.
func (fp *fitnessPlot) Add(r optimize.Result) {
	x := float64(r.Step)
	fp.fitness = append(fp.fitness, plotter.XY{X: x, Y: r.Fitness})
	fp.best = append(fp.best, plotter.XY{X: x, Y: r.BestFitness})
}

// Save renders fitness and best fitness per step to a file. The
// format is defined by the file extension.
func (fp *fitnessPlot) Save(fileName string) error {
	p := plot.New()
	p.Title.Text = "Adaptive walk"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "fitness"
	p.Add(plotter.NewGrid())

	err := plotutil.AddLines(p,
		"fitness", fp.fitness,
		"best fitness", fp.best)
	if err != nil {
		return err
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, fileName)
}
