package stats

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotSeries is one labelled line of a fitness plot.
type PlotSeries struct {
	Label  string
	Points []SeriesPoint
}

// WriteFitnessPlot draws fitness against generation. The image format
// follows the extension of path (png, svg, pdf, ...).
func WriteFitnessPlot(path, title string, series []PlotSeries) error {
	if len(series) == 0 {
		return fmt.Errorf("at least one series is required")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.Points) == 0 {
			return fmt.Errorf("series %q is empty", s.Label)
		}
		pts := make(plotter.XYs, len(s.Points))
		for j, point := range s.Points {
			pts[j].X = float64(point.Generation)
			pts[j].Y = point.Value
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Label, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}
	p.Legend.Top = true
	p.Legend.Left = false

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
