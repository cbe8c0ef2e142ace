package report

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlaceholderLoss is the illustrative curve drawn by the evaluate stage. It is
// not derived from any model.
var PlaceholderLoss = []float64{1.0, 0.8, 0.6, 0.5, 0.45}

// LossCurve builds a line plot of loss per epoch.
func LossCurve(loss []float64, title string) (*plot.Plot, error) {
	if len(loss) == 0 {
		return nil, errors.New("report: empty loss series")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Loss"

	pts := make(plotter.XYs, len(loss))
	for i, v := range loss {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.Color = color.RGBA{B: 255, A: 255, R: 50, G: 50}
	l.LineStyle.Width = vg.Points(2)
	p.Add(l)
	p.Add(plotter.NewGrid())
	return p, nil
}

// SaveLossCurve renders the curve to filename; the format follows the
// extension (.png, .svg, .pdf).
func SaveLossCurve(loss []float64, title, filename string) error {
	p, err := LossCurve(loss, title)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
