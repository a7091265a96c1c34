package plot

import (
	"fmt"
	"image/color"

	"github.com/lintang-b-s/macrotracking/pkg/comparator"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var trackColors = []color.Color{
	color.RGBA{R: 255, G: 140, A: 255},
	color.RGBA{G: 120, B: 255, A: 255},
	color.RGBA{R: 40, G: 160, B: 40, A: 255},
	color.RGBA{R: 200, B: 200, A: 255},
}

// SavePNG draws the tracks in the projected frame, meters relative to the first point of the first track.
func SavePNG(path, title string, tracks ...Track) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	var originX, originY float64
	originSet := false
	lines := 0
	for i, t := range tracks {
		if len(t.Positions) == 0 {
			continue
		}
		if !originSet {
			originX, originY = t.Positions[0].X, t.Positions[0].Y
			originSet = true
		}
		pts := make(plotter.XYs, 0, len(t.Positions))
		for _, pos := range t.Positions {
			pts = append(pts, plotter.XY{X: pos.X - originX, Y: pos.Y - originY})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line for %s: %w", t.Name, err)
		}
		line.Color = trackColors[i%len(trackColors)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(t.Name, line)
		lines++
	}
	if lines == 0 {
		return fmt.Errorf("nothing to plot: %w", comparator.ErrEmptyTrace)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
