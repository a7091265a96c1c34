package plot

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/lintang-b-s/macrotracking/pkg/comparator"
	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
)

const (
	printedTarget = 100
)

// Track. named sequence of positions drawn on the same chart.
type Track struct {
	Name      string
	Positions []geo.Position
}

func scatterData(track Track) []opts.ScatterData {
	indices := comparator.SampleIndices(len(track.Positions), printedTarget)
	data := make([]opts.ScatterData, 0, len(indices))
	for n, i := range indices {
		p := track.Positions[i]
		data = append(data, opts.ScatterData{
			Name:  fmt.Sprintf("Position(%d)", n),
			Value: []interface{}{p.Lon, p.Lat},
		})
	}
	return data
}

// bounds returns a padded lon/lat window around all tracks.
func bounds(tracks []Track) (minLon, maxLon, minLat, maxLat float64) {
	ps := make([][]geo.Position, 0, len(tracks))
	for _, t := range tracks {
		ps = append(ps, t.Positions)
	}
	bb := datastructure.NewBoundingBoxFromPositions(ps...).Pad(0.05)
	pad := 1e-4
	return bb.GetMinLon() - pad, bb.GetMaxLon() + pad, bb.GetMinLat() - pad, bb.GetMaxLat() + pad
}

// RenderHTML writes an interactive scatter map of the tracks, at most about 100 points per track.
func RenderHTML(w io.Writer, title string, tracks ...Track) error {
	nonEmpty := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if len(t.Positions) > 0 {
			nonEmpty = append(nonEmpty, t)
		}
	}
	if len(nonEmpty) == 0 {
		return fmt.Errorf("nothing to plot: %w", comparator.ErrEmptyTrace)
	}
	minLon, maxLon, minLat, maxLat := bounds(nonEmpty)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("tracks=%d", len(nonEmpty))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minLon, Max: maxLon, Name: "Longitude", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minLat, Max: maxLat, Name: "Latitude", NameLocation: "middle", NameGap: 40}),
	)
	for _, t := range nonEmpty {
		scatter.AddSeries(t.Name, scatterData(t), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}
	return scatter.Render(w)
}

func RenderHTMLFile(path, title string, tracks ...Track) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderHTML(f, title, tracks...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
