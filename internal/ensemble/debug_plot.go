package ensemble

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pplcc/plotext"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DebugPlot stacks plots vertically into one PNG.
type DebugPlot struct {
	plots   []*plot.Plot
	heights []float64
	w       int
	h       int
}

func NewDebugPlot(w, h int) *DebugPlot {
	return &DebugPlot{w: w, h: h}
}

func (d *DebugPlot) Add(p *plot.Plot, height float64) {
	d.plots = append(d.plots, p)
	d.heights = append(d.heights, height)
}

func (d *DebugPlot) Len() int {
	return len(d.plots)
}

// PlotDecision renders the per-timeframe scores followed by one chart of
// indicator contributions per timeframe.
func PlotDecision(title string, dec Decision, w, h int) (*DebugPlot, error) {
	dp := NewDebugPlot(w, h)
	if len(dec.Timeframes) == 0 {
		return dp, nil
	}

	labels := make([]string, len(dec.Timeframes))
	scores := make(plotter.Values, len(dec.Timeframes))
	for i, tf := range dec.Timeframes {
		labels[i] = tf.Label
		scores[i] = tf.Score
	}

	p, err := barPlot(fmt.Sprintf("%s: %s score=%.3f conf=%.2f", title, dec.Direction, dec.Score, dec.Confidence), labels, scores)
	if err != nil {
		return nil, err
	}
	dp.Add(p, 1)

	for _, tf := range dec.Timeframes {
		var ids []string
		var vals plotter.Values
		for _, b := range dec.Breakdown {
			if b.Timeframe != tf.Label {
				continue
			}
			ids = append(ids, b.ID)
			vals = append(vals, b.Contribution)
		}
		if len(ids) == 0 {
			continue
		}

		p, err := barPlot(fmt.Sprintf("%s (weight %.2f)", tf.Label, tf.Weight), ids, vals)
		if err != nil {
			return nil, err
		}
		dp.Add(p, 0.75)
	}

	return dp, nil
}

func barPlot(title string, labels []string, vals plotter.Values) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Min, p.Y.Max = -1, 1

	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("failed to create bar chart: %w", err)
	}
	p.Add(plotter.NewGrid(), bars)
	p.NominalX(labels...)

	return p, nil
}

func (d *DebugPlot) WriteTo(w io.Writer) (int64, error) {
	var axis []*plot.Axis
	for _, p := range d.plots {
		axis = append(axis, &p.Y)
	}
	plotext.UniteAxisRanges(axis)

	tbl := plotext.Table{
		RowHeights: d.heights,
		ColWidths:  []float64{1},
	}

	var plots2d [][]*plot.Plot
	for _, p := range d.plots {
		plots2d = append(plots2d, []*plot.Plot{p})
	}

	h := 0.0
	for _, v := range d.heights {
		h += v * float64(d.h)
	}

	img := vgimg.New(vg.Points(float64(d.w)), vg.Points(h))
	dc := draw.New(img)

	canvases := tbl.Align(plots2d, dc)
	for i, p := range d.plots {
		p.Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	n, err := png.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("failed to write plot: %w", err)
	}

	return n, nil
}

func (d *DebugPlot) Save(path string) (err error) {
	if len(d.plots) == 0 {
		return errors.New("nothing to plot")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close plot file: %w", cerr))
		}
	}()

	if _, err := d.WriteTo(f); err != nil {
		return err
	}

	return nil
}
