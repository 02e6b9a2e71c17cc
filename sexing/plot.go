package sexing

import (
	"bytes"
	"context"
	"math"
	"path/filepath"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
)

// Plot geometry matches the original 6.4 x 4.8 inch figures.
const (
	plotWidthInches  = 6.4
	plotHeightInches = 4.8
)

func labelStyle(label Label) chart.Style {
	c := chart.ColorBlue
	switch label {
	case Female:
		c = chart.ColorOrange
	case Undetermined:
		c = chart.ColorGreen
	}
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    c,
	}
}

// writePlots renders the scatter plot and the ratio histogram into the
// output directory.  Any failure here is non-fatal to the run; the report
// has already been written.
func writePlots(ctx context.Context, samples []Sample, opts *Opts) error {
	if len(samples) == 0 {
		return errors.New("no samples to plot")
	}
	if err := writeScatterPlot(ctx, samples, opts); err != nil {
		return err
	}
	return writeHistPlot(ctx, samples, opts)
}

// writeScatterPlot draws X reads against Y reads, one point per sample, one
// series (and color) per sex label.
func writeScatterPlot(ctx context.Context, samples []Sample, opts *Opts) error {
	var series []chart.Series
	for _, label := range []Label{Male, Female, Undetermined} {
		var xs, ys []float64
		for _, s := range samples {
			if s.Sex == label {
				xs = append(xs, float64(s.XReads))
				ys = append(ys, float64(s.YReads))
			}
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    label.String(),
			Style:   labelStyle(label),
			XValues: xs,
			YValues: ys,
		})
	}
	graph := chart.Chart{
		DPI:    float64(opts.DPI),
		Width:  int(plotWidthInches * float64(opts.DPI)),
		Height: int(plotHeightInches * float64(opts.DPI)),
		XAxis:  chart.XAxis{Name: "nreads_xchrom"},
		YAxis:  chart.YAxis{Name: "nreads_ychrom"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderPNG(ctx, &graph, filepath.Join(opts.OutputDir, ScatterPlotName))
}

// writeHistPlot draws the distribution of the finite sample ratios, plus
// vertical lines at the thresholds when those are uniform across samples.
func writeHistPlot(ctx context.Context, samples []Sample, opts *Opts) error {
	ratios := finiteRatios(samples)
	if len(ratios) == 0 {
		return errors.New("no finite ratios to plot")
	}
	hist := histogram.Hist(opts.NBins, ratios)
	xs := make([]float64, len(hist.Buckets))
	ys := make([]float64, len(hist.Buckets))
	for i, bucket := range hist.Buckets {
		xs[i] = (bucket.Min + bucket.Max) / 2
		ys[i] = float64(bucket.Count)
	}

	var gridLines []chart.GridLine
	if opts.TwoThresholds {
		gridLines = []chart.GridLine{
			{Value: opts.LowerThreshold},
			{Value: opts.UpperThreshold},
		}
	} else if thresholds := distinctThresholds(samples); len(thresholds) == 1 {
		// Per-sample automatic thresholds that vary get no line at all.
		if !math.IsInf(thresholds[0], 0) {
			gridLines = []chart.GridLine{{Value: thresholds[0]}}
		}
	}

	graph := chart.Chart{
		DPI:    float64(opts.DPI),
		Width:  int(plotWidthInches * float64(opts.DPI)),
		Height: int(plotHeightInches * float64(opts.DPI)),
		XAxis: chart.XAxis{
			Name:      "Y/X ratio",
			GridLines: gridLines,
			GridMajorStyle: chart.Style{
				Hidden:      len(gridLines) == 0,
				StrokeColor: chart.ColorRed,
				StrokeWidth: 1.0,
			},
		},
		YAxis: chart.YAxis{Name: "count"},
		Series: []chart.Series{
			chart.HistogramSeries{
				Name: "ratio",
				InnerSeries: chart.ContinuousSeries{
					XValues: xs,
					YValues: ys,
				},
			},
		},
	}
	return renderPNG(ctx, &graph, filepath.Join(opts.OutputDir, HistPlotName))
}

func renderPNG(ctx context.Context, graph *chart.Chart, path string) (err error) {
	var buf bytes.Buffer
	if err = graph.Render(chart.PNG, &buf); err != nil {
		return errors.Wrapf(err, "rendering %s", path)
	}
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	if _, err = buf.WriteTo(out.Writer(ctx)); err != nil {
		return err
	}
	log.Printf("plot written to %s", path)
	return nil
}
