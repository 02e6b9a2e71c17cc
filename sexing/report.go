package sexing

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// formatFloat renders an extended-real value for the report: shortest-form
// decimal, "+Inf" for an infinite ratio, empty for NaN (no value).
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// distinctThresholds returns the distinct non-NaN per-sample thresholds, in
// first-seen order.
func distinctThresholds(samples []Sample) []float64 {
	var distinct []float64
	for _, s := range samples {
		if math.IsNaN(s.Threshold) {
			continue
		}
		seen := false
		for _, v := range distinct {
			if v == s.Threshold {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, s.Threshold)
		}
	}
	return distinct
}

// writeReport writes the tab-delimited report table to
// <OutputDir>/sexing.txt, creating the output directory if absent.  The
// threshold column is emitted only when thresholds differ across samples;
// a uniform threshold is logged instead.
func writeReport(ctx context.Context, samples []Sample, opts *Opts) (err error) {
	if err = os.MkdirAll(opts.OutputDir, 0775); err != nil {
		return err
	}
	thresholds := distinctThresholds(samples)
	withThresholdCol := len(thresholds) > 1
	switch {
	case withThresholdCol:
		log.Printf("threshold was differently set among samples")
	case len(thresholds) == 1:
		log.Printf("threshold = %s", formatFloat(thresholds[0]))
	}

	outPath := filepath.Join(opts.OutputDir, ReportName)
	var out file.File
	if out, err = file.Create(ctx, outPath); err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)

	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("id\tsex\tnreads_ychrom\tnreads_xchrom\tratio")
	if withThresholdCol {
		w.WriteString("threshold")
	}
	if err = w.EndLine(); err != nil {
		return err
	}
	for _, s := range samples {
		w.WriteString(s.Name)
		w.WriteString(s.Sex.String())
		w.WriteInt64(s.YReads)
		w.WriteInt64(s.XReads)
		w.WriteString(formatFloat(s.Ratio))
		if withThresholdCol {
			w.WriteString(formatFloat(s.Threshold))
		}
		if err = w.EndLine(); err != nil {
			return err
		}
	}
	if err = w.Flush(); err != nil {
		return err
	}
	log.Printf("report written to %s", outPath)
	return nil
}
