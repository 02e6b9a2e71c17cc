// Package sexing estimates the sex of sequenced samples from the ratio of
// read counts mapped to the Y and X chromosomes, as reported by samtools
// idxstats-style alignment summaries.
package sexing

import (
	"context"
	"math"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/bio-sexing/idxstats"
)

// Version is the bio-sexing release version.
const Version = "0.1.0"

// Output file names, all placed under Opts.OutputDir.
const (
	ReportName      = "sexing.txt"
	ScatterPlotName = "scatter_plot.png"
	HistPlotName    = "hist_plot.png"
)

// Label is an estimated sex.
type Label int

const (
	Male Label = iota
	Female
	Undetermined
)

func (l Label) String() string {
	switch l {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "undetermined"
	}
}

// Sample is the sexing result for one input file.  Immutable once appended
// to the report table.
type Sample struct {
	// Name is the input file name minus the matched extension.
	Name   string
	YReads int64
	XReads int64
	// YLength and XLength are the reference sequence lengths, used for
	// automatic thresholds.
	YLength int64
	XLength int64
	// Ratio is YReads/XReads; +Inf when XReads is zero and YReads is not.
	Ratio float64
	// Threshold is the single-mode cutoff applied to this sample.  NaN in
	// two-threshold mode and for gated samples under automatic thresholds.
	Threshold float64
	Sex       Label
}

// Policy is the classification rule applied to one sample's counts.
type Policy struct {
	// Threshold is the single-mode cutoff; ignored when TwoThresholds is set.
	Threshold     float64
	TwoThresholds bool
	Upper         float64
	Lower         float64
	// MinY and MinX are minimum counts below which the sample is
	// undetermined.
	MinY int64
	MinX int64
}

// Ratio returns yReads/xReads as an extended real: +Inf when xReads is zero
// and yReads is not, NaN when both are zero.
func Ratio(yReads, xReads int64) float64 {
	if xReads == 0 {
		if yReads == 0 {
			return math.NaN()
		}
		return math.Inf(1)
	}
	return float64(yReads) / float64(xReads)
}

// Classify returns the sex label for the given read counts under p.  Pure
// function of its inputs.
//
// The minimum-count gates dominate: a sample below either gate is
// undetermined no matter its ratio.  Comparisons are inclusive on the male
// side (ratio >= threshold) and, in two-threshold mode, on both cutoffs,
// leaving only the open interval between them undetermined.
func Classify(yReads, xReads int64, p Policy) Label {
	if yReads < p.MinY || xReads < p.MinX {
		return Undetermined
	}
	ratio := Ratio(yReads, xReads)
	if p.TwoThresholds {
		switch {
		case ratio >= p.Upper:
			return Male
		case ratio <= p.Lower:
			return Female
		default:
			return Undetermined
		}
	}
	if ratio >= p.Threshold {
		return Male
	}
	return Female
}

// Run executes the whole pipeline: scan the input directory, parse and
// classify each file, write the report, log the summary, and optionally
// render plots.  Per-file parse failures are logged and skipped; they never
// abort the batch.  A fatal error is returned only before any output is
// produced (bad configuration or an unreadable input directory).
func Run(ctx context.Context, opts *Opts) error {
	if err := opts.validate(); err != nil {
		return err
	}
	autoThreshold := !opts.TwoThresholds && math.IsNaN(opts.Threshold)
	if autoThreshold {
		log.Printf("threshold automatically set to one fourth of the ratio of Y and X sequence lengths; use -threshold to override")
	}
	names, err := idxstats.ListDir(opts.InputDir, opts.Ext)
	if err != nil {
		return err
	}

	samples := make([]Sample, 0, len(names))
	for _, name := range names {
		sample, err := processFile(name, opts, autoThreshold)
		if err != nil {
			log.Error.Printf("skipping %s: %v", name, err)
			continue
		}
		samples = append(samples, sample)
	}

	if err := writeReport(ctx, samples, opts); err != nil {
		return err
	}
	logSummary(samples)

	if opts.Plot {
		// The report is already on disk; a plot failure is only logged.
		if err := writePlots(ctx, samples, opts); err != nil {
			log.Error.Printf("error in plotting: %v", err)
		}
	}
	return nil
}

// processFile parses one input file and classifies its sample.
func processFile(name string, opts *Opts, autoThreshold bool) (Sample, error) {
	path := filepath.Join(opts.InputDir, name)
	var (
		records []idxstats.Record
		err     error
	)
	if strings.HasSuffix(name, ".bam") {
		records, err = idxstats.ReadBAM(path)
	} else {
		records, err = idxstats.ReadFile(path)
	}
	if err != nil {
		return Sample{}, err
	}
	yRec, err := idxstats.RequireRef(records, opts.YChrom, path)
	if err != nil {
		return Sample{}, err
	}
	xRec, err := idxstats.RequireRef(records, opts.XChrom, path)
	if err != nil {
		return Sample{}, err
	}

	policy := Policy{
		Threshold:     opts.Threshold,
		TwoThresholds: opts.TwoThresholds,
		Upper:         opts.UpperThreshold,
		Lower:         opts.LowerThreshold,
		MinY:          opts.MinY,
		MinX:          opts.MinX,
	}
	if autoThreshold {
		policy.Threshold = 0.25 * float64(yRec.Length) / float64(xRec.Length)
	}
	sample := Sample{
		Name:      strings.TrimSuffix(name, opts.Ext),
		YReads:    yRec.Mapped,
		XReads:    xRec.Mapped,
		YLength:   yRec.Length,
		XLength:   xRec.Length,
		Ratio:     Ratio(yRec.Mapped, xRec.Mapped),
		Threshold: policy.Threshold,
		Sex:       Classify(yRec.Mapped, xRec.Mapped, policy),
	}
	gated := yRec.Mapped < opts.MinY || xRec.Mapped < opts.MinX
	if opts.TwoThresholds || (autoThreshold && gated) {
		sample.Threshold = math.NaN()
	}
	return sample, nil
}
