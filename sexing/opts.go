package sexing

import (
	"math"

	"github.com/pkg/errors"
)

// Opts configures a sexing run.  NaN threshold fields mean "not specified".
type Opts struct {
	// InputDir is the directory containing per-sample idxstats files.
	InputDir string
	// YChrom and XChrom are the names of the Y and X chromosomes in the
	// reference the samples were aligned to.
	YChrom string
	XChrom string
	// Threshold is the Y/X ratio cutoff separating males from females.  When
	// unset (NaN), a per-sample threshold of 0.25 * len(Y) / len(X) is
	// computed from that sample's own reference lengths.
	Threshold float64
	// TwoThresholds switches to the upper/lower cutoff pair, with samples
	// strictly between the two left undetermined.
	TwoThresholds  bool
	UpperThreshold float64
	LowerThreshold float64
	// MinY and MinX are minimum read counts required for sexing; below
	// either, a sample is undetermined regardless of its ratio.
	MinY int64
	MinX int64
	// Ext filters input file names.  A non-empty value matches names ending
	// with it; an empty value matches only extensionless names.
	Ext       string
	OutputDir string
	// Plot enables the scatter plot and ratio histogram.
	Plot  bool
	NBins int
	DPI   int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	Threshold:      math.NaN(), // -threshold; unset selects automatic per-sample thresholds
	UpperThreshold: math.NaN(), // -upper-threshold
	LowerThreshold: math.NaN(), // -lower-threshold
	MinY:           0,          // -min-y
	MinX:           1,          // -min-x; keeps x=0 samples undetermined unless overridden
	Ext:            ".txt",     // -ext
	OutputDir:      ".",        // -output
	NBins:          100,        // -nbins
	DPI:            300,        // -dpi
}

// validate rejects invalid option combinations before any file is read.
func (opts *Opts) validate() error {
	if opts.InputDir == "" {
		return errors.New("input directory required")
	}
	if opts.YChrom == "" || opts.XChrom == "" {
		return errors.New("Y and X chromosome names required")
	}
	if opts.YChrom == opts.XChrom {
		return errors.Errorf("Y and X chromosome names are both %q", opts.YChrom)
	}
	if opts.TwoThresholds {
		if math.IsNaN(opts.UpperThreshold) || math.IsNaN(opts.LowerThreshold) {
			return errors.New("-two-thresholds requires both -upper-threshold and -lower-threshold")
		}
		if opts.LowerThreshold > opts.UpperThreshold {
			return errors.Errorf("-lower-threshold (%v) exceeds -upper-threshold (%v)",
				opts.LowerThreshold, opts.UpperThreshold)
		}
		if !math.IsNaN(opts.Threshold) {
			return errors.New("-threshold conflicts with -two-thresholds")
		}
	} else if !math.IsNaN(opts.UpperThreshold) || !math.IsNaN(opts.LowerThreshold) {
		return errors.New("-upper-threshold and -lower-threshold require -two-thresholds")
	}
	if opts.MinY < 0 || opts.MinX < 0 {
		return errors.New("-min-y and -min-x may not be negative")
	}
	if opts.NBins < 1 {
		return errors.Errorf("invalid histogram bin count %d", opts.NBins)
	}
	if opts.Plot && opts.DPI <= 0 {
		return errors.Errorf("invalid plot resolution %d", opts.DPI)
	}
	return nil
}
