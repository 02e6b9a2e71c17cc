package main

/*
bio-sexing estimates the sex of sequenced samples from the ratio of the
counts of reads mapped to the Y and X chromosomes, using per-sample
alignment summary statistics as reported by samtools idxstats.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio-sexing/sexing"
)

var (
	input          = flag.String("input", sexing.DefaultOpts.InputDir, "Path to the directory containing idxstats files; required")
	ychrom         = flag.String("ychrom", sexing.DefaultOpts.YChrom, "Name of the Y chromosome in the reference; required")
	xchrom         = flag.String("xchrom", sexing.DefaultOpts.XChrom, "Name of the X chromosome in the reference; required")
	threshold      = flag.Float64("threshold", sexing.DefaultOpts.Threshold, "Y/X ratio threshold for sexing; defaults to 0.25 * len(Y) / len(X) per sample")
	output         = flag.String("output", sexing.DefaultOpts.OutputDir, "Output directory")
	plot           = flag.Bool("plot", sexing.DefaultOpts.Plot, "Output scatter plot and histogram")
	minY           = flag.Int64("min-y", sexing.DefaultOpts.MinY, "Minimum number of Y chromosome reads required for sexing")
	minX           = flag.Int64("min-x", sexing.DefaultOpts.MinX, "Minimum number of X chromosome reads required for sexing")
	twoThresholds  = flag.Bool("two-thresholds", sexing.DefaultOpts.TwoThresholds, "Use separate upper and lower thresholds, leaving samples between them undetermined; requires -upper-threshold and -lower-threshold")
	upperThreshold = flag.Float64("upper-threshold", sexing.DefaultOpts.UpperThreshold, "Upper Y/X ratio threshold for -two-thresholds")
	lowerThreshold = flag.Float64("lower-threshold", sexing.DefaultOpts.LowerThreshold, "Lower Y/X ratio threshold for -two-thresholds")
	ext            = flag.String("ext", sexing.DefaultOpts.Ext, "Extension of the idxstats files; \"\" matches files with no extension")
	nBins          = flag.Int("nbins", sexing.DefaultOpts.NBins, "Number of bins for the histogram")
	dpi            = flag.Int("dpi", sexing.DefaultOpts.DPI, "Resolution of the plots, in dots per inch")
	version        = flag.Bool("version", false, "Print the version and exit")
)

func bioSexingUsage() {
	fmt.Printf("Usage: %s -input DIR -ychrom NAME -xchrom NAME [OPTIONS]\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioSexingUsage
	shutdown := grail.Init()
	defer shutdown()

	if *version {
		fmt.Println(sexing.Version)
		return
	}
	if flag.NArg() != 0 {
		log.Fatalf("unexpected positional arguments; please check flag syntax: %v", flag.Args())
	}
	ctx := vcontext.Background()
	opts := sexing.Opts{
		InputDir:       *input,
		YChrom:         *ychrom,
		XChrom:         *xchrom,
		Threshold:      *threshold,
		TwoThresholds:  *twoThresholds,
		UpperThreshold: *upperThreshold,
		LowerThreshold: *lowerThreshold,
		MinY:           *minY,
		MinX:           *minX,
		Ext:            *ext,
		OutputDir:      *output,
		Plot:           *plot,
		NBins:          *nBins,
		DPI:            *dpi,
	}
	if err := sexing.Run(ctx, &opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
