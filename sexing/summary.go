package sexing

import (
	"bytes"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/grailbio/base/log"
	"github.com/montanaflynn/stats"
)

// finiteRatios returns the finite sample ratios, dropping Inf and NaN.
func finiteRatios(samples []Sample) []float64 {
	var ratios []float64
	for _, s := range samples {
		if !math.IsInf(s.Ratio, 0) && !math.IsNaN(s.Ratio) {
			ratios = append(ratios, s.Ratio)
		}
	}
	return ratios
}

// logSummary logs per-label sample counts and, for labels with at least two
// finite ratios, basic ratio statistics.  At debug level it also prints an
// ASCII histogram of the finite ratio distribution.
func logSummary(samples []Sample) {
	log.Printf("results for %d samples:", len(samples))
	for _, label := range []Label{Male, Female, Undetermined} {
		var labeled []Sample
		for _, s := range samples {
			if s.Sex == label {
				labeled = append(labeled, s)
			}
		}
		ratios := stats.Float64Data(finiteRatios(labeled))
		if len(ratios) < 2 {
			log.Printf("  %s: %d", label, len(labeled))
			continue
		}
		mean, _ := ratios.Mean()
		median, _ := ratios.Median()
		stddev, _ := ratios.StandardDeviation()
		log.Printf("  %s: %d (ratio mean %.4g, median %.4g, stddev %.4g)",
			label, len(labeled), mean, median, stddev)
	}

	if log.At(log.Debug) {
		ratios := finiteRatios(samples)
		if len(ratios) == 0 {
			return
		}
		hist := histogram.Hist(10, ratios)
		var buf bytes.Buffer
		if err := histogram.Fprint(&buf, hist, histogram.Linear(40)); err != nil {
			return
		}
		log.Debug.Printf("ratio distribution:\n%s", buf.String())
	}
}
