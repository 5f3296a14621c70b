package insights

import (
	"fmt"
	"math"
	"slices"

	"purchase-dashboard/internal/models"
)

const DefaultHistogramBins = 10

// Histogram counts sorted, non-negative values into binCount bins of width
// ceil(max/binCount). Values at or past the last boundary land in the last
// bin. Empty input yields no bins. When every value is zero the width is
// floored to 1 so all values count in the first bin.
func Histogram(sorted []float64, binCount int) []models.HistogramBin {
	if len(sorted) == 0 || binCount < 1 {
		return nil
	}

	width := math.Ceil(sorted[len(sorted)-1] / float64(binCount))
	if width <= 0 {
		width = 1
	}

	bins := make([]models.HistogramBin, binCount)
	for i := range bins {
		lower := float64(i) * width
		upper := float64(i+1) * width
		bins[i] = models.HistogramBin{
			Label: fmt.Sprintf("%.0f - %.0f", lower, upper),
			Lower: lower,
			Upper: upper,
		}
	}

	for _, v := range sorted {
		idx := int(math.Floor(v / width))
		idx = max(0, min(idx, binCount-1))
		bins[idx].Count++
	}
	return bins
}

// CLVHistogram bins per-customer lifetime spend.
func CLVHistogram(records []models.TransactionRecord, binCount int) []models.HistogramBin {
	clv := CustomerLifetimeValue(records)
	values := make([]float64, 0, clv.Len())
	for _, e := range clv.Entries() {
		values = append(values, e.Value)
	}
	slices.Sort(values)
	return Histogram(values, binCount)
}
