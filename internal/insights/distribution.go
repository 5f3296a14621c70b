package insights

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"purchase-dashboard/internal/models"
)

// GroupDistribution collects value(r) under the integer key(r). Records whose
// key or value is NaN or infinite are skipped for this grouping only. Buckets
// are ordered by ascending key; values keep record order.
func GroupDistribution(
	records []models.TransactionRecord,
	key func(models.TransactionRecord) float64,
	value func(models.TransactionRecord) float64,
) []models.DistributionBucket {
	groups := GroupAndReduce(filterValid(records, key, value),
		func(r models.TransactionRecord) int { return int(key(r)) },
		value,
		func(acc []float64, v float64) []float64 { return append(acc, v) },
		nil)

	buckets := make([]models.DistributionBucket, 0, groups.Len())
	for _, e := range groups.Entries() {
		buckets = append(buckets, models.DistributionBucket{Key: e.Key, Values: e.Value})
	}
	slices.SortFunc(buckets, func(a, b models.DistributionBucket) int { return a.Key - b.Key })
	return buckets
}

func filterValid(
	records []models.TransactionRecord,
	key func(models.TransactionRecord) float64,
	value func(models.TransactionRecord) float64,
) []models.TransactionRecord {
	valid := make([]models.TransactionRecord, 0, len(records))
	for _, r := range records {
		if k := key(r); isFinite(k) && inIntRange(k) && isFinite(value(r)) {
			valid = append(valid, r)
		}
	}
	return valid
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// inIntRange reports whether f converts to int without overflow.
func inIntRange(f float64) bool {
	return f >= math.MinInt && f < math.MaxInt
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(f float64) float64 {
	return math.Floor(f + 0.5)
}

// RatingKey buckets by whole-star rating. A zero rating has no bucket.
func RatingKey(r models.TransactionRecord) float64 {
	k := roundHalfUp(r.ReviewRating)
	if k == 0 {
		return math.NaN()
	}
	return k
}

func QuantityKey(r models.TransactionRecord) float64 {
	return roundHalfUp(r.Quantity)
}

func UnitPrice(r models.TransactionRecord) float64 { return r.UnitPrice }

func TotalPrice(r models.TransactionRecord) float64 { return r.TotalPrice }

// Summarize computes the box-plot five-number summary of values using
// empirical quantiles. An empty slice yields the zero summary.
func Summarize(values []float64) models.BoxSummary {
	if len(values) == 0 {
		return models.BoxSummary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return models.BoxSummary{
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
		Count:  len(sorted),
	}
}

// SummarizeBuckets maps each bucket key to its box summary, preserving order.
func SummarizeBuckets(buckets []models.DistributionBucket) []BucketSummary {
	out := make([]BucketSummary, len(buckets))
	for i, b := range buckets {
		out[i] = BucketSummary{Key: b.Key, Summary: Summarize(b.Values)}
	}
	return out
}

type BucketSummary struct {
	Key     int               `json:"key" yaml:"key"`
	Summary models.BoxSummary `json:"summary" yaml:"summary"`
}
