package insights

import (
	"math"
	"unicode/utf8"

	"purchase-dashboard/internal/models"
)

type Metric struct {
	Name          string
	LowerIsBetter bool
}

// MetricSet is one entity's raw metric values keyed by metric name.
type MetricSet struct {
	Key    string
	Values map[string]float64
}

// Scale min-max normalizes every metric across the cohort to [0,100].
// Lower-is-better metrics are inverted. A metric with max == min divides by 1,
// which scores every entity 0.
func Scale(cohort []MetricSet, metrics []Metric) []models.NormalizedMetricVector {
	if len(cohort) == 0 {
		return nil
	}

	mins := make([]float64, len(metrics))
	maxs := make([]float64, len(metrics))
	for i, m := range metrics {
		mins[i] = math.Inf(1)
		maxs[i] = math.Inf(-1)
		for _, entity := range cohort {
			v := entity.Values[m.Name]
			mins[i] = math.Min(mins[i], v)
			maxs[i] = math.Max(maxs[i], v)
		}
	}

	vectors := make([]models.NormalizedMetricVector, 0, len(cohort))
	for _, entity := range cohort {
		scores := make([]float64, len(metrics))
		for i, m := range metrics {
			span := maxs[i] - mins[i]
			if span == 0 {
				span = 1
			}
			raw := entity.Values[m.Name]
			if m.LowerIsBetter {
				scores[i] = (maxs[i] - raw) / span * 100
			} else {
				scores[i] = (raw - mins[i]) / span * 100
			}
		}
		vectors = append(vectors, models.NormalizedMetricVector{Key: entity.Key, Scores: scores})
	}
	return vectors
}

const (
	MetricRevenue    = "Revenue"
	MetricRating     = "Rating"
	MetricMargin     = "Margin"
	MetricReturnRate = "Return Rate"
	MetricGrowth     = "Growth"
)

var RadarMetrics = []Metric{
	{Name: MetricRevenue},
	{Name: MetricRating},
	{Name: MetricMargin},
	{Name: MetricReturnRate, LowerIsBetter: true},
	{Name: MetricGrowth},
}

// SyntheticMetrics derives margin, return rate and growth percentages from
// the category name length. The source data carries none of them, so the
// values are fixed per name and reproducible.
func SyntheticMetrics(category string) (margin, returnRate, growth float64) {
	n := utf8.RuneCountInString(category)
	margin = float64((n*5)%30 + 10)
	returnRate = float64((n * 2) % 10)
	growth = float64((n*3)%20 + 5)
	return margin, returnRate, growth
}

// CategoryRadar compares the top categories by revenue on the radar metrics.
func CategoryRadar(records []models.TransactionRecord, hierarchy models.Hierarchy, limit int) models.Radar {
	names := make([]string, len(RadarMetrics))
	for i, m := range RadarMetrics {
		names[i] = m.Name
	}

	ratings := AverageRatingByCategory(records)

	cohort := make([]MetricSet, 0, limit)
	for _, node := range hierarchy.Nodes {
		if len(cohort) == limit {
			break
		}
		rating, _ := ratings.Get(node.Category)
		margin, returnRate, growth := SyntheticMetrics(node.Category)
		cohort = append(cohort, MetricSet{
			Key: node.Category,
			Values: map[string]float64{
				MetricRevenue:    node.Value,
				MetricRating:     rating,
				MetricMargin:     margin,
				MetricReturnRate: returnRate,
				MetricGrowth:     growth,
			},
		})
	}

	return models.Radar{Metrics: names, Vectors: Scale(cohort, RadarMetrics)}
}
