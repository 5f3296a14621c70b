package insights

import "purchase-dashboard/internal/models"

// Chart names addressable by the API and CLI.
const (
	ChartStats              = "stats"
	ChartCategoryRevenue    = "category-revenue"
	ChartFlows              = "flows"
	ChartHierarchy          = "hierarchy"
	ChartRadar              = "radar"
	ChartPareto             = "pareto"
	ChartHeatmap            = "heatmap"
	ChartRatingDistribution = "rating-distribution"
	ChartVolumeDistribution = "volume-distribution"
	ChartRatingBoxPlot      = "rating-boxplot"
	ChartVolumeBoxPlot      = "volume-boxplot"
	ChartPaymentMethods     = "payment-methods"
	ChartTreemap            = "treemap"
	ChartCLVHistogram       = "clv-histogram"
	ChartRatingRevenue      = "rating-revenue"
	ChartScatter            = "scatter"
)

var chartNames = []string{
	ChartStats, ChartCategoryRevenue, ChartFlows, ChartHierarchy, ChartRadar,
	ChartPareto, ChartHeatmap, ChartRatingDistribution, ChartVolumeDistribution,
	ChartRatingBoxPlot, ChartVolumeBoxPlot, ChartPaymentMethods, ChartTreemap,
	ChartCLVHistogram, ChartRatingRevenue, ChartScatter,
}

func ChartNames() []string {
	out := make([]string, len(chartNames))
	copy(out, chartNames)
	return out
}

// Chart selects one named member of the bundle.
func Chart(b *models.Bundle, name string) (any, bool) {
	if b == nil {
		return nil, false
	}
	switch name {
	case ChartStats:
		return b.Stats, true
	case ChartCategoryRevenue:
		return b.CategoryRevenue, true
	case ChartFlows:
		return b.Flows, true
	case ChartHierarchy:
		return b.Hierarchy, true
	case ChartRadar:
		return b.Radar, true
	case ChartPareto:
		return b.Pareto, true
	case ChartHeatmap:
		return b.Heatmap, true
	case ChartRatingDistribution:
		return b.RatingDistribution, true
	case ChartVolumeDistribution:
		return b.VolumeDistribution, true
	case ChartRatingBoxPlot:
		return SummarizeBuckets(b.RatingDistribution), true
	case ChartVolumeBoxPlot:
		return SummarizeBuckets(b.VolumeDistribution), true
	case ChartPaymentMethods:
		return b.PaymentMethods, true
	case ChartTreemap:
		return b.Treemap, true
	case ChartCLVHistogram:
		return b.CLVHistogram, true
	case ChartRatingRevenue:
		return b.RatingRevenue, true
	case ChartScatter:
		return b.Scatter, true
	}
	return nil, false
}
