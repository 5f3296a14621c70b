package insights

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"purchase-dashboard/internal/models"
)

const DefaultRadarCategories = 3

type BuildOptions struct {
	TopN            int
	HistogramBins   int
	RadarCategories int
}

func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		TopN:            DefaultTopN,
		HistogramBins:   DefaultHistogramBins,
		RadarCategories: DefaultRadarCategories,
	}
}

type BuildOption func(*BuildOptions)

func WithTopN(n int) BuildOption {
	return func(o *BuildOptions) { o.TopN = n }
}

func WithHistogramBins(n int) BuildOption {
	return func(o *BuildOptions) { o.HistogramBins = n }
}

func WithRadarCategories(n int) BuildOption {
	return func(o *BuildOptions) { o.RadarCategories = n }
}

// Process normalizes rows and builds the bundle in one pass.
func Process(rows []models.Row, normalize []NormalizeOption, build ...BuildOption) *models.Bundle {
	if len(rows) == 0 {
		return nil
	}
	return Build(Normalize(rows, normalize...), build...)
}

// Build derives every chart structure from canonical records. It returns nil
// for empty input without running any stage.
func Build(records []models.TransactionRecord, opts ...BuildOption) *models.Bundle {
	if len(records) == 0 {
		return nil
	}

	o := DefaultBuildOptions()
	for _, opt := range opts {
		opt(&o)
	}

	categoryRevenue := RevenueByCategory(records)
	hierarchy := CategoryHierarchy(records)
	ratings := AverageRatingByCategory(records)

	revenueSeries := make([]models.CategoryValue, 0, categoryRevenue.Len())
	dual := models.RatingRevenue{}
	for _, e := range categoryRevenue.Entries() {
		revenueSeries = append(revenueSeries, models.CategoryValue{Category: e.Key, Value: e.Value})
		avg, _ := ratings.Get(e.Key)
		dual.Categories = append(dual.Categories, e.Key)
		dual.Revenue = append(dual.Revenue, e.Value)
		dual.AvgRating = append(dual.AvgRating, math.Round(avg*100)/100)
	}
	treemap := make([]models.CategoryValue, len(revenueSeries))
	copy(treemap, revenueSeries)

	payments := PaymentMethodCounts(records)
	paymentSeries := make([]models.CategoryCount, 0, payments.Len())
	for _, e := range payments.Entries() {
		paymentSeries = append(paymentSeries, models.CategoryCount{Label: e.Key, Count: e.Value})
	}

	return &models.Bundle{
		Stats:              computeStats(records),
		CategoryRevenue:    revenueSeries,
		Flows:              RevenueFlows(records),
		Hierarchy:          hierarchy,
		Radar:              CategoryRadar(records, hierarchy, o.RadarCategories),
		Pareto:             Rank(RevenueBySKU(records).Entries(), o.TopN),
		Heatmap:            TemporalMatrix(records),
		RatingDistribution: GroupDistribution(records, RatingKey, TotalPrice),
		VolumeDistribution: GroupDistribution(records, QuantityKey, UnitPrice),
		PaymentMethods:     paymentSeries,
		Treemap:            treemap,
		CLVHistogram:       CLVHistogram(records, o.HistogramBins),
		RatingRevenue:      dual,
		Scatter:            scatter(records),
	}
}

func computeStats(records []models.TransactionRecord) models.Stats {
	revenue := make([]float64, len(records))
	quantity := make([]float64, len(records))
	ratings := make([]float64, len(records))
	for i, r := range records {
		revenue[i] = r.TotalPrice
		quantity[i] = r.Quantity
		ratings[i] = r.ReviewRating
	}
	return models.Stats{
		TotalRevenue:  floats.Sum(revenue),
		TotalQuantity: floats.Sum(quantity),
		AvgRating:     floats.Sum(ratings) / float64(len(records)),
		Records:       len(records),
		Customers:     CustomerLifetimeValue(records).Len(),
	}
}

func scatter(records []models.TransactionRecord) []models.ScatterPoint {
	points := make([]models.ScatterPoint, len(records))
	for i, r := range records {
		points[i] = models.ScatterPoint{
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Revenue:   r.Quantity * r.UnitPrice,
			Product:   r.ProductName,
		}
	}
	return points
}
