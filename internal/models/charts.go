package models

// Stats are the headline numbers shown above the charts.
type Stats struct {
	TotalRevenue  float64 `json:"total_revenue" yaml:"total_revenue"`
	TotalQuantity float64 `json:"total_quantity" yaml:"total_quantity"`
	AvgRating     float64 `json:"avg_rating" yaml:"avg_rating"`
	Records       int     `json:"records" yaml:"records"`
	Customers     int     `json:"customers" yaml:"customers"`
}

// FlowEdge is an aggregate directed value between two hierarchy levels:
// category -> sub-category or sub-category -> payment method.
type FlowEdge struct {
	From string  `json:"from" yaml:"from"`
	To   string  `json:"to" yaml:"to"`
	Flow float64 `json:"flow" yaml:"flow"`
}

type HierarchyChild struct {
	SubCategory string  `json:"sub_category" yaml:"sub_category"`
	Value       float64 `json:"value" yaml:"value"`
	Label       string  `json:"label" yaml:"label"`
	Tooltip     string  `json:"tooltip" yaml:"tooltip"`
	Visible     bool    `json:"visible" yaml:"visible"`
}

type HierarchyNode struct {
	Category string           `json:"category" yaml:"category"`
	Value    float64          `json:"value" yaml:"value"`
	Percent  float64          `json:"percent" yaml:"percent"`
	Label    string           `json:"label" yaml:"label"`
	Children []HierarchyChild `json:"children" yaml:"children"`
}

type Hierarchy struct {
	Total float64         `json:"total" yaml:"total"`
	Nodes []HierarchyNode `json:"nodes" yaml:"nodes"`
}

// NormalizedMetricVector holds one score in [0,100] per metric, in the order
// of the owning Radar's Metrics.
type NormalizedMetricVector struct {
	Key    string    `json:"key" yaml:"key"`
	Scores []float64 `json:"scores" yaml:"scores"`
}

type Radar struct {
	Metrics []string                 `json:"metrics" yaml:"metrics"`
	Vectors []NormalizedMetricVector `json:"vectors" yaml:"vectors"`
}

type RankedEntity struct {
	Key               string  `json:"key" yaml:"key"`
	Label             string  `json:"label" yaml:"label"`
	Value             float64 `json:"value" yaml:"value"`
	CumulativePercent float64 `json:"cumulative_percent" yaml:"cumulative_percent"`
}

// Concentration is a Pareto view over the top-N window. CumulativePercent of
// each entry is relative to TopNTotal, not PopulationTotal.
type Concentration struct {
	Entries         []RankedEntity `json:"entries" yaml:"entries"`
	TopNTotal       float64        `json:"top_n_total" yaml:"top_n_total"`
	PopulationTotal float64        `json:"population_total" yaml:"population_total"`
	TopNShare       float64        `json:"top_n_share" yaml:"top_n_share"`
	HHI             float64        `json:"hhi" yaml:"hhi"`
	Band            string         `json:"band" yaml:"band"`
}

type DistributionBucket struct {
	Key    int       `json:"key" yaml:"key"`
	Values []float64 `json:"values" yaml:"values"`
}

// BoxSummary is the five-number summary drawn by a box plot.
type BoxSummary struct {
	Min    float64 `json:"min" yaml:"min"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Median float64 `json:"median" yaml:"median"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Max    float64 `json:"max" yaml:"max"`
	Count  int     `json:"count" yaml:"count"`
}

type HistogramBin struct {
	Label string  `json:"label" yaml:"label"`
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
	Count int     `json:"count" yaml:"count"`
}

type MatrixCell struct {
	Week  int     `json:"week" yaml:"week"`
	Day   int     `json:"day" yaml:"day"`
	Value float64 `json:"value" yaml:"value"`
}

// RatingRevenue pairs revenue and average rating per category; the slices are
// index-aligned with Categories.
type RatingRevenue struct {
	Categories []string  `json:"categories" yaml:"categories"`
	Revenue    []float64 `json:"revenue" yaml:"revenue"`
	AvgRating  []float64 `json:"avg_rating" yaml:"avg_rating"`
}

type ScatterPoint struct {
	Quantity  float64 `json:"x" yaml:"x"`
	UnitPrice float64 `json:"y" yaml:"y"`
	Revenue   float64 `json:"revenue" yaml:"revenue"`
	Product   string  `json:"product" yaml:"product"`
}

// Bundle is every chart-ready structure derived from one dataset load.
type Bundle struct {
	Stats              Stats                `json:"stats" yaml:"stats"`
	CategoryRevenue    []CategoryValue      `json:"category_revenue" yaml:"category_revenue"`
	Flows              []FlowEdge           `json:"flows" yaml:"flows"`
	Hierarchy          Hierarchy            `json:"hierarchy" yaml:"hierarchy"`
	Radar              Radar                `json:"radar" yaml:"radar"`
	Pareto             Concentration        `json:"pareto" yaml:"pareto"`
	Heatmap            []MatrixCell         `json:"heatmap" yaml:"heatmap"`
	RatingDistribution []DistributionBucket `json:"rating_distribution" yaml:"rating_distribution"`
	VolumeDistribution []DistributionBucket `json:"volume_distribution" yaml:"volume_distribution"`
	PaymentMethods     []CategoryCount      `json:"payment_methods" yaml:"payment_methods"`
	Treemap            []CategoryValue      `json:"treemap" yaml:"treemap"`
	CLVHistogram       []HistogramBin       `json:"clv_histogram" yaml:"clv_histogram"`
	RatingRevenue      RatingRevenue        `json:"rating_revenue" yaml:"rating_revenue"`
	Scatter            []ScatterPoint       `json:"scatter" yaml:"scatter"`
}
