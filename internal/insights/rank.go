package insights

import (
	"fmt"
	"math"

	"purchase-dashboard/internal/models"
)

const (
	DefaultTopN    = 20
	maxLabelRunes  = 15
	labelEllipsis  = "..."
	hhiModerate    = 0.15
	hhiConcentrate = 0.25
)

const (
	BandUnconcentrated = "unconcentrated"
	BandModerate       = "moderately_concentrated"
	BandHigh           = "highly_concentrated"
)

// Rank sorts entries by value descending (input order on ties), keeps the
// first topN and accumulates each entry's share of the top-N subtotal. The
// last CumulativePercent is therefore 100 whenever the subtotal is positive.
func Rank(entries []Entry[string, float64], topN int) models.Concentration {
	var population float64
	for _, e := range entries {
		population += e.Value
	}

	sorted := sortDescending(entries)
	if topN >= 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}

	var subtotal float64
	for _, e := range sorted {
		subtotal += e.Value
	}

	ranked := make([]models.RankedEntity, 0, len(sorted))
	var running float64
	for _, e := range sorted {
		running += e.Value
		ranked = append(ranked, models.RankedEntity{
			Key:               e.Key,
			Label:             truncateLabel(e.Key),
			Value:             e.Value,
			CumulativePercent: percentOf(running, subtotal),
		})
	}

	hhi := herfindahl(entries, population)
	return models.Concentration{
		Entries:         ranked,
		TopNTotal:       subtotal,
		PopulationTotal: population,
		TopNShare:       percentOf(subtotal, population),
		HHI:             hhi,
		Band:            concentrationBand(hhi),
	}
}

// herfindahl sums squared population shares.
func herfindahl(entries []Entry[string, float64], population float64) float64 {
	if population == 0 {
		return 0
	}
	var hhi float64
	for _, e := range entries {
		share := e.Value / population
		hhi += share * share
	}
	return hhi
}

func concentrationBand(hhi float64) string {
	switch {
	case hhi < hhiModerate:
		return BandUnconcentrated
	case hhi < hhiConcentrate:
		return BandModerate
	default:
		return BandHigh
	}
}

func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelRunes {
		return s
	}
	return string(runes[:maxLabelRunes]) + labelEllipsis
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func formatShare(name string, percent float64) string {
	return fmt.Sprintf("%s (%d%%)", name, int(math.Round(percent)))
}
