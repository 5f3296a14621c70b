package insights

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(values ...float64) []Entry[string, float64] {
	out := make([]Entry[string, float64], len(values))
	for i, v := range values {
		out[i] = Entry[string, float64]{Key: fmt.Sprintf("sku-%02d", i), Value: v}
	}
	return out
}

func TestRank_CumulativePercent(t *testing.T) {
	got := Rank(entries(10, 40, 30, 20), DefaultTopN)

	require.Len(t, got.Entries, 4)
	assert.Equal(t, "sku-01", got.Entries[0].Key)
	assert.InDelta(t, 40.0, got.Entries[0].CumulativePercent, 1e-9)
	assert.InDelta(t, 70.0, got.Entries[1].CumulativePercent, 1e-9)
	assert.InDelta(t, 90.0, got.Entries[2].CumulativePercent, 1e-9)
	assert.InDelta(t, 100.0, got.Entries[3].CumulativePercent, 1e-9)
}

func TestRank_TruncatesToTopN(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i + 1)
	}

	got := Rank(entries(values...), 20)

	require.Len(t, got.Entries, 20)
	assert.Equal(t, 30.0, got.Entries[0].Value)
	assert.Equal(t, 11.0, got.Entries[19].Value)

	// Percentages are of the shown subset, not the population.
	assert.InDelta(t, 100.0, got.Entries[19].CumulativePercent, 1e-9)
	assert.Equal(t, 465.0, got.PopulationTotal)
	assert.Equal(t, 410.0, got.TopNTotal)
	assert.InDelta(t, 410.0/465.0*100, got.TopNShare, 1e-9)

	for i := 1; i < len(got.Entries); i++ {
		assert.GreaterOrEqual(t, got.Entries[i].CumulativePercent, got.Entries[i-1].CumulativePercent)
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	got := Rank([]Entry[string, float64]{
		{Key: "first", Value: 5},
		{Key: "big", Value: 9},
		{Key: "second", Value: 5},
		{Key: "third", Value: 5},
	}, 3)

	keys := make([]string, len(got.Entries))
	for i, e := range got.Entries {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"big", "first", "second"}, keys)
}

func TestRank_SingleEntry(t *testing.T) {
	got := Rank(entries(12.5), DefaultTopN)

	require.Len(t, got.Entries, 1)
	assert.Equal(t, 100.0, got.Entries[0].CumulativePercent)
	assert.Equal(t, 1.0, got.HHI)
	assert.Equal(t, BandHigh, got.Band)
}

func TestRank_Empty(t *testing.T) {
	got := Rank(nil, DefaultTopN)
	assert.Empty(t, got.Entries)
	assert.Equal(t, 0.0, got.HHI)
	assert.Equal(t, BandUnconcentrated, got.Band)
}

func TestRank_HHIBands(t *testing.T) {
	even := make([]float64, 10)
	for i := range even {
		even[i] = 1
	}
	assert.Equal(t, BandUnconcentrated, Rank(entries(even...), 5).Band)
	assert.Equal(t, BandModerate, Rank(entries(1, 1, 1, 1, 1), 5).Band)
	assert.Equal(t, BandHigh, Rank(entries(1, 1, 1), 5).Band)
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short"))
	assert.Equal(t, "Wireless Headph...", truncateLabel("Wireless Headphones Pro"))
	assert.Equal(t, "ÄÖÜäöüßÄÖÜäöüßÄ...", truncateLabel("ÄÖÜäöüßÄÖÜäöüßÄÖÜ"))
}
