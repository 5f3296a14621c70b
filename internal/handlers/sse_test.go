package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase-dashboard/internal/insights"
	"purchase-dashboard/internal/models"
	"purchase-dashboard/internal/services"
)

func TestSignalName(t *testing.T) {
	assert.Equal(t, "statsData", SignalName("stats"))
	assert.Equal(t, "categoryRevenueData", SignalName("category-revenue"))
	assert.Equal(t, "ratingBoxplotData", SignalName("rating-boxplot"))
	assert.Equal(t, "clvHistogramData", SignalName("clv-histogram"))
}

func TestRenderCategoryTable(t *testing.T) {
	bundle, err := createTestAnalytics().Bundle()
	require.NoError(t, err)

	html, err := renderCategoryTable(bundle)
	require.NoError(t, err)

	for _, want := range []string{`id="category-content"`, "<th>Category</th>", "Electronics", "999.99", "Books", "59.98", "94.3%"} {
		assert.Contains(t, html, want)
	}
	assert.Less(t, strings.Index(html, "Electronics"), strings.Index(html, "Books"))
}

func TestRenderCategoryTable_Limit(t *testing.T) {
	b := &models.Bundle{Stats: models.Stats{TotalRevenue: 100}}
	for range maxTableRows + 10 {
		b.RatingRevenue.Categories = append(b.RatingRevenue.Categories, "c")
		b.RatingRevenue.Revenue = append(b.RatingRevenue.Revenue, 1)
		b.RatingRevenue.AvgRating = append(b.RatingRevenue.AvgRating, 3)
	}

	html, err := renderCategoryTable(b)
	require.NoError(t, err)
	assert.Equal(t, maxTableRows, strings.Count(html, "<tr>")-1)
}

func TestRenderCategoryTable_Escapes(t *testing.T) {
	b := &models.Bundle{RatingRevenue: models.RatingRevenue{
		Categories: []string{"<script>"},
		Revenue:    []float64{1},
		AvgRating:  []float64{1},
	}}
	html, err := renderCategoryTable(b)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "0.0%")
}

func TestSSEHandlers_HandleChart(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(), testLogger())

	w := serve("GET /sse/charts/{name}", h.HandleChart, httptest.NewRequest(http.MethodGet, "/sse/charts/category-revenue", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	body := w.Body.String()
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, "categoryRevenueData")
	assert.Contains(t, body, "Electronics")
}

func TestSSEHandlers_HandleChartErrors(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(), testLogger())
	w := serve("GET /sse/charts/{name}", h.HandleChart, httptest.NewRequest(http.MethodGet, "/sse/charts/pie", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	h = NewSSEHandlers(services.NewAnalytics(), testLogger())
	w = serve("GET /sse/charts/{name}", h.HandleChart, httptest.NewRequest(http.MethodGet, "/sse/charts/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No purchase records loaded")
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(), testLogger())

	w := httptest.NewRecorder()
	h.HandleRefreshAll(w, httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil))

	body := w.Body.String()
	assert.Contains(t, body, "<table")
	assert.Contains(t, body, `id="stats-content"`)
	for _, name := range insights.ChartNames() {
		assert.Contains(t, body, SignalName(name))
	}
}

// syncRecorder guards the body so the test can read while the handler writes.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func TestSSEHandlers_HandleLive(t *testing.T) {
	analytics := createTestAnalytics()
	h := NewSSEHandlers(analytics, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/sse/live", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		h.HandleLive(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return strings.Count(w.body(), `id="stats-content"`) == 1
	}, time.Second, 10*time.Millisecond)

	analytics.SetRows([]models.Row{{"ProductCategory": "Garden", "TotalPrice": 5}})

	require.Eventually(t, func() bool {
		body := w.body()
		return strings.Count(body, `id="stats-content"`) == 2 && strings.Contains(body, "Garden")
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("live handler did not return after cancel")
	}
}

func TestSSEHandlers_HandleLiveClearsStatus(t *testing.T) {
	analytics := services.NewAnalytics(services.WithLogger(testLogger()))
	h := NewSSEHandlers(analytics, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/sse/live", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	go h.HandleLive(w, req)

	require.Eventually(t, func() bool {
		return strings.Contains(w.body(), "No purchase records loaded")
	}, time.Second, 10*time.Millisecond)

	analytics.SetRows([]models.Row{{"ProductCategory": "Garden", "TotalPrice": 5}})

	require.Eventually(t, func() bool {
		body := w.body()
		idx := strings.Index(body, "No purchase records loaded")
		return idx >= 0 && strings.Contains(body[idx:], `<div id="status"></div>`)
	}, time.Second, 10*time.Millisecond)
}
