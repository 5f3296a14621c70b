package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase-dashboard/internal/insights"
	"purchase-dashboard/internal/models"
	"purchase-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestAnalytics() *services.Analytics {
	a := services.NewAnalytics(services.WithLogger(testLogger()))
	a.SetRows([]models.Row{
		{"CustomerName": "Ann", "ProductCategory": "Electronics", "ProductName": "Laptop", "TotalPrice": 999.99, "Quantity": 1, "UnitPrice": 999.99, "ReviewRating": 5, "PaymentMethod": "PayPal"},
		{"CustomerName": "Bob", "ProductCategory": "Books", "ProductName": "Novel", "TotalPrice": 59.98, "Quantity": 2, "UnitPrice": 29.99, "ReviewRating": 4, "PaymentMethod": "Cash"},
	})
	return a
}

// serve routes through a mux so that PathValue is populated.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAPIHandlers_HandleBundle(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	w := httptest.NewRecorder()
	h.HandleBundle(w, httptest.NewRequest(http.MethodGet, "/api/bundle", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
	etag := w.Header().Get("ETag")
	assert.NotEmpty(t, etag)

	env := decode(t, w)
	assert.True(t, env.Success)
	var bundle models.Bundle
	require.NoError(t, json.Unmarshal(env.Data, &bundle))
	assert.InDelta(t, 1059.97, bundle.Stats.TotalRevenue, 1e-9)
	assert.Len(t, bundle.CategoryRevenue, 2)

	req := httptest.NewRequest(http.MethodGet, "/api/bundle", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	h.HandleBundle(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestAPIHandlers_NoData(t *testing.T) {
	h := NewAPIHandlers(services.NewAnalytics(), testLogger())

	w := httptest.NewRecorder()
	h.HandleBundle(w, httptest.NewRequest(http.MethodGet, "/api/bundle", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "NO_DATA", decode(t, w).Error.Code)

	w = serve("GET /api/charts/{name}", h.HandleChart, httptest.NewRequest(http.MethodGet, "/api/charts/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPIHandlers_HandleChart(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	for _, name := range insights.ChartNames() {
		t.Run(name, func(t *testing.T) {
			w := serve("GET /api/charts/{name}", h.HandleChart, httptest.NewRequest(http.MethodGet, "/api/charts/"+name, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, decode(t, w).Success)
		})
	}

	w := serve("GET /api/charts/{name}", h.HandleChart, httptest.NewRequest(http.MethodGet, "/api/charts/pie", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "pie", env.Error.Details)
}

func TestAPIHandlers_HandleChartPareto(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	w := serve("GET /api/charts/{name}", h.HandleChart, httptest.NewRequest(http.MethodGet, "/api/charts/pareto", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var pareto models.Concentration
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &pareto))
	require.Len(t, pareto.Entries, 2)
	assert.Equal(t, "Laptop", pareto.Entries[0].Key)
	assert.InDelta(t, 100.0, pareto.Entries[1].CumulativePercent, 1e-9)
}

func TestAPIHandlers_HandleChartNames(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	w := httptest.NewRecorder()
	h.HandleChartNames(w, httptest.NewRequest(http.MethodGet, "/api/charts", nil))

	var names []string
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &names))
	assert.Equal(t, insights.ChartNames(), names)
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	tests := []struct {
		name      string
		analytics *services.Analytics
		loaded    bool
	}{
		{"loaded", createTestAnalytics(), true},
		{"empty", services.NewAnalytics(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAPIHandlers(tt.analytics, testLogger())
			w := httptest.NewRecorder()
			h.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("Cache-Control"))

			var health map[string]any
			require.NoError(t, json.Unmarshal(decode(t, w).Data, &health))
			assert.Equal(t, "healthy", health["status"])
			assert.Equal(t, tt.loaded, health["data_loaded"])
			assert.Equal(t, version, health["version"])
		})
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	h := NewAPIHandlers(createTestAnalytics(), testLogger())

	w := httptest.NewRecorder()
	h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	var stats map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.Equal(t, float64(2), stats["record_count"])
	assert.Equal(t, "memory", stats["source"])
	assert.Equal(t, float64(2), stats["categories"])
}
