package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"purchase-dashboard/internal/errors"
	"purchase-dashboard/internal/insights"
	"purchase-dashboard/internal/observability"
	"purchase-dashboard/internal/services"
)

const version = "1.0.0"

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleBundle serves every chart at once. The load ID doubles as an ETag.
func (h *APIHandlers) HandleBundle(w http.ResponseWriter, r *http.Request) {
	snapshot := h.analytics.Snapshot()
	if snapshot.Bundle == nil {
		h.writeError(w, r, services.ErrNoData)
		return
	}

	etag := `"` + snapshot.LoadID + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	errors.WriteSuccessWithHeaders(w, snapshot.Bundle, map[string]string{
		"Cache-Control": cacheHeaders["Cache-Control"],
		"ETag":          etag,
	})
}

func (h *APIHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	chart, err := h.analytics.Chart(r.PathValue("name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, chart, cacheHeaders)
}

func (h *APIHandlers) HandleChartNames(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, insights.ChartNames(), cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_, err := h.analytics.Bundle()

	errors.WriteSuccess(w, map[string]any{
		"status":      "healthy",
		"data_loaded": err == nil,
		"timestamp":   time.Now().Format(time.RFC3339),
		"version":     version,
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, toAppError(err, r), observability.GetRequestID(r.Context()))
}

func toAppError(err error, r *http.Request) *errors.AppError {
	switch {
	case stderrors.Is(err, services.ErrNoData):
		return errors.NoData(err)
	case stderrors.Is(err, services.ErrUnknownChart):
		return errors.NotFound("Chart not found").WithDetails(r.PathValue("name"))
	default:
		return errors.InternalWrap(err, "Failed to read analytics")
	}
}
