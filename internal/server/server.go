package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"purchase-dashboard/internal/handlers"
	"purchase-dashboard/internal/insights"
	"purchase-dashboard/internal/services"
	"purchase-dashboard/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	dashboardTitle = "Customer Purchase Insights"
)

var panelTitles = map[string]string{
	insights.ChartFlows:              "Revenue Flow",
	insights.ChartHierarchy:          "Category Hierarchy",
	insights.ChartRadar:              "Category Performance",
	insights.ChartPareto:             "Top Products (Pareto)",
	insights.ChartHeatmap:            "Purchases by Week and Day",
	insights.ChartRatingDistribution: "Revenue by Rating",
	insights.ChartRatingBoxPlot:      "Revenue Spread by Rating",
	insights.ChartVolumeBoxPlot:      "Unit Price Spread by Quantity",
	insights.ChartPaymentMethods:     "Payment Methods",
	insights.ChartTreemap:            "Category Treemap",
	insights.ChartCLVHistogram:       "Customer Lifetime Value",
	insights.ChartRatingRevenue:      "Revenue vs Rating",
	insights.ChartScatter:            "Quantity vs Unit Price",
}

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
	panels      []templates.Panel
}

func NewServer(analytics *services.Analytics, logger *slog.Logger) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
		panels:      dashboardPanels(),
	}
	s.setupRoutes()
	return s
}

// dashboardPanels lists the charts drawn client-side, in display order.
// Stats and category revenue are rendered server-side as fragments.
func dashboardPanels() []templates.Panel {
	var panels []templates.Panel
	for _, name := range insights.ChartNames() {
		title, ok := panelTitles[name]
		if !ok {
			continue
		}
		panels = append(panels, templates.Panel{
			Chart:  name,
			Title:  title,
			Signal: handlers.SignalName(name),
		})
	}
	return panels
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	s.mux.HandleFunc("GET /api/bundle", s.apiHandlers.HandleBundle)
	s.mux.HandleFunc("GET /api/charts", s.apiHandlers.HandleChartNames)
	s.mux.HandleFunc("GET /api/charts/{name}", s.apiHandlers.HandleChart)

	s.mux.HandleFunc("GET /sse/charts/{name}", s.sseHandlers.HandleChart)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.mux.HandleFunc("GET /sse/live", s.sseHandlers.HandleLive)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if err := templates.Dashboard(dashboardTitle, s.panels).Render(ctx, w); err != nil {
		s.logger.Error("render dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
