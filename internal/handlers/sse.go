package handlers

import (
	"encoding/json"
	stderrors "errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"purchase-dashboard/internal/insights"
	"purchase-dashboard/internal/models"
	"purchase-dashboard/internal/services"
)

const maxTableRows = 50

var categoryTableTemplate = template.Must(template.New("categoryTable").Parse(`
<div id="category-content">
<table class="modern-table">
<thead><tr><th>Category</th><th>Revenue</th><th>Share</th><th>Avg Rating</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td><span class="category-badge">{{.Category}}</span></td>
<td><strong>${{printf "%.2f" .Revenue}}</strong></td>
<td>{{printf "%.1f" .Percent}}%</td>
<td>{{printf "%.2f" .Rating}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var statsTemplate = template.Must(template.New("stats").Parse(`
<div id="stats-content" class="stats-grid">
<div class="stat"><span>Revenue</span><strong>${{printf "%.2f" .TotalRevenue}}</strong></div>
<div class="stat"><span>Units</span><strong>{{printf "%.0f" .TotalQuantity}}</strong></div>
<div class="stat"><span>Avg Rating</span><strong>{{printf "%.2f" .AvgRating}}</strong></div>
<div class="stat"><span>Orders</span><strong>{{.Records}}</strong></div>
<div class="stat"><span>Customers</span><strong>{{.Customers}}</strong></div>
</div>`))

const (
	noDataFragment      = `<div id="status">No purchase records loaded</div>`
	clearStatusFragment = `<div id="status"></div>`
)

type categoryRow struct {
	Category string
	Revenue  float64
	Percent  float64
	Rating   float64
}

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// SignalName maps a chart name such as "rating-boxplot" to the client signal
// "ratingBoxplotData".
func SignalName(chart string) string {
	parts := strings.Split(chart, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "") + "Data"
}

func renderCategoryTable(b *models.Bundle) (string, error) {
	rows := make([]categoryRow, 0, min(len(b.RatingRevenue.Categories), maxTableRows))
	for i, category := range b.RatingRevenue.Categories {
		if i == maxTableRows {
			break
		}
		row := categoryRow{
			Category: category,
			Revenue:  b.RatingRevenue.Revenue[i],
			Rating:   b.RatingRevenue.AvgRating[i],
		}
		if b.Stats.TotalRevenue > 0 {
			row.Percent = row.Revenue / b.Stats.TotalRevenue * 100
		}
		rows = append(rows, row)
	}

	var buf strings.Builder
	err := categoryTableTemplate.Execute(&buf, struct{ Rows []categoryRow }{rows})
	return buf.String(), err
}

func renderStats(s models.Stats) (string, error) {
	var buf strings.Builder
	err := statsTemplate.Execute(&buf, s)
	return buf.String(), err
}

func allSignals(b *models.Bundle) ([]byte, error) {
	signals := make(map[string]any, len(insights.ChartNames()))
	for _, name := range insights.ChartNames() {
		if chart, ok := insights.Chart(b, name); ok {
			signals[SignalName(name)] = chart
		}
	}
	return json.Marshal(signals)
}

// HandleChart pushes one chart as a signal patch.
func (h *SSEHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	chart, err := h.analytics.Chart(name)
	if stderrors.Is(err, services.ErrUnknownChart) {
		http.NotFound(w, r)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err != nil {
		sse.PatchElements(noDataFragment)
		return
	}

	jsonData, err := json.Marshal(map[string]any{SignalName(name): chart})
	if err != nil {
		h.logger.Error("marshal chart signal", "chart", name, "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Debug("patch signals", "chart", name, "error", err)
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if err := h.pushAll(sse); err != nil {
		h.logger.Error("refresh all", "error", err)
	}
}

// HandleLive pushes the full dashboard now and again after every reload until
// the client goes away.
func (h *SSEHandlers) HandleLive(w http.ResponseWriter, r *http.Request) {
	// The server WriteTimeout would otherwise cut the stream.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("clear write deadline", "error", err)
	}
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	for {
		updated := h.analytics.Updated()
		if err := h.pushAll(sse); err != nil {
			h.logger.Debug("live stream closed", "error", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-updated:
		}
	}
}

func (h *SSEHandlers) pushAll(sse *datastar.ServerSentEventGenerator) error {
	bundle, err := h.analytics.Bundle()
	if err != nil {
		return sse.PatchElements(noDataFragment)
	}

	if err := sse.PatchElements(clearStatusFragment); err != nil {
		return err
	}

	table, err := renderCategoryTable(bundle)
	if err != nil {
		return err
	}
	if err := sse.PatchElements(table); err != nil {
		return err
	}

	stats, err := renderStats(bundle.Stats)
	if err != nil {
		return err
	}
	if err := sse.PatchElements(stats); err != nil {
		return err
	}

	signals, err := allSignals(bundle)
	if err != nil {
		return err
	}
	return sse.PatchSignals(signals)
}
