// Package templates renders the dashboard shell. Chart data never appears in
// the page itself; it arrives as Datastar signals over /sse/live.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const (
	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
	echartsScript  = "https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"
)

// Panel is one chart card on the dashboard.
type Panel struct {
	Chart string
	Title string
	// Signal is the client-side signal that carries the chart data.
	Signal string
}

func head(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<script type="module" src="%s"></script>
<script src="%s"></script>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6fa;color:#1f2430}
header{padding:1rem 2rem;background:#1f2430;color:#fff}
main{display:grid;grid-template-columns:repeat(auto-fill,minmax(420px,1fr));gap:1rem;padding:1rem 2rem}
.card{background:#fff;border-radius:8px;padding:1rem;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.chart{height:320px}
.stats-grid{display:flex;gap:2rem;flex-wrap:wrap}
.stat span{display:block;font-size:.8rem;opacity:.7}
.modern-table{width:100%%;border-collapse:collapse}
.modern-table td,.modern-table th{padding:.4rem;border-bottom:1px solid #eee;text-align:left}
.category-badge{background:#eef;border-radius:4px;padding:0 .4rem}
</style>
<script>
window.renderChart = function (id, data) {
  const el = document.getElementById(id);
  if (!el || !window.echarts || data === undefined || data === null) return;
  const chart = echarts.getInstanceByDom(el) || echarts.init(el);
  chart.setOption({tooltip: {}, dataset: {source: Array.isArray(data) ? data : [data]}}, true);
};
</script>
</head>`, templ.EscapeString(title), datastarScript, echartsScript)
		return err
	})
}

func panel(p Panel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := "chart-" + p.Chart
		_, err := fmt.Fprintf(w, `<section class="card"><h2>%s</h2><div id="%s" class="chart" data-effect="window.renderChart('%s', $%s)"></div></section>
`, templ.EscapeString(p.Title), templ.EscapeString(id), templ.EscapeString(id), templ.EscapeString(p.Signal))
		return err
	})
}

// Dashboard renders the full page with one card per panel. Opening the page
// subscribes to the live stream, which pushes every chart and re-pushes them
// after each reload.
func Dashboard(title string, panels []Panel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html lang=\"en\">\n"); err != nil {
			return err
		}
		if err := head(title).Render(ctx, w); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w, `<body data-init="@get('/sse/live')">
<header><h1>%s</h1><button data-on-click="@get('/sse/refresh-all')">Refresh</button></header>
<main>
<section class="card"><div id="status"></div><div id="stats-content"></div></section>
<section class="card"><h2>Revenue by Category</h2><div id="category-content"></div></section>
`, templ.EscapeString(title))
		if err != nil {
			return err
		}

		for _, p := range panels {
			if err := panel(p).Render(ctx, w); err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, "</main>\n</body>\n</html>\n")
		return err
	})
}
