package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"purchase-dashboard/internal/insights"
	"purchase-dashboard/internal/services"
)

type summarizeOptions struct {
	source        sourceFlags
	format        string
	chart         string
	topN          int
	bins          int
	preserveDates bool
}

func newSummarizeCmd(a *app) *cobra.Command {
	var opts summarizeOptions

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Print the chart bundle or a single chart",
		Long: `Load a source, run the aggregation pipeline and print the result.

Examples:
  insights summarize --source Customer-Purchase-History.xlsx
  insights summarize -s sales.csv --chart pareto --format yaml
  insights summarize -s sqlite://shop.db --table orders --top-n 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, a, opts)
		},
	}

	opts.source.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&opts.chart, "chart", "c", "", "print only this chart")
	cmd.Flags().IntVar(&opts.topN, "top-n", 0, "entities kept by the pareto chart (default $INSIGHTS_TOP_N)")
	cmd.Flags().IntVar(&opts.bins, "bins", 0, "customer lifetime value histogram bins (default $INSIGHTS_HISTOGRAM_BINS)")
	cmd.Flags().BoolVar(&opts.preserveDates, "preserve-dates", false, "keep purchase dates found in the source")

	return cmd
}

func runSummarize(cmd *cobra.Command, a *app, opts summarizeOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	if opts.chart != "" && !slices.Contains(insights.ChartNames(), opts.chart) {
		return fmt.Errorf("unknown chart %q, must be one of: %s", opts.chart, strings.Join(insights.ChartNames(), ", "))
	}

	cfg := a.cfg
	location, srcOpts := opts.source.resolve(cfg)

	topN := cfg.Insights.TopN
	if opts.topN > 0 {
		topN = opts.topN
	}
	bins := cfg.Insights.HistogramBins
	if opts.bins > 0 {
		bins = opts.bins
	}

	analytics := services.NewAnalytics(
		services.WithLogger(a.logger),
		services.WithSource(location, srcOpts),
		services.WithNormalizeOptions(insights.WithFillPolicy(insights.FillPolicy{
			ReferenceYear: cfg.Insights.ReferenceYear,
			DateStride:    cfg.Insights.DateStride,
			PreserveDates: cfg.Insights.PreserveDates || opts.preserveDates,
		})),
		services.WithBuildOptions(
			insights.WithTopN(topN),
			insights.WithHistogramBins(bins),
			insights.WithRadarCategories(cfg.Insights.RadarCategories),
		),
	)

	if err := analytics.Load(cmd.Context()); err != nil {
		return err
	}

	var out any
	var err error
	if opts.chart != "" {
		out, err = analytics.Chart(opts.chart)
	} else {
		out, err = analytics.Bundle()
	}
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), opts.format, out)
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}
