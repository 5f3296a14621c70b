package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"purchase-dashboard/internal/config"
	"purchase-dashboard/internal/observability"
	"purchase-dashboard/internal/source"
)

// sourceFlags are shared by every command that reads a dataset. Empty values
// fall back to the environment configuration.
type sourceFlags struct {
	location string
	sheet    string
	table    string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.location, "source", "s", "", "file, URL, sqlite:// or postgres:// location (default $SOURCE_PATH)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "workbook sheet (default first sheet)")
	cmd.Flags().StringVar(&f.table, "table", "", "table read by database sources (default $SOURCE_TABLE)")
}

func (f *sourceFlags) resolve(cfg *config.Config) (string, source.Options) {
	location := cfg.Source.Path
	if f.location != "" {
		location = f.location
	}
	opts := source.Options{Sheet: cfg.Source.Sheet, Table: cfg.Source.Table}
	if f.sheet != "" {
		opts.Sheet = f.sheet
	}
	if f.table != "" {
		opts.Table = f.table
	}
	return location, opts
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "insights",
		Short:         "Purchase history analytics",
		Long:          `Build the dashboard aggregates (revenue flows, hierarchy, pareto, heatmap and more) from a purchase history source.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logger)
			return nil
		},
	}

	root.AddCommand(newSummarizeCmd(a), newVerifyCmd(a))
	return root
}

func checkFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	}
	return fmt.Errorf("unsupported format %q, must be json or yaml", format)
}
