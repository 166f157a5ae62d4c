package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/charts"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/db"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/intake"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/repository"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/services"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/storage"
)

type analyzeOptions struct {
	state  string
	year   string
	svgDir string
	record bool
}

func newAnalyzeCommand(g *globals) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Send a dataset for analysis",
		Long: `Validate a crime dataset, send it to the analysis service for the given
state and year, and print the distribution and counts by crime type.

Examples:
  crimectl analyze crimes.xlsx --state CA --year 2021
  crimectl analyze crimes.csv --state TX --year 2020 --svg-dir ./out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, g, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.state, "state", "", "state to analyze")
	cmd.Flags().StringVar(&opts.year, "year", "", "year to analyze")
	cmd.Flags().StringVar(&opts.svgDir, "svg-dir", "", "write pie.svg and bar.svg to this directory")
	cmd.Flags().BoolVar(&opts.record, "record", true, "record the run in history when DATABASE_URL is set")

	return cmd
}

func runAnalyze(cmd *cobra.Command, g *globals, opts *analyzeOptions, path string) error {
	ctx := cmd.Context()

	data, err := readDataset(path)
	if err != nil {
		return err
	}

	viewOpts, cleanup, err := historyOptions(ctx, g, opts.record)
	if err != nil {
		return err
	}
	defer cleanup()

	views := services.NewViewService(g.analyzer(), g.logger, viewOpts...)
	v := views.Mount()
	defer views.Shutdown()

	select {
	case <-v.OptionsReady():
	case <-ctx.Done():
		return ctx.Err()
	}

	if _, err := v.AcceptFile(filepath.Base(path), data); err != nil {
		return errors.New(intake.Message(err))
	}
	if err := v.Select(opts.state, opts.year); err != nil {
		return err
	}

	result, err := v.Submit(ctx)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			return errors.New(vErr.Message)
		}
		if status := v.Snapshot().Status; status.Message != "" {
			return errors.New(services.AnalysisErrorPrefix + status.Message)
		}
		return err
	}

	if opts.svgDir != "" {
		if err := writeCharts(opts.svgDir, result); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if g.jsonOutput() {
		return writeJSON(out, struct {
			Result      *charts.Result `json:"result"`
			HighestText string         `json:"highest_text,omitempty"`
		}{result, result.HighestText()})
	}

	if text := result.HighestText(); text != "" {
		writeLine(out, titleStyle.Render(text))
	}
	if !result.Pie.Empty() {
		writeLine(out, seriesTable("Distribution", result.Pie))
	}
	if !result.Bar.Empty() {
		writeLine(out, seriesTable(charts.BarSeriesLabel, result.Bar))
	}
	return nil
}

// historyOptions wires run history and the dataset archive from configuration.
func historyOptions(ctx context.Context, g *globals, record bool) ([]services.ViewServiceOption, func(), error) {
	var opts []services.ViewServiceOption
	cleanup := func() {}

	if !record {
		return opts, cleanup, nil
	}

	if g.cfg.HistoryEnabled() {
		database, err := db.NewSQLiteDB(g.cfg.DatabaseURL)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { database.Close() }
		opts = append(opts, services.WithRunRepository(repository.NewRunRepository(database)))
	}

	if g.cfg.ArchiveEnabled() {
		archive, err := storage.NewMinioArchive(ctx, g.cfg)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		opts = append(opts, services.WithArchive(archive))
	}

	return opts, cleanup, nil
}

func writeCharts(dir string, result *charts.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	for name, render := range map[string]func(io.Writer, *charts.Result) error{
		"pie.svg": charts.RenderPie,
		"bar.svg": charts.RenderBar,
	} {
		if err := writeChart(filepath.Join(dir, name), result, render); err != nil {
			return err
		}
	}
	return nil
}

// writeChart skips a chart with no data rather than leaving an empty file.
func writeChart(path string, result *charts.Result, render func(io.Writer, *charts.Result) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f, result); err != nil {
		f.Close()
		os.Remove(path)
		if errors.Is(err, charts.ErrNoData) {
			return nil
		}
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
