package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/analyzer"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/config"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
)

// globals holds what every subcommand shares after flag parsing.
type globals struct {
	baseURL   string
	outputFmt string
	verbose   bool

	cfg    *config.Config
	logger *utils.Logger
}

func (g *globals) analyzer() analyzer.Analyzer {
	return analyzer.NewCrimeAnalysisClient(g.cfg.AnalysisBaseURL, g.cfg.AnalysisTimeout, g.logger)
}

func (g *globals) jsonOutput() bool { return g.outputFmt == "json" }

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "crimectl",
		Short: "Crime dataset analysis from the terminal",
		Long: `crimectl previews crime datasets (xlsx, xls, csv) and sends them to the
crime analysis service for a breakdown by offence type.

The service address comes from ANALYSIS_BASE_URL (or .env) unless --base-url is set.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if g.baseURL != "" {
				cfg.AnalysisBaseURL = g.baseURL
			}
			if g.outputFmt != "text" && g.outputFmt != "json" {
				return fmt.Errorf("unknown output format %q (text, json)", g.outputFmt)
			}

			level := "warn"
			if g.verbose {
				level = "debug"
			}
			g.cfg = cfg
			g.logger = utils.NewLoggerTo(cmd.ErrOrStderr(), level, "text")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.baseURL, "base-url", "", "analysis service base URL")
	rootCmd.PersistentFlags().StringVarP(&g.outputFmt, "output", "o", "text", "output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newPreviewCommand(g))
	rootCmd.AddCommand(newStatesCommand(g))
	rootCmd.AddCommand(newAnalyzeCommand(g))
	rootCmd.AddCommand(newRunsCommand(g))
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// version needs no configuration.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			if version == "" {
				version = "dev"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "crimectl %s (%s) built on %s\n", version, commit, date)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func readDataset(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
