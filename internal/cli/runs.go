package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/db"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/repository"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/storage"
)

func newRunsCommand(g *globals) *cobra.Command {
	var (
		limit      int
		showID     string
		datasetOut string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded analysis runs, newest first",
		Long: `List recorded analysis runs, newest first.

With --show ID a single run is printed in full. Adding --dataset-out PATH also
writes the dataset archived for that run (requires S3_ENDPOINT).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !g.cfg.HistoryEnabled() {
				return errors.New("run history is disabled (DATABASE_URL is empty)")
			}
			if datasetOut != "" && showID == "" {
				return errors.New("--dataset-out requires --show")
			}

			database, err := db.NewSQLiteDB(g.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			repo := repository.NewRunRepository(database)
			out := cmd.OutOrStdout()

			if showID != "" {
				run, err := repo.GetByID(cmd.Context(), showID)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", showID)
				}
				if datasetOut != "" {
					if err := saveDataset(cmd, g, run, datasetOut); err != nil {
						return err
					}
				}
				if g.jsonOutput() {
					return writeJSON(out, run)
				}
				writeLine(out, runDetail(run))
				return nil
			}

			runs, err := repo.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if g.jsonOutput() {
				return writeJSON(out, map[string]any{"runs": runs})
			}

			t := newTable([]string{"ID", "When", "File", "State", "Year", "Status", "Highest / Error", "ms"})
			for _, r := range runs {
				t.Row(
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Filename,
					r.State,
					r.Year,
					r.Status,
					outcome(&r),
					strconv.FormatInt(r.DurationMs, 10),
				)
			}
			writeLine(out, t.Render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", repository.DefaultListLimit, "maximum runs to show")
	cmd.Flags().StringVar(&showID, "show", "", "show a single run by ID")
	cmd.Flags().StringVar(&datasetOut, "dataset-out", "", "with --show, write the archived dataset to this path")
	return cmd
}

func outcome(r *models.RunRecord) string {
	switch {
	case r.Highest != nil:
		return *r.Highest
	case r.Error != nil:
		return *r.Error
	}
	return ""
}

func runDetail(r *models.RunRecord) string {
	dataset := "-"
	if r.DatasetKey != nil {
		dataset = *r.DatasetKey
	}

	t := newTable([]string{"Field", "Value"})
	t.Row("ID", r.ID)
	t.Row("When", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	t.Row("File", fmt.Sprintf("%s (%d bytes)", r.Filename, r.FileSize))
	t.Row("State", r.State)
	t.Row("Year", r.Year)
	t.Row("Status", r.Status)
	t.Row("Highest / Error", outcome(r))
	t.Row("Duration", strconv.FormatInt(r.DurationMs, 10)+" ms")
	t.Row("Dataset", dataset)
	return t.Render()
}

func saveDataset(cmd *cobra.Command, g *globals, run *models.RunRecord, path string) error {
	if run.DatasetKey == nil {
		return fmt.Errorf("run %s has no archived dataset", run.ID)
	}
	if !g.cfg.ArchiveEnabled() {
		return errors.New("dataset archive is disabled (S3_ENDPOINT is empty)")
	}

	archive, err := storage.NewMinioArchive(cmd.Context(), g.cfg)
	if err != nil {
		return err
	}
	obj, err := archive.Get(cmd.Context(), *run.DatasetKey)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, obj.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%d bytes) to %s\n", obj.Filename(), len(obj.Data), path)
	return nil
}
