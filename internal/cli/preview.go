package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/intake"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
)

func newPreviewCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "preview FILE",
		Short: "Show the first rows of a dataset",
		Long: `Parse a crime dataset the way the dashboard does and print its header
and first rows. Only .xlsx, .xls and .csv files are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDataset(args[0])
			if err != nil {
				return err
			}

			file, rows, err := intake.Accept(args[0], data)
			if err != nil {
				return errors.New(intake.Message(err))
			}
			preview := intake.BuildPreview(rows)

			out := cmd.OutOrStdout()
			if g.jsonOutput() {
				return writeJSON(out, struct {
					File    *models.UploadedFile `json:"file"`
					Preview models.Preview       `json:"preview"`
				}{file, preview})
			}

			writeLine(out, fmt.Sprintf("%s (%d bytes, %d rows)", file.Name, file.Size, len(rows)-1))
			writeLine(out, previewTable(preview))
			return nil
		},
	}
}
