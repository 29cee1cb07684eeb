package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/modules/importer"
)

var importCmd = &cobra.Command{
	Use: "import <file>...",

	Short: "Imports .csv, .xlsx or .zip files synchronously.",

	Example: `
  cdmctl import --type metadata metadata.csv
  cdmctl import --type cdm demographics.csv clinical.xlsx
  cdmctl import --type longitudinal longitudinal.zip`,

	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		ut, ok := types.ParseUploadType(viper.GetString("import.type"))
		if !ok {
			return fmt.Errorf("--type must be one of metadata, cdm, longitudinal, biomarkers")
		}
		variable := viper.GetString("import.variable")
		if variable != "" && len(args) > 1 {
			return fmt.Errorf("--variable applies to a single file")
		}

		s, err := openStack()
		if err != nil {
			return err
		}
		defer s.close()

		var all []*importer.Summary
		for _, path := range args {
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			progress := func(index, total int, member string) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", index, total, member)
			}
			sums, err := s.importer.Import(context.Background(), ut, filepath.Base(path), raw, variable, progress)
			all = append(all, sums...)
			if err != nil {
				renderSummaries(cmd.OutOrStdout(), all)
				return err
			}
		}
		renderSummaries(cmd.OutOrStdout(), all)
		return nil
	},
}

func renderSummaries(w io.Writer, sums []*importer.Summary) {
	if len(sums) == 0 {
		return
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"file", "type", "variable", "rows", "skipped", "inserted", "ignored columns", "unknown cohorts"})
	for _, s := range sums {
		inserted := s.CohortsInserted + s.CDMConceptsInserted + s.CohortConceptsInserted + s.MappingsInserted + s.MeasurementsInserted
		unknown := append(append([]string{}, s.UnknownCohortColumns...), s.UnknownCohorts...)
		tw.Append([]string{
			s.File,
			string(s.UploadType),
			s.Variable,
			strconv.Itoa(s.RowsRead),
			strconv.Itoa(s.RowsSkipped),
			strconv.FormatInt(inserted, 10),
			strings.Join(s.IgnoredColumns, ", "),
			strings.Join(unknown, ", "),
		})
	}
	tw.Render()
}

func init() {
	flags := importCmd.Flags()

	flags.String("type", "", "Upload type: metadata, cdm, longitudinal or biomarkers.")
	flags.String("variable", "", "Modality or variable name; defaults to the file name without extension.")

	viper.BindPFlag("import.type", flags.Lookup("type"))
	viper.BindPFlag("import.variable", flags.Lookup("variable"))
}
