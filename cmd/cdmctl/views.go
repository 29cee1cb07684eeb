package main

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/pdataviewer-backend/internal/modules/cdm"
)

var cdmCmd = &cobra.Command{
	Use: "cdm",

	Short: "Prints the reconstructed CDM table.",

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStack()
		if err != nil {
			return err
		}
		defer s.close()

		tbl, err := s.catalog.CDM(context.Background(), viper.GetString("cdm.modality"))
		if err != nil {
			return err
		}
		renderCDM(cmd.OutOrStdout(), tbl)
		return nil
	},
}

var chordsCmd = &cobra.Command{
	Use: "chords",

	Short: "Prints the chord diagram links of one modality.",

	Example: `
  cdmctl chords --modality demographics --cohort ppmi --cohort luxpark`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStack()
		if err != nil {
			return err
		}
		defer s.close()

		d, err := s.viz.Chords(context.Background(), viper.GetString("chords.modality"), viper.GetStringSlice("chords.cohort"))
		if err != nil {
			return err
		}
		renderChords(cmd.OutOrStdout(), d)
		return nil
	},
}

var rankCmd = &cobra.Command{
	Use: "rank <variable>...",

	Short: "Ranks cohorts by how many of the given CDM variables they map.",

	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStack()
		if err != nil {
			return err
		}
		defer s.close()

		rows, err := s.picker.Rank(context.Background(), args)
		if err != nil {
			return err
		}
		renderRank(cmd.OutOrStdout(), rows)
		return nil
	},
}

func renderCDM(w io.Writer, tbl cdm.Table) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(tbl.Columns)
	for _, row := range tbl.Rows {
		line := make([]string, len(tbl.Columns))
		for i, col := range tbl.Columns {
			line[i] = row[col]
		}
		tw.Append(line)
	}
	tw.Render()
}

func renderChords(w io.Writer, d cdm.ChordDiagram) {
	group := make(map[string]string, len(d.Nodes))
	for _, n := range d.Nodes {
		group[n.Name] = n.Group
	}
	if len(d.Links) == 0 {
		fmt.Fprintln(w, "No links.")
		return
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"source", "source cohort", "target", "target cohort"})
	for _, l := range d.Links {
		tw.Append([]string{l.Source, group[l.Source], l.Target, group[l.Target]})
	}
	tw.Render()
}

func renderRank(w io.Writer, rows []cdm.RankRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No cohort maps any of the variables.")
		return
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"cohort", "found", "missing"})
	for _, r := range rows {
		tw.Append([]string{r.Cohort, r.Found, r.Missing})
	}
	tw.Render()
}

func init() {
	cdmFlags := cdmCmd.Flags()
	cdmFlags.String("modality", "", "Only use mappings of this modality.")
	viper.BindPFlag("cdm.modality", cdmFlags.Lookup("modality"))

	chordFlags := chordsCmd.Flags()
	chordFlags.String("modality", "", "Modality to draw.")
	chordFlags.StringSlice("cohort", nil, "Restrict to these cohorts (repeatable).")
	viper.BindPFlag("chords.modality", chordFlags.Lookup("modality"))
	viper.BindPFlag("chords.cohort", chordFlags.Lookup("cohort"))
}
