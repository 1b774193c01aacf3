package commands

import (
	"outbreakinfo/cmd/outbreak-cli/utils"
	"outbreakinfo/lib/genomics"
	"outbreakinfo/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	prevalenceLocation  *string
	prevalenceAncestors *bool
)

func init() {
	prevalenceLocation = prevalenceCmd.Flags().String("location", "", "Location id to report on, global when omitted.")
	prevalenceAncestors = prevalenceCmd.Flags().Bool("descendants", false, "Match the whole clade below the first lineage.")
	rootCmd.AddCommand(prevalenceCmd)
}

var prevalenceCmd = &cobra.Command{
	Use:   "prevalence <lineage> [more lineages...]",
	Short: "Prints the daily prevalence of PANGO lineages among sequenced samples.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := genomics.NewClient(newClient())

		rows, err := client.PrevalenceByLocation(cmd.Context(), genomics.PrevalenceRequest{
			Lineages:  args,
			Location:  *prevalenceLocation,
			Ancestors: *prevalenceAncestors,
		})
		if err != nil {
			serviceutil.Fatal("failed to fetch prevalence", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Query", "Date", "Prevalence", "Rolling", "Lineage Count", "Total Count"})
		for _, row := range rows {
			t.AppendRow(table.Row{
				row.Query,
				row.Date.Format("2006-01-02"),
				row.Prevalence,
				row.PrevalenceRolling,
				row.LineageCount,
				row.TotalCount,
			})
		}
		t.Render()
	},
}
