package commands

import (
	"outbreakinfo/cmd/outbreak-cli/utils"
	"outbreakinfo/lib/genomics"
	"outbreakinfo/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var casesRolling *bool

func init() {
	casesRolling = casesCmd.Flags().Bool("rolling", false, "Report the 7-day rolling average instead of raw daily counts.")
	rootCmd.AddCommand(casesCmd)
}

var casesCmd = &cobra.Command{
	Use:   "cases <location id> [more location ids...]",
	Short: "Prints daily confirmed COVID-19 case counts for one or more locations.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := genomics.NewClient(newClient())

		smoothing := genomics.SmoothingNone
		if *casesRolling {
			smoothing = genomics.SmoothingRolling
		}
		rows, err := client.CasesByLocation(cmd.Context(), args, smoothing)
		if err != nil {
			serviceutil.Fatal("failed to fetch case counts", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Date", "Cases"})
		for _, row := range rows {
			count := row.NewCases
			if *casesRolling {
				count = row.RollingAverage
			}
			t.AppendRow(table.Row{row.Date.Format("2006-01-02"), count})
		}
		t.Render()
	},
}
