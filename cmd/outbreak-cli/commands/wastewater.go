package commands

import (
	"fmt"

	"outbreakinfo/cmd/outbreak-cli/utils"
	"outbreakinfo/lib/dates"
	"outbreakinfo/lib/util/serviceutil"
	"outbreakinfo/lib/wastewater"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	wwCountry    *string
	wwRegion     *string
	wwSite       *string
	wwFrom       *string
	wwTo         *string
	wwMinLoad    *float64
	wwAccessions *[]string
)

func init() {
	wwCountry = wastewaterCmd.PersistentFlags().String("country", "", "Country to filter samples by.")
	wwRegion = wastewaterCmd.PersistentFlags().String("region", "", "Region to filter samples by.")
	wwSite = wastewaterCmd.PersistentFlags().String("site", "", "Collection site id to filter samples by.")
	wwFrom = wastewaterCmd.PersistentFlags().String("from", "", "Earliest collection date (YYYY-MM-DD) to include.")
	wwTo = wastewaterCmd.PersistentFlags().String("to", "", "Latest collection date (YYYY-MM-DD) to include.")
	wwMinLoad = wastewaterCmd.PersistentFlags().Float64("min-viral-load", 0, "Minimum viral load to include.")
	wwAccessions = wastewaterCmd.PersistentFlags().StringSlice("accession", nil, "SRA accessions to restrict the query to.")
	wastewaterCmd.AddCommand(wwLatestCmd)
	wastewaterCmd.AddCommand(wwSamplesCmd)
	rootCmd.AddCommand(wastewaterCmd)
}

var wastewaterCmd = &cobra.Command{
	Use:   "wastewater",
	Short: "Queries wastewater surveillance data.",
}

func wwFilter() wastewater.Filter {
	filter := wastewater.Filter{
		Country:    *wwCountry,
		Region:     *wwRegion,
		SiteID:     *wwSite,
		Accessions: *wwAccessions,
	}
	if *wwFrom != "" {
		from, err := dates.Parse(*wwFrom)
		if err != nil {
			serviceutil.Fatal("invalid --from date", err)
		}
		filter.DateFrom = from
	}
	if *wwTo != "" {
		to, err := dates.Parse(*wwTo)
		if err != nil {
			serviceutil.Fatal("invalid --to date", err)
		}
		filter.DateTo = to
	}
	if *wwMinLoad > 0 {
		filter.MinViralLoad = wastewater.Float(*wwMinLoad)
	}
	return filter
}

var wwLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Prints the collection date of the most recent matching sample.",
	Run: func(cmd *cobra.Command, args []string) {
		client := wastewater.NewClient(newClient())

		latest, err := client.Latest(cmd.Context(), wwFilter())
		if err != nil {
			serviceutil.Fatal("failed to fetch latest sample", err)
		}
		fmt.Println(latest.Format("2006-01-02"))
	},
}

var wwSamplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Prints the metadata of matching wastewater samples.",
	Run: func(cmd *cobra.Command, args []string) {
		client := wastewater.NewClient(newClient())

		rows, err := client.Samples(cmd.Context(), wwFilter())
		if err != nil {
			serviceutil.Fatal("failed to fetch samples", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Accession", "Collected", "Country", "Region", "Site", "Viral Load"})
		for _, row := range rows {
			load := ""
			if row.ViralLoad != nil {
				load = fmt.Sprintf("%g", *row.ViralLoad)
			}
			t.AppendRow(table.Row{
				row.Accession,
				row.CollectionDate.Format("2006-01-02"),
				row.Country,
				row.Region,
				row.SiteID,
				load,
			})
		}
		t.Render()
	},
}
