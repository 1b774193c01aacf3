package commands

import (
	"fmt"
	"strconv"

	"outbreakinfo/cmd/outbreak-cli/utils"
	"outbreakinfo/lib/genomics"
	"outbreakinfo/lib/lineagetree"
	"outbreakinfo/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var mutationsFrequency *float64

func init() {
	mutationsFrequency = mutationsCmd.Flags().Float64("frequency", genomics.DefaultMutationFrequency, "Minimum in-lineage frequency of reported mutations.")
	lineageCmd.AddCommand(mutationsCmd)
	lineageCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(lineageCmd)
}

var lineageCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Inspects PANGO lineages.",
}

var mutationsCmd = &cobra.Command{
	Use:   "mutations <lineage> [more lineages...]",
	Short: "Prints the characteristic mutations of a lineage.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := genomics.NewClient(newClient())

		rows, err := client.LineageMutations(cmd.Context(), genomics.LineageMutationsRequest{
			Lineages:  args,
			Frequency: *mutationsFrequency,
		})
		if err != nil {
			serviceutil.Fatal("failed to fetch lineage mutations", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Lineage", "Mutation", "Gene", "Prevalence"})
		for _, row := range rows {
			t.AppendRow(table.Row{row.Lineage, row.Mutation, row.Gene, row.Prevalence})
		}
		t.Render()
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <name>",
	Short: "Suggests the closest known lineage names, for typo recovery.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tree, err := lineagetree.Fetch(cmd.Context(), "")
		if err != nil {
			serviceutil.Fatal("failed to fetch lineage tree", err)
		}

		suggestions := lineagetree.Suggest(args[0], lineagetree.Key(tree), 10)
		fmt.Printf("Lineages closest to %q:\n", args[0])
		t := utils.NewTable()
		t.AppendHeader(table.Row{"Name", "Similarity"})
		for _, s := range suggestions {
			t.AppendRow(table.Row{s.Name, strconv.FormatFloat(s.Similarity, 'f', 3, 64)})
		}
		t.Render()
	},
}
