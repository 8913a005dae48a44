package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(monthsCmd)
}

var monthsCmd = &cobra.Command{
	Use:   "months",
	Short: "Prints the billing months published for the apartment.",
	Run: func(cmd *cobra.Command, args []string) {
		snapshot, err := coordinator.Refresh(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Month", "Open", "Active"})

		for _, m := range snapshot.Months {
			active := ""
			if m.Month == snapshot.ActiveMonth {
				active = "*"
			}
			t.AppendRow(table.Row{m.Month, m.Open, active})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()

		fmt.Println("fetched at", snapshot.FetchedAt.Format(time.RFC3339))
	},
}
