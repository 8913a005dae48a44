package cmd

import (
	"fmt"
	"os"

	"ebloc-backend/services/ebloc"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sensorsCmd)
}

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "Fetches a fresh snapshot and prints every sensor value.",
	Run: func(cmd *cobra.Command, args []string) {
		_, err := coordinator.Refresh(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Sensor", "Value", "Unit"})

		for _, r := range ebloc.Readings(coordinator) {
			t.AppendRow(table.Row{r.Name, fmt.Sprint(r.Value), r.Unit})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
