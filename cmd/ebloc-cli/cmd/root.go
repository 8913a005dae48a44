package cmd

import (
	"fmt"
	"os"

	"ebloc-backend/lib/configutil"
	"ebloc-backend/services/ebloc"

	"github.com/spf13/cobra"
)

type config struct {
	Portal ebloc.Options `json:"portal"`
}

var coordinator *ebloc.Coordinator

var rootCmd = &cobra.Command{
	Use:   "ebloc-cli",
	Short: "ebloc-cli is a one-shot scrape of your e-bloc.ro account.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configutil.ReadRecursively[config]("config.json5")
		if err != nil {
			return fmt.Errorf("read config.json5: %w", err)
		}
		coordinator, err = ebloc.NewCoordinator(cfg.Portal)
		return err
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
