package app

import (
	"github.com/spf13/cobra"

	"github.com/dataspace-exchange/dataspace-backend/internal/config"
)

func init() { //nolint: gochecknoinits
	dumpConfigCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration directory")
	dumpConfigCmd.Flags().BoolVar(&dumpJSON, "json", false, "Dump configuration as JSON instead of TOML")

	rootCmd.AddCommand(dumpConfigCmd)
}

var (
	dumpJSON bool

	dumpConfigCmd = &cobra.Command{
		Use:   "dump-config",
		Short: "Print the effective configuration",
		PreRun: func(_ *cobra.Command, _ []string) {
			if cfg, err = config.ReadConfig(configPath); err != nil {
				panic(err)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				out string
				err error
			)

			if dumpJSON {
				out, err = config.DumpConfigJSON(cfg)
			} else {
				out, err = config.DumpConfig(cfg)
			}

			if err != nil {
				return err
			}

			cmd.Print(out)

			return nil
		},
	}
)
