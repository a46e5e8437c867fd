package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	"github.com/dataspace-exchange/dataspace-backend/internal/daemon"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/controller/role"
)

func init() { //nolint: gochecknoinits
	initRolesCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration directory")

	rootCmd.AddCommand(initRolesCmd)
}

var initRolesCmd = &cobra.Command{
	Use:   "init-roles",
	Short: "Initialize the default roles in the database",
	Long: `Create or update the default roles (admin, editor, viewer, owner)
with their fixed permission flags. Running the command again updates
existing roles in place.`,
	PreRun: func(_ *cobra.Command, _ []string) {
		if cfg, err = config.ReadConfig(configPath); err != nil {
			panic(err)
		}
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		results, err := role.Seed(db)
		if err != nil {
			return err
		}

		for _, r := range results {
			if r.Created {
				cmd.Printf("Created role: %s\n", r.Name)
			} else {
				cmd.Printf("Updated role: %s\n", r.Name)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Successfully initialized roles")

		return nil
	},
}
