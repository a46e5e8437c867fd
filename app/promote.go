package app

import (
	"github.com/spf13/cobra"

	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	"github.com/dataspace-exchange/dataspace-backend/internal/daemon"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/controller/user"
)

func init() { //nolint: gochecknoinits
	promoteCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration directory")

	rootCmd.AddCommand(promoteCmd)
}

var promoteCmd = &cobra.Command{
	Use:   "promote-superuser <username-or-email>",
	Short: "Promote a user to superuser status",
	Args:  cobra.ExactArgs(1),
	PreRun: func(_ *cobra.Command, _ []string) {
		if cfg, err = config.ReadConfig(configPath); err != nil {
			panic(err)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		u, err := user.Promote(db, args[0])
		if err != nil {
			return err
		}

		cmd.Printf("Successfully promoted %s (ID: %d) to superuser status\n", u.Username, u.ID)

		return nil
	},
}
