package main

import (
	"fmt"

	"ampnm-backend/config"
	"ampnm-backend/internal/repository"

	"github.com/spf13/cobra"
)

// installationIDCmd prints the id the license portal binds licenses to
var installationIDCmd = &cobra.Command{
	Use:   "installation-id",
	Short: "Print the installation id, creating it if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.ConnectDB(cfg.DB, config.AppModels...)
		if err != nil {
			return err
		}
		id, err := repository.NewSettingRepository(db).EnsureInstallationID(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}
