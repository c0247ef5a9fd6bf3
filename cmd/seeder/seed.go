package main

import (
	"context"
	"fmt"

	"ampnm-backend/config"
	"ampnm-backend/internal/database"

	"github.com/spf13/cobra"
)

var (
	seedAdmin      database.AdminSeed
	seedSkipApp    bool
	seedSkipPortal bool
)

// seedCmd migrates both schemas and loads the initial data
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate and seed the databases",
	Long:  `Creates the tables of the application and portal databases, the first admin user with a default map, the installation id and the product catalog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !seedSkipApp {
			if err := seedApp(ctx); err != nil {
				return err
			}
		}
		if !seedSkipPortal {
			if err := seedPortal(ctx); err != nil {
				return err
			}
		}
		fmt.Println("Seeding finished.")
		return nil
	},
}

func seedApp(ctx context.Context) error {
	db, err := config.ConnectDB(cfg.DB, config.AppModels...)
	if err != nil {
		return err
	}
	return database.SeedApp(ctx, db, seedAdmin)
}

func seedPortal(ctx context.Context) error {
	db, err := config.ConnectDB(cfg.PortalDB, config.PortalModels...)
	if err != nil {
		return err
	}
	return database.SeedPortal(ctx, db)
}

func init() {
	seedCmd.Flags().StringVar(&seedAdmin.Username, "admin-user", "admin", "Username of the first administrator")
	seedCmd.Flags().StringVar(&seedAdmin.Email, "admin-email", "admin@example.com", "E-mail of the first administrator")
	seedCmd.Flags().StringVar(&seedAdmin.Password, "admin-password", "password", "Password of the first administrator")
	seedCmd.Flags().BoolVar(&seedAdmin.ResetPassword, "reset-password", false, "Overwrite the password of an existing administrator")
	seedCmd.Flags().BoolVar(&seedSkipApp, "skip-app", false, "Do not touch the application database")
	seedCmd.Flags().BoolVar(&seedSkipPortal, "skip-portal", false, "Do not touch the portal database")
}
