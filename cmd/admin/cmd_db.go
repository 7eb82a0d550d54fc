package main

import (
	"fmt"

	"ss-uniforms/internal/config"
	"ss-uniforms/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// bootDB loads config and opens the database connection. Connect also syncs the schema.
func bootDB() (*gorm.DB, error) {
	cfg := config.Load()
	cfg.ConfigureLogging()
	return database.Connect(cfg)
}

// ss-admin migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
		return nil
	},
}

// ss-admin seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo catalogue when none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		wrote, err := database.Seed(db)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Fprintln(cmd.OutOrStdout(), "Demo catalogue created.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Catalogues already exist, nothing to do.")
		}
		return nil
	},
}
