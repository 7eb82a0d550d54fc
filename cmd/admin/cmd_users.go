package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"ss-uniforms/internal/accounts"
	"ss-uniforms/internal/format"

	"github.com/spf13/cobra"
)

var adminInput accounts.NewUserInput

// ss-admin create-admin --email --password --name
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the first admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		id, err := accounts.NewService(db).CreateAdmin(cmd.Context(), adminInput)
		if err != nil {
			return errors.New(accounts.Message(err, err.Error()))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Admin created: %s (%s)\n", adminInput.Email, id)
		return nil
	},
}

// ss-admin users
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List employee accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		employees, err := accounts.NewService(db).ListEmployees(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tJOINED")
		for _, e := range employees {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Email, e.Role, format.DateOnly(e.CreatedAt))
		}
		return w.Flush()
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminInput.Email, "email", "", "admin email (required)")
	f.StringVar(&adminInput.Password, "password", "", "admin password (required)")
	f.StringVar(&adminInput.Name, "name", "", "admin display name (required)")
	for _, name := range []string{"email", "password", "name"} {
		_ = createAdminCmd.MarkFlagRequired(name)
	}
}
