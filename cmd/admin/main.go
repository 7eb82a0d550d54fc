package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ss-admin",
	Short:         "SS Uniforms operator CLI",
	Long:          "Operator commands for the SS Uniforms backend: schema migration, demo data and admin bootstrap.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(usersCmd)
}
