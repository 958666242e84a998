package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd returns the lostfound root command with every subcommand attached.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lostfound",
		Short: "Campus lost-and-found case service",
		Long: `lostfound tracks found items and lost reports on campus and runs the
claim, verification and return workflow that hands items back to their owners.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("env-file", ".env", "Env file loaded before reading the environment")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(ReconcileCmd())
	rootCmd.AddCommand(UserCmd())

	return rootCmd
}
