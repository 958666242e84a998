package cli

import (
	"database/sql"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vbonduro/lostfound/internal/db"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	cmd.AddCommand(migrateVersionCmd())

	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			d, err := db.Connect(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			if err := db.Migrate(d); err != nil {
				return err
			}
			return printVersion(cmd, d)
		},
	}
}

func migrateDownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			d, err := db.Connect(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			if err := db.MigrateDown(d, steps); err != nil {
				return err
			}
			return printVersion(cmd, d)
		},
	}

	cmd.Flags().Int("steps", 1, "Number of migrations to roll back")

	return cmd
}

func migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			d, err := db.Connect(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = d.Close() }()

			return printVersion(cmd, d)
		},
	}
}

func printVersion(cmd *cobra.Command, d *sql.DB) error {
	v, dirty, err := db.Version(d)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dirty {
		fmt.Fprintf(out, "%s schema version %d (dirty)\n", color.New(color.FgRed).Sprint("✗"), v)
		return nil
	}
	fmt.Fprintf(out, "%s schema version %d\n", color.New(color.FgGreen).Sprint("✓"), v)
	return nil
}
