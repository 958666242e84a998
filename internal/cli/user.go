package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(userAddCmd())

	return cmd
}

func userAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			role, _ := cmd.Flags().GetString("role")
			campus, _ := cmd.Flags().GetInt64("campus")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.services.Users.CreateUser(cmd.Context(), name, email, role, campus)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s created user %d (%s, %s)\n",
				color.New(color.FgGreen).Sprint("✓"), u.ID, u.Email, u.Role)
			return nil
		},
	}

	cmd.Flags().String("name", "", "Full name (required)")
	cmd.Flags().String("email", "", "Email address (required)")
	cmd.Flags().String("role", "Student", "Role: Student, Staff or SecurityOfficer")
	cmd.Flags().Int64("campus", 0, "Campus ID")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
