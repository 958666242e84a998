package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ReconcileCmd returns the reconcile command
func ReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare case claim counters against claim rows",
		Long: `Lists every case whose totalClaims counter differs from the number
of claims attached to it. With --fix the counters are reset to the row count.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fix, _ := cmd.Flags().GetBool("fix")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			mismatches, err := a.services.Cases.ReconcileClaimCounts(cmd.Context(), fix)
			if err != nil {
				return fmt.Errorf("failed to reconcile claim counts: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(mismatches) == 0 {
				fmt.Fprintf(out, "%s all claim counters match\n", color.New(color.FgGreen).Sprint("✓"))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CASE\tCOUNTER\tCLAIMS")
			for _, m := range mismatches {
				fmt.Fprintf(w, "%d\t%d\t%d\n", m.CaseID, m.TotalClaims, m.ActualRows)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if fix {
				fmt.Fprintf(out, "%s repaired %d case(s)\n", color.New(color.FgGreen).Sprint("✓"), len(mismatches))
			} else {
				fmt.Fprintf(out, "%s %d case(s) out of sync, rerun with --fix to repair\n", color.New(color.FgYellow).Sprint("!"), len(mismatches))
			}
			return nil
		},
	}

	cmd.Flags().Bool("fix", false, "Reset drifted counters to the claim row count")

	return cmd
}
