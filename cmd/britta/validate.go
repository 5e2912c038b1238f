package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"britta/internal/validator"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <report.json>",
		Short: "Kör kontrollreglerna mot en sparad rapport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := loadReport(args[0])
			if err != nil {
				return err
			}

			result := validator.NewEngine().ValidateReport(rep)
			out := cmd.OutOrStdout()
			for _, e := range result.Errors {
				fmt.Fprintf(out, "fel: %s\n", e)
			}
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "varning: %s\n", w)
			}

			if !result.IsValid {
				return fmt.Errorf("rapporten klarade inte kontrollerna (%d fel)", len(result.Errors))
			}
			fmt.Fprintln(out, "Rapporten klarade alla kontroller")
			return nil
		},
	}
}
