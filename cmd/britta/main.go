// Command britta is the offline companion to the API server. It runs the
// rule-based analysis pipeline against a spreadsheet and renders the result
// to the bookkeeping formats, without a server or a database.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "britta",
		Short:         "Momsrapportering för laddoperatörer",
		Long:          "Britta analyserar transaktionsexporter från laddplattformar och tar fram momsrapporter, SIE-filer och CSV-underlag.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newAnalyzeCmd(),
		newSIECmd(),
		newCSVCmd(),
		newValidateCmd(),
	)
	return root
}
