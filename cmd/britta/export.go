package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"britta/internal/csvexport"
	"britta/internal/domain"
	"britta/internal/sie"
)

func newSIECmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sie <report.json>",
		Short: "Rendera en sparad rapport som SIE4-fil för bokföringsprogram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := loadReport(args[0])
			if err != nil {
				return err
			}

			data, err := sie.FromReport(rep, sie.Options{})
			if err != nil {
				return err
			}

			if output == "" {
				output = sie.FileName(rep)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Skrev %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "utfil, standard momsrapport-<period>.sie")
	return cmd
}

func newCSVCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "csv <report.json>",
		Short: "Rendera en sparad rapport som CSV-underlag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := loadReport(args[0])
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			buf.Write(csvexport.BOM)
			w := csvexport.NewWriter(&buf)
			if err := w.WriteReport(rep); err != nil {
				return err
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return err
			}

			if output == "" {
				output = csvexport.BuildFilename(rep.Period)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Skrev %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "utfil, standard momsrapport_<period>_<datum>.csv")
	return cmd
}

// loadReport reads a report from disk. Both the bare report JSON produced by
// "britta analyze --json" and the metadata envelope stored on messages are
// accepted.
func loadReport(path string) (*domain.VATReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var envelope domain.ReportMetadata
	if err := json.Unmarshal(data, &envelope); err == nil &&
		envelope.Type == domain.ReportType && envelope.Report != nil {
		return envelope.Report, nil
	}

	var rep domain.VATReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("%s: not a report file: %w", path, err)
	}
	return &rep, nil
}
