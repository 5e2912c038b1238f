package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"britta/internal/analysis"
	"britta/internal/analysis/local"
	"britta/internal/domain"
	"britta/internal/port"
	"britta/internal/progress"
	"britta/internal/validator"
	"britta/internal/vat"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		period    string
		company   string
		orgNumber string
		asJSON    bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "analyze <spreadsheet>",
		Short: "Analysera en transaktionsexport och ta fram momsrapporten",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			if period == "" {
				// VAT is declared for closed months.
				period = time.Now().AddDate(0, -1, 0).Format("2006-01")
			}
			reportCompany := domain.ReportCompany{Name: company, OrgNumber: orgNumber}

			var result *domain.AnalysisResult
			var failMsg string
			streamer := local.NewStreamer()
			err = streamer.Stream(cmd.Context(), port.StreamInput{
				FileName: filepath.Base(args[0]),
				Data:     data,
				Company:  reportCompany,
				Period:   period,
			}, func(ev domain.ProgressEvent) {
				switch ev.Step {
				case progress.StepComplete:
					result = ev.Report
				case progress.StepError:
					failMsg = ev.Error
					if failMsg == "" {
						failMsg = ev.Message
					}
				default:
					fmt.Fprintf(cmd.ErrOrStderr(), "%-13s %s\n", ev.Step, ev.Message)
				}
			})
			if err != nil {
				return err
			}
			if failMsg != "" {
				return fmt.Errorf("analysen misslyckades: %s", failMsg)
			}

			rep := analysis.EnsureComputed(result, validator.NewEngine(), vat.Options{
				Period:  period,
				Company: reportCompany,
			})

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			renderReport(out, rep)
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "redovisningsperiod (YYYY-MM), standard föregående månad")
	cmd.Flags().StringVarP(&company, "company", "c", "", "företagsnamn för rapporten")
	cmd.Flags().StringVar(&orgNumber, "org-number", "", "organisationsnummer (NNNNNN-NNNN)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "skriv rapporten som JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "skriv till fil i stället för stdout")
	return cmd
}

// openOutput resolves the output target. An empty path means stdout, which
// must not be closed.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func renderReport(w io.Writer, rep *domain.VATReport) {
	fmt.Fprintf(w, "Momsrapport %s", rep.Period)
	if rep.Company.Name != "" {
		fmt.Fprintf(w, " – %s", rep.Company.Name)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	if len(rep.Sales) > 0 {
		fmt.Fprintln(w, "Försäljning")
		for _, item := range rep.Sales {
			fmt.Fprintf(w, "  %-35s %4s  netto %12.2f  moms %10.2f\n",
				item.Description, item.BASAccount, item.NetAmount, item.VATAmount)
		}
	}
	if len(rep.Costs) > 0 {
		fmt.Fprintln(w, "Kostnader")
		for _, item := range rep.Costs {
			fmt.Fprintf(w, "  %-35s %4s  netto %12.2f  moms %10.2f\n",
				item.Description, item.BASAccount, item.NetAmount, item.VATAmount)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summa intäkter   %12.2f kr\n", rep.Summary.TotalIncome)
	fmt.Fprintf(w, "Summa kostnader  %12.2f kr\n", rep.Summary.TotalCosts)
	fmt.Fprintf(w, "Resultat         %12.2f kr\n", rep.Summary.Result)
	fmt.Fprintln(w)
	if rep.VAT.ToRefund > 0 {
		fmt.Fprintf(w, "Moms att få tillbaka: %.2f kr\n", rep.VAT.ToRefund)
	} else {
		fmt.Fprintf(w, "Moms att betala: %.2f kr\n", rep.VAT.ToPay)
	}

	if !rep.Validation.IsValid {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Rapporten klarade inte alla kontroller:")
		for _, e := range rep.Validation.Errors {
			fmt.Fprintf(w, "  fel: %s\n", e)
		}
	}
	for _, warning := range rep.Validation.Warnings {
		fmt.Fprintf(w, "  varning: %s\n", warning)
	}
}
