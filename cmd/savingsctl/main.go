package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"savings/internal/cli"
	"savings/internal/core"
	"savings/internal/export"
	applog "savings/internal/log"
	"savings/internal/services"
)

type app struct {
	svc   *services.RecordService
	close func() error
}

// open builds a record service over the configured backend. Commands run
// without the broker; the worker picks changes up on its next refresh.
func open(ctx context.Context) (*app, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.AMQPURL = ""
	logger := cli.SetupLogger(cfg, applog.ComponentCLI)
	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{svc: services.NewRecordService(res.Store), close: res.Close}, nil
}

func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}

var rootCmd = &cobra.Command{
	Use:           "savingsctl",
	Short:         "Inspect and edit savings snapshots",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the snapshot history, most recent first",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
		history, err := a.svc.History(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, history)
		}
		cli.RenderHistory(cmd.OutOrStdout(), history)
		return nil
	}),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new snapshot",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
		f := cmd.Flags()
		raw := core.RawInput{}
		for name, dst := range map[string]*string{
			"date":         &raw.Date,
			"gold-coins":   &raw.GoldInCoins,
			"gold-rate":    &raw.GoldConversionValue,
			"investments":  &raw.Investments,
			"certificates": &raw.BankCertificates,
			"usd":          &raw.DollarsInUSD,
			"dollar-rate":  &raw.DollarConversionValue,
			"cash":         &raw.CashSavings,
		} {
			v, err := f.GetString(name)
			if err != nil {
				return err
			}
			*dst = v
		}

		// Unset rates fall back to the latest snapshot, like the entry form.
		if raw.GoldConversionValue == "" || raw.DollarConversionValue == "" {
			rates, err := a.svc.LatestRates(cmd.Context())
			if err != nil {
				return err
			}
			if raw.GoldConversionValue == "" {
				raw.GoldConversionValue = rates.GoldRate.String()
			}
			if raw.DollarConversionValue == "" {
				raw.DollarConversionValue = rates.DollarRate.String()
			}
		}

		rec, err := a.svc.AddRaw(cmd.Context(), raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s on %s, total %s\n", rec.ID, rec.Date, core.FormatCurrency(rec.Total))
		return nil
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Remove snapshots by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		deleted := 0
		for _, id := range args {
			removed, err := a.svc.Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			if removed {
				deleted++
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "No record with id %s\n", id)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d record(s)\n", deleted)
		return nil
	}),
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show the conversion rates of the latest snapshot",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
		rates, err := a.svc.LatestRates(cmd.Context())
		if err != nil {
			return err
		}
		cli.RenderRates(cmd.OutOrStdout(), rates)
		return nil
	}),
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the latest total, its growth and the category breakdown",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
		s, err := a.svc.Summary(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, s)
		}
		cli.RenderSummary(cmd.OutOrStdout(), s)
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write the history as CSV to FILE or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		recs, err := a.svc.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return export.WriteFile(args[0], recs)
		}
		return export.WriteCSV(cmd.OutOrStdout(), recs)
	}),
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Add every snapshot of a CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		inputs, err := export.ReadCSV(f)
		if err != nil {
			return err
		}
		for _, in := range inputs {
			if _, err := a.svc.Add(cmd.Context(), in); err != nil {
				return fmt.Errorf("import %s: %w", in.Date, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s)\n", len(inputs))
		return nil
	}),
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	f := addCmd.Flags()
	f.String("date", "", "snapshot date (YYYY-MM-DD), defaults to today")
	f.String("gold-coins", "", "gold held, in coins")
	f.String("gold-rate", "", "value of one coin, defaults to the latest rate")
	f.String("investments", "", "investments value")
	f.String("certificates", "", "bank certificates value")
	f.String("usd", "", "dollars held")
	f.String("dollar-rate", "", "value of one dollar, defaults to the latest rate")
	f.String("cash", "", "cash savings")

	listCmd.Flags().Bool("json", false, "print JSON instead of a table")
	summaryCmd.Flags().Bool("json", false, "print JSON instead of text")

	rootCmd.AddCommand(listCmd, addCmd, deleteCmd, ratesCmd, summaryCmd, exportCmd, importCmd)
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
