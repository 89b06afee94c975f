package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/mcclellann/depreg/pkg/export"
	"github.com/mcclellann/depreg/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newCompaniesActCmd(opts *options) *cobra.Command {
	var method string
	var summary bool
	cmd := &cobra.Command{
		Use:   "companies-act",
		Short: "Print the Companies Act (Schedule II) depreciation schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegister()
			if err != nil {
				return err
			}
			m, err := reg.Method(method)
			if err != nil {
				return err
			}
			w, err := reg.Window(opts.fy)
			if err != nil {
				return err
			}
			sched, err := reg.CompaniesActSchedule(m, w)
			if err != nil {
				return err
			}

			switch {
			case opts.format == formatJSON && summary:
				return writeJSON(cmd, sched.Summary)
			case opts.format == formatJSON:
				return writeJSON(cmd, sched)
			case opts.format == formatCSV && summary:
				return export.CompaniesActSummaryCSV(cmd.OutOrStdout(), sched.Summary)
			case opts.format == formatCSV:
				return export.CompaniesActCSV(cmd.OutOrStdout(), sched.Results)
			}
			return export.CompaniesActText(cmd.OutOrStdout(), sched.FinancialYear, sched.Method, sched.Results, sched.Summary, sched.Warnings)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "SLM or WDV (default: the snapshot's method)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Write only the totals by asset type (csv and json)")
	return cmd
}

func newIncomeTaxCmd(opts *options) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "income-tax",
		Short: "Print the Income Tax block depreciation schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegister()
			if err != nil {
				return err
			}
			w, err := reg.Window(opts.fy)
			if err != nil {
				return err
			}
			sched, err := reg.IncomeTaxSchedule(w)
			if err != nil {
				return err
			}

			switch {
			case opts.format == formatJSON && summary:
				return writeJSON(cmd, sched.Summary)
			case opts.format == formatJSON:
				return writeJSON(cmd, sched)
			case opts.format == formatCSV && summary:
				return export.IncomeTaxSummaryCSV(cmd.OutOrStdout(), sched.Summary)
			case opts.format == formatCSV:
				return export.IncomeTaxCSV(cmd.OutOrStdout(), sched.Results)
			}
			return export.IncomeTaxText(cmd.OutOrStdout(), sched.FinancialYear, sched.Results, sched.Summary, sched.Warnings)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "Write only the totals by block type (csv and json)")
	return cmd
}

func newDeferredTaxCmd(opts *options) *cobra.Command {
	var method, rate, profit string
	cmd := &cobra.Command{
		Use:   "deferred-tax",
		Short: "Reconcile deferred tax between the two schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadRegister()
			if err != nil {
				return err
			}
			m, err := reg.Method(method)
			if err != nil {
				return err
			}
			w, err := reg.Window(opts.fy)
			if err != nil {
				return err
			}
			settings, err := reg.Settings()
			if err != nil {
				return err
			}
			taxRate, err := decimalFlag("rate", rate, settings.TaxRate)
			if err != nil {
				return err
			}
			accountingProfit, err := decimalFlag("profit", profit, settings.AccountingProfit)
			if err != nil {
				return err
			}

			report, err := reg.DeferredTax(m, w, taxRate, accountingProfit)
			if err != nil {
				return err
			}
			switch opts.format {
			case formatJSON:
				return writeJSON(cmd, report)
			case formatCSV:
				return fmt.Errorf("deferred-tax has no CSV form; use text or json")
			}
			return export.DeferredTaxText(cmd.OutOrStdout(), report.FinancialYear, report.Result, report.Warnings)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "SLM or WDV (default: the snapshot's method)")
	cmd.Flags().StringVar(&rate, "rate", "", "Tax rate as a fraction, e.g. 0.2517 (default: the snapshot's rate)")
	cmd.Flags().StringVar(&profit, "profit", "", "Accounting profit before tax (default: the snapshot's profit)")
	return cmd
}

func decimalFlag(name, value string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s must be a number: %w", name, err)
	}
	return d, nil
}

func newRatesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "List the asset classes and Income Tax blocks with their rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOnly(opts)
			if err != nil {
				return err
			}
			tables, err := cfg.Tables()
			if err != nil {
				return err
			}
			if opts.format == formatJSON {
				return writeJSON(cmd, map[string]any{
					"asset_classes": tables.AssetClasses(),
					"block_classes": tables.BlockClasses(),
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SCHEDULE II\tLIFE\tWDV RATE\tLABEL")
			for _, a := range tables.AssetClasses() {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", a.Key, a.UsefulLife, money.Percent(a.WDVRate), a.Label)
			}
			fmt.Fprintln(tw, "\nINCOME TAX BLOCK\tRATE\tADDITIONAL\tLABEL")
			for _, b := range tables.BlockClasses() {
				additional := "yes"
				if b.ExcludedFromAdditional {
					additional = "no"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Key, money.Percent(b.Rate), additional, b.Label)
			}
			return tw.Flush()
		},
	}
}
