// Command depcalc computes depreciation schedules from a register snapshot file
// without running the API server.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcclellann/depreg/pkg/config"
	"github.com/mcclellann/depreg/pkg/depreciation"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/register"
	"github.com/mcclellann/depreg/pkg/store"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatCSV  = "csv"
	formatJSON = "json"
)

// options are the flags shared by every subcommand.
type options struct {
	snapshot   string
	fy         string
	format     string
	configFile string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "depcalc",
		Short: "Compute Companies Act and Income Tax depreciation from a register snapshot",
		Long: `depcalc reads a register snapshot (the JSON served by GET /snapshot) and
prints the Companies Act schedule, the Income Tax block schedule or the
deferred tax reconciliation for one financial year.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.snapshot, "snapshot", "s", "", "Path to the register snapshot JSON")
	flags.StringVar(&opts.fy, "fy", "", "Financial year, e.g. 2024-25 (default: the snapshot's year)")
	flags.StringVarP(&opts.format, "format", "o", formatText, "Output format: text, csv or json")
	flags.StringVar(&opts.configFile, "config", "", "Optional TOML config with rate overrides")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Optional .env file with DEPREG_* variables")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	root.AddCommand(newCompaniesActCmd(opts))
	root.AddCommand(newIncomeTaxCmd(opts))
	root.AddCommand(newDeferredTaxCmd(opts))
	root.AddCommand(newRatesCmd(opts))
	return root
}

func (o *options) validFormat() error {
	switch o.format {
	case formatText, formatCSV, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q: use text, csv or json", o.format)
}

func loadConfigOnly(o *options) (*config.Config, error) {
	if err := o.validFormat(); err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, err
	}
	return config.LoadConfig(o.configFile)
}

// loadRegister builds an in-memory register from the config and snapshot.
func (o *options) loadRegister() (*register.Register, error) {
	cfg, err := loadConfigOnly(o)
	if err != nil {
		return nil, err
	}
	if o.snapshot == "" {
		return nil, fmt.Errorf("a snapshot file is required: depcalc <command> --snapshot register.json")
	}
	tables, err := cfg.Tables()
	if err != nil {
		return nil, err
	}
	defaults, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(o.snapshot)
	if err != nil {
		return nil, fmt.Errorf("cannot read snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("cannot parse snapshot %s: %w", o.snapshot, err)
	}

	logger := config.NewLogger(o.logLevel)
	reg := register.NewRegister(store.NewMemoryStore(), depreciation.NewEngine(tables), logger).WithDefaults(defaults)
	if err := reg.ImportSnapshot(&snap); err != nil {
		return nil, err
	}
	return reg, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}
