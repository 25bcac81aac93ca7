package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taxi-dashboard/config"
	"taxi-dashboard/utils"
)

// NewRootCmd creates the taxi-dashboard command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxi-dashboard",
		Short: "Render an HTML ridership dashboard from NYC TLC trip records",
		Long: `taxi-dashboard downloads the monthly NYC TLC trip record files (cached
locally), filters invalid rows and renders hourly ridership, daily totals
and late-night drop-off hot spots into a single HTML page.

Examples:
  # Default range (2025-01 through 2025-03)
  taxi-dashboard

  # One month, custom output
  taxi-dashboard --months 2025-01 --output /tmp/jan.html

  # Parallel downloads and a 20:00-04:59 late-night window
  taxi-dashboard -m 2024-10:2024-12 --concurrency 3 --late-night 20-4

Settings can also come from .taxi-dashboard.yaml, a .env file or
TAXI_* environment variables. Flags take precedence.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	defaults := config.NewConfig()
	cmd.Flags().StringP("months", "m", defaults.Months,
		"Inclusive month range START:END in YYYY-MM (a single month is allowed)")
	cmd.Flags().StringP("output", "o", defaults.OutputPath,
		"Dashboard HTML path (overwritten, directories are created)")
	cmd.Flags().String("cache-dir", defaults.CacheDir,
		"Directory for downloaded source files")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .taxi-dashboard.yaml or the XDG config dir)")
	cmd.Flags().String("dataset", defaults.Dataset,
		"TLC dataset: yellow or green")
	cmd.Flags().Int("concurrency", defaults.MaxConcurrency,
		"Number of months downloaded in parallel")
	cmd.Flags().Int("top-k", defaults.TopK,
		"Zones kept per late-night hour")
	cmd.Flags().String("late-night", fmt.Sprintf("%d-%d", defaults.LateNightStart, defaults.LateNightEnd),
		"Late-night pickup window START-END in hours, inclusive, may wrap midnight")
	cmd.Flags().String("csv-dir", "",
		"Also export the summary tables as CSV files into this directory")
	cmd.Flags().String("timezone", "",
		"Convert trip timestamps to this IANA zone (default: keep recorded wall clock)")
	cmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func runRootCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := utils.NewLogger(cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := run(ctx, cfg, logger, cmd.OutOrStdout(), time.Now)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard written to %s\n", path)
	return nil
}

// buildConfig loads file and environment settings, then applies the flags
// the user set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("months") {
		cfg.Months, _ = flags.GetString("months")
	}
	if flags.Changed("output") {
		cfg.OutputPath, _ = flags.GetString("output")
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir, _ = flags.GetString("cache-dir")
	}
	if flags.Changed("dataset") {
		cfg.Dataset, _ = flags.GetString("dataset")
	}
	if flags.Changed("concurrency") {
		cfg.MaxConcurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("top-k") {
		cfg.TopK, _ = flags.GetInt("top-k")
	}
	if flags.Changed("late-night") {
		window, _ := flags.GetString("late-night")
		cfg.LateNightStart, cfg.LateNightEnd, err = config.ParseWindow(window)
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed("csv-dir") {
		cfg.CSVDir, _ = flags.GetString("csv-dir")
	}
	if flags.Changed("timezone") {
		cfg.Timezone, _ = flags.GetString("timezone")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	return cfg, nil
}
