package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ratecast/internal/api"
	"ratecast/internal/config"
	"ratecast/internal/output"
	"ratecast/internal/storage"
	"ratecast/internal/store"
	"ratecast/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ratecast",
	Short: "Property tax rate policy editor and revenue forecast client",
	Long: "ratecast edits a tiered property-tax rate policy and per-class appeal\n" +
		"values, submits them to the revenue-forecast backend, and renders the\n" +
		"results. The forecast computation itself is entirely server-side.",
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "ratecast %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// session bundles the wiring every command needs.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	client *api.Client
	store  *store.Store
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.BackendURL = backend
	}

	logger := zap.NewNop()
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	client := api.NewClient(cfg.BackendURL, cfg.RequestTimeout(), logger)
	fs := storage.NewFileStore(cfg.PolicyFile, logger)

	return &session{
		cfg:    cfg,
		logger: logger,
		client: client,
		store:  store.New(client, fs, logger),
	}, nil
}

// ensurePolicy makes sure the session has a working policy, fetching the
// server default when nothing was persisted.
func (s *session) ensurePolicy(ctx context.Context) error {
	if s.store.HasPolicy() {
		return nil
	}
	return s.store.FetchDefaultPolicy(ctx)
}

func main() {
	rootCmd.PersistentFlags().String("config", "", "Path to ratecast.yaml (optional)")
	rootCmd.PersistentFlags().String("backend", "", "Forecast backend URL (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(policyCmd())
	rootCmd.AddCommand(defaultsCmd())
	rootCmd.AddCommand(dataframesCmd())
	rootCmd.AddCommand(browseCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Submit the working policy for a revenue forecast",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if err := s.ensurePolicy(ctx); err != nil {
				return err
			}
			if err := s.store.FetchDefaults(ctx); err != nil {
				return err
			}

			apply := s.cfg.ApplyExemptionAverage
			if cmd.Flags().Changed("apply-exemption-average") {
				apply, _ = cmd.Flags().GetBool("apply-exemption-average")
			}

			if err := s.store.CalculateForecast(ctx, s.store.Policy(), s.store.Appeals(), apply); err != nil {
				return fmt.Errorf("forecast failed: %s", s.store.Err(store.OpForecast))
			}

			format, _ := cmd.Flags().GetString("format")
			f := output.GetFormatterByName(format)
			if f == nil {
				return fmt.Errorf("unknown format %q (want table, json, or csv)", format)
			}

			compareFY, _ := cmd.Flags().GetString("compare-fy")
			data, err := f.Format(s.store.Results(), output.Options{CompareFY: compareFY})
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
	cmd.Flags().String("format", "table", "Output format: table, json, csv")
	cmd.Flags().String("compare-fy", "", "Fiscal year to compare against (e.g. \"FY 2025\")")
	cmd.Flags().Bool("apply-exemption-average", false, "Apply exemption averaging server-side")
	return cmd
}

func defaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Fetch and print the default appeals and exemptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			if err := s.store.FetchDefaults(cmd.Context()); err != nil {
				return err
			}

			appeals := s.store.Appeals()
			exemptions := s.store.Exemptions()

			names := make([]string, 0, len(exemptions))
			for name := range exemptions {
				names = append(names, name)
			}
			if len(names) == 0 {
				for name := range appeals {
					names = append(names, name)
				}
			}
			sort.Strings(names)

			fmt.Printf("%-28s %18s %10s %10s %10s\n",
				"Tax Class", "Appeal Value", "Data", "Handout", "Exempt")
			for _, name := range names {
				ex := exemptions[name]
				fmt.Printf("%-28s %18s %10d %10d %10d\n",
					name, output.FormatCurrency(appeals[name]),
					ex.DataParcelCount, ex.FY2026ParcelCount, ex.ExemptionCount)
			}
			return nil
		},
	}
}

func dataframesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dataframes [name]",
		Short: "Inspect the datasets loaded on the backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if len(args) == 0 {
				names, err := s.client.Dataframes(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			}

			rows, err := s.client.DataframeHead(ctx, args[0])
			if err != nil {
				return err
			}
			for i, row := range rows {
				fmt.Printf("--- row %d ---\n", i)
				keys := make([]string, 0, len(row))
				for k := range row {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Printf("%-28s %v\n", k, row[k])
				}
			}
			return nil
		},
	}
}

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive policy editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			// A panic in the UI is reported to the backend's client-error
			// intake before the process dies, best effort.
			defer func() {
				if r := recover(); r != nil {
					_ = s.client.ReportClientError(context.Background(), api.ClientErrorReport{
						Message:   fmt.Sprintf("panic: %v", r),
						Stack:     string(debug.Stack()),
						Source:    "ratecast-tui",
						UserAgent: "ratecast/" + version,
					})
					panic(r)
				}
			}()

			return tui.Run(s.store, s.cfg)
		},
	}
}

