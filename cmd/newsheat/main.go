// newsheat measures how hot the news flow around a Taiwan-listed stock is.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/newsheat/api"
	"github.com/seenimoa/newsheat/internal/config"
	"github.com/seenimoa/newsheat/internal/datasource"
	"github.com/seenimoa/newsheat/internal/infra"
	"github.com/seenimoa/newsheat/pkg/models"
	"github.com/seenimoa/newsheat/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set in PersistentPreRunE.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newsheat",
	Short: "newsheat — news heat monitor for Taiwan stocks",
	Long: `newsheat scans eleven Taiwanese financial news outlets in parallel for
one stock, scores each outlet's coverage and reports a 0-100 heat value.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logger = infra.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newsheat %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Scan Command ---

var scanCmd = &cobra.Command{
	Use:   "scan [name or code]",
	Short: "Scan every news source for a stock and report its heat",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		asJSON, _ := cmd.Flags().GetBool("json")
		keywordOnly, _ := cmd.Flags().GetBool("keyword-only")
		if keywordOnly {
			cfg.LLM.Primary = "none"
		}

		ctx := cmd.Context()
		p, err := buildPipeline(ctx, cfg, logger)
		if err != nil {
			return err
		}

		id, err := p.resolver.Resolve(ctx, query)
		if err != nil {
			return err
		}

		orch := p.orchestrator
		if !asJSON {
			fmt.Printf("🔍 %s (%s): scanning %d sources...\n", id.DisplayName, id.Code, len(p.adapters))
			orch = orch.WithObserver(func(res models.SourceResult) {
				fmt.Println(progressLine(res))
			})
		}

		report := orch.Run(ctx, id)
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Println()
		return writeReport(os.Stdout, report, cfg.Scan.SignalLimit)
	},
}

func init() {
	scanCmd.Flags().Bool("json", false, "print the full report as JSON")
	scanCmd.Flags().Bool("keyword-only", false, "skip model scoring even when a key is configured")
}

// --- Resolve Command ---

var resolveCmd = &cobra.Command{
	Use:   "resolve [name or code]",
	Short: "Resolve a stock name or code to its canonical identity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		r := buildResolver(cmd.Context(), cfg, nil, logger)
		id, err := r.Resolve(cmd.Context(), query)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s  (via %s)\n", id.Code, id.DisplayName, id.Via)
		return nil
	},
}

// --- Sources Command ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the registered news sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapters := datasource.DefaultAdapters(datasource.OptionsFromConfig(cfg.Sources, nil))
		return writeSources(os.Stdout, datasource.Describe(adapters))
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		if host, _ := cmd.Flags().GetString("host"); host != "" {
			cfg.API.Host = host
		}

		p, err := buildPipeline(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		srv, err := api.NewServer(cfg, api.Deps{
			Orchestrator: p.orchestrator,
			Resolver:     p.resolver,
			Logger:       logger,
			Version:      version,
		})
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting newsheat API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
	serveCmd.Flags().String("host", "", "listen host (overrides config)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  newsheat — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (TPE):    %s\n", utils.FormatDateTimeTPE(utils.NowTPE()))
		fmt.Println()

		fmt.Println("  Configuration:")
		if cfg.File != "" {
			fmt.Printf("    Config File:   %s\n", cfg.File)
		}
		scoring := "keyword"
		if cfg.LLM.Enabled() {
			scoring = "model (" + cfg.LLM.Primary + "), keyword fallback"
		}
		fmt.Printf("    Scoring:       %s\n", scoring)
		fmt.Printf("    Sources:       %d\n", len(datasource.DefaultFeedSites)+2)
		fmt.Printf("    Bootstrap:     %t\n", cfg.Resolver.Bootstrap)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("    Log Level:     %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			state := "not set"
			if k.IsSet {
				state = fmt.Sprintf("%s (from %s)", k.Masked, k.Source)
			}
			fmt.Printf("    %-15s %s\n", k.Name+":", state)
		}
		return nil
	},
}

// progressLine renders one finished source for the live scan output.
func progressLine(res models.SourceResult) string {
	elapsed := res.Elapsed.Round(100 * time.Millisecond)
	switch {
	case res.Failed:
		return fmt.Sprintf("  ✗ %s  failed (%s)", res.Source, elapsed)
	case res.Empty():
		return fmt.Sprintf("  · %s  no news (%s)", res.Source, elapsed)
	default:
		return fmt.Sprintf("  ✓ %s  %d (%s)", res.Source, len(res.Records), elapsed)
	}
}
