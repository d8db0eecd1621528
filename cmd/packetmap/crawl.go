package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kd9lsv/packetmap/internal/config"
	"github.com/kd9lsv/packetmap/internal/crawler"
	"github.com/kd9lsv/packetmap/internal/database"
	"github.com/kd9lsv/packetmap/internal/identity"
	"github.com/kd9lsv/packetmap/internal/log"
	"github.com/kd9lsv/packetmap/internal/model"
	"github.com/kd9lsv/packetmap/internal/netmap"
	"github.com/kd9lsv/packetmap/internal/report"
	"github.com/kd9lsv/packetmap/internal/session"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the packet network and update the map document",
		Long: `Crawl connects to the local node's telnet port and walks the network
hop by hop over NET/ROM. Each reached node is interrogated for its
ports, routes, node table and heard stations, and the results update
the JSON map document incrementally, so an interrupted run loses at
most one node's work.

Crawl modes:
  update    attempt unvisited and newly discovered nodes (default)
  reaudit   revisit every known node regardless of prior visits
  new-only  attempt only nodes discovered during this run

Examples:
  # Crawl with settings from .packetmap
  packetmap crawl

  # Override the local node and hop limit on the command line
  packetmap crawl --node KE4OTZ-3 --max-hops 3

  # Full re-audit with a Markdown report written to a file
  packetmap crawl --mode reaudit --markdown -o report.md

  # Never attempt these stations
  packetmap crawl -x K4ABC -x W4XYZ-7`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	// Station flags
	cmd.Flags().StringP("call", "C", "", "Operator callsign, recorded as map provenance")
	cmd.Flags().StringP("node", "n", "", "Local node callsign-SSID where every path starts")
	cmd.Flags().StringP("telnet", "t", "", fmt.Sprintf("Local node telnet listener (default %s)", config.DefaultTelnetAddress))
	cmd.Flags().StringP("user", "u", "", "Node login user")
	cmd.Flags().StringP("password", "p", "", "Node login password")
	cmd.Flags().String("socks", "", "SOCKS5 proxy for the telnet connection (host:port)")

	// Crawl behavior flags
	cmd.Flags().String("mode", string(model.ModeUpdate), "Crawl mode: update, reaudit or new-only")
	cmd.Flags().Int("max-hops", config.DefaultMaxHops, "Maximum path length in hops (0 = unlimited)")
	cmd.Flags().Int("max-paths", config.DefaultMaxPaths, "Candidate paths tried per target")
	cmd.Flags().Duration("stale-after", config.DefaultStaleAfter, "Revisit nodes not confirmed within this duration (0 = always)")
	cmd.Flags().Bool("lowest-ssid", false, "Break identity ties by lowest SSID instead of most recent observation")
	cmd.Flags().StringSliceP("exclude", "x", nil, "Callsign never to attempt (repeatable; bare base matches every SSID)")

	// Storage flags
	cmd.Flags().String("map", config.DefaultMapFile, "Map document path")
	cmd.Flags().String("db-dir", "", "Session history database directory (default: XDG data dir)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .packetmap in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write run summary to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Structured logging with the node password scrubbed out of any
	// echoed telnet traffic.
	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, cfg.Verbose, log.WithSecret(cfg.TelnetPassword))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown. A
	// first Ctrl-C finishes the node in progress, saves, and reports.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing current node...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildCrawlConfig layers defaults, the .packetmap file and CLI flags
// into a Config. Flags win, but only when actually set, so a config
// file value survives an untouched flag with a default.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = explicitPath

	configPath := config.FindConfigFile(explicitPath)
	if configPath != "" {
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := f.ApplyTo(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	} else if explicitPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	if err := applyCrawlFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyCrawlFlags overlays explicitly set flags onto the config.
func applyCrawlFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	stringFlags := map[string]*string{
		"call":     &cfg.StationCall,
		"node":     &cfg.LocalNode,
		"telnet":   &cfg.TelnetAddress,
		"user":     &cfg.TelnetUser,
		"password": &cfg.TelnetPassword,
		"socks":    &cfg.SocksProxy,
		"map":      &cfg.MapFile,
		"db-dir":   &cfg.DBDir,
		"output":   &cfg.ReportFile,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Changed("mode") {
		v, err := flags.GetString("mode")
		if err != nil {
			return err
		}
		cfg.Mode = model.CrawlMode(v)
	}
	if flags.Changed("max-hops") {
		v, err := flags.GetInt("max-hops")
		if err != nil {
			return err
		}
		cfg.MaxHops = v
	}
	if flags.Changed("max-paths") {
		v, err := flags.GetInt("max-paths")
		if err != nil {
			return err
		}
		cfg.MaxPaths = v
	}
	if flags.Changed("stale-after") {
		v, err := flags.GetDuration("stale-after")
		if err != nil {
			return err
		}
		cfg.StaleAfter = v
	}
	if flags.Changed("lowest-ssid") {
		v, err := flags.GetBool("lowest-ssid")
		if err != nil {
			return err
		}
		cfg.LowestSSIDTieBreak = v
	}
	if flags.Changed("exclude") {
		v, err := flags.GetStringSlice("exclude")
		if err != nil {
			return err
		}
		cfg.Exclusions = append(cfg.Exclusions, v...)
	}

	var err error
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	return nil
}

// telnetConnector dials the node's telnet port and wraps the conn in a
// fresh session for each path attempt.
type telnetConnector struct {
	transport *session.TelnetTransport
	logger    *slog.Logger
}

// Connect establishes a logged-in session at the local node prompt.
func (t *telnetConnector) Connect(ctx context.Context) (crawler.NodeSession, error) {
	conn, err := t.transport.Dial(ctx)
	if err != nil {
		return nil, err
	}
	return session.New(conn, session.WithLogger(t.logger)), nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	localNode, err := model.NewCallsign(cfg.LocalNode)
	if err != nil {
		return fmt.Errorf("local node: %w", err)
	}

	doc, err := netmap.LoadOrEmpty(cfg.MapFile)
	if err != nil {
		return fmt.Errorf("failed to load map document: %w", err)
	}
	if doc.Generator == "" {
		doc.Generator = cfg.StationCall
	}
	if doc.Generator == "" {
		doc.Generator = localNode.String()
	}

	logger.Info("starting crawl",
		"node", cfg.LocalNode,
		"mode", cfg.Mode,
		"map", cfg.MapFile,
		"knownNodes", len(doc.Nodes),
	)

	var heardLog *database.HeardLog
	if cfg.DBDir != "" {
		heardLog, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer heardLog.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	resolverOpts := []identity.Option{identity.WithForced(cfg.Overrides)}
	if cfg.LowestSSIDTieBreak {
		resolverOpts = append(resolverOpts, identity.WithTieBreak(identity.TieBreakLowestSSID))
	}
	resolver := identity.New(resolverOpts...)

	connector := &telnetConnector{
		transport: &session.TelnetTransport{
			Address:    cfg.TelnetAddress,
			User:       cfg.TelnetUser,
			Password:   cfg.TelnetPassword,
			SocksProxy: cfg.SocksProxy,
		},
		logger: logger,
	}

	opts := []crawler.Option{
		crawler.WithLogger(logger),
		crawler.WithMode(cfg.Mode),
		crawler.WithMaxHops(cfg.MaxHops),
		crawler.WithMaxPaths(cfg.MaxPaths),
		crawler.WithStaleAfter(cfg.StaleAfter),
		crawler.WithExclusions(cfg.Exclusions),
		crawler.WithMapPath(cfg.MapFile),
	}
	if heardLog != nil {
		opts = append(opts, crawler.WithHeardLog(heardLog))
	}

	summary, err := crawler.New(doc, resolver, connector, localNode, opts...).Run(ctx)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	// The crawler saves after every target; one final save catches a
	// run that attempted nothing (metadata and totals still refresh).
	if err := doc.Save(cfg.MapFile); err != nil {
		return fmt.Errorf("failed to save map document: %w", err)
	}

	return writeSummary(cfg, summary, stdout)
}

// writeSummary renders the run summary in the configured format to
// stdout and, when requested, to a file.
func writeSummary(cfg *config.Config, summary *model.RunSummary, stdout io.Writer) error {
	outputs := []io.Writer{stdout}

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.Create(cfg.ReportFile) //nolint:gosec // User-provided report path is intentional
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		outputs = append(outputs, f)
	}

	writers := make([]report.Writer, 0, len(outputs))
	for _, out := range outputs {
		switch {
		case cfg.JSONReport:
			writers = append(writers, report.NewJSONWriter(out, report.WithPrettyPrint()))
		case cfg.MarkdownReport:
			writers = append(writers, report.NewMarkdownWriter(out))
		default:
			writers = append(writers, report.NewTextWriter(out, report.WithVerbose(cfg.Verbose)))
		}
	}

	if _, err := report.NewMultiWriter(writers...).Write(summary); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}
