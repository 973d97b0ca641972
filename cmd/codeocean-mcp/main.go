package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xiy/codeocean-mcp/internal/admin"
	"github.com/xiy/codeocean-mcp/internal/bootstrap"
	"github.com/xiy/codeocean-mcp/internal/codeocean"
	"github.com/xiy/codeocean-mcp/internal/compact"
	"github.com/xiy/codeocean-mcp/internal/config"
	"github.com/xiy/codeocean-mcp/internal/mcp"
	"github.com/xiy/codeocean-mcp/internal/models"
	"github.com/xiy/codeocean-mcp/internal/retention"
	"github.com/xiy/codeocean-mcp/internal/store"
	"github.com/xiy/codeocean-mcp/internal/tokens"
)

const (
	version           = "0.1.0"
	defaultConfigPath = "config/codeocean-mcp.yaml"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch sub := os.Args[1]; sub {
	case "serve":
		err = runServe(os.Args[2:])
	case "bootstrap-clis":
		err = runBootstrap(os.Args[2:])
	case "admin":
		err = runAdmin(os.Args[2:])
	case "schemas":
		err = runSchemas(os.Args[2:], os.Stdout)
	case "history":
		err = runHistory(os.Args[2:], os.Stdout)
	case "version", "--version", "-v":
		fmt.Println("codeocean-mcp v" + version)
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportCaller: false, Prefix: cfg.ServerName})
	setLogLevel(logger, cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := codeocean.New(codeocean.Options{
		Domain:       cfg.Domain,
		Token:        cfg.Token,
		Timeout:      cfg.RequestTimeout(),
		MaxFileChars: cfg.MaxFileContentChars,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	st, err := store.OpenSQLite(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	set, err := models.Build()
	if err != nil {
		return err
	}

	go retention.Start(ctx, logger, cfg.RetentionCheckInterval(), cfg.RetentionMaxAge(), st)

	server := mcp.NewServer(client, set, logger, st, mcp.Options{
		Name:                   cfg.ServerName,
		Version:                version,
		CompactSearchResults:   cfg.CompactSearchResults,
		Compactor:              compact.New(cfg.MaxDescriptionLength, cfg.MaxTagsCount),
		DefaultPollingInterval: time.Duration(cfg.DefaultPollingIntervalSeconds) * time.Second,
		Tokens:                 tokens.New(cfg.TokenEncoding, logger),
		Searches:               st,
	})
	logger.Info("starting MCP stdio server", "api", client.BaseURL(), "db", cfg.DBPath, "tools", len(server.Tools()), "compact", cfg.CompactSearchResults)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runBootstrap(args []string) error {
	fs := flag.NewFlagSet("bootstrap-clis", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	scope := fs.String("scope", "user", "Config scope: user or project")
	serverName := fs.String("server-name", "codeocean", "MCP server registration name")
	serveCmd := fs.String("serve-command", "codeocean-mcp serve", "Command used by MCP clients to launch the stdio server")
	forwardEnv := fs.Bool("forward-env", true, "Pass "+config.EnvDomain+" and "+config.EnvToken+" from this shell to the registered server")
	all := fs.Bool("all", false, "Configure all available CLIs")
	codex := fs.Bool("codex", false, "Configure Codex CLI")
	claude := fs.Bool("claude", false, "Configure Claude CLI")
	gemini := fs.Bool("gemini", false, "Configure Gemini CLI")
	dryRun := fs.Bool("dry-run", false, "Print intended commands without executing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var env map[string]string
	if *forwardEnv {
		env = map[string]string{
			config.EnvDomain: os.Getenv(config.EnvDomain),
			config.EnvToken:  os.Getenv(config.EnvToken),
		}
	}

	logger := log.New(os.Stderr)
	return bootstrap.Bootstrap(logger, bootstrap.Options{
		ConfigPath: *configPath,
		Scope:      *scope,
		ServerName: *serverName,
		ServeCmd:   *serveCmd,
		Env:        env,
		All:        *all,
		Codex:      *codex,
		Claude:     *claude,
		Gemini:     *gemini,
		DryRun:     *dryRun,
	}, nil)
}

func runAdmin(args []string) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(*configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return admin.Run(ctx, st)
}

// runSchemas prints derived JSON schemas: every name when called bare,
// otherwise the named descriptors.
func runSchemas(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("schemas", flag.ContinueOnError)
	list := fs.Bool("list", false, "Only list descriptor names")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list {
		for _, name := range models.Names() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	set, err := models.Build()
	if err != nil {
		return err
	}
	names := fs.Args()
	if len(names) == 0 {
		names = models.Names()
	}
	docs := make(map[string]any, len(names))
	for _, name := range names {
		s, ok := set.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown descriptor %q (try --list)", name)
		}
		docs[s.Name()] = s.JSON()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if len(names) == 1 {
		s, _ := set.Lookup(names[0])
		return enc.Encode(s.JSON())
	}
	return enc.Encode(docs)
}

// runHistory lists recorded searches, newest first, optionally matching
// a query.
func runHistory(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	limit := fs.Int("limit", 20, "Maximum number of searches to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(*configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	events, err := st.FindSearchEvents(ctx, strings.Join(fs.Args(), " "), *limit)
	if err != nil {
		return err
	}
	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	printHistory(out, events, stats)
	return nil
}

func printHistory(out io.Writer, events []store.SearchEvent, stats store.Stats) {
	if len(events) == 0 {
		fmt.Fprintln(out, "no searches recorded")
	}
	for _, ev := range events {
		mode := "full"
		if ev.Compact {
			mode = "compact"
		}
		fmt.Fprintf(out, "%s  %-18s %-10s %-7s rows=%-3d tokens=%d/%d  %s\n",
			ev.CreatedAt.Local().Format(time.DateTime),
			ev.ToolName,
			ev.ResultType,
			mode,
			ev.Rows,
			ev.CompactTokens,
			ev.FullTokens,
			ev.Query,
		)
	}
	fmt.Fprintf(out, "\n%d searches, %d rows, %d tokens saved\n", stats.Searches, stats.CompactedRows, stats.TokensSaved())
}

func openStore(configPath string) (*store.SQLiteStore, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	return store.OpenSQLite(context.Background(), cfg.DBPath, log.New(os.Stderr))
}

func setLogLevel(logger *log.Logger, level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
}

func usage() {
	fmt.Print(`codeocean-mcp

Usage:
  codeocean-mcp serve [--config path]
  codeocean-mcp bootstrap-clis [--config path] [--all|--codex --claude --gemini] [--scope user|project] [--forward-env=false]
  codeocean-mcp admin [--config path]
  codeocean-mcp schemas [--list] [name ...]
  codeocean-mcp history [--config path] [--limit n] [query]
  codeocean-mcp version

Environment:
  CODEOCEAN_DOMAIN   platform host, e.g. acme.codeocean.com
  CODEOCEAN_TOKEN    API access token
`)
}
