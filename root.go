package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/runway28r/ms-graph-go/internal/config"
	"github.com/runway28r/ms-graph-go/internal/graph"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath   string
	flagClientID     string
	flagTenantID     string
	flagClientSecret string
	flagJSON         bool
	flagVerbose      bool
	flagQuiet        bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
// It is available to all subcommands after the root pre-run phase completes.
var resolvedCfg *config.Config

// httpClientTimeout applies when network.timeout is unset.
const httpClientTimeout = 60 * time.Second

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ms-graph",
		Short: "Microsoft Graph app-only CLI",
		Long: `Search directory users, send mail and manage SharePoint document libraries
through Microsoft Graph, authenticating as an application with the OAuth2
client credentials grant.`,
		Version: version,
		// Errors are printed by exitOnError.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagClientID, "client-id", "", "application (client) ID")
	cmd.PersistentFlags().StringVar(&flagTenantID, "tenant-id", "", "directory (tenant) ID")
	cmd.PersistentFlags().StringVar(&flagClientSecret, "client-secret", "",
		"client secret (prefer "+config.EnvClientSecret+")")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newMailCmd())
	cmd.AddCommand(newSiteCmd())
	cmd.AddCommand(newLibrariesCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// and stores the result in resolvedCfg for use by subcommands.
func loadConfig() error {
	cli := config.CLIOverrides{
		ConfigPath:   flagConfigPath,
		ClientID:     flagClientID,
		TenantID:     flagTenantID,
		ClientSecret: flagClientSecret,
	}

	cfg, err := config.Resolve(config.ReadEnvOverrides(), cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = cfg

	return nil
}

// buildLogger creates an slog.Logger on stderr configured by the resolved
// config and CLI flags.
func buildLogger() *slog.Logger {
	fd := os.Stderr.Fd()

	return newLogger(os.Stderr, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// newLogger builds the logger for w. Config-file log level provides the
// baseline; --verbose and --quiet override it. log_format "auto" picks text
// on a terminal and JSON otherwise.
func newLogger(w io.Writer, terminal bool) *slog.Logger {
	level := slog.LevelInfo
	format := "auto"

	if resolvedCfg != nil {
		switch resolvedCfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		if resolvedCfg.Logging.LogFormat != "" {
			format = resolvedCfg.Logging.LogFormat
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if format == "json" || (format == "auto" && !terminal) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// defaultHTTPClient returns an HTTP client bounded by network.timeout.
func defaultHTTPClient() *http.Client {
	timeout := httpClientTimeout

	if resolvedCfg != nil && resolvedCfg.Network.Timeout != "" {
		if d, err := time.ParseDuration(resolvedCfg.Network.Timeout); err == nil {
			timeout = d
		}
	}

	return &http.Client{Timeout: timeout}
}

// authenticate mints an app-only token from the resolved credentials. The
// session is returned even on failure so callers can report its state.
func authenticate(ctx context.Context, hc *http.Client, logger *slog.Logger) (*graph.Session, error) {
	if err := config.RequireCredentials(resolvedCfg); err != nil {
		return nil, err
	}

	creds := graph.Credentials{
		ClientID:     resolvedCfg.Auth.ClientID,
		ClientSecret: resolvedCfg.Auth.ClientSecret,
		TenantID:     resolvedCfg.Auth.TenantID,
	}

	return graph.Authenticate(ctx, creds, graph.AuthOptions{
		AuthorityHost: resolvedCfg.Auth.AuthorityHost,
		HTTPClient:    hc,
		Logger:        logger,
	})
}

// newSessionClient authenticates and returns a Graph client bound to the
// new session. Commands cannot proceed without a token, so a failed
// authentication is returned as an error.
func newSessionClient(ctx context.Context) (*graph.Client, *slog.Logger, error) {
	logger := buildLogger()
	hc := defaultHTTPClient()

	sess, err := authenticate(ctx, hc, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot proceed without a valid access token: %w", err)
	}

	client := graph.NewClient(resolvedCfg.Graph.BaseURL, hc, sess, logger).
		WithUserAgent(resolvedCfg.Network.UserAgent)

	return client, logger, nil
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
