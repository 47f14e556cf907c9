package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/information-sharing-networks/talimbot/internal/client"
	"github.com/information-sharing-networks/talimbot/internal/config"
	"github.com/information-sharing-networks/talimbot/internal/logger"
	"github.com/information-sharing-networks/talimbot/internal/version"
	"github.com/spf13/cobra"

	// TLS roots for minimal container images without a system certificate store
	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds what the subcommands share. It is populated before any subcommand runs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client *client.Client

	apiURL   string
	logLevel string
	language string
	password string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "talimbot",
		Short: "Student grouping service client",
		Long: `Command line client for the student grouping service.

Configuration is read from the environment (API_BASE_URL, APP_HOST, APP_ORIGIN,
LOG_LEVEL, LANGUAGE, HTTP_TIMEOUT, TALIMBOT_PASSWORD); flags take precedence.`,
		Version:      version.Get().String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "backend base url, e.g. http://localhost:8000/api")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&a.language, "lang", "", "language of user facing messages (fa, en)")

	cmd.AddCommand(
		newStudentsCmd(a),
		newStudentCmd(a),
		newGroupingCmd(a),
		newDataCmd(a),
		newAuthCmd(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	if a.apiURL != "" {
		u, err := url.Parse(a.apiURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("--api-url must be an absolute url, got '%s'", a.apiURL)
		}
		cfg.APIBaseURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.language != "" {
		cfg.Language = a.language
	}
	if a.password == "" {
		a.password = cfg.Password
	}

	a.cfg = cfg
	a.logger = logger.NewLogger(cmd.ErrOrStderr(), logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	a.client = client.NewClient(cfg.APIBaseURL,
		client.WithLogger(a.logger),
		client.WithLanguage(cfg.Language),
		client.WithHTTPClient(&http.Client{
			Timeout:   cfg.HTTPTimeout,
			Transport: logger.NewTransport(nil, a.logger),
		}),
	)

	a.logger.Debug("talimbot starting",
		slog.String("version", version.Get().Version),
		slog.String("api_base_url", a.client.BaseURL()),
	)
	return nil
}
