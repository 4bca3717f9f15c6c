package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/contribmix/internal/aggregator"
	"github.com/gauthierbraillon/contribmix/internal/config"
	"github.com/gauthierbraillon/contribmix/internal/logger"
	"github.com/gauthierbraillon/contribmix/internal/mailer"
	"github.com/gauthierbraillon/contribmix/internal/server"
	"github.com/gauthierbraillon/contribmix/pkg/browser"
)

// newServeCmd creates the serve subcommand.
func newServeCmd(load configLoader) *cobra.Command {
	var port int
	var open bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve the contribution proxy, the DSA aggregate and the contact relay over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Port = strconv.Itoa(port)
			}

			log := logger.Init(cfg.LogLevel, cfg.LogFormat)
			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := server.New(buildDeps(cfg, log), server.Options{
				AllowedOrigins:   cfg.AllowedOrigins,
				StaticDir:        cfg.StaticDir,
				AdapterTimeout:   cfg.AdapterTimeout,
				ContactPerMinute: cfg.ContactRatePerMinute,
				ContactBurst:     cfg.ContactBurst,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if open {
				if u, err := browser.LocalURL(cfg.Addr()); err == nil {
					if err := browser.Open(u); err != nil {
						log.Warn("browser_open_failed", slog.String("url", u), slog.String("error", err.Error()))
					}
				}
			}

			return srv.Run(ctx, cfg.Addr())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides PORT)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the served portfolio in the default browser")

	return cmd
}

func buildDeps(cfg *config.Config, log *slog.Logger) server.Deps {
	if cfg.GitHubTokenSource == config.TokenMissing {
		log.Warn("github_token_missing", slog.String("hint", "set GITHUB_TOKEN or run 'contribmix auth github'"))
	}
	if !cfg.MailConfigured() {
		log.Warn("contact_relay_disabled", slog.String("hint", "set EMAIL_USER and EMAIL_PASS"))
	}
	log.Info("config_loaded",
		slog.String("addr", cfg.Addr()),
		slog.String("github_token_source", cfg.GitHubTokenSource),
		slog.Duration("adapter_timeout", cfg.AdapterTimeout),
		slog.Any("allowed_origins", cfg.AllowedOrigins),
	)

	return server.Deps{
		GitHub:   newGitHubClient(cfg),
		LeetCode: newLeetCodeClient(cfg),
		Aggregator: aggregator.New(
			aggregator.WithTimeout(cfg.AdapterTimeout),
			aggregator.WithLogger(log),
		),
		Mailer: mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			To:       cfg.ContactTo,
		}),
		Logger: log,
	}
}
