package cli

import (
	"fmt"

	"resumalyzer/internal/ai"
	"resumalyzer/internal/config"
	"resumalyzer/internal/extract"
	"resumalyzer/internal/server"
	"resumalyzer/internal/store"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server that exposes every analysis task as a REST endpoint.

Available endpoints:
- POST /api/resume/upload: Upload a resume file and critique it
- POST /api/resume/analyze, jd-match, rewrite, cover-letter, enhance, roast,
  learning-path, interview-questions, graph: JSON task endpoints
- POST /api/resume/compare: Compare two resumes
- POST /api/chat: Career assistant chat
- GET /api/resume/history, /api/resume/analysis/{id}: Saved analyses
- GET /health, /stats, /metrics: Health, statistics and Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveFlags struct {
	host string
	port string
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}
	cfg, logger := app.Config, app.Logger

	// Flags override the loaded config
	if serveFlags.port != "" {
		cfg.Server.Port = serveFlags.port
	}
	if serveFlags.host != "" {
		cfg.Server.Host = serveFlags.host
	}

	provider, err := ai.NewProvider(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer func() {
		if err := provider.Close(); err != nil {
			logger.LogError(err, "Failed to close AI provider")
		}
	}()

	analyzer, err := newAnalyzer(app, provider)
	if err != nil {
		return err
	}

	if cfg.Prompts.Watch {
		watcher, err := config.NewPromptWatcher(cfg, analyzer.Prompts(), logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start prompt watcher: %w", err)
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				logger.LogError(err, "Failed to stop prompt watcher")
			}
		}()
	}

	deps := server.Deps{
		Analyzer:      analyzer,
		Provider:      provider,
		Extractor:     extract.NewExtractor(cfg.App.MaxResumeChars, cfg.Server.MaxUploadSize, logger),
		Observability: app.Observability,
		KeyRefresh:    cfg.Server.KeyRefresh,
	}

	if cfg.App.StoreEnabled {
		st, err := store.OpenSQLite(cfg.App.StorePath, logger)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		deps.Store = st
	}

	if cfg.Vault.Enabled && cfg.Vault.Secrets.APIKeys != "" && cfg.Server.KeyRefresh.Enabled {
		client, err := config.NewVaultClient(cfg.Vault, logger)
		if err != nil {
			return err
		}
		deps.KeySource = client
	}

	srv := server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), deps, logger)
	return srv.Start(cmd.Context())
}
