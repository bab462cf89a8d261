// Notely Daemon - notes API, AI assist and reminder delivery
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/notely/notely/internal/api"
	"github.com/notely/notely/internal/app"
	"github.com/notely/notely/internal/auth"
	"github.com/notely/notely/internal/config"
	"github.com/notely/notely/internal/logging"
	"github.com/notely/notely/internal/reminders"
	"github.com/notely/notely/internal/storage"
	"github.com/notely/notely/internal/templates"
)

var (
	configPath string
	dataDir    string
	port       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "notely",
		Short: "Notely Daemon - notes with AI assist and translation",
		RunE:  runDaemon,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default: <data-dir>/config.json)")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory (default: ~/.notely)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default: 8080)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" && dataDir != "" {
		path = filepath.Join(dataDir, "config.json")
	}
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	return cfg, path, nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logging.Configure(os.Stderr, logging.ParseLevel(cfg.LogLevel), logging.FormatAuto)
	logging.Info("starting Notely daemon (data dir %s)", cfg.DataDir)

	db, err := app.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	router := app.NewRouter(cfg)
	if selected := router.Select(); selected != nil {
		logging.Info("AI provider: %s", selected.Name())
	} else {
		logging.Warn("no AI provider configured - assist will use the offline fallback")
	}

	translator := app.NewTranslator(cfg)
	logging.Info("translation providers: %v", translator.Providers())

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	if verifier.SingleUser() {
		logging.Warn("no auth secret configured - running in single-user mode")
	}

	server := api.New(api.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DB:             db,
		Gateway:        app.NewGateway(router),
		Translator:     translator,
		AI:             router,
		Market:         app.NewMarket(cfg),
		Templates:      templates.Builtin(),
		Verifier:       verifier,
	})

	var sweeper *reminders.Sweeper
	if cfg.Reminders.Enabled {
		sweeper, err = reminders.NewSweeper(storage.NewNoteStore(db), server.Hub(), reminders.Config{
			Schedule: cfg.Reminders.Schedule,
		})
		if err != nil {
			return err
		}
	}

	// Log level follows the config file
	if err := config.Watch(path, func(fresh *config.Config) {
		logging.SetLevel(logging.ParseLevel(fresh.LogLevel))
		logging.Info("config reloaded, log level %s", fresh.LogLevel)
	}); err != nil {
		logging.Debug("config file not watched: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if sweeper != nil {
		if err := sweeper.Start(); err != nil {
			return err
		}
	}

	g.Go(func() error {
		<-ctx.Done()
		logging.Info("shutting down...")

		if sweeper != nil {
			sweeper.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	return g.Wait()
}
