package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/minigames/internal/config"
	"github.com/vovakirdan/minigames/internal/leaderboard"
	"github.com/vovakirdan/minigames/internal/server"
	"github.com/vovakirdan/minigames/internal/storage"
)

var (
	flagAPIConfig string
	flagAPIEnv    string
	flagAPIStore  string
	flagAPIListen string
	flagAPIDebug  bool
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP leaderboard API",
	Long: `Start the HTTP leaderboard API used by the browser games.

Routes:
  GET  /api/<game>/leaderboard  - Top entries
  POST /api/<game>/session      - Register a game session
  POST /api/<game>/score        - Submit a score

Settings come from server.yaml (same search order as the game configs),
then from the environment and a .env file: LISTEN_ADDR, ALLOWED_ORIGINS,
TRUSTED_PROXIES, STORE, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, DB_PATH.

Examples:
  arcade api
  arcade api --store sqlite --db ./scores.db
  arcade api --listen :9090 --debug`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagAPIConfig, "config", "", "Path to server config YAML")
	apiCmd.Flags().StringVar(&flagAPIEnv, "env", ".env", "Path to .env file")
	apiCmd.Flags().StringVar(&flagAPIStore, "store", "", "Leaderboard backend: redis or sqlite")
	apiCmd.Flags().StringVar(&flagAPIListen, "listen", "", "HTTP listen address")
	apiCmd.Flags().BoolVar(&flagAPIDebug, "debug", false, "Log rejected requests and gin internals")
}

func runAPI(cmd *cobra.Command, _ []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "arcade-api",
	})
	if flagAPIDebug {
		logger.SetLevel(log.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = io.Discard
	}

	if err := config.LoadEnv(flagAPIEnv); err != nil {
		return err
	}
	cfg, err := config.LoadServer(flagAPIConfig)
	if err != nil {
		return err
	}
	if flagAPIStore != "" {
		cfg.Store.Driver = flagAPIStore
	}
	if flagAPIListen != "" {
		cfg.Listen = flagAPIListen
	}
	if cmd.Flags().Changed("db") {
		cfg.Store.SQLitePath = flagDBPath
	}

	tm, err := config.LoadTileMatch("")
	if err != nil {
		return err
	}
	dc, err := config.LoadDodge("")
	if err != nil {
		return err
	}

	store, closeStore, purger, err := openLeaderboardStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("leaderboard store ready", "driver", cfg.Store.Driver)

	gate := leaderboard.NewGate(store, cfg.Leaderboard.TopN, leaderboard.DefaultRules(cfg.Leaderboard, tm, dc)...)
	srv, err := server.New(cfg, gate, logger)
	if err != nil {
		return err
	}

	if purger != nil {
		if err := srv.StartMaintenance(purger, cfg.PurgeInterval); err != nil {
			return err
		}
	}

	return srv.ListenAndServe()
}

// openLeaderboardStore opens the configured backend. The purger is nil for
// backends that expire data on their own.
func openLeaderboardStore(cfg config.StoreConfig) (leaderboard.Store, func(), server.Purger, error) {
	switch cfg.Driver {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rs, err := storage.OpenRedis(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		//nolint:errcheck // Best-effort close on shutdown
		return rs, func() { rs.Close() }, nil, nil

	case "sqlite":
		st, err := storage.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		//nolint:errcheck // Best-effort close on shutdown
		return st, func() { st.Close() }, st, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store driver %q (want redis or sqlite)", cfg.Driver)
}
