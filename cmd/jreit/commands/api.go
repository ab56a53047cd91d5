package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/jreit-finder/internal/api"
	"github.com/wonny/jreit-finder/internal/api/handlers"
	"github.com/wonny/jreit-finder/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API サーバー起動",
	Long: `REST API サーバーを起動します。

Endpoints:
  GET  /health                 - Health check
  GET  /api/reits              - 現在の J-REIT 一覧
  GET  /api/reits/ranking      - 加重スコアによる選定 (top_n, 各重み)
  GET  /api/weights/default    - 既定の重み
  POST /api/reits/refresh      - キャッシュを破棄して再取得
  GET  /ws/ranking             - WebSocket で重みを調整しながら再選定

Example:
  go run ./cmd/jreit api
  go run ./cmd/jreit api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== J-REIT Finder API Server ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, log := a.cfg, a.log
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port":      cfg.Port,
		"env":       cfg.Env,
		"snapshots": a.snapshots != nil,
		"cache":     a.redis.Enabled(),
	}).Info("Initializing API server")

	var db handlers.SnapshotDB
	if a.db != nil {
		db = a.db
	}

	reitHandler := handlers.NewReitHandler(a.provider, cfg.DefaultTopN, log).
		WithRefreshLimiter(redis.NewRateLimiter(a.redis, "jreit"))
	liveHandler := handlers.NewLiveHandler(reitHandler, log)
	healthHandler := handlers.NewHealthHandler(db, a.redis, log)
	router := api.NewRouter(reitHandler, liveHandler, healthHandler, log)
	server := api.New(cfg, log, router)

	fmt.Printf("\n✅ Server running on http://localhost%s\n", server.Addr())
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/reits")
	fmt.Println("  GET  /api/reits/ranking")
	fmt.Println("  GET  /api/weights/default")
	fmt.Println("  POST /api/reits/refresh")
	fmt.Println("  GET  /ws/ranking")
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
