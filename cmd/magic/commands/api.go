package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/magicformula/internal/api"
	"github.com/wonny/magicformula/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST + WebSocket API server.

Endpoints:
  GET    /health
  GET    /api/sectors
  POST   /api/magic-formula-screener
  POST   /api/ai-stock-recommendations
  POST   /api/allocate
  GET    /api/stocks/search?q=
  GET    /api/portfolio
  POST   /api/portfolio/holdings
  DELETE /api/portfolio/holdings/{symbol}
  GET    /ws/screener?sector=&limit=&investmentAmount=

Example:
  go run ./cmd/magic api
  go run ./cmd/magic api --port 9090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// Handlers
	router := api.NewRouter(api.Handlers{
		Screener:  handlers.NewScreenerHandler(a.screening, a.recommend, a.allocator, log),
		Portfolio: handlers.NewPortfolioHandler(a.tracker, log),
		Stock:     handlers.NewStockHandler(a.finnhub, log),
	}, a.cfg.CORSOrigin, log)

	server := api.New(a.cfg, log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// cmd.Context() is cancelled on SIGINT/SIGTERM
	return server.Run(cmd.Context())
}
