package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check external dependencies",
	Long: `Report which providers are configured and check the
Redis and PostgreSQL connections with pool statistics.

Example:
  go run ./cmd/magic status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	t := newTable("Component", "Status", "Detail")

	providerOK := false
	if p, ok := a.provider.(interface{ Configured() bool }); ok {
		providerOK = p.Configured()
	}
	t.Row("market data", configured(providerOK), a.provider.Name())
	t.Row("news", configured(a.finnhub.Configured()), "finnhub")
	t.Row("narrator", configured(a.cfg.OpenAI.APIKey != ""), a.cfg.OpenAI.Model)

	switch {
	case !a.redis.Enabled():
		t.Row("redis", "disabled", "no cache, local pacing only")
	case a.redis.Ping(ctx) != nil:
		t.Row("redis", "❌ unreachable", fmt.Sprintf("%s:%s", a.cfg.Redis.Host, a.cfg.Redis.Port))
	default:
		t.Row("redis", "✅ ok", fmt.Sprintf("%s:%s", a.cfg.Redis.Host, a.cfg.Redis.Port))
	}

	if a.db == nil {
		t.Row("postgres", "disabled", "holdings kept in memory")
	} else {
		status, err := a.db.HealthCheck(ctx)
		if err != nil {
			t.Row("postgres", "❌ unhealthy", status.Error)
		} else {
			t.Row("postgres", "✅ ok", fmt.Sprintf("%s · %d/%d conns",
				status.ResponseTime.Round(time.Millisecond), status.Stats.AcquiredConns, status.Stats.MaxConns))
		}
	}

	fmt.Println(titleStyle.Render("Magic Formula · status"))
	fmt.Println(t.String())
	return nil
}

func configured(ok bool) string {
	if ok {
		return "✅ configured"
	}
	return "⚠️  not configured"
}
