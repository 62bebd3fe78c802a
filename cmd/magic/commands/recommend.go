package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/internal/recommend"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Sized picks with a written rationale",
	Long: `Screen a sector, size the top picks against the amount and
explain each pick using recent market headlines.

Example:
  go run ./cmd/magic recommend --amount 10000
  go run ./cmd/magic recommend --sector Healthcare --amount 25000 --risk conservative --horizon long`,
	RunE: runRecommend,
}

var (
	recommendSector  string
	recommendAmount  float64
	recommendRisk    string
	recommendHorizon string
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVar(&recommendSector, "sector", "Technology", "sector to screen")
	recommendCmd.Flags().Float64Var(&recommendAmount, "amount", 10000, "investment amount in USD")
	recommendCmd.Flags().StringVar(&recommendRisk, "risk", string(contracts.RiskModerate), "risk tolerance (conservative|moderate|aggressive)")
	recommendCmd.Flags().StringVar(&recommendHorizon, "horizon", string(contracts.HorizonMedium), "time horizon (short|medium|long)")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.recommend.Recommend(cmd.Context(), recommend.Request{
		InvestmentAmount: recommendAmount,
		Sector:           recommendSector,
		RiskTolerance:    contracts.RiskTolerance(recommendRisk),
		TimeHorizon:      contracts.TimeHorizon(recommendHorizon),
	})
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	fmt.Print(renderRecommendations(result))
	return nil
}
