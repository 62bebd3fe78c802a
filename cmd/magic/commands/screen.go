package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/magicformula/internal/screening"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Rank a sector by the Magic Formula",
	Long: `Fetch a sector's fundamentals, rank them by earnings yield and
return on capital, and optionally size positions against a budget.

Example:
  go run ./cmd/magic screen --sector Technology
  go run ./cmd/magic screen --sector "All Sectors" --limit 5 --amount 10000`,
	RunE: runScreen,
}

var (
	screenSector             string
	screenLimit              int
	screenAmount             float64
	screenConcentrationLimit float64
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenSector, "sector", "Technology", "sector to screen")
	screenCmd.Flags().IntVar(&screenLimit, "limit", 0, "stocks to show (0 = configured default)")
	screenCmd.Flags().Float64Var(&screenAmount, "amount", 0, "investment amount in USD (0 = no allocation)")
	screenCmd.Flags().Float64Var(&screenConcentrationLimit, "concentration", 0, "max fraction per stock (0 = configured default)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	req := screening.ScreenRequest{
		Sector:           screenSector,
		Limit:            screenLimit,
		InvestmentAmount: screenAmount,
	}
	if cmd.Flags().Changed("concentration") {
		req.ConcentrationLimit = &screenConcentrationLimit
	}

	result, err := a.screening.Screen(cmd.Context(), req, printProgress)
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}

	fmt.Println()
	fmt.Print(renderScreen(result))
	return nil
}

// printProgress prints one fetch step with its counter
// Example: [Screen] Fetched AAPL [1/3]
func printProgress(p screening.Progress) {
	if p.Status == screening.StatusFailed {
		fmt.Println(warningStyle.Render(fmt.Sprintf("[Screen] Failed %s: %s [%d/%d]", p.Symbol, p.Error, p.Index, p.Total)))
		return
	}
	fmt.Printf("[Screen] Fetched %s [%d/%d]\n", p.Symbol, p.Index, p.Total)
}
