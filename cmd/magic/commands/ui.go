package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wonny/magicformula/internal/recommend"
	"github.com/wonny/magicformula/internal/scheduler"
	"github.com/wonny/magicformula/internal/screening"
	"github.com/wonny/magicformula/pkg/format"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// renderScreen renders a screen result as ranking and allocation tables
func renderScreen(result *screening.ScreenResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Magic Formula · %s", result.Sector)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("analyzed %d · excluded %d · universe %s",
		result.TotalAnalyzed, result.ExcludedCount, result.UniverseVersion)))
	b.WriteString("\n")

	if result.Fallback {
		b.WriteString(warningStyle.Render("⚠️  Showing sample data: " + result.Error))
		b.WriteString("\n")
	}

	ranking := newTable("#", "Symbol", "Name", "Price", "Market Cap", "Earnings Yield", "ROC", "Combined")
	for _, s := range result.Stocks {
		ranking.Row(
			strconv.Itoa(s.OverallRank),
			s.Symbol,
			s.Name,
			format.Currency(s.Price),
			format.MarketCap(s.MarketCapitalization),
			format.Percent(s.EarningsYield),
			format.Percent(s.ReturnOnCapital),
			strconv.Itoa(s.CombinedRank),
		)
	}
	b.WriteString(ranking.String())
	b.WriteString("\n")

	for _, ex := range result.Exclusions {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("excluded %s (%s)", ex.Symbol, ex.Reason)))
		b.WriteString("\n")
	}

	if alloc := result.Allocation; alloc != nil {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Allocation · budget %s · max %s per stock",
			format.Currency(alloc.Budget), format.Currency(alloc.MaxPerSecurity))))
		b.WriteString("\n")

		plans := newTable("Symbol", "Shares", "Amount", "Weight")
		for _, p := range alloc.General {
			plans.Row(p.Symbol, strconv.FormatInt(p.SharesToBuy, 10), format.Currency(p.AllocationAmount), format.Percent(p.PortfolioWeight))
		}
		b.WriteString(plans.String())
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Allocated %s · cash remaining %s\n",
			format.Currency(alloc.TotalAllocated), format.Currency(alloc.CashRemaining)))
	}

	return b.String()
}

// renderRecommendations renders recommendations with their narrative
func renderRecommendations(result *recommend.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Recommendations · %s · %s",
		result.Sector, format.Currency(result.InvestmentAmount))))
	b.WriteString("\n")

	if result.Fallback {
		b.WriteString(warningStyle.Render("⚠️  Based on sample data: " + result.Error))
		b.WriteString("\n")
	}
	if result.NarrativeFallback {
		b.WriteString(mutedStyle.Render("Narrative generated from templates"))
		b.WriteString("\n")
	}

	picks := newTable("#", "Symbol", "Price", "Shares", "Amount", "Weight", "Confidence")
	for _, r := range result.AIRecommendations {
		picks.Row(
			strconv.Itoa(r.OverallRank),
			r.Symbol,
			format.Currency(r.Price),
			strconv.FormatInt(r.RecommendedShares, 10),
			format.Currency(r.AllocationAmount),
			format.Percent(r.PortfolioWeight),
			fmt.Sprintf("%d%%", r.Confidence),
		)
	}
	b.WriteString(picks.String())
	b.WriteString("\n")

	for _, r := range result.AIRecommendations {
		b.WriteString(successStyle.Render(r.Symbol))
		b.WriteString(" ")
		b.WriteString(r.Reasoning)
		b.WriteString("\n")
		if r.MarketTrends != "" {
			b.WriteString(mutedStyle.Render("  " + r.MarketTrends))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(result.MarketSummary)
	b.WriteString("\n")

	return b.String()
}

// renderJobStats renders scheduler statistics sorted by job name
func renderJobStats(stats map[string]scheduler.JobStats) string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable("Job", "Schedule", "Runs", "Success", "Next Run")
	for _, name := range names {
		stat := stats[name]
		next := "-"
		if stat.NextRun != nil {
			next = stat.NextRun.Format("2006-01-02 15:04:05")
		}
		t.Row(name, stat.Schedule, strconv.Itoa(stat.TotalRuns), format.Percent(stat.SuccessRate), next)
	}
	return t.String()
}
