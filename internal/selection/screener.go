package selection

import (
	"github.com/wonny/magicformula/internal/contracts"
)

// Filter splits securities into the rankable subset and the exclusions.
// Order is preserved on both sides; exclusion is never an error.
func Filter(securities []contracts.Security) ([]contracts.Security, []contracts.Exclusion) {
	eligible := make([]contracts.Security, 0, len(securities))
	exclusions := make([]contracts.Exclusion, 0)

	for _, sec := range securities {
		if reason := sec.Eligibility(); reason != "" {
			exclusions = append(exclusions, contracts.Exclusion{
				Symbol: sec.Symbol,
				Reason: reason,
			})
			continue
		}
		eligible = append(eligible, sec)
	}

	return eligible, exclusions
}

// CountByReason tallies exclusions per reason for logging
func CountByReason(exclusions []contracts.Exclusion) map[string]int {
	filtered := make(map[string]int)
	for _, ex := range exclusions {
		filtered[string(ex.Reason)]++
	}
	return filtered
}
