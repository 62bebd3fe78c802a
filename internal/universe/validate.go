package universe

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError reports the first invalid field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// Validate checks names, tickers and duplicates
func Validate(file *File) error {
	if file.Meta.Name == "" {
		return ValidationError{"meta.name", "required"}
	}
	if len(file.Sectors) == 0 {
		return ValidationError{"sectors", "at least one sector is required"}
	}

	names := make(map[string]bool, len(file.Sectors))
	for i, sector := range file.Sectors {
		field := fmt.Sprintf("sectors[%d]", i)

		if strings.TrimSpace(sector.Name) == "" {
			return ValidationError{field + ".name", "required"}
		}
		if strings.EqualFold(sector.Name, AllSectors) {
			return ValidationError{field + ".name", fmt.Sprintf("%q is reserved", AllSectors)}
		}
		key := strings.ToLower(sector.Name)
		if names[key] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate sector %q", sector.Name)}
		}
		names[key] = true

		if len(sector.Symbols) == 0 {
			return ValidationError{field + ".symbols", "at least one symbol is required"}
		}

		seen := make(map[string]bool, len(sector.Symbols))
		for j, symbol := range sector.Symbols {
			if !tickerPattern.MatchString(symbol) {
				return ValidationError{fmt.Sprintf("%s.symbols[%d]", field, j), fmt.Sprintf("invalid ticker %q", symbol)}
			}
			if seen[symbol] {
				return ValidationError{fmt.Sprintf("%s.symbols[%d]", field, j), fmt.Sprintf("duplicate ticker %q", symbol)}
			}
			seen[symbol] = true
		}
	}

	return nil
}
