package universe

import (
	"fmt"
	"strings"

	"github.com/wonny/magicformula/internal/contracts"
)

// AllSectors samples across every sector
const AllSectors = "All Sectors"

// Universe answers sector and symbol lookups
// ⭐ SSOT: sector → ticker mapping
type Universe struct {
	name    string
	hash    string
	order   []string
	sectors map[string][]string // lower-cased name → symbols
	names   map[string]string   // lower-cased name → display name
}

func newUniverse(file *File, hash string) *Universe {
	u := &Universe{
		name:    file.Meta.Name,
		hash:    hash,
		order:   make([]string, 0, len(file.Sectors)),
		sectors: make(map[string][]string, len(file.Sectors)),
		names:   make(map[string]string, len(file.Sectors)),
	}
	for _, s := range file.Sectors {
		key := strings.ToLower(s.Name)
		u.order = append(u.order, s.Name)
		u.sectors[key] = append([]string(nil), s.Symbols...)
		u.names[key] = s.Name
	}
	return u
}

// Name returns the universe name
func (u *Universe) Name() string {
	return u.name
}

// Version is a short content hash, used to key caches
func (u *Universe) Version() string {
	return u.hash[:12]
}

// Sectors returns "All Sectors" followed by the sectors in file order
func (u *Universe) Sectors() []string {
	return append([]string{AllSectors}, u.order...)
}

// Canonical returns the display name of sector, or ErrUnknownSector
func (u *Universe) Canonical(sector string) (string, error) {
	if strings.EqualFold(sector, AllSectors) {
		return AllSectors, nil
	}
	name, ok := u.names[strings.ToLower(strings.TrimSpace(sector))]
	if !ok {
		return "", fmt.Errorf("%q: %w", sector, contracts.ErrUnknownSector)
	}
	return name, nil
}

// Symbols returns the tickers to screen for sector, at most limit when limit > 0.
// "All Sectors" draws round-robin (first of each sector, then second, …)
// so every sector is represented before any repeats, skipping duplicates.
func (u *Universe) Symbols(sector string, limit int) ([]string, error) {
	name, err := u.Canonical(sector)
	if err != nil {
		return nil, err
	}

	var symbols []string
	if name == AllSectors {
		symbols = u.roundRobin(limit)
	} else {
		symbols = append([]string(nil), u.sectors[strings.ToLower(name)]...)
	}

	if limit > 0 && len(symbols) > limit {
		symbols = symbols[:limit]
	}
	return symbols, nil
}

func (u *Universe) roundRobin(limit int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)

	for depth := 0; ; depth++ {
		progressed := false
		for _, name := range u.order {
			list := u.sectors[strings.ToLower(name)]
			if depth >= len(list) {
				continue
			}
			progressed = true

			symbol := list[depth]
			if seen[symbol] {
				continue
			}
			seen[symbol] = true
			out = append(out, symbol)

			if limit > 0 && len(out) == limit {
				return out
			}
		}
		if !progressed {
			return out
		}
	}
}
