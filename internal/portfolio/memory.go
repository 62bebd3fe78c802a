package portfolio

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/magicformula/internal/contracts"
)

// MemoryRepository keeps holdings for the life of the process
type MemoryRepository struct {
	mu       sync.RWMutex
	holdings []contracts.Holding
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// List returns holdings in insertion order
func (m *MemoryRepository) List(ctx context.Context) ([]contracts.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append(make([]contracts.Holding, 0, len(m.holdings)), m.holdings...), nil
}

// GetBySymbol returns ErrHoldingNotFound when symbol is not held
func (m *MemoryRepository) GetBySymbol(ctx context.Context, symbol string) (*contracts.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(symbol); i >= 0 {
		h := m.holdings[i]
		return &h, nil
	}
	return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrHoldingNotFound)
}

// Create appends a holding unless the symbol is already held
func (m *MemoryRepository) Create(ctx context.Context, h *contracts.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(h.Symbol) >= 0 {
		return fmt.Errorf("%s: %w", h.Symbol, contracts.ErrDuplicateHolding)
	}
	m.holdings = append(m.holdings, *h)
	return nil
}

// DeleteBySymbol removes a holding
func (m *MemoryRepository) DeleteBySymbol(ctx context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(symbol)
	if i < 0 {
		return fmt.Errorf("%s: %w", symbol, contracts.ErrHoldingNotFound)
	}
	m.holdings = append(m.holdings[:i], m.holdings[i+1:]...)
	return nil
}

// indexOf must be called with mu held
func (m *MemoryRepository) indexOf(symbol string) int {
	for i := range m.holdings {
		if m.holdings[i].Symbol == symbol {
			return i
		}
	}
	return -1
}
