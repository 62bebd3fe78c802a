package contracts

import "context"

// MarketDataProvider fetches fundamentals and quotes
// ⭐ SSOT: every market data source implements this
type MarketDataProvider interface {
	Name() string
	Security(ctx context.Context, symbol string) (*Security, error)
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// NewsProvider supplies general market headlines
type NewsProvider interface {
	MarketNews(ctx context.Context, limit int) ([]Headline, error)
}

// SymbolSearcher looks up tickers by free text
type SymbolSearcher interface {
	Search(ctx context.Context, query string) ([]SymbolMatch, error)
}

// Narrator writes the prose around a recommendation set
type Narrator interface {
	Narrate(ctx context.Context, req NarrativeRequest) (*Narrative, error)
}

// HoldingRepository persists portfolio holdings
// ⭐ SSOT: holdings storage goes through this interface only
type HoldingRepository interface {
	List(ctx context.Context) ([]Holding, error)
	GetBySymbol(ctx context.Context, symbol string) (*Holding, error)
	Create(ctx context.Context, holding *Holding) error
	DeleteBySymbol(ctx context.Context, symbol string) error
}
