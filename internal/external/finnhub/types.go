package finnhub

// QuoteResponse is the /quote payload
type QuoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// Profile is the /stock/profile2 payload
type Profile struct {
	Ticker               string  `json:"ticker"`
	Name                 string  `json:"name"`
	Exchange             string  `json:"exchange"`
	Industry             string  `json:"finnhubIndustry"`
	MarketCapitalization float64 `json:"marketCapitalization"` // millions of USD
	Currency             string  `json:"currency"`
}

// MetricResponse is the /stock/metric?metric=all payload
type MetricResponse struct {
	Symbol string  `json:"symbol"`
	Metric Metrics `json:"metric"`
}

// Metrics holds the fields used for ranking; null values decode to nil
type Metrics struct {
	PETTM               *float64 `json:"peTTM"`
	PEBasicExclExtraTTM *float64 `json:"peBasicExclExtraTTM"`
	ROETTM              *float64 `json:"roeTTM"` // percent
	ROEAnnual           *float64 `json:"roeRfy"`
}

// PriceToEarnings prefers peTTM
func (m Metrics) PriceToEarnings() *float64 {
	if m.PETTM != nil {
		return m.PETTM
	}
	return m.PEBasicExclExtraTTM
}

// ReturnOnEquityPercent prefers the trailing twelve months figure
func (m Metrics) ReturnOnEquityPercent() *float64 {
	if m.ROETTM != nil {
		return m.ROETTM
	}
	return m.ROEAnnual
}

// NewsItem is one /news entry
type NewsItem struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// SearchResponse is the /search payload
type SearchResponse struct {
	Count  int            `json:"count"`
	Result []SearchResult `json:"result"`
}

// SearchResult is one symbol lookup match
type SearchResult struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

type errorResponse struct {
	Error string `json:"error"`
}
