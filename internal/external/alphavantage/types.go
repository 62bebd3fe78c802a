package alphavantage

import (
	"math"
	"strconv"
	"strings"
)

// Notice fields are returned with HTTP 200 when the call did not succeed
type Notice struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// Message returns the first non-empty notice, "" when the payload is data
func (n Notice) Message() string {
	switch {
	case n.ErrorMessage != "":
		return n.ErrorMessage
	case n.Note != "":
		return n.Note
	default:
		return n.Information
	}
}

// Overview is the function=OVERVIEW payload (every value is a string)
type Overview struct {
	Notice

	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Sector               string `json:"Sector"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	ReturnOnEquityTTM    string `json:"ReturnOnEquityTTM"` // fraction: 0.284 = 28.4%
	BookValue            string `json:"BookValue"`
	EPS                  string `json:"EPS"`
	RevenueTTM           string `json:"RevenueTTM"`
	GrossProfitTTM       string `json:"GrossProfitTTM"`
}

// GlobalQuoteResponse wraps the function=GLOBAL_QUOTE payload
type GlobalQuoteResponse struct {
	Notice

	Quote GlobalQuote `json:"Global Quote"`
}

// GlobalQuote holds the numbered quote fields
type GlobalQuote struct {
	Symbol        string `json:"01. symbol"`
	Open          string `json:"02. open"`
	High          string `json:"03. high"`
	Low           string `json:"04. low"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	TradingDay    string `json:"07. latest trading day"`
	PreviousClose string `json:"08. previous close"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"` // "1.2345%"
}

// parseNumber reads an Alpha Vantage numeric string.
// "None", "-", "" and non-finite values are absent.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	switch s {
	case "", "None", "-", "N/A":
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// valueOr returns the parsed number or zero
func valueOr(s string) float64 {
	if v := parseNumber(s); v != nil {
		return *v
	}
	return 0
}
