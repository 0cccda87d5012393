package yahoo

// Quote holds the stock attributes fetched for a ticker. Pointer fields
// are nil when the upstream response omits the value.
type Quote struct {
	Symbol        string   `json:"symbol" msgpack:"symbol"`
	Name          *string  `json:"name" msgpack:"name"`
	Price         *float64 `json:"price" msgpack:"price"`
	MarketCap     *int64   `json:"market_cap" msgpack:"market_cap"`
	Sector        *string  `json:"sector" msgpack:"sector"`
	Industry      *string  `json:"industry" msgpack:"industry"`
	Country       *string  `json:"country" msgpack:"country"`
	Exchange      *string  `json:"exchange" msgpack:"exchange"`
	Currency      *string  `json:"currency" msgpack:"currency"`
	PERatio       *float64 `json:"pe_ratio" msgpack:"pe_ratio"`
	DividendYield *float64 `json:"dividend_yield" msgpack:"dividend_yield"`
}
