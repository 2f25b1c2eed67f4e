package models

// View names, used as Kafka keys, websocket event names and metric labels.
const (
	ViewMarketData   = "market"
	ViewOrderBook    = "orderbook"
	ViewTradeHistory = "trades"
	ViewSurveillance = "surveillance"
)

// SymbolAll disables symbol filtering on the trade history page.
const SymbolAll = "ALL"

// MarketSummary backs the cards above the instrument table.
type MarketSummary struct {
	Instruments int     `json:"instruments"`
	TotalVolume float64 `json:"totalVolume"`
	Gainers     int     `json:"gainers"`
	Losers      int     `json:"losers"`
}

type MarketDataView struct {
	Loading     bool               `json:"loading"`
	Instruments []MarketInstrument `json:"instruments"`
	Summary     MarketSummary      `json:"summary"`
	UpdatedAt   string             `json:"updatedAt,omitempty"`
}

type OrderBookView struct {
	Loading        bool             `json:"loading"`
	SelectedSymbol string           `json:"selectedSymbol"`
	SymbolChoices  []string         `json:"symbolChoices"`
	Bids           []OrderBookEntry `json:"bids"`
	Asks           []OrderBookEntry `json:"asks"`
	BidCount       int              `json:"bidCount"`
	AskCount       int              `json:"askCount"`
	Spread         *float64         `json:"spread,omitempty"`
	UpdatedAt      string           `json:"updatedAt,omitempty"`
}

// TradeVolumes sums trade totals over the filtered set.
type TradeVolumes struct {
	Total float64 `json:"total"`
	Buy   float64 `json:"buy"`
	Sell  float64 `json:"sell"`
}

type TradeHistoryView struct {
	Loading        bool          `json:"loading"`
	SelectedSymbol string        `json:"selectedSymbol"`
	SymbolChoices  []string      `json:"symbolChoices"`
	Trades         []TradeRecord `json:"trades"`
	Count          int           `json:"count"`
	Volumes        TradeVolumes  `json:"volumes"`
	UpdatedAt      string        `json:"updatedAt,omitempty"`
}

type SurveillanceView struct {
	Loading     bool                `json:"loading"`
	Alerts      []SurveillanceAlert `json:"alerts"`
	AlertCounts map[Severity]int    `json:"alertCounts"`
	Model       ModelStatus         `json:"model"`
	Overview    MarketOverview      `json:"overview"`
	UpdatedAt   string              `json:"updatedAt,omitempty"`
}

// Snapshot is a rendered view as pushed to subscribers.
type Snapshot struct {
	View       string      `json:"view"`
	Generation uint64      `json:"generation"`
	RenderedAt string      `json:"renderedAt"`
	Data       interface{} `json:"data"`
}

// LoginPath is where the operator is sent when the session ends.
const LoginPath = "/admin/login"
