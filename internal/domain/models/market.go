package models

// VolumeUnavailable marks an instrument whose backend record carried no volume.
const VolumeUnavailable float64 = -1

type BookSide string

const (
	SideBid BookSide = "BID"
	SideAsk BookSide = "ASK"
)

type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

type Source string

const (
	SourceMarket Source = "MARKET"
	SourceModel  Source = "MODEL"
)

type AlertType string

const (
	AlertAnomaly      AlertType = "ANOMALY"
	AlertManipulation AlertType = "MANIPULATION"
	AlertSuspicious   AlertType = "SUSPICIOUS"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

type AlertStatus string

const (
	AlertActive        AlertStatus = "ACTIVE"
	AlertInvestigating AlertStatus = "INVESTIGATING"
	AlertResolved      AlertStatus = "RESOLVED"
)

const (
	ModelActive   = "ACTIVE"
	ModelInactive = "INACTIVE"
)

// MarketInstrument is one row of the instrument list.
type MarketInstrument struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	LastPrice     float64  `json:"lastPrice"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	Volume        float64  `json:"volume"`
	High24h       *float64 `json:"high24h,omitempty"`
	Low24h        *float64 `json:"low24h,omitempty"`
	Timestamp     string   `json:"timestamp"`
}

// HasVolume reports whether the backend supplied a volume.
func (m MarketInstrument) HasVolume() bool {
	return m.Volume != VolumeUnavailable
}

// OrderBookEntry is a resting order. Total is only set by NewOrderBookEntry.
type OrderBookEntry struct {
	ID        string   `json:"id"`
	Symbol    string   `json:"symbol"`
	Side      BookSide `json:"side"`
	Price     float64  `json:"price"`
	Quantity  float64  `json:"quantity"`
	Total     float64  `json:"total"`
	Timestamp string   `json:"timestamp"`
	Source    Source   `json:"source"`
}

func NewOrderBookEntry(id, symbol string, side BookSide, price, quantity float64, ts string, src Source) OrderBookEntry {
	return OrderBookEntry{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Total:     price * quantity,
		Timestamp: ts,
		Source:    src,
	}
}

// TradeRecord is an executed trade.
type TradeRecord struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      TradeSide `json:"side"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Total     float64   `json:"total"`
	Maker     string    `json:"maker,omitempty"`
	Taker     string    `json:"taker,omitempty"`
	Timestamp string    `json:"timestamp"`
	Source    Source    `json:"source,omitempty"`
}

func NewTradeRecord(id, symbol string, side TradeSide, price, quantity float64, ts string) TradeRecord {
	return TradeRecord{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Total:     price * quantity,
		Timestamp: ts,
	}
}

// SurveillanceAlert is a flagged market event. Status is always ACTIVE on fetch;
// BackendStatus keeps what the backend actually reported.
type SurveillanceAlert struct {
	ID            string      `json:"id"`
	Type          AlertType   `json:"type"`
	Severity      Severity    `json:"severity"`
	Symbol        string      `json:"symbol,omitempty"`
	Description   string      `json:"description"`
	DetectedAt    string      `json:"detectedAt"`
	Status        AlertStatus `json:"status"`
	BackendStatus string      `json:"backendStatus,omitempty"`
}

// ModelStatus summarizes the surveillance model metrics.
type ModelStatus struct {
	Status      string  `json:"status"`
	Accuracy    float64 `json:"accuracy"`
	Precision   float64 `json:"precision"`
	Recall      float64 `json:"recall"`
	LastUpdated string  `json:"lastUpdated"`
}

// MarketOverview is the exchange-wide counters block.
type MarketOverview struct {
	TotalVolume  float64 `json:"totalVolume"`
	TotalTrades  float64 `json:"totalTrades"`
	ActiveOrders float64 `json:"activeOrders"`
}
