package usecase

import (
	"sort"
	"strings"

	"SentinelConsole/internal/domain/models"
)

// Pure derivations over the latest snapshot. Inputs are never modified.

func selectsAll(symbol string) bool {
	return symbol == "" || strings.EqualFold(symbol, models.SymbolAll)
}

// FilterInstruments keeps instruments of symbol; "" or ALL keeps everything.
func FilterInstruments(in []models.MarketInstrument, symbol string) []models.MarketInstrument {
	out := make([]models.MarketInstrument, 0, len(in))
	for _, m := range in {
		if selectsAll(symbol) || m.Symbol == symbol {
			out = append(out, m)
		}
	}
	return out
}

// FilterTrades keeps trades of symbol; "" or ALL keeps everything.
func FilterTrades(in []models.TradeRecord, symbol string) []models.TradeRecord {
	out := make([]models.TradeRecord, 0, len(in))
	for _, t := range in {
		if selectsAll(symbol) || t.Symbol == symbol {
			out = append(out, t)
		}
	}
	return out
}

// FilterOrderBook keeps entries of exactly symbol. A book never spans symbols,
// so "" and ALL match nothing.
func FilterOrderBook(in []models.OrderBookEntry, symbol string) []models.OrderBookEntry {
	out := make([]models.OrderBookEntry, 0, len(in))
	for _, e := range in {
		if e.Symbol == symbol {
			out = append(out, e)
		}
	}
	return out
}

// SplitBook partitions entries into bids by price descending and asks by price
// ascending, so the best prices sit next to the spread. Ties keep input order.
func SplitBook(in []models.OrderBookEntry) (bids, asks []models.OrderBookEntry) {
	bids = make([]models.OrderBookEntry, 0, len(in))
	asks = make([]models.OrderBookEntry, 0, len(in))
	for _, e := range in {
		if e.Side == models.SideBid {
			bids = append(bids, e)
		} else {
			asks = append(asks, e)
		}
	}
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	return bids, asks
}

// Spread is best ask minus best bid, or nil when a side is empty.
// bids and asks must come from SplitBook.
func Spread(bids, asks []models.OrderBookEntry) *float64 {
	if len(bids) == 0 || len(asks) == 0 {
		return nil
	}
	s := asks[0].Price - bids[0].Price
	return &s
}

// TradeVolumes sums trade totals overall and per side.
func TradeVolumes(trades []models.TradeRecord) models.TradeVolumes {
	var v models.TradeVolumes
	for _, t := range trades {
		v.Total += t.Total
		switch t.Side {
		case models.SideBuy:
			v.Buy += t.Total
		case models.SideSell:
			v.Sell += t.Total
		}
	}
	return v
}

// MarketSummary counts instruments, gainers and losers and sums the volumes
// that the backend actually reported.
func MarketSummary(in []models.MarketInstrument) models.MarketSummary {
	s := models.MarketSummary{Instruments: len(in)}
	for _, m := range in {
		if m.HasVolume() {
			s.TotalVolume += m.Volume
		}
		switch {
		case m.Change > 0:
			s.Gainers++
		case m.Change < 0:
			s.Losers++
		}
	}
	return s
}

// SymbolChoices returns up to n distinct symbols in list order. n <= 0 means no limit.
func SymbolChoices(in []models.MarketInstrument, n int) []string {
	if n <= 0 {
		n = len(in)
	}
	out := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for _, m := range in {
		if len(out) >= n {
			break
		}
		if m.Symbol == "" {
			continue
		}
		if _, ok := seen[m.Symbol]; ok {
			continue
		}
		seen[m.Symbol] = struct{}{}
		out = append(out, m.Symbol)
	}
	return out
}

// AlertCounts counts alerts per severity; every known severity is present.
func AlertCounts(alerts []models.SurveillanceAlert) map[models.Severity]int {
	counts := map[models.Severity]int{
		models.SeverityLow:      0,
		models.SeverityMedium:   0,
		models.SeverityHigh:     0,
		models.SeverityCritical: 0,
	}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	return counts
}
