package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var errEmptyBody = errors.New("empty response body")

// number accepts a JSON number or a numeric string. null, "" and non-finite
// values are treated as missing.
type number struct {
	v  float64
	ok bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	quoted := strings.HasPrefix(s, `"`)
	if quoted {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if quoted {
			return nil
		}
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	n.v, n.ok = v, true
	return nil
}

// or returns the value or def when missing.
func (n number) or(def float64) float64 {
	if !n.ok {
		return def
	}
	return n.v
}

// text accepts a JSON string or number.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*t = text(str)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*t = text(n.String())
	}
	return nil
}

type rawInstrument struct {
	Symbol        text        `json:"symbol"`
	Name          text        `json:"name"`
	MarketPrice   number      `json:"marketPrice"`
	Change        number      `json:"change"`
	ChangePercent number      `json:"changePercent"`
	Volume        number      `json:"volume"`
	High24h       number      `json:"high24h"`
	Low24h        number      `json:"low24h"`
	Timestamp     interface{} `json:"timestamp"`
}

type rawOrder struct {
	ID        text        `json:"id"`
	Symbol    text        `json:"symbol"`
	Side      text        `json:"side"`
	Price     number      `json:"price"`
	Quantity  number      `json:"quantity"`
	Timestamp interface{} `json:"timestamp"`
}

type rawTrade struct {
	ID        text        `json:"id"`
	Symbol    text        `json:"symbol"`
	Side      text        `json:"side"`
	Price     number      `json:"price"`
	Quantity  number      `json:"quantity"`
	UserID    text        `json:"userId"`
	Timestamp interface{} `json:"timestamp"`
}

type rawAlert struct {
	ID          text        `json:"id"`
	Type        text        `json:"type"`
	Severity    text        `json:"severity"`
	Symbol      text        `json:"symbol"`
	Message     text        `json:"message"`
	Description text        `json:"description"`
	Status      text        `json:"status"`
	Timestamp   interface{} `json:"timestamp"`
}

type rawModelMetrics struct {
	Accuracy  number `json:"accuracy"`
	Precision number `json:"precision"`
	Recall    number `json:"recall"`
}

type rawOverview struct {
	TotalVolume  number `json:"totalVolume"`
	TotalTrades  number `json:"totalTrades"`
	ActiveOrders number `json:"activeOrders"`
}

// unwrap accepts either a bare payload or one wrapped in {"data": ...}.
func unwrap(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil {
			data := bytes.TrimSpace(env.Data)
			if len(data) > 0 && (data[0] == '[' || data[0] == '{') {
				return data
			}
		}
	}
	return trimmed
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	payload := unwrap(raw)
	if payload == nil {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeObject[T any](raw json.RawMessage) (T, error) {
	var out T
	payload := unwrap(raw)
	if payload == nil {
		return out, errEmptyBody
	}
	err := json.Unmarshal(payload, &out)
	return out, err
}
