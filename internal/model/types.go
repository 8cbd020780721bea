package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceScale is the fixed-point denominator for feed prices.
const PriceScale = 10_000

// Price is a feed price in ten-thousandths of a dollar.
type Price uint32

// Decimal returns the exact dollar value.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -4)
}

// Float64 returns the dollar value as a float, for display only.
func (p Price) Float64() float64 {
	return float64(p) / PriceScale
}

func (p Price) String() string {
	return p.Decimal().StringFixed(4)
}

// Kind identifies a supported message type by its wire tag.
type Kind byte

const (
	KindAddOrder               Kind = 'A'
	KindAddOrderMPID           Kind = 'F'
	KindOrderExecuted          Kind = 'E'
	KindOrderExecutedWithPrice Kind = 'C'
	KindTrade                  Kind = 'P'
)

func (k Kind) String() string {
	switch k {
	case KindAddOrder:
		return "add_order"
	case KindAddOrderMPID:
		return "add_order_mpid"
	case KindOrderExecuted:
		return "order_executed"
	case KindOrderExecutedWithPrice:
		return "order_executed_with_price"
	case KindTrade:
		return "trade"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(k))
	}
}

// Side is the buy/sell indicator byte.
type Side byte

const (
	SideBuy  Side = 'B'
	SideSell Side = 'S'
)

// -----------------------------------------------------------------------------
// Decoded Records
// -----------------------------------------------------------------------------

// Record is one decoded feed message. Concrete types are AddOrder,
// OrderExecuted, OrderExecutedWithPrice and Trade.
type Record interface {
	Kind() Kind
	Time() uint64
}

// Header holds the fields every supported message starts with.
type Header struct {
	StockLocate    uint16
	TrackingNumber uint16
	Timestamp      uint64 // ns since midnight (48 bits on the wire)
}

// Time returns the message timestamp.
func (h Header) Time() uint64 { return h.Timestamp }

// AddOrder is an 'A' or 'F' message. MPID attribution is not modeled.
type AddOrder struct {
	Header
	Tag        Kind // KindAddOrder or KindAddOrderMPID
	Reference  uint64
	Side       Side
	Shares     uint32
	Stock      string
	StockValid bool // false when the symbol bytes were not valid text
	Price      Price
}

func (m AddOrder) Kind() Kind {
	if m.Tag == 0 {
		return KindAddOrder
	}
	return m.Tag
}

// OrderExecuted is an 'E' message.
type OrderExecuted struct {
	Header
	Reference   uint64
	Shares      uint32
	MatchNumber uint64
}

func (OrderExecuted) Kind() Kind { return KindOrderExecuted }

// OrderExecutedWithPrice is a 'C' message.
type OrderExecutedWithPrice struct {
	Header
	Reference   uint64
	Shares      uint32
	MatchNumber uint64
	Printable   byte
	Price       Price
}

func (OrderExecutedWithPrice) Kind() Kind { return KindOrderExecutedWithPrice }

// Trade is a 'P' (non-cross) trade message.
type Trade struct {
	Header
	Reference   uint64
	Side        Side
	Shares      uint32
	Stock       string
	Price       Price
	MatchNumber uint64
}

func (Trade) Kind() Kind { return KindTrade }

// -----------------------------------------------------------------------------
// Resolved Trades
// -----------------------------------------------------------------------------

// TradeSource records which message kind a ResolvedTrade came from.
type TradeSource uint8

const (
	SourceTrade TradeSource = iota
	SourceExecution
	SourceExecutionWithPrice
)

func (s TradeSource) String() string {
	switch s {
	case SourceTrade:
		return "trade"
	case SourceExecution:
		return "execution"
	case SourceExecutionWithPrice:
		return "execution_with_price"
	default:
		return "unknown"
	}
}

// ResolvedTrade is a trade with instrument, price and quantity fully known.
type ResolvedTrade struct {
	Stock     string
	Timestamp uint64 // ns since midnight
	Shares    uint32
	Price     Price
	Source    TradeSource
}

// NewResolvedTrade builds a ResolvedTrade.
func NewResolvedTrade(stock string, ts uint64, shares uint32, price Price, src TradeSource) ResolvedTrade {
	return ResolvedTrade{
		Stock:     stock,
		Timestamp: ts,
		Shares:    shares,
		Price:     price,
		Source:    src,
	}
}

// Notional returns shares × price in dollars.
func (t ResolvedTrade) Notional() decimal.Decimal {
	return t.Price.Decimal().Mul(decimal.NewFromInt(int64(t.Shares)))
}
