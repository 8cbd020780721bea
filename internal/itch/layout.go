package itch

import (
	"encoding/binary"

	"github.com/rickgao/itch-vwap/internal/model"
)

// Payload lengths, tag excluded.
const (
	AddOrderLength               = 35
	OrderExecutedLength          = 30
	OrderExecutedWithPriceLength = 35
	TradeLength                  = 43
)

// StockWidth is the fixed width of the space-padded stock field.
const StockWidth = 8

// Field offsets shared by every supported message.
const (
	offStockLocate = 0
	offTracking    = 2
	offTimestamp   = 4
	offReference   = 10
)

// Add Order / Trade body.
const (
	offSide       = 18
	offSideShares = 19
	offStock      = 23
	offSidePrice  = 31
	offTradeMatch = 35
)

// Order Executed (with price) body.
const (
	offExecShares = 18
	offExecMatch  = 22
	offPrintable  = 30
	offExecPrice  = 31
)

// PayloadLength returns the payload length for a supported tag.
func PayloadLength(tag byte) (int, bool) {
	switch model.Kind(tag) {
	case model.KindAddOrder, model.KindAddOrderMPID:
		return AddOrderLength, true
	case model.KindOrderExecuted:
		return OrderExecutedLength, true
	case model.KindOrderExecutedWithPrice:
		return OrderExecutedWithPriceLength, true
	case model.KindTrade:
		return TradeLength, true
	default:
		return 0, false
	}
}

var be = binary.BigEndian

func uint48(b []byte) uint64 {
	_ = b[5]
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

func putUint48(b []byte, v uint64) {
	_ = b[5]
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

func decodeHeader(p []byte) model.Header {
	return model.Header{
		StockLocate:    be.Uint16(p[offStockLocate:]),
		TrackingNumber: be.Uint16(p[offTracking:]),
		Timestamp:      uint48(p[offTimestamp:]),
	}
}

func encodeHeader(p []byte, h model.Header) {
	be.PutUint16(p[offStockLocate:], h.StockLocate)
	be.PutUint16(p[offTracking:], h.TrackingNumber)
	putUint48(p[offTimestamp:], h.Timestamp)
}
