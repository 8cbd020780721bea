package itch

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rickgao/itch-vwap/internal/model"
)

// ErrUnsupported is returned by Decode for tags outside the supported set.
var ErrUnsupported = errors.New("unsupported message tag")

// Decode parses one payload for the given tag. It does not apply the
// plausibility filter; see Filter.
func Decode(tag byte, payload []byte) (model.Record, error) {
	n, ok := PayloadLength(tag)
	if !ok {
		return nil, ErrUnsupported
	}
	if len(payload) < n {
		return nil, fmt.Errorf("%s payload: got %d bytes, want %d", model.Kind(tag), len(payload), n)
	}

	switch model.Kind(tag) {
	case model.KindAddOrder, model.KindAddOrderMPID:
		return decodeAddOrder(model.Kind(tag), payload), nil
	case model.KindOrderExecuted:
		return decodeOrderExecuted(payload), nil
	case model.KindOrderExecutedWithPrice:
		return decodeOrderExecutedWithPrice(payload), nil
	default:
		return decodeTrade(payload), nil
	}
}

func decodeAddOrder(kind model.Kind, p []byte) model.AddOrder {
	stock, ok := decodeStock(p[offStock : offStock+StockWidth])
	return model.AddOrder{
		Header:     decodeHeader(p),
		Tag:        kind,
		Reference:  be.Uint64(p[offReference:]),
		Side:       model.Side(p[offSide]),
		Shares:     be.Uint32(p[offSideShares:]),
		Stock:      stock,
		StockValid: ok,
		Price:      model.Price(be.Uint32(p[offSidePrice:])),
	}
}

func decodeOrderExecuted(p []byte) model.OrderExecuted {
	return model.OrderExecuted{
		Header:      decodeHeader(p),
		Reference:   be.Uint64(p[offReference:]),
		Shares:      be.Uint32(p[offExecShares:]),
		MatchNumber: be.Uint64(p[offExecMatch:]),
	}
}

func decodeOrderExecutedWithPrice(p []byte) model.OrderExecutedWithPrice {
	return model.OrderExecutedWithPrice{
		Header:      decodeHeader(p),
		Reference:   be.Uint64(p[offReference:]),
		Shares:      be.Uint32(p[offExecShares:]),
		MatchNumber: be.Uint64(p[offExecMatch:]),
		Printable:   p[offPrintable],
		Price:       model.Price(be.Uint32(p[offExecPrice:])),
	}
}

func decodeTrade(p []byte) model.Trade {
	stock, _ := decodeStock(p[offStock : offStock+StockWidth])
	return model.Trade{
		Header:      decodeHeader(p),
		Reference:   be.Uint64(p[offReference:]),
		Side:        model.Side(p[offSide]),
		Shares:      be.Uint32(p[offSideShares:]),
		Stock:       stock,
		Price:       model.Price(be.Uint32(p[offSidePrice:])),
		MatchNumber: be.Uint64(p[offTradeMatch:]),
	}
}

// decodeStock returns the symbol without its space padding. It reports
// false when the bytes are not valid UTF-8; invalid bytes are then
// replaced with U+FFFD in the returned text.
func decodeStock(b []byte) (string, bool) {
	valid := utf8.Valid(b)
	s := string(b)
	if !valid {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	return strings.TrimRight(s, " "), valid
}
