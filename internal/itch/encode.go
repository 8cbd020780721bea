package itch

import (
	"io"

	"github.com/rickgao/itch-vwap/internal/model"
)

// AppendAddOrder appends tag and payload for m. The tag is 'A' unless
// m.Tag is KindAddOrderMPID.
func AppendAddOrder(dst []byte, m model.AddOrder) []byte {
	dst, p := grow(dst, byte(m.Kind()), AddOrderLength)
	encodeHeader(p, m.Header)
	be.PutUint64(p[offReference:], m.Reference)
	p[offSide] = byte(m.Side)
	be.PutUint32(p[offSideShares:], m.Shares)
	putStock(p[offStock:offStock+StockWidth], m.Stock)
	be.PutUint32(p[offSidePrice:], uint32(m.Price))
	return dst
}

// AppendOrderExecuted appends tag and payload for m.
func AppendOrderExecuted(dst []byte, m model.OrderExecuted) []byte {
	dst, p := grow(dst, byte(model.KindOrderExecuted), OrderExecutedLength)
	encodeHeader(p, m.Header)
	be.PutUint64(p[offReference:], m.Reference)
	be.PutUint32(p[offExecShares:], m.Shares)
	be.PutUint64(p[offExecMatch:], m.MatchNumber)
	return dst
}

// AppendOrderExecutedWithPrice appends tag and payload for m.
func AppendOrderExecutedWithPrice(dst []byte, m model.OrderExecutedWithPrice) []byte {
	dst, p := grow(dst, byte(model.KindOrderExecutedWithPrice), OrderExecutedWithPriceLength)
	encodeHeader(p, m.Header)
	be.PutUint64(p[offReference:], m.Reference)
	be.PutUint32(p[offExecShares:], m.Shares)
	be.PutUint64(p[offExecMatch:], m.MatchNumber)
	p[offPrintable] = m.Printable
	be.PutUint32(p[offExecPrice:], uint32(m.Price))
	return dst
}

// AppendTrade appends tag and payload for m.
func AppendTrade(dst []byte, m model.Trade) []byte {
	dst, p := grow(dst, byte(model.KindTrade), TradeLength)
	encodeHeader(p, m.Header)
	be.PutUint64(p[offReference:], m.Reference)
	p[offSide] = byte(m.Side)
	be.PutUint32(p[offSideShares:], m.Shares)
	putStock(p[offStock:offStock+StockWidth], m.Stock)
	be.PutUint32(p[offSidePrice:], uint32(m.Price))
	be.PutUint64(p[offTradeMatch:], m.MatchNumber)
	return dst
}

// Append encodes any supported record.
func Append(dst []byte, rec model.Record) []byte {
	switch m := rec.(type) {
	case model.AddOrder:
		return AppendAddOrder(dst, m)
	case model.OrderExecuted:
		return AppendOrderExecuted(dst, m)
	case model.OrderExecutedWithPrice:
		return AppendOrderExecutedWithPrice(dst, m)
	case model.Trade:
		return AppendTrade(dst, m)
	default:
		return dst
	}
}

// grow extends dst by a tag byte plus n zeroed payload bytes and returns
// the payload window.
func grow(dst []byte, tag byte, n int) ([]byte, []byte) {
	start := len(dst)
	dst = append(dst, tag)
	dst = append(dst, make([]byte, n)...)
	return dst, dst[start+1:]
}

// putStock writes s left-aligned and space padded. Longer symbols are cut.
func putStock(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = ' '
	}
}

// Encoder writes records to an io.Writer.
type Encoder struct {
	w   io.Writer
	buf []byte
	n   int64
}

// NewEncoder creates an Encoder.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, buf: make([]byte, 0, 64)}
}

// Encode writes one record.
func (e *Encoder) Encode(rec model.Record) error {
	e.buf = Append(e.buf[:0], rec)
	return e.write(e.buf)
}

// WriteRaw writes bytes verbatim, for unsupported filler messages.
func (e *Encoder) WriteRaw(b []byte) error {
	return e.write(b)
}

func (e *Encoder) write(b []byte) error {
	n, err := e.w.Write(b)
	e.n += int64(n)
	return err
}

// BytesWritten returns the total number of bytes written.
func (e *Encoder) BytesWritten() int64 {
	return e.n
}
