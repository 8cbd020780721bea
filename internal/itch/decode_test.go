package itch

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/rickgao/itch-vwap/internal/model"
)

// rawAddOrder builds an Add Order payload field by field.
func rawAddOrder(ts, ref uint64, side byte, shares uint32, stock string, price uint32) []byte {
	p := make([]byte, AddOrderLength)
	binary.BigEndian.PutUint16(p[0:], 7)  // stock locate
	binary.BigEndian.PutUint16(p[2:], 11) // tracking
	for i := 0; i < 6; i++ {
		p[4+i] = byte(ts >> (8 * (5 - i)))
	}
	binary.BigEndian.PutUint64(p[10:], ref)
	p[18] = side
	binary.BigEndian.PutUint32(p[19:], shares)
	copy(p[23:31], []byte(stock+"        "))
	binary.BigEndian.PutUint32(p[31:], price)
	return p
}

func TestDecode_AddOrderLayout(t *testing.T) {
	payload := rawAddOrder(36_000_000_000_000, 1, 'B', 100, "AAPL    ", 1_500_000)

	rec, err := Decode('A', payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	add, ok := rec.(model.AddOrder)
	if !ok {
		t.Fatalf("Decode() returned %T, want model.AddOrder", rec)
	}
	if add.StockLocate != 7 {
		t.Errorf("StockLocate = %d, want 7", add.StockLocate)
	}
	if add.TrackingNumber != 11 {
		t.Errorf("TrackingNumber = %d, want 11", add.TrackingNumber)
	}
	if add.Timestamp != 36_000_000_000_000 {
		t.Errorf("Timestamp = %d, want 36000000000000", add.Timestamp)
	}
	if add.Reference != 1 {
		t.Errorf("Reference = %d, want 1", add.Reference)
	}
	if add.Side != model.SideBuy {
		t.Errorf("Side = %q, want %q", add.Side, model.SideBuy)
	}
	if add.Shares != 100 {
		t.Errorf("Shares = %d, want 100", add.Shares)
	}
	if add.Stock != "AAPL" || !add.StockValid {
		t.Errorf("Stock = %q (valid %v), want %q (valid true)", add.Stock, add.StockValid, "AAPL")
	}
	if add.Price != 1_500_000 {
		t.Errorf("Price = %d, want 1500000", add.Price)
	}
	if add.Kind() != model.KindAddOrder {
		t.Errorf("Kind() = %v, want %v", add.Kind(), model.KindAddOrder)
	}
}

func TestDecode_AddOrderMPIDSharesLayout(t *testing.T) {
	payload := rawAddOrder(1, 2, 'S', 3, "MSFT", 4)

	rec, err := Decode('F', payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.Kind() != model.KindAddOrderMPID {
		t.Errorf("Kind() = %v, want %v", rec.Kind(), model.KindAddOrderMPID)
	}
	if got := rec.(model.AddOrder).Stock; got != "MSFT" {
		t.Errorf("Stock = %q, want %q", got, "MSFT")
	}
}

func TestDecode_InvalidStock(t *testing.T) {
	payload := rawAddOrder(1, 2, 'B', 3, "\xff\xfeBAD", 4)

	rec, err := Decode('A', payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	add := rec.(model.AddOrder)
	if add.StockValid {
		t.Error("StockValid = true, want false for non-UTF-8 bytes")
	}
	if add.Stock != "\uFFFDBAD" {
		t.Errorf("Stock = %q, want %q", add.Stock, "\uFFFDBAD")
	}
}

func TestDecode_BlankStockIsValidText(t *testing.T) {
	rec, err := Decode('A', rawAddOrder(1, 2, 'B', 3, "", 4))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	add := rec.(model.AddOrder)
	if !add.StockValid {
		t.Error("StockValid = false, want true for all-space symbol")
	}
	if add.Stock != "" {
		t.Errorf("Stock = %q, want empty", add.Stock)
	}
}

func TestDecode_TradeWithUndecodableStockPassesFilter(t *testing.T) {
	buf := AppendTrade(nil, model.Trade{Side: model.SideBuy, Shares: 5, Stock: "\xff\xfeA", Price: 1})

	rec, err := Decode(buf[0], buf[1:])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := (Filter{}).Check(rec); err != nil {
		t.Errorf("Check() error = %v, want nil", err)
	}
	if got := rec.(model.Trade).Stock; got != "\uFFFDA" {
		t.Errorf("Stock = %q, want %q", got, "\uFFFDA")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	hdr := model.Header{StockLocate: 1, TrackingNumber: 2, Timestamp: 0xABCDEF012345}

	tests := []struct {
		name string
		rec  model.Record
	}{
		{
			name: "add order",
			rec: model.AddOrder{Header: hdr, Tag: model.KindAddOrder, Reference: 99, Side: model.SideSell,
				Shares: 500, Stock: "ZVZZT", StockValid: true, Price: 101_2500},
		},
		{
			name: "add order mpid",
			rec: model.AddOrder{Header: hdr, Tag: model.KindAddOrderMPID, Reference: 5, Side: model.SideBuy,
				Shares: 1, Stock: "QQQ", StockValid: true, Price: 3},
		},
		{
			name: "order executed",
			rec:  model.OrderExecuted{Header: hdr, Reference: 99, Shares: 250, MatchNumber: 123456789},
		},
		{
			name: "order executed with price",
			rec: model.OrderExecutedWithPrice{Header: hdr, Reference: 99, Shares: 10, MatchNumber: 42,
				Printable: 'Y', Price: 100_0100},
		},
		{
			name: "trade",
			rec: model.Trade{Header: hdr, Reference: 0, Side: model.SideBuy, Shares: 77, Stock: "AAPL",
				Price: 150_0000, MatchNumber: 987654321},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Append(nil, tt.rec)

			n, ok := PayloadLength(buf[0])
			if !ok {
				t.Fatalf("PayloadLength(%q) not supported", buf[0])
			}
			if len(buf) != n+1 {
				t.Fatalf("encoded length = %d, want %d", len(buf), n+1)
			}

			got, err := Decode(buf[0], buf[1:])
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.rec {
				t.Errorf("Decode() = %+v, want %+v", got, tt.rec)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode('X', make([]byte, 50)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Decode('X') error = %v, want ErrUnsupported", err)
	}
	if _, err := Decode('E', make([]byte, 10)); err == nil {
		t.Error("Decode('E') expected error for short payload")
	}
}

func TestPayloadLength(t *testing.T) {
	tests := []struct {
		tag  byte
		want int
		ok   bool
	}{
		{'A', 35, true},
		{'F', 35, true},
		{'E', 30, true},
		{'C', 35, true},
		{'P', 43, true},
		{'S', 0, false},
		{'D', 0, false},
	}

	for _, tt := range tests {
		got, ok := PayloadLength(tt.tag)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PayloadLength(%q) = (%d, %v), want (%d, %v)", tt.tag, got, ok, tt.want, tt.ok)
		}
	}
}
