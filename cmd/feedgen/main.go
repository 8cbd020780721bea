// Command feedgen writes a deterministic synthetic ITCH 5.0 feed for local
// runs and benchmarks.
package main

import (
	"bufio"
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/rickgao/itch-vwap/internal/itch"
	"github.com/rickgao/itch-vwap/internal/model"
)

func main() {
	out := flag.String("out", "feed.itch.gz", "output file; gzip when it ends in .gz")
	symbols := flag.String("symbols", "AAPL,MSFT", "comma-separated instruments")
	orders := flag.Int("orders", 1000, "number of add orders")
	seed := flag.Int64("seed", 1, "random seed")
	filler := flag.Float64("filler", 0.05, "probability of an unsupported filler byte after each message")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	syms := splitSymbols(*symbols)
	if len(syms) == 0 || *orders < 1 {
		fmt.Fprintln(os.Stderr, "feedgen: need at least one symbol and one order")
		os.Exit(2)
	}

	start := time.Now()
	n, err := writeFeed(*out, generatorConfig{
		Symbols: syms,
		Orders:  *orders,
		Seed:    *seed,
		Filler:  *filler,
	})
	if err != nil {
		logger.Error("feed generation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("feed written",
		"path", *out,
		"orders", *orders,
		"symbols", len(syms),
		"bytes", n,
		"duration", time.Since(start),
	)
}

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

func writeFeed(path string, cfg generatorConfig) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create feed: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(bw)
		w = gz
	}

	enc := itch.NewEncoder(w)
	if err := newGenerator(cfg).generate(enc); err != nil {
		return 0, err
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return 0, fmt.Errorf("close gzip: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("flush feed: %w", err)
	}
	return enc.BytesWritten(), f.Close()
}

type generatorConfig struct {
	Symbols []string
	Orders  int
	Seed    int64
	Filler  float64
}

// Session window the generator spreads timestamps over.
const (
	sessionStart = 4 * time.Hour
	sessionEnd   = 20 * time.Hour
)

// fillerTags are unsupported message tags; none of them is a supported tag.
var fillerTags = []byte{'S', 'R', 'H', 'X', 'D', 'U', 'Q', 'I'}

type generator struct {
	cfg   generatorConfig
	r     *rand.Rand
	mid   map[string]int64 // price in 1/10000 dollars
	ts    uint64
	step  uint64
	ref   uint64
	match uint64
}

func newGenerator(cfg generatorConfig) *generator {
	g := &generator{
		cfg: cfg,
		r:   rand.New(rand.NewSource(cfg.Seed)),
		mid: make(map[string]int64, len(cfg.Symbols)),
		ts:  uint64(sessionStart.Nanoseconds()),
	}
	// Roughly four messages per order.
	g.step = uint64((sessionEnd - sessionStart).Nanoseconds()) / uint64(cfg.Orders*4+1)
	for _, s := range cfg.Symbols {
		g.mid[s] = int64(g.r.Intn(400)+20) * model.PriceScale
	}
	return g
}

func (g *generator) generate(enc *itch.Encoder) error {
	for i := 0; i < g.cfg.Orders; i++ {
		stock := g.cfg.Symbols[g.r.Intn(len(g.cfg.Symbols))]
		for _, rec := range g.order(stock) {
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("encode %s: %w", rec.Kind(), err)
			}
			if g.r.Float64() < g.cfg.Filler {
				tag := fillerTags[g.r.Intn(len(fillerTags))]
				if err := enc.WriteRaw([]byte{tag}); err != nil {
					return fmt.Errorf("write filler: %w", err)
				}
			}
		}
	}
	return nil
}

// order produces an add order followed by its executions and, sometimes,
// a non-displayable trade in the same instrument.
func (g *generator) order(stock string) []model.Record {
	g.ref++
	shares := uint32(g.r.Intn(10)+1) * 100
	price := g.price(stock)

	add := model.AddOrder{
		Header:    g.header(),
		Tag:       model.KindAddOrder,
		Reference: g.ref,
		Side:      model.SideBuy,
		Shares:    shares,
		Stock:     stock,
		Price:     price,
	}
	if g.r.Intn(2) == 0 {
		add.Side = model.SideSell
	}
	if g.r.Intn(10) == 0 {
		add.Tag = model.KindAddOrderMPID
	}
	recs := []model.Record{add}

	remaining := shares
	for remaining > 0 && g.r.Intn(3) != 0 {
		fill := uint32(g.r.Intn(int(remaining))) + 1
		remaining -= fill
		g.match++

		if g.r.Intn(4) == 0 {
			recs = append(recs, model.OrderExecutedWithPrice{
				Header:      g.header(),
				Reference:   g.ref,
				Shares:      fill,
				MatchNumber: g.match,
				Printable:   itch.PrintableYes,
				Price:       price + model.Price(g.r.Intn(100)),
			})
			continue
		}
		recs = append(recs, model.OrderExecuted{
			Header:      g.header(),
			Reference:   g.ref,
			Shares:      fill,
			MatchNumber: g.match,
		})
	}

	if g.r.Intn(5) == 0 {
		g.match++
		recs = append(recs, model.Trade{
			Header:      g.header(),
			Side:        model.SideBuy,
			Shares:      uint32(g.r.Intn(500) + 1),
			Stock:       stock,
			Price:       g.price(stock),
			MatchNumber: g.match,
		})
	}
	return recs
}

// price random-walks the instrument's mid by up to five cents.
func (g *generator) price(stock string) model.Price {
	m := g.mid[stock] + int64(g.r.Intn(1001)-500)
	if m < model.PriceScale {
		m = model.PriceScale
	}
	g.mid[stock] = m
	return model.Price(m)
}

func (g *generator) header() model.Header {
	g.ts += g.step/2 + uint64(g.r.Int63n(int64(g.step)+1))
	return model.Header{
		StockLocate:    1,
		TrackingNumber: uint16(g.r.Intn(1 << 16)),
		Timestamp:      g.ts,
	}
}
