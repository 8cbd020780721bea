package itch

import (
	"errors"
	"io"

	"github.com/rickgao/itch-vwap/internal/cursor"
	"github.com/rickgao/itch-vwap/internal/model"
)

// Stats counts what the decoder has seen.
type Stats struct {
	Decoded      map[model.Kind]int64
	Rejected     map[Reason]int64
	SkippedBytes int64 // unsupported tag bytes
	BytesRead    int64
	Truncated    bool // the source ended inside a payload
}

// TotalDecoded returns the number of records that passed the filter.
func (s Stats) TotalDecoded() int64 {
	var n int64
	for _, c := range s.Decoded {
		n += c
	}
	return n
}

// TotalRejected returns the number of records dropped by the filter.
func (s Stats) TotalRejected() int64 {
	var n int64
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// Decoder reads filtered records from a Cursor.
type Decoder struct {
	cur    *cursor.Cursor
	filter Filter

	decoded      map[model.Kind]int64
	rejected     map[Reason]int64
	skippedBytes int64
	truncated    bool
	done         bool
}

// NewDecoder creates a Decoder over cur.
func NewDecoder(cur *cursor.Cursor, filter Filter) *Decoder {
	return &Decoder{
		cur:      cur,
		filter:   filter,
		decoded:  make(map[model.Kind]int64),
		rejected: make(map[Reason]int64),
	}
}

// Next returns the next record that passes the filter. It returns io.EOF
// when the source is exhausted or a payload is cut short. Any other error
// comes from the underlying reader.
func (d *Decoder) Next() (model.Record, error) {
	if d.done {
		return nil, io.EOF
	}

	for {
		tag, err := d.cur.ReadTag()
		if err != nil {
			return nil, d.end(err)
		}

		n, ok := PayloadLength(tag)
		if !ok {
			d.skippedBytes++
			continue
		}

		payload, err := d.cur.Next(n)
		if err == io.EOF {
			// The tag was the last byte.
			d.truncated = true
		}
		if err != nil {
			return nil, d.end(err)
		}

		rec, err := Decode(tag, payload)
		if err != nil {
			return nil, err
		}

		if err := d.filter.Check(rec); err != nil {
			var rej *RejectError
			if errors.As(err, &rej) {
				d.rejected[rej.Reason]++
			}
			continue
		}

		d.decoded[rec.Kind()]++
		return rec, nil
	}
}

// end maps a cursor error to the end of the stream. ErrShortRead from
// either a tag or a payload read marks the feed truncated.
func (d *Decoder) end(err error) error {
	switch {
	case errors.Is(err, cursor.ErrShortRead):
		d.truncated = true
	case err != io.EOF:
		return err
	}
	d.done = true
	return io.EOF
}

// Stats returns a snapshot of the decoder counters.
func (d *Decoder) Stats() Stats {
	s := Stats{
		Decoded:      make(map[model.Kind]int64, len(d.decoded)),
		Rejected:     make(map[Reason]int64, len(d.rejected)),
		SkippedBytes: d.skippedBytes,
		BytesRead:    d.cur.Offset(),
		Truncated:    d.truncated,
	}
	for k, v := range d.decoded {
		s.Decoded[k] = v
	}
	for k, v := range d.rejected {
		s.Rejected[k] = v
	}
	return s
}
