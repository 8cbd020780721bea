// Package writer emits the VWAP table to a sink.
//
// Sinks:
//   - CSV file or stdout, one row per instrument
//   - SQLite database file
//   - PostgreSQL via a pgx pool
//
// The database sinks store one row per (run, instrument, checkpoint) and
// never update an existing row. Absent cells are stored with a NULL vwap.
package writer
