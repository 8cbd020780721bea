// Package pipeline runs one session through decode, resolve and aggregate.
//
// A Pipeline owns every piece of mutable state for a run: the byte cursor,
// the decoder, the reference table and the staged execution and trade
// records. Phases run strictly in order:
//
//  1. decode: every record is read; add orders update the reference table,
//     executions and trades are staged
//  2. resolve: staged executions are joined against the now complete table
//  3. aggregate: resolved trades are swept into the VWAP table
//
// In concurrent mode the decode phase is split across two goroutines
// linked by a Buffer: one decodes, one stages. Only the staging goroutine
// writes the reference table, and resolve starts after both have exited.
package pipeline
