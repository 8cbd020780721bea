// Package resolver turns decoded trade and execution records into
// resolved trades.
//
// Trade messages already carry stock, price and shares and pass through.
// Executions are hash-joined on their order reference against a complete
// reference.Table:
//   - Order Executed takes stock and price from the table entry
//   - Order Executed with Price takes stock from the entry and its own price
//
// In both cases shares come from the execution. Executions with no entry,
// or whose entry is unresolvable, are dropped and counted.
package resolver
