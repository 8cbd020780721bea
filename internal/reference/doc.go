// Package reference holds the order-reference table used to resolve
// executions.
//
// Each valid Add Order stores (stock, price) under its reference number,
// replacing any earlier entry for the same reference. Entries are never
// removed during a session.
package reference
