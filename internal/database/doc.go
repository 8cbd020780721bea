// Package database opens the PostgreSQL connection pool used by the
// postgres table sink.
package database
