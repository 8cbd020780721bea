// Package model defines shared data types used across the VWAP pipeline.
//
// Conventions:
//   - Prices: raw fixed-point integers scaled by 10^4 (1,500,000 = $150.00)
//   - Timestamps: uint64 nanoseconds since session midnight
//   - Shares: unsigned quantities as carried on the wire
//   - Stock: symbol with trailing space padding removed
package model
