// Package itch decodes and encodes the five supported ITCH-style messages.
//
// Wire format: a 1-byte tag followed by a fixed-length big-endian payload.
//
//	A  Add Order                 35 bytes
//	F  Add Order with MPID       35 bytes (MPID not modeled)
//	E  Order Executed            30 bytes
//	C  Order Executed with Price 35 bytes
//	P  Trade                     43 bytes
//
// Any other tag is skipped one byte at a time; its payload length is not
// known, so the byte after it is read as the next tag. A payload cut short
// by the end of the source ends the stream.
//
// Decoded records pass a per-kind plausibility filter before they are
// returned. Rejected records are counted in Stats and never surfaced.
package itch
