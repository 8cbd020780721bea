// Package cursor implements the sequential byte reader the decoder consumes.
//
// A Cursor exposes exactly two reads: the next tag byte, and the next N
// payload bytes. A source that ends partway through an N-byte read reports
// ErrShortRead; callers treat that as end of data. Open wraps a file in a
// gzip reader when the file carries the gzip magic bytes.
package cursor
