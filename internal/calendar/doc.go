// Package calendar maps a session date and checkpoints onto exchange
// wall-clock time.
//
// It wraps scmhub/calendar. When the requested MIC is unknown the session
// falls back to a Monday to Friday calendar in America/New_York.
package calendar
