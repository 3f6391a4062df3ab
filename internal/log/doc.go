// Package log provides slog handler plumbing for modelcount.
//
// The scan progress line and log records share stderr. StatusHandler
// wraps another slog.Handler and interrupts any pending carriage-return
// status line before each record is emitted, so log output never lands in
// the middle of the progress display.
package log
