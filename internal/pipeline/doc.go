// Package pipeline runs counting scans over one or more input files.
//
// Each file is scanned by exactly one goroutine with its own frequency
// table, preserving the single-threaded scanning model per stream. When
// several files are given, scans run concurrently under an errgroup limit
// and the per-file tables are merged into one result after each scan
// completes. A parse failure in any file cancels the whole run; there are
// no retries.
package pipeline
