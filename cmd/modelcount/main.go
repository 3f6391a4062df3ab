// Package main provides the entry point for the modelcount CLI.
//
// modelcount streams huge JSON-like files and counts the occurrences of
// string values stored under a target key (by default "model"), printing
// a frequency report when the scan completes.
//
// Usage:
//
//	modelcount <file.json>
//	modelcount --json <file.json> <more.json>
//
// See --help for all available options.
package main

// main is the entry point for modelcount.
func main() {
	Execute()
}
