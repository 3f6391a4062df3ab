// Package database provides SQLite-based storage for finished scan
// reports. Each run is stored as one row in the scans table plus one row
// per distinct model value, so past runs can be listed and compared with
// the history command without re-scanning the inputs.
package database
