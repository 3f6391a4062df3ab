// Package progress renders the throttled status line shown on stderr
// during a scan. Reporting is best effort: if the process memory metric
// cannot be read, the update is silently skipped and the scan continues.
package progress
