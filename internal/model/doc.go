// Package model defines the data structures shared across the application.
// It contains the report types produced by a counting run and consumed by
// the report writers and the history database.
package model
