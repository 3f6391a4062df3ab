// Package config provides configuration structures and utilities for
// modelcount. It defines the scan options assembled from CLI flags and the
// optional YAML configuration file, plus the XDG paths used for the scan
// history database.
package config
