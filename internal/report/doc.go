// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - TextWriter: the classic terminal output ("Unique models: N" plus
//     one "value: count" line per distinct value)
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: markdown tables for documentation and sharing
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-destination output.
package report
