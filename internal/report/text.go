package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/nao1215/modelcount/internal/model"
)

// TextWriter outputs the plain-text report format:
//
//	Unique models: <N>
//	<value>: <count>
//	...
//
// Lines are ordered by descending count, ties broken by ascending value.
// The format is byte-compatible with the C model_count tool; downstream
// scripts parse it.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in plain text.
func (w *TextWriter) Write(report *model.ScanReport) (int, error) {
	bw := bufio.NewWriter(w.output)

	total := 0
	n, err := fmt.Fprintf(bw, "Unique models: %d\n", report.UniqueModels)
	total += n
	if err != nil {
		return total, err
	}

	for _, vc := range report.Models {
		n, err := fmt.Fprintf(bw, "%s: %d\n", vc.Value, vc.Count)
		total += n
		if err != nil {
			return total, err
		}
	}

	return total, bw.Flush()
}
