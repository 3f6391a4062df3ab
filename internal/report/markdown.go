package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/modelcount/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeModels(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Model Count Report")
	md.PlainText("")

	inputs := ""
	for i, in := range report.Inputs {
		if i > 0 {
			inputs += ", "
		}
		inputs += "`" + in + "`"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Input", inputs},
			{"Target key", "`" + report.TargetKey + "`"},
			{"Scanned at", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.String()},
			{"Models seen", strconv.FormatUint(report.ModelsSeen, 10)},
			{"Unique models", strconv.Itoa(report.UniqueModels)},
		},
	})
	md.PlainText("")
}

// writeModels writes the per-value frequency table.
func (w *MarkdownWriter) writeModels(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Models")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Models))
	for _, vc := range report.Models {
		rows = append(rows, []string{vc.Value, strconv.FormatUint(vc.Count, 10)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Model", "Count"},
		Rows:   rows,
	})
}
