package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/modelcount/internal/freq"
)

// scan runs a scanner over input with the target key "model" and returns
// the resulting table, the emission count, and the scan error.
func scan(t *testing.T, input string) (*freq.Table, uint64, error) {
	t.Helper()

	table := freq.New()
	sc := New(strings.NewReader(input), "model", table)
	err := sc.Run(context.Background())
	return table, sc.ValuesSeen(), err
}

// wantCount fails the test unless table stores value with count.
func wantCount(t *testing.T, table *freq.Table, value string, count uint64) {
	t.Helper()

	got, ok := table.Get(value)
	if !ok {
		t.Errorf("expected value %q to be stored, but it is missing", value)
		return
	}
	if got != count {
		t.Errorf("expected count %d for value %q, got %d", count, value, got)
	}
}

func TestScannerWellFormedObjects(t *testing.T) {
	t.Parallel()

	input := `[{"id":1,"model":"RDV2","serial":"A"},{"id":2,"model":"ABC","serial":"B"},{"id":3,"model":"RDV2","serial":"C"}]`

	table, seen, err := scan(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != 3 {
		t.Errorf("expected 3 emitted values, got %d", seen)
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 distinct values, got %d", table.Len())
	}
	wantCount(t, table, "RDV2", 2)
	wantCount(t, table, "ABC", 1)
}

func TestScannerNestedKeyIsRecognized(t *testing.T) {
	t.Parallel()

	// The scanner is structure-agnostic: a model key under a different
	// parent key is still counted.
	input := `[{"id":1,"serial":"A"},{"id":2,"model":"XYZ","serial":"B"},{"id":3,"nested":{"model":"RDV2"},"serial":"C"}]`

	table, seen, err := scan(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != 2 {
		t.Errorf("expected 2 emitted values, got %d", seen)
	}
	wantCount(t, table, "XYZ", 1)
	wantCount(t, table, "RDV2", 1)
}

func TestScannerNonStringValueIsIgnored(t *testing.T) {
	t.Parallel()

	input := `[{"model":"RDV2"},{"model":123},{"model":"RDV2"},{"model":"ABC"}]`

	table, seen, err := scan(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != 3 {
		t.Errorf("expected 3 emitted values, got %d", seen)
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 distinct values, got %d", table.Len())
	}
	wantCount(t, table, "RDV2", 2)
	wantCount(t, table, "ABC", 1)
}

func TestScannerSkipsNonStringValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "number", input: `{"model":42}`},
		{name: "float", input: `{"model":-3.5e10}`},
		{name: "true", input: `{"model":true}`},
		{name: "false", input: `{"model":false}`},
		{name: "null", input: `{"model":null}`},
		{name: "object", input: `{"model":{"name":"x"}}`},
		{name: "array", input: `{"model":["a","b"]}`},
		{name: "garbage token", input: `{"model":@@wat@@}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, seen, err := scan(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen != 0 {
				t.Errorf("expected 0 emitted values, got %d", seen)
			}
			if table.Len() != 0 {
				t.Errorf("expected empty table, got %d entries", table.Len())
			}
		})
	}
}

func TestScannerValueAfterSkippedValue(t *testing.T) {
	t.Parallel()

	// The delimiter ending a skipped bare token is pushed back, so the
	// following pair must still be found.
	input := `{"model":123,"model":"X","model":456}`

	table, seen, err := scan(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != 1 {
		t.Errorf("expected 1 emitted value, got %d", seen)
	}
	wantCount(t, table, "X", 1)
}

func TestScannerEscapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "quote", input: `{"model":"a\"b"}`, want: `a"b`},
		{name: "backslash", input: `{"model":"a\\b"}`, want: `a\b`},
		{name: "slash", input: `{"model":"a\/b"}`, want: "a/b"},
		{name: "backspace", input: `{"model":"a\bb"}`, want: "a\bb"},
		{name: "formfeed", input: `{"model":"a\fb"}`, want: "a\fb"},
		{name: "newline", input: `{"model":"a\nb"}`, want: "a\nb"},
		{name: "carriage return", input: `{"model":"a\rb"}`, want: "a\rb"},
		{name: "tab", input: `{"model":"a\tb"}`, want: "a\tb"},
		{name: "unicode escape becomes placeholder", input: `{"model":"a\u0041b"}`, want: "a?b"},
		{name: "unknown escape passes through", input: `{"model":"a\xb"}`, want: "axb"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, _, err := scan(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			wantCount(t, table, tt.want, 1)
		})
	}
}

func TestScannerEscapedQuoteInsideContainer(t *testing.T) {
	t.Parallel()

	// Braces inside string literals must not affect nesting depth, and
	// escaped quotes must not end the literal early.
	input := `{"other":{"s":"}]\"{["},"model":"ok"}`

	table, seen, err := scan(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != 1 {
		t.Errorf("expected 1 emitted value, got %d", seen)
	}
	wantCount(t, table, "ok", 1)
}

func TestScannerParseFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "unterminated key", input: `{"model`},
		{name: "unterminated value", input: `{"model":"RD`},
		{name: "truncated escape", input: `{"model":"RD\`},
		{name: "truncated unicode escape", input: `{"model":"a\u00`},
		{name: "non-hex unicode digits", input: `{"model":"a\u00ZZ"}`},
		{name: "unterminated skipped string", input: `{"other":"RD`},
		{name: "unterminated object", input: `{"other":{"a":1`},
		{name: "unterminated array", input: `{"other":[1,2`},
		{name: "stray quote at end", input: `{"a":1} "`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := scan(t, tt.input)
			if !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestScannerCleanEndOfStream(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "no quotes at all", input: "1234 [] {} ,,,"},
		{name: "key then end", input: `{"model"`},
		{name: "key colon then end", input: `{"model":`},
		{name: "key colon whitespace then end", input: `{"model":   `},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, seen, err := scan(t, tt.input)
			if err != nil {
				t.Errorf("expected clean stop, got error: %v", err)
			}
			if seen != 0 || table.Len() != 0 {
				t.Errorf("expected no emissions, got seen=%d len=%d", seen, table.Len())
			}
		})
	}
}

func TestScannerToleratesLooseInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantSeen uint64
	}{
		{
			name:     "concatenated documents",
			input:    `{"model":"a"}{"model":"b"}`,
			wantSeen: 2,
		},
		{
			name:     "surrounding garbage",
			input:    `%%% noise "model": "a" more noise`,
			wantSeen: 1,
		},
		{
			name:     "quote without colon is not a key",
			input:    `["model","model"] {"model":"a"}`,
			wantSeen: 1,
		},
		{
			name:     "whitespace around colon",
			input:    "{\"model\" \t\n : \r \"a\"}",
			wantSeen: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, seen, err := scan(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen != tt.wantSeen {
				t.Errorf("expected %d emitted values, got %d", tt.wantSeen, seen)
			}
		})
	}
}

func TestScannerEmptyValue(t *testing.T) {
	t.Parallel()

	table, seen, err := scan(t, `{"model":""}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != 1 {
		t.Errorf("expected 1 emitted value, got %d", seen)
	}
	wantCount(t, table, "", 1)
}

func TestScannerCustomTargetKey(t *testing.T) {
	t.Parallel()

	table := freq.New()
	input := `{"model":"ignored","device":"kept"}`
	sc := New(strings.NewReader(input), "device", table)

	if err := sc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.ValuesSeen() != 1 {
		t.Errorf("expected 1 emitted value, got %d", sc.ValuesSeen())
	}
	wantCount(t, table, "kept", 1)
	if _, ok := table.Get("ignored"); ok {
		t.Error("value of non-target key must not be stored")
	}
}

func TestScannerOffsetTracksConsumedBytes(t *testing.T) {
	t.Parallel()

	input := `{"model":"a","n":1}`
	table := freq.New()
	sc := New(strings.NewReader(input), "model", table)

	if err := sc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Offset() != int64(len(input)) {
		t.Errorf("expected offset %d, got %d", len(input), sc.Offset())
	}
}

func TestScannerProgressCallback(t *testing.T) {
	t.Parallel()

	type call struct {
		seen     uint64
		distinct int
		offset   int64
	}
	var calls []call

	table := freq.New()
	input := `{"model":"a"}{"model":"b"}{"model":"a"}`
	sc := New(strings.NewReader(input), "model", table,
		WithProgress(func(seen uint64, distinct int, offset int64) {
			calls = append(calls, call{seen: seen, distinct: distinct, offset: offset})
		}))

	if err := sc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The callback fires on every emission; throttling is the
	// callback's own concern.
	if len(calls) != 3 {
		t.Fatalf("expected 3 progress calls, got %d", len(calls))
	}
	for i, c := range calls {
		if c.seen != uint64(i+1) {
			t.Errorf("call %d: expected seen %d, got %d", i, i+1, c.seen)
		}
	}
	if calls[2].distinct != 2 {
		t.Errorf("expected 2 distinct values in last call, got %d", calls[2].distinct)
	}
	if calls[0].offset <= 0 || calls[0].offset > calls[2].offset {
		t.Errorf("offsets must be positive and non-decreasing: %+v", calls)
	}
}

func TestScannerCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table := freq.New()
	sc := New(strings.NewReader(`{"model":"a"}`), "model", table)

	if err := sc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
