package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrParse is the sentinel for unrecoverable scan failures: a string
// literal or container truncated by end of stream, or a \u escape without
// four hex digits. Callers match it with errors.Is.
var ErrParse = errors.New("parse error")

// Aggregator receives every decoded value for the target key.
// It is satisfied by *freq.Table.
type Aggregator interface {
	// Increment records one occurrence of value.
	Increment(value string)

	// Len returns the current number of distinct values.
	Len() int
}

// ProgressFunc is invoked after every emitted value with the running
// totals: values seen so far (including repeats), distinct values stored,
// and the current byte offset into the stream. Implementations are
// expected to throttle themselves; the scanner calls on every emission.
type ProgressFunc func(seen uint64, distinct int, offset int64)

// Option configures a Scanner.
type Option func(*Scanner)

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scanner) {
		s.progress = fn
	}
}

// Scanner extracts string values for one target key from a byte stream in
// a single forward pass. It is not safe for concurrent use; each stream
// gets its own Scanner.
type Scanner struct {
	r        *bufio.Reader
	key      string
	agg      Aggregator
	progress ProgressFunc

	offset int64
	seen   uint64
}

// New creates a Scanner that reads from r and forwards every string value
// of key to agg.
func New(r io.Reader, key string, agg Aggregator, opts ...Option) *Scanner {
	s := &Scanner{
		r:   bufio.NewReader(r),
		key: key,
		agg: agg,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ValuesSeen returns the number of values emitted so far, repeats included.
func (s *Scanner) ValuesSeen() uint64 {
	return s.seen
}

// Offset returns the number of bytes consumed so far.
func (s *Scanner) Offset() int64 {
	return s.offset
}

// Run scans the stream to completion. It returns nil on a clean end of
// stream, an error wrapping ErrParse when scanning cannot proceed, the
// context error if ctx is cancelled, or the underlying read error.
//
// The algorithm hunts for any double quote, decodes what follows as a
// candidate key, and requires a colon for the candidate to count. When
// the candidate equals the target key and the value is a string literal,
// the value is decoded and emitted; every other value is skipped without
// being decoded.
func (s *Scanner) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		b, err := s.readByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if b != '"' {
			continue
		}

		key, err := s.readString()
		if err != nil {
			return err
		}

		b, err = s.skipSpace()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if b != ':' {
			// Not a key after all. The non-colon byte has been
			// consumed, so a quote here does not open a new
			// candidate; scanning resumes with the next byte.
			continue
		}

		b, err = s.skipSpace()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Key with no value at end of stream is a
				// clean stop, not a failure.
				return nil
			}
			return err
		}

		if key == s.key && b == '"' {
			value, err := s.readString()
			if err != nil {
				return err
			}
			s.emit(value)
			continue
		}

		// Key mismatch, or the target key carries a non-string
		// value. Either way the value is discarded undecoded.
		if err := s.skipValue(b); err != nil {
			return err
		}
	}
}

// emit forwards one decoded value and reports progress.
func (s *Scanner) emit(value string) {
	s.seen++
	s.agg.Increment(value)
	if s.progress != nil {
		s.progress(s.seen, s.agg.Len(), s.offset)
	}
}

// readByte reads one byte and advances the offset.
func (s *Scanner) readByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}
	s.offset++
	return b, nil
}

// unreadByte pushes the last byte back so the outer loop sees it.
func (s *Scanner) unreadByte() {
	if err := s.r.UnreadByte(); err == nil {
		s.offset--
	}
}

// skipSpace consumes whitespace and returns the first non-space byte.
func (s *Scanner) skipSpace() (byte, error) {
	for {
		b, err := s.readByte()
		if err != nil {
			return 0, err
		}
		if !isSpace(b) {
			return b, nil
		}
	}
}

// readString decodes a string literal whose opening quote has already been
// consumed. Escape handling is lossy but total: the single-character JSON
// escapes decode to their literal equivalents, \uXXXX is syntax-checked
// and replaced by '?', and any other \X passes X through unchanged. Only
// truncation and malformed \u digits fail.
func (s *Scanner) readString() (string, error) {
	var sb strings.Builder

	for {
		b, err := s.readByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("unterminated string literal at byte %d: %w", s.offset, ErrParse)
			}
			return "", err
		}

		switch b {
		case '"':
			return sb.String(), nil
		case '\\':
			esc, err := s.readByte()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return "", fmt.Errorf("truncated escape sequence at byte %d: %w", s.offset, ErrParse)
				}
				return "", err
			}
			if esc == 'u' {
				// Four hex digits are required but the code
				// point is not decoded; a placeholder keeps
				// the decoding total without pulling in
				// UTF-16 surrogate handling.
				for i := 0; i < 4; i++ {
					h, err := s.readByte()
					if err != nil {
						if errors.Is(err, io.EOF) {
							return "", fmt.Errorf("truncated \\u escape at byte %d: %w", s.offset, ErrParse)
						}
						return "", err
					}
					if !isHexDigit(h) {
						return "", fmt.Errorf("invalid \\u escape digit %q at byte %d: %w", h, s.offset, ErrParse)
					}
				}
				sb.WriteByte('?')
				continue
			}
			sb.WriteByte(unescape(esc))
		default:
			sb.WriteByte(b)
		}
	}
}

// skipValue discards one value whose first byte has already been read.
func (s *Scanner) skipValue(first byte) error {
	switch {
	case first == '"':
		// String literal: decode and discard. Decoding failures
		// still abort the scan.
		_, err := s.readString()
		return err

	case first == '{' || first == '[':
		return s.skipContainer()

	default:
		return s.skipToken(first)
	}
}

// skipContainer consumes a balanced object or array whose opening brace or
// bracket has already been read. Braces and brackets inside string
// literals are ignored; escape sequences inside those literals are honored
// so an escaped quote does not end the literal.
func (s *Scanner) skipContainer() error {
	depth := 1
	inString := false
	escaped := false

	for depth > 0 {
		b, err := s.readByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("unterminated container at byte %d: %w", s.offset, ErrParse)
			}
			return err
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		}
	}

	return nil
}

// skipToken consumes a bare token (number, true, false, null, or anything
// else unrecognized) until a delimiter. A terminating comma or closing
// brace/bracket is pushed back for the outer loop; this path never fails,
// end of stream included.
func (s *Scanner) skipToken(first byte) error {
	b := first
	for {
		if b == ',' || b == '}' || b == ']' {
			s.unreadByte()
			return nil
		}
		if isSpace(b) {
			return nil
		}

		var err error
		b, err = s.readByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// isSpace matches the whitespace set of C's isspace.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isHexDigit(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'f':
		return true
	case b >= 'A' && b <= 'F':
		return true
	}
	return false
}

// unescape maps a single-character escape to its literal equivalent.
// Unrecognized escapes pass through unchanged.
func unescape(b byte) byte {
	switch b {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		// Covers '"', '\\', '/' and every unrecognized escape.
		return b
	}
}
