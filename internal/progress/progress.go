package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// statmPath is the Linux per-process memory statistics file. The second
// field is the resident set size in pages.
const statmPath = "/proc/self/statm"

// Reporter writes a single carriage-return status line with the scan's
// running totals, throttled to one update per interval.
//
// Reporter is safe for concurrent use: the status line and log output
// share stderr, and the log handler interrupts the line from whatever
// goroutine is logging.
type Reporter struct {
	mu sync.Mutex

	out      io.Writer
	total    int64
	interval time.Duration
	printer  *message.Printer

	start    time.Time
	last     time.Time
	lastSeen uint64
	printed  bool

	// now and memPath are swapped out by tests.
	now     func() time.Time
	memPath string
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithOutput redirects the status line away from stderr.
func WithOutput(w io.Writer) Option {
	return func(r *Reporter) {
		r.out = w
	}
}

// WithInterval overrides the report throttle interval.
func WithInterval(d time.Duration) Option {
	return func(r *Reporter) {
		r.interval = d
	}
}

// NewReporter creates a Reporter for an input of total bytes. A total of
// zero disables the percentage column. The default interval is 5 seconds.
func NewReporter(total int64, opts ...Option) *Reporter {
	r := &Reporter{
		out:      os.Stderr,
		total:    total,
		interval: 5 * time.Second,
		printer:  message.NewPrinter(language.English),
		now:      time.Now,
		memPath:  statmPath,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.start = r.now()
	r.last = r.start

	return r
}

// Report renders one status update if the throttle interval has elapsed.
// seen is the number of values emitted so far, distinct the number of
// unique values, and offset the bytes consumed. Failure to read the
// memory metric skips the update without error.
func (r *Reporter) Report(seen uint64, distinct int, offset int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.last) < r.interval {
		return
	}

	rss, ok := residentSetBytes(r.memPath)
	if !ok {
		return
	}

	pct := 0.0
	if r.total > 0 && offset >= 0 {
		pct = 100.0 * float64(offset) / float64(r.total)
		if pct > 100.0 {
			pct = 100.0
		}
	}

	elapsed := now.Sub(r.last).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(seen-r.lastSeen) / elapsed
	}

	r.printer.Fprintf(r.out,
		"\r%.2f%% processed, %d models, unique %d, RSS %.2f MB, speed %.0f models/s",
		pct, seen, distinct, float64(rss)/(1024.0*1024.0), rate)

	r.last = now
	r.lastSeen = seen
	r.printed = true
}

// Interrupt terminates a pending status line so other output can use the
// stream. The next Report starts a fresh line. Used by the log handler
// before it emits a record to the same stream.
func (r *Reporter) Interrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.printed {
		fmt.Fprintln(r.out)
		r.printed = false
	}
}

// Finish ends the status line with a newline if one was ever printed.
func (r *Reporter) Finish() {
	r.Interrupt()
}

// residentSetBytes reads the process RSS from the statm file.
// It reports false when the file is unavailable or malformed, which
// callers treat as "skip this update".
func residentSetBytes(path string) (int64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0, false
	}

	var pages int64
	if _, err := fmt.Sscanf(fields[1], "%d", &pages); err != nil {
		return 0, false
	}

	return pages * int64(os.Getpagesize()), true
}
