package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func printSuccess(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintln(w, green(fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintln(w, yellow(fmt.Sprintf(format, args...)))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printResult writes shell-evaluable assignments so scripts can capture the
// upload result with eval.
func printResult(w io.Writer, token, fileName string) {
	_, _ = fmt.Fprintf(w, "REDMINE_UPLOAD_FILE_TOKEN=%s\n", shellQuote(token))
	_, _ = fmt.Fprintf(w, "REDMINE_UPLOAD_FILE_NAME=%s\n", shellQuote(fileName))
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// progressStep is the percentage granularity used when not on a terminal.
const progressStep = 25

// progressPrinter renders upload progress. On a terminal it rewrites one
// line in place; elsewhere it prints a line every progressStep percent.
type progressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	name    string
	tty     bool
	lastPct int
	started bool
}

func newProgressPrinter(w io.Writer, name string, tty bool) *progressPrinter {
	return &progressPrinter{w: w, name: name, tty: tty, lastPct: -1}
}

func (p *progressPrinter) Update(written, total int64) {
	pct := 100
	if total > 0 {
		pct = int(written * 100 / total)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pct == p.lastPct {
		return
	}
	if !p.tty && pct < 100 && p.lastPct >= 0 && pct/progressStep == p.lastPct/progressStep {
		return
	}
	p.lastPct = pct
	p.started = true

	line := fmt.Sprintf("Uploading %q...  %3d%% (%s / %s)", p.name, pct,
		humanize.Bytes(uint64(written)), humanize.Bytes(uint64(total)))
	if p.tty {
		_, _ = fmt.Fprint(p.w, "\r"+line)
		return
	}
	_, _ = fmt.Fprintln(p.w, line)
}

// Done terminates the in-place line on a terminal.
func (p *progressPrinter) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty && p.started {
		_, _ = fmt.Fprintln(p.w)
	}
}
