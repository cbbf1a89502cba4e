// Package search scans individual files for a compiled pattern and renders
// the result through the run's output mode.
package search

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/harrison/grape/internal/logger"
	"github.com/harrison/grape/internal/output"
	"github.com/harrison/grape/internal/pattern"
)

// StdinPath names standard input as a search target.
const StdinPath = "-"

// stdinLabel is printed in place of "-" for standard input.
const stdinLabel = "(standard input)"

// WorkItem is one file queued for exactly one worker. ID is assigned by the
// producer and passed through untouched.
type WorkItem struct {
	ID   int
	Path string
}

// Logger is the diagnostic channel used by the engine.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Engine holds the read-only configuration shared by every worker: the
// compiled pattern, the output mode, the display options and the handles to
// the shared sink and diagnostic channel.
type Engine struct {
	pattern *pattern.Pattern
	mode    output.Mode
	display output.DisplayOptions
	sink    *output.Sink
	styler  output.Styler
	log     Logger
	stats   *Stats
	stdin   io.Reader
}

// Config bundles the engine dependencies.
type Config struct {
	Pattern *pattern.Pattern
	Mode    output.Mode
	Display output.DisplayOptions
	Sink    *output.Sink
	// Styler defaults to output.PlainStyler.
	Styler output.Styler
	// Logger defaults to discarding diagnostics.
	Logger Logger
	// Stdin is read when a WorkItem names StdinPath. Defaults to os.Stdin.
	Stdin io.Reader
}

// NewEngine builds an Engine. Pattern and Sink are required.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Pattern == nil {
		return nil, errors.New("search engine requires a compiled pattern")
	}
	if cfg.Sink == nil {
		return nil, errors.New("search engine requires an output sink")
	}
	if cfg.Styler == nil {
		cfg.Styler = output.PlainStyler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}

	return &Engine{
		pattern: cfg.Pattern,
		mode:    cfg.Mode,
		display: cfg.Display,
		sink:    cfg.Sink,
		styler:  cfg.Styler,
		log:     cfg.Logger,
		stats:   &Stats{},
		stdin:   cfg.Stdin,
	}, nil
}

// Stats returns the counters accumulated by every Search call so far.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// Mode returns the active output mode.
func (e *Engine) Mode() output.Mode {
	return e.mode
}

// Search processes one file end to end. Failures to open or read the file and
// per-line match failures are reported on the diagnostic channel; nothing is
// returned.
func (e *Engine) Search(item WorkItem) {
	if item.Path == StdinPath {
		e.SearchReader(stdinLabel, e.stdin)
		return
	}

	f, err := os.Open(item.Path)
	if err != nil {
		e.stats.OpenErrors.Add(1)
		e.log.Errorf("unable to open %s: %v", item.Path, unwrapPathError(err))
		return
	}
	defer f.Close()

	e.SearchReader(item.Path, f)
}

// SearchReader runs the active mode over r, labelling output with name.
func (e *Engine) SearchReader(name string, r io.Reader) {
	e.stats.FilesSearched.Add(1)

	sc := &scan{
		engine: e,
		name:   name,
		reader: bufio.NewReader(r),
	}

	switch e.mode {
	case output.Normal:
		e.normal(sc)
	case output.CountLines:
		e.countLines(sc)
	case output.FileNameIfMatch:
		e.fileNameIfMatch(sc)
	case output.FileNameIfNoMatch:
		e.fileNameIfNoMatch(sc)
	default:
		e.log.Errorf("%s: unsupported output mode %d", name, e.mode)
	}
}

// normal renders every matching line into a private buffer and writes the
// whole buffer once, so one file's lines are never interleaved with another's.
func (e *Engine) normal(sc *scan) {
	var buf bytes.Buffer
	matched := 0

	for sc.next() {
		spans, res, err := e.pattern.FindAll(sc.line)
		if res == pattern.Failed {
			sc.lineFailed(err)
			continue
		}
		if res != pattern.Matched {
			continue
		}
		matched++
		e.renderLine(&buf, sc.name, sc.lineNum, sc.line, spans)
	}

	e.finish(matched)
	if buf.Len() > 0 {
		e.sink.Write(buf.Bytes())
	}
}

func (e *Engine) countLines(sc *scan) {
	matched := 0
	for sc.next() {
		if sc.matches() {
			matched++
		}
	}

	e.finish(matched)

	var b strings.Builder
	e.writePrefix(&b, sc.name)
	b.WriteString(strconv.Itoa(matched))
	b.WriteByte('\n')
	e.sink.WriteString(b.String())
}

// fileNameIfMatch stops reading at the first matching line.
func (e *Engine) fileNameIfMatch(sc *scan) {
	for sc.next() {
		if sc.matches() {
			e.finish(1)
			e.sink.WriteString(e.styler.Style(output.TokenPath, sc.name) + "\n")
			return
		}
	}
	e.finish(0)
}

func (e *Engine) fileNameIfNoMatch(sc *scan) {
	matched := 0
	for sc.next() {
		if sc.matches() {
			matched++
		}
	}

	e.finish(matched)
	if matched == 0 && !sc.readFailed {
		e.sink.WriteString(e.styler.Style(output.TokenPath, sc.name) + "\n")
	}
}

func (e *Engine) finish(matchedLines int) {
	if matchedLines > 0 {
		e.stats.FilesMatched.Add(1)
		e.stats.MatchedLines.Add(int64(matchedLines))
	}
}

// renderLine writes one matching line: optional path and line-number prefix,
// the unmatched spans verbatim and each matched span wrapped in TokenMatch.
func (e *Engine) renderLine(buf *bytes.Buffer, name string, lineNum int, line string, spans []pattern.Span) {
	e.writePrefix(buf, name)
	if e.display.ShowLineNumber {
		buf.WriteString(e.styler.Style(output.TokenLineNumber, strconv.Itoa(lineNum)))
		buf.WriteString(e.styler.Style(output.TokenSeparator, ":"))
	}

	cur := 0
	for _, s := range spans {
		buf.WriteString(line[cur:s.Start])
		if s.End > s.Start {
			buf.WriteString(e.styler.Style(output.TokenMatch, line[s.Start:s.End]))
		}
		cur = s.End
	}
	buf.WriteString(line[cur:])
	buf.WriteByte('\n')
}

func (e *Engine) writePrefix(w io.StringWriter, name string) {
	if !e.display.ShowFileName {
		return
	}
	w.WriteString(e.styler.Style(output.TokenPath, name))
	w.WriteString(e.styler.Style(output.TokenSeparator, ":"))
}

func unwrapPathError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
