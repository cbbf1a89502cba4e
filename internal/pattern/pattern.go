// Package pattern compiles the user's search expression once and evaluates it
// against individual lines.
//
// Matching is delegated to github.com/dlclark/regexp2. Unlike the standard
// library engine it can fail on a given input (for example when a match
// attempt exceeds MatchTimeout), so every evaluation returns an explicit
// Result alongside the error instead of a bare bool.
package pattern

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Options are fixed at compile time.
type Options struct {
	// IgnoreCase makes the pattern case-insensitive.
	IgnoreCase bool
	// NoCapture turns unnamed groups into non-capturing ones. Off unless
	// the CLI is given --no-capture, so backreferences keep working.
	NoCapture bool
	// MatchTimeout bounds a single match attempt. Zero means no limit.
	MatchTimeout time.Duration
}

// Result is the outcome of evaluating the pattern on one line.
type Result int

const (
	// NoMatch means the line was evaluated and does not match.
	NoMatch Result = iota
	// Matched means at least one match was found.
	Matched
	// Failed means the engine could not evaluate the line.
	Failed
)

// String returns the string representation of Result.
func (r Result) String() string {
	switch r {
	case NoMatch:
		return "no-match"
	case Matched:
		return "matched"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// CompileError reports a syntactically invalid expression.
type CompileError struct {
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// maxErrorLen caps the engine message in MatchError.Error. The engine quotes
// the whole input line, and lines have no length limit.
const maxErrorLen = 256

// MatchError reports an engine failure while evaluating a single line.
type MatchError struct {
	Err error
}

func (e *MatchError) Error() string {
	msg := e.Err.Error()
	if len(msg) > maxErrorLen {
		cut := maxErrorLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = fmt.Sprintf("%s... (%d bytes truncated)", msg[:cut], len(msg)-cut)
	}
	return "match failed: " + msg
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

// Span is a half-open byte range [Start, End) of a match within a line.
type Span struct {
	Start int
	End   int
}

// Pattern is an immutable compiled expression. It is safe for concurrent use
// by any number of goroutines.
type Pattern struct {
	expr string
	opts Options
	re   *regexp2.Regexp
}

// Compile parses expr with the given options. The syntax is ECMAScript:
// \d and \w are ASCII classes and octal escapes follow ECMAScript rules.
func Compile(expr string, opts Options) (*Pattern, error) {
	flags := regexp2.RegexOptions(regexp2.ECMAScript)
	if opts.IgnoreCase {
		flags |= regexp2.IgnoreCase
	}
	if opts.NoCapture {
		flags |= regexp2.ExplicitCapture
	}

	re, err := regexp2.Compile(expr, flags)
	if err != nil {
		return nil, &CompileError{Expr: expr, Err: err}
	}
	if opts.MatchTimeout > 0 {
		re.MatchTimeout = opts.MatchTimeout
	}

	return &Pattern{expr: expr, opts: opts, re: re}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// constant expressions.
func MustCompile(expr string, opts Options) *Pattern {
	p, err := Compile(expr, opts)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Pattern) String() string {
	return p.expr
}

// Options returns the options the pattern was compiled with.
func (p *Pattern) Options() Options {
	return p.opts
}

// Match reports whether line contains a match.
func (p *Pattern) Match(line string) (Result, error) {
	ok, err := p.re.MatchString(line)
	if err != nil {
		return Failed, &MatchError{Err: err}
	}
	if ok {
		return Matched, nil
	}
	return NoMatch, nil
}

// FindAll returns every non-overlapping match in line, left to right, as byte
// spans. Each search resumes at the end of the previous match; after an empty
// match the engine advances by one character. The result is Matched when at
// least one span was found.
func (p *Pattern) FindAll(line string) ([]Span, Result, error) {
	runes := []rune(line)
	m, err := p.re.FindRunesMatch(runes)
	if err != nil {
		return nil, Failed, &MatchError{Err: err}
	}
	if m == nil {
		return nil, NoMatch, nil
	}

	offsets := runeOffsets(line, len(runes))
	var spans []Span
	for m != nil {
		spans = append(spans, Span{
			Start: offsets[m.Index],
			End:   offsets[m.Index+m.Length],
		})
		m, err = p.re.FindNextMatch(m)
		if err != nil {
			return nil, Failed, &MatchError{Err: err}
		}
	}
	return spans, Matched, nil
}

// runeOffsets maps rune indexes of []rune(s) to byte offsets in s. Invalid
// UTF-8 bytes decode one byte at a time, exactly as the []rune conversion does,
// so the mapping stays exact for arbitrary input.
func runeOffsets(s string, n int) []int {
	offsets := make([]int, 0, n+1)
	for i := 0; i < len(s); {
		offsets = append(offsets, i)
		_, w := utf8.DecodeRuneInString(s[i:])
		i += w
	}
	return append(offsets, len(s))
}
