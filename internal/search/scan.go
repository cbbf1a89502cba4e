package search

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"github.com/harrison/grape/internal/pattern"
)

// scan is the per-file cursor. It lives for one Search call and is never
// shared between workers.
type scan struct {
	engine     *Engine
	name       string
	reader     *bufio.Reader
	line       string
	lineNum    int
	done       bool
	readFailed bool
}

// next advances to the following line. Lines have their trailing '\n'
// removed; a final line without a newline still counts. Lines are not length
// limited.
func (s *scan) next() bool {
	if s.done {
		return false
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.readFailed = true
			s.engine.stats.ReadErrors.Add(1)
			s.engine.log.Errorf("%s: read error after line %d: %v", s.name, s.lineNum, err)
			return false
		}
		if line == "" {
			return false
		}
	}

	s.lineNum++
	s.line = strings.TrimSuffix(line, "\n")
	return true
}

// matches evaluates the current line. A failed evaluation is reported and
// treated as a non-matching line.
func (s *scan) matches() bool {
	res, err := s.engine.pattern.Match(s.line)
	if res == pattern.Failed {
		s.lineFailed(err)
		return false
	}
	return res == pattern.Matched
}

func (s *scan) lineFailed(err error) {
	s.engine.stats.LineErrors.Add(1)
	s.engine.log.Errorf("%s:%d: %v", s.name, s.lineNum, err)
}

// Stats are run-wide counters updated concurrently by every worker.
type Stats struct {
	FilesSearched atomic.Int64
	FilesMatched  atomic.Int64
	MatchedLines  atomic.Int64
	OpenErrors    atomic.Int64
	LineErrors    atomic.Int64
	ReadErrors    atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	FilesSearched int64 `yaml:"files_searched"`
	FilesMatched  int64 `yaml:"files_matched"`
	MatchedLines  int64 `yaml:"matched_lines"`
	OpenErrors    int64 `yaml:"open_errors"`
	LineErrors    int64 `yaml:"line_errors"`
	ReadErrors    int64 `yaml:"read_errors"`
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		FilesSearched: s.FilesSearched.Load(),
		FilesMatched:  s.FilesMatched.Load(),
		MatchedLines:  s.MatchedLines.Load(),
		OpenErrors:    s.OpenErrors.Load(),
		LineErrors:    s.LineErrors.Load(),
		ReadErrors:    s.ReadErrors.Load(),
	}
}

// Errors is the total number of contained failures.
func (s Snapshot) Errors() int64 {
	return s.OpenErrors + s.LineErrors + s.ReadErrors
}
