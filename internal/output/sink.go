package output

import (
	"io"
	"sync"
)

// Sink is the process-wide destination for match output. Every Write is
// performed under one mutex so a record is never split by another worker.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSink wraps w. A nil writer discards everything.
func NewSink(w io.Writer) *Sink {
	if w == nil {
		w = io.Discard
	}
	return &Sink{w: w}
}

// Write writes p as one unit.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// WriteString writes str as one unit.
func (s *Sink) WriteString(str string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.WriteString(s.w, str)
}
