package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogLevelFiltering verifies that messages are filtered based on log level
func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		name         string
		logLevel     string
		log          func(*ConsoleLogger)
		shouldAppear bool
	}{
		{name: "trace sees trace", logLevel: "trace", log: func(l *ConsoleLogger) { l.Tracef("msg") }, shouldAppear: true},
		{name: "debug blocks trace", logLevel: "debug", log: func(l *ConsoleLogger) { l.Tracef("msg") }, shouldAppear: false},
		{name: "debug sees debug", logLevel: "debug", log: func(l *ConsoleLogger) { l.Debugf("msg") }, shouldAppear: true},
		{name: "info blocks debug", logLevel: "info", log: func(l *ConsoleLogger) { l.Debugf("msg") }, shouldAppear: false},
		{name: "info sees info", logLevel: "info", log: func(l *ConsoleLogger) { l.Infof("msg") }, shouldAppear: true},
		{name: "warn blocks info", logLevel: "warn", log: func(l *ConsoleLogger) { l.Infof("msg") }, shouldAppear: false},
		{name: "warn sees warn", logLevel: "warn", log: func(l *ConsoleLogger) { l.Warnf("msg") }, shouldAppear: true},
		{name: "error blocks warn", logLevel: "error", log: func(l *ConsoleLogger) { l.Warnf("msg") }, shouldAppear: false},
		{name: "error sees error", logLevel: "error", log: func(l *ConsoleLogger) { l.Errorf("msg") }, shouldAppear: true},
		{name: "invalid level defaults to warn", logLevel: "loud", log: func(l *ConsoleLogger) { l.Infof("msg") }, shouldAppear: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.log(NewConsoleLogger(buf, tt.logLevel))
			assert.Equal(t, tt.shouldAppear, strings.Contains(buf.String(), "msg"))
		})
	}
}

func TestFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewConsoleLogger(buf, "debug")

	l.Errorf("unable to open %s: %s", "a.txt", "no such file")
	l.Debugf("worker %d done", 3)

	assert.Equal(t,
		"grape: unable to open a.txt: no such file\n"+
			"grape: [DEBUG] worker 3 done\n",
		buf.String())
}

func TestNormalizeLevel(t *testing.T) {
	assert.Equal(t, "debug", NewConsoleLogger(nil, " DEBUG ").Level())
	assert.Equal(t, "warn", NewConsoleLogger(nil, "").Level())
	assert.True(t, ValidLevel("Error"))
	assert.False(t, ValidLevel("verbose"))
}

func TestNilWriterIsSilent(t *testing.T) {
	l := NewConsoleLogger(nil, "trace")
	assert.NotPanics(t, func() { l.Errorf("nothing") })
}

func TestConcurrentLinesStayWhole(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewConsoleLogger(buf, "warn")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Warnf("worker-%d line-%d", i, j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 500)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "grape: worker-"), line)
	}
}
