package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "normal", want: Normal},
		{in: "COUNT", want: CountLines},
		{in: " files-with-matches ", want: FileNameIfMatch},
		{in: "files-without-match", want: FileNameIfNoMatch},
		{in: "bogus", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Mode {
	t.Helper()
	m, err := ParseMode(s)
	require.NoError(t, err)
	return m
}

func TestModeFromFlags(t *testing.T) {
	m, err := ModeFromFlags(false, false, false)
	require.NoError(t, err)
	assert.Equal(t, Normal, m)

	m, err = ModeFromFlags(true, false, false)
	require.NoError(t, err)
	assert.Equal(t, CountLines, m)

	m, err = ModeFromFlags(false, true, false)
	require.NoError(t, err)
	assert.Equal(t, FileNameIfMatch, m)

	m, err = ModeFromFlags(false, false, true)
	require.NoError(t, err)
	assert.Equal(t, FileNameIfNoMatch, m)

	_, err = ModeFromFlags(true, false, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--count")
	assert.Contains(t, err.Error(), "--files-without-match")
}

func TestColorStylerWrapsTokens(t *testing.T) {
	s := NewColorStyler(true)

	styled := s.Style(TokenMatch, "abc")
	assert.NotEqual(t, "abc", styled)
	assert.Contains(t, styled, "abc")
	assert.True(t, strings.HasPrefix(styled, "\x1b["))

	assert.Equal(t, "", s.Style(TokenPath, ""))
	assert.Equal(t, "x", PlainStyler{}.Style(TokenMatch, "x"))
}

func TestParseColorPolicy(t *testing.T) {
	for in, want := range map[string]ColorPolicy{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"Always": ColorAlways,
		"never":  ColorNever,
	} {
		got, err := ParseColorPolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseColorPolicy("sometimes")
	assert.Error(t, err)
}

func TestStylerFor(t *testing.T) {
	assert.IsType(t, PlainStyler{}, StylerFor(ColorNever, nil))
	assert.IsType(t, &ColorStyler{}, StylerFor(ColorAlways, nil))
	// A nil file can never be a terminal.
	assert.IsType(t, PlainStyler{}, StylerFor(ColorAuto, nil))
}

func TestSinkKeepsRecordsWhole(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)

	const writers = 8
	const records = 200
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			record := strings.Repeat(string(rune('a'+w)), 64) + "\n"
			for i := 0; i < records; i++ {
				_, err := sink.WriteString(record)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, writers*records)
	for _, line := range lines {
		require.Len(t, line, 64)
		assert.Equal(t, strings.Repeat(line[:1], 64), line)
	}
}

func TestNilSinkDiscards(t *testing.T) {
	n, err := NewSink(nil).Write([]byte("ignored"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
