package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Token marks the role of a piece of rendered text.
type Token int

const (
	// TokenPath wraps a file path.
	TokenPath Token = iota
	// TokenSeparator wraps the ':' between prefix fields.
	TokenSeparator
	// TokenLineNumber wraps a line number.
	TokenLineNumber
	// TokenMatch wraps a matched span inside a line.
	TokenMatch
)

// Styler decorates text according to its token. Implementations must be safe
// for concurrent use.
type Styler interface {
	Style(tok Token, text string) string
}

// PlainStyler returns text unchanged.
type PlainStyler struct{}

// Style implements Styler.
func (PlainStyler) Style(_ Token, text string) string {
	return text
}

// ColorStyler maps tokens to terminal colours.
type ColorStyler struct {
	colors map[Token]*color.Color
}

// NewColorStyler builds the default palette: magenta paths, cyan separators,
// red line numbers and bold red matches. With force set, colours are emitted
// even when fatih/color has detected a non-terminal or NO_COLOR.
func NewColorStyler(force bool) *ColorStyler {
	colors := map[Token]*color.Color{
		TokenPath:       color.New(color.FgMagenta),
		TokenSeparator:  color.New(color.FgCyan),
		TokenLineNumber: color.New(color.FgRed),
		TokenMatch:      color.New(color.FgRed, color.Bold),
	}
	if force {
		for _, c := range colors {
			c.EnableColor()
		}
	}
	return &ColorStyler{colors: colors}
}

// Style implements Styler.
func (s *ColorStyler) Style(tok Token, text string) string {
	if text == "" {
		return text
	}
	if c, ok := s.colors[tok]; ok {
		return c.Sprint(text)
	}
	return text
}

// ColorPolicy controls when colour is used.
type ColorPolicy string

const (
	ColorAuto   ColorPolicy = "auto"
	ColorAlways ColorPolicy = "always"
	ColorNever  ColorPolicy = "never"
)

// ParseColorPolicy validates a --color value.
func ParseColorPolicy(s string) (ColorPolicy, error) {
	switch p := ColorPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ColorAuto, ColorAlways, ColorNever:
		return p, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color policy %q, must be one of: auto, always, never", s)
	}
}

// StylerFor returns the Styler for the policy when writing to out. In auto
// mode colour is used only when out is a terminal and NO_COLOR is unset.
func StylerFor(policy ColorPolicy, out *os.File) Styler {
	switch policy {
	case ColorAlways:
		return NewColorStyler(true)
	case ColorNever:
		return PlainStyler{}
	}
	if out == nil || color.NoColor {
		return PlainStyler{}
	}
	fd := out.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return NewColorStyler(true)
	}
	return PlainStyler{}
}
