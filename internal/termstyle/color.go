// SPDX-License-Identifier: MIT
package termstyle

import (
	"github.com/liggitt/tabwriter"
	"github.com/muesli/termenv"
)

const (
	Reset = "\x1b[0m"
	Green = "\x1b[32m"
	Brown = "\x1b[33m"
	Red   = "\x1b[31m"
	Blue  = "\x1b[34m"

	// Semantic aliases used by table output.
	Healthy = Green
	Warn    = Brown
	Error   = Red
	Info    = Blue
)

// Colorize wraps a value in ANSI escapes when color output is enabled.
func Colorize(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	// Hide ANSI sequences from tabwriter width calculations so columns align.
	esc := string([]byte{tabwriter.Escape})
	return esc + color + esc + value + esc + Reset + esc
}

// Color is one of the sixteen console colors. The zero value leaves the
// terminal's current color unchanged.
type Color int

const (
	Default Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray
)

var colorNames = map[Color]string{
	Default:      "default",
	ColorBlack:   "black",
	ColorRed:     "red",
	ColorGreen:   "green",
	ColorYellow:  "yellow",
	ColorBlue:    "blue",
	ColorMagenta: "magenta",
	ColorCyan:    "cyan",
	ColorWhite:   "white",
	ColorGray:    "gray",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "default"
}

func (c Color) ansi() termenv.Color {
	switch c {
	case ColorBlack:
		return termenv.ANSIBlack
	case ColorRed:
		return termenv.ANSIRed
	case ColorGreen:
		return termenv.ANSIGreen
	case ColorYellow:
		return termenv.ANSIYellow
	case ColorBlue:
		return termenv.ANSIBlue
	case ColorMagenta:
		return termenv.ANSIMagenta
	case ColorCyan:
		return termenv.ANSICyan
	case ColorWhite:
		return termenv.ANSIBrightWhite
	case ColorGray:
		return termenv.ANSIBrightBlack
	default:
		return nil
	}
}

// Style renders text with the given foreground and background under profile.
// Styled output always ends with a reset, so styling never leaks into the
// next fragment. The Ascii profile returns text unchanged.
func Style(profile termenv.Profile, text string, fg, bg Color) string {
	if text == "" {
		return text
	}
	s := profile.String(text)
	if c := fg.ansi(); c != nil {
		s = s.Foreground(c)
	}
	if c := bg.ansi(); c != nil {
		s = s.Background(c)
	}
	return s.String()
}

// Profile picks the color profile for output: ANSI when enabled, Ascii otherwise.
func Profile(enabled bool) termenv.Profile {
	if enabled {
		return termenv.ANSI
	}
	return termenv.Ascii
}
