// SPDX-License-Identifier: MIT

// Package console provides an ordered, goroutine-safe output channel for
// colored text. Producers enqueue whole batches; a single consumer renders
// them so batches from different goroutines never interleave.
package console

import (
	"fmt"
	"slices"
	"strings"

	"github.com/skaphos/gitsync/internal/termstyle"
)

// Fragment is a run of text with optional foreground and background colors.
type Fragment struct {
	Text string
	Fg   termstyle.Color
	Bg   termstyle.Color
}

// Batch is an ordered list of fragments rendered contiguously.
type Batch []Fragment

// Text appends an uncolored fragment.
func (b *Batch) Text(text string) *Batch {
	return b.Style(text, termstyle.Default, termstyle.Default)
}

// Textf appends an uncolored formatted fragment.
func (b *Batch) Textf(format string, args ...any) *Batch {
	return b.Text(fmt.Sprintf(format, args...))
}

// Color appends a fragment with a foreground color.
func (b *Batch) Color(text string, fg termstyle.Color) *Batch {
	return b.Style(text, fg, termstyle.Default)
}

// Style appends a fragment with foreground and background colors.
func (b *Batch) Style(text string, fg, bg termstyle.Color) *Batch {
	*b = append(*b, Fragment{Text: text, Fg: fg, Bg: bg})
	return b
}

// Plain returns the batch text without styling.
func (b Batch) Plain() string {
	var sb strings.Builder
	for _, f := range b {
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// Clone returns an independent copy of the batch.
func (b Batch) Clone() Batch {
	return slices.Clone(b)
}
