package livecheck

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"golang.org/x/term"
)

// clearScreen moves the cursor home and erases the display.
const clearScreen = "\033[H\033[2J"

// Renderer presents a snapshot of the status table.
//
// Render is called from a single goroutine at the configured render
// interval, and once more with the final snapshot when the run ends.
type Renderer interface {
	Render(entries []Entry) error
}

// RendererFunc adapts an ordinary function to the [Renderer] interface.
type RendererFunc func(entries []Entry) error

// Render calls f(entries).
func (f RendererFunc) Render(entries []Entry) error {
	return f(entries)
}

// TableRenderer prints one row per name in load order:
//
//	alice:	Live	Speedrunning any%
//	bob:  	Offline
//
// The name and its colon are padded to the longest name so the state column
// lines up. When the writer is a terminal each frame replaces the previous
// one; otherwise frames are appended.
type TableRenderer struct {
	mu    sync.Mutex
	w     io.Writer
	clear bool
}

// NewTableRenderer creates a [TableRenderer] writing to w.
func NewTableRenderer(w io.Writer) *TableRenderer {
	return &TableRenderer{w: w, clear: isTerminal(w)}
}

// Render writes one frame. The frame is written with a single Write call.
func (r *TableRenderer) Render(entries []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	width := 0
	for _, e := range entries {
		if n := utf8.RuneCountInString(e.Name) + 1; n > width {
			width = n
		}
	}

	var buf bytes.Buffer
	if r.clear {
		buf.WriteString(clearScreen)
	}
	for _, e := range entries {
		fmt.Fprintf(&buf, "%-*s\t%s", width, e.Name+":", e.State.Label())
		if e.State == StateLive && e.Tag != "" {
			fmt.Fprintf(&buf, "\t%s", e.Tag)
		}
		buf.WriteByte('\n')
	}

	_, err := r.w.Write(buf.Bytes())
	return err
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
