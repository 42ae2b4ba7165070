// Package progress renders a textual progress bar that many workers can tick at once.
package progress

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultWidth is used when the terminal width cannot be determined.
const DefaultWidth = 50

// Ticker is notified once per finished unit of work.
type Ticker interface {
	Tick()
}

// Bar is a mutex-guarded progress bar. Redraws are throttled; the last tick always renders.
type Bar struct {
	mu     sync.Mutex
	w      io.Writer
	total  int
	done   int
	width  int
	pip    string
	redraw rate.Sometimes
}

// New returns a Bar expecting total ticks, drawn width characters wide on w.
func New(w io.Writer, total, width int) *Bar {
	if width <= 2 {
		width = DefaultWidth
	}
	return &Bar{
		w:      w,
		total:  total,
		width:  width - 2,
		pip:    "=",
		redraw: rate.Sometimes{First: 1, Interval: 100 * time.Millisecond},
	}
}

// Tick records one finished unit. Ticks beyond total are ignored.
func (b *Bar) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done >= b.total {
		return
	}
	b.done++
	if b.done == b.total {
		b.render()
		fmt.Fprintln(b.w)
		return
	}
	b.redraw.Do(b.render)
}

// Done returns the number of recorded ticks.
func (b *Bar) Done() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

func (b *Bar) render() {
	filled := b.done * b.width / b.total
	fmt.Fprintf(b.w, "\r[%s%s] %d/%d",
		strings.Repeat(b.pip, filled),
		strings.Repeat(" ", b.width-filled),
		b.done, b.total)
}

// Nop discards ticks; used in quiet mode.
type Nop struct{}

func (Nop) Tick() {}

// TerminalWidth reads $COLUMNS and falls back to DefaultWidth.
func TerminalWidth() int {
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 2 {
		return cols
	}
	return DefaultWidth
}

var (
	_ Ticker = (*Bar)(nil)
	_ Ticker = Nop{}
)
