package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultSearchDelay is the quiet period before a search fetch.
const DefaultSearchDelay = 300 * time.Millisecond

// searchTickMsg fires when a debounce period ends.
type searchTickMsg struct {
	seq   int
	query string
}

// Debouncer collapses rapid search edits into one fetch. Each Trigger
// supersedes the pending one; only the latest tick is honoured.
type Debouncer struct {
	delay time.Duration
	seq   int
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules a tick carrying query after the quiet period.
func (d *Debouncer) Trigger(query string) tea.Cmd {
	d.seq++
	msg := searchTickMsg{seq: d.seq, query: query}
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return msg
	})
}

// Ready reports whether msg is the latest scheduled tick.
func (d *Debouncer) Ready(msg searchTickMsg) bool {
	return msg.seq == d.seq
}

// Cancel drops any pending tick.
func (d *Debouncer) Cancel() {
	d.seq++
}
