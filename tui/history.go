// Package tui provides a Bubble Tea terminal UI for Nightkeep.
package tui

// History keeps recent commands for Up/Down recall. Words typed at enemies
// are not recorded: they change after every hit.
type History struct {
	entries []string
	limit   int
	back    int    // 0 = editing fresh input, n = n-th most recent entry
	draft   string // input in progress when navigation started
}

// NewHistory creates a history holding at most limit commands.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push records cmd and ends any navigation. A repeat of the latest entry is
// not stored twice.
func (h *History) Push(cmd string) {
	h.back = 0
	h.draft = ""
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Older steps back one entry. current is the input line, remembered so
// Newer can return to it. It reports false when there is no history.
func (h *History) Older(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.back == 0 {
		h.draft = current
	}
	if h.back < len(h.entries) {
		h.back++
	}
	return h.entries[len(h.entries)-h.back], true
}

// Newer steps forward one entry, ending on the remembered draft. It reports
// false when not navigating.
func (h *History) Newer() (string, bool) {
	if h.back == 0 {
		return "", false
	}
	h.back--
	if h.back == 0 {
		return h.draft, true
	}
	return h.entries[len(h.entries)-h.back], true
}

// Len returns the number of stored commands.
func (h *History) Len() int {
	return len(h.entries)
}
