package tty

import tea "github.com/charmbracelet/bubbletea"

// NewStaleEscapeFilter returns a tea.WithFilter callback that suppresses key
// messages while input is disabled (during the post-startup drain window).
// The isInputEnabled predicate is called on each message to check if input
// is currently active.
//
// Late-arriving terminal escape sequence fragments (e.g. OSC 11
// background-color replies) would otherwise land in the API key field.
// Ctrl+C is always allowed through so the user can exit.
func NewStaleEscapeFilter(isInputEnabled func(tea.Model) bool) func(tea.Model, tea.Msg) tea.Msg {
	return func(m tea.Model, msg tea.Msg) tea.Msg {
		if isInputEnabled(m) {
			return msg
		}

		if k, ok := msg.(tea.KeyMsg); ok {
			if k.Type == tea.KeyCtrlC {
				return msg
			}
			return nil
		}

		return msg
	}
}
