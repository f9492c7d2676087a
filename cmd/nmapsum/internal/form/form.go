// Package form holds the two input widgets of the TUI (API key and scan
// output) and the Summarize button, with tab focus cycling between them.
package form

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/germanamz/nmapsum/cmd/nmapsum/internal/msgs"
	"github.com/germanamz/nmapsum/cmd/nmapsum/internal/styles"
)

const (
	scanMinHeight = 3
	scanMaxHeight = 8
)

// Field identifies a focusable element.
type Field int

const (
	FieldKey Field = iota
	FieldScan
	FieldButton
	fieldCount
)

// KeyMap holds the form's key bindings.
type KeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Press key.Binding
}

// DefaultKeyMap returns the default form bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Press: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "summarize")),
	}
}

// Model is the input form. Enabled is false until the startup drain window
// has passed.
type Model struct {
	Enabled bool

	keys       KeyMap
	apiKey     textinput.Model
	scan       textarea.Model
	focus      Field
	submitting bool
	spinner    string
	width      int

	// raw is the scan exactly as prefilled or pasted. The textarea expands
	// tabs and caps the line count, so Scan returns raw until the field is
	// edited by hand.
	raw    string
	hasRaw bool
}

// New returns a form with apiKey prefilled.
func New(apiKey string) Model {
	ti := textinput.New()
	ti.Placeholder = "Paste Gemini API Key here"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Prompt = ""
	ti.SetValue(apiKey)

	ta := textarea.New()
	ta.Placeholder = "Paste Nmap output here (use nmap -sC -sV -oA)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(scanMinHeight)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle()
	ta.BlurredStyle.Prompt = lipgloss.NewStyle()
	// Don't focus yet: the terminal may still be sending OSC responses that
	// bubbletea misinterprets as key events.

	return Model{
		keys:   DefaultKeyMap(),
		apiKey: ti,
		scan:   ta,
		focus:  FieldKey,
	}
}

// APIKey returns the current content of the key field.
func (m Model) APIKey() string { return m.apiKey.Value() }

// Scan returns the scan to submit: the prefilled or pasted text byte for
// byte, or the field content once it has been edited.
func (m Model) Scan() string {
	if m.hasRaw {
		return m.raw
	}
	return m.scan.Value()
}

// Verbatim reports whether Scan matches what was prefilled or pasted.
func (m Model) Verbatim() bool { return m.hasRaw }

// Focused returns the focused field.
func (m Model) Focused() Field { return m.focus }

// SetAPIKey replaces the content of the key field.
func (m *Model) SetAPIKey(v string) { m.apiKey.SetValue(v) }

// SetScan replaces the content of the scan field.
func (m *Model) SetScan(v string) {
	m.scan.SetValue(v)
	m.raw, m.hasRaw = v, true
	m.fitScanHeight()
}

// SetSubmitting renders the button disabled with the given spinner frame
// while a summarize cycle runs.
func (m *Model) SetSubmitting(submitting bool, spinner string) {
	m.submitting = submitting
	m.spinner = spinner
}

// SetWidth resizes both fields.
func (m *Model) SetWidth(w int) {
	m.width = w
	inner := max(w-4, 10) // account for border padding
	m.apiKey.Width = inner
	m.scan.SetWidth(inner)
	m.fitScanHeight()
}

// Enable turns on input and focuses the current field.
func (m *Model) Enable() tea.Cmd {
	m.Enabled = true
	return m.setFocus(m.focus)
}

func (m *Model) setFocus(f Field) tea.Cmd {
	m.focus = f
	m.apiKey.Blur()
	m.scan.Blur()

	switch f {
	case FieldKey:
		return m.apiKey.Focus()
	case FieldScan:
		return m.scan.Focus()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.Enabled {
		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch {
		case key.Matches(keyMsg, m.keys.Next):
			cmd := m.setFocus((m.focus + 1) % fieldCount)
			return m, cmd
		case key.Matches(keyMsg, m.keys.Prev):
			cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, cmd
		case m.focus == FieldButton && key.Matches(keyMsg, m.keys.Press):
			if m.submitting {
				return m, nil
			}
			return m, func() tea.Msg { return msgs.SubmitMsg{} }
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case FieldKey:
		m.apiKey, cmd = m.apiKey.Update(msg)
	case FieldScan:
		// Pre-set max height so the textarea has room and won't scroll its
		// viewport during Update. After processing, shrink to the content.
		before := m.scan.Value()
		m.scan.SetHeight(scanMaxHeight)
		m.scan, cmd = m.scan.Update(msg)
		if m.scan.Value() != before {
			m.trackRaw(before, keyMsg)
		}
		m.fitScanHeight()
	}

	return m, cmd
}

// trackRaw keeps a paste into an empty field as the raw scan. Any other edit
// drops the raw copy and the field content is submitted as shown.
func (m *Model) trackRaw(before string, msg tea.KeyMsg) {
	if msg.Paste && before == "" {
		m.raw, m.hasRaw = string(msg.Runes), true
		return
	}
	m.raw, m.hasRaw = "", false
}

func (m *Model) fitScanHeight() {
	lines := strings.Count(m.scan.Value(), "\n") + 1
	m.scan.SetHeight(min(max(lines, scanMinHeight), scanMaxHeight))
}

func (m Model) View() string {
	inner := max(m.width-4, 10)

	keyBox := m.border(FieldKey).Width(inner).Render(m.apiKey.View())
	scanBox := m.border(FieldScan).Width(inner).Render(m.scan.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.LabelStyle.Render("API key"),
		keyBox,
		styles.LabelStyle.Render("Nmap output"),
		scanBox,
		m.buttonView(),
	)
}

// Height returns the number of lines View occupies.
func (m Model) Height() int {
	return lipgloss.Height(m.View())
}

func (m Model) border(f Field) lipgloss.Style {
	switch {
	case !m.Enabled:
		return styles.DisabledBorder
	case m.focus == f:
		return styles.FocusedBorder
	default:
		return styles.BlurredBorder
	}
}

func (m Model) buttonView() string {
	switch {
	case m.submitting:
		return styles.ButtonDisabledStyle.Render(m.spinner + " Summarizing...")
	case m.focus == FieldButton:
		return styles.ButtonFocusedStyle.Render("Summarize")
	default:
		return styles.ButtonStyle.Render("Summarize")
	}
}
