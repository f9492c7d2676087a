package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/germanamz/nmapsum/cmd/nmapsum/internal/form"
	"github.com/germanamz/nmapsum/cmd/nmapsum/internal/format"
	"github.com/germanamz/nmapsum/cmd/nmapsum/internal/msgs"
	"github.com/germanamz/nmapsum/cmd/nmapsum/internal/styles"
	"github.com/germanamz/nmapsum/pkg/credentials"
	"github.com/germanamz/nmapsum/pkg/modeladapter/usage"
	"github.com/germanamz/nmapsum/pkg/prompt"
	"github.com/germanamz/nmapsum/pkg/summarizer"
)

// Placeholder is shown in the summary pane before the first result arrives.
const Placeholder = "Click Summarize to view results (may take a few moments)"

// Summarizer runs one summarize cycle: the summary and graph calls for a
// single scan, settled together.
type Summarizer interface {
	Run(ctx context.Context, apiKey, scan string) (summarizer.Result, error)
}

// Options tune optional behavior of the app.
type Options struct {
	// DotOut, when set, receives the graph source after every applied result.
	DotOut string
	// Usage feeds the token counter in the status line.
	Usage *usage.Tracker
	Log   *slog.Logger
}

// KeyMap holds the app-level key bindings.
type KeyMap struct {
	Submit     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	form       form.KeyMap
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "summarize")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		form:       form.DefaultKeyMap(),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.form.Next, k.ScrollUp, k.ScrollDown, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.form.Prev, k.form.Press}}
}

// AppModel is the root bubbletea model. It owns the view state: the
// last-submitted API key, the loading flag and the last summary and graph
// texts. Every submit bumps seq, and a completion whose seq is not the latest
// is dropped.
type AppModel struct {
	ctx   context.Context
	sum   Summarizer
	creds credentials.Provider
	opts  Options
	keys  KeyMap

	form    form.Model
	results viewport.Model
	help    help.Model

	apiKey      string
	loading     bool
	summaryText string
	graphText   string
	seq         uint64

	runErr     error
	persistErr error
	dotErr     error
	dotPath    string

	width        int
	height       int
	spinnerIdx   int
	loadingMsg   string
	lastDuration time.Duration
}

// NewAppModel creates the app. The key field is prefilled from creds; a
// read failure leaves it empty and is shown once the UI is up.
func NewAppModel(ctx context.Context, sum Summarizer, creds credentials.Provider, opts Options) AppModel {
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}

	apiKey, err := creds.Get()
	if err != nil {
		opts.Log.Warn("read stored api key", "err", err)
		apiKey = ""
		err = fmt.Errorf("read stored key: %w", err)
	}

	m := AppModel{
		ctx:         ctx,
		sum:         sum,
		creds:       creds,
		opts:        opts,
		keys:        DefaultKeyMap(),
		form:        form.New(apiKey),
		results:     viewport.New(0, 0),
		help:        help.New(),
		apiKey:      apiKey,
		summaryText: Placeholder,
		persistErr:  err,
	}
	m.refreshResults()

	return m
}

// InputEnabled reports whether the startup drain window has passed.
// Used by the tty.NewStaleEscapeFilter closure.
func (m AppModel) InputEnabled() bool { return m.form.Enabled }

// APIKey returns the key captured at the last submit (or loaded at start).
func (m AppModel) APIKey() string { return m.apiKey }

// Loading reports whether a summarize cycle is in flight.
func (m AppModel) Loading() bool { return m.loading }

// SummaryText returns the last applied summary.
func (m AppModel) SummaryText() string { return m.summaryText }

// GraphText returns the last applied graph reply, before fence stripping.
func (m AppModel) GraphText() string { return m.graphText }

// GraphSource returns the graph description shown in the graph panel.
func (m AppModel) GraphSource() string { return prompt.StripCodeFence(m.graphText) }

// Seq returns the number of submits so far.
func (m AppModel) Seq() uint64 { return m.seq }

// Err returns the error of the last settled cycle, if any.
func (m AppModel) Err() error { return m.runErr }

// SetScan prefills the scan field.
func (m *AppModel) SetScan(scan string) {
	m.form.SetScan(scan)
	m.syncLayout()
}

func (m AppModel) Init() tea.Cmd {
	// Delay focusing the input so that stale terminal escape-sequence
	// responses (e.g. OSC 11 background-color) are drained first.
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return msgs.InitDrainMsg{}
	})
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case msgs.InitDrainMsg:
		cmd := m.form.Enable()
		m.syncLayout()
		return m, cmd

	case msgs.SubmitMsg:
		cmd := m.handleSubmit()
		return m, cmd

	case msgs.RunCompleteMsg:
		cmd := m.handleComplete(msg)
		return m, cmd

	case msgs.DotWrittenMsg:
		m.dotPath = msg.Path
		m.dotErr = msg.Err
		if msg.Err != nil {
			m.opts.Log.Error("write graph source", "path", msg.Path, "err", msg.Err)
		}
		m.refreshResults()
		return m, nil

	case msgs.TickMsg:
		// Each submit starts its own tick chain; older chains end here.
		if m.loading && msg.Seq == m.seq {
			m.spinnerIdx++
			m.form.SetSubmitting(true, m.spinnerFrame())
			m.refreshResults()
			return m, tickCmd(msg.Seq)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	m.syncLayout()
	return m, cmd
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Nmap Summarizer"),
		m.form.View(),
		m.results.View(),
		m.statusLine(),
		m.help.View(m.keys),
	)
}

func (m *AppModel) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width

	format.InitMarkdownRenderer(m.width - 4)
	m.form.SetWidth(m.width)
	m.syncLayout()
	m.refreshResults()
}

// syncLayout gives the results pane whatever height the form leaves.
func (m *AppModel) syncLayout() {
	if m.height == 0 {
		return
	}
	const chrome = 3 // title, status and help lines
	m.results.Width = m.width
	m.results.Height = max(m.height-m.form.Height()-chrome, 3)
}

func (m *AppModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case !m.form.Enabled:
		return nil
	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	m.syncLayout()
	return cmd
}

// handleSubmit reads both fields, persists the key and starts the joined
// summary and graph calls. It is a no-op while a cycle is in flight.
func (m *AppModel) handleSubmit() tea.Cmd {
	if m.loading {
		return nil
	}

	apiKey := m.form.APIKey()
	scan := m.form.Scan()

	m.apiKey = apiKey
	m.persistErr = nil
	if err := m.creds.Set(apiKey); err != nil {
		m.opts.Log.Warn("persist api key", "err", err)
		m.persistErr = fmt.Errorf("save key: %w", err)
	}

	m.loading = true
	m.seq++
	m.runErr = nil
	m.loadingMsg = format.RandomLoadingMessage()
	m.form.SetSubmitting(true, m.spinnerFrame())
	m.refreshResults()
	m.syncLayout()

	m.opts.Log.Info("submit", "seq", m.seq, "scan_bytes", len(scan), "verbatim", m.form.Verbatim())

	ctx, sum, seq := m.ctx, m.sum, m.seq
	start := time.Now()
	run := func() tea.Msg {
		res, err := sum.Run(ctx, apiKey, scan)
		return msgs.RunCompleteMsg{Result: res, Err: err, Duration: time.Since(start), Seq: seq}
	}

	return tea.Batch(run, tickCmd(seq))
}

// handleComplete applies a settled cycle. Results are applied all at once:
// on error the previous summary and graph stay in place.
func (m *AppModel) handleComplete(msg msgs.RunCompleteMsg) tea.Cmd {
	if msg.Seq != m.seq {
		m.opts.Log.Debug("discard stale result", "seq", msg.Seq, "latest", m.seq)
		return nil
	}

	m.loading = false
	m.lastDuration = msg.Duration
	m.form.SetSubmitting(false, "")

	var cmd tea.Cmd
	if msg.Err != nil {
		m.runErr = msg.Err
	} else {
		m.summaryText = msg.Result.Summary
		m.graphText = msg.Result.Graph
		if m.opts.DotOut != "" {
			cmd = writeDotCmd(m.opts.DotOut, m.GraphSource())
		}
	}

	m.refreshResults()
	m.results.GotoTop()
	m.syncLayout()

	return cmd
}

func (m *AppModel) refreshResults() {
	var parts []string

	if m.loading {
		parts = append(parts, styles.SpinnerStyle.Render(m.spinnerFrame())+" "+styles.DimStyle.Render(m.loadingMsg))
	}
	if m.runErr != nil {
		parts = append(parts, m.errorBlock("error: "+m.runErr.Error()))
	}
	if m.persistErr != nil {
		parts = append(parts, styles.WarnStyle.Render("API key storage: "+m.persistErr.Error()))
	}

	parts = append(parts, format.RenderMarkdown(m.summaryText))

	if m.graphText != "" {
		parts = append(parts,
			styles.SectionStyle.Render("Graph (DOT)"),
			styles.GraphBlockStyle.Render(m.GraphSource()),
		)
	}

	switch {
	case m.dotErr != nil:
		parts = append(parts, m.errorBlock("write "+m.dotPath+": "+m.dotErr.Error()))
	case m.dotPath != "":
		parts = append(parts, styles.DimStyle.Render("graph written to "+m.dotPath))
	}

	m.results.SetContent(strings.Join(parts, "\n\n"))
}

func (m AppModel) errorBlock(text string) string {
	return styles.ErrorBlockStyle.Width(max(m.width-2, 10)).Render(styles.ErrorTextStyle.Render(text))
}

func (m AppModel) statusLine() string {
	var fields []string
	if m.seq > 0 {
		fields = append(fields, fmt.Sprintf("runs: %d", m.seq))
	}
	if m.lastDuration > 0 {
		fields = append(fields, "last: "+format.FmtDuration(m.lastDuration))
	}
	if m.opts.Usage != nil {
		if total := m.opts.Usage.Total(); total.Total() > 0 {
			fields = append(fields, fmt.Sprintf("tokens: ↑%s ↓%s",
				format.FmtTokens(total.InputTokens),
				format.FmtTokens(total.OutputTokens),
			))
		}
	}
	if len(fields) == 0 {
		return ""
	}

	line := " " + strings.Join(fields, " · ")
	return styles.StatusStyle.Render(format.Truncate(line, max(m.width-1, 1)))
}

func (m AppModel) spinnerFrame() string {
	return format.SpinnerFrames[m.spinnerIdx%len(format.SpinnerFrames)]
}

func writeDotCmd(path, src string) tea.Cmd {
	return func() tea.Msg {
		err := os.WriteFile(path, []byte(src+"\n"), 0o644) //nolint:gosec // graph output is not sensitive
		return msgs.DotWrittenMsg{Path: path, Err: err}
	}
}

func tickCmd(seq uint64) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return msgs.TickMsg{Seq: seq}
	})
}
