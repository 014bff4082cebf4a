package ui

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/five82/imagestrip/internal/carousel"
	"github.com/five82/imagestrip/internal/client"
	"github.com/five82/imagestrip/internal/logtail"
	"github.com/five82/imagestrip/internal/prefs"
	"github.com/five82/imagestrip/internal/protocol"
	"github.com/five82/imagestrip/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Transport client.Transport
	Store     *state.Store
	Session   protocol.Session
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
	Logger    *log.Logger
	PollTick  time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	transport client.Transport
	store     *state.Store
	logger    *log.Logger
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	sessionID string
	now       func() time.Time

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool
	showLog  bool

	// Strip state
	carousel  *carousel.Carousel
	inflight  bool
	pending   []protocol.Signals
	framing   bool
	animStart time.Time
	lastErr   error

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Log pane
	follower *logtail.Follower
	logLines []string
}

// New creates a new Bubble Tea model and applies the session's initial
// directives to the carousel.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	p := opts.Prefs
	if p.PxPerColumn <= 0 || p.PxPerRow <= 0 {
		def := prefs.Default()
		if p.Theme != "" {
			def.Theme = p.Theme
		}
		def.ShowLog = p.ShowLog
		p = def
	}

	m := Model{
		ctx:       ctx,
		transport: opts.Transport,
		store:     opts.Store,
		logger:    logger,
		prefs:     p,
		prefsPath: opts.PrefsPath,
		pollTick:  pollTick,
		sessionID: opts.Session.ID,
		now:       time.Now,
		theme:     GetTheme(p.Theme),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		showLog:   p.ShowLog,
		carousel:  carousel.New(),
	}
	if opts.LogPath != "" {
		m.follower = logtail.NewFollower(opts.LogPath, LogBufferLimit)
	}
	if err := m.carousel.Apply(opts.Session.Directives); err != nil {
		m.lastErr = err
		logger.Error("apply initial directives", "error", err)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.follower != nil {
		cmds = append(cmds, pollLogCmd(m.follower))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, m.reportCapacity()

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		prev := m.snapshot
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		// Images registered from elsewhere reach the carousel on the next cycle.
		if prev.HasStatus && m.snapshot.HasStatus && prev.Status.Images != m.snapshot.Status.Images {
			return m, m.send(protocol.Signals{})
		}
		return m, nil

	case logLinesMsg:
		if msg.err != nil {
			m.logger.Debug("log pane poll failed", "error", msg.err)
			return m, nil
		}
		m.logLines = msg.lines
		return m, nil

	case directivesMsg:
		return m.handleDirectives(msg)

	case frameMsg:
		return m.handleFrame(time.Time(msg))
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.stripRows() > 0 {
		b.WriteString(m.renderStrip())
		b.WriteString("\n")
	}
	if m.showLog {
		b.WriteString(m.renderLogPane())
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		m.prefs.ShowLog = m.showLog
		m.savePrefs()
		cmds := []tea.Cmd{m.reportCapacity()}
		if m.showLog && m.follower != nil {
			cmds = append(cmds, pollLogCmd(m.follower))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.Refresh):
		cmds := []tea.Cmd{m.send(protocol.ResyncSignal())}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.Leading):
		return m, m.send(protocol.ScrollSignal(protocol.CursorRight))

	case key.Matches(msg, m.keys.Trailing):
		return m, m.send(protocol.ScrollSignal(protocol.CursorLeft))

	case key.Matches(msg, m.keys.SelectNth):
		n, err := strconv.Atoi(msg.String())
		if err != nil {
			return m, nil
		}
		visible := m.carousel.Visible()
		if n < 1 || n > len(visible) {
			return m, nil
		}
		return m, m.selectImage(visible[n-1].Index)

	case key.Matches(msg, m.keys.SelectCenter):
		visible := m.carousel.Visible()
		if len(visible) == 0 {
			return m, nil
		}
		return m, m.selectImage(visible[len(visible)/2].Index)
	}

	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.showLog && m.follower != nil {
		cmds = append(cmds, pollLogCmd(m.follower))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// handleDirectives applies a server reply, starts the frame loop when an
// animation began and sends the next queued signal.
func (m Model) handleDirectives(msg directivesMsg) (tea.Model, tea.Cmd) {
	m.inflight = false
	var cmds []tea.Cmd

	if msg.err != nil {
		m.lastErr = msg.err
		if !errors.Is(msg.err, context.Canceled) {
			m.logger.Warn("cycle failed", "error", msg.err)
		}
	} else {
		wasAnimating := m.carousel.State() == carousel.Animating
		if err := m.carousel.Apply(msg.directives); err != nil {
			m.lastErr = err
			m.logger.Error("apply directives", "error", err)
			if errors.Is(err, carousel.ErrUnknownImage) {
				m.queueResync()
			}
		} else {
			m.lastErr = nil
		}
		if !wasAnimating && m.carousel.State() == carousel.Animating {
			m.animStart = m.now()
			if !m.framing {
				m.framing = true
				cmds = append(cmds, frameCmd())
			}
		}
	}

	if cmd := m.flush(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleFrame advances the running animation.
func (m Model) handleFrame(at time.Time) (tea.Model, tea.Cmd) {
	if m.carousel.State() != carousel.Animating {
		m.framing = false
		return m, nil
	}
	if m.carousel.Tick(carousel.AnimationProgress(at.Sub(m.animStart))) {
		m.framing = false
		return m, nil
	}
	return m, frameCmd()
}

// send runs a cycle with sig, or queues it behind the cycle in flight.
func (m *Model) send(sig protocol.Signals) tea.Cmd {
	if m.transport == nil {
		return nil
	}
	if m.inflight {
		m.pending = append(m.pending, sig)
		return nil
	}
	m.inflight = true
	return cycleCmd(m.ctx, m.transport, sig)
}

func (m *Model) flush() tea.Cmd {
	if m.inflight || len(m.pending) == 0 {
		return nil
	}
	sig := m.pending[0]
	m.pending = m.pending[1:]
	return m.send(sig)
}

// queueResync puts a resync ahead of every queued signal. A reply was lost,
// so queued scrolls would only name more images the carousel never received.
func (m *Model) queueResync() {
	for _, sig := range m.pending {
		if sig.Resync {
			return
		}
	}
	m.pending = append([]protocol.Signals{protocol.ResyncSignal()}, m.pending...)
}

func (m *Model) selectImage(index int) tea.Cmd {
	sig, ok := m.carousel.Select(index, true)
	if !ok {
		return nil
	}
	return m.send(sig)
}

// reportCapacity sends the strip capacity when the available extent changed it.
func (m *Model) reportCapacity() tea.Cmd {
	if !m.ready {
		return nil
	}
	extent := m.stripLayout().extent(m.carousel.Vertical())
	sig, ok := m.carousel.ReportCapacity(extent)
	if !ok {
		return nil
	}
	return m.send(sig)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs", "path", m.prefsPath, "error", err)
	}
}

// stripRows is the height left for the strip once the chrome is drawn.
func (m Model) stripRows() int {
	rows := m.height - HeaderHeight - FooterHeight
	if m.showLog {
		rows -= LogPaneHeight
	}
	return max(rows, 0)
}

func (m Model) stripLayout() stripLayout {
	return stripLayout{
		cols:  m.width,
		rows:  m.stripRows(),
		pxCol: m.prefs.PxPerColumn,
		pxRow: m.prefs.PxPerRow,
	}
}

// Messages

type tickMsg time.Time

type frameMsg time.Time

type snapshotMsg state.Snapshot

type directivesMsg struct {
	directives protocol.Directives
	err        error
}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func frameCmd() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func cycleCmd(ctx context.Context, transport client.Transport, sig protocol.Signals) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, CycleTimeout)
		defer cancel()
		d, err := transport.Cycle(ctx, sig)
		return directivesMsg{directives: d, err: err}
	}
}

func pollLogCmd(f *logtail.Follower) tea.Cmd {
	return func() tea.Msg {
		if _, err := f.Poll(); err != nil {
			return logLinesMsg{err: err}
		}
		return logLinesMsg{lines: f.Lines()}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
