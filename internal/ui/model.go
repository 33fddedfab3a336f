package ui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vidfetch/internal/catalog"
	"vidfetch/internal/progress"
	"vidfetch/internal/request"
	"vidfetch/internal/session"
)

type focus int

const (
	focusInput focus = iota
	focusControls
)

type busyKind int

const (
	idle busyKind = iota
	busyLookup
	busyPackage
)

// Options configures the TUI.
type Options struct {
	// InitialURL is looked up as soon as the program starts.
	InitialURL string
	// NewSession builds the session; the reporter must be attached to its
	// dispatcher so playlist progress reaches the view.
	NewSession func(progress.Reporter) *session.Session
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	sess *session.Session

	input   textinput.Model
	spinner spinner.Model
	focus   focus
	busy    busyKind

	transfer transferState
	notice   string // last success message

	width, height int
	styles        Styles

	// Internal event channel used by reporter to feed tea messages
	eventCh chan tea.Msg

	initialURL string
}

func NewModel(ctx context.Context, opts Options) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	in := textinput.New()
	in.Placeholder = "Paste a video or playlist URL"
	in.Prompt = "URL › "
	in.CharLimit = 2048
	in.Width = 60
	in.SetValue(opts.InitialURL)
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sty.Spinner

	eventCh := make(chan tea.Msg, 256)
	sess := opts.NewSession(teaReporter{ch: eventCh, done: c.Done()})

	return Model{
		ctx:        c,
		cancel:     cancel,
		sess:       sess,
		input:      in,
		spinner:    sp,
		transfer:   newTransferState(),
		styles:     sty,
		eventCh:    eventCh,
		initialURL: opts.InitialURL,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.listenEventsCmd()}
	if m.initialURL != "" {
		cmds = append(cmds, func() tea.Msg { return submitMsg{} })
	}
	return tea.Batch(cmds...)
}

// submitMsg triggers a lookup of the current input, as if enter was pressed.
type submitMsg struct{}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if w := msg.Width - 12; w > 20 {
			m.input.Width = w
		}
		return m, nil

	case submitMsg:
		return m.startLookup()

	case lookupDoneMsg:
		if !m.sess.FinishLookup(msg.Lookup, msg.Catalog, msg.Err) {
			return m, nil
		}
		m.busy = idle
		if msg.Err == nil {
			m.focus = focusControls
			m.input.Blur()
		}
		return m, nil

	case downloadDoneMsg:
		m.sess.FinishDownload(msg.Intent, msg.Err)
		m.busy = idle
		if msg.Err != nil {
			m.notice = ""
			m.focus = focusInput
			return m, m.input.Focus()
		}
		switch msg.Outcome.Kind {
		case request.PlaylistPackage:
			m.notice = fmt.Sprintf("Saved %s to %s", filepath.Base(msg.Outcome.Path), filepath.Dir(msg.Outcome.Path))
		default:
			m.notice = "Download started: " + msg.Outcome.URL
		}
		return m, nil

	case transferUpdateMsg:
		m.transfer.apply(msg.U)
		return m, m.listenEventsCmd()

	case transferResultMsg:
		if msg.R.Err == nil {
			m.transfer.bytes = msg.R.Bytes
			m.transfer.percent = 100
			m.transfer.stage = progress.StageCompleted
		} else {
			m.transfer.stage = progress.StageError
			m.transfer.percent = -1
		}
		return m, m.listenEventsCmd()

	case spinner.TickMsg:
		if m.busy == idle {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case allDoneMsg:
		return m, tea.Quit
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		m.sess.Close()
		return m, tea.Quit
	}

	if m.focus == focusInput {
		switch msg.String() {
		case "esc":
			if m.sess.State().HasCatalog() {
				m.focus = focusControls
				m.input.Blur()
				return m, nil
			}
			m.cancel()
			m.sess.Close()
			return m, tea.Quit
		case "enter":
			return m.startLookup()
		case "tab", "down":
			if m.sess.State().HasCatalog() {
				m.focus = focusControls
				m.input.Blur()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	st := m.sess.State()
	switch msg.String() {
	case "q", "esc":
		m.cancel()
		m.sess.Close()
		return m, tea.Quit
	case "/", "i", "shift+tab":
		m.focus = focusInput
		return m, m.input.Focus()
	case "tab", "t":
		if st.MediaKind == catalog.MediaVideo {
			st.SetMediaKind(catalog.MediaAudio)
		} else {
			st.SetMediaKind(catalog.MediaVideo)
		}
	case "v":
		if st.MediaKind != catalog.MediaVideo {
			st.SetMediaKind(catalog.MediaVideo)
		}
	case "a":
		if st.MediaKind != catalog.MediaAudio {
			st.SetMediaKind(catalog.MediaAudio)
		}
	case "up", "k":
		st.CycleQuality(-1)
	case "down", "j":
		st.CycleQuality(1)
	case "left", "h":
		st.CycleContainer(-1)
	case "right", "l":
		st.CycleContainer(1)
	case "enter", "d":
		return m.startDownload()
	}
	return m, nil
}

func (m Model) startLookup() (tea.Model, tea.Cmd) {
	if m.busy == busyPackage {
		return m, nil
	}
	m.notice = ""
	l, err := m.sess.BeginLookup(m.ctx, m.input.Value())
	if err != nil {
		m.busy = idle
		return m, nil
	}
	m.busy = busyLookup
	d := m.sess.Dispatcher()
	lookup := func() tea.Msg {
		c, err := d.RunMetadataLookup(l.Context(), l.Intent)
		return lookupDoneMsg{Lookup: l, Catalog: c, Err: err}
	}
	return m, tea.Batch(lookup, m.spinner.Tick)
}

func (m Model) startDownload() (tea.Model, tea.Cmd) {
	if m.busy != idle {
		return m, nil
	}
	in, err := m.sess.BeginDownload()
	if err != nil {
		return m, nil
	}
	m.notice = ""
	d := m.sess.Dispatcher()
	ctx := m.ctx
	if in.Kind == request.PlaylistPackage {
		m.busy = busyPackage
		m.transfer.reset()
		m.transfer.stage = progress.StageRequesting
		m.transfer.status = "Packaging playlist"
		run := func() tea.Msg {
			path, err := d.RunPlaylistPackage(ctx, in)
			return downloadDoneMsg{Intent: in, Outcome: session.Outcome{Kind: in.Kind, Path: path}, Err: err}
		}
		return m, tea.Batch(run, m.spinner.Tick)
	}
	run := func() tea.Msg {
		u, err := d.RunDirectDownload(in)
		return downloadDoneMsg{Intent: in, Outcome: session.Outcome{Kind: in.Kind, URL: u}, Err: err}
	}
	return m, run
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}
