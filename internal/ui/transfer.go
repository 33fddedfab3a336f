package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"vidfetch/internal/progress"
)

// transferState tracks the playlist package currently being fetched.
type transferState struct {
	id      string
	stage   progress.Stage
	status  string
	bytes   int64
	total   int64
	percent float64 // -1 means unknown

	bar bubblesprogress.Model
}

func newTransferState() transferState {
	return transferState{
		percent: -1,
		bar: bubblesprogress.New(
			bubblesprogress.WithDefaultGradient(),
			bubblesprogress.WithWidth(40),
		),
	}
}

func (t *transferState) apply(u progress.Update) {
	if t.id != "" && u.RequestID != t.id {
		t.reset()
	}
	t.id = u.RequestID
	t.stage = u.Stage
	t.status = u.Message
	t.bytes = u.Bytes
	t.total = u.Total
	t.percent = u.Percent()
}

func (t *transferState) reset() {
	bar := t.bar
	*t = newTransferState()
	t.bar = bar
}

// teaReporter forwards dispatcher progress into the program's event channel.
// Terminal events block until delivered or the program is gone; byte
// counts are dropped when the channel is full.
type teaReporter struct {
	ch   chan tea.Msg
	done <-chan struct{}
}

func (r teaReporter) Update(u progress.Update) {
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		r.send(transferUpdateMsg{U: u})
		return
	}
	select {
	case r.ch <- transferUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	r.send(transferResultMsg{R: res})
}

func (r teaReporter) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.done:
	}
}
