package ui

import (
	"fmt"
	"strings"

	"vidfetch/internal/catalog"
	"vidfetch/internal/progress"
	"vidfetch/internal/selection"
	"vidfetch/internal/util/format"
)

const titleWidth = 50

func (m Model) View() string {
	parts := []string{m.viewHeader(), m.viewInput()}
	if s := m.viewStatus(); s != "" {
		parts = append(parts, s)
	}
	if c := m.viewCatalog(); c != "" {
		parts = append(parts, c)
	}
	if t := m.viewTransfer(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, m.viewHelp())
	return strings.Join(parts, "\n\n") + "\n"
}

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("vidfetch")
	sub := m.styles.Subtitle.Render("Backend: " + m.sess.Builder().Origin())
	return title + "\n" + sub
}

func (m Model) viewInput() string {
	if m.focus == focusInput {
		return m.styles.Focused.Render(m.input.View())
	}
	return m.styles.Box.Render(m.input.View())
}

func (m Model) viewStatus() string {
	switch {
	case m.busy == busyLookup:
		return m.styles.Spinner.Render(m.spinner.View()) + " " + m.styles.Faint.Render("Fetching video info...")
	case m.sess.LastError() != "":
		return m.styles.Error.Render("✗ " + m.sess.LastError())
	case m.notice != "":
		return m.styles.Success.Render("✓ " + m.notice)
	}
	return ""
}

func (m Model) viewCatalog() string {
	st := m.sess.State()
	c := st.Catalog()
	switch c.Kind() {
	case catalog.KindSingle:
		item, _ := c.Item()
		return m.viewItem(item) + "\n\n" + m.viewControls(st)
	case catalog.KindPlaylist:
		p, _ := c.Playlist()
		return m.viewPlaylist(p) + "\n\n" + m.viewControls(st)
	default:
		return ""
	}
}

func (m Model) viewItem(item catalog.MediaItem) string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(truncate(item.Title, titleWidth)))
	meta := []string{item.DurationText()}
	if item.Author != "" {
		meta = append([]string{item.Author}, meta...)
	}
	if v := item.ViewsText(); v != "" {
		meta = append(meta, v+" views")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(strings.Join(meta, " • ")))
	return m.styles.Box.Render(b.String())
}

func (m Model) viewPlaylist(p catalog.PlaylistSummary) string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(truncate(p.Title, titleWidth)))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Playlist • %d videos", p.ItemCount)))
	for i, it := range p.Preview(catalog.PreviewLimit) {
		b.WriteString("\n")
		line := fmt.Sprintf("%d. %s", i+1, truncate(it.Title, titleWidth))
		b.WriteString(m.styles.Value.Render(line))
		if it.DurationSeconds > 0 {
			b.WriteString(" " + m.styles.Faint.Render(it.DurationText()))
		}
	}
	if n := p.Remaining(catalog.PreviewLimit); n > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Faint.Render(fmt.Sprintf("...and %d more", n)))
	}
	return m.styles.Box.Render(b.String())
}

func (m Model) viewControls(st *selection.State) string {
	var kinds []string
	for _, k := range []catalog.MediaKind{catalog.MediaVideo, catalog.MediaAudio} {
		label := strings.ToUpper(string(k[:1])) + string(k[1:])
		if k == st.MediaKind {
			kinds = append(kinds, m.styles.Active.Render(label))
		} else {
			kinds = append(kinds, m.styles.Inactive.Render(label))
		}
	}

	quality := st.Quality
	for _, o := range st.QualityOptions() {
		if o.Value == st.Quality {
			quality = o.Label
			break
		}
	}
	if len(st.QualityOptions()) <= 1 && st.ItemKind == selection.ItemSingle {
		quality += m.styles.Faint.Render("  (no formats listed)")
	}

	lines := []string{
		m.styles.Label.Render("Type") + strings.Join(kinds, " "),
		m.styles.Label.Render("Quality") + m.styles.Value.Render("‹ "+quality+" ›"),
		m.styles.Label.Render("Format") + m.styles.Value.Render("‹ "+st.ContainerFormat+" ›"),
	}
	if !st.Offered() {
		lines = append(lines, m.styles.Warning.Render("selection is not offered for this item"))
	}
	action := "Download"
	if st.ItemKind == selection.ItemPlaylist {
		action = "Download playlist (zip)"
	}
	if m.focus == focusControls && m.busy == idle {
		lines = append(lines, m.styles.Active.Render("⏎ "+action))
	} else {
		lines = append(lines, m.styles.Inactive.Render("⏎ "+action))
	}
	return m.styles.Box.Render(strings.Join(lines, "\n"))
}

func (m Model) viewTransfer() string {
	t := m.transfer
	if t.stage == "" {
		return ""
	}
	var line string
	switch {
	case t.stage == progress.StageCompleted:
		line = m.styles.Success.Render("✓ done") + " " + m.styles.Faint.Render(format.HumanizeBytes(t.bytes))
	case t.stage == progress.StageError:
		line = m.styles.Error.Render("✗ error")
	case t.percent >= 0:
		line = fmt.Sprintf("%s %5.1f%%", t.bar.ViewAs(t.percent/100.0), t.percent)
	default:
		line = m.styles.Spinner.Render(m.spinner.View()) + " " + m.styles.Faint.Render(format.HumanizeBytes(t.bytes))
	}
	status := t.status
	if status == "" {
		status = string(t.stage)
	}
	return m.styles.Box.Render(line + "\n" + m.styles.Value.Render(status))
}

func (m Model) viewHelp() string {
	if m.focus == focusInput {
		return m.styles.Faint.Render("enter: fetch info • tab: options • esc: quit")
	}
	return m.styles.Faint.Render("tab/v/a: type • ↑/↓: quality • ←/→: format • enter: download • /: new URL • q: quit")
}

func truncate(s string, n int) string {
	if n <= 0 || len([]rune(s)) <= n {
		return s
	}
	rs := []rune(s)
	if n <= 3 {
		return string(rs[:n])
	}
	return string(rs[:n-3]) + "..."
}
