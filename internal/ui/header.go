package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/imagestrip/internal/carousel"
	"github.com/five82/imagestrip/internal/client"
	"github.com/five82/imagestrip/internal/protocol"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("imagestrip", styles.Logo)}

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts,
			bg.Render("● OFFLINE", styles.DangerText),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
		)
	case !m.snapshot.HasStatus && m.snapshot.LastError == nil:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	default:
		parts = append(parts, bg.Render("● LIVE", styles.SuccessText))
	}

	if m.snapshot.HasStatus {
		parts = append(parts, m.statusParts(styles, bg)...)
	} else if m.sessionID != "" {
		parts = append(parts, bg.Label("Session:", shortID(m.sessionID), styles, styles.Text))
	}

	if m.carousel.State() == carousel.Animating {
		parts = append(parts, bg.Render(m.carousel.State().String(), styles.AccentText))
	}

	content := bg.Join(parts, "  ")
	if err := m.headerError(); err != "" {
		room := m.width - lipgloss.Width(content) - 4
		if room > 8 {
			content += sep + bg.Render(fit(err, room), styles.DangerText)
		}
	}
	return styles.Header.Width(m.width).Render(content)
}

func (m Model) statusParts(styles Styles, bg BgStyle) []string {
	st := m.snapshot.Status
	compact := m.width < LayoutCompactWidth

	selected := "none"
	if st.SelectedImage != protocol.NoSelection {
		selected = fmt.Sprintf("#%d", st.SelectedImage)
	}

	if compact {
		return []string{
			bg.Label("N:", fmt.Sprintf("%d", st.Images), styles, styles.Text),
			bg.Label("C:", fmt.Sprintf("%d/%d", st.Cursor, st.Capacity), styles, styles.Text),
			bg.Label("S:", selected, styles, styles.AccentText),
		}
	}
	return []string{
		bg.Label("Session:", shortID(st.ID), styles, styles.Text),
		bg.Label("Images:", fmt.Sprintf("%d", st.Images), styles, styles.Text),
		bg.Label("Cursor:", fmt.Sprintf("%d", st.Cursor), styles, styles.Text),
		bg.Label("Capacity:", fmt.Sprintf("%d", st.Capacity), styles, styles.Text),
		bg.Label("Selected:", selected, styles, styles.AccentText),
	}
}

// headerError describes the most relevant failure, if any.
func (m Model) headerError() string {
	if m.lastErr != nil {
		return describeError(m.lastErr)
	}
	if m.snapshot.LastError != nil {
		return describeError(m.snapshot.LastError)
	}
	return ""
}

func describeError(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("server: %s", apiErr.Message)
	case errors.Is(err, carousel.ErrUnknownImage):
		return "out of sync with server, resyncing"
	}
	msg := err.Error()
	if strings.Contains(msg, "connection refused") {
		return "server unreachable"
	}
	return msg
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// renderFooter renders the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// renderLogPane renders the tail of the viewer log.
func (m Model) renderLogPane() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)
	width := max(m.width, 1)

	title := "log"
	if m.follower != nil {
		title += " " + truncateMiddle(m.follower.Path(), max(width-6, 8))
	}
	lines := []string{bg.FillLine(bg.Render(fit(title, width), styles.FaintText), width)}

	body := LogPaneHeight - 1
	tail := m.logLines
	if len(tail) > body {
		tail = tail[len(tail)-body:]
	}
	for i := range body {
		text := ""
		if i < len(tail) {
			text = fit(tail[i], width)
		}
		lines = append(lines, bg.FillLine(bg.Render(text, styles.MutedText), width))
	}
	return strings.Join(lines, "\n")
}
