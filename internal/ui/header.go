package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/state"
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderPanes())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())

	return b.String()
}

// renderHeader renders the client name, load status and borrow counter.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	name := state.NoClientName
	if m.hasClient {
		name = m.client.Name
	}

	parts := []string{
		bg.Render("shelf", styles.Logo),
		bg.Render("Client:", styles.MutedText) + bg.Space() + bg.Render(name, styles.Text.Bold(true)),
		styles.StatusStyle(m.view.Status).Render(strings.ToUpper(m.view.Status.String())),
	}

	if m.hasClient {
		countStyle := styles.Text
		if m.view.LimitReached() {
			countStyle = styles.WarningText.Bold(true)
		}
		parts = append(parts,
			bg.Render("Borrowed:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d/%d", len(m.view.Borrowed), library.BorrowLimit), countStyle))
	}
	if m.view.LimitReached() {
		parts = append(parts, bg.Render("LIMIT", styles.DangerText))
	}

	if tabs := m.renderClientTabs(styles, bg); tabs != "" {
		parts = append(parts, tabs)
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderClientTabs lists the directory with the current client highlighted.
func (m Model) renderClientTabs(styles Styles, bg BgStyle) string {
	if len(m.directory) == 0 {
		return ""
	}
	current := m.clientIndex()
	tabs := make([]string, 0, len(m.directory))
	for i, c := range m.directory {
		label := c.Name
		if i < 9 {
			label = fmt.Sprintf("%d %s", i+1, c.Name)
		}
		style := styles.FaintText
		if i == current {
			style = styles.AccentText.Bold(true)
		}
		tabs = append(tabs, bg.Render(label, style))
	}
	return bg.Join(tabs, "  ")
}

// renderCommandBar renders the short key help.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts,
			bg.Render(h.Key, styles.WarningText)+bg.Space()+bg.Render(h.Desc, styles.MutedText))
	}
	return styles.Footer.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderPanes renders Available and Borrowed side by side.
func (m Model) renderPanes() string {
	paneWidth := max(m.width/2, 20)
	// border (2) + padding (2)
	inner := paneWidth - 4

	rows := m.height - 6
	if rows < 3 {
		rows = 3
	}

	available := m.renderPane(PaneAvailable,
		fmt.Sprintf("Available (%d)", len(m.view.Available)), inner, rows)
	borrowed := m.renderPane(PaneBorrowed,
		fmt.Sprintf("Borrowed (%d/%d)", len(m.view.Borrowed), library.BorrowLimit), inner, rows)

	return lipgloss.JoinHorizontal(lipgloss.Top, available, borrowed)
}

func (m Model) renderPane(p Pane, title string, width, rows int) string {
	styles := m.theme.Styles()
	focused := m.focus == p

	titleStyle := styles.MutedText.Bold(true)
	if focused {
		titleStyle = styles.AccentText.Bold(true)
	}

	lines := []string{titleStyle.Render(title)}
	books := m.paneBooks(p)

	switch {
	case m.view.Status == state.StatusLoading:
		lines = append(lines, styles.InfoText.Render("Loading..."))
	case !m.hasClient:
		lines = append(lines, styles.FaintText.Render("No client selected"))
	case len(books) == 0:
		lines = append(lines, styles.FaintText.Render("No books"))
	default:
		start := 0
		if m.cursor[p] >= rows {
			start = m.cursor[p] - rows + 1
		}
		end := min(start+rows, len(books))
		for i := start; i < end; i++ {
			text := truncate(books[i].Title, width)
			if focused && i == m.cursor[p] {
				lines = append(lines, styles.Selected.Width(width).Render(text))
				continue
			}
			lines = append(lines, styles.Text.Render(text))
		}
	}

	box := styles.Pane
	if focused {
		box = styles.PaneFocused
	}
	return box.Width(width + 2).Render(strings.Join(lines, "\n"))
}

// renderStatusLine shows the flash message or a hint for the load status.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()

	if m.flash != "" {
		return styles.WarningText.Bold(true).Render(m.flash)
	}

	switch m.view.Status {
	case state.StatusLoading:
		return styles.InfoText.Render("Loading books for " + m.client.Name + "...")
	case state.StatusFailed:
		msg := "Loading failed"
		if m.view.Err != nil {
			msg = truncate(m.view.Err.Error(), max(m.width-20, 20))
		}
		return styles.DangerText.Render(msg) + " " + styles.MutedText.Render("(r to retry)")
	case state.StatusIdle:
		if !m.hasClient {
			return styles.MutedText.Render("Select a client with [ ] or 1-9")
		}
	}
	return ""
}
