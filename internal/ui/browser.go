// Package ui provides the interactive results browser.
//
// The browser reads persisted analysis results from the store and
// presents a ranked page list; selecting a page opens a detail view
// with its edit wars and rule violations.
package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/flashpoint/internal/store"
)

// ViewMode represents the current view.
type ViewMode int

const (
	ModeList ViewMode = iota
	ModeDetail
	ModeHelp
)

// maxListed caps how many ranked pages the browser loads.
const maxListed = 200

// Model is the root Bubble Tea model for the results browser.
type Model struct {
	store *store.Store

	pages  []store.PageRow
	cursor int

	detail     pageDetail
	detailView viewport.Model

	mode      ViewMode
	width     int
	height    int
	spinner   spinner.Model
	loading   bool
	statusMsg string
	err       error
}

type pageDetail struct {
	page       store.PageRow
	wars       []store.WarRow
	violations []store.ViolationRow
}

// Message types for tea.Cmd.
type pagesLoadedMsg []store.PageRow
type detailLoadedMsg pageDetail
type loadErrMsg struct{ err error }

// New creates a browser over the given store.
func New(st *store.Store) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ScoreBadge

	return Model{
		store:     st,
		mode:      ModeList,
		spinner:   s,
		loading:   true,
		statusMsg: "Loading...",
	}
}

// Run starts the browser and blocks until the user quits.
func Run(st *store.Store) error {
	p := tea.NewProgram(New(st), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadPages())
}

func (m Model) loadPages() tea.Cmd {
	return func() tea.Msg {
		pages, err := m.store.TopPages(maxListed)
		if err != nil {
			return loadErrMsg{err}
		}
		return pagesLoadedMsg(pages)
	}
}

func (m Model) loadDetail(page store.PageRow) tea.Cmd {
	return func() tea.Msg {
		wars, err := m.store.PageWars(page.Page)
		if err != nil {
			return loadErrMsg{err}
		}
		violations, err := m.store.PageViolations(page.Page)
		if err != nil {
			return loadErrMsg{err}
		}
		return detailLoadedMsg(pageDetail{page: page, wars: wars, violations: violations})
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detailView.Width = msg.Width
		m.detailView.Height = msg.Height - 2 // header + status bar

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.mode = ModeHelp
		case key.Matches(msg, keys.Back):
			m.mode = ModeList
		case key.Matches(msg, keys.Refresh):
			m.loading = true
			m.statusMsg = "Loading..."
			cmds = append(cmds, m.loadPages())
		case key.Matches(msg, keys.Up):
			if m.mode == ModeList && m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.mode == ModeList && m.cursor < len(m.pages)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Top):
			if m.mode == ModeList {
				m.cursor = 0
			}
		case key.Matches(msg, keys.Bottom):
			if m.mode == ModeList && len(m.pages) > 0 {
				m.cursor = len(m.pages) - 1
			}
		case key.Matches(msg, keys.Enter):
			if m.mode == ModeList && m.cursor < len(m.pages) {
				cmds = append(cmds, m.loadDetail(m.pages[m.cursor]))
			}
		}

		if m.mode == ModeDetail {
			var cmd tea.Cmd
			m.detailView, cmd = m.detailView.Update(msg)
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case pagesLoadedMsg:
		m.loading = false
		m.err = nil
		m.pages = []store.PageRow(msg)
		if m.cursor >= len(m.pages) {
			m.cursor = 0
		}
		m.statusMsg = fmt.Sprintf("%d pages", len(m.pages))

	case detailLoadedMsg:
		m.detail = pageDetail(msg)
		m.detailView.SetContent(m.renderDetail())
		m.detailView.GotoTop()
		m.mode = ModeDetail

	case loadErrMsg:
		m.loading = false
		m.err = msg.err
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.mode {
	case ModeList:
		b.WriteString(m.renderList())
	case ModeDetail:
		b.WriteString(m.detailView.View())
	case ModeHelp:
		b.WriteString(m.renderHelp())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

func (m Model) renderHeader() string {
	left := fmt.Sprintf("FLASHPOINT │ %d pages", len(m.pages))

	right := ""
	if m.loading {
		right = m.spinner.View() + " " + m.statusMsg
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 0 {
		padding = 0
	}

	return Header.Render(left + strings.Repeat(" ", padding) + right)
}

func (m Model) renderList() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Failed to load results: %v", m.err))
	}
	if len(m.pages) == 0 {
		return HelpStyle.Render("No analyzed pages yet. Run `flashpoint analyze` first.")
	}

	availableHeight := m.height - 2
	if availableHeight < 1 {
		availableHeight = 1
	}

	scrollOffset := 0
	if m.cursor >= availableHeight {
		scrollOffset = m.cursor - availableHeight + 1
	}

	var b strings.Builder
	rendered := 0
	for i, page := range m.pages {
		if i < scrollOffset {
			continue
		}
		if rendered >= availableHeight {
			break
		}
		b.WriteString(renderPageLine(page, i+1, i == m.cursor, m.width))
		b.WriteString("\n")
		rendered++
	}
	return b.String()
}

// renderPageLine renders a single ranked page row.
func renderPageLine(page store.PageRow, rank int, selected bool, width int) string {
	title := page.Page
	titleWidth := width - 40
	if titleWidth < 20 {
		titleWidth = 20
	}
	if utf8.RuneCountInString(title) > titleWidth {
		runes := []rune(title)
		title = string(runes[:titleWidth-1]) + "…"
	}

	meta := fmt.Sprintf("%3d rv · %d wars · %d editors", page.Reverts, page.Wars, page.UniqueEditors)
	line := fmt.Sprintf("%3d. %-6.3f %s", rank, page.Score, title)

	if selected {
		pad := width - utf8.RuneCountInString(line) - utf8.RuneCountInString(meta) - 4
		if pad < 0 {
			pad = 0
		}
		return SelectedItem.Render(line + strings.Repeat(" ", pad) + meta)
	}

	styled := fmt.Sprintf("%s %s %s",
		MetaText.Render(fmt.Sprintf("%3d.", rank)),
		ScoreBadge.Render(fmt.Sprintf("%-6.3f", page.Score)),
		NormalItem.Render(title))
	return styled + " " + MetaText.Render(meta)
}

func (m Model) renderDetail() string {
	d := m.detail
	var b strings.Builder

	b.WriteString(NormalItem.Render(d.page.Page))
	b.WriteString("\n")
	b.WriteString(MetaText.Render(fmt.Sprintf(
		"score %.3f · %d reverts / %d edits (%.1f%%) · analyzed %s",
		d.page.Score, d.page.Reverts, d.page.TotalEdits,
		d.page.RevertRate*100, d.page.AnalyzedAt.Format("2006-01-02 15:04"))))
	b.WriteString("\n")

	b.WriteString(DetailHeader.Render("EDIT WARS"))
	b.WriteString("\n")
	if len(d.wars) == 0 {
		b.WriteString(MetaText.Render("  none"))
		b.WriteString("\n")
	}
	for _, w := range d.wars {
		b.WriteString(fmt.Sprintf("  %s\n", NormalItem.Render(fmt.Sprintf(
			"%s → %s", w.Start.Format("2006-01-02 15:04"), w.End.Format("2006-01-02 15:04")))))
		b.WriteString(MetaText.Render(fmt.Sprintf(
			"      %d reverts · avg interval %.1fm · %s",
			w.Reverts, w.AvgInterval, strings.Join(w.Editors, ", "))))
		b.WriteString("\n")
	}

	b.WriteString(DetailHeader.Render("3RR VIOLATIONS"))
	b.WriteString("\n")
	if len(d.violations) == 0 {
		b.WriteString(MetaText.Render("  none"))
		b.WriteString("\n")
	}
	for _, v := range d.violations {
		b.WriteString(fmt.Sprintf("  %s\n", WarningText.Render(fmt.Sprintf(
			"%s: %d reverts in window ending %s",
			v.Editor, v.Reverts, v.WindowEnd.Format("2006-01-02 15:04")))))
	}

	return b.String()
}

func (m Model) renderStatusBar() string {
	if m.err != nil {
		return StatusBar.Width(m.width).Render(m.statusMsg)
	}

	var position string
	if m.loading {
		position = " Loading... "
	} else if m.mode == ModeList && len(m.pages) > 0 {
		position = fmt.Sprintf(" %d/%d ", m.cursor+1, len(m.pages))
	}

	hints := []string{
		StatusBarKey.Render("j/k") + StatusBarText.Render(":nav"),
		StatusBarKey.Render("enter") + StatusBarText.Render(":detail"),
		StatusBarKey.Render("esc") + StatusBarText.Render(":back"),
		StatusBarKey.Render("r") + StatusBarText.Render(":reload"),
		StatusBarKey.Render("?") + StatusBarText.Render(":help"),
		StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
	}
	keyHints := strings.Join(hints, " ")

	padding := m.width - len(position) - lipgloss.Width(keyHints)
	if padding < 0 {
		padding = 0
	}

	return StatusBar.Width(m.width).Render(position + strings.Repeat(" ", padding) + keyHints)
}

func (m Model) renderHelp() string {
	help := `
  FLASHPOINT results browser

  NAVIGATION
    j/k, ↑/↓     Move cursor
    g/G          Jump to top/bottom
    enter        Open page detail
    esc          Back to list

  DATA
    r            Reload from store

  Press q to quit
`
	return HelpStyle.Render(help)
}

// Key bindings
var keys = struct {
	Quit    key.Binding
	Help    key.Binding
	Back    key.Binding
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Enter   key.Binding
}{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Help:    key.NewBinding(key.WithKeys("?")),
	Back:    key.NewBinding(key.WithKeys("esc")),
	Refresh: key.NewBinding(key.WithKeys("r")),
	Up:      key.NewBinding(key.WithKeys("k", "up")),
	Down:    key.NewBinding(key.WithKeys("j", "down")),
	Top:     key.NewBinding(key.WithKeys("g")),
	Bottom:  key.NewBinding(key.WithKeys("G")),
	Enter:   key.NewBinding(key.WithKeys("enter")),
}
