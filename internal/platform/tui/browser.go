package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/contentforge/internal/content"
)

// Browser layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show package list sidebar
	sidebarWidth       = 22 // Width of package list sidebar
	maxGroupsShown     = 3  // Max groups to show in the Groups column
)

// BrowserKeyMap defines the key bindings for the preset browser.
type BrowserKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Back        key.Binding
	Quit        key.Binding
	NextPackage key.Binding
	PrevPackage key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k BrowserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextPackage, k.PrevPackage, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k BrowserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPackage, k.PrevPackage},
		{k.Back, k.Quit},
	}
}

// DefaultBrowserKeyMap returns default key bindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "prev package"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next package"),
		),
		NextPackage: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next package"),
		),
		PrevPackage: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev package"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BrowserModel is the Bubble Tea model for the preset browser screen.
type BrowserModel struct {
	library     *content.Library
	packages    []*content.Package
	pkgCursor   int // Currently selected package index
	entries     []content.PresetEntry
	table       table.Model
	help        help.Model
	keys        BrowserKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool // Whether to show package list sidebar
}

// NewBrowserModel creates a new preset browser model.
func NewBrowserModel(lib *content.Library, width, height int) BrowserModel {
	keys := DefaultBrowserKeyMap()
	h := help.New()
	h.ShowAll = false

	m := BrowserModel{
		library:     lib,
		packages:    lib.Packages(),
		pkgCursor:   0,
		keys:        keys,
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	m.table = m.createTable()

	if len(m.packages) > 0 {
		m.loadEntries(0)
	}

	return m
}

// createTable creates a new table with appropriate columns.
func (m *BrowserModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Class", Width: 14},
		{Title: "Preset", Width: 24},
		{Title: "Groups", Width: 20},
		{Title: "File", Width: 24},
	}

	// Calculate available width for table
	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3 // Sidebar + border + gap
	}

	// Give extra room to the preset and file columns on wide terminals
	if extra := tableWidth - 86; extra > 0 {
		columns[1].Width += extra / 2
		columns[3].Width += extra - extra/2
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(m.height-8), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadEntries loads the preset entries for the package at the given index.
func (m *BrowserModel) loadEntries(idx int) {
	if idx < 0 || idx >= len(m.packages) {
		m.entries = nil
		m.updateTableRows()
		return
	}
	m.entries = m.packages[idx].PresetEntries()
	m.updateTableRows()
}

// updateTableRows updates the table with the current package's presets.
func (m *BrowserModel) updateTableRows() {
	rows := make([]table.Row, len(m.entries))
	for i, entry := range m.entries {
		e := entry.Preset
		rows[i] = table.Row{
			e.Class().Name(),
			e.PresetName(),
			formatGroups(e.Groups()),
			entry.Source,
		}
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// formatGroups joins a group list for display, truncating long sets.
func formatGroups(groups []string) string {
	if len(groups) == 0 {
		return "-"
	}
	if len(groups) > maxGroupsShown {
		return strings.Join(groups[:maxGroupsShown], ", ") + fmt.Sprintf(" +%d", len(groups)-maxGroupsShown)
	}
	return strings.Join(groups, ", ")
}

// Init initializes the browser model.
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextPackage), key.Matches(msg, m.keys.Right):
			if len(m.packages) > 0 {
				m.pkgCursor = (m.pkgCursor + 1) % len(m.packages)
				m.loadEntries(m.pkgCursor)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevPackage), key.Matches(msg, m.keys.Left):
			if len(m.packages) > 0 {
				m.pkgCursor--
				if m.pkgCursor < 0 {
					m.pkgCursor = len(m.packages) - 1
				}
				m.loadEntries(m.pkgCursor)
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the browser.
func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	// Title
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "CONTENT BROWSER"
	if len(m.packages) > 0 {
		p := m.packages[m.pkgCursor]
		name := p.FriendlyName()
		if name == "" {
			name = p.FileName()
		}
		title = fmt.Sprintf("CONTENT BROWSER - %s (%d presets)", name, p.PresetCount())
	}

	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		// Wide layout: sidebar + table
		b.WriteString(m.renderWideLayout())
	} else {
		// Narrow layout: package tabs + table
		b.WriteString(m.renderNarrowLayout())
	}

	// Help bar
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the browser with a sidebar for package selection.
func (m BrowserModel) renderWideLayout() string {
	// Sidebar (package list)
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Packages\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, p := range m.packages {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.pkgCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}

		name := p.FileName()
		maxLen := sidebarWidth - 6
		if len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	sidebarRendered := sidebarStyle.Render(sidebar.String())

	// Table
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	tableRendered := tableStyle.Render(m.renderTableContent())

	// Join horizontally
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarRendered, "  ", tableRendered)
}

// renderNarrowLayout renders the browser with package tabs above the table.
func (m BrowserModel) renderNarrowLayout() string {
	var b strings.Builder

	// Package tabs (horizontal)
	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(m.packages))
	for i, p := range m.packages {
		shortName := p.FileName()
		if len(shortName) > 12 {
			shortName = shortName[:11] + "."
		}
		if i == m.pkgCursor {
			tabs[i] = activeTabStyle.Render(shortName)
		} else {
			tabs[i] = tabStyle.Render(" " + shortName + " ")
		}
	}

	// Wrap tabs if needed
	tabLine := strings.Join(tabs, " ")
	if len(tabLine) > m.width-4 && len(m.packages) > 0 {
		// Just show current package with arrows
		tabLine = fmt.Sprintf("< %s >", m.packages[m.pkgCursor].FileName())
	}
	b.WriteString(centerText(tabLine, m.width))
	b.WriteString("\n\n")

	// Table
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m BrowserModel) renderTableContent() string {
	if len(m.entries) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No presets in this package.\nLoad some content first!")
	}

	return m.table.View()
}

// IsQuitting returns true if the user closed the browser.
func (m BrowserModel) IsQuitting() bool {
	return m.quitting
}

// RunBrowser runs the preset browser screen over the given library.
func RunBrowser(lib *content.Library, width, height int) error {
	model := NewBrowserModel(lib, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
