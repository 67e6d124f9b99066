// Package tui renders the comparison in the terminal: a navigable file tree
// on the left and the selected file's diff on the right.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thiagokokada/diffy-go/internal/dirdiff"
	"github.com/thiagokokada/diffy-go/internal/watch"
)

// Config carries everything the terminal viewer needs to start.
type Config struct {
	Left           string
	Right          string
	IncludeIgnored bool
	Excludes       []string
	Theme          ThemePreference
	Mode           string
	Watch          bool
	Syntax         bool
}

const treePaneRatio = 0.25

type analyzedMsg struct {
	result *dirdiff.DiffResult
	err    error
}

type fileDiffMsg struct {
	rel  string
	diff *dirdiff.FileDiff
	err  error
}

type fsChangedMsg struct{}

type model struct {
	core    *dirdiff.Core
	keys    keyMap
	palette colorPalette
	hl      *highlighter

	width  int
	height int

	result    *dirdiff.DiffResult
	items     []treeItem
	cursor    int
	collapsed map[string]bool

	selected string
	diff     *dirdiff.FileDiff
	mode     viewMode
	scroll   int

	status string
	err    error
}

func newModel(cfg Config) model {
	core := dirdiff.New(cfg.Left, cfg.Right)
	core.IncludeIgnored = cfg.IncludeIgnored
	core.Excludes = cfg.Excludes
	palette := paletteForPreference(cfg.Theme)
	mode := modeUnified
	if cfg.Mode == modeSideBySide.String() {
		mode = modeSideBySide
	}
	return model{
		core:      core,
		keys:      defaultKeyMap(),
		palette:   palette,
		hl:        newHighlighter(cfg.Syntax, palette.isDark()),
		collapsed: map[string]bool{},
		mode:      mode,
		status:    "analyzing...",
	}
}

func (m model) Init() tea.Cmd {
	return analyzeCmd(m.core)
}

func analyzeCmd(core *dirdiff.Core) tea.Cmd {
	return func() tea.Msg {
		result, err := core.Analyze()
		return analyzedMsg{result: result, err: err}
	}
}

func loadDiffCmd(core *dirdiff.Core, rel string) tea.Cmd {
	return func() tea.Msg {
		diff, err := core.FileDiff(rel)
		return fileDiffMsg{rel: rel, diff: diff, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case analyzedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.result = msg.result
		m.status = ""
		if len(m.collapsed) == 0 && m.selected == "" {
			collectDirs(m.result.Tree, m.collapsed)
		}
		m.rebuildItems()
		if m.selected != "" {
			return m, loadDiffCmd(m.core, m.selected)
		}
		return m, nil

	case fileDiffMsg:
		if msg.rel != m.selected {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.diff = msg.diff
		return m, nil

	case fsChangedMsg:
		m.status = "reloading..."
		return m, analyzeCmd(m.core)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Open):
		if item, ok := m.current(); ok {
			if item.isDir {
				m.collapsed[item.path] = !m.collapsed[item.path]
				m.rebuildItems()
			} else {
				m.selected = item.path
				m.diff = nil
				m.scroll = 0
				return m, loadDiffCmd(m.core, item.path)
			}
		}

	case key.Matches(msg, m.keys.Toggle):
		if item, ok := m.current(); ok && item.isDir {
			m.collapsed[item.path] = !m.collapsed[item.path]
			m.rebuildItems()
		}

	case key.Matches(msg, m.keys.Collapse):
		if item, ok := m.current(); ok && item.isDir && !m.collapsed[item.path] {
			m.collapsed[item.path] = true
			m.rebuildItems()
		}

	case key.Matches(msg, m.keys.Expand):
		if item, ok := m.current(); ok && item.isDir && m.collapsed[item.path] {
			m.collapsed[item.path] = false
			m.rebuildItems()
		}

	case key.Matches(msg, m.keys.Unified):
		m.mode = modeUnified
		m.scroll = 0

	case key.Matches(msg, m.keys.SideBySide):
		m.mode = modeSideBySide
		m.scroll = 0

	case key.Matches(msg, m.keys.ScrollDown):
		m.scroll++

	case key.Matches(msg, m.keys.ScrollUp):
		if m.scroll > 0 {
			m.scroll--
		}

	case key.Matches(msg, m.keys.Top):
		m.scroll = 0

	case key.Matches(msg, m.keys.Reload):
		m.status = "reloading..."
		return m, analyzeCmd(m.core)
	}
	return m, nil
}

func (m *model) current() (treeItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return treeItem{}, false
	}
	return m.items[m.cursor], true
}

func (m *model) rebuildItems() {
	if m.result == nil {
		m.items = nil
		return
	}
	m.items = flattenTree(m.result.Tree, 0, m.collapsed)
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	treeWidth := int(float64(m.width) * treePaneRatio)
	if treeWidth < 20 {
		treeWidth = 20
	}
	diffWidth := m.width - treeWidth - 1
	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	tree := m.treePane(treeWidth, bodyHeight)
	diffPane := m.diffPane(diffWidth, bodyHeight)
	border := strings.TrimSuffix(strings.Repeat("│\n", bodyHeight), "\n")
	body := lipgloss.JoinHorizontal(lipgloss.Top, tree, m.palette.Border.Render(border), diffPane)
	return lipgloss.JoinVertical(lipgloss.Left, m.titleLine(), body, m.statusLine())
}

func (m model) titleLine() string {
	title := fmt.Sprintf("diffy %s ↔ %s", m.core.LeftPath, m.core.RightPath)
	return m.palette.Title.Render(truncateTo(title, m.width))
}

func (m model) statusLine() string {
	if m.err != nil {
		return m.palette.Removed.Render(truncateTo("error: "+m.err.Error(), m.width))
	}
	parts := []string{m.mode.String(), m.palette.ThemeName}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return m.palette.Dim.Render(truncateTo(strings.Join(parts, " · "), m.width))
}

func (m model) treePane(width, height int) string {
	var rows []string
	if m.result != nil {
		rows = append(rows, summaryLine(m.result, m.palette), "")
		start := 0
		if m.cursor >= height-2 {
			start = m.cursor - (height - 3)
		}
		for i := start; i < len(m.items) && len(rows) < height; i++ {
			item := m.items[i]
			rows = append(rows, truncateTo(renderTreeRow(item, m.collapsed[item.path], i == m.cursor, m.palette), width))
		}
	} else {
		rows = append(rows, m.palette.Dim.Render("analyzing..."))
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(rows, "\n"))
}

func (m model) diffPane(width, height int) string {
	var lines []string
	switch {
	case m.selected == "":
		lines = helpLines(m.keys, m.mode, m.palette)
	case m.diff == nil:
		lines = []string{m.palette.Dim.Render("loading " + m.selected + "...")}
	case m.mode == modeSideBySide:
		lines = renderSideBySide(m.diff, m.palette, width)
	default:
		lines = renderUnified(m.selected, m.diff, m.palette, m.hl)
	}

	if m.scroll > len(lines)-1 {
		m.scroll = len(lines) - 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
	visible := lines[m.scroll:]
	if len(visible) > height {
		visible = visible[:height]
	}
	rows := make([]string, 0, height)
	rows = append(rows, visible...)
	for len(rows) < height {
		rows = append(rows, "")
	}
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(strings.Join(rows, "\n"))
}

// Run starts the terminal viewer and blocks until the user quits.
func Run(cfg Config) error {
	m := newModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if cfg.Watch {
		w, err := watch.Start([]string{cfg.Left, cfg.Right}, func() {
			p.Send(fsChangedMsg{})
		})
		if err != nil {
			slog.Warn("file watching disabled", slog.Any("error", err))
		} else {
			defer w.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
