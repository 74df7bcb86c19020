// Package tui provides an interactive terminal UI for browsing control
// matrix validation issues using the Bubble Tea framework.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
)

var (
	keyUp     = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	keyDown   = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	keyDetail = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "row detail"))
	keyBack   = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	keySearch = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	keyLevel  = key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "error/warning"))
	keyClear  = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters"))
	keyNext   = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next issue"))
	keyPrev   = key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev issue"))
	keyQuit   = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
)

// Bindings shown in each view's help line, in display order.
var (
	listHelp   = []key.Binding{keyUp, keyDown, keyDetail, keySearch, keyLevel, keyClear, keyQuit}
	detailHelp = []key.Binding{keyBack, keyNext, keyPrev, keyQuit}
)

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return " " + strings.Join(parts, "  ")
}

type viewState int

const (
	listView viewState = iota
	detailView
)

// Model is the root Bubble Tea model for the issue browser.
type Model struct {
	state    viewState
	all      []issues.Issue
	rows     map[int]matrix.Entry
	catalog  map[string]catalog.CodeMeta
	source   string
	filter   filterState
	filtered []issues.Issue
	cursor   int
	width    int
	height   int
}

// New creates a Model over the issues of one validated matrix. Entries are
// used to show the offending row in the detail view and may be nil.
func New(all []issues.Issue, entries []matrix.Entry, cat map[string]catalog.CodeMeta, source string) *Model {
	rows := make(map[int]matrix.Entry, len(entries))
	for _, e := range entries {
		rows[e.Row] = e
	}
	m := &Model{
		state:   listView,
		all:     all,
		rows:    rows,
		catalog: cat,
		source:  source,
		filter:  newFilterState(),
		width:   80,
		height:  24,
	}
	m.applyFilter()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.state {
	case detailView:
		return renderDetail(m)
	default:
		return renderList(m)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filter.searching {
		return m.handleSearchKey(msg)
	}

	switch m.state {
	case listView:
		return m.handleListKey(msg)
	case detailView:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matchesBinding(msg, keyQuit):
		return m, tea.Quit

	case matchesBinding(msg, keyUp):
		if m.cursor > 0 {
			m.cursor--
		}

	case matchesBinding(msg, keyDown):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case matchesBinding(msg, keyDetail):
		if len(m.filtered) > 0 {
			m.state = detailView
		}

	case matchesBinding(msg, keySearch):
		m.filter.searching = true

	case matchesBinding(msg, keyLevel):
		m.filter.cycleLevel()
		m.applyFilter()

	case matchesBinding(msg, keyClear):
		m.filter = newFilterState()
		m.applyFilter()
	}
	return m, nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matchesBinding(msg, keyQuit):
		return m, tea.Quit

	case matchesBinding(msg, keyBack):
		m.state = listView

	case matchesBinding(msg, keyNext):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case matchesBinding(msg, keyPrev):
		if m.cursor > 0 {
			m.cursor--
		}
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filter.searching = false
		m.applyFilter()
	case "backspace":
		if len(m.filter.search) > 0 {
			m.filter.search = m.filter.search[:len(m.filter.search)-1]
			m.applyFilter()
		}
	default:
		if len(msg.String()) == 1 {
			m.filter.search += msg.String()
			m.applyFilter()
		}
	}
	return m, nil
}

func (m *Model) applyFilter() {
	m.filtered = m.filter.filterIssues(m.all)
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// matchesBinding checks if a key message matches a key binding.
func matchesBinding(msg tea.KeyMsg, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if msg.String() == k {
			return true
		}
	}
	return false
}
