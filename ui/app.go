// Package ui is the terminal front-end: a live connection table plus an
// ident-interest page for narrowing the view to chosen reporters.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/grissess/gscope/engine"
	"github.com/grissess/gscope/model"
	"github.com/grissess/gscope/store"
)

// Page identifies the current screen.
type Page int

const (
	PageConnections Page = iota
	PageIdents
	pageCount
)

var pageNames = []string{"Connections", "Idents"}

// frameInterval is the cooperative tick driving the poll scheduler. The
// scheduler itself decides when a query actually runs.
const frameInterval = 100 * time.Millisecond

type tickMsg time.Time

// storeReadyMsg means the database file appeared on disk.
type storeReadyMsg struct{}

// Model is the bubbletea model.
type Model struct {
	st      *store.Store
	poller  *engine.Poller
	watcher *store.Watcher

	table       table.Model
	filterInput textinput.Model
	filtering   bool

	page        Page
	idents      []string
	interested  map[string]bool
	identCursor int

	width  int
	height int
	errMsg string
}

// NewModel creates the TUI model around a store and its scheduler.
func NewModel(st *store.Store, poller *engine.Poller, watcher *store.Watcher) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.CharLimit = 50
	ti.Width = 30

	t := table.New(
		table.WithColumns(connColumns()),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorGray).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(colorPanel)
	t.SetStyles(s)

	m := Model{
		st:          st,
		poller:      poller,
		watcher:     watcher,
		table:       t,
		filterInput: ti,
		interested:  make(map[string]bool),
	}
	for _, id := range st.Interest() {
		m.interested[id] = true
	}
	m.loadIdents()
	return m
}

func connColumns() []table.Column {
	return []table.Column{
		{Title: "Ident", Width: 12},
		{Title: "Source", Width: 26},
		{Title: "Dest", Width: 26},
		{Title: "Proto", Width: 5},
		{Title: "State", Width: 8},
		{Title: "Age", Width: 8},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitStore(m.watcher))
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitStore(w *store.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.C
		return storeReadyMsg{}
	}
}

func (m *Model) loadIdents() {
	idents, err := m.st.DistinctIdents()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.idents = idents
	if m.identCursor >= len(m.idents) {
		m.identCursor = 0
	}
}

// applyInterest pushes the toggled ident set down to the store so the next
// poll only returns matching rows.
func (m *Model) applyInterest() {
	var sel []string
	for _, id := range m.idents {
		if m.interested[id] {
			sel = append(sel, id)
		}
	}
	if err := m.st.SetInterest(sel); err != nil {
		m.errMsg = err.Error()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - 7
		if h < 3 {
			h = 3
		}
		m.table.SetHeight(h)
		return m, nil

	case tickMsg:
		if m.poller.Tick(time.Time(msg)) {
			m.refreshRows()
		}
		return m, tick()

	case storeReadyMsg:
		if err := m.st.Open(m.st.Path()); err != nil {
			m.errMsg = err.Error()
		} else {
			m.loadIdents()
		}
		return m, waitStore(m.watcher)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter", "esc":
			m.filtering = false
			m.filterInput.Blur()
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.refreshRows()
			return m, cmd
		}
		m.refreshRows()
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.page = (m.page + 1) % pageCount
		if m.page == PageIdents {
			m.loadIdents()
		}
	case "/":
		if m.page == PageConnections {
			m.filtering = true
			m.filterInput.Focus()
			return m, textinput.Blink
		}
	case "r":
		if err := m.st.Open(m.st.Path()); err != nil {
			m.errMsg = err.Error()
		} else {
			m.errMsg = ""
			m.loadIdents()
		}
	case "[":
		if h := m.poller.History() - 1; h >= 1 {
			m.poller.SetHistory(h)
		}
	case "]":
		m.poller.SetHistory(m.poller.History() + 1)
	case "-":
		if p := m.poller.Period() - 50*time.Millisecond; p >= 50*time.Millisecond {
			m.poller.SetPeriod(p)
		}
	case "=":
		m.poller.SetPeriod(m.poller.Period() + 50*time.Millisecond)
	case "j", "down":
		if m.page == PageIdents {
			if m.identCursor < len(m.idents)-1 {
				m.identCursor++
			}
			return m, nil
		}
	case "k", "up":
		if m.page == PageIdents {
			if m.identCursor > 0 {
				m.identCursor--
			}
			return m, nil
		}
	case " ", "enter":
		if m.page == PageIdents && m.identCursor < len(m.idents) {
			id := m.idents[m.identCursor]
			m.interested[id] = !m.interested[id]
			m.applyInterest()
			return m, nil
		}
	case "c":
		if m.page == PageIdents {
			m.interested = make(map[string]bool)
			m.applyInterest()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refreshRows rebuilds the table from the cached poll snapshot.
func (m *Model) refreshRows() {
	now := float64(time.Now().UnixNano()) / 1e9
	filter := strings.ToLower(m.filterInput.Value())

	var rows []table.Row
	for _, rec := range m.poller.Rows() {
		state, observed := engine.Classify(rec)
		if state == model.StateNone {
			continue
		}
		visible, alpha := engine.Decay(state, observed, now, m.poller.History(), rec.SrcPort, rec.DstPort)
		if !visible {
			continue
		}

		src := fmt.Sprintf("%s:%d", rec.SrcHost, rec.SrcPort)
		dst := fmt.Sprintf("%s:%d", rec.DstHost, rec.DstPort)
		if filter != "" {
			blob := strings.ToLower(rec.Ident + " " + src + " " + dst)
			if !strings.Contains(blob, filter) {
				continue
			}
		}

		age := "-"
		if observed > 0 {
			age = fmt.Sprintf("%.1fs", now-observed)
		}
		stateCell := StateStyle(state).Render(alphaStyle(alpha).Render(state.String()))
		rows = append(rows, table.Row{rec.Ident, src, dst, model.ProtoName(rec.Proto), stateCell, age})
	}
	m.table.SetRows(rows)
}

func (m Model) View() string {
	var sb strings.Builder

	var tabs []string
	for i, name := range pageNames {
		if Page(i) == m.page {
			tabs = append(tabs, selectedStyle.Render(" "+name+" "))
		} else {
			tabs = append(tabs, dimStyle.Render(" "+name+" "))
		}
	}
	sb.WriteString(titleStyle.Render("gscope"))
	sb.WriteString("  ")
	sb.WriteString(strings.Join(tabs, " "))
	sb.WriteString("  ")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("history %.0fs  period %dms",
		m.poller.History(), m.poller.Period().Milliseconds())))
	sb.WriteString("\n\n")

	switch m.page {
	case PageConnections:
		if m.filtering || m.filterInput.Value() != "" {
			sb.WriteString(m.filterInput.View())
			sb.WriteString("\n")
		}
		sb.WriteString(m.table.View())
	case PageIdents:
		sb.WriteString(m.viewIdents())
	}
	sb.WriteString("\n")

	if !m.st.Available() {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("waiting for %s to appear...", m.st.Path())))
		sb.WriteString("\n")
	}
	if m.errMsg != "" {
		sb.WriteString(failedStyle.Render("error: " + m.errMsg))
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("tab pages · / filter · space toggle ident · c clear · [ ] history · - = period · r reopen · q quit"))
	return sb.String()
}

func (m Model) viewIdents() string {
	if len(m.idents) == 0 {
		return dimStyle.Render("no idents reported yet")
	}

	var sb strings.Builder
	sb.WriteString(dimStyle.Render("empty selection shows every ident"))
	sb.WriteString("\n\n")
	for i, id := range m.idents {
		mark := "[ ]"
		if m.interested[id] {
			mark = "[x]"
		}
		line := fmt.Sprintf(" %s %s", mark, id)
		if i == m.identCursor {
			line = selectedStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Run starts the TUI and blocks until it exits.
func Run(st *store.Store, poller *engine.Poller, watcher *store.Watcher) error {
	p := tea.NewProgram(NewModel(st, poller, watcher), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
