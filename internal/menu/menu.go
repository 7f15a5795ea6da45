// Package menu is the terminal front end: a two-item menu holding the
// toggle action and Quit.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/scienceol/awake/internal/toggle"
)

// Item indexes.
const (
	itemAction = iota
	itemQuit
	itemCount
)

// LabelMsg carries a new action label into the event loop.
type LabelMsg string

// dispatchedMsg is returned by the command that delivered an event.
type dispatchedMsg struct {
	event toggle.Event
	err   error
}

// Dispatcher receives menu events. Calls happen in bubbletea commands,
// outside Update, so they may block on the controller.
type Dispatcher interface {
	Handle(ev toggle.Event) error
}

// Model is the bubbletea model of the menu.
type Model struct {
	dispatch Dispatcher
	label    string
	cursor   int
	startup  tea.Cmd

	// pending disables selection while an event is in flight.
	pending bool
}

// New creates a menu showing label. startup runs once when the program
// starts; pass nil for none.
func New(d Dispatcher, label string, startup tea.Cmd) Model {
	return Model{dispatch: d, label: label, startup: startup}
}

// Label returns the action label currently shown.
func (m Model) Label() string {
	return m.label
}

func (m Model) Init() tea.Cmd {
	return m.startup
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LabelMsg:
		m.label = string(msg)
		return m, nil

	case dispatchedMsg:
		m.pending = false
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, m.deliver(toggle.EventQuit)
		case "up", "k":
			m.cursor = (m.cursor + itemCount - 1) % itemCount
		case "down", "j", "tab":
			m.cursor = (m.cursor + 1) % itemCount
		case "enter", " ":
			if m.cursor == itemQuit {
				return m, m.deliver(toggle.EventQuit)
			}
			if m.pending {
				return m, nil
			}
			m.pending = true
			return m, m.deliver(toggle.EventActivate)
		}
	}
	return m, nil
}

func (m Model) deliver(ev toggle.Event) tea.Cmd {
	d := m.dispatch
	return func() tea.Msg {
		return dispatchedMsg{event: ev, err: d.Handle(ev)}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("awake"))
	b.WriteString(" ")
	if m.label == toggle.LabelDisable {
		b.WriteString(statusAwakeStyle.Render("● keeping awake"))
	} else {
		b.WriteString(statusSleepStyle.Render("○ sleep allowed"))
	}
	b.WriteString("\n\n")

	for i, text := range []string{m.label, "Quit"} {
		style := itemStyle
		prefix := "  "
		if i == m.cursor {
			style = itemSelectedStyle
			prefix = "› "
		}
		b.WriteString(style.Render(prefix + text))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move • enter select • q quit"))
	b.WriteString("\n")
	return b.String()
}
