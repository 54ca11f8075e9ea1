package repl

import (
	"github.com/charmbracelet/bubbles/key"

	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Interrupt key.Binding
	EOF       key.Binding
	Submit    key.Binding
	Next      key.Binding
	Prev      key.Binding
	Older     key.Binding
	Newer     key.Binding
	OlderMode key.Binding
	NewerMode key.Binding
	OlderCtrl key.Binding
	NewerCtrl key.Binding
	Escape    key.Binding
}

var keys = keyMap{
	Interrupt: key.NewBinding(key.WithKeys("ctrl+c"),
		key.WithHelp("Ctrl+C", "cancel a running statement or clear the line; exit on an empty line")),
	EOF: key.NewBinding(key.WithKeys("ctrl+d"),
		key.WithHelp("Ctrl+D", "exit on an empty line")),
	Submit: key.NewBinding(key.WithKeys("enter"),
		key.WithHelp("Enter", "run the line, or keep the selected candidate")),
	Next: key.NewBinding(key.WithKeys("tab"),
		key.WithHelp("Tab", "select the next candidate")),
	Prev: key.NewBinding(key.WithKeys("shift+tab"),
		key.WithHelp("Shift+Tab", "select the previous candidate")),
	Older: key.NewBinding(key.WithKeys("up"),
		key.WithHelp("Up/Down", "browse history, switching mode to match")),
	Newer: key.NewBinding(key.WithKeys("down")),
	OlderMode: key.NewBinding(key.WithKeys("shift+up"),
		key.WithHelp("Shift+Up/Down", "browse history of the current mode")),
	NewerMode: key.NewBinding(key.WithKeys("shift+down")),
	OlderCtrl: key.NewBinding(key.WithKeys("alt+up"),
		key.WithHelp("Alt+Up/Down", "browse command history")),
	NewerCtrl: key.NewBinding(key.WithKeys("alt+down")),
	Escape: key.NewBinding(key.WithKeys("esc"),
		key.WithHelp("Esc", "undo the selection, or toggle eval and command mode")),
}

// help returns the bindings that are described in the help text.
func (k keyMap) help() []key.Binding {
	all := []key.Binding{
		k.Next, k.Prev, k.Submit, k.Escape,
		k.Older, k.OlderMode, k.OlderCtrl,
		k.Interrupt, k.EOF,
	}

	described := all[:0]
	for _, b := range all {
		if b.Help().Key != "" {
			described = append(described, b)
		}
	}

	return described
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx(), "repl keypress", keyAttr(msg))

	switch {
	case key.Matches(msg, keys.Interrupt):
		return m.interrupt()

	case key.Matches(msg, keys.EOF):
		if m.input.Value() == "" && m.run == nil {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case key.Matches(msg, keys.Submit):
		return m.submit()

	case key.Matches(msg, keys.Next):
		return m.cycle(1), nil

	case key.Matches(msg, keys.Prev):
		return m.cycle(-1), nil

	case key.Matches(msg, keys.Older):
		return m.browse(-1), nil

	case key.Matches(msg, keys.Newer):
		return m.browse(1), nil

	case key.Matches(msg, keys.OlderMode):
		return m.browseMode(-1), nil

	case key.Matches(msg, keys.NewerMode):
		return m.browseMode(1), nil

	case key.Matches(msg, keys.OlderCtrl):
		return m.browseCommands(-1), nil

	case key.Matches(msg, keys.NewerCtrl):
		return m.browseCommands(1), nil

	case key.Matches(msg, keys.Escape):
		if m.comp.tabbing {
			m.comp.tabbing = false
			m.restore(m.comp.before)
			m.complete(false)

			return m, nil
		}

		m.nav = nil

		return m.switchMode(1 - m.mode), nil
	}

	// Typing confirms a completion that is already spelled out; any other
	// edit never does.
	typing := msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace

	if !typing || msg.Type == tea.KeySpace {
		m.comp.tabbing = false
	}

	if !typing {
		m.nav = nil
	}

	var cmd tea.Cmd

	m.hist = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.complete(typing)

	return m, cmd
}

// interrupt cancels the running statement, or clears the line, or quits
// when the line is already empty.
func (m model) interrupt() (model, tea.Cmd) {
	switch {
	case m.run != nil:
		m.run()

		return m, nil

	case m.input.Value() == "":
		m.quitting = true

		return m, tea.Quit
	}

	m.input.SetValue("")
	m.comp.tabbing = false
	m.nav = nil
	m.hist = m.history.Len()
	m.complete(false)

	return m, nil
}

// cycle moves the selection by step, wrapping around. A lone match is
// accepted at once.
func (m model) cycle(step int) model {
	n := len(m.comp.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m.accept(m.comp.matches[0].Str)

		return m

	case m.comp.tabbing:
		m.comp.sel = (m.comp.sel + step + n) % n

	default:
		m.comp.tabbing = true
		m.comp.before = m.save()
		m.comp.sel = 0

		if step < 0 {
			m.comp.sel = n - 1
		}
	}

	m.replaceWord(m.comp.matches[m.comp.sel].Str)

	return m
}
