package repl

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// command is one control-mode command. The first name is canonical; the
// single-letter alias is accepted as well.
type command struct {
	name  string
	args  string
	help  string
	run   func(m model, args []string) (model, tea.Cmd)
	quiet bool // not echoed before running
}

var commands []command

func init() {
	commands = []command{
		{name: "help", help: "Print this help", run: func(m model, _ []string) (model, tea.Cmd) {
			return m, tea.Println(helpText())
		}},
		{name: "list", help: "List the bindings of the session scope", run: func(m model, _ []string) (model, tea.Cmd) {
			return m, tea.Println(m.listBindings())
		}},
		{name: "macros", args: "[group]", help: "List macros, optionally only one group", run: func(m model, args []string) (model, tea.Cmd) {
			group := ""
			if len(args) > 0 {
				group = args[0]
			}

			return m, tea.Println(m.listMacros(group))
		}},
		{name: "edit", help: "Edit the session in $VISUAL or $EDITOR and replay it", run: func(m model, _ []string) (model, tea.Cmd) {
			return m, m.editSession()
		}},
		{name: "clear", help: "Clear screen", quiet: true, run: func(m model, _ []string) (model, tea.Cmd) {
			return m, tea.ClearScreen
		}},
		{name: "quit", help: "Exit REPL", run: func(m model, _ []string) (model, tea.Cmd) {
			m.quitting = true

			return m, tea.Quit
		}},
	}
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}

	return names
}

// lookupCommand finds a command by name or by its first letter. "exit" is
// an alias of quit.
func lookupCommand(name string) (command, bool) {
	if name == "exit" {
		name = "quit"
	}

	i := slices.IndexFunc(commands, func(c command) bool {
		return c.name == name || (len(name) == 1 && c.name[:1] == name)
	})
	if i < 0 {
		return command{}, false
	}

	return commands[i], true
}

func helpText() string {
	var b strings.Builder

	b.WriteString("\n: Commands (press Esc to toggle mode):\n\n")

	for _, c := range commands {
		fmt.Fprintf(&b, "  %-15s %s\n", strings.TrimSpace(c.name+" "+c.args), c.help)
	}

	b.WriteString("\nUsage:\n")
	b.WriteString("  Type statements to run them in the session scope\n")
	b.WriteString("  Completions appear automatically as you type\n")

	for _, k := range keys.help() {
		fmt.Fprintf(&b, "  %-15s %s\n", k.Help().Key, k.Help().Desc)
	}

	return b.String()
}

// runCommand executes one control-mode line.
func (m model) runCommand(input string) (model, tea.Cmd) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return m, nil
	}

	m.logger.TraceContext(m.ctx(), "repl command",
		slog.String("command", fields[0]),
		slog.Any("args", fields[1:]),
	)

	c, ok := lookupCommand(fields[0])
	if !ok {
		return m, tea.Println(theme.err.Render("Unknown command: " + fields[0] + " (try 'help')"))
	}

	m, cmd := c.run(m, fields[1:])
	if c.quiet {
		return m, cmd
	}

	echo := tea.Println(theme.ctrlPrompt.Render(ctrlPrompt) + theme.input.Render(input))

	return m, tea.Sequence(echo, cmd)
}

// listBindings renders the session bindings sorted by name, one per line.
func (m model) listBindings() string {
	names := m.scope.Keys()
	if len(names) == 0 {
		return theme.hint.Render("  (no bindings)")
	}

	slices.Sort(names)

	pad := len(slices.MaxFunc(names, func(a, b string) int { return len(a) - len(b) }))
	rows := make([]string, len(names))

	for i, name := range names {
		v, _ := m.scope.Lookup(name)
		rows[i] = fmt.Sprintf("  %-*s %s %s", pad, name,
			theme.candidate.Render(v.Kind().String()),
			theme.hint.Render(preview(v, 48)))
	}

	return strings.Join(rows, "\n")
}

// listMacros renders the registered macros one group per line.
func (m model) listMacros(group string) string {
	var (
		order  []string
		byName = map[string][]string{}
	)

	for _, spec := range m.interp.Registry().All() {
		if group != "" && spec.Group != group {
			continue
		}

		if _, seen := byName[spec.Group]; !seen {
			order = append(order, spec.Group)
		}

		byName[spec.Group] = append(byName[spec.Group], spec.Name)
	}

	if len(order) == 0 {
		return theme.hint.Render("  (no macros in group " + strconv.Quote(group) + ")")
	}

	rows := make([]string, len(order))
	for i, g := range order {
		rows[i] = "  " + theme.candidate.Render(g+":") + " " + strings.Join(byName[g], ", ")
	}

	return strings.Join(rows, "\n")
}
