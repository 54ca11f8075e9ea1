package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/whale/lang"
	"github.com/ardnew/whale/log"
)

// inputMode selects what a submitted line is: a statement or a command.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

const (
	evalPrompt = "🐋 "
	ctrlPrompt = " :"
)

func prompt(mode inputMode) string {
	if mode == modeCtrl {
		return theme.ctrlPrompt.Render(ctrlPrompt)
	}

	return theme.prompt.Render(evalPrompt)
}

type (
	// evalMsg carries the outcome of one evaluated line.
	evalMsg struct {
		source string // canonical form, appended to the session on success
		value  lang.Value
		err    error
	}

	// editMsg carries the outcome of the edit command. A nil scope with no
	// error means the user emptied the buffer.
	editMsg struct {
		source string
		scope  *lang.Scope
		err    error
	}
)

// Config describes a REPL session.
type Config struct {
	Interp *lang.Interpreter
	// Scope holds the session bindings; nil starts empty.
	Scope *lang.Scope
	// Source was already run in Scope and starts the session buffer that
	// the edit command opens.
	Source string
	// History is the history file; empty keeps history in memory.
	History string
	Logger  log.Logger
}

type model struct {
	ctx     func() context.Context
	input   textinput.Model
	interp  *lang.Interpreter
	scope   *lang.Scope
	session []string // canonical source of every successful line
	logger  log.Logger
	history *History
	hist    int                // browsing position; history.Len() when not browsing
	run     context.CancelFunc // non-nil while a line is evaluated
	comp    completion
	nav     *commandNav
	parked  [2]line // pending input of each mode
	mode    inputMode
	width   int

	quitting bool
}

// Run starts an interactive session and blocks until the user quits.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func() { cancel(err) }()

	if cfg.Interp == nil {
		cfg.Interp = lang.New(lang.WithLogger(cfg.Logger))
	}

	if cfg.Scope == nil {
		cfg.Scope = lang.NewScope()
	}

	history := NewHistory(cfg.History)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", cfg.History),
			log.Err(err),
		)
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", cfg.History),
		slog.Int("history_entries", history.Len()),
		slog.Int("bindings", len(cfg.Scope.Keys())),
	)

	_, err = tea.NewProgram(newModel(ctx, cfg, history), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return context.Cause(ctx)
	}

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config, history *History) model {
	in := textinput.New()
	in.Prompt = prompt(modeEval)
	in.CharLimit = 4096
	in.Width = defaultWidth
	in.Focus()

	m := model{
		ctx:     func() context.Context { return ctx },
		input:   in,
		interp:  cfg.Interp,
		scope:   cfg.Scope,
		logger:  cfg.Logger,
		history: history,
		hist:    history.Len(),
		comp:    completion{sel: -1},
		width:   defaultWidth,
	}

	if s := strings.TrimSpace(cfg.Source); s != "" {
		m.session = []string{s}
	}

	return m
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case evalMsg:
		return m.evaluated(msg)

	case editMsg:
		return m.edited(msg)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.status() + "\n"
}

// status renders the line under the input.
func (m model) status() string {
	input := m.input.Value()

	switch {
	case m.run != nil:
		return theme.hint.Render("running... (Ctrl+C to cancel)")

	case m.hist < m.history.Len():
		pos := lipgloss.NewStyle().Bold(true).Render(fmt.Sprint(m.hist + 1))

		return theme.hint.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))

	case strings.TrimSpace(input) == "" && m.mode == modeCtrl:
		return theme.hint.Render("Type: " + strings.Join(commandNames(), ", ") + " (press Esc to return)")

	case strings.TrimSpace(input) == "":
		return theme.hint.Render("Type a statement or press Esc for commands")
	}

	if call := detectFunctionCall(input, m.input.Position()); call.inCall && m.mode == modeEval && !m.comp.tabbing {
		if sig, params := getSignature(m.interp.Registry(), m.scope, call.name); sig != "" {
			return renderSignatureHint(sig, params, call.argIndex)
		}
	}

	return renderCandidateBar(m.comp.matches, m.comp.sel, m.comp.tabbing, m.width, m.isFunction)
}

func keyAttr(msg tea.KeyMsg) slog.Attr {
	return slog.Group("key",
		slog.String("name", msg.String()),
		slog.Int("type", int(msg.Type)),
	)
}

// submit runs the line, or keeps the selected candidate while tabbing.
func (m model) submit() (model, tea.Cmd) {
	if m.run != nil {
		return m, nil
	}

	m.nav = nil

	if m.comp.tabbing && len(m.comp.matches) > 0 {
		m.comp.tabbing = false
		m.complete(true)

		return m, nil
	}

	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.parked = [2]line{}
	m.input.SetValue("")
	m.comp.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctx(), "could not save history", log.Err(err))
	}

	m.hist = m.history.Len()

	if m.mode == modeCtrl {
		return m.runCommand(input)
	}

	m.logger.TraceContext(m.ctx(), "repl eval", slog.String("input", input))

	ctx, cancel := context.WithCancel(m.ctx())
	m.run = cancel

	echo := tea.Println(theme.prompt.Render(evalPrompt) + theme.input.Render(input))

	return m, tea.Sequence(echo, evaluate(ctx, cancel, m.interp, m.scope, input))
}

// evaluate returns a command that runs input in scope and reports the
// outcome as an evalMsg.
func evaluate(
	ctx context.Context,
	cancel context.CancelFunc,
	interp *lang.Interpreter,
	scope *lang.Scope,
	input string,
) tea.Cmd {
	return func() tea.Msg {
		defer cancel()

		prog, err := interp.Parse(ctx, input)
		if err != nil {
			return evalMsg{err: err}
		}

		v, err := interp.Run(ctx, prog, scope)
		if err != nil {
			return evalMsg{err: err}
		}

		var sb strings.Builder
		_ = prog.Format(ctx, &sb)

		return evalMsg{source: strings.TrimSpace(sb.String()), value: v}
	}
}

func (m model) evaluated(msg evalMsg) (model, tea.Cmd) {
	m.run = nil

	if msg.err != nil {
		m.logger.TraceContext(m.ctx(), "repl eval failed", log.Err(msg.err))

		return m, tea.Println(theme.err.Render("error: " + msg.err.Error()))
	}

	if msg.source != "" {
		m.session = append(m.session, msg.source)
	}

	m.logger.TraceContext(m.ctx(), "repl eval done",
		slog.String("kind", msg.value.Kind().String()))

	if msg.value.IsEmpty() {
		return m, nil
	}

	return m, tea.Println(theme.result.Render(lang.Display(msg.value)))
}

// editSession hands the terminal to the user's editor for the edit command.
func (m model) editSession() tea.Cmd {
	cmd := &editSessionCommand{
		source:  m.sessionSource(),
		interp:  m.interp,
		ctxFunc: m.ctx,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		return editMsg{source: cmd.newSource, scope: cmd.newScope, err: err}
	})
}

func (m model) edited(msg editMsg) (model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, ErrEditDeclined):
		m.quitting = true

		return m, tea.Quit

	case msg.err != nil:
		return m, tea.Println(theme.err.Render("✘ error: " + msg.err.Error()))

	case msg.scope == nil:
		return m, tea.Println(theme.hint.Render("✘ edit cancelled"))
	}

	m.scope = msg.scope
	m.session = []string{msg.source}

	m.logger.TraceContext(m.ctx(), "repl edit complete",
		slog.Int("bindings", len(m.scope.Keys())))

	return m, tea.Println(theme.result.Render("✔ session replayed"))
}

// sessionSource joins the session into one script.
func (m model) sessionSource() string {
	if len(m.session) == 0 {
		return ""
	}

	return strings.Join(m.session, "\n") + "\n"
}
