package repl

import (
	"strings"
	"testing"

	"github.com/ardnew/whale/lang"
)

func testModel(t *testing.T, scope *lang.Scope) model {
	t.Helper()

	if scope == nil {
		scope = lang.NewScope()
	}

	return newModel(t.Context(), Config{Interp: lang.New(), Scope: scope}, NewHistory(""))
}

func typeLine(m *model, s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

func TestLookupCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"quit", "quit"},
		{"q", "quit"},
		{"exit", "quit"},
		{"m", "macros"},
		{"list", "list"},
		{"e", "edit"},
	}

	for _, tt := range tests {
		c, ok := lookupCommand(tt.in)
		if !ok || c.name != tt.want {
			t.Errorf("lookupCommand(%q) = %q, %v; want %q", tt.in, c.name, ok, tt.want)
		}
	}

	if _, ok := lookupCommand("zap"); ok {
		t.Error("unknown command found")
	}
}

func TestHelpText(t *testing.T) {
	help := helpText()

	for _, want := range append(commandNames(), "macros [group]", "Shift+Tab", "Alt+Up/Down") {
		if !strings.Contains(help, want) {
			t.Errorf("help is missing %q", want)
		}
	}
}

func TestModel_Complete(t *testing.T) {
	m := testModel(t, testScope())

	typeLine(&m, "cfg.p")
	m.complete(false)

	if len(m.comp.matches) != 1 || m.comp.matches[0].Str != "port" {
		t.Fatalf("matches = %v", m.comp.matches)
	}

	m = m.cycle(1)
	if got := m.input.Value(); got != "cfg.port" {
		t.Errorf("input = %q", got)
	}

	if m.comp.matches != nil {
		t.Error("bar still open after accepting the only match")
	}

	typeLine(&m, "zeta")
	m.complete(true)

	if m.comp.matches != nil {
		t.Errorf("a spelled-out match was not confirmed: %v", m.comp.matches)
	}
}

func TestModel_CycleRestore(t *testing.T) {
	m := testModel(t, testScope())

	typeLine(&m, "cfg.")
	m.complete(false)

	if len(m.comp.matches) != 3 {
		t.Fatalf("matches = %v", m.comp.matches)
	}

	m = m.cycle(-1)
	if !m.comp.tabbing || m.input.Value() != "cfg.net" {
		t.Fatalf("tabbing = %v, input = %q", m.comp.tabbing, m.input.Value())
	}

	m = m.cycle(1)
	if m.input.Value() != "cfg.port" {
		t.Errorf("wrapped to %q", m.input.Value())
	}

	m.restore(m.comp.before)
	if m.input.Value() != "cfg." {
		t.Errorf("restored %q", m.input.Value())
	}
}

func TestModel_SwitchModeParksInput(t *testing.T) {
	m := testModel(t, nil)

	typeLine(&m, "x = ")
	m = m.switchMode(modeCtrl)

	if m.input.Value() != "" || m.mode != modeCtrl {
		t.Fatalf("ctrl mode input = %q", m.input.Value())
	}

	typeLine(&m, "li")
	m = m.switchMode(modeEval)

	if m.input.Value() != "x = " {
		t.Errorf("eval input = %q", m.input.Value())
	}

	m = m.switchMode(modeCtrl)
	if m.input.Value() != "li" {
		t.Errorf("ctrl input = %q", m.input.Value())
	}
}

func TestModel_Browse(t *testing.T) {
	m := testModel(t, nil)

	for _, e := range []HistoryEntry{{"a = 1", modeEval}, {"list", modeCtrl}, {"a", modeEval}} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.hist = m.history.Len()

	steps := []struct {
		step  int
		input string
		mode  inputMode
	}{
		{-1, "a", modeEval},
		{-1, "list", modeCtrl},
		{-1, "a = 1", modeEval},
		{-1, "a = 1", modeEval},
		{1, "list", modeCtrl},
	}

	for i, s := range steps {
		m = m.browse(s.step)
		if m.input.Value() != s.input || m.mode != s.mode {
			t.Errorf("step %d: input %q mode %d, want %q mode %d", i, m.input.Value(), m.mode, s.input, s.mode)
		}
	}

	m = m.browse(1).browse(1)
	if m.input.Value() != "" || m.hist != m.history.Len() {
		t.Errorf("past the newest entry: input %q at %d", m.input.Value(), m.hist)
	}

	m = m.browseMode(-1)
	if m.input.Value() != "a" {
		t.Errorf("browseMode = %q", m.input.Value())
	}

	m = m.browseMode(-1)
	if m.input.Value() != "a = 1" {
		t.Errorf("browseMode skipped to %q", m.input.Value())
	}
}

func TestModel_BrowseCommands(t *testing.T) {
	m := testModel(t, nil)

	_ = m.history.Add("macros", modeCtrl)
	_ = m.history.Add("x = 2", modeEval)
	m.hist = m.history.Len()

	typeLine(&m, "draft")

	m = m.browseCommands(-1)
	if m.mode != modeCtrl || m.input.Value() != "macros" {
		t.Fatalf("mode %d input %q", m.mode, m.input.Value())
	}

	m = m.browseCommands(-1)
	if m.mode != modeEval || m.input.Value() != "draft" || m.nav != nil {
		t.Errorf("not restored: mode %d input %q", m.mode, m.input.Value())
	}
}

func TestModel_Listings(t *testing.T) {
	m := testModel(t, nil)

	if got := m.listBindings(); !strings.Contains(got, "(no bindings)") {
		t.Errorf("empty scope listed %q", got)
	}

	m.scope = testScope()
	if got := m.listBindings(); !strings.Contains(got, "zeta") || !strings.Contains(got, "integer") {
		t.Errorf("bindings = %q", got)
	}

	logic := m.listMacros("logic")
	if !strings.Contains(logic, "logic:") || !strings.Contains(logic, "if") || strings.Contains(logic, "count") {
		t.Errorf("logic macros = %q", logic)
	}

	if got := m.listMacros("nope"); !strings.Contains(got, `"nope"`) {
		t.Errorf("unknown group = %q", got)
	}
}

func TestModel_SessionSource(t *testing.T) {
	m := newModel(t.Context(), Config{Interp: lang.New(), Source: "  a = 1;\n"}, NewHistory(""))

	m.session = append(m.session, "b = a;")

	if got := m.sessionSource(); got != "a = 1;\nb = a;\n" {
		t.Errorf("sessionSource() = %q", got)
	}
}
