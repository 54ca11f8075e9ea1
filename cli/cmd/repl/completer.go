package repl

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/whale/lang"
)

// keywords complete at the top level alongside bindings and macros.
var keywords = []string{"true", "false", "empty", lang.InputKey}

// wordBreaks separate identifiers: whitespace, member access, and every
// operator or punctuation character of the language.
const wordBreaks = ". \t\"(){}+-*/%<>=!&|,:;"

func isWordBreak(r rune) bool { return strings.ContainsRune(wordBreaks, r) }

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when the cursor sits between two breaks.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	// Every break is a single byte, so the word starts just past it.
	start = strings.LastIndexFunc(input[:cursor], isWordBreak) + 1

	end = len(input)
	if i := strings.IndexFunc(input[cursor:], isWordBreak); i >= 0 {
		end = cursor + i
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain before the word at wordStart:
// "server.http" for the word "ho" in "x + server.http.ho".
func parentPath(input string, wordStart int) string {
	chain, ok := strings.CutSuffix(input[:wordStart], ".")
	if !ok {
		return ""
	}

	chain = strings.TrimRight(chain, ".")
	from := strings.LastIndexFunc(chain, func(r rune) bool {
		return r != '.' && isWordBreak(r)
	})

	return strings.TrimSpace(chain[from+1:])
}

// afterMethodColon reports whether the word at wordStart names the macro of
// a recv:name method call.
func afterMethodColon(input string, wordStart int) bool {
	before := strings.TrimRight(input[:wordStart], " ")

	return strings.HasSuffix(before, ":") && !strings.HasSuffix(before, "::")
}

func sortedUnique(lists ...[]string) []string {
	names := slices.Concat(lists...)
	slices.Sort(names)

	return slices.Compact(names)
}

// childCandidates returns the names that complete under parent: the keys of
// the Map it names, or at the top level every binding, macro and keyword.
func childCandidates(reg *lang.Registry, scope *lang.Scope, parent string) []string {
	if parent == "" {
		return sortedUnique(scope.Keys(), reg.Names(), keywords)
	}

	if v, ok := scope.Lookup(parent); ok && v.Kind() == lang.KindMap {
		return v.Map().Keys()
	}

	return nil
}

// callableCandidates returns the macros and the Function bindings.
func callableCandidates(reg *lang.Registry, scope *lang.Scope) []string {
	var funcs []string

	for _, k := range scope.Keys() {
		if v, _ := scope.Lookup(k); v.Kind() == lang.KindFunction {
			funcs = append(funcs, k)
		}
	}

	return sortedUnique(reg.Names(), funcs)
}

// completion is the state of the candidate bar.
type completion struct {
	matches    fuzzy.Matches
	start, end int // byte offsets of the word being completed
	sel        int // selected match while tabbing, otherwise -1
	tabbing    bool
	before     line // input when tabbing began
}

// candidates returns what the word at start may complete to, and whether
// an empty word lists all of them.
func (m model) candidates(input string, start int) ([]string, bool) {
	if m.mode == modeCtrl {
		return commandNames(), false
	}

	reg := m.interp.Registry()

	if parent := parentPath(input, start); parent != "" {
		return childCandidates(reg, m.scope, parent), true
	}

	if afterMethodColon(input, start) {
		return callableCandidates(reg, m.scope), false
	}

	return childCandidates(reg, m.scope, ""), false
}

// complete recomputes the matches for the word at the cursor. With confirm,
// a word that already spells its only match is accepted, so typing never
// leaves a redundant bar behind. Edits other than typing pass false.
func (m *model) complete(confirm bool) {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())
	cands, listAll := m.candidates(input, start)

	m.comp.start, m.comp.end = start, end
	if !m.comp.tabbing {
		m.comp.sel = -1
	}

	switch {
	case len(cands) == 0, word == "" && !listAll:
		m.comp.matches = nil
	case word == "":
		m.comp.matches = make(fuzzy.Matches, len(cands))
		for i, c := range cands {
			m.comp.matches[i] = fuzzy.Match{Str: c, Index: i}
		}
	default:
		m.comp.matches = fuzzy.Find(word, cands)
	}

	if confirm && len(m.comp.matches) == 1 && m.comp.matches[0].Str == word {
		m.accept(word)
	}
}

// accept puts s in place of the current word and closes the bar.
func (m *model) accept(s string) {
	m.replaceWord(s)
	m.comp.tabbing = false
	m.comp.sel = -1
	m.comp.matches = nil
}

// replaceWord puts s in place of the current word, leaving the cursor after
// it.
func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.comp.start] + s + input[m.comp.end:])
	m.comp.end = m.comp.start + len(s)
	m.input.SetCursor(m.comp.end)
}

// isFunction reports whether name is a macro or a Function binding.
func (m model) isFunction(name string) bool {
	if _, ok := m.interp.Registry().Lookup(name); ok {
		return true
	}

	v, ok := m.scope.Lookup(name)

	return ok && v.Kind() == lang.KindFunction
}

// renderCandidateBar lays matches out on one line no wider than width,
// ending in an ellipsis when they do not all fit. While tabbing, match sel
// is highlighted. Functions are marked with "()".
func renderCandidateBar(
	matches fuzzy.Matches,
	sel int,
	tabbing bool,
	width int,
	isFunc func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const gap = "  "

	more := theme.hint.Render("...")
	room := width - lipgloss.Width(more)

	parts := make([]string, 0, len(matches))
	used := 0

	for i, match := range matches {
		s := renderCandidate(match, tabbing && i == sel, isFunc != nil && isFunc(match.Str))

		w := lipgloss.Width(s)
		if i > 0 {
			w += len(gap)

			if used+w > room {
				parts = append(parts, more)

				break
			}
		}

		parts = append(parts, s)
		used += w
	}

	return strings.Join(parts, gap)
}

// renderCandidate renders one match with its matched runes emphasized.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	plain, hit := theme.candidate, theme.candidateMatch
	if selected {
		plain, hit = theme.selected, theme.selectedMatch
	}

	var b strings.Builder

	for i, r := range match.Str {
		style := plain
		if slices.Contains(match.MatchedIndexes, i) {
			style = hit
		}

		b.WriteString(style.Render(string(r)))
	}

	if function {
		b.WriteString(plain.Render("()"))
	}

	return b.String()
}

// preview renders v on one line of at most width runes.
func preview(v lang.Value, width int) string {
	s := lang.FormatValue(v)
	if v.Kind() == lang.KindString {
		s = strconv.Quote(s)
	}

	if width < 4 || utf8.RuneCountInString(s) <= width {
		return s
	}

	return string([]rune(s)[:width-3]) + "..."
}
