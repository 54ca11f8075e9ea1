package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/whale/lang"
)

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string // callee, possibly a dotted path
	argIndex int    // 0-based, counting a method receiver as argument 0
	inCall   bool
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// detectFunctionCall finds the innermost unclosed call around cursor. In a
// method call (recv:name(...)) the receiver is the first argument, so the
// index of the first explicit argument is 1.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	open := -1
	depth := 0

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	argIndex := 0
	if before := input[:start]; strings.HasSuffix(before, ":") && !strings.HasSuffix(before, "::") {
		argIndex = 1
	}

	depth = 0
	inString := false

	for _, r := range input[open+1 : cursor] {
		switch {
		case r == '"':
			inString = !inString
		case inString:
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ',' && depth == 0:
			argIndex++
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// getSignature returns the signature and parameter names of a macro, or of a
// Function bound in scope, which takes the single parameter input.
func getSignature(reg *lang.Registry, scope *lang.Scope, name string) (string, []string) {
	if v, ok := scope.Lookup(name); ok {
		if v.Kind() != lang.KindFunction {
			return "", nil
		}

		return name + "(" + lang.InputKey + ")", []string{lang.InputKey}
	}

	spec, ok := reg.Lookup(name)
	if !ok {
		return "", nil
	}

	params := make([]string, len(spec.Params))
	copy(params, spec.Params)

	if spec.MaxArgs == lang.Variadic && len(params) > 0 {
		params[len(params)-1] += "..."
	}

	return spec.Signature(), params
}

// renderSignatureHint renders signature with the parameter at argIdx
// highlighted. A trailing variadic parameter stays highlighted for every
// argument past it.
func renderSignatureHint(signature string, params []string, argIdx int) string {
	if signature == "" {
		return ""
	}

	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return theme.signature.Render(signature)
	}

	name := signature[:openParen]

	if len(params) == 0 {
		return theme.callee.Render(name) + theme.signature.Render("()")
	}

	var b strings.Builder

	b.WriteString(theme.callee.Render(name))
	b.WriteString(theme.signature.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(theme.signature.Render(", "))
		}

		variadic := strings.HasSuffix(p, "...")

		if argIdx == i || (variadic && argIdx > i) {
			b.WriteString(theme.param.Render(p))
		} else {
			b.WriteString(theme.signature.Render(p))
		}
	}

	b.WriteString(theme.signature.Render(")"))

	return b.String()
}
