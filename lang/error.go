package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error produced by the interpreter derives from one of these, so the
// kind of any failure can be tested with [errors.Is].
var (
	ErrLex             = NewError("lex error")
	ErrParse           = NewError("parse error")
	ErrReadInput       = NewError("failed to read input")
	ErrUnknownVariable = NewError("unknown variable")
	ErrUnknownMacro    = NewError("unknown macro")
	ErrArityMismatch   = NewError("arity mismatch")
	ErrTypeMismatch    = NewError("type mismatch")
	ErrIndexOutOfRange = NewError("index out of range")
	ErrColumnMismatch  = NewError("column mismatch")
	ErrColumnNotFound  = NewError("column not found")
	ErrDivideByZero    = NewError("division by zero")
	ErrOverflow        = NewError("integer overflow")
	ErrExternal        = NewError("external failure")
	ErrDecode          = NewError("malformed input")
	ErrAssertion       = NewError("assertion failed")
	ErrRegistryFrozen  = NewError("registry is frozen")
	ErrDuplicateMacro  = NewError("macro already registered")
	ErrCallDepth       = NewError("call depth exceeded")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	kind  *Error      // Sentinel this error derives from
	pos   *Position   // Source position, if known
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<pos>: <msg>: <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 3)

	if e.pos != nil {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e derives from the same sentinel as target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.kind != nil {
		return e.kind
	}

	return e
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// Attrs returns a copy of the structured attributes attached to the error.
func (e *Error) Attrs() []slog.Attr { return slices.Clone(e.attrs) }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func (e *Error) derive() *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		kind:  e.root(),
		pos:   e.pos,
		attrs: e.attrs, // Share attrs
	}
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// Errorf creates a new Error of the same kind whose cause is the formatted
// message.
func (e *Error) Errorf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := e.derive()
	d.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(d.attrs, e.attrs)
	copy(d.attrs[len(e.attrs):], attrs)

	return d
}

// WithPosition attaches a source position unless one is already present.
// The innermost position wins, since it is the most precise.
func (e *Error) WithPosition(pos Position) *Error {
	if e.pos != nil || !pos.IsValid() {
		return e
	}

	d := e.derive()
	d.pos = &pos

	return d
}

// ParseError reports a syntax error at a source position.
type ParseError struct {
	Position Position
	Expected []string // Token descriptions that would have been accepted
	Found    string   // Description of the offending token
	Source   string   // The original source input
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Position.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Position.Column))

	if e.Found != "" {
		buf.WriteString(": unexpected ")
		buf.WriteString(e.Found)
	}

	buf.WriteString(e.snippet())

	if exp := e.expected(); len(exp) > 0 {
		buf.WriteString("\texpected: ")
		buf.WriteString(strings.Join(exp, ", "))
	}

	return buf.String()
}

// Is reports true for [ErrParse].
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.root() == ErrParse
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrParse.msg),
		slog.Int("line", e.Position.Line),
		slog.Int("column", e.Position.Column),
		slog.String("found", e.Found),
		slog.Any("expected", e.expected()),
	)
}

// snippet renders the offending source line with a caret under the column.
func (e *ParseError) snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Position.Line <= 0 || e.Position.Line > len(lines) {
		return "\n"
	}

	var src strings.Builder

	num := strconv.Itoa(e.Position.Line)

	src.WriteString(":\n  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(lines[e.Position.Line-1])
	src.WriteRune('\n')

	// 2 leading spaces + " | "
	padding := strings.Repeat(" ", len(num)+5)
	if e.Position.Column > 0 {
		padding += strings.Repeat(" ", e.Position.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

func (e *ParseError) expected() []string {
	exp := make([]string, 0, len(e.Expected))
	for _, s := range e.Expected {
		exp = append(exp, strconv.Quote(s))
	}

	slices.Sort(exp)

	return slices.Compact(exp)
}
