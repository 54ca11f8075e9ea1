package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/ardnew/whale/lang"
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message, so that
// errors derived with Wrap and With still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{msg: e.msg, err: e.err, attrs: newAttrs}
}

var (
	ErrOpenSource  = NewError("open source")
	ErrScript      = NewError("script failed")
	ErrEncode      = NewError("encode result")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
	ErrWriteStdin  = NewError("cannot write formatted stdin (--write needs a file)")
	ErrWriteFormat = NewError("--write only supports the whale format")
)

var (
	errLabel = color.New(color.FgRed, color.Bold)
	errName  = color.New(color.Bold)
	errHint  = color.New(color.Faint)
)

// report writes a script error to w for a human reader and returns it
// wrapped in [ErrScript]. The location prefix is the source name followed
// by the position of the failing node, if known.
func report(w io.Writer, name string, err error) error {
	var (
		le *lang.Error
		pe *lang.ParseError
	)

	where := name
	msg := err.Error()

	switch {
	case errors.As(err, &pe):
		where = name + ":" + pe.Position.String()
	case errors.As(err, &le):
		if pos, ok := le.Position(); ok {
			where = name + ":" + pos.String()
			msg = strings.TrimPrefix(msg, pos.String()+": ")
		}
	}

	errName.Fprint(w, where+": ")
	errLabel.Fprint(w, "error: ")
	fmt.Fprintln(w, msg)

	if le != nil {
		for _, a := range le.Attrs() {
			errHint.Fprintf(w, "  %s=%s\n", a.Key, a.Value)
		}
	}

	return ErrScript.With(slog.String("source", name)).Wrap(err)
}
