package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/whale/lang"
	"github.com/ardnew/whale/log"
	"github.com/ardnew/whale/profile"
)

// Init generates a configuration file holding the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	if err := configProgram(ktx).Format(ctx, file); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// configProgram builds one assignment per flag that has a value. Flag names
// become identifiers with hyphens replaced by underscores.
func configProgram(ktx *kong.Context) *lang.Program {
	prefixIgnore := []string{"help", "version", profile.Tag}

	var stmts []lang.Node

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		v, ok := flagValue(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		stmts = append(stmts, &lang.Assignment{
			Path: strings.ReplaceAll(flag.Name, "-", "_"),
			Op:   lang.TokenAssign,
			Expr: &lang.Literal{Value: v},
		})
	}

	return &lang.Program{Block: &lang.Block{Stmts: stmts}}
}

// flagValue converts a flag value to a Value. Unset flags, empty strings and
// empty slices report false.
func flagValue(val any) (lang.Value, bool) {
	if val == nil {
		return lang.Empty(), false
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Bool:
		return lang.Bool(rv.Bool()), true

	case reflect.String:
		if rv.Len() == 0 {
			return lang.Empty(), false
		}

		return lang.String(rv.String()), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lang.Int(rv.Int()), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lang.Int(int64(rv.Uint())), true

	case reflect.Float32, reflect.Float64:
		return lang.Float(rv.Float()), true

	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return lang.Empty(), false
		}

		elems := make([]lang.Value, 0, rv.Len())
		for j := range rv.Len() {
			if e, ok := flagValue(rv.Index(j).Interface()); ok {
				elems = append(elems, e)
			}
		}

		return lang.List(elems...), true

	case reflect.Map:
		if rv.Len() == 0 || rv.Type().Key().Kind() != reflect.String {
			return lang.Empty(), false
		}

		keys := make([]reflect.Value, 0, rv.Len())
		keys = append(keys, rv.MapKeys()...)
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})

		m := lang.NewMap()
		for _, k := range keys {
			if e, ok := flagValue(rv.MapIndex(k).Interface()); ok {
				m.Set(k.String(), e)
			}
		}

		return lang.MapValue(m), true

	default:
		return lang.String(fmt.Sprint(val)), true
	}
}
