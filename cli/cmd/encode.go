package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/whale/lang"
)

// Output formats shared by the commands that print values.
const (
	formatWhale = "whale"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// encode writes v to w in format. The whale format prints nothing for an
// Empty value and renders Tables and Maps as grids.
func encode(ctx context.Context, w io.Writer, v lang.Value, format string, indent int) error {
	switch format {
	case formatJSON:
		data, err := v.MarshalJSON()
		if err != nil {
			return ErrEncode.With(slog.String("format", format)).Wrap(err)
		}

		if indent > 0 {
			var buf bytes.Buffer
			if err := json.Indent(&buf, data, "", strings.Repeat(" ", indent)); err != nil {
				return ErrEncode.With(slog.String("format", format)).Wrap(err)
			}

			data = buf.Bytes()
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case formatYAML:
		opts := []yaml.EncodeOption{yaml.Indent(max(indent, 1))}

		data, err := yaml.MarshalContext(ctx, v, opts...)
		if err != nil {
			return ErrEncode.With(slog.String("format", format)).Wrap(err)
		}

		_, err = w.Write(data)

		return err

	default:
		if v.IsEmpty() {
			return nil
		}

		_, err := fmt.Fprintln(w, lang.Display(v))

		return err
	}
}
