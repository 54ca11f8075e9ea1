package builtin

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/whale/lang"
)

// codec converts between text in some format and values.
type codec struct {
	name   string
	decode func(string) (lang.Value, error)
	encode func(lang.Value) (string, error)
	// kinds accepted by the encoder; nil accepts any kind.
	kinds []lang.Kind
}

var codecs = []codec{
	{name: "json", decode: decodeJSON, encode: encodeJSON},
	{name: "yaml", decode: decodeYAML, encode: encodeYAML},
	{name: "toml", decode: decodeTOML, encode: encodeTOML, kinds: mapKind},
	{name: "csv", decode: decodeCSV, encode: encodeCSV},
}

func dataSpecs() []lang.Spec {
	specs := make([]lang.Spec, 0, 2*len(codecs))

	for _, c := range codecs {
		format := strings.ToUpper(c.name)

		specs = append(specs,
			lang.Spec{
				Name:        "from_" + c.name,
				Group:       groupData,
				Description: "Decode a " + format + " string into a value.",
				Params:      []string{"text"},
				MinArgs:     1,
				MaxArgs:     1,
				Kinds:       [][]lang.Kind{stringKind},
				Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
					v, err := c.decode(call.Arg(0).Str())
					if err != nil {
						return lang.Empty(), decodeError(err, c.name)
					}

					return v, nil
				},
			},
			lang.Spec{
				Name:        "to_" + c.name,
				Group:       groupData,
				Description: "Encode a value as a " + format + " string.",
				Params:      []string{"value"},
				MinArgs:     1,
				MaxArgs:     1,
				Kinds:       [][]lang.Kind{c.kinds},
				Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
					s, err := c.encode(call.Arg(0))
					if err != nil {
						return lang.Empty(), encodeError(err, c.name)
					}

					return lang.String(s), nil
				},
			},
		)
	}

	return specs
}

// decodeError reports malformed input as [lang.ErrDecode] unless it already
// carries a kind.
func decodeError(err error, format string) error {
	var ee *lang.Error
	if errors.As(err, &ee) && errors.Is(err, lang.ErrDecode) {
		return ee.With(slog.String("format", format))
	}

	return lang.ErrDecode.Wrap(err).With(slog.String("format", format))
}

// encodeError reports a value the format cannot represent as
// [lang.ErrTypeMismatch] unless it already carries a kind.
func encodeError(err error, format string) error {
	var ee *lang.Error
	if !errors.As(err, &ee) {
		ee = lang.ErrTypeMismatch.Wrap(err)
	}

	return ee.With(slog.String("format", format))
}

// decodeJSON keeps the order of object keys, which decoding into a Go map
// would lose.
func decodeJSON(s string) (lang.Value, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return lang.Empty(), err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return lang.Empty(), lang.ErrDecode.Errorf("unexpected data after the top-level value")
	}

	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (lang.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return lang.Empty(), err
	}

	switch tok := tok.(type) {
	case json.Delim:
		switch tok {
		case '[':
			var elems []lang.Value

			for dec.More() {
				e, err := decodeJSONValue(dec)
				if err != nil {
					return lang.Empty(), err
				}

				elems = append(elems, e)
			}

			if _, err := dec.Token(); err != nil {
				return lang.Empty(), err
			}

			return lang.List(elems...), nil

		case '{':
			m := lang.NewMap()

			for dec.More() {
				key, err := dec.Token()
				if err != nil {
					return lang.Empty(), err
				}

				e, err := decodeJSONValue(dec)
				if err != nil {
					return lang.Empty(), err
				}

				m.Set(key.(string), e) //nolint:forcetypeassert // object keys are strings
			}

			if _, err := dec.Token(); err != nil {
				return lang.Empty(), err
			}

			return lang.MapValue(m), nil
		}

		return lang.Empty(), lang.ErrDecode.Errorf("unexpected %s", tok)

	default:
		return lang.FromNative(tok)
	}
}

func encodeJSON(v lang.Value) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func decodeYAML(s string) (lang.Value, error) {
	var out any
	if err := yaml.UnmarshalWithOptions([]byte(s), &out, yaml.UseOrderedMap()); err != nil {
		return lang.Empty(), err
	}

	return lang.FromNative(out)
}

func encodeYAML(v lang.Value) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func decodeTOML(s string) (lang.Value, error) {
	var out map[string]any
	if _, err := toml.Decode(s, &out); err != nil {
		return lang.Empty(), err
	}

	return lang.FromNative(tomlNative(out))
}

// tomlNative replaces the local date and time types of TOML, which carry no
// zone, with their text.
// tomlLocalLayouts maps the zones the decoder gives local dates and times
// to the layout that writes them back without an offset.
var tomlLocalLayouts = map[string]string{
	"datetime-local": "2006-01-02T15:04:05.999999999",
	"date-local":     "2006-01-02",
	"time-local":     "15:04:05.999999999",
}

func tomlNative(x any) any {
	switch x := x.(type) {
	case map[string]any:
		for k, v := range x {
			x[k] = tomlNative(v)
		}

		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i, v := range x {
			out[i] = tomlNative(v)
		}

		return out
	case []any:
		for i, v := range x {
			x[i] = tomlNative(v)
		}

		return x
	case time.Time:
		if layout, ok := tomlLocalLayouts[x.Location().String()]; ok {
			return x.Format(layout)
		}

		return x
	default:
		return x
	}
}

func encodeTOML(v lang.Value) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(lang.ToNative(v)); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// decodeCSV reads a header row followed by records into a Table. Cells that
// parse as numbers become Integers or Floats.
func decodeCSV(s string) (lang.Value, error) {
	r := csv.NewReader(strings.NewReader(s))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return lang.Empty(), err
	}

	if len(records) == 0 {
		return lang.Empty(), lang.ErrDecode.Errorf("missing header row")
	}

	rows := make([][]lang.Value, len(records)-1)

	for i, rec := range records[1:] {
		row := make([]lang.Value, len(rec))
		for j, cell := range rec {
			row[j] = csvCell(strings.TrimSpace(cell))
		}

		rows[i] = row
	}

	t, err := lang.NewTable(records[0], rows...)
	if err != nil {
		return lang.Empty(), err
	}

	return lang.TableValue(t), nil
}

func csvCell(s string) lang.Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return lang.Int(n)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return lang.Float(f)
	}

	return lang.String(s)
}

// encodeCSV writes a Table as a header row and records, a Map as a row of
// keys and a row of values, a List of Lists as records, any other List as
// one record, and anything else as a single cell.
func encodeCSV(v lang.Value) (string, error) {
	var records [][]string

	switch v.Kind() {
	case lang.KindEmpty:

	case lang.KindTable:
		t := v.Table()

		records = append(records, t.Columns())
		for _, row := range t.Rows() {
			records = append(records, cells(row))
		}

	case lang.KindMap:
		var keys []string

		var values []lang.Value

		for k, e := range v.Map().All() {
			keys = append(keys, k)
			values = append(values, e)
		}

		records = append(records, keys, cells(values))

	case lang.KindList:
		elems := v.List()

		nested := len(elems) > 0
		for _, e := range elems {
			nested = nested && e.Kind() == lang.KindList
		}

		if !nested {
			records = append(records, cells(elems))

			break
		}

		for _, e := range elems {
			records = append(records, cells(e.List()))
		}

	default:
		records = append(records, cells([]lang.Value{v}))
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func cells(row []lang.Value) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = lang.FormatValue(v)
	}

	return out
}
