package lang

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// ToNative converts v to plain Go values:
//
//	Empty     nil
//	Boolean   bool
//	Integer   int64
//	Float     float64
//	String    string
//	List      []any
//	Map       map[string]any
//	Table     []any of map[string]any, one per row
//	Function  string holding its source
//	Time      string in RFC 3339 format
//
// Key order is lost for Maps; use [Value.MarshalJSON] or
// [Value.MarshalYAML] where order matters.
func ToNative(v Value) any {
	switch v.Kind() {
	case KindBoolean:
		return v.Bool()
	case KindInteger:
		return v.Int()
	case KindFloat:
		return v.Float()
	case KindString:
		return v.Str()
	case KindList:
		out := make([]any, len(v.List()))
		for i, e := range v.List() {
			out[i] = ToNative(e)
		}

		return out
	case KindMap:
		out := make(map[string]any, v.Map().Len())
		for k, e := range v.Map().All() {
			out[k] = ToNative(e)
		}

		return out
	case KindTable:
		t := v.Table()

		out := make([]any, t.Len())
		for i := range out {
			out[i] = ToNative(MapValue(t.RowMap(i)))
		}

		return out
	case KindFunction:
		return FormatValue(v)
	case KindTime:
		return v.Time().String()
	default:
		return nil
	}
}

// FromNative converts a decoded Go value into a Value. It accepts the types
// produced by the JSON, YAML and TOML decoders: nil, booleans, every integer
// and float type, json.Number, strings, time.Time, slices, string-keyed maps
// (whose keys are sorted) and [yaml.MapSlice] (whose order is kept).
// Anything else fails with [ErrDecode].
func FromNative(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Empty(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x)
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case json.Number:
		return fromNumber(x)
	case string:
		return String(x), nil
	case time.Time:
		return TimeValue(NewTime(x)), nil
	case []any:
		return fromSlice(x)
	case []map[string]any:
		out := make([]Value, len(x))

		for i, e := range x {
			v, err := FromNative(e)
			if err != nil {
				return Empty(), err
			}

			out[i] = v
		}

		return Value{kind: KindList, ref: out}, nil
	case map[string]any:
		m := NewMap()

		for _, k := range slices.Sorted(maps.Keys(x)) {
			v, err := FromNative(x[k])
			if err != nil {
				return Empty(), err
			}

			m.Set(k, v)
		}

		return MapValue(m), nil
	case yaml.MapSlice:
		m := NewMap()

		for _, item := range x {
			v, err := FromNative(item.Value)
			if err != nil {
				return Empty(), err
			}

			m.Set(fmt.Sprint(item.Key), v)
		}

		return MapValue(m), nil
	case map[any]any:
		keyed := make(map[string]any, len(x))
		for k, e := range x {
			keyed[fmt.Sprint(k)] = e
		}

		return FromNative(keyed)
	default:
		return Empty(), ErrDecode.Errorf("unsupported value of type %T", x).
			With(slog.String("type", fmt.Sprintf("%T", x)))
	}
}

func fromSlice(x []any) (Value, error) {
	out := make([]Value, len(x))

	for i, e := range x {
		v, err := FromNative(e)
		if err != nil {
			return Empty(), err
		}

		out[i] = v
	}

	return Value{kind: KindList, ref: out}, nil
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Empty(), ErrDecode.Errorf("integer %d overflows int64", u)
	}

	return Int(int64(u)), nil
}

// fromNumber decodes integral numbers to Integer and any other number to
// Float.
func fromNumber(n json.Number) (Value, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return Int(i), nil
	}

	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return Empty(), ErrDecode.Wrap(err).With(slog.String("number", n.String()))
	}

	return Float(f), nil
}

// MarshalJSON implements [json.Marshaler]. Map keys keep their order and
// Tables encode as an array of row objects.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.Kind() {
	case KindList:
		buf.WriteByte('[')

		for i, e := range v.List() {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

	case KindMap:
		buf.WriteByte('{')

		i := 0
		for k, e := range v.Map().All() {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, _ := json.Marshal(k)
			buf.Write(key)
			buf.WriteByte(':')

			if err := e.writeJSON(buf); err != nil {
				return err
			}

			i++
		}

		buf.WriteByte('}')

	case KindTable:
		t := v.Table()

		buf.WriteByte('[')

		for i := range t.Len() {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := MapValue(t.RowMap(i)).writeJSON(buf); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

	default:
		data, err := json.Marshal(ToNative(v))
		if err != nil {
			return ErrTypeMismatch.Wrap(err).With(slog.String("kind", v.Kind().String()))
		}

		buf.Write(data)
	}

	return nil
}

// MarshalYAML implements the goccy/go-yaml marshaler interface. Map keys
// keep their order.
func (v Value) MarshalYAML() (any, error) {
	return yamlNative(v), nil
}

func yamlNative(v Value) any {
	switch v.Kind() {
	case KindList:
		out := make([]any, len(v.List()))
		for i, e := range v.List() {
			out[i] = yamlNative(e)
		}

		return out
	case KindMap:
		out := make(yaml.MapSlice, 0, v.Map().Len())
		for k, e := range v.Map().All() {
			out = append(out, yaml.MapItem{Key: k, Value: yamlNative(e)})
		}

		return out
	case KindTable:
		t := v.Table()

		out := make([]any, t.Len())
		for i := range out {
			out[i] = yamlNative(MapValue(t.RowMap(i)))
		}

		return out
	default:
		return ToNative(v)
	}
}
