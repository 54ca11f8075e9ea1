package lang

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind discriminates the variants of [Value].
type Kind uint8

const (
	KindEmpty Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindList
	KindMap
	KindTable
	KindFunction
	KindTime
)

var kindNames = [...]string{
	KindEmpty:    "empty",
	KindBoolean:  "boolean",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindString:   "string",
	KindList:     "list",
	KindMap:      "map",
	KindTable:    "table",
	KindFunction: "function",
	KindTime:     "time",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsNumeric reports whether k is Integer or Float.
func (k Kind) IsNumeric() bool { return k == KindInteger || k == KindFloat }

// rank orders kinds for cross-kind comparison. Integer and Float share a
// rank so that they compare numerically.
func (k Kind) rank() int {
	switch k {
	case KindEmpty:
		return 0
	case KindBoolean:
		return 1
	case KindInteger, KindFloat:
		return 2
	default:
		return int(k) - 1
	}
}

// Value is a runtime value of the language.
//
// Values are immutable once constructed. Operations that change a List, Map
// or Table build a new value and leave the original untouched, so a Value
// can be stored in any number of places without one binding observing
// changes made through another.
type Value struct {
	kind Kind
	n    int64
	f    float64
	s    string
	ref  any
}

// Function is a parameterless body closed over its defining scope. It is
// invoked with its single argument bound to input.
type Function struct {
	Body  *Block
	Scope *Scope
}

func Empty() Value { return Value{} }

func Bool(b bool) Value {
	v := Value{kind: KindBoolean}
	if b {
		v.n = 1
	}

	return v
}

func Int(n int64) Value { return Value{kind: KindInteger, n: n} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a List holding a copy of elems.
func List(elems ...Value) Value {
	return Value{kind: KindList, ref: slices.Clone(elems)}
}

// MapValue wraps m. The caller must not modify m afterwards.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}

	return Value{kind: KindMap, ref: m}
}

// TableValue wraps t. The caller must not modify t afterwards.
func TableValue(t *Table) Value {
	if t == nil {
		t = &Table{}
	}

	return Value{kind: KindTable, ref: t}
}

// FunctionValue returns a Function closed over scope.
func FunctionValue(body *Block, scope *Scope) Value {
	return Value{kind: KindFunction, ref: &Function{Body: body, Scope: scope}}
}

func TimeValue(t Time) Value { return Value{kind: KindTime, ref: t} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is Empty.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Accessors return the zero value of their type when v holds another kind.

func (v Value) Bool() bool { return v.kind == KindBoolean && v.n != 0 }

func (v Value) Int() int64 {
	if v.kind == KindInteger {
		return v.n
	}

	return 0
}

// Float returns the numeric value of an Integer or Float.
func (v Value) Float() float64 {
	switch v.kind {
	case KindInteger:
		return float64(v.n)
	case KindFloat:
		return v.f
	default:
		return 0
	}
}

func (v Value) Str() string {
	if v.kind == KindString {
		return v.s
	}

	return ""
}

// List returns the elements of a List. The slice must not be modified.
func (v Value) List() []Value {
	if l, ok := v.ref.([]Value); ok && v.kind == KindList {
		return l
	}

	return nil
}

func (v Value) Map() *Map {
	if m, ok := v.ref.(*Map); ok && v.kind == KindMap {
		return m
	}

	return nil
}

func (v Value) Table() *Table {
	if t, ok := v.ref.(*Table); ok && v.kind == KindTable {
		return t
	}

	return nil
}

func (v Value) Func() *Function {
	if f, ok := v.ref.(*Function); ok && v.kind == KindFunction {
		return f
	}

	return nil
}

func (v Value) Time() Time {
	if t, ok := v.ref.(Time); ok && v.kind == KindTime {
		return t
	}

	return Time{}
}

// Expect returns a TypeMismatch error unless v is one of kinds.
func (v Value) Expect(kinds ...Kind) error {
	if slices.Contains(kinds, v.kind) {
		return nil
	}

	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}

	return ErrTypeMismatch.Errorf("expected %s, got %s",
		strings.Join(names, " or "), v.kind)
}

// Truthy reports whether v counts as true in a condition:
//
//	Boolean   true
//	Integer   non-zero
//	Float     non-zero and not NaN
//	String    non-empty
//	List      non-empty
//	Map       non-empty
//	Table     at least one row
//	Function  always
//	Time      always
//	Empty     never
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBoolean:
		return v.n != 0
	case KindInteger:
		return v.n != 0
	case KindFloat:
		return v.f != 0 && !math.IsNaN(v.f)
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.List()) > 0
	case KindMap:
		return v.Map().Len() > 0
	case KindTable:
		return v.Table().Len() > 0
	case KindFunction, KindTime:
		return true
	default:
		return false
	}
}

// Equal reports whether v and w hold the same value. Integer and Float are
// compared numerically; any other pair of different kinds is unequal.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		if v.kind.IsNumeric() && w.kind.IsNumeric() {
			return v.Float() == w.Float()
		}

		return false
	}

	switch v.kind {
	case KindEmpty:
		return true
	case KindBoolean, KindInteger:
		return v.n == w.n
	case KindFloat:
		return v.f == w.f
	case KindString:
		return v.s == w.s
	case KindList:
		return slices.EqualFunc(v.List(), w.List(), Value.Equal)
	case KindMap:
		return v.Map().Equal(w.Map())
	case KindTable:
		return v.Table().Equal(w.Table())
	case KindFunction:
		return v.Func() == w.Func()
	case KindTime:
		return v.Time().Equal(w.Time())
	default:
		return false
	}
}

// Compare imposes a total order on values. Values of the same kind follow
// their natural order; Integer and Float compare numerically; otherwise
// kinds are ranked Empty < Boolean < numbers < String < List < Map < Table
// < Function < Time.
func (v Value) Compare(w Value) int {
	if c := cmp.Compare(v.kind.rank(), w.kind.rank()); c != 0 {
		return c
	}

	switch v.kind {
	case KindEmpty:
		return 0
	case KindBoolean:
		return cmp.Compare(v.n, w.n)
	case KindInteger, KindFloat:
		if v.kind == KindInteger && w.kind == KindInteger {
			return cmp.Compare(v.n, w.n)
		}

		return cmp.Compare(v.Float(), w.Float())
	case KindString:
		return strings.Compare(v.s, w.s)
	case KindList:
		return slices.CompareFunc(v.List(), w.List(), Value.Compare)
	case KindMap:
		return v.Map().compare(w.Map())
	case KindTable:
		return v.Table().compare(w.Table())
	case KindTime:
		return v.Time().Compare(w.Time())
	default:
		return 0
	}
}

// Clone returns a deep copy of v. Since values are immutable this is only
// needed when a copy will be handed to code that mutates containers in
// place, such as a Map builder.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		l := v.List()

		out := make([]Value, len(l))
		for i, e := range l {
			out[i] = e.Clone()
		}

		return Value{kind: KindList, ref: out}
	case KindMap:
		return MapValue(v.Map().Clone())
	case KindTable:
		return TableValue(v.Table().Clone())
	default:
		return v
	}
}

// String renders v for display.
func (v Value) String() string { return FormatValue(v) }

// Append returns a new List with elem added at the end.
func (v Value) Append(elem Value) Value {
	l := v.List()

	out := make([]Value, len(l), len(l)+1)
	copy(out, l)

	return Value{kind: KindList, ref: append(out, elem)}
}

// Index returns the element of a List at i, counting from the end when i is
// negative.
func (v Value) Index(i int64) (Value, error) {
	if err := v.Expect(KindList); err != nil {
		return Empty(), err
	}

	l := v.List()

	n := int64(len(l))
	if i < 0 {
		i += n
	}

	if i < 0 || i >= n {
		return Empty(), ErrIndexOutOfRange.Errorf("index %d, length %d", i, n)
	}

	return l[i], nil
}

// Len returns the number of elements of a String (in bytes), List, Map, or
// Table (rows), and zero for any other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len(v.s)
	case KindList:
		return len(v.List())
	case KindMap:
		return v.Map().Len()
	case KindTable:
		return v.Table().Len()
	default:
		return 0
	}
}
