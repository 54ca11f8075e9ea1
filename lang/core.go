package lang

import (
	"context"
	"log/slog"
	"slices"
	"unicode/utf8"
)

const (
	groupCollections = "collections"
	groupLogic       = "logic"
)

var (
	tableKind  = []Kind{KindTable}
	listKind   = []Kind{KindList}
	stringKind = []Kind{KindString}
)

// anyKind accepts every kind.
var anyKind []Kind

// coreSpecs are the macros every registry starts with. They only touch
// values; macros with external effects live in package builtin.
func coreSpecs() []Spec {
	return []Spec{
		{
			Name:        "get",
			Group:       groupCollections,
			Description: "Get an element of a list or character of a string by index, a map entry by key, or a table row (by index) or column (by name).",
			Params:      []string{"collection", "key"},
			MinArgs:     2,
			MaxArgs:     2,
			Kinds: [][]Kind{
				{KindList, KindMap, KindTable, KindString},
				{KindInteger, KindString},
			},
			Macro: macroGet,
		},
		{
			Name:        "count",
			Group:       groupCollections,
			Description: "Count the elements of a list, entries of a map, rows of a table, or bytes of a string.",
			Params:      []string{"collection"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]Kind{{KindList, KindMap, KindTable, KindString}},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				return Int(int64(c.Arg(0).Len())), nil
			},
		},
		{
			Name:        "length",
			Group:       groupCollections,
			Description: "Count the elements of a list or the characters of a string.",
			Params:      []string{"value"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]Kind{{KindList, KindString}},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				if v := c.Arg(0); v.Kind() == KindString {
					return Int(int64(utf8.RuneCountInString(v.Str()))), nil
				}

				return Int(int64(c.Arg(0).Len())), nil
			},
		},
		{
			Name:        "append",
			Group:       groupCollections,
			Description: "Append values to the end of a list.",
			Params:      []string{"list", "values"},
			MinArgs:     1,
			MaxArgs:     Variadic,
			Kinds:       [][]Kind{listKind, anyKind},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				return List(slices.Concat(c.Arg(0).List(), c.Args[1:])...), nil
			},
		},
		{
			Name:        "create_table",
			Group:       groupCollections,
			Description: "Create a table from a list of column names and a list of rows.",
			Params:      []string{"columns", "rows"},
			MinArgs:     1,
			MaxArgs:     2,
			Kinds:       [][]Kind{listKind, listKind},
			Macro:       macroCreateTable,
		},
		{
			Name:        "insert",
			Group:       groupCollections,
			Description: "Return a table with rows appended. Fails without inserting anything if any row has the wrong width.",
			Params:      []string{"table", "rows"},
			MinArgs:     2,
			MaxArgs:     Variadic,
			Kinds:       [][]Kind{tableKind, listKind},
			Macro:       macroInsert,
		},
		{
			Name:        "select",
			Group:       groupCollections,
			Description: "Project table columns or map keys by name (or list of names), or list elements by index.",
			Params:      []string{"collection", "keys"},
			MinArgs:     2,
			MaxArgs:     Variadic,
			Kinds: [][]Kind{
				{KindTable, KindMap, KindList},
				{KindString, KindInteger, KindList},
			},
			Macro: macroSelect,
		},
		{
			Name:        "select_where",
			Group:       groupCollections,
			Description: "Keep the table rows (or list elements) for which the predicate is truthy. Column names and input are bound while it runs.",
			Params:      []string{"collection", "predicate"},
			MinArgs:     2,
			MaxArgs:     2,
			Kinds:       [][]Kind{{KindTable, KindList}},
			Deferred:    []int{1},
			Macro:       macroSelectWhere,
		},
		{
			Name:        "sort_by",
			Group:       groupCollections,
			Description: "Stable sort of table rows by one column.",
			Params:      []string{"table", "column"},
			MinArgs:     2,
			MaxArgs:     2,
			Kinds:       [][]Kind{tableKind, stringKind},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				t, err := c.Arg(0).Table().SortBy(c.Arg(1).Str())
				if err != nil {
					return Empty(), err
				}

				return TableValue(t), nil
			},
		},
		{
			Name:        "find_row",
			Group:       groupCollections,
			Description: "Return the first table row, as a map, whose column equals a value, or empty.",
			Params:      []string{"table", "column", "value"},
			MinArgs:     3,
			MaxArgs:     3,
			Kinds:       [][]Kind{tableKind, stringKind, anyKind},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				t := c.Arg(0).Table()

				i, err := t.Find(c.Arg(1).Str(), c.Arg(2))
				if err != nil || i < 0 {
					return Empty(), err
				}

				return MapValue(t.RowMap(i)), nil
			},
		},
		{
			Name:        "rows",
			Group:       groupCollections,
			Description: "List the rows of a table, each as a list.",
			Params:      []string{"table"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]Kind{tableKind},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				t := c.Arg(0).Table()

				out := make([]Value, 0, t.Len())
				for _, row := range t.Rows() {
					out = append(out, List(row...))
				}

				return List(out...), nil
			},
		},
		{
			Name:        "columns",
			Group:       groupCollections,
			Description: "List the column names of a table.",
			Params:      []string{"table"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]Kind{tableKind},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				return stringList(c.Arg(0).Table().Columns()), nil
			},
		},
		{
			Name:        "keys",
			Group:       groupCollections,
			Description: "List the keys of a map in insertion order.",
			Params:      []string{"map"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]Kind{{KindMap}},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				return stringList(c.Arg(0).Map().Keys()), nil
			},
		},
		{
			Name:        "transform",
			Group:       groupCollections,
			Description: "Evaluate an expression for each list element, bound to input, and collect the results.",
			Params:      []string{"list", "expression"},
			MinArgs:     2,
			MaxArgs:     2,
			Kinds:       [][]Kind{listKind},
			Deferred:    []int{1},
			Macro: func(ctx context.Context, c *Invocation) (Value, error) {
				return mapList(ctx, c, true)
			},
		},
		{
			Name:        "for_each",
			Group:       groupCollections,
			Description: "Evaluate an expression for each list element, bound to input.",
			Params:      []string{"list", "expression"},
			MinArgs:     2,
			MaxArgs:     2,
			Kinds:       [][]Kind{listKind},
			Deferred:    []int{1},
			Macro: func(ctx context.Context, c *Invocation) (Value, error) {
				return mapList(ctx, c, false)
			},
		},
		{
			Name:        "sort",
			Group:       groupCollections,
			Description: "Stable sort of a list in natural order.",
			Params:      []string{"list"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]Kind{listKind},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				l := slices.Clone(c.Arg(0).List())
				slices.SortStableFunc(l, Value.Compare)

				return Value{kind: KindList, ref: l}, nil
			},
		},
		{
			Name:        "string",
			Group:       groupCollections,
			Description: "Render a value as a string.",
			Params:      []string{"value"},
			MinArgs:     1,
			MaxArgs:     1,
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				if v := c.Arg(0); v.Kind() == KindString {
					return v, nil
				}

				return String(c.Arg(0).String()), nil
			},
		},
		{
			Name:        "if",
			Group:       groupLogic,
			Description: "Evaluate then when the condition is truthy, otherwise else (or empty). A function condition is called first.",
			Params:      []string{"condition", "then", "else"},
			MinArgs:     2,
			MaxArgs:     3,
			Deferred:    []int{1, 2},
			Macro:       macroIf,
		},
		{
			Name:        "assert",
			Group:       groupLogic,
			Description: "Fail unless the condition is truthy.",
			Params:      []string{"condition", "message"},
			MinArgs:     1,
			MaxArgs:     2,
			Kinds:       [][]Kind{anyKind, stringKind},
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				if c.Arg(0).Truthy() {
					return Empty(), nil
				}

				msg := "condition is not truthy"
				if len(c.Args) > 1 {
					msg = c.Arg(1).Str()
				}

				return Empty(), ErrAssertion.Errorf("%s", msg)
			},
		},
		{
			Name:        "assert_equal",
			Group:       groupLogic,
			Description: "Fail unless both values are equal.",
			Params:      []string{"expected", "actual"},
			MinArgs:     2,
			MaxArgs:     2,
			Macro: func(_ context.Context, c *Invocation) (Value, error) {
				if c.Arg(0).Equal(c.Arg(1)) {
					return Empty(), nil
				}

				want, got := literal(c.Arg(0)), literal(c.Arg(1))

				return Empty(), ErrAssertion.Errorf("expected %s, got %s", want, got).
					With(slog.String("expected", want), slog.String("actual", got))
			},
		},
	}
}

func stringList(s []string) Value {
	out := make([]Value, len(s))
	for i, e := range s {
		out[i] = String(e)
	}

	return Value{kind: KindList, ref: out}
}

// Strings returns the elements of a List of Strings, failing with
// [ErrTypeMismatch] on any other element.
func Strings(v Value) ([]string, error) {
	if err := v.Expect(KindList); err != nil {
		return nil, err
	}

	out := make([]string, len(v.List()))

	for i, e := range v.List() {
		if err := e.Expect(KindString); err != nil {
			return nil, WrapError(err).With(slog.Int("index", i))
		}

		out[i] = e.Str()
	}

	return out, nil
}

func macroGet(_ context.Context, c *Invocation) (Value, error) {
	coll, key := c.Arg(0), c.Arg(1)

	switch coll.Kind() {
	case KindList:
		if err := key.Expect(KindInteger); err != nil {
			return Empty(), err
		}

		return coll.Index(key.Int())

	case KindString:
		if err := key.Expect(KindInteger); err != nil {
			return Empty(), err
		}

		runes := []rune(coll.Str())

		i := key.Int()
		if i < 0 {
			i += int64(len(runes))
		}

		if i < 0 || i >= int64(len(runes)) {
			return Empty(), ErrIndexOutOfRange.Errorf("index %d, length %d", key.Int(), len(runes))
		}

		return String(string(runes[i])), nil

	case KindMap:
		if err := key.Expect(KindString); err != nil {
			return Empty(), err
		}

		v, _ := coll.Map().GetPath(splitPath(key.Str())...)

		return v, nil

	default:
		t := coll.Table()

		if key.Kind() == KindString {
			col, err := t.Column(key.Str())
			if err != nil {
				return Empty(), err
			}

			return List(col...), nil
		}

		i := key.Int()
		if i < 0 {
			i += int64(t.Len())
		}

		if i < 0 || i >= int64(t.Len()) {
			return Empty(), ErrIndexOutOfRange.Errorf("row %d, table has %d rows", key.Int(), t.Len())
		}

		return MapValue(t.RowMap(int(i))), nil
	}
}

func macroCreateTable(_ context.Context, c *Invocation) (Value, error) {
	columns, err := Strings(c.Arg(0))
	if err != nil {
		return Empty(), err
	}

	var rows [][]Value

	for i, r := range c.Arg(1).List() {
		if err := r.Expect(KindList); err != nil {
			return Empty(), WrapError(err).With(slog.Int("row", i))
		}

		rows = append(rows, r.List())
	}

	t, err := NewTable(columns, rows...)
	if err != nil {
		return Empty(), err
	}

	return TableValue(t), nil
}

func macroInsert(_ context.Context, c *Invocation) (Value, error) {
	rows := make([][]Value, 0, len(c.Args)-1)
	for _, r := range c.Args[1:] {
		rows = append(rows, r.List())
	}

	t, err := c.Arg(0).Table().Insert(rows...)
	if err != nil {
		return Empty(), err
	}

	return TableValue(t), nil
}

func macroSelect(_ context.Context, c *Invocation) (Value, error) {
	coll := c.Arg(0)

	// Keys may be given as separate arguments or as one list.
	keys := c.Args[1:]
	if len(keys) == 1 && keys[0].Kind() == KindList {
		keys = keys[0].List()
	}

	if coll.Kind() == KindList {
		out := make([]Value, len(keys))

		for i, k := range keys {
			if err := k.Expect(KindInteger); err != nil {
				return Empty(), err
			}

			v, err := coll.Index(k.Int())
			if err != nil {
				return Empty(), err
			}

			out[i] = v
		}

		if len(c.Args) == 2 && c.Arg(1).Kind() == KindInteger {
			return out[0], nil
		}

		return List(out...), nil
	}

	names, err := Strings(List(keys...))
	if err != nil {
		return Empty(), err
	}

	if coll.Kind() == KindMap {
		m := NewMap()

		for _, name := range names {
			if v, ok := coll.Map().Get(name); ok {
				m.Set(name, v)
			}
		}

		return MapValue(m), nil
	}

	t, err := coll.Table().Select(names...)
	if err != nil {
		return Empty(), err
	}

	return TableValue(t), nil
}

func macroSelectWhere(ctx context.Context, c *Invocation) (Value, error) {
	pred := c.Arg(1)

	if c.Arg(0).Kind() == KindList {
		var out []Value

		for _, e := range c.Arg(0).List() {
			v, err := c.Force(ctx, pred, NewMap().With(InputKey, e))
			if err != nil {
				return Empty(), err
			}

			if v.Truthy() {
				out = append(out, e)
			}
		}

		return List(out...), nil
	}

	t := c.Arg(0).Table()
	columns := t.Columns()

	kept, err := t.Where(func(row []Value) (bool, error) {
		bindings := NewMap()
		for i, name := range columns {
			bindings.Set(name, row[i])
		}

		bindings.Set(InputKey, List(row...))

		v, err := c.Force(ctx, pred, bindings)
		if err != nil {
			return false, err
		}

		return v.Truthy(), nil
	})
	if err != nil {
		return Empty(), err
	}

	return TableValue(kept), nil
}

func mapList(ctx context.Context, c *Invocation, collect bool) (Value, error) {
	var out []Value

	for _, e := range c.Arg(0).List() {
		v, err := c.Force(ctx, c.Arg(1), NewMap().With(InputKey, e))
		if err != nil {
			return Empty(), err
		}

		if collect {
			out = append(out, v)
		}
	}

	if !collect {
		return Empty(), nil
	}

	return List(out...), nil
}

func macroIf(ctx context.Context, c *Invocation) (Value, error) {
	cond := c.Arg(0)

	if cond.Kind() == KindFunction {
		v, err := c.Interp.Invoke(ctx, cond)
		if err != nil {
			return Empty(), err
		}

		cond = v
	}

	branch := 2
	if cond.Truthy() {
		branch = 1
	}

	if branch >= len(c.Args) {
		return Empty(), nil
	}

	return c.Force(ctx, c.Arg(branch), nil)
}
