package lang

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"empty", Empty(), "empty"},
		{"bool", Bool(true), "true"},
		{"int", Int(-3), "-3"},
		{"whole float", Float(2), "2.0"},
		{"float", Float(1.25), "1.25"},
		{"string", String("a b"), "a b"},
		{"nested string", List(String("a\"b\n")), `("a\"b\n",)`},
		{"empty list", List(), "()"},
		{"list", List(Int(1), Int(2)), "(1, 2)"},
		{"map", MapValue(MapOf("b", Int(1), "a", List())), "(b = 1, a = ())"},
		{
			"table",
			TableValue(mustTable(t, []string{"n", "a"}, []Value{String("amy"), Int(2)})),
			`create_table(("n", "a"), (("amy", 2),))`,
		},
		{"time", TimeValue(UTCTime(time.Unix(0, 0))), `"1970-01-01T00:00:00Z"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.v))
		})
	}
}

func TestFormatValue_ReadsBack(t *testing.T) {
	for _, src := range []string{
		`(1, 2.5, "x", (true,), empty)`,
		`(a = 1, b = (c = "d"))`,
		`create_table(("n", "a"), (("amy", 2), ("bob", 3)))`,
		`{ input * 2 }`,
	} {
		t.Run(src, func(t *testing.T) {
			v := mustEval(t, src)
			w := mustEval(t, FormatValue(v))

			assert.Equal(t, FormatValue(v), FormatValue(w))
		})
	}
}

func TestDisplay(t *testing.T) {
	tbl := mustEval(t, `create_table(("name", "age"), (("amy", 27), ("bob", 31)))`)

	out := Display(tbl)
	for _, want := range []string{"name", "age", "amy", "27", "bob", "31", "+"} {
		assert.Contains(t, out, want)
	}

	assert.False(t, strings.HasSuffix(out, "\n"))

	out = Display(mustEval(t, `(host = "example.org")`))
	assert.Contains(t, out, "host")
	assert.Contains(t, out, "example.org")

	assert.Equal(t, "(1, 2)", Display(List(Int(1), Int(2))))
}

func TestFormatNode(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1+2*3", "1 + 2 * 3"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"1 - (2 - 3)", "1 - (2 - 3)"},
		{"(1 - 2) - 3", "1 - 2 - 3"},
		{"(1 + 2):string", "1 + 2:string"},
		{"x:get(1):count", "x:get(1):count"},
		{"f={input*2}", "f = { input * 2 }"},
		{"{}", "{}"},
		{"{ input }(4)", "{ input }(4)"},
		{"a :: b :: c", "a :: b :: c"},
		{"a :: (b :: c)", "a :: (b :: c)"},
		{`(a=1, b.c="x")`, `(a = 1, b.c = "x")`},
		{"(1,)", "(1,)"},
		{"()", "()"},
		{"x += 1", "x += 1"},
		{"!x && y", "!x && y"},
		{"-x", "-x"},
		{"-(1 + 2)", "-(1 + 2)"},
		{`async("1", { 2 })`, `async("1", { 2 })`},
		{`watch("d", input)`, `watch("d", input)`},
		{`"a\"b\n"`, `"a\"b\n"`},
		{"1.50", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			prog, err := Parse(t.Context(), tt.source)
			require.NoError(t, err)
			require.Len(t, prog.Stmts, 1)

			got := FormatNode(prog.Stmts[0])
			assert.Equal(t, tt.want, got)

			// Formatting is stable.
			again, err := Parse(t.Context(), got)
			require.NoError(t, err)
			assert.Equal(t, got, FormatNode(again.Stmts[0]))
		})
	}
}

func TestProgram_Format(t *testing.T) {
	prog, err := Parse(t.Context(), "x=1;\ny = x+1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, prog.Format(t.Context(), &buf))
	assert.Equal(t, "x = 1;\ny = x + 1;\n", buf.String())

	// A newline is whitespace, not a separator.
	_, err = Parse(t.Context(), "x=1\ny = x+1")
	require.ErrorIs(t, err, ErrParse)
}

func TestProgram_FormatJSON(t *testing.T) {
	prog, err := Parse(t.Context(), "x = 1 + 2")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, prog.FormatJSON(t.Context(), &buf, 2))

	var tree struct {
		Type       string           `json:"type"`
		Statements []map[string]any `json:"statements"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &tree))
	assert.Equal(t, "program", tree.Type)
	require.Len(t, tree.Statements, 1)
	assert.Equal(t, "assignment", tree.Statements[0]["type"])
	assert.Equal(t, "x", tree.Statements[0]["path"])

	value, ok := tree.Statements[0]["value"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "binary", value["type"])
	assert.Equal(t, "+", value["op"])
}

func TestProgram_FormatYAML(t *testing.T) {
	prog, err := Parse(t.Context(), "f(1)")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, prog.FormatYAML(t.Context(), &buf, 2))

	out := buf.String()
	assert.Contains(t, out, "type: program")
	assert.Contains(t, out, "type: call")
	assert.Contains(t, out, "name: f")
}
