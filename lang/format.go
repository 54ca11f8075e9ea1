package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
)

// FormatValue renders v on a single line. Strings nested in containers are
// quoted; a top-level String is returned as is. Tables are rendered as the
// create_table call that would rebuild them.
func FormatValue(v Value) string {
	if v.Kind() == KindString {
		return v.Str()
	}

	return literal(v)
}

// literal renders v the way it would be written in source, quoting a
// top-level String.
func literal(v Value) string {
	var sb strings.Builder

	writeValue(&sb, v)

	return sb.String()
}

// Display renders v for a human reader. Tables and Maps are drawn as
// bordered grids; any other value is rendered by [FormatValue].
func Display(v Value) string {
	switch v.Kind() {
	case KindTable:
		t := v.Table()

		rows := make([][]string, 0, t.Len())
		for _, r := range t.Rows() {
			rows = append(rows, displayCells(r))
		}

		return grid(t.Columns(), rows)

	case KindMap:
		var rows [][]string
		for k, e := range v.Map().All() {
			rows = append(rows, []string{k, FormatValue(e)})
		}

		return grid([]string{"key", "value"}, rows)

	default:
		return FormatValue(v)
	}
}

func displayCells(row []Value) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = FormatValue(v)
	}

	return out
}

func grid(header []string, rows [][]string) string {
	var sb strings.Builder

	tw := tablewriter.NewWriter(&sb)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.AppendBulk(rows)
	tw.Render()

	return strings.TrimSuffix(sb.String(), "\n")
}

func writeValue(sb *strings.Builder, v Value) {
	switch v.Kind() {
	case KindEmpty:
		sb.WriteString("empty")

	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.Bool()))

	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.Int(), 10))

	case KindFloat:
		sb.WriteString(formatFloat(v.Float()))

	case KindString:
		sb.WriteString(quote(v.Str()))

	case KindList:
		writeList(sb, v.List())

	case KindMap:
		sb.WriteByte('(')

		i := 0
		for k, e := range v.Map().All() {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(k)
			sb.WriteString(" = ")
			writeValue(sb, e)

			i++
		}

		sb.WriteByte(')')

	case KindTable:
		t := v.Table()

		sb.WriteString("create_table(")
		writeList(sb, stringList(t.Columns()).List())
		sb.WriteString(", ")

		rows := make([]Value, 0, t.Len())
		for _, r := range t.Rows() {
			rows = append(rows, Value{kind: KindList, ref: r})
		}

		writeList(sb, rows)
		sb.WriteByte(')')

	case KindFunction:
		sb.WriteString(FormatNode(&FunctionLiteral{Body: v.Func().Body}))

	case KindTime:
		sb.WriteString(quote(v.Time().String()))
	}
}

func writeList(sb *strings.Builder, elems []Value) {
	sb.WriteByte('(')

	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}

		writeValue(sb, e)
	}

	if len(elems) == 1 {
		sb.WriteByte(',')
	}

	sb.WriteByte(')')
}

// formatFloat always includes a decimal point or exponent so the text reads
// back as a Float.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}

// quote renders s as a string literal using only the escapes the lexer
// understands.
func quote(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}

// FormatNode renders node as source text that parses back to an equivalent
// tree. Parentheses are added only where precedence requires them.
func FormatNode(node Node) string {
	var sb strings.Builder

	writeNode(&sb, node)

	return sb.String()
}

// precedence returns the binding power of the operator at the root of n.
// Operands and atoms bind tighter than any infix operator.
func precedence(n Node) int {
	switch n := n.(type) {
	case *Assignment:
		return precAssign
	case *Yield:
		return precYield
	case *Call:
		if n.Method {
			return precMethod
		}
	case *BinaryOp:
		return infixPrec(n.Op)
	}

	return precMultiplicative + 1
}

func writeOperand(sb *strings.Builder, n Node, min int) {
	if precedence(n) < min {
		sb.WriteByte('(')
		writeNode(sb, n)
		sb.WriteByte(')')

		return
	}

	writeNode(sb, n)
}

func writeNodes(sb *strings.Builder, nodes []Node, sep string) {
	for i, n := range nodes {
		if i > 0 {
			sb.WriteString(sep)
		}

		writeNode(sb, n)
	}
}

func writeNode(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Literal:
		writeValue(sb, n.Value)

	case *Identifier:
		sb.WriteString(n.Name)

	case *Assignment:
		sb.WriteString(n.Path)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		writeNode(sb, n.Expr)

	case *BinaryOp:
		prec := infixPrec(n.Op)

		writeOperand(sb, n.LHS, prec)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		writeOperand(sb, n.RHS, prec+1)

	case *UnaryOp:
		sb.WriteString(n.Op.String())
		writeOperand(sb, n.Expr, precMultiplicative+1)

	case *Call:
		switch {
		case n.Method:
			writeOperand(sb, n.Args[0], precMethod)
			sb.WriteByte(':')
			sb.WriteString(n.Name)

			if len(n.Args) > 1 {
				sb.WriteByte('(')
				writeNodes(sb, n.Args[1:], ", ")
				sb.WriteByte(')')
			}

			return

		case n.Name != "":
			sb.WriteString(n.Name)

		default:
			switch n.Callee.(type) {
			case *FunctionLiteral, *Call:
				writeNode(sb, n.Callee)
			default:
				sb.WriteByte('(')
				writeNode(sb, n.Callee)
				sb.WriteByte(')')
			}
		}

		sb.WriteByte('(')
		writeNodes(sb, n.Args, ", ")
		sb.WriteByte(')')

	case *Yield:
		writeOperand(sb, n.LHS, precYield)
		sb.WriteString(" :: ")
		writeOperand(sb, n.RHS, precYield+1)

	case *FunctionLiteral:
		if len(n.Body.Stmts) == 0 {
			sb.WriteString("{}")

			return
		}

		sb.WriteString("{ ")
		writeNodes(sb, n.Body.Stmts, "; ")
		sb.WriteString(" }")

	case *ListLiteral:
		sb.WriteByte('(')
		writeNodes(sb, n.Elems, ", ")

		if len(n.Elems) == 1 {
			sb.WriteByte(',')
		}

		sb.WriteByte(')')

	case *MapLiteral:
		sb.WriteByte('(')

		for i, e := range n.Entries {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeNode(sb, e)
		}

		sb.WriteByte(')')

	case *Block:
		writeNodes(sb, n.Stmts, "; ")

	case *AsyncGroup:
		sb.WriteString("async(")
		writeNodes(sb, n.Branches, ", ")
		sb.WriteByte(')')

	case *Watch:
		sb.WriteString("watch(")
		writeNode(sb, n.Path)
		sb.WriteString(", ")
		writeNode(sb, n.Body)
		sb.WriteByte(')')
	}
}

// Format writes the program in canonical syntax, one statement per line.
func (p *Program) Format(_ context.Context, w io.Writer) error {
	for _, stmt := range p.Stmts {
		if _, err := fmt.Fprintf(w, "%s;\n", FormatNode(stmt)); err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes the syntax tree of the program as JSON.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(p.ToMap(), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(p.ToMap())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the syntax tree of the program as YAML.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// ToMap converts the syntax tree into nested maps and slices for encoding.
func (p *Program) ToMap() map[string]any {
	return map[string]any{
		"type":       "program",
		"statements": nodeMaps(p.Stmts),
	}
}

func nodeMaps(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = nodeMap(n)
	}

	return out
}

func nodeMap(node Node) map[string]any {
	pos := node.Pos()

	m := map[string]any{"line": pos.Line, "column": pos.Column}

	switch n := node.(type) {
	case *Literal:
		m["type"] = "literal"
		m["kind"] = n.Value.Kind().String()
		m["value"] = FormatValue(n.Value)

	case *Identifier:
		m["type"] = "identifier"
		m["name"] = n.Name

	case *Assignment:
		m["type"] = "assignment"
		m["path"] = n.Path
		m["op"] = n.Op.String()
		m["value"] = nodeMap(n.Expr)

	case *BinaryOp:
		m["type"] = "binary"
		m["op"] = n.Op.String()
		m["lhs"] = nodeMap(n.LHS)
		m["rhs"] = nodeMap(n.RHS)

	case *UnaryOp:
		m["type"] = "unary"
		m["op"] = n.Op.String()
		m["operand"] = nodeMap(n.Expr)

	case *Call:
		m["type"] = "call"
		m["args"] = nodeMaps(n.Args)

		if n.Name != "" {
			m["name"] = n.Name
		} else {
			m["callee"] = nodeMap(n.Callee)
		}

		if n.Method {
			m["method"] = true
		}

	case *Yield:
		m["type"] = "yield"
		m["lhs"] = nodeMap(n.LHS)
		m["rhs"] = nodeMap(n.RHS)

	case *FunctionLiteral:
		m["type"] = "function"
		m["body"] = nodeMaps(n.Body.Stmts)

	case *ListLiteral:
		m["type"] = "list"
		m["elements"] = nodeMaps(n.Elems)

	case *MapLiteral:
		entries := make([]any, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = nodeMap(e)
		}

		m["type"] = "map"
		m["entries"] = entries

	case *Block:
		m["type"] = "block"
		m["statements"] = nodeMaps(n.Stmts)

	case *AsyncGroup:
		m["type"] = "async"
		m["branches"] = nodeMaps(n.Branches)

	case *Watch:
		m["type"] = "watch"
		m["path"] = nodeMap(n.Path)
		m["body"] = nodeMap(n.Body)
	}

	return m
}
