package lang

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ardnew/whale/log"
)

// Binding powers, lowest to highest.
const (
	precNone = iota
	precAssign
	precYield
	precMethod
	precOr
	precAnd
	precCompare
	precAdditive
	precMultiplicative
)

// infixPrec returns the binding power of an infix operator, or precNone.
func infixPrec(k TokenKind) int {
	switch k {
	case TokenAssign, TokenPlusAssign, TokenMinusAssign,
		TokenStarAssign, TokenSlashAssign:
		return precAssign
	case TokenYield:
		return precYield
	case TokenColon:
		return precMethod
	case TokenOr:
		return precOr
	case TokenAnd:
		return precAnd
	case TokenEq, TokenNotEq, TokenLess, TokenGreater,
		TokenLessEq, TokenGreaterEq:
		return precCompare
	case TokenPlus, TokenMinus:
		return precAdditive
	case TokenStar, TokenSlash, TokenPercent:
		return precMultiplicative
	default:
		return precNone
	}
}

// Parse lexes and parses source into a Program.
// Parsing is all-or-nothing: on failure no partial program is returned.
func Parse(ctx context.Context, source string, opts ...Option) (*Program, error) {
	cfg := makeConfig(opts...)

	prog, err := parse(source)
	if err != nil {
		cfg.logger.DebugContext(ctx, "parse failed", log.Err(err))

		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_bytes", len(source)),
		slog.Int("statements", len(prog.Stmts)),
	)

	return prog, nil
}

func parse(source string) (*Program, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens, source: source}

	block, err := p.parseStatements(TokenEOF)
	if err != nil {
		return nil, err
	}

	return &Program{Block: block, Source: source}, nil
}

// parser holds the parser state.
type parser struct {
	tokens []Token
	pos    int
	source string
}

// parseStatements parses statements separated by semicolons until the
// terminator token, which is left unconsumed.
func (p *parser) parseStatements(end TokenKind) (*Block, error) {
	block := &Block{At: p.cur().Pos}

	for {
		for p.cur().Kind == TokenSemicolon {
			p.advance()
		}

		if p.cur().Kind == end {
			return block, nil
		}

		stmt, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}

		block.Stmts = append(block.Stmts, stmt)

		switch p.cur().Kind {
		case TokenSemicolon:
			p.advance()
		case end:
			return block, nil
		default:
			return nil, p.fail(";", end.String(), "operator")
		}
	}
}

func (p *parser) parseExpr(minPrec int) (Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.cur()

		prec := infixPrec(op.Kind)
		if prec == precNone || prec < minPrec {
			return lhs, nil
		}

		p.advance()

		switch prec {
		case precAssign:
			id, ok := lhs.(*Identifier)
			if !ok {
				return nil, &ParseError{
					Position: lhs.Pos(),
					Expected: []string{"identifier"},
					Found:    "expression before " + strconv.Quote(op.Kind.String()),
					Source:   p.source,
				}
			}

			// Right-associative: a = b = c binds as a = (b = c).
			rhs, err := p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}

			lhs = &Assignment{Path: id.Name, Op: op.Kind, Expr: rhs, At: id.At}

		case precYield:
			rhs, err := p.parseExpr(precYield + 1)
			if err != nil {
				return nil, err
			}

			lhs = &Yield{LHS: lhs, RHS: rhs, At: op.Pos}

		case precMethod:
			name := p.cur()
			if name.Kind != TokenIdent {
				return nil, p.fail("identifier")
			}

			p.advance()

			call := &Call{Name: name.Text, Args: []Node{lhs}, Method: true, At: name.Pos}

			if p.cur().Kind == TokenLParen {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}

				call.Args = append(call.Args, args...)
			}

			lhs = call

		default:
			rhs, err := p.parseExpr(prec + 1)
			if err != nil {
				return nil, err
			}

			lhs = &BinaryOp{Op: op.Kind, LHS: lhs, RHS: rhs, At: op.Pos}
		}
	}
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.cur()

	switch tok.Kind {
	case TokenMinus:
		p.advance()

		// Fold the sign into integer literals so the most negative int64
		// can be written.
		if next := p.cur(); next.Kind == TokenInt {
			n, err := parseInt("-" + next.Text)
			if err != nil {
				return nil, err.WithPosition(tok.Pos)
			}

			p.advance()

			return p.parsePostfix(&Literal{Value: Int(n), At: tok.Pos})
		}

		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &UnaryOp{Op: TokenMinus, Expr: expr, At: tok.Pos}, nil

	case TokenNot:
		p.advance()

		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &UnaryOp{Op: TokenNot, Expr: expr, At: tok.Pos}, nil
	}

	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	return p.parsePostfix(primary)
}

// parsePostfix applies any call suffixes to expr.
func (p *parser) parsePostfix(expr Node) (Node, error) {
	for p.cur().Kind == TokenLParen {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}

		id, named := expr.(*Identifier)
		if !named {
			expr = &Call{Callee: expr, Args: args, At: expr.Pos()}

			continue
		}

		switch id.Name {
		case "async":
			expr = &AsyncGroup{Branches: args, At: id.At}

		case "watch":
			if len(args) != 2 {
				return nil, &ParseError{
					Position: id.At,
					Expected: []string{"watch(path, body)"},
					Found:    strconv.Itoa(len(args)) + " arguments",
					Source:   p.source,
				}
			}

			expr = &Watch{Path: args[0], Body: args[1], At: id.At}

		default:
			expr = &Call{Name: id.Name, Args: args, At: id.At}
		}
	}

	return expr, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.cur()

	switch tok.Kind {
	case TokenInt:
		p.advance()

		n, err := parseInt(tok.Text)
		if err != nil {
			return nil, err.WithPosition(tok.Pos)
		}

		return &Literal{Value: Int(n), At: tok.Pos}, nil

	case TokenFloat:
		p.advance()

		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, ErrLex.Wrap(err).WithPosition(tok.Pos)
		}

		return &Literal{Value: Float(f), At: tok.Pos}, nil

	case TokenString:
		p.advance()

		return &Literal{Value: String(tok.Text), At: tok.Pos}, nil

	case TokenTrue, TokenFalse:
		p.advance()

		return &Literal{Value: Bool(tok.Kind == TokenTrue), At: tok.Pos}, nil

	case TokenEmpty:
		p.advance()

		return &Literal{Value: Empty(), At: tok.Pos}, nil

	case TokenIdent:
		p.advance()

		return &Identifier{Name: tok.Text, At: tok.Pos}, nil

	case TokenLParen:
		return p.parseParens()

	case TokenLBrace:
		p.advance()

		body, err := p.parseStatements(TokenRBrace)
		if err != nil {
			return nil, err
		}

		p.advance() // '}'

		body.At = tok.Pos

		return &FunctionLiteral{Body: body, At: tok.Pos}, nil
	}

	return nil, p.fail("expression")
}

// parseParens parses grouping, list literals and map literals.
func (p *parser) parseParens() (Node, error) {
	open := p.cur()

	p.advance() // '('

	var (
		elems []Node
		comma bool
	)

	for p.cur().Kind != TokenRParen {
		elem, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}

		elems = append(elems, elem)

		switch p.cur().Kind {
		case TokenComma:
			comma = true

			p.advance()
		case TokenRParen:
		default:
			return nil, p.fail(",", ")")
		}
	}

	p.advance() // ')'

	var entries []*Assignment

	for _, e := range elems {
		if a, ok := e.(*Assignment); ok && a.Op == TokenAssign {
			entries = append(entries, a)
		}
	}

	switch {
	case len(elems) > 0 && len(entries) == len(elems):
		return &MapLiteral{Entries: entries, At: open.Pos}, nil

	case len(entries) > 0:
		return nil, &ParseError{
			Position: open.Pos,
			Expected: []string{"list elements", "map entries"},
			Found:    "mixed list elements and map entries",
			Source:   p.source,
		}

	case len(elems) == 1 && !comma:
		return elems[0], nil

	default:
		return &ListLiteral{Elems: elems, At: open.Pos}, nil
	}
}

// parseArgs parses a parenthesized, comma-separated argument list. A
// trailing comma is permitted.
func (p *parser) parseArgs() ([]Node, error) {
	p.advance() // '('

	args := []Node{}

	for p.cur().Kind != TokenRParen {
		arg, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		switch p.cur().Kind {
		case TokenComma:
			p.advance()
		case TokenRParen:
		default:
			return nil, p.fail(",", ")")
		}
	}

	p.advance() // ')'

	return args, nil
}

func (p *parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.pos]
}

func (p *parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *parser) fail(expected ...string) *ParseError {
	tok := p.cur()

	return &ParseError{
		Position: tok.Pos,
		Expected: expected,
		Found:    tok.describe(),
		Source:   p.source,
	}
}

func parseInt(text string) (int64, *Error) {
	neg := false
	digits := text

	if len(digits) > 0 && digits[0] == '-' {
		neg = true
		digits = digits[1:]
	}

	base := 10
	if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		base = 16
		digits = digits[2:]
	}

	if neg {
		digits = "-" + digits
	}

	n, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, ErrLex.Errorf("integer literal %s out of range", text)
	}

	return n, nil
}
