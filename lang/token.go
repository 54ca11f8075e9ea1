package lang

import "strconv"

// Position identifies a location in source text.
// Line and Column are 1-based; Column counts runes.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// IsValid reports whether the position refers to a real source location.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// TokenKind classifies a lexical token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenInt
	TokenFloat
	TokenString
	TokenIdent
	TokenTrue
	TokenFalse
	TokenEmpty

	TokenPlus        // +
	TokenMinus       // -
	TokenStar        // *
	TokenSlash       // /
	TokenPercent     // %
	TokenAssign      // =
	TokenPlusAssign  // +=
	TokenMinusAssign // -=
	TokenStarAssign  // *=
	TokenSlashAssign // /=
	TokenEq          // ==
	TokenNotEq       // !=
	TokenLess        // <
	TokenGreater     // >
	TokenLessEq      // <=
	TokenGreaterEq   // >=
	TokenAnd         // &&
	TokenOr          // ||
	TokenNot         // !
	TokenColon       // :
	TokenYield       // ::
	TokenLParen      // (
	TokenRParen      // )
	TokenLBrace      // {
	TokenRBrace      // }
	TokenComma       // ,
	TokenSemicolon   // ;
)

var tokenNames = [...]string{
	TokenEOF:         "end of input",
	TokenInt:         "integer",
	TokenFloat:       "float",
	TokenString:      "string",
	TokenIdent:       "identifier",
	TokenTrue:        "true",
	TokenFalse:       "false",
	TokenEmpty:       "empty",
	TokenPlus:        "+",
	TokenMinus:       "-",
	TokenStar:        "*",
	TokenSlash:       "/",
	TokenPercent:     "%",
	TokenAssign:      "=",
	TokenPlusAssign:  "+=",
	TokenMinusAssign: "-=",
	TokenStarAssign:  "*=",
	TokenSlashAssign: "/=",
	TokenEq:          "==",
	TokenNotEq:       "!=",
	TokenLess:        "<",
	TokenGreater:     ">",
	TokenLessEq:      "<=",
	TokenGreaterEq:   ">=",
	TokenAnd:         "&&",
	TokenOr:          "||",
	TokenNot:         "!",
	TokenColon:       ":",
	TokenYield:       "::",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenLBrace:      "{",
	TokenRBrace:      "}",
	TokenComma:       ",",
	TokenSemicolon:   ";",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

var keywords = map[string]TokenKind{
	"true":  TokenTrue,
	"false": TokenFalse,
	"empty": TokenEmpty,
}

// Token is a single lexical unit.
// Text holds the decoded value for strings and the raw spelling otherwise.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position
}

// describe renders the token for error messages.
func (t Token) describe() string {
	switch t.Kind {
	case TokenEOF:
		return t.Kind.String()
	case TokenString:
		return "string " + strconv.Quote(t.Text)
	case TokenInt, TokenFloat, TokenIdent:
		return t.Kind.String() + " " + t.Text
	default:
		return strconv.Quote(t.Kind.String())
	}
}
