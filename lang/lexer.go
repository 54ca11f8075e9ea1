package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lex splits source into tokens, ending with a single [TokenEOF].
// It fails with [ErrLex] on an invalid character, an unterminated string or
// block comment, an unknown escape sequence, or a malformed number.
func Lex(source string) ([]Token, error) {
	l := &lexer{input: source, line: 1, col: 1}

	var tokens []Token

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)

		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

// lexer holds the scanner state.
type lexer struct {
	input string
	pos   int
	line  int
	col   int
}

func (l *lexer) next() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	start := l.position()

	if l.eof() {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	r := l.peek()

	switch {
	case r == '"':
		return l.scanString()
	case isDigit(r):
		return l.scanNumber()
	case isIdentifierStart(r):
		return l.scanIdentifier(), nil
	}

	if kind, n := l.scanOperator(); n > 0 {
		text := l.input[l.pos : l.pos+n]
		for range n {
			l.advance()
		}

		return Token{Kind: kind, Text: text, Pos: start}, nil
	}

	return Token{}, ErrLex.Errorf("invalid character %q", r).WithPosition(start)
}

// scanOperator matches the longest operator at the current position and
// returns its kind and byte length, or zero length if none matches.
func (l *lexer) scanOperator() (TokenKind, int) {
	switch two := l.peekN(2); two {
	case "::":
		return TokenYield, 2
	case "==":
		return TokenEq, 2
	case "!=":
		return TokenNotEq, 2
	case "<=":
		return TokenLessEq, 2
	case ">=":
		return TokenGreaterEq, 2
	case "&&":
		return TokenAnd, 2
	case "||":
		return TokenOr, 2
	case "+=":
		return TokenPlusAssign, 2
	case "-=":
		return TokenMinusAssign, 2
	case "*=":
		return TokenStarAssign, 2
	case "/=":
		return TokenSlashAssign, 2
	}

	switch l.peek() {
	case '+':
		return TokenPlus, 1
	case '-':
		return TokenMinus, 1
	case '*':
		return TokenStar, 1
	case '/':
		return TokenSlash, 1
	case '%':
		return TokenPercent, 1
	case '=':
		return TokenAssign, 1
	case '<':
		return TokenLess, 1
	case '>':
		return TokenGreater, 1
	case '!':
		return TokenNot, 1
	case ':':
		return TokenColon, 1
	case '(':
		return TokenLParen, 1
	case ')':
		return TokenRParen, 1
	case '{':
		return TokenLBrace, 1
	case '}':
		return TokenRBrace, 1
	case ',':
		return TokenComma, 1
	case ';':
		return TokenSemicolon, 1
	}

	return TokenEOF, 0
}

func (l *lexer) scanString() (Token, error) {
	start := l.position()

	l.advance() // skip opening quote

	var sb strings.Builder

	for !l.eof() {
		ch := l.peek()

		switch ch {
		case '"':
			l.advance()

			return Token{Kind: TokenString, Text: sb.String(), Pos: start}, nil

		case '\\':
			esc := l.position()

			l.advance()

			if l.eof() {
				break
			}

			switch e := l.peek(); e {
			case '"', '\\':
				sb.WriteRune(e)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return Token{}, ErrLex.Errorf("unknown escape sequence \\%c", e).
					WithPosition(esc)
			}

			l.advance()

		default:
			sb.WriteRune(ch)
			l.advance()
		}
	}

	return Token{}, ErrLex.Errorf("unterminated string").WithPosition(start)
}

func (l *lexer) scanNumber() (Token, error) {
	start := l.position()
	begin := l.pos

	if l.peekN(2) == "0x" || l.peekN(2) == "0X" {
		l.advance()
		l.advance()

		n := l.skipWhile(isHexDigit)
		if n == 0 {
			return Token{}, ErrLex.Errorf("malformed number").WithPosition(start)
		}

		return l.finishNumber(TokenInt, begin, start)
	}

	kind := TokenInt

	l.skipWhile(isDigit)

	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		kind = TokenFloat

		l.advance()
		l.skipWhile(isDigit)
	}

	if r := l.peek(); r == 'e' || r == 'E' {
		kind = TokenFloat

		l.advance()

		if r := l.peek(); r == '+' || r == '-' {
			l.advance()
		}

		if l.skipWhile(isDigit) == 0 {
			return Token{}, ErrLex.Errorf("malformed number").WithPosition(start)
		}
	}

	return l.finishNumber(kind, begin, start)
}

// finishNumber rejects numbers that run straight into an identifier, such
// as "12abc".
func (l *lexer) finishNumber(kind TokenKind, begin int, start Position) (Token, error) {
	if !l.eof() && isIdentifierContinue(l.peek()) {
		return Token{}, ErrLex.Errorf("malformed number").WithPosition(start)
	}

	return Token{Kind: kind, Text: l.input[begin:l.pos], Pos: start}, nil
}

func (l *lexer) scanIdentifier() Token {
	start := l.position()
	begin := l.pos

	for {
		l.skipWhile(isIdentifierContinue)

		// A dot continues the identifier only when another segment follows.
		if l.peek() == '.' && isIdentifierStart(l.peekAt(1)) {
			l.advance()

			continue
		}

		break
	}

	text := l.input[begin:l.pos]
	if kind, ok := keywords[text]; ok {
		return Token{Kind: kind, Text: text, Pos: start}
	}

	return Token{Kind: TokenIdent, Text: text, Pos: start}
}

// Helper methods

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])

	return r
}

// peekAt returns the rune n runes past the current one.
func (l *lexer) peekAt(n int) rune {
	pos := l.pos
	for range n {
		if pos >= len(l.input) {
			return 0
		}

		_, size := utf8.DecodeRuneInString(l.input[pos:])
		pos += size
	}

	if pos >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[pos:])

	return r
}

func (l *lexer) peekN(n int) string {
	if l.pos+n > len(l.input) {
		return l.input[l.pos:]
	}

	return l.input[l.pos : l.pos+n]
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) skipWhile(pred func(rune) bool) int {
	n := 0
	for !l.eof() && pred(l.peek()) {
		l.advance()
		n++
	}

	return n
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *lexer) skipWhitespaceAndComments() error {
	for {
		l.skipWhile(unicode.IsSpace)

		if l.eof() {
			return nil
		}

		switch {
		case l.peek() == '#', l.peekN(2) == "//":
			l.skipLineComment()

		case l.peekN(2) == "/*":
			if err := l.skipBlockComment(); err != nil {
				return err
			}

		default:
			return nil
		}
	}
}

func (l *lexer) skipLineComment() {
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *lexer) skipBlockComment() error {
	start := l.position()

	l.advance() // skip '/'
	l.advance() // skip '*'

	for !l.eof() {
		if l.peekN(2) == "*/" {
			l.advance() // skip '*'
			l.advance() // skip '/'

			return nil
		}

		l.advance()
	}

	return ErrLex.Errorf("unterminated block comment").WithPosition(start)
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}
