// Package lexer implements a lexer for Druid SQL.
//
// Unlike a lexer that feeds an evaluator, this one never discards input:
// whitespace and comments are returned as tokens, and every token records
// the exact source text it was scanned from.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sqlc-dev/druidsql/token"
)

// Lexer tokenizes Druid SQL input.
type Lexer struct {
	src    string
	ch     rune // current character
	offset int  // byte offset of ch
	next   int  // byte offset after ch
	pos    token.Position
	eof    bool
}

// Item represents a lexical token with its value and position.
type Item struct {
	Token  token.Token
	Value  string // decoded value: unquoted identifier, unescaped string
	Raw    string // exact source text
	Pos    token.Position
	Quoted bool // true if this identifier was double-quoted

	// Space holds the whitespace and comments that preceded the token.
	// It is only filled in by Tokenize.
	Space string
}

// New creates a new Lexer over src.
func New(src string) *Lexer {
	l := &Lexer{
		src: src,
		pos: token.Position{Offset: 0, Line: 1, Column: 0},
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.next >= len(l.src) {
		if !l.eof {
			l.pos.Column++
		}
		l.offset = len(l.src)
		l.pos.Offset = l.offset
		l.ch = 0
		l.eof = true
		return
	}

	r, size := utf8.DecodeRuneInString(l.src[l.next:])
	if l.ch == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}
	l.offset = l.next
	l.pos.Offset = l.offset
	l.next += size
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.next >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.next:])
	return r
}

// item builds an Item whose Raw text spans from start to the current offset.
func (l *Lexer) item(tok token.Token, start int, pos token.Position) Item {
	raw := l.src[start:l.offset]
	return Item{Token: tok, Value: raw, Raw: raw, Pos: pos}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Item {
	pos := l.pos
	start := l.offset

	if l.eof {
		return Item{Token: token.EOF, Pos: pos}
	}

	if isSpace(l.ch) {
		for !l.eof && isSpace(l.ch) {
			l.readChar()
		}
		return l.item(token.WHITESPACE, start, pos)
	}

	// Handle comments
	if l.ch == '-' && l.peekChar() == '-' {
		return l.readLineComment()
	}
	if l.ch == '/' && l.peekChar() == '*' {
		return l.readBlockComment()
	}

	switch l.ch {
	case '+':
		l.readChar()
		return l.item(token.PLUS, start, pos)
	case '-':
		l.readChar()
		return l.item(token.MINUS, start, pos)
	case '*':
		l.readChar()
		return l.item(token.ASTERISK, start, pos)
	case '/':
		l.readChar()
		return l.item(token.SLASH, start, pos)
	case '%':
		l.readChar()
		return l.item(token.PERCENT, start, pos)
	case '=':
		l.readChar()
		return l.item(token.EQ, start, pos)
	case '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.item(token.NEQ, start, pos)
		}
		return l.item(token.ILLEGAL, start, pos)
	case '<':
		l.readChar()
		switch l.ch {
		case '=':
			l.readChar()
			return l.item(token.LTE, start, pos)
		case '>':
			l.readChar()
			return l.item(token.NEQ, start, pos)
		}
		return l.item(token.LT, start, pos)
	case '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.item(token.GTE, start, pos)
		}
		return l.item(token.GT, start, pos)
	case '|':
		l.readChar()
		if l.ch == '|' {
			l.readChar()
			return l.item(token.CONCAT, start, pos)
		}
		return l.item(token.ILLEGAL, start, pos)
	case '(':
		l.readChar()
		return l.item(token.LPAREN, start, pos)
	case ')':
		l.readChar()
		return l.item(token.RPAREN, start, pos)
	case '[':
		l.readChar()
		return l.item(token.LBRACKET, start, pos)
	case ']':
		l.readChar()
		return l.item(token.RBRACKET, start, pos)
	case ',':
		l.readChar()
		return l.item(token.COMMA, start, pos)
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber()
		}
		l.readChar()
		return l.item(token.DOT, start, pos)
	case ';':
		l.readChar()
		return l.item(token.SEMICOLON, start, pos)
	case '?':
		l.readChar()
		return l.item(token.QUESTION, start, pos)
	case '\'':
		return l.readString()
	case '"':
		return l.readQuotedIdentifier()
	default:
		if isDigit(l.ch) {
			return l.readNumber()
		}
		if isIdentStart(l.ch) {
			return l.readIdentifier()
		}
		l.readChar()
		return l.item(token.ILLEGAL, start, pos)
	}
}

func (l *Lexer) readLineComment() Item {
	pos := l.pos
	start := l.offset
	for !l.eof && l.ch != '\n' {
		l.readChar()
	}
	return l.item(token.COMMENT, start, pos)
}

func (l *Lexer) readBlockComment() Item {
	pos := l.pos
	start := l.offset
	// Skip /*
	l.readChar()
	l.readChar()

	for !l.eof {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return l.item(token.COMMENT, start, pos)
		}
		l.readChar()
	}
	// Unterminated comment
	return l.item(token.ILLEGAL, start, pos)
}

func (l *Lexer) readString() Item {
	pos := l.pos
	start := l.offset
	var sb strings.Builder
	l.readChar() // skip opening quote

	for !l.eof {
		if l.ch == '\'' {
			// '' is an escaped quote
			if l.peekChar() == '\'' {
				sb.WriteRune('\'')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			it := l.item(token.STRING, start, pos)
			it.Value = sb.String()
			return it
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	// Unterminated string
	return l.item(token.ILLEGAL, start, pos)
}

func (l *Lexer) readQuotedIdentifier() Item {
	pos := l.pos
	start := l.offset
	var sb strings.Builder
	l.readChar() // skip opening quote

	for !l.eof {
		if l.ch == '"' {
			// "" is an escaped quote
			if l.peekChar() == '"' {
				sb.WriteRune('"')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			it := l.item(token.IDENT, start, pos)
			it.Value = sb.String()
			it.Quoted = true
			return it
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return l.item(token.ILLEGAL, start, pos)
}

func (l *Lexer) readNumber() Item {
	pos := l.pos
	start := l.offset

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	} else if l.ch == '.' && !isIdentStart(l.peekChar()) && l.offset > start {
		// Allow 1. (trailing dot with no digits)
		l.readChar()
	}

	// Check for exponent
	if l.ch == 'e' || l.ch == 'E' {
		nextCh := l.peekChar()
		if isDigit(nextCh) || nextCh == '+' || nextCh == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return l.item(token.NUMBER, start, pos)
}

func (l *Lexer) readIdentifier() Item {
	pos := l.pos
	start := l.offset

	for isIdentChar(l.ch) {
		l.readChar()
	}

	it := l.item(token.IDENT, start, pos)
	it.Token = token.Lookup(strings.ToUpper(it.Raw))
	return it
}

func isSpace(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '\uFEFF'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentChar(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// Tokenize returns all significant tokens of src, ending with EOF.
// Whitespace and comments are not returned as separate items; their exact
// text is attached to the Space field of the token that follows them, so
// concatenating Space+Raw over the result reproduces src.
func Tokenize(src string) []Item {
	l := New(src)
	var items []Item
	var space strings.Builder
	for {
		item := l.NextToken()
		if item.Token.IsTrivia() {
			space.WriteString(item.Raw)
			continue
		}
		item.Space = space.String()
		space.Reset()
		items = append(items, item)
		if item.Token == token.EOF {
			break
		}
	}
	return items
}
