// Package token defines constants representing the lexical tokens of Druid SQL.
package token

// Token represents a lexical token.
type Token int

const (
	// Special tokens
	ILLEGAL Token = iota
	EOF
	WHITESPACE
	COMMENT

	// Literals
	IDENT  // identifiers, quoted or not
	NUMBER // integer or decimal literals
	STRING // string literals

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	EQ       // =
	NEQ      // <> or !=
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	CONCAT   // ||

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	DOT       // .
	SEMICOLON // ;
	QUESTION  // ?

	// Reserved keywords
	keyword_beg
	ALL
	AND
	ARRAY
	AS
	ASC
	BETWEEN
	BY
	CASE
	CAST
	CROSS
	CUBE
	DATE
	DESC
	DISTINCT
	ELSE
	END
	ESCAPE
	EXPLAIN
	FALSE
	FILTER
	FOR
	FROM
	FULL
	GROUP
	GROUPING
	HAVING
	IN
	INNER
	INSERT
	INTERVAL
	INTO
	IS
	JOIN
	LEFT
	LIKE
	LIMIT
	NOT
	NULL
	OFFSET
	ON
	OR
	ORDER
	OUTER
	OVER
	PARTITION
	REPLACE
	RIGHT
	ROLLUP
	ROW
	SELECT
	SETS
	SIMILAR
	SYMMETRIC
	TABLE
	THEN
	TIMESTAMP
	TO
	TRUE
	UNION
	VALUES
	WHEN
	WHERE
	WITH
	keyword_end
)

var tokens = [...]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	WHITESPACE: "WHITESPACE",
	COMMENT:    "COMMENT",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:     "+",
	MINUS:    "-",
	ASTERISK: "*",
	SLASH:    "/",
	PERCENT:  "%",
	EQ:       "=",
	NEQ:      "<>",
	LT:       "<",
	GT:       ">",
	LTE:      "<=",
	GTE:      ">=",
	CONCAT:   "||",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COMMA:     ",",
	DOT:       ".",
	SEMICOLON: ";",
	QUESTION:  "?",

	ALL:       "ALL",
	AND:       "AND",
	ARRAY:     "ARRAY",
	AS:        "AS",
	ASC:       "ASC",
	BETWEEN:   "BETWEEN",
	BY:        "BY",
	CASE:      "CASE",
	CAST:      "CAST",
	CROSS:     "CROSS",
	CUBE:      "CUBE",
	DATE:      "DATE",
	DESC:      "DESC",
	DISTINCT:  "DISTINCT",
	ELSE:      "ELSE",
	END:       "END",
	ESCAPE:    "ESCAPE",
	EXPLAIN:   "EXPLAIN",
	FALSE:     "FALSE",
	FILTER:    "FILTER",
	FOR:       "FOR",
	FROM:      "FROM",
	FULL:      "FULL",
	GROUP:     "GROUP",
	GROUPING:  "GROUPING",
	HAVING:    "HAVING",
	IN:        "IN",
	INNER:     "INNER",
	INSERT:    "INSERT",
	INTERVAL:  "INTERVAL",
	INTO:      "INTO",
	IS:        "IS",
	JOIN:      "JOIN",
	LEFT:      "LEFT",
	LIKE:      "LIKE",
	LIMIT:     "LIMIT",
	NOT:       "NOT",
	NULL:      "NULL",
	OFFSET:    "OFFSET",
	ON:        "ON",
	OR:        "OR",
	ORDER:     "ORDER",
	OUTER:     "OUTER",
	OVER:      "OVER",
	PARTITION: "PARTITION",
	REPLACE:   "REPLACE",
	RIGHT:     "RIGHT",
	ROLLUP:    "ROLLUP",
	ROW:       "ROW",
	SELECT:    "SELECT",
	SETS:      "SETS",
	SIMILAR:   "SIMILAR",
	SYMMETRIC: "SYMMETRIC",
	TABLE:     "TABLE",
	THEN:      "THEN",
	TIMESTAMP: "TIMESTAMP",
	TO:        "TO",
	TRUE:      "TRUE",
	UNION:     "UNION",
	VALUES:    "VALUES",
	WHEN:      "WHEN",
	WHERE:     "WHERE",
	WITH:      "WITH",
}

func (tok Token) String() string {
	if tok >= 0 && int(tok) < len(tokens) {
		return tokens[tok]
	}
	return ""
}

// Keywords maps upper-cased keyword strings to their token types.
var Keywords map[string]Token

func init() {
	Keywords = make(map[string]Token)
	for i := keyword_beg + 1; i < keyword_end; i++ {
		Keywords[tokens[i]] = i
	}
}

// Lookup returns the token type for an upper-cased identifier string.
// If the string is a reserved keyword, it returns the keyword token.
// Otherwise, it returns IDENT.
func Lookup(ident string) Token {
	if tok, ok := Keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token is a reserved keyword.
// Reserved keywords can never be used as unquoted identifiers.
func (tok Token) IsKeyword() bool {
	return tok > keyword_beg && tok < keyword_end
}

// IsComparison returns true for the symbolic comparison operators.
func (tok Token) IsComparison() bool {
	switch tok {
	case EQ, NEQ, LT, GT, LTE, GTE:
		return true
	}
	return false
}

// IsTrivia returns true for tokens that carry no syntax (whitespace and comments).
func (tok Token) IsTrivia() bool {
	return tok == WHITESPACE || tok == COMMENT
}

// Position represents a source position.
type Position struct {
	Offset int // byte offset
	Line   int // line number (1-based)
	Column int // column number (1-based)
}
