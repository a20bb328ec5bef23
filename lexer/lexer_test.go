package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlc-dev/druidsql/lexer"
	"github.com/sqlc-dev/druidsql/token"
)

func TestNextToken(t *testing.T) {
	input := `SELECT "a""b", 'it''s' -- c
<> != <= 1.5e3 .5 x$1 /* d */`

	tests := []struct {
		tok   token.Token
		raw   string
		value string
	}{
		{token.SELECT, "SELECT", "SELECT"},
		{token.WHITESPACE, " ", " "},
		{token.IDENT, `"a""b"`, `a"b`},
		{token.COMMA, ",", ","},
		{token.WHITESPACE, " ", " "},
		{token.STRING, `'it''s'`, "it's"},
		{token.WHITESPACE, " ", " "},
		{token.COMMENT, "-- c", "-- c"},
		{token.WHITESPACE, "\n", "\n"},
		{token.NEQ, "<>", "<>"},
		{token.WHITESPACE, " ", " "},
		{token.NEQ, "!=", "!="},
		{token.WHITESPACE, " ", " "},
		{token.LTE, "<=", "<="},
		{token.WHITESPACE, " ", " "},
		{token.NUMBER, "1.5e3", "1.5e3"},
		{token.WHITESPACE, " ", " "},
		{token.NUMBER, ".5", ".5"},
		{token.WHITESPACE, " ", " "},
		{token.IDENT, "x$1", "x$1"},
		{token.WHITESPACE, " ", " "},
		{token.COMMENT, "/* d */", "/* d */"},
		{token.EOF, "", ""},
	}

	l := lexer.New(input)
	for i, tc := range tests {
		item := l.NextToken()
		require.Equal(t, tc.tok, item.Token, "token %d (%q)", i, item.Raw)
		assert.Equal(t, tc.raw, item.Raw, "token %d", i)
		assert.Equal(t, tc.value, item.Value, "token %d", i)
	}
}

func TestPositions(t *testing.T) {
	l := lexer.New("a\n  bc")
	a := l.NextToken()
	assert.Equal(t, token.Position{Offset: 0, Line: 1, Column: 1}, a.Pos)
	l.NextToken()
	bc := l.NextToken()
	assert.Equal(t, token.Position{Offset: 4, Line: 2, Column: 3}, bc.Pos)
}

func TestUnterminated(t *testing.T) {
	for _, input := range []string{`'abc`, `"abc`, `/* abc`, `|`, `!`} {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, token.ILLEGAL, lexer.New(input).NextToken().Token)
		})
	}
}

func TestTokenizeKeepsEveryByte(t *testing.T) {
	inputs := []string{
		"SELECT a FROM t",
		"  select /* x */ a\n\t--y\nfrom \"t\"  ",
		"\uFEFFSELECT 1",
		"",
	}
	for _, input := range inputs {
		items := lexer.Tokenize(input)
		require.NotEmpty(t, items)
		assert.Equal(t, token.EOF, items[len(items)-1].Token)

		var b strings.Builder
		for _, item := range items {
			assert.False(t, item.Token.IsTrivia())
			b.WriteString(item.Space)
			b.WriteString(item.Raw)
		}
		assert.Equal(t, input, b.String())
	}
}

func TestTokenizeAttachesTrivia(t *testing.T) {
	items := lexer.Tokenize("a /* c */ + -- d\n b ")
	require.Len(t, items, 4)
	assert.Equal(t, "", items[0].Space)
	assert.Equal(t, " /* c */ ", items[1].Space)
	assert.Equal(t, token.PLUS, items[1].Token)
	assert.Equal(t, " -- d\n ", items[2].Space)
	assert.Equal(t, " ", items[3].Space)
	assert.Equal(t, token.EOF, items[3].Token)
}
