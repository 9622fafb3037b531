package lexer

import (
	"testing"

	"github.com/valc-lang/valc/internal/token"
)

func collect(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestNextToken_Punctuators(t *testing.T) {
	input := `=== !== == != <= >= && || ... = + - * / % ! < > ( ) { } [ ] , ; : . ?`

	expected := []token.Type{
		token.EQ_STRICT, token.NE_STRICT, token.EQ, token.NOT_EQ,
		token.LE, token.GE, token.AND_AND, token.OR_OR, token.ELLIPSIS,
		token.ASSIGN, token.PLUS, token.MINUS, token.ASTERISK, token.SLASH,
		token.PERCENT, token.BANG, token.LT, token.GT,
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.SEMICOLON,
		token.COLON, token.DOT, token.QUESTION, token.EOF,
	}

	toks := collect(t, input)
	if len(toks) != len(expected) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(expected), toks)
	}
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("token %d: got %q, want %q", i, toks[i].Type, want)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	input := "let const any string number true false null undefined typeof class new return void declare function export import from"
	expected := []token.Type{
		token.LET, token.CONST, token.ANY, token.STRINGKW, token.NUMBER,
		token.TRUE, token.FALSE, token.NULL, token.UNDEFINED, token.TYPEOF,
		token.CLASS, token.NEW, token.RETURN, token.VOID, token.DECLARE,
		token.FUNCTION, token.EXPORT, token.IMPORT, token.FROM, token.EOF,
	}
	toks := collect(t, input)
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("token %d: got %q, want %q", i, toks[i].Type, want)
		}
	}
}

func TestNextToken_IdentifiersAndKeywordPriority(t *testing.T) {
	toks := collect(t, "letter classify newVal")
	for i, typ := range []token.Type{token.IDENT, token.IDENT, token.IDENT, token.EOF} {
		if toks[i].Type != typ {
			t.Errorf("token %d: got %q, want IDENT (keyword must not win on prefix match)", i, toks[i].Type)
		}
	}
}

func TestNextToken_NumberLiterals(t *testing.T) {
	toks := collect(t, "42 3.14 0 7.0")
	want := []struct {
		typ token.Type
		lit string
	}{
		{token.INT, "42"},
		{token.FLOAT, "3.14"},
		{token.INT, "0"},
		{token.FLOAT, "7.0"},
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Literal != w.lit {
			t.Errorf("token %d: got %q %q, want %q %q", i, toks[i].Type, toks[i].Literal, w.typ, w.lit)
		}
	}
}

func TestNextToken_Strings(t *testing.T) {
	toks := collect(t, `'hello' ` + "`world`")
	if toks[0].Type != token.STRING || toks[0].Literal != "hello" {
		t.Errorf("got %+v, want STRING hello", toks[0])
	}
	if toks[1].Type != token.STRING || toks[1].Literal != "world" {
		t.Errorf("got %+v, want STRING world", toks[1])
	}
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New(`'unterminated`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("got %q, want STRING", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(l.Errors()))
	}
}

func TestNextToken_Decorator(t *testing.T) {
	toks := collect(t, "@builtin @deco_2")
	if toks[0].Type != token.DECORATOR || toks[0].Literal != "builtin" {
		t.Errorf("got %+v, want DECORATOR builtin", toks[0])
	}
	if toks[1].Type != token.DECORATOR || toks[1].Literal != "deco_2" {
		t.Errorf("got %+v, want DECORATOR deco_2", toks[1])
	}
}

func TestNextToken_Comments(t *testing.T) {
	input := "let // line comment\nx /* block\ncomment */ = 1;"
	toks := collect(t, input)
	want := []token.Type{token.LET, token.IDENT, token.ASSIGN, token.INT, token.SEMICOLON, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d: got %q, want %q", i, toks[i].Type, typ)
		}
	}
}

func TestNextToken_UnterminatedBlockComment(t *testing.T) {
	l := New("/* never closes")
	tok := l.NextToken()
	if tok.Type != token.EOF {
		t.Fatalf("got %q, want EOF", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(l.Errors()))
	}
}

func TestNextToken_Positions(t *testing.T) {
	toks := collect(t, "let\nx = 1;")
	if toks[0].Pos.Line != 1 {
		t.Errorf("let: got line %d, want 1", toks[0].Pos.Line)
	}
	if toks[1].Pos.Line != 2 {
		t.Errorf("x: got line %d, want 2", toks[1].Pos.Line)
	}
}

func TestNextToken_FunctionDecl(t *testing.T) {
	input := `declare function f(n: number, ...rest): number;`
	toks := collect(t, input)
	want := []token.Type{
		token.DECLARE, token.FUNCTION, token.IDENT, token.LPAREN,
		token.IDENT, token.COLON, token.NUMBER, token.COMMA,
		token.ELLIPSIS, token.IDENT, token.RPAREN, token.COLON,
		token.NUMBER, token.SEMICOLON, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d: got %q, want %q", i, toks[i].Type, typ)
		}
	}
}

func TestNextToken_IllegalCharacter(t *testing.T) {
	l := New("let x = 1 # 2;")
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	foundIllegal := false
	for _, tok := range toks {
		if tok.Type == token.ILLEGAL {
			foundIllegal = true
		}
	}
	if !foundIllegal {
		t.Fatalf("expected an ILLEGAL token for '#', got %+v", toks)
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lexer error for illegal character")
	}
}
