package scanner

import (
	"testing"

	"rox/interpreter-go/pkg/token"
)

func scanAll(t *testing.T, source string) []token.Token {
	t.Helper()
	tokens, err := Scan(source)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	return tokens
}

func expectTypes(t *testing.T, tokens []token.Token, want ...token.Type) {
	t.Helper()
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, ty := range want {
		if tokens[i].Type != ty {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, ty, tokens[i].Type, tokens[i].Literal)
		}
	}
}

func TestScanSingleCharacterTokens(t *testing.T) {
	tokens := scanAll(t, "(){},.-+;*/")
	expectTypes(t, tokens,
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Star, token.Slash, token.EOF,
	)
}

func TestScanOperatorsGreedily(t *testing.T) {
	tokens := scanAll(t, "! != = == < <= > >=")
	expectTypes(t, tokens,
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.EOF,
	)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	tokens := scanAll(t, "and class else false for fun if nil or print return super this true var while break continue")
	expectTypes(t, tokens,
		token.And, token.Class, token.Else, token.False, token.For, token.Fun,
		token.If, token.Nil, token.Or, token.Print, token.Return, token.Super,
		token.This, token.True, token.Var, token.While, token.Break, token.Continue,
		token.EOF,
	)

	tokens = scanAll(t, "foo _bar baz123 classy")
	expectTypes(t, tokens, token.Identifier, token.Identifier, token.Identifier, token.Identifier, token.EOF)
	if tokens[3].Literal != "classy" {
		t.Fatalf("keyword prefix must not split an identifier: %q", tokens[3].Literal)
	}
}

func TestScanNumbers(t *testing.T) {
	tokens := scanAll(t, "0 42 3.25")
	expectTypes(t, tokens, token.Number, token.Number, token.Number, token.EOF)
	if tokens[2].Literal != "3.25" {
		t.Fatalf("unexpected number literal %q", tokens[2].Literal)
	}

	// A trailing dot is a Dot token, not part of the number.
	tokens = scanAll(t, "7.")
	expectTypes(t, tokens, token.Number, token.Dot, token.EOF)
}

func TestScanStrings(t *testing.T) {
	tokens := scanAll(t, `"hello world"`)
	expectTypes(t, tokens, token.String, token.EOF)
	if tokens[0].Literal != "hello world" {
		t.Fatalf("string literal should exclude quotes, got %q", tokens[0].Literal)
	}
}

func TestScanMultiLineStringTracksLine(t *testing.T) {
	tokens := scanAll(t, "\"a\nb\"\nfoo")
	expectTypes(t, tokens, token.String, token.Identifier, token.EOF)
	if tokens[0].Literal != "a\nb" {
		t.Fatalf("unexpected string literal %q", tokens[0].Literal)
	}
	if tokens[1].Line != 3 {
		t.Fatalf("expected identifier on line 3, got %d", tokens[1].Line)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := Scan(`"oops`)
	serr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if serr.Line != 1 {
		t.Fatalf("expected error on line 1, got %d", serr.Line)
	}
	if !IsIncomplete(err) {
		t.Fatalf("an unterminated string ends mid-token and must be incomplete")
	}
}

func TestScanCommentsAndWhitespace(t *testing.T) {
	tokens := scanAll(t, "a // rest of line is ignored\nb")
	expectTypes(t, tokens, token.Identifier, token.Identifier, token.EOF)
	if tokens[0].Line != 1 || tokens[1].Line != 2 {
		t.Fatalf("unexpected lines %d and %d", tokens[0].Line, tokens[1].Line)
	}
}

func TestScanUnexpectedCharacter(t *testing.T) {
	_, err := Scan("var x = 1 @ 2;")
	if err == nil {
		t.Fatalf("expected a scan error for '@'")
	}
	if IsIncomplete(err) {
		t.Fatalf("malformed input is not incomplete input")
	}
	if IsIncomplete(nil) {
		t.Fatalf("nil is never incomplete")
	}
}

func TestScanEmptySourceYieldsEOF(t *testing.T) {
	tokens := scanAll(t, "")
	expectTypes(t, tokens, token.EOF)
}
