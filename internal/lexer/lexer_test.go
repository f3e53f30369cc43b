package lexer

import (
	"reflect"
	"testing"
)

// ----------------------------------------------------------------------------
// Test Helpers (esbuild-style)
// ----------------------------------------------------------------------------

func expectToken(t *testing.T, input string, expected TokenKind) {
	t.Helper()
	l := New(input)
	tok := l.Next()
	if tok.Kind != expected {
		t.Errorf("input %q: expected %v, got %v", input, expected, tok.Kind)
	}
}

func expectTokenValue(t *testing.T, input string, expectedKind TokenKind, expectedValue string) {
	t.Helper()
	l := New(input)
	tok := l.Next()
	if tok.Kind != expectedKind {
		t.Errorf("input %q: expected kind %v, got %v", input, expectedKind, tok.Kind)
	}
	if tok.Value != expectedValue {
		t.Errorf("input %q: expected value %q, got %q", input, expectedValue, tok.Value)
	}
}

func expectTokens(t *testing.T, input string, expected []TokenKind) {
	t.Helper()
	l := New(input)
	for i, exp := range expected {
		tok := l.Next()
		if tok.Kind != exp {
			t.Errorf("input %q token %d: expected %v, got %v", input, i, exp, tok.Kind)
		}
	}
}

func expectError(t *testing.T, input string) {
	t.Helper()
	l := New(input)
	tok := l.Next()
	if tok.Kind != TokError {
		t.Errorf("input %q: expected error, got %v", input, tok.Kind)
	}
}

// ----------------------------------------------------------------------------
// Keyword Tests
// ----------------------------------------------------------------------------

func TestKeywords(t *testing.T) {
	for text, kind := range Keywords {
		expectToken(t, text, kind)
	}
}

func TestTypeNamesAreIdentifiers(t *testing.T) {
	for _, name := range []string{"float", "vec3", "mat2x3", "bvec4", "void", "MyStruct"} {
		expectTokenValue(t, name, TokIdent, name)
	}
}

func TestQualifiers(t *testing.T) {
	qualifiers := []TokenKind{TokConst, TokUniform, TokAttribute, TokVarying, TokIn, TokOut,
		TokInout, TokHighp, TokMediump, TokLowp, TokPrecise, TokFlat, TokSmooth}
	for _, k := range qualifiers {
		if !k.IsQualifier() {
			t.Errorf("%v: expected a qualifier", k)
		}
	}
	for _, k := range []TokenKind{TokIdent, TokStruct, TokReturn, TokIf} {
		if k.IsQualifier() {
			t.Errorf("%v: expected not a qualifier", k)
		}
	}
}

// ----------------------------------------------------------------------------
// Literal Tests
// ----------------------------------------------------------------------------

func TestIntLiterals(t *testing.T) {
	cases := []string{"0", "42", "017", "0x1F", "0XffU", "7u"}
	for _, c := range cases {
		expectTokenValue(t, c, TokIntLiteral, c)
	}
}

func TestFloatLiterals(t *testing.T) {
	cases := []string{"1.0", "1.", ".5", "1e3", "1.5e-3", "2E+2", "1.0f", "0.5F", "1.0lf", "3.0LF", "1f"}
	for _, c := range cases {
		expectTokenValue(t, c, TokFloatLiteral, c)
	}
}

func TestBoolLiterals(t *testing.T) {
	expectTokenValue(t, "true", TokTrue, "true")
	expectTokenValue(t, "false", TokFalse, "false")
}

func TestInvalidLiterals(t *testing.T) {
	expectError(t, "0x")
	expectError(t, "12abc")
	expectError(t, "1.0q")
}

// An exponent marker without digits is not part of the number.
func TestExponentWithoutDigits(t *testing.T) {
	expectTokens(t, "1e", []TokenKind{TokError})
	expectTokens(t, "x.e", []TokenKind{TokIdent, TokDot, TokIdent, TokEOF})
}

// ----------------------------------------------------------------------------
// Operator Tests
// ----------------------------------------------------------------------------

func TestOperators(t *testing.T) {
	cases := []struct {
		input string
		kind  TokenKind
	}{
		{"+", TokPlus}, {"++", TokPlusPlus}, {"+=", TokPlusEq},
		{"-", TokMinus}, {"--", TokMinusMinus}, {"-=", TokMinusEq},
		{"*", TokStar}, {"*=", TokStarEq},
		{"/", TokSlash}, {"/=", TokSlashEq},
		{"%", TokPercent}, {"%=", TokPercentEq},
		{"&", TokAnd}, {"&&", TokAndAnd}, {"&=", TokAndEq},
		{"|", TokOr}, {"||", TokOrOr}, {"|=", TokOrEq},
		{"^", TokXor}, {"^^", TokXorXor}, {"^=", TokXorEq},
		{"!", TokBang}, {"!=", TokBangEq},
		{"=", TokEq}, {"==", TokEqEq},
		{"<", TokLt}, {"<=", TokLtEq}, {"<<", TokLtLt},
		{">", TokGt}, {">=", TokGtEq}, {">>", TokGtGt},
		{"~", TokTilde}, {"?", TokQuestion}, {":", TokColon},
		{",", TokComma}, {".", TokDot}, {";", TokSemicolon},
		{"(", TokLParen}, {")", TokRParen},
		{"[", TokLBracket}, {"]", TokRBracket},
		{"{", TokLBrace}, {"}", TokRBrace},
	}
	for _, c := range cases {
		expectToken(t, c.input, c.kind)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	expectError(t, "@")
	expectError(t, "$")
}

func TestExpressionTokens(t *testing.T) {
	expectTokens(t, "a.x+=b[1]*-c;", []TokenKind{
		TokIdent, TokDot, TokIdent, TokPlusEq, TokIdent, TokLBracket, TokIntLiteral,
		TokRBracket, TokStar, TokMinus, TokIdent, TokSemicolon, TokEOF,
	})
}

// ----------------------------------------------------------------------------
// Comments and Directives
// ----------------------------------------------------------------------------

func TestCommentsSkipped(t *testing.T) {
	expectTokens(t, "a /* b */ c // d\ne", []TokenKind{TokIdent, TokIdent, TokIdent, TokEOF})
}

func TestUnterminatedBlockComment(t *testing.T) {
	expectError(t, "/* never closed")
}

func TestDirectivesDiscarded(t *testing.T) {
	input := "#version 300 es\n#define F(x) \\\n  (x * 2)\nfloat a;"
	expectTokens(t, input, []TokenKind{TokIdent, TokIdent, TokSemicolon, TokEOF})
}

// A # that is not the first non-blank character of a line is an error.
func TestHashInsideLine(t *testing.T) {
	expectTokens(t, "a # b", []TokenKind{TokIdent, TokError})
}

func TestIndentedDirective(t *testing.T) {
	expectTokens(t, "  #ifdef GL_ES\nx", []TokenKind{TokIdent, TokEOF})
}

func TestDocComments(t *testing.T) {
	cases := []struct {
		input    string
		expected []string
	}{
		{"// one\nfloat", []string{"// one"}},
		{"// one\n// two\nfloat", []string{"// one", "// two"}},
		{"/* block */\nfloat", []string{"/* block */"}},
		{"// detached\n\nfloat", nil},
		{"// old\n\n// new\nfloat", []string{"// new"}},
	}
	for _, c := range cases {
		tok := New(c.input).Next()
		if !reflect.DeepEqual(tok.Comments, c.expected) {
			t.Errorf("input %q: expected comments %q, got %q", c.input, c.expected, tok.Comments)
		}
	}
}

func TestTrailingCommentNotDoc(t *testing.T) {
	l := New("a; // trailing\nb")
	l.Next()
	l.Next()
	if tok := l.Next(); len(tok.Comments) != 0 {
		t.Errorf("expected no comments on b, got %q", tok.Comments)
	}
}

// ----------------------------------------------------------------------------
// Positions
// ----------------------------------------------------------------------------

func TestTokenPositions(t *testing.T) {
	source := "vec3 p = q;"
	tokens := New(source).Tokenize()
	texts := []string{"vec3", "p", "=", "q", ";", ""}
	if len(tokens) != len(texts) {
		t.Fatalf("expected %d tokens, got %d", len(texts), len(tokens))
	}
	for i, tok := range tokens {
		if got := tok.Text(source); got != texts[i] {
			t.Errorf("token %d: expected text %q, got %q", i, texts[i], got)
		}
	}
}

func TestTokenizeStopsAtError(t *testing.T) {
	tokens := New("a @ b").Tokenize()
	if last := tokens[len(tokens)-1]; last.Kind != TokError {
		t.Errorf("expected last token to be an error, got %v", last.Kind)
	}
	if len(tokens) != 2 {
		t.Errorf("expected 2 tokens, got %d", len(tokens))
	}
}

func TestTokenKindString(t *testing.T) {
	if TokXorXor.String() != "^^" {
		t.Errorf("expected ^^, got %s", TokXorXor.String())
	}
	if TokenKind(255).String() != "unknown" {
		t.Errorf("expected unknown, got %s", TokenKind(255).String())
	}
}
