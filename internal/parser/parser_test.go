package parser

import (
	"strings"
	"testing"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/printer"
)

// ----------------------------------------------------------------------------
// Test Helpers (esbuild-style)
// ----------------------------------------------------------------------------

// expectPrinted parses input and verifies the printed output matches expected.
func expectPrinted(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		file, err := Parse(input)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		actual := printer.New(printer.Options{}).Print(file)
		if actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// expectPrintedMinify parses input and verifies the whitespace-free output.
func expectPrintedMinify(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		file, err := Parse(input)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		actual := printer.New(printer.Options{MinifyWhitespace: true}).Print(file)
		if actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// expectParseError verifies that parsing fails with an error containing
// each of the given fragments.
func expectParseError(t *testing.T, input string, fragments ...string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		file, err := Parse(input)
		if err == nil {
			t.Fatalf("expected parse error, got:\n%s", printer.Print(file))
		}
		if file != nil {
			t.Error("expected no tree alongside the error")
		}
		for _, f := range fragments {
			if !strings.Contains(err.Error(), f) {
				t.Errorf("expected %q in error %q", f, err.Error())
			}
		}
	})
}

// expectRoundTrip verifies that printing and re-parsing yields an equal tree
// in both printer modes.
func expectRoundTrip(t *testing.T, input string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		file, err := Parse(input)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		for _, minify := range []bool{false, true} {
			out := printer.New(printer.Options{MinifyWhitespace: minify}).Print(file)
			again, err := Parse(out)
			if err != nil {
				t.Fatalf("re-parse error (minify=%v): %v\noutput:\n%s", minify, err, out)
			}
			if !ast.EqualFile(file, again) {
				t.Errorf("round trip changed the tree (minify=%v)\noutput:\n%s", minify, out)
			}
		}
	})
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func TestGlobalVarDecls(t *testing.T) {
	expectPrinted(t, "float a;", "float a;\n")
	expectPrinted(t, "float a = 1.0;", "float a = 1.0;\n")
	expectPrinted(t, "uniform highp vec3 a, b[2], c = d;", "uniform highp vec3 a, b[2], c = d;\n")
	expectPrinted(t, "const float PI = 3.14159;", "const float PI = 3.14159;\n")
	expectPrinted(t, "float[2] w;", "float[2] w;\n")
	expectPrinted(t, "float a; float b;", "float a;\nfloat b;\n")
	expectPrinted(t, ";;float a;;", "float a;\n")
}

func TestStructDecls(t *testing.T) {
	expectPrinted(t, "struct S { float a, b; vec3 c; };", "struct S {\n    float a, b;\n    vec3 c;\n};\n")
	expectPrinted(t, "struct E {};", "struct E {\n};\n")
	expectPrinted(t, "struct S { float a; }; S s;", "struct S {\n    float a;\n};\n\nS s;\n")
}

func TestFunctionDecls(t *testing.T) {
	expectPrinted(t, "float f(float x) { return x; }", "float f(float x) {\n    return x;\n}\n")
	expectPrinted(t, "void main(void) {}", "void main() {}\n")
	expectPrinted(t, "void main() {}", "void main() {}\n")
	expectPrinted(t, "vec3 g(in vec3 a, out float b[2], inout mat3 m) { return a; }",
		"vec3 g(in vec3 a, out float b[2], inout mat3 m) {\n    return a;\n}\n")
	expectPrinted(t, "float a; float f() { return a; }", "float a;\n\nfloat f() {\n    return a;\n}\n")
	expectPrinted(t, "highp float f(float x) { return x; }", "highp float f(float x) {\n    return x;\n}\n")
	expectPrintedMinify(t, "mediump vec2 f() { return vec2(0.0); }", "mediump vec2 f(){return vec2(0.0);}")
	expectRoundTrip(t, "lowp float f(highp float x) { return x; }")
}

func TestFunctionDocComments(t *testing.T) {
	expectPrinted(t, "// Doubles x.\nfloat f(float x) { return x * 2.0; }",
		"// Doubles x.\nfloat f(float x) {\n    return x * 2.0;\n}\n")
	expectPrinted(t, "// detached\n\nfloat f(float x) { return x; }",
		"float f(float x) {\n    return x;\n}\n")

	file, err := Parse("/* a */\n// b\nvoid main() {}")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	doc := file.Functions()[0].Doc
	if len(doc) != 2 || doc[0] != "/* a */" || doc[1] != "// b" {
		t.Errorf("unexpected doc comments %q", doc)
	}
}

func TestDirectivesDropped(t *testing.T) {
	expectPrinted(t, "#version 300 es\n#define N 4\nfloat a;", "float a;\n")
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func TestLocalDecls(t *testing.T) {
	expectPrinted(t, "void f() { vec3 a; }", "void f() {\n    vec3 a;\n}\n")
	expectPrinted(t, "void f() { float[2] b; }", "void f() {\n    float[2] b;\n}\n")
	expectPrinted(t, "void f() { const float c = 1.0, d; }", "void f() {\n    const float c = 1.0, d;\n}\n")
	expectPrinted(t, "void f() { S s = S(1.0); }", "void f() {\n    S s = S(1.0);\n}\n")
}

// Statements that look like declarations at their first token.
func TestDeclarationDetection(t *testing.T) {
	expectPrinted(t, "void f() { a[1] = x; }", "void f() {\n    a[1] = x;\n}\n")
	expectPrinted(t, "void f() { a[i][j] = x; }", "void f() {\n    a[i][j] = x;\n}\n")
	expectPrinted(t, "void f() { a = b; }", "void f() {\n    a = b;\n}\n")
	expectPrinted(t, "void f() { g(a); }", "void f() {\n    g(a);\n}\n")
	expectPrinted(t, "void f() { a++; }", "void f() {\n    a++;\n}\n")

	file, err := Parse("void f() { vec3 a; a[0] = 1.0; float[2] b; }")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	body := file.Functions()[0].Body
	if _, ok := body[0].(*ast.DeclStmt); !ok {
		t.Errorf("statement 0: expected a declaration, got %T", body[0])
	}
	if _, ok := body[1].(*ast.ExprStmt); !ok {
		t.Errorf("statement 1: expected an expression, got %T", body[1])
	}
	if _, ok := body[2].(*ast.DeclStmt); !ok {
		t.Errorf("statement 2: expected a declaration, got %T", body[2])
	}
}

func TestIfStatements(t *testing.T) {
	expectPrinted(t, "void f() { if (a) b = 1; }", "void f() {\n    if (a) {\n        b = 1;\n    }\n}\n")
	expectPrinted(t, "void f() { if (a) { b = 1; } else { b = 2; } }",
		"void f() {\n    if (a) {\n        b = 1;\n    } else {\n        b = 2;\n    }\n}\n")
	expectPrinted(t, "void f() { if (a) b = 1; else if (c) { d++; } else e--; }",
		"void f() {\n    if (a) {\n        b = 1;\n    } else if (c) {\n        d++;\n    } else {\n        e--;\n    }\n}\n")
}

func TestLoops(t *testing.T) {
	expectPrinted(t, "void f() { for (int i = 0; i < 4; i++) { x += i; } }",
		"void f() {\n    for (int i = 0; i < 4; i++) {\n        x += i;\n    }\n}\n")
	expectPrinted(t, "void f() { for (;;) break; }", "void f() {\n    for (;;) {\n        break;\n    }\n}\n")
	expectPrinted(t, "void f() { for (i = 0; ; ) continue; }", "void f() {\n    for (i = 0;;) {\n        continue;\n    }\n}\n")
	expectPrinted(t, "void f() { while (x > 0.0) x -= 1.0; }",
		"void f() {\n    while (x > 0.0) {\n        x -= 1.0;\n    }\n}\n")
	expectPrinted(t, "void f() { do { x--; } while (x > 0); }",
		"void f() {\n    do {\n        x--;\n    } while (x > 0);\n}\n")
}

func TestJumpStatements(t *testing.T) {
	expectPrinted(t, "void f() { return; }", "void f() {\n    return;\n}\n")
	expectPrinted(t, "void f() { discard; }", "void f() {\n    discard;\n}\n")
	expectPrinted(t, "void f() { { a = 1; } }", "void f() {\n    {\n        a = 1;\n    }\n}\n")
	expectPrinted(t, "void f() { ; }", "void f() {}\n")
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func expectPrintedExpr(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		expr, err := ParseExpression(input)
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		if actual := printer.PrintExpr(expr); actual != expected {
			t.Errorf("expected %q, got %q", expected, actual)
		}
	})
}

func TestLiterals(t *testing.T) {
	for _, lit := range []string{"1", "017", "0x1F", "7u", "1.0", "1.", ".5", "1e3", "1.0f", "2.0lf", "true", "false"} {
		expectPrintedExpr(t, lit, lit)
	}
}

func TestPrecedence(t *testing.T) {
	expectPrintedExpr(t, "a+b*c", "a + b * c")
	expectPrintedExpr(t, "(a+b)*c", "(a + b) * c")
	expectPrintedExpr(t, "a-b-c", "a - b - c")
	expectPrintedExpr(t, "a-(b-c)", "a - (b - c)")
	expectPrintedExpr(t, "a<<1+b", "a << 1 + b")
	expectPrintedExpr(t, "a<b==c>=d", "a < b == c >= d")
	expectPrintedExpr(t, "a&b^c|d", "a & b ^ c | d")
	expectPrintedExpr(t, "a&&b^^c||d", "a && b ^^ c || d")
	expectPrintedExpr(t, "-a*b", "-a * b")
	expectPrintedExpr(t, "- -a", "- -a")
	expectPrintedExpr(t, "-(-a)", "-(-a)")
	expectPrintedExpr(t, "!a", "!a")
	expectPrintedExpr(t, "~a%b", "~a % b")

	e, err := ParseExpression("a + b * c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bin, ok := e.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.BinOpAdd {
		t.Fatalf("expected + at the root, got %#v", e)
	}
	if right, ok := bin.Right.(*ast.BinaryExpr); !ok || right.Op != ast.BinOpMul {
		t.Errorf("expected * on the right, got %#v", bin.Right)
	}
}

func TestTernary(t *testing.T) {
	expectPrintedExpr(t, "a?b:c", "a ? b : c")
	expectPrintedExpr(t, "a?b:c?d:e", "a ? b : c ? d : e")
	expectPrintedExpr(t, "a||b?c:d", "a || b ? c : d")
	expectPrintedExpr(t, "(a?b:c)?d:e", "(a ? b : c) ? d : e")

	e, err := ParseExpression("a ? b : c ? d : e")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	tern := e.(*ast.TernaryExpr)
	if _, ok := tern.Else.(*ast.TernaryExpr); !ok {
		t.Errorf("expected the ternary to nest to the right, got %#v", tern.Else)
	}
}

func TestAssignment(t *testing.T) {
	expectPrintedExpr(t, "a=b", "a = b")
	expectPrintedExpr(t, "a=b=c", "a = b = c")
	for _, op := range []string{"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^="} {
		expectPrintedExpr(t, "a"+op+"b", "a "+op+" b")
	}

	e, err := ParseExpression("a = b = c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, ok := e.(*ast.AssignExpr).Right.(*ast.AssignExpr); !ok {
		t.Error("expected assignment to associate to the right")
	}
}

func TestPostfixChains(t *testing.T) {
	expectPrintedExpr(t, "a.b[1].c", "a.b[1].c")
	expectPrintedExpr(t, "f(x).yz", "f(x).yz")
	expectPrintedExpr(t, "m[0][1]", "m[0][1]")
	expectPrintedExpr(t, "v.x++", "v.x++")
	expectPrintedExpr(t, "++v.x", "++v.x")
	expectPrintedExpr(t, "vec3(1.0, 2.0, 3.0).xy", "vec3(1.0, 2.0, 3.0).xy")
	expectPrintedExpr(t, "f()", "f()")

	e, err := ParseExpression("a.b[1].c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	member, ok := e.(*ast.MemberExpr)
	if !ok || member.Member != "c" {
		t.Fatalf("expected .c at the root, got %#v", e)
	}
	index, ok := member.Base.(*ast.IndexExpr)
	if !ok {
		t.Fatalf("expected an index below .c, got %#v", member.Base)
	}
	if inner, ok := index.Base.(*ast.MemberExpr); !ok || inner.Member != "b" {
		t.Errorf("expected .b below the index, got %#v", index.Base)
	}
}

// ----------------------------------------------------------------------------
// Minified output
// ----------------------------------------------------------------------------

func TestMinify(t *testing.T) {
	expectPrintedMinify(t, "float f(float x) {\n    return x * 2.0;\n}", "float f(float x){return x*2.0;}")
	expectPrintedMinify(t, "uniform vec3 a, b;\nfloat c = 1.0;", "uniform vec3 a,b;float c=1.0;")
	expectPrintedMinify(t, "struct S { float a; };", "struct S{float a;};")
	expectPrintedMinify(t, "float g(float a, float b) { return a - -b + +a; }", "float g(float a,float b){return a- -b+ +a;}")
	expectPrintedMinify(t, "void f() { x--; --y; }", "void f(){x--;--y;}")
	expectPrintedMinify(t, "void f() { if (a) { b(); } else { c(); } }", "void f(){if(a){b();}else{c();}}")
	expectPrintedMinify(t, "// doc\nvoid f() {}", "void f(){}")
}

// ----------------------------------------------------------------------------
// Round trip
// ----------------------------------------------------------------------------

func TestRoundTrip(t *testing.T) {
	expectRoundTrip(t, `
uniform float time;
varying vec2 uv, st[2];

struct Light {
    vec3 pos;
    float intensity, falloff;
};

// Shades a point.
vec3 shade(in Light l, vec3 p, out float d) {
    vec3 v = l.pos - p;
    d = length(v);
    float k = d > 0.0 ? l.intensity / (d * d) : 0.0;
    for (int i = 0; i < 4; i++) {
        k *= 0.5;
        if (k < 0.01) break;
    }
    while (k > 1.0) k -= 1.0;
    do { k = -k; } while (k > 0.0 && !(k < -1.0));
    return v * k;
}

void main(void) {
    float a[3];
    a[0] = 1.0;
    gl_FragColor = vec4(shade(Light(vec3(time), 1.0, 0.5), vec3(uv, 0.0), a[1]), 1.0);
    if (a[1] > 2.0) discard;
}
`)
	expectRoundTrip(t, "float f(float a, float b) { return a - -b + +a - --b; }")
	expectRoundTrip(t, "float f(float a, float b) { return a / (b / a) + (a + b) * 2.0 + (a = b); }")
	expectRoundTrip(t, "int f(int a) { return a ^ 1 | a & 2 << 1 >> (a % 3); }")
	expectRoundTrip(t, "bool f(bool a, bool b) { return a ^^ b || a && !b ? a : b ? true : false; }")
}

// Hand-built trees print with the parentheses their shape needs.
func TestPrintHandBuiltTree(t *testing.T) {
	loc := ast.Loc{}
	sum := ast.Binary(loc, ast.BinOpAdd, ast.Ident(loc, "a"), ast.Ident(loc, "b"))
	expr := ast.Binary(loc, ast.BinOpMul, sum, ast.Ident(loc, "c"))
	out := printer.PrintExpr(expr)
	if out != "(a + b) * c" {
		t.Fatalf("expected %q, got %q", "(a + b) * c", out)
	}
	parsed, err := ParseExpression(out)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	paren, ok := parsed.(*ast.BinaryExpr).Left.(*ast.ParenExpr)
	if !ok || !ast.EqualExpr(paren.Expr, sum) {
		t.Errorf("re-parsed tree differs: %#v", parsed)
	}
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

func TestParseErrors(t *testing.T) {
	expectParseError(t, "float f( {", "1:10:", "syntax error", "expected identifier, got {", `at "{"`)
	expectParseError(t, "float x = ;", "1:11:", "expected expression, got ;")
	expectParseError(t, "void f() {\n    x = 1\n}", "3:1:", "expected ;, got }")
	expectParseError(t, "void f() {", "unexpected end of file, expected }")
	expectParseError(t, "float a = 1.0q;", "1:11:", "invalid numeric literal", `at "1.0q"`)
	expectParseError(t, "struct S { float a = 1.0; };", `struct field "a" cannot have an initializer`)
	expectParseError(t, "float a = b c;", `expected ;, got identifier "c"`)
	expectParseError(t, "uniform float f() {}", "1:16:", `qualifier "uniform" is not allowed on a function`)
	expectParseError(t, "highp float[2] f() {}", "expected ;, got (")
	expectParseError(t, "void f() { @ }", "unexpected character @")
}

func TestParseExpressionTrailingTokens(t *testing.T) {
	if _, err := ParseExpression("a b"); err == nil {
		t.Fatal("expected an error")
	} else if !strings.Contains(err.Error(), "unexpected identifier after expression") {
		t.Errorf("unexpected error: %v", err)
	}
}
