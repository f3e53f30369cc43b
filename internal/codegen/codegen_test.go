package codegen

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/HugoDaniel/glslkit/internal/diagnostic"
	"github.com/HugoDaniel/glslkit/internal/js"
	"github.com/HugoDaniel/glslkit/internal/parser"
	"github.com/HugoDaniel/glslkit/internal/types"
)

func generate(t *testing.T, source string) (string, error) {
	t.Helper()
	file, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := Generate(file, types.BuildScope(file), JavaScript)
	if err != nil {
		return "", err
	}
	return js.Print(prog), nil
}

func expectJS(t *testing.T, source, expected string) {
	t.Helper()
	got, err := generate(t, source)
	if err != nil {
		t.Fatalf("input %q: unexpected error: %v", source, err)
	}
	if got != expected {
		t.Errorf("input:\n%s\ngot:\n%s\nexpected:\n%s", source, got, expected)
	}
}

// expectReturn checks the statement a one-line function body becomes.
func expectReturn(t *testing.T, signature, body, expected string) {
	t.Helper()
	got, err := generate(t, signature+" {\n    "+body+"\n}")
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", body, err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != expected {
		t.Errorf("%s: got:\n%s\nexpected body %q", body, got, expected)
	}
}

func expectUnsupported(t *testing.T, source, construct string) {
	t.Helper()
	_, err := generate(t, source)
	var ue *diagnostic.UnsupportedConstructError
	if !errors.As(err, &ue) {
		t.Fatalf("input %q: expected an unsupported construct error, got %v", source, err)
	}
	if !strings.Contains(ue.Detail(), construct) {
		t.Errorf("input %q: expected %q in %q", source, construct, ue.Detail())
	}
}

func TestDialects(t *testing.T) {
	for _, name := range []string{"", "js", "JavaScript"} {
		d, err := ParseDialect(name)
		if err != nil || d != JavaScript {
			t.Errorf("%q: got %v, %v", name, d, err)
		}
	}
	if _, err := ParseDialect("hlsl"); err == nil || err.Error() != `unknown dialect "hlsl"` {
		t.Errorf("expected an unknown dialect error, got %v", err)
	}
	_, err := ParseDialect("hlsl")
	if trace := fmt.Sprintf("%+v", err); !strings.Contains(trace, "codegen.ParseDialect") {
		t.Errorf("expected a stack trace, got:\n%s", trace)
	}

	if JavaScript.String() != "js" || Dialect(3).String() != "Dialect(3)" {
		t.Error("unexpected dialect names")
	}

	file, _ := parser.Parse("float a;")
	if _, err := Generate(file, types.BuildScope(file), Dialect(3)); err == nil || err.Error() != "unsupported dialect Dialect(3)" {
		t.Error("expected an error for an unknown dialect")
	}
}

func TestFunctionSignatures(t *testing.T) {
	expectJS(t, "vec3 add(vec3 a, vec3 b) {\n    return a + b;\n}",
		"/*vec3*/ function add(/*vec3*/ a, /*vec3*/ b) {\n    return a['+'](b);\n}\n")
	expectJS(t, "void f(inout vec3 v, float w[2]) {}",
		"/*void*/ function f(/*inout vec3*/ v, /*float[]*/ w) {}\n")
	expectJS(t, "// Scales x.\nfloat g(float x) {\n    return x;\n}",
		"// Scales x.\n/*float*/ function g(/*float*/ x) {\n    return x;\n}\n")
}

func TestStructFactory(t *testing.T) {
	expectJS(t, "struct P {\n    vec3 n;\n    float w[2], k;\n};",
		"function P(/*vec3*/ n, /*float[]*/ w, /*float*/ k) {\n    return { n: n, w: w, k: k };\n}\n")
}

func TestGlobals(t *testing.T) {
	expectJS(t, "uniform float time;\nconst float k = 2.0;\nfloat a[3];\nfloat f() {\n    return time * k;\n}",
		"let time;\nconst k = 2.0;\nlet a = [];\n\n/*float*/ function f() {\n    return time * k;\n}\n")
}

func TestScalarOperators(t *testing.T) {
	sig := "float f(float a, float b, int i, bool p, bool q)"
	expectReturn(t, sig, "return a + b * 2.0;", "return a + b * 2.0;")
	expectReturn(t, sig, "return -a;", "return -a;")
	expectReturn(t, sig, "return (a + b) / 2.0f;", "return (a + b) / 2.0;")
	expectReturn(t, sig, "return p ^^ q ? a : b;", "return p != q ? a : b;")
	expectReturn(t, sig, "return !p && q ? a : b;", "return !p && q ? a : b;")
	expectReturn(t, sig, "i++;", "i++;")
	expectReturn(t, sig, "--i;", "--i;")
	expectReturn(t, sig, "a += b;", "a += b;")
}

func TestVectorOperators(t *testing.T) {
	sig := "vec3 f(float s, vec3 v, vec3 w, mat3 m)"
	expectReturn(t, sig, "return v + w;", "return v['+'](w);")
	expectReturn(t, sig, "return v * s;", "return v['*'](s);")
	expectReturn(t, sig, "return s * v;", "return v['*'](s);")
	expectReturn(t, sig, "return s + v;", "return v['+'](s);")
	expectReturn(t, sig, "return s - v;", "return glm.vec3(s)['-'](v);")
	expectReturn(t, sig, "return s / v;", "return glm.vec3(s)['/'](v);")
	expectReturn(t, sig, "return m * v;", "return m['*'](v);")
	expectReturn(t, sig, "return -v;", "return v['*'](-1);")
	expectReturn(t, sig, "return +v;", "return (v);")
	expectReturn(t, sig, "return (v + w) * s;", "return (v['+'](w))['*'](s);")
	expectReturn(t, sig, "v += w;", "v['+='](w);")
	expectReturn(t, sig, "v = w;", "v = w;")
	expectReturn(t, sig, "v++;", "v['+='](glm.vec3(1));")
	expectReturn(t, sig, "--v;", "v['-='](glm.vec3(1));")
}

func TestBuiltinNamespaces(t *testing.T) {
	sig := "float f(float x)"
	expectReturn(t, sig, "return sin(x) + length(vec2(x));", "return Math.sin(x) + glm.length(glm.vec2(x));")
	expectReturn(t, sig, "return sqrt(x);", "return glm.sqrt(x);")
	expectReturn(t, sig, "return smoothstep(0.0, 1.0, x);", "return smoothstep(0.0, 1.0, x);")
}

func TestMemberAndIndex(t *testing.T) {
	expectReturn(t, "float f(vec3 v, float a[2])", "return v.x + a[1];", "return v.x + a[1];")
}

func TestLiterals(t *testing.T) {
	expectReturn(t, "int f()", "return 017 + 0x1F + 7u + 0;", "return 0o17 + 0x1F + 7 + 0;")
	expectReturn(t, "float f()", "return 1.5f + 2.0lf + 3.0;", "return 1.5 + 2.0 + 3.0;")
	expectReturn(t, "bool f()", "return true;", "return true;")
}

func TestStatements(t *testing.T) {
	source := `float f(float x) {
    const float k = 2.0;
    float y = x * k, z;
    if (x > 0.0) {
        return y;
    } else if (x < 0.0) {
        return -y;
    }
    for (int i = 0; i < 3; i++) {
        if (y > 9.0) break;
        y += 1.0;
        continue;
    }
    while (y > 1.0) {
        y /= 2.0;
    }
    do {
        y -= 1.0;
    } while (y > 0.0);
    {
        z = y;
    }
    return z;
}`
	expectJS(t, source, `/*float*/ function f(/*float*/ x) {
    const k = 2.0;
    let y = x * k, z;
    if (x > 0.0) {
        return y;
    } else if (x < 0.0) {
        return -y;
    }
    for (let i = 0; i < 3; i++) {
        if (y > 9.0) {
            break;
        }
        y += 1.0;
        continue;
    }
    while (y > 1.0) {
        y /= 2.0;
    }
    do {
        y -= 1.0;
    } while (y > 0.0);
    {
        z = y;
    }
    return z;
}
`)
}

func TestLocalVectorTypes(t *testing.T) {
	expectJS(t, "vec2 f(float s) {\n    vec2 p = vec2(s);\n    return p * 2.0;\n}",
		"/*vec2*/ function f(/*float*/ s) {\n    let p = glm.vec2(s);\n    return p['*'](2.0);\n}\n")
}

func TestUnsupported(t *testing.T) {
	expectUnsupported(t, "void f() {\n    discard;\n}", "discard")
	expectUnsupported(t, "float a[2][2];", "array of arrays")
	expectUnsupported(t, "mat2 f(float s, mat2 m) {\n    return s - m;\n}", "float - mat2")
	expectUnsupported(t, "mat2 f(float s, mat2 m) {\n    return s / m;\n}", "float / mat2")
	expectUnsupported(t, "bvec2 f(bvec2 b) {\n    return !b;\n}", "unary ! on bvec2")
}

func TestUnsupportedPosition(t *testing.T) {
	source := "void f() {\n    discard;\n}"
	_, err := generate(t, source)
	var ue *diagnostic.UnsupportedConstructError
	if !errors.As(err, &ue) {
		t.Fatalf("expected an unsupported construct error, got %v", err)
	}
	if ue.Pos != strings.Index(source, "discard") {
		t.Errorf("expected position %d, got %d", strings.Index(source, "discard"), ue.Pos)
	}
}

func TestTypeErrors(t *testing.T) {
	_, err := generate(t, "float f(float x) {\n    return x + y;\n}")
	var te *diagnostic.TypeError
	if !errors.As(err, &te) {
		t.Fatalf("expected a type error, got %v", err)
	}
	if te.Message != `unresolved identifier "y"` {
		t.Errorf("unexpected message %q", te.Message)
	}
}

func TestStatementOrigins(t *testing.T) {
	source := "float k;\nfloat f(float x) {\n    for (int i = 0; i < 2; i++) {\n        x += 1.0;\n    }\n    return x;\n}"
	file, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := Generate(file, types.BuildScope(file), JavaScript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := prog.Body[1].(*js.Function)
	loop := fn.Body[0].(*js.For)
	tests := []struct {
		stmt js.Stmt
		text string
	}{
		{prog.Body[0], "float k"},
		{fn, "float f"},
		{loop, "for"},
		{loop.Init, "int i"},
		{loop.Body[0], "x +="},
		{fn.Body[1], "return"},
	}
	for _, tt := range tests {
		if want := strings.Index(source, tt.text); tt.stmt.Pos() != want {
			t.Errorf("%T: got offset %d, want %d", tt.stmt, tt.stmt.Pos(), want)
		}
	}
}
