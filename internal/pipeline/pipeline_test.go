package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/HugoDaniel/glslkit/internal/codegen"
	"github.com/HugoDaniel/glslkit/internal/diagnostic"
	"github.com/HugoDaniel/glslkit/internal/sourcemap"
	"github.com/HugoDaniel/glslkit/internal/test"
)

func run(t *testing.T, source string, passes ...Pass) Result {
	t.Helper()
	return Run(source, Options{Passes: passes, Dialect: codegen.JavaScript})
}

func expectOutput(t *testing.T, source, expected string, passes ...Pass) {
	t.Helper()
	result := run(t, source, passes...)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	test.AssertEqualWithDiff(t, result.Code, expected)
}

func TestParsePasses(t *testing.T) {
	passes, err := ParsePasses(" differentiate, simplify ,js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	test.AssertAST(t, passes, []Pass{Differentiate, Simplify, JS})

	if passes, err := ParsePasses(""); err != nil || len(passes) != 0 {
		t.Errorf("empty list: got %v, %v", passes, err)
	}
	if passes, err := ParsePasses("simplify,,simplify"); err != nil || len(passes) != 2 {
		t.Errorf("repeated pass: got %v, %v", passes, err)
	}
	if _, err := ParsePasses("simplify,optimize"); err == nil || err.Error() != `unknown pass "optimize"` {
		t.Errorf("expected an unknown pass error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := [][]Pass{
		nil,
		{JS},
		{Simplify, JS},
		{Differentiate, Simplify, JS},
	}
	for _, passes := range valid {
		if err := (Options{Passes: passes}).Validate(); err != nil {
			t.Errorf("%v: unexpected error: %v", passes, err)
		}
	}
	if err := (Options{Passes: []Pass{JS, Simplify}}).Validate(); err == nil {
		t.Error("expected an error when js is not last")
	}
}

func TestRerender(t *testing.T) {
	expectOutput(t, "float f(float x){return x*2.0;}", "float f(float x) {\n    return x * 2.0;\n}\n")
}

func TestMinify(t *testing.T) {
	result := Run("float f(float x) {\n    return x * 2.0;\n}", Options{MinifyWhitespace: true})
	test.AssertEqual(t, result.Code, "float f(float x){return x*2.0;}")
}

func TestMinifyIdentifiers(t *testing.T) {
	source := "uniform float k;\nfloat f(float x, float y) {\n    return x * k + y;\n}"
	result := Run(source, Options{MinifyWhitespace: true, MinifyIdentifiers: true})
	test.AssertEqual(t, result.Code, "uniform float k;float f(float a,float b){return a*k+b;}")

	result = Run(source, Options{MinifyWhitespace: true, MinifyIdentifiers: true, KeepNames: []string{"y"}})
	test.AssertEqual(t, result.Code, "uniform float k;float f(float a,float y){return a*k+y;}")

	// The tree kept for snapshots holds the original names.
	test.AssertEqual(t, result.File.Functions()[0].Params[0].Name, "x")
}

func TestSimplify(t *testing.T) {
	expectOutput(t, "float f(float a) {\n    return a * 1.0 + 0.0;\n}",
		"float f(float a) {\n    return a;\n}\n", Simplify)
}

func TestDifferentiateThenSimplify(t *testing.T) {
	expectOutput(t, "float f(float x) {\n    return x * x;\n}",
		"float f(float x) {\n    return x * x;\n}\n\nfloat dx_f(float x) {\n    return 2.0f * x;\n}\n",
		Differentiate, Simplify)
}

func TestJS(t *testing.T) {
	expectOutput(t, "vec3 f(vec3 a, float s) {\n    return a * s;\n}",
		"/*vec3*/ function f(/*vec3*/ a, /*float*/ s) {\n    return a['*'](s);\n}\n", JS)
}

// The js pass sees the tree the earlier passes produced.
func TestJSAfterDifferentiate(t *testing.T) {
	result := run(t, "float f(float x) {\n    return x * x;\n}", Differentiate, Simplify, JS)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !strings.Contains(result.Code, "/*float*/ function dx_f(/*float*/ x) {\n    return 2.0 * x;\n}") {
		t.Errorf("unexpected output:\n%s", result.Code)
	}
	if result.File == nil || len(result.File.Functions()) != 2 {
		t.Error("expected the GLSL tree of the last GLSL pass")
	}
}

func TestStats(t *testing.T) {
	source := "float f(float x) {\n    return x;\n}\nfloat g(float y) {\n    return y;\n}"
	result := run(t, source, Differentiate)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	test.AssertEqual(t, result.Stats.InputSize, len(source))
	test.AssertEqual(t, result.Stats.OutputSize, len(result.Code))
	test.AssertEqual(t, result.Stats.Functions, 4)
}

func TestSyntaxError(t *testing.T) {
	result := run(t, "float f(float x) {\n    return x +;\n}", Simplify)
	if result.Code != "" || result.File != nil {
		t.Error("expected no output on failure")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	e := result.Errors[0]
	if e.Line != 2 || e.Column != 15 || !strings.HasPrefix(e.Message, "syntax error: ") {
		t.Errorf("unexpected error %+v", e)
	}
}

func TestPassErrorsKeepPosition(t *testing.T) {
	source := "vec3 f(vec3 x) {\n    return cross(x, x);\n}"
	result := run(t, source, Differentiate)
	if result.Err == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(result.Err.Error(), "differentiate: ") {
		t.Errorf("expected the pass name in %q", result.Err)
	}
	var ue *diagnostic.UnsupportedConstructError
	if !errors.As(result.Err, &ue) || !strings.Contains(ue.Construct, "cross") {
		t.Errorf("expected an unsupported cross, got %v", result.Err)
	}
	e := result.Errors[0]
	if e.Line != 2 || e.Column != 12 {
		t.Errorf("expected 2:12, got %d:%d", e.Line, e.Column)
	}
}

func TestInvalidPassOrder(t *testing.T) {
	result := run(t, "float a;", JS, Simplify)
	if len(result.Errors) != 1 || result.Errors[0].Message != "the js pass must be the last pass" {
		t.Errorf("unexpected errors %+v", result.Errors)
	}
}

func TestUnknownPass(t *testing.T) {
	result := run(t, "float a;", Pass("optimize"))
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, `unknown pass "optimize"`) {
		t.Errorf("unexpected errors %+v", result.Errors)
	}
	// Pass errors carry the stack of where they were raised.
	if trace := fmt.Sprintf("%+v", result.Err); !strings.Contains(trace, "pipeline.(*Pipeline).Run") {
		t.Errorf("expected a stack trace, got:\n%s", trace)
	}
}

func TestCodegenErrors(t *testing.T) {
	result := run(t, "void f() {\n    discard;\n}", JS)
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "discard") {
		t.Errorf("unexpected errors %+v", result.Errors)
	}
}

func TestSourceMap(t *testing.T) {
	source := "float f(float x) {\n    return x;\n}"
	result := Run(source, Options{Passes: []Pass{JS}, SourceMap: true, SourceName: "a.glsl"})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	m := result.SourceMap
	if m == nil {
		t.Fatal("expected a source map")
	}
	test.AssertAST(t, m.Sources, []string{"a.glsl"})
	test.AssertAST(t, m.Names, []string{"f"})
	segments, err := sourcemap.Decode(m.Mappings)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	test.AssertAST(t, segments, []sourcemap.Segment{
		{GenLine: 0, GenCol: 0, SrcLine: 0, SrcCol: 0, Name: 0},
		{GenLine: 1, GenCol: 4, SrcLine: 1, SrcCol: 4, Name: -1},
	})
}

func TestNoSourceMapForGLSL(t *testing.T) {
	result := Run("float a;", Options{Passes: []Pass{Simplify}, SourceMap: true})
	if result.SourceMap != nil {
		t.Error("GLSL output has no source map")
	}
}
