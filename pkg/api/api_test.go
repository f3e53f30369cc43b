package api

import (
	"strings"
	"testing"

	"github.com/HugoDaniel/glslkit/internal/snapshot"
)

func TestTransformRoundTrip(t *testing.T) {
	source := "float f(float x) { return x * 2.0; }"
	result := Transform(source, TransformOptions{})

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := "float f(float x) {\n    return x * 2.0;\n}"
	if strings.TrimSpace(result.Code) != want {
		t.Errorf("got:\n%s\nwant:\n%s", result.Code, want)
	}
	if result.InputSize != len(source) {
		t.Errorf("InputSize: got %d, want %d", result.InputSize, len(source))
	}
	if result.OutputSize != len(result.Code) {
		t.Errorf("OutputSize: got %d, want %d", result.OutputSize, len(result.Code))
	}
}

func TestSimplify(t *testing.T) {
	result := Simplify("float f(float a) { return a * 1.0 + 0.0; }")
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !strings.Contains(result.Code, "return a;") {
		t.Errorf("expected simplified return, got:\n%s", result.Code)
	}
}

func TestDifferentiate(t *testing.T) {
	result := Differentiate("float f(float x) { return x * x; }", "")
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	for _, want := range []string{
		"float f(float x) {",
		"float dx_f(float x) {",
		"return 2.0f * x;",
	} {
		if !strings.Contains(result.Code, want) {
			t.Errorf("expected %q in:\n%s", want, result.Code)
		}
	}
}

func TestDifferentiateUnsupported(t *testing.T) {
	source := "vec3 f(vec3 x) {\n    return cross(x, x);\n}"
	result := Differentiate(source, "x")
	if len(result.Errors) == 0 {
		t.Fatal("expected an error")
	}
	if result.Code != "" {
		t.Errorf("expected no output on error, got:\n%s", result.Code)
	}
	if !strings.HasPrefix(result.Errors[0], "2:") || !strings.Contains(result.Errors[0], "cross") {
		t.Errorf("unexpected error: %s", result.Errors[0])
	}
}

func TestToJS(t *testing.T) {
	result := ToJS("vec3 add(vec3 a, vec3 b) { return a + b; }\nfloat g(float s) { return s + 1.0; }")
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	for _, want := range []string{
		"function add(/*vec3*/ a, /*vec3*/ b)",
		"return a['+'](b);",
		"return s + 1.0;",
	} {
		if !strings.Contains(result.Code, want) {
			t.Errorf("expected %q in:\n%s", want, result.Code)
		}
	}
}

func TestMinify(t *testing.T) {
	result := Minify("uniform float scale;\nfloat f(float x) {\n    float y = x * scale;\n    return y * y;\n}")
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := "uniform float scale;float f(float b){float a=b*scale;return a*a;}"
	if result.Code != want {
		t.Errorf("got:\n%s\nwant:\n%s", result.Code, want)
	}
}

func TestTransformOptionErrors(t *testing.T) {
	if r := Transform("", TransformOptions{Passes: "optimize"}); len(r.Errors) == 0 {
		t.Error("expected error for unknown pass")
	}
	if r := Transform("", TransformOptions{Dialect: "hlsl"}); len(r.Errors) == 0 {
		t.Error("expected error for unknown dialect")
	}
	if r := Transform("", TransformOptions{Passes: "js,simplify"}); len(r.Errors) == 0 {
		t.Error("expected error when js is not last")
	}
}

func TestTransformSyntaxError(t *testing.T) {
	result := Transform("float f( {", TransformOptions{})
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "syntax error") {
		t.Errorf("unexpected error: %s", result.Errors[0])
	}
}

func TestSnapshot(t *testing.T) {
	data, errs := Snapshot("float f(float x) { return x; }", TransformOptions{Passes: "differentiate,js"})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	root, err := snapshot.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if root.Kind != "File" || len(root.Children) != 2 {
		t.Fatalf("expected a file with 2 declarations, got %s with %d", root.Kind, len(root.Children))
	}
	if root.Children[1].Value != "dx_f" {
		t.Errorf("expected dx_f, got %s", root.Children[1].Value)
	}
}

func TestReflect(t *testing.T) {
	result := Reflect("uniform float time;\nfloat f(float t) { return t; }")
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Variables) != 1 || result.Variables[0].Name != "time" {
		t.Errorf("variables: got %+v", result.Variables)
	}
	if len(result.Functions) != 1 || result.Functions[0].Derivative != "dt_f" {
		t.Errorf("functions: got %+v", result.Functions)
	}
}

func TestSourceMap(t *testing.T) {
	result := Transform("float f(float x) { return x; }", TransformOptions{
		Passes:     "js",
		SourceMap:  true,
		SourceName: "f.glsl",
	})
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	for _, want := range []string{`"version":3`, `"sources":["f.glsl"]`, `"names":["f"]`} {
		if !strings.Contains(result.SourceMap, want) {
			t.Errorf("expected %s in %s", want, result.SourceMap)
		}
	}
	if Transform("float a;", TransformOptions{SourceMap: true}).SourceMap != "" {
		t.Error("GLSL output has no source map")
	}
}
