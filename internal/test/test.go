// Package test provides testing utilities for the GLSL toolchain.
//
// This follows esbuild's testing patterns with helper functions
// for assertions, diffs, and common test patterns.
package test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/parser"
)

// AssertEqual checks if two values are equal and reports a test error if not.
func AssertEqual[T comparable](t *testing.T, actual, expected T) {
	t.Helper()
	if actual != expected {
		t.Errorf("\nexpected: %v\nactual:   %v", expected, actual)
	}
}

// AssertEqualWithDiff checks if two strings are equal and shows a diff if not.
func AssertEqualWithDiff(t *testing.T, actual, expected string) {
	t.Helper()
	if actual != expected {
		t.Errorf("\n%s", Diff(expected, actual))
	}
}

// Diff produces a unified line diff between two strings.
func Diff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

// IgnoreLocations makes cmp skip source positions.
var IgnoreLocations = cmpopts.IgnoreTypes(ast.Loc{})

// AssertAST compares two trees structurally, ignoring source positions.
func AssertAST(t *testing.T, actual, expected any) {
	t.Helper()
	if diff := cmp.Diff(expected, actual, IgnoreLocations); diff != "" {
		t.Errorf("tree mismatch (-expected +actual):\n%s", diff)
	}
}

// MustParse parses source or fails the test.
func MustParse(t *testing.T, source string) *ast.File {
	t.Helper()
	file, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return file
}

// MustParseExpr parses an expression or fails the test.
func MustParseExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	expr, err := parser.ParseExpression(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return expr
}

// MustParseFunction parses source and returns its only function.
func MustParseFunction(t *testing.T, source string) (*ast.File, *ast.FunctionDecl) {
	t.Helper()
	file := MustParse(t, source)
	fns := file.Functions()
	if len(fns) == 0 {
		t.Fatalf("no function in %q", source)
	}
	return file, fns[len(fns)-1]
}

// Suite provides a test context for related tests.
type Suite struct {
	t *testing.T
}

// NewSuite creates a new test suite.
func NewSuite(t *testing.T) *Suite {
	return &Suite{t: t}
}

// Run runs a subtest.
func (s *Suite) Run(name string, fn func(t *testing.T)) {
	s.t.Run(name, fn)
}
