package types

import (
	"strconv"
	"strings"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/lexer"
)

// Zero returns the canonical zero value of t: 0.0f, 0, 0u, or a one-argument
// vector or matrix constructor of that literal. It reports false for types
// without a zero (bool, bool vectors, structs and arrays).
func Zero(t Type, loc ast.Loc) (ast.Expr, bool) {
	return constant(t, loc, "0")
}

// One returns the canonical one value of t. Matrices have no one value,
// since matN(1.0f) is the identity rather than all ones.
func One(t Type, loc ast.Loc) (ast.Expr, bool) {
	if t.IsMatrix() {
		return nil, false
	}
	return constant(t, loc, "1")
}

func constant(t Type, loc ast.Loc, digit string) (ast.Expr, bool) {
	if t.IsArray() {
		return nil, false
	}
	comp := t.Component()
	if t.IsMatrix() {
		comp = Float
	}
	var lit *ast.LiteralExpr
	switch comp.Name {
	case "float":
		lit = ast.Float(loc, digit+".0f")
	case "int":
		lit = ast.Int(loc, digit)
	case "uint":
		lit = ast.Int(loc, digit+"u")
	default:
		return nil, false
	}
	switch {
	case t.IsScalar():
		return lit, true
	case t.IsVector(), t.IsMatrix():
		return ast.Call(loc, t.Name, lit), true
	}
	return nil, false
}

// IsZero reports whether e is structurally a zero: a numeric literal equal
// to zero, or a vector or matrix constructor whose arguments are all zero
// literals. No evaluation takes place.
func IsZero(e ast.Expr) bool {
	return isConstant(e, 0, true)
}

// IsOne reports whether e is structurally a one: a numeric literal equal to
// one, or a vector constructor whose arguments are all one literals.
func IsOne(e ast.Expr) bool {
	return isConstant(e, 1, false)
}

func isConstant(e ast.Expr, want float64, allowMatrix bool) bool {
	switch e := e.(type) {
	case *ast.LiteralExpr:
		v, ok := LiteralValue(e)
		return ok && v == want

	case *ast.CallExpr:
		t := Named(ast.CalleeName(e))
		if !t.IsVector() && !(allowMatrix && t.IsMatrix()) {
			return false
		}
		if len(e.Args) == 0 {
			return false
		}
		for _, arg := range e.Args {
			lit, ok := arg.(*ast.LiteralExpr)
			if !ok {
				return false
			}
			if v, ok := LiteralValue(lit); !ok || v != want {
				return false
			}
		}
		return true
	}
	return false
}

// IsLiteral reports whether e is a numeric literal.
func IsLiteral(e ast.Expr) bool {
	lit, ok := e.(*ast.LiteralExpr)
	return ok && (lit.Kind == lexer.TokIntLiteral || lit.Kind == lexer.TokFloatLiteral)
}

// LiteralValue returns the numeric value of an int or float literal.
func LiteralValue(lit *ast.LiteralExpr) (float64, bool) {
	text := lit.Value
	switch lit.Kind {
	case lexer.TokFloatLiteral:
		text = strings.TrimRight(text, "fFlL")
		v, err := strconv.ParseFloat(text, 64)
		return v, err == nil

	case lexer.TokIntLiteral:
		text = strings.TrimRight(text, "uU")
		v, err := strconv.ParseInt(text, 0, 64)
		return float64(v), err == nil
	}
	return 0, false
}
