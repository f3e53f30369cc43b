package derivative

import (
	"fmt"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/builtins"
	"github.com/HugoDaniel/glslkit/internal/diagnostic"
	"github.com/HugoDaniel/glslkit/internal/types"
)

// expr returns the derivative of e with respect to d.x.
func (d *differ) expr(e ast.Expr) (ast.Expr, error) {
	switch e := e.(type) {
	case *ast.LiteralExpr:
		t, err := types.TypeOf(e, d.scope)
		if err != nil {
			return nil, err
		}
		if zero, ok := types.Zero(t, e.Loc); ok {
			return zero, nil
		}
		return nil, diagnostic.Unsupported(e.Loc.Offset(), "literal "+e.Value, "no derivative for type "+t.String())

	case *ast.IdentExpr:
		return d.ident(e)

	case *ast.ParenExpr:
		inner, err := d.expr(e.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Loc: e.Loc, Expr: inner}, nil

	case *ast.UnaryExpr:
		switch e.Op {
		case ast.UnaryOpNeg:
			du, err := d.expr(e.Operand)
			if err != nil {
				return nil, err
			}
			return ast.Neg(e.Loc, du), nil
		case ast.UnaryOpPlus:
			return d.expr(e.Operand)
		}
		return nil, diagnostic.Unsupported(e.Loc.Offset(), "unary "+e.Op.String(), "no derivative is defined")

	case *ast.BinaryExpr:
		return d.binary(e)

	case *ast.CallExpr:
		return d.call(e)

	case *ast.MemberExpr, *ast.IndexExpr:
		return d.access(e)

	case *ast.TernaryExpr:
		return nil, diagnostic.Unsupported(e.Loc.Offset(), "ternary expression", "no derivative is defined")

	case *ast.AssignExpr:
		return nil, diagnostic.Unsupported(e.Loc.Offset(), "assignment", "no derivative is defined")
	}
	return nil, diagnostic.Unsupported(e.Pos().Offset(), fmt.Sprintf("%T", e), "")
}

func (d *differ) ident(e *ast.IdentExpr) (ast.Expr, error) {
	if e.Name == d.x {
		if one, ok := types.One(d.xType, e.Loc); ok {
			return one, nil
		}
		return nil, diagnostic.Unsupported(e.Loc.Offset(), e.Name, "no derivative for type "+d.xType.String())
	}

	// Parameters other than x are independent of it.
	if dt, ok := d.independent[e.Name]; ok {
		zero, _ := types.Zero(dt, e.Loc)
		return zero, nil
	}

	t, ok := d.scope.Variable(e.Name)
	if !ok {
		return nil, diagnostic.NewTypeError(e.Loc.Offset(), "unresolved identifier %q", e.Name)
	}
	if !d.scope.IsGlobal(e.Name) {
		return ast.Ident(e.Loc, Name(d.x, e.Name)), nil
	}

	// Globals do not depend on any parameter.
	dt, ok := ResultType(t, d.xType)
	if !ok {
		dt = t
	}
	if zero, ok := types.Zero(dt, e.Loc); ok {
		return zero, nil
	}
	return nil, diagnostic.Unsupported(e.Loc.Offset(), "global "+e.Name, "no derivative for type "+t.String())
}

// binary applies the sum, product and quotient rules.
func (d *differ) binary(e *ast.BinaryExpr) (ast.Expr, error) {
	switch e.Op {
	case ast.BinOpAdd, ast.BinOpSub, ast.BinOpMul, ast.BinOpDiv:
	default:
		return nil, diagnostic.Unsupported(e.Loc.Offset(), operatorName(e.Op), "no derivative is defined")
	}

	u, v := e.Left, e.Right
	du, err := d.expr(u)
	if err != nil {
		return nil, err
	}
	dv, err := d.expr(v)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.BinOpAdd, ast.BinOpSub:
		return ast.Binary(e.Loc, e.Op, ast.Operand(du, e.Op, false), ast.Operand(dv, e.Op, true)), nil
	}

	for _, operand := range []ast.Expr{u, v} {
		t, err := types.TypeOf(operand, d.scope)
		if err != nil {
			return nil, err
		}
		if t.IsMatrix() {
			return nil, diagnostic.Unsupported(e.Loc.Offset(), "matrix product", "matrix products are not component-wise")
		}
	}

	// v*du + u*dv
	vdu := product(e.Loc, v, du)
	udv := product(e.Loc, u, dv)
	if e.Op == ast.BinOpMul {
		return ast.Binary(e.Loc, ast.BinOpAdd, vdu, udv), nil
	}

	// (v*du - u*dv)/(v*v)
	num := &ast.ParenExpr{Loc: e.Loc, Expr: ast.Binary(e.Loc, ast.BinOpSub, vdu, ast.Operand(udv, ast.BinOpSub, true))}
	den := &ast.ParenExpr{Loc: e.Loc, Expr: product(e.Loc, v, v)}
	return ast.Binary(e.Loc, ast.BinOpDiv, num, den), nil
}

func product(loc ast.Loc, a, b ast.Expr) ast.Expr {
	return ast.Binary(loc, ast.BinOpMul, ast.Operand(a, ast.BinOpMul, false), ast.Operand(b, ast.BinOpMul, true))
}

func operatorName(op ast.BinaryOp) string {
	switch {
	case op.IsComparison():
		return "relational operator " + op.String()
	case op.IsLogical():
		return "logical operator " + op.String()
	case op == ast.BinOpMod:
		return "operator %"
	}
	return "bitwise operator " + op.String()
}

// ----------------------------------------------------------------------------
// Calls
// ----------------------------------------------------------------------------

func (d *differ) call(e *ast.CallExpr) (ast.Expr, error) {
	name := ast.CalleeName(e)
	if name == "" {
		return nil, diagnostic.Unsupported(e.Loc.Offset(), "call", "the callee is not a name")
	}

	// Constructors
	if t := types.Named(name); types.IsBuiltinName(name) {
		if t.IsFloatVector() && allLiterals(e.Args) {
			args := make([]ast.Expr, len(e.Args))
			for i, arg := range e.Args {
				args[i] = ast.Float(arg.Pos(), "0.0f")
			}
			return ast.Call(e.Loc, name, args...), nil
		}
		return nil, diagnostic.Unsupported(e.Loc.Offset(), name+" constructor", "only float vector constructors of literals are supported")
	}
	if _, ok := d.scope.Struct(name); ok {
		return nil, diagnostic.Unsupported(e.Loc.Offset(), name+" constructor", "user-defined data structures")
	}

	if len(e.Args) == 0 {
		return nil, diagnostic.Unsupported(e.Loc.Offset(), name+"()", "zero-argument call")
	}

	switch name {
	case "abs":
		return d.abs(e)
	case "min":
		return d.choose(e, ast.BinOpLt)
	case "max":
		return d.choose(e, ast.BinOpGt)
	case "sqrt":
		return d.sqrt(e)
	case "dot":
		return d.dot(e)
	}

	if g, ok := builtins.ChainRule[name]; ok {
		if len(e.Args) != 1 {
			return nil, diagnostic.Unsupported(e.Loc.Offset(), name, "expected one argument")
		}
		return d.chain(e, ast.Call(e.Loc, g, e.Args[0]))
	}

	if builtins.Lookup(name) != nil {
		return nil, diagnostic.Unsupported(e.Loc.Offset(), name, "non-component-wise or unsupported built-in function")
	}

	sig, ok := d.scope.Function(name)
	if !ok {
		return nil, diagnostic.NewTypeError(e.Loc.Offset(), "unknown function %q", name)
	}
	if len(e.Args) > 1 || len(sig.Params) != 1 {
		return nil, diagnostic.Unsupported(e.Loc.Offset(), name, "user-defined multi-parameter functions")
	}
	return d.chain(e, ast.Call(e.Loc, Name(sig.Params[0].Name, name), e.Args[0]))
}

// chain returns g'(u) * du for the single argument u of e.
func (d *differ) chain(e *ast.CallExpr, dg ast.Expr) (ast.Expr, error) {
	du, err := d.expr(e.Args[0])
	if err != nil {
		return nil, err
	}
	return ast.Binary(e.Loc, ast.BinOpMul, dg, ast.Operand(du, ast.BinOpMul, true)), nil
}

// abs: u > 0.0f ? du : -du
func (d *differ) abs(e *ast.CallExpr) (ast.Expr, error) {
	if err := d.requireFloatArgs(e, 1); err != nil {
		return nil, err
	}
	u := e.Args[0]
	du, err := d.expr(u)
	if err != nil {
		return nil, err
	}
	cond := ast.Binary(e.Loc, ast.BinOpGt, ast.Operand(u, ast.BinOpGt, false), ast.Float(e.Loc, "0.0f"))
	return &ast.TernaryExpr{Loc: e.Loc, Cond: cond, Then: du, Else: ast.Neg(e.Loc, du)}, nil
}

// min: u < v ? du : dv
// max: u > v ? du : dv
func (d *differ) choose(e *ast.CallExpr, op ast.BinaryOp) (ast.Expr, error) {
	if err := d.requireFloatArgs(e, 2); err != nil {
		return nil, err
	}
	u, v := e.Args[0], e.Args[1]
	du, err := d.expr(u)
	if err != nil {
		return nil, err
	}
	dv, err := d.expr(v)
	if err != nil {
		return nil, err
	}
	cond := ast.Binary(e.Loc, op, ast.Operand(u, op, false), ast.Operand(v, op, true))
	return &ast.TernaryExpr{Loc: e.Loc, Cond: cond, Then: du, Else: ast.WrapAbove(dv, ast.PrecAssign)}, nil
}

// sqrt: du/(2.0f*sqrt(u))
func (d *differ) sqrt(e *ast.CallExpr) (ast.Expr, error) {
	if len(e.Args) != 1 {
		return nil, diagnostic.Unsupported(e.Loc.Offset(), "sqrt", "expected one argument")
	}
	du, err := d.expr(e.Args[0])
	if err != nil {
		return nil, err
	}
	den := &ast.ParenExpr{Loc: e.Loc, Expr: ast.Binary(e.Loc, ast.BinOpMul,
		ast.Float(e.Loc, "2.0f"), ast.Call(e.Loc, "sqrt", e.Args[0]))}
	return ast.Binary(e.Loc, ast.BinOpDiv, ast.Operand(du, ast.BinOpDiv, false), den), nil
}

// dot: dot(u, dv) + dot(du, v)
func (d *differ) dot(e *ast.CallExpr) (ast.Expr, error) {
	if len(e.Args) != 2 {
		return nil, diagnostic.Unsupported(e.Loc.Offset(), "dot", "expected two arguments")
	}
	u, v := e.Args[0], e.Args[1]
	for _, arg := range e.Args {
		t, err := types.TypeOf(arg, d.scope)
		if err != nil {
			return nil, err
		}
		if !t.IsFloatVector() {
			return nil, diagnostic.Unsupported(e.Loc.Offset(), "dot", "arguments of type "+t.String())
		}
	}
	if !d.xType.IsFloat() {
		return nil, diagnostic.Unsupported(e.Loc.Offset(), "dot", "gradient with respect to "+d.xType.String())
	}
	du, err := d.expr(u)
	if err != nil {
		return nil, err
	}
	dv, err := d.expr(v)
	if err != nil {
		return nil, err
	}
	return ast.Binary(e.Loc, ast.BinOpAdd, ast.Call(e.Loc, "dot", u, dv), ast.Call(e.Loc, "dot", du, v)), nil
}

func (d *differ) requireFloatArgs(e *ast.CallExpr, n int) error {
	name := ast.CalleeName(e)
	if len(e.Args) != n {
		return diagnostic.Unsupported(e.Loc.Offset(), name, fmt.Sprintf("expected %d arguments", n))
	}
	for _, arg := range e.Args {
		t, err := types.TypeOf(arg, d.scope)
		if err != nil {
			return err
		}
		if !t.IsFloat() {
			return diagnostic.Unsupported(e.Loc.Offset(), "component-wise "+name, "arguments of type "+t.String())
		}
	}
	return nil
}

func allLiterals(args []ast.Expr) bool {
	for _, arg := range args {
		if !types.IsLiteral(arg) {
			return false
		}
	}
	return len(args) > 0
}

// ----------------------------------------------------------------------------
// Accessors
// ----------------------------------------------------------------------------

// access differentiates a single-component access v.c or v[i] of a vector.
func (d *differ) access(e ast.Expr) (ast.Expr, error) {
	var base ast.Expr
	var index int
	var reaccess func(ast.Expr) ast.Expr

	switch e := e.(type) {
	case *ast.MemberExpr:
		base = e.Base
		t, err := types.TypeOf(base, d.scope)
		if err != nil {
			return nil, err
		}
		if !t.IsVector() {
			return nil, diagnostic.Unsupported(e.Loc.Offset(), "attribute ."+e.Member, "user-defined data structures")
		}
		if len(e.Member) > 1 {
			return nil, diagnostic.Unsupported(e.Loc.Offset(), "swizzle ."+e.Member, "swizzles are not component-wise")
		}
		i, ok := types.ComponentIndex(e.Member)
		if !ok {
			return nil, diagnostic.NewTypeError(e.Loc.Offset(), "unknown attribute %q of %s", e.Member, t)
		}
		index = i
		reaccess = func(b ast.Expr) ast.Expr {
			return &ast.MemberExpr{Loc: e.Loc, Base: ast.WrapAbove(b, ast.PrecPostfix), Member: e.Member}
		}

	case *ast.IndexExpr:
		base = e.Base
		t, err := types.TypeOf(base, d.scope)
		if err != nil {
			return nil, err
		}
		switch {
		case t.IsArray():
			return nil, diagnostic.Unsupported(e.Loc.Offset(), "array index access", "")
		case t.IsMatrix():
			return nil, diagnostic.Unsupported(e.Loc.Offset(), "matrix column access", "")
		case !t.IsVector():
			return nil, diagnostic.NewTypeError(e.Loc.Offset(), "cannot index a value of type %s", t)
		}
		lit, ok := e.Index.(*ast.LiteralExpr)
		if !ok || !types.IsLiteral(lit) {
			return nil, diagnostic.Unsupported(e.Loc.Offset(), "variable vector component access", "")
		}
		v, _ := types.LiteralValue(lit)
		index = int(v)
		reaccess = func(b ast.Expr) ast.Expr {
			return &ast.IndexExpr{Loc: e.Loc, Base: ast.WrapAbove(b, ast.PrecPostfix), Index: e.Index}
		}
	}

	dbase, err := d.expr(base)
	if err != nil {
		return nil, err
	}

	switch {
	case d.xType.IsFloat():
		// v(u).c -> dv.c
		return reaccess(dbase), nil

	case d.xType.IsFloatVector():
		// v(U).c -> vecN(0.0f, .., dv.c, .., 0.0f), shaped like U
		n := d.xType.Size()
		if index >= n {
			return nil, diagnostic.Unsupported(e.Pos().Offset(), "component access", "component out of range for "+d.xType.String())
		}
		args := make([]ast.Expr, n)
		for i := range args {
			args[i] = ast.Float(e.Pos(), "0.0f")
		}
		args[index] = reaccess(dbase)
		return ast.Call(e.Pos(), d.xType.Name, args...), nil
	}
	return nil, diagnostic.Unsupported(e.Pos().Offset(), "component access", "derivatives with respect to "+d.xType.String())
}
