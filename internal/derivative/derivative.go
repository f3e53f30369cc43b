// Package derivative implements forward-mode symbolic differentiation of
// GLSL functions.
//
// Differentiating f with respect to its parameter x yields a new function
// dx_f with the same parameters. Every local declaration of f is kept and
// followed by a declaration of its derivative, and every return value is
// replaced by its derivative.
//
// All vector arithmetic is assumed to be component-wise: the derivative of
// a vector with respect to a vector is the diagonal of its Jacobian. Every
// construct that could mix components (cross products, swizzles,
// constructors of non-literal arguments, matrix products) is rejected with a
// *diagnostic.UnsupportedConstructError instead of being guessed at.
package derivative

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/diagnostic"
	"github.com/HugoDaniel/glslkit/internal/types"
)

var log = commonlog.GetLogger("glslkit.derivative")

// Name returns the name of the derivative of name with respect to param.
func Name(param, name string) string {
	return "d" + param + "_" + name
}

// ResultType returns the type of df/dx for a value of type f and a variable
// of type x:
//
//	float, float -> float
//	float, vecN  -> vecN (gradient)
//	vecN,  float -> vecN (component-wise)
//	vecN,  vecN  -> vecN (component-wise, off-diagonal terms zero)
//
// Every other combination would need a Jacobian and reports false.
func ResultType(f, x types.Type) (types.Type, bool) {
	switch {
	case f.IsFloat() && x.IsFloat():
		return types.Float, true
	case f.IsFloat() && x.IsFloatVector():
		return x, true
	case f.IsFloatVector() && x.IsFloat():
		return f, true
	case f.IsFloatVector() && f == x:
		return f, true
	}
	return types.Type{}, false
}

// Function differentiates fn with respect to the variable named param.
// scope is the root scope of the file fn belongs to.
func Function(fn *ast.FunctionDecl, param string, scope *types.Scope) (*ast.FunctionDecl, error) {
	sub := scope.Subscope(fn)
	xType, ok := sub.Variable(param)
	if !ok {
		xType = types.Float
	}
	fType := types.TypeOfDecl(fn)
	retType, ok := ResultType(fType, xType)
	if !ok {
		return nil, diagnostic.Unsupported(fn.Loc.Offset(), "Jacobian",
			fmt.Sprintf("derivative of %s with respect to %s", fType, xType))
	}

	log.Debugf("differentiating %s with respect to %s", fn.Name, param)

	out := &ast.FunctionDecl{
		Loc:        fn.Loc,
		Qualifiers: fn.Qualifiers,
		ReturnType: ast.TypeSpec{Loc: fn.ReturnType.Loc, Name: retType.Name},
		Name:       Name(param, fn.Name),
		Params:     append([]ast.Param(nil), fn.Params...),
	}

	if !hasParam(fn, param) {
		zero, _ := types.Zero(retType, fn.Loc)
		out.Body = []ast.Stmt{&ast.ReturnStmt{Loc: fn.Loc, Value: zero}}
		return out, nil
	}

	d := &differ{x: param, xType: xType, scope: sub, independent: make(map[string]types.Type)}

	// Other parameters are independent of x.
	for _, p := range fn.Params {
		if p.Name == param {
			continue
		}
		decl, err := d.declareIndependent(p)
		if err != nil {
			return nil, err
		}
		out.Body = append(out.Body, decl)
	}

	for _, stmt := range fn.Body {
		switch st := stmt.(type) {
		case *ast.DeclStmt:
			decl, err := d.local(st.Decl)
			if err != nil {
				return nil, err
			}
			out.Body = append(out.Body, stmt, decl)

		case *ast.ReturnStmt:
			if st.Value == nil {
				return nil, diagnostic.Unsupported(st.Loc.Offset(), "return statement", "a value is required")
			}
			value, err := d.expr(st.Value)
			if err != nil {
				return nil, err
			}
			out.Body = append(out.Body, &ast.ReturnStmt{Loc: st.Loc, Value: value})

		default:
			return nil, diagnostic.Unsupported(stmt.Pos().Offset(), statementName(stmt),
				"only declarations and return statements can be differentiated")
		}
	}
	return out, nil
}

// Options configures File.
type Options struct {
	// Param names the parameter to differentiate with respect to. When
	// empty, each function's first parameter is used.
	Param string
}

// File follows every function that has parameters with its derivative.
//
// The chain rule through a call to a one-parameter function g refers to the
// derivative of g with respect to its own parameter. When that is not the
// parameter being differentiated, it is emitted as well, right after the
// derivative of g.
func File(file *ast.File, opts Options) (*ast.File, error) {
	root := types.BuildScope(file)
	param := func(fn *ast.FunctionDecl) string {
		if opts.Param != "" {
			return opts.Param
		}
		return fn.Params[0].Name
	}

	called := make(map[string]bool)
	for _, fn := range file.Functions() {
		if len(fn.Params) > 0 && hasParam(fn, param(fn)) {
			collectCalls(fn.Body, called)
		}
	}

	out := &ast.File{Decls: make([]ast.Decl, 0, len(file.Decls))}
	for _, decl := range file.Decls {
		out.Decls = append(out.Decls, decl)
		fn, ok := decl.(*ast.FunctionDecl)
		if !ok || len(fn.Params) == 0 {
			continue
		}
		dfn, err := Function(fn, param(fn), root)
		if err != nil {
			return nil, err
		}
		out.Decls = append(out.Decls, dfn)

		if own := fn.Params[0].Name; len(fn.Params) == 1 && called[fn.Name] && own != param(fn) {
			dfn, err := Function(fn, own, root)
			if err != nil {
				return nil, err
			}
			out.Decls = append(out.Decls, dfn)
		}
	}
	return out, nil
}

// collectCalls records the callee names of the declarations and return
// values of body, the only statements a derivative is taken through.
func collectCalls(body []ast.Stmt, called map[string]bool) {
	var visit func(e ast.Expr)
	visit = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.CallExpr:
			if name := ast.CalleeName(e); name != "" {
				called[name] = true
			}
			for _, arg := range e.Args {
				visit(arg)
			}
		case *ast.IndexExpr:
			visit(e.Base)
			visit(e.Index)
		case *ast.MemberExpr:
			visit(e.Base)
		case *ast.ParenExpr:
			visit(e.Expr)
		case *ast.UnaryExpr:
			visit(e.Operand)
		case *ast.BinaryExpr:
			visit(e.Left)
			visit(e.Right)
		case *ast.TernaryExpr:
			visit(e.Cond)
			visit(e.Then)
			visit(e.Else)
		case *ast.AssignExpr:
			visit(e.Left)
			visit(e.Right)
		}
	}
	for _, stmt := range body {
		switch st := stmt.(type) {
		case *ast.DeclStmt:
			for _, v := range st.Decl.Vars {
				if v.Init != nil {
					visit(v.Init)
				}
			}
		case *ast.ReturnStmt:
			if st.Value != nil {
				visit(st.Value)
			}
		}
	}
}

func hasParam(fn *ast.FunctionDecl, name string) bool {
	for _, p := range fn.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func statementName(stmt ast.Stmt) string {
	switch stmt.(type) {
	case *ast.ExprStmt:
		return "expression statement"
	case *ast.IfStmt:
		return "if statement"
	case *ast.WhileStmt:
		return "while loop"
	case *ast.DoWhileStmt:
		return "do-while loop"
	case *ast.ForStmt:
		return "for loop"
	case *ast.BlockStmt:
		return "block"
	case *ast.BreakStmt:
		return "break statement"
	case *ast.ContinueStmt:
		return "continue statement"
	case *ast.DiscardStmt:
		return "discard statement"
	}
	return "statement"
}

// differ differentiates expressions of one function body.
type differ struct {
	x     string
	xType types.Type
	scope *types.Scope

	// derivative types of the parameters other than x
	independent map[string]types.Type
}

// declareIndependent declares the zero derivative of a parameter other
// than x.
func (d *differ) declareIndependent(p ast.Param) (ast.Stmt, error) {
	pt := types.FromSpec(p.Type, p.Array)
	dt, ok := ResultType(pt, d.xType)
	if !ok {
		dt = pt
	}
	zero, ok := types.Zero(dt, p.Loc)
	if !ok {
		return nil, diagnostic.Unsupported(p.Loc.Offset(), "parameter "+p.Name,
			fmt.Sprintf("no derivative for type %s", pt))
	}
	d.independent[p.Name] = dt
	return &ast.DeclStmt{Decl: &ast.VarDecl{
		Loc:  p.Loc,
		Type: ast.TypeSpec{Loc: p.Type.Loc, Name: dt.Name},
		Vars: []ast.Declarator{{Loc: p.Loc, Name: Name(d.x, p.Name), Init: zero}},
	}}, nil
}

// local returns the declaration of the derivatives of a local declaration.
func (d *differ) local(decl *ast.VarDecl) (ast.Stmt, error) {
	if len(decl.Type.Array) > 0 {
		return nil, diagnostic.Unsupported(decl.Loc.Offset(), "array declaration", "")
	}
	t := types.FromSpec(decl.Type, nil)
	dt, ok := ResultType(t, d.xType)
	if !ok {
		return nil, diagnostic.Unsupported(decl.Loc.Offset(), "Jacobian",
			fmt.Sprintf("derivative of %s with respect to %s", t, d.xType))
	}
	out := &ast.VarDecl{
		Loc:  decl.Loc,
		Type: ast.TypeSpec{Loc: decl.Type.Loc, Name: dt.Name},
		Vars: make([]ast.Declarator, 0, len(decl.Vars)),
	}
	for _, v := range decl.Vars {
		if len(v.Array) > 0 {
			return nil, diagnostic.Unsupported(v.Loc.Offset(), "array declaration", "")
		}
		if v.Init == nil {
			return nil, diagnostic.Unsupported(v.Loc.Offset(), "declaration of "+v.Name, "an initializer is required")
		}
		init, err := d.expr(v.Init)
		if err != nil {
			return nil, err
		}
		out.Vars = append(out.Vars, ast.Declarator{Loc: v.Loc, Name: Name(d.x, v.Name), Init: init})
	}
	return &ast.DeclStmt{Decl: out}, nil
}
