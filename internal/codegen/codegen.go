// Package codegen retargets a GLSL AST into a JavaScript AST.
//
// JavaScript has no operator overloading, so every operator whose operand
// is a vector or matrix becomes a method call on the glm-js value
// (a + b becomes a['+'](b)); scalar operators stay native. Every decision is
// made from the types of the source nodes, inferred in the scope of the
// enclosing function, before the node is rewritten.
package codegen

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/builtins"
	"github.com/HugoDaniel/glslkit/internal/diagnostic"
	"github.com/HugoDaniel/glslkit/internal/js"
	"github.com/HugoDaniel/glslkit/internal/lexer"
	"github.com/HugoDaniel/glslkit/internal/types"
)

var log = commonlog.GetLogger("glslkit.codegen")

// Dialect selects the target language.
type Dialect uint8

const (
	JavaScript Dialect = iota
)

func (d Dialect) String() string {
	switch d {
	case JavaScript:
		return "js"
	}
	return fmt.Sprintf("Dialect(%d)", uint8(d))
}

// ParseDialect returns the dialect with the given name.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "js", "javascript":
		return JavaScript, nil
	}
	return 0, errors.Errorf("unknown dialect %q", name)
}

// Generate converts a file to the target dialect. scope is the root scope
// of file.
func Generate(file *ast.File, scope *types.Scope, dialect Dialect) (*js.Program, error) {
	if dialect != JavaScript {
		return nil, errors.Errorf("unsupported dialect %s", dialect)
	}
	prog := &js.Program{}
	for _, decl := range file.Decls {
		var stmt js.Stmt
		var err error
		switch d := decl.(type) {
		case *ast.StructDecl:
			stmt = structFactory(d)
		case *ast.FunctionDecl:
			g := &generator{scope: scope.Subscope(d)}
			stmt, err = g.function(d)
		case *ast.VarDecl:
			g := &generator{scope: scope}
			stmt, err = g.varDecl(d)
		}
		if err != nil {
			return nil, err
		}
		stmt.SetPos(decl.Pos().Offset())
		prog.Body = append(prog.Body, stmt)
	}
	return prog, nil
}

// structFactory emits function S(a, b) { return { a: a, b: b }; }.
func structFactory(d *ast.StructDecl) *js.Function {
	fn := &js.Function{Name: d.Name}
	obj := &js.Object{}
	for _, field := range d.Fields {
		for _, v := range field.Vars {
			fn.Params = append(fn.Params, js.Param{
				Comment: types.FromSpec(field.Type, v.Array).String(),
				Name:    v.Name,
			})
			obj.Props = append(obj.Props, js.Property{Key: v.Name, Value: &js.Ident{Name: v.Name}})
		}
	}
	fn.Body = []js.Stmt{&js.Return{Value: obj}}
	return fn
}

type generator struct {
	scope *types.Scope
}

func (g *generator) function(d *ast.FunctionDecl) (*js.Function, error) {
	log.Debugf("generating %s", d.Name)
	fn := &js.Function{
		Comments:      d.Doc,
		ReturnComment: types.TypeOfDecl(d).String(),
		Name:          d.Name,
	}
	for _, p := range d.Params {
		comment := types.FromSpec(p.Type, p.Array).String()
		if len(p.Qualifiers) > 0 {
			comment = strings.Join(p.Qualifiers, " ") + " " + comment
		}
		fn.Params = append(fn.Params, js.Param{Comment: comment, Name: p.Name})
	}
	body, err := g.stmts(d.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (g *generator) stmts(stmts []ast.Stmt) ([]js.Stmt, error) {
	if stmts == nil {
		return nil, nil
	}
	out := make([]js.Stmt, 0, len(stmts))
	for _, stmt := range stmts {
		s, err := g.stmt(stmt)
		if err != nil {
			return nil, err
		}
		s.SetPos(stmt.Pos().Offset())
		out = append(out, s)
	}
	return out, nil
}

func (g *generator) stmt(stmt ast.Stmt) (js.Stmt, error) {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		return g.varDecl(s.Decl)

	case *ast.ExprStmt:
		e, err := g.expr(s.Expr)
		if err != nil {
			return nil, err
		}
		return &js.ExprStmt{Expr: e}, nil

	case *ast.ReturnStmt:
		if s.Value == nil {
			return &js.Return{}, nil
		}
		e, err := g.expr(s.Value)
		if err != nil {
			return nil, err
		}
		return &js.Return{Value: e}, nil

	case *ast.BreakStmt:
		return &js.Break{}, nil

	case *ast.ContinueStmt:
		return &js.Continue{}, nil

	case *ast.DiscardStmt:
		return nil, diagnostic.Unsupported(s.Loc.Offset(), "discard", "JavaScript has no fragment discard")

	case *ast.IfStmt:
		cond, err := g.expr(s.Cond)
		if err != nil {
			return nil, err
		}
		body, err := g.stmts(s.Body)
		if err != nil {
			return nil, err
		}
		els, err := g.stmts(s.Else)
		if err != nil {
			return nil, err
		}
		return &js.If{Cond: cond, Body: body, Else: els}, nil

	case *ast.WhileStmt:
		cond, err := g.expr(s.Cond)
		if err != nil {
			return nil, err
		}
		body, err := g.stmts(s.Body)
		if err != nil {
			return nil, err
		}
		return &js.While{Cond: cond, Body: body}, nil

	case *ast.DoWhileStmt:
		body, err := g.stmts(s.Body)
		if err != nil {
			return nil, err
		}
		cond, err := g.expr(s.Cond)
		if err != nil {
			return nil, err
		}
		return &js.DoWhile{Body: body, Cond: cond}, nil

	case *ast.ForStmt:
		out := &js.For{}
		if s.Init != nil {
			init, err := g.stmt(s.Init)
			if err != nil {
				return nil, err
			}
			init.SetPos(s.Init.Pos().Offset())
			out.Init = init
		}
		var err error
		if out.Cond, err = g.optExpr(s.Cond); err != nil {
			return nil, err
		}
		if out.Post, err = g.optExpr(s.Post); err != nil {
			return nil, err
		}
		if out.Body, err = g.stmts(s.Body); err != nil {
			return nil, err
		}
		return out, nil

	case *ast.BlockStmt:
		body, err := g.stmts(s.Stmts)
		if err != nil {
			return nil, err
		}
		return &js.Block{Body: body}, nil
	}
	return nil, diagnostic.Unsupported(stmt.Pos().Offset(), fmt.Sprintf("%T", stmt), "")
}

func (g *generator) varDecl(d *ast.VarDecl) (*js.VarDecl, error) {
	out := &js.VarDecl{Kind: "let"}
	if d.HasQualifier("const") {
		out.Kind = "const"
	}
	for _, v := range d.Vars {
		dims := len(d.Type.Array) + len(v.Array)
		if dims > 1 {
			return nil, diagnostic.Unsupported(v.Loc.Offset(), "array of arrays", "")
		}
		b := js.Binding{Name: v.Name}
		switch {
		case v.Init != nil:
			init, err := g.expr(v.Init)
			if err != nil {
				return nil, err
			}
			b.Init = init
		case dims == 1:
			b.Init = &js.Array{}
		}
		out.Vars = append(out.Vars, b)
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (g *generator) optExpr(e ast.Expr) (js.Expr, error) {
	if e == nil {
		return nil, nil
	}
	return g.expr(e)
}

func (g *generator) exprs(list []ast.Expr) ([]js.Expr, error) {
	out := make([]js.Expr, 0, len(list))
	for _, e := range list {
		x, err := g.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

func (g *generator) expr(e ast.Expr) (js.Expr, error) {
	switch e := e.(type) {
	case *ast.LiteralExpr:
		return &js.Literal{Value: literal(e)}, nil

	case *ast.IdentExpr:
		return &js.Ident{Name: e.Name}, nil

	case *ast.ParenExpr:
		inner, err := g.expr(e.Expr)
		if err != nil {
			return nil, err
		}
		return &js.Paren{Expr: inner}, nil

	case *ast.CallExpr:
		args, err := g.exprs(e.Args)
		if err != nil {
			return nil, err
		}
		var callee js.Expr
		if name := ast.CalleeName(e); name != "" {
			callee = &js.Ident{Name: name}
			if ns := builtins.NamespaceOf(name); ns != builtins.NamespaceNone {
				callee = &js.Member{Object: &js.Ident{Name: ns.String()}, Property: name}
			}
		} else if callee, err = g.expr(e.Func); err != nil {
			return nil, err
		}
		return &js.Call{Callee: callee, Args: args}, nil

	case *ast.IndexExpr:
		base, err := g.expr(e.Base)
		if err != nil {
			return nil, err
		}
		index, err := g.expr(e.Index)
		if err != nil {
			return nil, err
		}
		return &js.Index{Object: base, Index: index}, nil

	case *ast.MemberExpr:
		base, err := g.expr(e.Base)
		if err != nil {
			return nil, err
		}
		return &js.Member{Object: base, Property: e.Member}, nil

	case *ast.UnaryExpr:
		return g.unary(e)

	case *ast.BinaryExpr:
		return g.binary(e)

	case *ast.TernaryExpr:
		cond, err := g.expr(e.Cond)
		if err != nil {
			return nil, err
		}
		then, err := g.expr(e.Then)
		if err != nil {
			return nil, err
		}
		els, err := g.expr(e.Else)
		if err != nil {
			return nil, err
		}
		return &js.Conditional{Cond: cond, Then: then, Else: els}, nil

	case *ast.AssignExpr:
		return g.assign(e)
	}
	return nil, diagnostic.Unsupported(e.Pos().Offset(), fmt.Sprintf("%T", e), "")
}

func isGLM(t types.Type) bool {
	return t.IsVector() || t.IsMatrix()
}

// splat returns glm.T(value), a vector or matrix filled from a scalar.
func splat(t types.Type, value js.Expr) js.Expr {
	return &js.Call{
		Callee: &js.Member{Object: &js.Ident{Name: "glm"}, Property: t.Name},
		Args:   []js.Expr{value},
	}
}

func (g *generator) unary(e *ast.UnaryExpr) (js.Expr, error) {
	t, err := types.TypeOf(e.Operand, g.scope)
	if err != nil {
		return nil, err
	}
	operand, err := g.expr(e.Operand)
	if err != nil {
		return nil, err
	}

	if !isGLM(t) {
		if e.Op.IsIncDec() {
			return &js.Update{Op: e.Op.String(), Prefix: !e.Op.IsPostfix(), Operand: operand}, nil
		}
		return &js.Unary{Op: e.Op.String(), Operand: operand}, nil
	}

	switch e.Op {
	case ast.UnaryOpNeg:
		return js.MethodCall(operand, "*", &js.Literal{Value: "-1"}), nil
	case ast.UnaryOpPlus:
		return &js.Paren{Expr: operand}, nil
	case ast.UnaryOpPreInc, ast.UnaryOpPostInc:
		return js.MethodCall(operand, "+=", splat(t, &js.Literal{Value: "1"})), nil
	case ast.UnaryOpPreDec, ast.UnaryOpPostDec:
		return js.MethodCall(operand, "-=", splat(t, &js.Literal{Value: "1"})), nil
	}
	return nil, diagnostic.Unsupported(e.Loc.Offset(), "unary "+e.Op.String()+" on "+t.String(),
		"glm-js has no such operator")
}

func (g *generator) binary(e *ast.BinaryExpr) (js.Expr, error) {
	lt, err := types.TypeOf(e.Left, g.scope)
	if err != nil {
		return nil, err
	}
	rt, err := types.TypeOf(e.Right, g.scope)
	if err != nil {
		return nil, err
	}
	left, err := g.expr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.expr(e.Right)
	if err != nil {
		return nil, err
	}
	op := e.Op.String()

	switch {
	case isGLM(lt):
		return js.MethodCall(left, op, right), nil

	case isGLM(rt):
		switch e.Op {
		case ast.BinOpAdd, ast.BinOpMul:
			return js.MethodCall(right, op, left), nil
		case ast.BinOpSub, ast.BinOpDiv:
			if rt.IsVector() {
				return js.MethodCall(splat(rt, left), op, right), nil
			}
		}
		return nil, diagnostic.Unsupported(e.Loc.Offset(),
			fmt.Sprintf("%s %s %s", lt, op, rt), "operand order cannot be emulated with glm-js")
	}

	if e.Op == ast.BinOpLogicalXor {
		op = "!="
	}
	return &js.Binary{Op: op, Left: left, Right: right}, nil
}

func (g *generator) assign(e *ast.AssignExpr) (js.Expr, error) {
	lt, err := types.TypeOf(e.Left, g.scope)
	if err != nil {
		return nil, err
	}
	left, err := g.expr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.expr(e.Right)
	if err != nil {
		return nil, err
	}
	if isGLM(lt) && e.Op != ast.AssignOpAssign {
		return js.MethodCall(left, e.Op.String(), right), nil
	}
	return &js.Assign{Op: e.Op.String(), Left: left, Right: right}, nil
}

// literal converts GLSL literal text: the f, lf and u suffixes are dropped
// and octal gets the 0o prefix.
func literal(e *ast.LiteralExpr) string {
	v := e.Value
	switch e.Kind {
	case lexer.TokFloatLiteral:
		v = strings.TrimRight(v, "fFlL")
	case lexer.TokIntLiteral:
		v = strings.TrimRight(v, "uU")
		if len(v) > 1 && v[0] == '0' && v[1] != 'x' && v[1] != 'X' {
			v = "0o" + v[1:]
		}
	}
	return v
}
