// Package simplify implements local algebraic rewrites over the GLSL AST.
//
// The pass is pure and bottom-up: children are simplified first, then the
// rewrite rules are applied to the rebuilt node until none fires. Running
// the pass on its own output changes nothing.
//
// Rules:
//   - a*0, 0*a, 0/a become the zero of the product's type
//   - a*1, 1*a, a/1 become a, when a already has the product's type
//   - a+0, 0+a, a-0 become a under the same guard, and 0-a becomes -a
//   - a+a becomes 2.0f*a (2*a for integer types)
//   - redundant parentheses are dropped
//
// Zero and one are recognised structurally (see types.IsZero); nothing is
// evaluated. A rule that needs a type is skipped when inference fails.
package simplify

import (
	"github.com/tliron/commonlog"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/types"
)

var log = commonlog.GetLogger("glslkit.simplify")

// File simplifies every declaration of a file.
func File(file *ast.File) *ast.File {
	root := types.BuildScope(file)
	out := &ast.File{Decls: make([]ast.Decl, 0, len(file.Decls))}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			out.Decls = append(out.Decls, Function(d, root))
		case *ast.VarDecl:
			s := &simplifier{scope: root}
			out.Decls = append(out.Decls, s.varDecl(d))
		default:
			out.Decls = append(out.Decls, decl)
		}
	}
	return out
}

// Function simplifies a function body. scope is the root scope of the file
// the function belongs to.
func Function(fn *ast.FunctionDecl, scope *types.Scope) *ast.FunctionDecl {
	s := &simplifier{scope: scope.Subscope(fn)}
	out := *fn
	out.Body = s.stmts(fn.Body)
	if s.rewrites > 0 {
		log.Debugf("%s: %d rewrites", fn.Name, s.rewrites)
	}
	return &out
}

// Expr simplifies a single expression.
func Expr(expr ast.Expr, scope *types.Scope) ast.Expr {
	s := &simplifier{scope: scope}
	return s.expr(expr)
}

type simplifier struct {
	scope    *types.Scope
	rewrites int
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (s *simplifier) stmts(stmts []ast.Stmt) []ast.Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]ast.Stmt, len(stmts))
	for i, stmt := range stmts {
		out[i] = s.stmt(stmt)
	}
	return out
}

func (s *simplifier) stmt(stmt ast.Stmt) ast.Stmt {
	switch st := stmt.(type) {
	case *ast.DeclStmt:
		return &ast.DeclStmt{Decl: s.varDecl(st.Decl)}

	case *ast.ExprStmt:
		return &ast.ExprStmt{Loc: st.Loc, Expr: s.expr(st.Expr)}

	case *ast.ReturnStmt:
		return &ast.ReturnStmt{Loc: st.Loc, Value: s.optExpr(st.Value)}

	case *ast.IfStmt:
		return &ast.IfStmt{Loc: st.Loc, Cond: s.expr(st.Cond), Body: s.stmts(st.Body), Else: s.stmts(st.Else)}

	case *ast.WhileStmt:
		return &ast.WhileStmt{Loc: st.Loc, Cond: s.expr(st.Cond), Body: s.stmts(st.Body)}

	case *ast.DoWhileStmt:
		return &ast.DoWhileStmt{Loc: st.Loc, Body: s.stmts(st.Body), Cond: s.expr(st.Cond)}

	case *ast.ForStmt:
		var init ast.Stmt
		if st.Init != nil {
			init = s.stmt(st.Init)
		}
		return &ast.ForStmt{
			Loc:  st.Loc,
			Init: init,
			Cond: s.optExpr(st.Cond),
			Post: s.optExpr(st.Post),
			Body: s.stmts(st.Body),
		}

	case *ast.BlockStmt:
		return &ast.BlockStmt{Loc: st.Loc, Stmts: s.stmts(st.Stmts)}
	}
	// break, continue, discard
	return stmt
}

func (s *simplifier) varDecl(d *ast.VarDecl) *ast.VarDecl {
	out := *d
	out.Vars = make([]ast.Declarator, len(d.Vars))
	for i, v := range d.Vars {
		v.Init = s.optExpr(v.Init)
		out.Vars[i] = v
	}
	return &out
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (s *simplifier) optExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	return s.expr(e)
}

func (s *simplifier) exprs(list []ast.Expr) []ast.Expr {
	if list == nil {
		return nil
	}
	out := make([]ast.Expr, len(list))
	for i, e := range list {
		out[i] = s.expr(e)
	}
	return out
}

func (s *simplifier) expr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.ParenExpr:
		inner := s.expr(e.Expr)
		// (x), (f(x)), ((e))
		if ast.ExprPrecedence(inner) == ast.PrecPostfix {
			s.rewrites++
			return inner
		}
		return &ast.ParenExpr{Loc: e.Loc, Expr: inner}

	case *ast.CallExpr:
		return &ast.CallExpr{Loc: e.Loc, Func: s.expr(e.Func), Args: s.exprs(e.Args)}

	case *ast.IndexExpr:
		return &ast.IndexExpr{Loc: e.Loc, Base: s.expr(e.Base), Index: s.expr(e.Index)}

	case *ast.MemberExpr:
		return &ast.MemberExpr{Loc: e.Loc, Base: s.expr(e.Base), Member: e.Member}

	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Loc: e.Loc, Op: e.Op, Operand: s.expr(e.Operand)}

	case *ast.BinaryExpr:
		prec := e.Op.Precedence()
		left := s.unwrapOperand(s.expr(e.Left), prec)
		right := s.unwrapOperand(s.expr(e.Right), prec+1)
		return s.rewrite(&ast.BinaryExpr{Loc: e.Loc, Op: e.Op, Left: left, Right: right})

	case *ast.TernaryExpr:
		return &ast.TernaryExpr{Loc: e.Loc, Cond: s.expr(e.Cond), Then: s.expr(e.Then), Else: s.expr(e.Else)}

	case *ast.AssignExpr:
		return &ast.AssignExpr{Loc: e.Loc, Op: e.Op, Left: s.expr(e.Left), Right: s.expr(e.Right)}
	}
	// literals and identifiers
	return e
}

// unwrapOperand drops the parentheses around an operand whose content binds
// at least as tightly as prec.
func (s *simplifier) unwrapOperand(e ast.Expr, prec ast.Precedence) ast.Expr {
	paren, ok := e.(*ast.ParenExpr)
	if !ok || ast.ExprPrecedence(paren.Expr) < prec {
		return e
	}
	s.rewrites++
	return paren.Expr
}

// rewrite applies the algebraic rules to a binary node whose children are
// already simplified, repeating on each newly built node.
func (s *simplifier) rewrite(e *ast.BinaryExpr) ast.Expr {
	for {
		next := s.rewriteOnce(e)
		if next == ast.Expr(e) {
			return e
		}
		s.rewrites++
		bin, ok := next.(*ast.BinaryExpr)
		if !ok {
			return next
		}
		e = bin
	}
}

func (s *simplifier) rewriteOnce(e *ast.BinaryExpr) ast.Expr {
	t, err := types.TypeOf(e, s.scope)
	if err != nil {
		return e
	}
	l, r := e.Left, e.Right

	switch e.Op {
	case ast.BinOpMul:
		if types.IsZero(l) || types.IsZero(r) {
			if zero, ok := types.Zero(t, e.Loc); ok {
				return zero
			}
		}
		if types.IsOne(r) && s.hasType(l, t) {
			return l
		}
		if types.IsOne(l) && s.hasType(r, t) {
			return r
		}

	case ast.BinOpDiv:
		if types.IsZero(l) {
			if zero, ok := types.Zero(t, e.Loc); ok {
				return zero
			}
		}
		if types.IsOne(r) && s.hasType(l, t) {
			return l
		}

	case ast.BinOpAdd:
		if types.IsZero(r) && s.hasType(l, t) {
			return l
		}
		if types.IsZero(l) && s.hasType(r, t) {
			return r
		}
		if ast.EqualExpr(l, r) {
			if two, ok := double(t, e.Loc); ok {
				return ast.Binary(e.Loc, ast.BinOpMul, two, ast.WrapAbove(l, ast.PrecPrefix))
			}
		}

	case ast.BinOpSub:
		if types.IsZero(r) && s.hasType(l, t) {
			return l
		}
		if types.IsZero(l) && s.hasType(r, t) {
			return ast.Neg(e.Loc, r)
		}
	}
	return e
}

func (s *simplifier) hasType(e ast.Expr, t types.Type) bool {
	et, err := types.TypeOf(e, s.scope)
	return err == nil && et == t
}

// double returns the literal two used to rewrite a+a for a value of type t.
func double(t types.Type, loc ast.Loc) (ast.Expr, bool) {
	if t.IsArray() {
		return nil, false
	}
	switch {
	case t.IsIntegral():
		return ast.Int(loc, "2"), true
	case t.IsFloat(), t.IsFloatVector(), t.IsMatrix():
		return ast.Float(loc, "2.0f"), true
	}
	return nil, false
}
