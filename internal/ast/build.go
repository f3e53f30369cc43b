package ast

import "github.com/HugoDaniel/glslkit/internal/lexer"

// Node constructors used by the rewrite passes. Every constructor takes the
// location of the source node the new node stands in for.

// Ident returns an identifier reference.
func Ident(loc Loc, name string) *IdentExpr {
	return &IdentExpr{Loc: loc, Name: name}
}

// Float returns a float literal with the given source text.
func Float(loc Loc, text string) *LiteralExpr {
	return &LiteralExpr{Loc: loc, Kind: lexer.TokFloatLiteral, Value: text}
}

// Int returns an int literal with the given source text.
func Int(loc Loc, text string) *LiteralExpr {
	return &LiteralExpr{Loc: loc, Kind: lexer.TokIntLiteral, Value: text}
}

// Call returns an invocation of a named function or constructor.
func Call(loc Loc, name string, args ...Expr) *CallExpr {
	return &CallExpr{Loc: loc, Func: Ident(loc, name), Args: args}
}

// Binary returns a binary expression.
func Binary(loc Loc, op BinaryOp, left, right Expr) *BinaryExpr {
	return &BinaryExpr{Loc: loc, Op: op, Left: left, Right: right}
}

// Neg returns the negation of e, parenthesizing e when needed.
func Neg(loc Loc, e Expr) *UnaryExpr {
	return &UnaryExpr{Loc: loc, Op: UnaryOpNeg, Operand: WrapAbove(e, PrecPrefix)}
}

// WrapAbove parenthesizes e when it binds looser than prec.
func WrapAbove(e Expr, prec Precedence) Expr {
	if ExprPrecedence(e) < prec {
		return &ParenExpr{Loc: e.Pos(), Expr: e}
	}
	return e
}

// Operand places e as the left or right operand of op, parenthesizing it so
// that printing and re-parsing yields the same tree.
func Operand(e Expr, op BinaryOp, right bool) Expr {
	prec := op.Precedence()
	if right {
		return WrapAbove(e, prec+1)
	}
	return WrapAbove(e, prec)
}

// CalleeName returns the name at the head of a call, or "" when the callee
// is not a plain identifier.
func CalleeName(call *CallExpr) string {
	if id, ok := call.Func.(*IdentExpr); ok {
		return id.Name
	}
	return ""
}
