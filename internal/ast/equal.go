package ast

// Structural equality over the AST. Source locations never take part in the
// comparison, so a re-parsed tree equals the tree it was printed from.

// EqualFile reports whether two files are structurally identical.
func EqualFile(a, b *File) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Decls) != len(b.Decls) {
		return false
	}
	for i := range a.Decls {
		if !EqualDecl(a.Decls[i], b.Decls[i]) {
			return false
		}
	}
	return true
}

// EqualDecl reports whether two declarations are structurally identical.
// Documentation comments are not compared.
func EqualDecl(a, b Decl) bool {
	switch a := a.(type) {
	case *VarDecl:
		b, ok := b.(*VarDecl)
		return ok && equalVarDecl(a, b)
	case *FunctionDecl:
		b, ok := b.(*FunctionDecl)
		if !ok || a.Name != b.Name || !equalStrings(a.Qualifiers, b.Qualifiers) ||
			!equalTypeSpec(a.ReturnType, b.ReturnType) || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			pa, pb := a.Params[i], b.Params[i]
			if pa.Name != pb.Name || !equalStrings(pa.Qualifiers, pb.Qualifiers) ||
				!equalTypeSpec(pa.Type, pb.Type) || !equalExprs(pa.Array, pb.Array) {
				return false
			}
		}
		return equalStmts(a.Body, b.Body)
	case *StructDecl:
		b, ok := b.(*StructDecl)
		if !ok || a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if !equalVarDecl(a.Fields[i], b.Fields[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func equalVarDecl(a, b *VarDecl) bool {
	if !equalStrings(a.Qualifiers, b.Qualifiers) || !equalTypeSpec(a.Type, b.Type) ||
		len(a.Vars) != len(b.Vars) {
		return false
	}
	for i := range a.Vars {
		va, vb := a.Vars[i], b.Vars[i]
		if va.Name != vb.Name || !equalExprs(va.Array, vb.Array) || !EqualExpr(va.Init, vb.Init) {
			return false
		}
	}
	return true
}

func equalTypeSpec(a, b TypeSpec) bool {
	return a.Name == b.Name && equalExprs(a.Array, b.Array)
}

// EqualStmt reports whether two statements are structurally identical.
func EqualStmt(a, b Stmt) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case *DeclStmt:
		b, ok := b.(*DeclStmt)
		return ok && equalVarDecl(a.Decl, b.Decl)
	case *ExprStmt:
		b, ok := b.(*ExprStmt)
		return ok && EqualExpr(a.Expr, b.Expr)
	case *ReturnStmt:
		b, ok := b.(*ReturnStmt)
		return ok && EqualExpr(a.Value, b.Value)
	case *BreakStmt:
		_, ok := b.(*BreakStmt)
		return ok
	case *ContinueStmt:
		_, ok := b.(*ContinueStmt)
		return ok
	case *DiscardStmt:
		_, ok := b.(*DiscardStmt)
		return ok
	case *IfStmt:
		b, ok := b.(*IfStmt)
		return ok && EqualExpr(a.Cond, b.Cond) && equalStmts(a.Body, b.Body) &&
			(a.Else == nil) == (b.Else == nil) && equalStmts(a.Else, b.Else)
	case *WhileStmt:
		b, ok := b.(*WhileStmt)
		return ok && EqualExpr(a.Cond, b.Cond) && equalStmts(a.Body, b.Body)
	case *DoWhileStmt:
		b, ok := b.(*DoWhileStmt)
		return ok && EqualExpr(a.Cond, b.Cond) && equalStmts(a.Body, b.Body)
	case *ForStmt:
		b, ok := b.(*ForStmt)
		return ok && EqualStmt(a.Init, b.Init) && EqualExpr(a.Cond, b.Cond) &&
			EqualExpr(a.Post, b.Post) && equalStmts(a.Body, b.Body)
	case *BlockStmt:
		b, ok := b.(*BlockStmt)
		return ok && equalStmts(a.Stmts, b.Stmts)
	}
	return false
}

func equalStmts(a, b []Stmt) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualStmt(a[i], b[i]) {
			return false
		}
	}
	return true
}

// EqualExpr reports whether two expressions are structurally identical.
// Two nil expressions are equal.
func EqualExpr(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case *LiteralExpr:
		b, ok := b.(*LiteralExpr)
		return ok && a.Kind == b.Kind && a.Value == b.Value
	case *IdentExpr:
		b, ok := b.(*IdentExpr)
		return ok && a.Name == b.Name
	case *CallExpr:
		b, ok := b.(*CallExpr)
		return ok && EqualExpr(a.Func, b.Func) && equalExprs(a.Args, b.Args)
	case *IndexExpr:
		b, ok := b.(*IndexExpr)
		return ok && EqualExpr(a.Base, b.Base) && EqualExpr(a.Index, b.Index)
	case *MemberExpr:
		b, ok := b.(*MemberExpr)
		return ok && a.Member == b.Member && EqualExpr(a.Base, b.Base)
	case *ParenExpr:
		b, ok := b.(*ParenExpr)
		return ok && EqualExpr(a.Expr, b.Expr)
	case *UnaryExpr:
		b, ok := b.(*UnaryExpr)
		return ok && a.Op == b.Op && EqualExpr(a.Operand, b.Operand)
	case *BinaryExpr:
		b, ok := b.(*BinaryExpr)
		return ok && a.Op == b.Op && EqualExpr(a.Left, b.Left) && EqualExpr(a.Right, b.Right)
	case *TernaryExpr:
		b, ok := b.(*TernaryExpr)
		return ok && EqualExpr(a.Cond, b.Cond) && EqualExpr(a.Then, b.Then) && EqualExpr(a.Else, b.Else)
	case *AssignExpr:
		b, ok := b.(*AssignExpr)
		return ok && a.Op == b.Op && EqualExpr(a.Left, b.Left) && EqualExpr(a.Right, b.Right)
	}
	return false
}

func equalExprs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualExpr(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
