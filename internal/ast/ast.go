// Package ast defines the Abstract Syntax Tree types for GLSL.
//
// The AST is designed to be:
// - Type-free: parsing never consults type information
// - Immutable: passes build new trees instead of rewriting nodes in place
// - Exhaustive: every pass switches over the concrete node types below
package ast

import "github.com/HugoDaniel/glslkit/internal/lexer"

// ----------------------------------------------------------------------------
// Source Location
// ----------------------------------------------------------------------------

// Loc represents a location in source code.
type Loc struct {
	Start int32 // Byte offset of start
}

// Offset returns the byte offset as an int.
func (l Loc) Offset() int {
	return int(l.Start)
}

// ----------------------------------------------------------------------------
// File
// ----------------------------------------------------------------------------

// File is a parsed translation unit: an ordered top-level declaration list.
type File struct {
	Decls []Decl
}

// Functions returns the function declarations of the file in source order.
func (f *File) Functions() []*FunctionDecl {
	var fns []*FunctionDecl
	for _, d := range f.Decls {
		if fn, ok := d.(*FunctionDecl); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

// Decl is the interface for top-level declarations.
type Decl interface {
	isDecl()
	Pos() Loc
}

// TypeSpec names a declared type, optionally with array dimensions.
// An unsized dimension is a nil entry.
type TypeSpec struct {
	Loc   Loc
	Name  string
	Array []Expr
}

// VarDecl declares one or more variables sharing a type and qualifier set.
//
//	const highp vec3 a = vec3(1.0), b;
type VarDecl struct {
	Loc        Loc
	Qualifiers []string
	Type       TypeSpec
	Vars       []Declarator
}

// Declarator is a single name within a VarDecl.
type Declarator struct {
	Loc   Loc
	Name  string
	Array []Expr // array dimensions after the name
	Init  Expr   // may be nil
}

// HasQualifier reports whether the declaration carries the qualifier.
func (d *VarDecl) HasQualifier(q string) bool {
	for _, have := range d.Qualifiers {
		if have == q {
			return true
		}
	}
	return false
}

// FunctionDecl represents a function definition.
type FunctionDecl struct {
	Loc        Loc
	Doc        []string // leading comment block, raw text
	Qualifiers []string // precision qualifiers of the return type
	ReturnType TypeSpec
	Name       string
	Params     []Param
	Body       []Stmt
}

// Param represents a function parameter.
type Param struct {
	Loc        Loc
	Qualifiers []string // in, out, inout, const, precision
	Type       TypeSpec
	Name       string
	Array      []Expr
}

// StructDecl represents a struct type declaration.
type StructDecl struct {
	Loc    Loc
	Name   string
	Fields []*VarDecl
}

func (*VarDecl) isDecl()      {}
func (*FunctionDecl) isDecl() {}
func (*StructDecl) isDecl()   {}

func (d *VarDecl) Pos() Loc      { return d.Loc }
func (d *FunctionDecl) Pos() Loc { return d.Loc }
func (d *StructDecl) Pos() Loc   { return d.Loc }

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// Stmt is the interface for all statements.
type Stmt interface {
	isStmt()
	Pos() Loc
}

// DeclStmt is a local variable declaration.
type DeclStmt struct {
	Decl *VarDecl
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	Loc  Loc
	Expr Expr
}

// ReturnStmt returns from a function. Value is nil for a bare return.
type ReturnStmt struct {
	Loc   Loc
	Value Expr
}

// BreakStmt is a break statement.
type BreakStmt struct {
	Loc Loc
}

// ContinueStmt is a continue statement.
type ContinueStmt struct {
	Loc Loc
}

// DiscardStmt is a fragment discard statement.
type DiscardStmt struct {
	Loc Loc
}

// IfStmt is an if statement. An else-if chain is an Else holding a single IfStmt.
type IfStmt struct {
	Loc  Loc
	Cond Expr
	Body []Stmt
	Else []Stmt // nil when there is no else branch
}

// WhileStmt is a while loop.
type WhileStmt struct {
	Loc  Loc
	Cond Expr
	Body []Stmt
}

// DoWhileStmt is a do-while loop.
type DoWhileStmt struct {
	Loc  Loc
	Body []Stmt
	Cond Expr
}

// ForStmt is a for loop. Init is a DeclStmt, an ExprStmt or nil.
type ForStmt struct {
	Loc  Loc
	Init Stmt
	Cond Expr // may be nil
	Post Expr // may be nil
	Body []Stmt
}

// BlockStmt is a nested braced statement list.
type BlockStmt struct {
	Loc   Loc
	Stmts []Stmt
}

func (*DeclStmt) isStmt()     {}
func (*ExprStmt) isStmt()     {}
func (*ReturnStmt) isStmt()   {}
func (*BreakStmt) isStmt()    {}
func (*ContinueStmt) isStmt() {}
func (*DiscardStmt) isStmt()  {}
func (*IfStmt) isStmt()       {}
func (*WhileStmt) isStmt()    {}
func (*DoWhileStmt) isStmt()  {}
func (*ForStmt) isStmt()      {}
func (*BlockStmt) isStmt()    {}

func (s *DeclStmt) Pos() Loc     { return s.Decl.Loc }
func (s *ExprStmt) Pos() Loc     { return s.Loc }
func (s *ReturnStmt) Pos() Loc   { return s.Loc }
func (s *BreakStmt) Pos() Loc    { return s.Loc }
func (s *ContinueStmt) Pos() Loc { return s.Loc }
func (s *DiscardStmt) Pos() Loc  { return s.Loc }
func (s *IfStmt) Pos() Loc       { return s.Loc }
func (s *WhileStmt) Pos() Loc    { return s.Loc }
func (s *DoWhileStmt) Pos() Loc  { return s.Loc }
func (s *ForStmt) Pos() Loc      { return s.Loc }
func (s *BlockStmt) Pos() Loc    { return s.Loc }

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// Expr is the interface for all expressions.
type Expr interface {
	isExpr()
	Pos() Loc
}

// LiteralExpr is a numeric or boolean literal. Value keeps the source text
// including any suffix.
type LiteralExpr struct {
	Loc   Loc
	Kind  lexer.TokenKind // TokIntLiteral, TokFloatLiteral, TokTrue, TokFalse
	Value string
}

// IdentExpr is a reference to a variable, function or type name.
type IdentExpr struct {
	Loc  Loc
	Name string
}

// CallExpr is an invocation suffix: Func(Args...).
type CallExpr struct {
	Loc  Loc
	Func Expr
	Args []Expr
}

// IndexExpr is a bracket-index suffix: Base[Index].
type IndexExpr struct {
	Loc   Loc
	Base  Expr
	Index Expr
}

// MemberExpr is a dot-attribute suffix: Base.Member.
type MemberExpr struct {
	Loc    Loc
	Base   Expr
	Member string
}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	Loc  Loc
	Expr Expr
}

// UnaryExpr is a prefix or postfix unary operation.
type UnaryExpr struct {
	Loc     Loc
	Op      UnaryOp
	Operand Expr
}

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Loc   Loc
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// TernaryExpr is a conditional expression: Cond ? Then : Else.
type TernaryExpr struct {
	Loc  Loc
	Cond Expr
	Then Expr
	Else Expr
}

// AssignExpr is a plain or compound assignment.
type AssignExpr struct {
	Loc   Loc
	Op    AssignOp
	Left  Expr
	Right Expr
}

func (*LiteralExpr) isExpr() {}
func (*IdentExpr) isExpr()   {}
func (*CallExpr) isExpr()    {}
func (*IndexExpr) isExpr()   {}
func (*MemberExpr) isExpr()  {}
func (*ParenExpr) isExpr()   {}
func (*UnaryExpr) isExpr()   {}
func (*BinaryExpr) isExpr()  {}
func (*TernaryExpr) isExpr() {}
func (*AssignExpr) isExpr()  {}

func (e *LiteralExpr) Pos() Loc { return e.Loc }
func (e *IdentExpr) Pos() Loc   { return e.Loc }
func (e *CallExpr) Pos() Loc    { return e.Loc }
func (e *IndexExpr) Pos() Loc   { return e.Loc }
func (e *MemberExpr) Pos() Loc  { return e.Loc }
func (e *ParenExpr) Pos() Loc   { return e.Loc }
func (e *UnaryExpr) Pos() Loc   { return e.Loc }
func (e *BinaryExpr) Pos() Loc  { return e.Loc }
func (e *TernaryExpr) Pos() Loc { return e.Loc }
func (e *AssignExpr) Pos() Loc  { return e.Loc }

// ----------------------------------------------------------------------------
// Operators
// ----------------------------------------------------------------------------

// BinaryOp represents binary operators.
type BinaryOp uint8

const (
	BinOpMul        BinaryOp = iota // *
	BinOpDiv                        // /
	BinOpMod                        // %
	BinOpAdd                        // +
	BinOpSub                        // -
	BinOpShl                        // <<
	BinOpShr                        // >>
	BinOpLt                         // <
	BinOpGt                         // >
	BinOpLe                         // <=
	BinOpGe                         // >=
	BinOpEq                         // ==
	BinOpNe                         // !=
	BinOpAnd                        // &
	BinOpXor                        // ^
	BinOpOr                         // |
	BinOpLogicalAnd                 // &&
	BinOpLogicalXor                 // ^^
	BinOpLogicalOr                  // ||
)

var binaryOpStrings = [...]string{
	BinOpMul:        "*",
	BinOpDiv:        "/",
	BinOpMod:        "%",
	BinOpAdd:        "+",
	BinOpSub:        "-",
	BinOpShl:        "<<",
	BinOpShr:        ">>",
	BinOpLt:         "<",
	BinOpGt:         ">",
	BinOpLe:         "<=",
	BinOpGe:         ">=",
	BinOpEq:         "==",
	BinOpNe:         "!=",
	BinOpAnd:        "&",
	BinOpXor:        "^",
	BinOpOr:         "|",
	BinOpLogicalAnd: "&&",
	BinOpLogicalXor: "^^",
	BinOpLogicalOr:  "||",
}

func (op BinaryOp) String() string {
	return binaryOpStrings[op]
}

// Precedence returns the binding strength of the operator.
func (op BinaryOp) Precedence() Precedence {
	switch op {
	case BinOpMul, BinOpDiv, BinOpMod:
		return PrecMultiplicative
	case BinOpAdd, BinOpSub:
		return PrecAdditive
	case BinOpShl, BinOpShr:
		return PrecShift
	case BinOpLt, BinOpGt, BinOpLe, BinOpGe:
		return PrecRelational
	case BinOpEq, BinOpNe:
		return PrecEquality
	case BinOpAnd:
		return PrecBitAnd
	case BinOpXor:
		return PrecBitXor
	case BinOpOr:
		return PrecBitOr
	case BinOpLogicalAnd:
		return PrecLogicalAnd
	case BinOpLogicalXor:
		return PrecLogicalXor
	default:
		return PrecLogicalOr
	}
}

// IsComparison reports whether the operator yields a boolean from a
// relational or equality test.
func (op BinaryOp) IsComparison() bool {
	return op >= BinOpLt && op <= BinOpNe
}

// IsLogical reports whether the operator is &&, ^^ or ||.
func (op BinaryOp) IsLogical() bool {
	return op >= BinOpLogicalAnd
}

// IsArithmetic reports whether the operator is one of + - * / %.
func (op BinaryOp) IsArithmetic() bool {
	return op <= BinOpSub
}

// UnaryOp represents unary operators.
type UnaryOp uint8

const (
	UnaryOpNeg     UnaryOp = iota // -x
	UnaryOpPlus                   // +x
	UnaryOpNot                    // !x
	UnaryOpBitNot                 // ~x
	UnaryOpPreInc                 // ++x
	UnaryOpPreDec                 // --x
	UnaryOpPostInc                // x++
	UnaryOpPostDec                // x--
)

var unaryOpStrings = [...]string{
	UnaryOpNeg:     "-",
	UnaryOpPlus:    "+",
	UnaryOpNot:     "!",
	UnaryOpBitNot:  "~",
	UnaryOpPreInc:  "++",
	UnaryOpPreDec:  "--",
	UnaryOpPostInc: "++",
	UnaryOpPostDec: "--",
}

func (op UnaryOp) String() string {
	return unaryOpStrings[op]
}

// IsPostfix reports whether the operator follows its operand.
func (op UnaryOp) IsPostfix() bool {
	return op == UnaryOpPostInc || op == UnaryOpPostDec
}

// IsIncDec reports whether the operator is an increment or decrement.
func (op UnaryOp) IsIncDec() bool {
	return op >= UnaryOpPreInc
}

// AssignOp represents assignment operators.
type AssignOp uint8

const (
	AssignOpAssign AssignOp = iota // =
	AssignOpAdd                    // +=
	AssignOpSub                    // -=
	AssignOpMul                    // *=
	AssignOpDiv                    // /=
	AssignOpMod                    // %=
	AssignOpAnd                    // &=
	AssignOpOr                     // |=
	AssignOpXor                    // ^=
)

var assignOpStrings = [...]string{
	AssignOpAssign: "=",
	AssignOpAdd:    "+=",
	AssignOpSub:    "-=",
	AssignOpMul:    "*=",
	AssignOpDiv:    "/=",
	AssignOpMod:    "%=",
	AssignOpAnd:    "&=",
	AssignOpOr:     "|=",
	AssignOpXor:    "^=",
}

func (op AssignOp) String() string {
	return assignOpStrings[op]
}

// ----------------------------------------------------------------------------
// Precedence
// ----------------------------------------------------------------------------

// Precedence orders expression forms from loosest to tightest binding.
type Precedence uint8

const (
	PrecLowest Precedence = iota
	PrecAssign
	PrecTernary
	PrecLogicalOr
	PrecLogicalXor
	PrecLogicalAnd
	PrecBitOr
	PrecBitXor
	PrecBitAnd
	PrecEquality
	PrecRelational
	PrecShift
	PrecAdditive
	PrecMultiplicative
	PrecPrefix
	PrecPostfix
)

// ExprPrecedence returns the binding strength of the expression's outermost form.
// Literals, identifiers, parentheses and postfix chains bind tightest.
func ExprPrecedence(e Expr) Precedence {
	switch e := e.(type) {
	case *AssignExpr:
		return PrecAssign
	case *TernaryExpr:
		return PrecTernary
	case *BinaryExpr:
		return e.Op.Precedence()
	case *UnaryExpr:
		if e.Op.IsPostfix() {
			return PrecPostfix
		}
		return PrecPrefix
	default:
		return PrecPostfix
	}
}
