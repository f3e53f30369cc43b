// Package js defines the JavaScript syntax tree produced by the code
// generator, and renders it as source text.
//
// Only the subset of JavaScript the generator emits is modelled. Vector and
// matrix values are objects of the glm-js runtime, so operators on them
// appear as method calls such as a['+'](b).
package js

// Program is a sequence of top-level statements.
type Program struct {
	Body []Stmt
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// Stmt is the interface for all statements.
type Stmt interface {
	isStmt()
	Pos() int
	SetPos(offset int)
}

// Origin records the byte offset of the GLSL construct a statement was
// generated from. It is embedded in every statement.
type Origin struct {
	Loc int
}

// Pos returns the source offset.
func (o *Origin) Pos() int { return o.Loc }

// SetPos sets the source offset.
func (o *Origin) SetPos(offset int) { o.Loc = offset }

// Function is a function declaration. Comments holds raw leading comments;
// ReturnComment, when set, is printed as /*ReturnComment*/ before the
// function keyword.
type Function struct {
	Origin
	Comments      []string
	ReturnComment string
	Name          string
	Params        []Param
	Body          []Stmt
}

// Param is a function parameter with an optional /*Comment*/ prefix.
type Param struct {
	Comment string
	Name    string
}

// VarDecl is a let or const declaration.
type VarDecl struct {
	Origin
	Kind string // "let" or "const"
	Vars []Binding
}

// Binding is one name of a VarDecl.
type Binding struct {
	Name string
	Init Expr // may be nil
}

// Return is a return statement. Value may be nil.
type Return struct {
	Origin
	Value Expr
}

// If is an if statement. Else is nil when there is no else branch.
type If struct {
	Origin
	Cond Expr
	Body []Stmt
	Else []Stmt
}

// While is a while loop.
type While struct {
	Origin
	Cond Expr
	Body []Stmt
}

// DoWhile is a do-while loop.
type DoWhile struct {
	Origin
	Body []Stmt
	Cond Expr
}

// For is a for loop. Init is a *VarDecl, an *ExprStmt or nil.
type For struct {
	Origin
	Init Stmt
	Cond Expr
	Post Expr
	Body []Stmt
}

// Break is a break statement.
type Break struct {
	Origin
}

// Continue is a continue statement.
type Continue struct {
	Origin
}

// ExprStmt is an expression statement.
type ExprStmt struct {
	Origin
	Expr Expr
}

// Block is a nested statement list.
type Block struct {
	Origin
	Body []Stmt
}

func (*Function) isStmt() {}
func (*VarDecl) isStmt()  {}
func (*Return) isStmt()   {}
func (*If) isStmt()       {}
func (*While) isStmt()    {}
func (*DoWhile) isStmt()  {}
func (*For) isStmt()      {}
func (*Break) isStmt()    {}
func (*Continue) isStmt() {}
func (*ExprStmt) isStmt() {}
func (*Block) isStmt()    {}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// Expr is the interface for all expressions.
type Expr interface {
	isExpr()
}

// Ident is an identifier.
type Ident struct {
	Name string
}

// Literal is a numeric or boolean literal, printed verbatim.
type Literal struct {
	Value string
}

// String is a single-quoted string literal.
type String struct {
	Value string
}

// Call is a call expression.
type Call struct {
	Callee Expr
	Args   []Expr
}

// Member is a property access: Object.Property.
type Member struct {
	Object   Expr
	Property string
}

// Index is a computed property access: Object[Index].
type Index struct {
	Object Expr
	Index  Expr
}

// Paren is a parenthesized expression.
type Paren struct {
	Expr Expr
}

// Unary is a prefix operator other than ++ and --.
type Unary struct {
	Op      string
	Operand Expr
}

// Update is ++ or --, prefix or postfix.
type Update struct {
	Op      string
	Prefix  bool
	Operand Expr
}

// Binary is a binary operation.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// Conditional is cond ? then : else.
type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Assign is a plain or compound assignment.
type Assign struct {
	Op    string
	Left  Expr
	Right Expr
}

// Object is an object literal.
type Object struct {
	Props []Property
}

// Property is a key of an object literal.
type Property struct {
	Key   string
	Value Expr
}

// Array is an array literal.
type Array struct {
	Elems []Expr
}

func (*Ident) isExpr()       {}
func (*Literal) isExpr()     {}
func (*String) isExpr()      {}
func (*Call) isExpr()        {}
func (*Member) isExpr()      {}
func (*Index) isExpr()       {}
func (*Paren) isExpr()       {}
func (*Unary) isExpr()       {}
func (*Update) isExpr()      {}
func (*Binary) isExpr()      {}
func (*Conditional) isExpr() {}
func (*Assign) isExpr()      {}
func (*Object) isExpr()      {}
func (*Array) isExpr()       {}

// MethodCall returns recv[name](args...), the calling convention glm-js uses
// for operators.
func MethodCall(recv Expr, name string, args ...Expr) *Call {
	return &Call{Callee: &Index{Object: recv, Index: &String{Value: name}}, Args: args}
}

// ----------------------------------------------------------------------------
// Precedence
// ----------------------------------------------------------------------------

// Precedence orders expression forms from loosest to tightest binding.
type Precedence uint8

const (
	PrecLowest Precedence = iota
	PrecAssign
	PrecConditional
	PrecLogicalOr
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
	PrecMember
)

var binaryPrecedence = map[string]Precedence{
	"||": PrecLogicalOr,
	"&&": PrecLogicalAnd,
	"|":  PrecBitOr,
	"^":  PrecBitXor,
	"&":  PrecBitAnd,
	"==": PrecEquality, "!=": PrecEquality, "===": PrecEquality, "!==": PrecEquality,
	"<": PrecRelational, ">": PrecRelational, "<=": PrecRelational, ">=": PrecRelational,
	"<<": PrecShift, ">>": PrecShift,
	"+": PrecAdditive, "-": PrecAdditive,
	"*": PrecMultiplicative, "/": PrecMultiplicative, "%": PrecMultiplicative,
}

// ExprPrecedence returns the binding strength of the expression's outermost form.
func ExprPrecedence(e Expr) Precedence {
	switch e := e.(type) {
	case *Assign:
		return PrecAssign
	case *Conditional:
		return PrecConditional
	case *Binary:
		return binaryPrecedence[e.Op]
	case *Unary:
		return PrecPrefix
	case *Update:
		if e.Prefix {
			return PrecPrefix
		}
		return PrecPostfix
	}
	return PrecMember
}
