// Package printer outputs GLSL code from an AST.
//
// The printer can operate in two modes:
// - Pretty: Human-readable output with 4-space indentation
// - Minified: Minimal whitespace output
//
// Either mode re-parses to the tree it was printed from. Parentheses that
// the tree does not hold explicitly are added only where a hand-built tree
// would otherwise print with a different meaning.
package printer

import (
	"strings"

	"github.com/HugoDaniel/glslkit/internal/ast"
)

// Options controls printer output.
type Options struct {
	// MinifyWhitespace removes unnecessary whitespace, newlines and
	// documentation comments
	MinifyWhitespace bool
}

// Printer outputs GLSL code.
type Printer struct {
	options Options

	buf    strings.Builder
	indent int
}

// New creates a new printer.
func New(options Options) *Printer {
	return &Printer{options: options}
}

// Print renders a file with default options.
func Print(file *ast.File) string {
	return New(Options{}).Print(file)
}

// PrintExpr renders a single expression with default options.
func PrintExpr(expr ast.Expr) string {
	p := New(Options{})
	p.printExpr(expr, ast.PrecLowest)
	return p.buf.String()
}

// Print outputs the file as a string.
func (p *Printer) Print(file *ast.File) string {
	p.buf.Reset()
	p.printFile(file)
	return p.buf.String()
}

// PrintDecl outputs a single declaration.
func (p *Printer) PrintDecl(d ast.Decl) string {
	p.buf.Reset()
	p.printDecl(d)
	return p.buf.String()
}

// ----------------------------------------------------------------------------
// Output Helpers
// ----------------------------------------------------------------------------

// print writes s, inserting a space when s would otherwise fuse with the
// previous token.
func (p *Printer) print(s string) {
	if s == "" {
		return
	}
	if p.buf.Len() > 0 {
		str := p.buf.String()
		last := str[len(str)-1]
		first := s[0]
		if (isWordByte(last) && isWordByte(first)) ||
			((last == '+' || last == '-') && first == last) ||
			(last == '/' && (first == '/' || first == '*')) {
			p.buf.WriteByte(' ')
		}
	}
	p.buf.WriteString(s)
}

func (p *Printer) printSpace() {
	if !p.options.MinifyWhitespace {
		p.buf.WriteByte(' ')
	}
}

func (p *Printer) printNewline() {
	if p.options.MinifyWhitespace {
		return
	}
	p.buf.WriteByte('\n')
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

func (p *Printer) printSemicolon() {
	p.print(";")
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func (p *Printer) printFile(file *ast.File) {
	for i, decl := range file.Decls {
		if i > 0 {
			p.printNewline()
			if isBlockDecl(decl) || isBlockDecl(file.Decls[i-1]) {
				p.printNewline()
			}
		}
		p.printDecl(decl)
	}
	if len(file.Decls) > 0 && !p.options.MinifyWhitespace {
		p.buf.WriteByte('\n')
	}
}

func isBlockDecl(d ast.Decl) bool {
	_, isVar := d.(*ast.VarDecl)
	return !isVar
}

func (p *Printer) printDecl(d ast.Decl) {
	switch d := d.(type) {
	case *ast.VarDecl:
		p.printVarDecl(d)
		p.printSemicolon()

	case *ast.StructDecl:
		p.print("struct")
		p.print(d.Name)
		p.printSpace()
		p.print("{")
		p.indent++
		for _, field := range d.Fields {
			p.printNewline()
			p.printVarDecl(field)
			p.printSemicolon()
		}
		p.indent--
		p.printNewline()
		p.print("};")

	case *ast.FunctionDecl:
		if !p.options.MinifyWhitespace {
			for _, doc := range d.Doc {
				p.buf.WriteString(doc)
				p.printNewline()
			}
		}
		for _, q := range d.Qualifiers {
			p.print(q)
		}
		p.printTypeSpec(d.ReturnType)
		p.print(d.Name)
		p.print("(")
		for i, param := range d.Params {
			if i > 0 {
				p.print(",")
				p.printSpace()
			}
			for _, q := range param.Qualifiers {
				p.print(q)
			}
			p.printTypeSpec(param.Type)
			p.print(param.Name)
			p.printArrayDims(param.Array)
		}
		p.print(")")
		p.printSpace()
		p.printBlock(d.Body)
	}
}

// printVarDecl prints a declaration without its semicolon.
func (p *Printer) printVarDecl(d *ast.VarDecl) {
	for _, q := range d.Qualifiers {
		p.print(q)
	}
	p.printTypeSpec(d.Type)
	for i, v := range d.Vars {
		if i > 0 {
			p.print(",")
			p.printSpace()
		}
		p.print(v.Name)
		p.printArrayDims(v.Array)
		if v.Init != nil {
			p.printSpace()
			p.print("=")
			p.printSpace()
			p.printExpr(v.Init, ast.PrecAssign)
		}
	}
}

func (p *Printer) printTypeSpec(t ast.TypeSpec) {
	p.print(t.Name)
	p.printArrayDims(t.Array)
	if len(t.Array) > 0 {
		p.printSpace()
	}
}

func (p *Printer) printArrayDims(dims []ast.Expr) {
	for _, dim := range dims {
		p.print("[")
		if dim != nil {
			p.printExpr(dim, ast.PrecLowest)
		}
		p.print("]")
	}
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// printBlock prints a braced statement list; the cursor is left after "}".
func (p *Printer) printBlock(stmts []ast.Stmt) {
	p.print("{")
	p.indent++
	for _, stmt := range stmts {
		p.printNewline()
		p.printStmt(stmt)
	}
	p.indent--
	if len(stmts) > 0 {
		p.printNewline()
	}
	p.print("}")
}

func (p *Printer) printStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.DeclStmt:
		p.printVarDecl(s.Decl)
		p.printSemicolon()

	case *ast.ExprStmt:
		p.printExpr(s.Expr, ast.PrecLowest)
		p.printSemicolon()

	case *ast.ReturnStmt:
		p.print("return")
		if s.Value != nil {
			p.buf.WriteByte(' ')
			p.printExpr(s.Value, ast.PrecLowest)
		}
		p.printSemicolon()

	case *ast.BreakStmt:
		p.print("break;")

	case *ast.ContinueStmt:
		p.print("continue;")

	case *ast.DiscardStmt:
		p.print("discard;")

	case *ast.IfStmt:
		p.printIfStmt(s)

	case *ast.WhileStmt:
		p.print("while")
		p.printSpace()
		p.printCond(s.Cond)
		p.printSpace()
		p.printBlock(s.Body)

	case *ast.DoWhileStmt:
		p.print("do")
		p.printSpace()
		p.printBlock(s.Body)
		p.printSpace()
		p.print("while")
		p.printSpace()
		p.printCond(s.Cond)
		p.printSemicolon()

	case *ast.ForStmt:
		p.printForStmt(s)

	case *ast.BlockStmt:
		p.printBlock(s.Stmts)
	}
}

func (p *Printer) printCond(cond ast.Expr) {
	p.print("(")
	p.printExpr(cond, ast.PrecLowest)
	p.print(")")
}

func (p *Printer) printIfStmt(s *ast.IfStmt) {
	p.print("if")
	p.printSpace()
	p.printCond(s.Cond)
	p.printSpace()
	p.printBlock(s.Body)
	if s.Else == nil {
		return
	}
	p.printSpace()
	p.print("else")
	if len(s.Else) == 1 {
		if elseIf, ok := s.Else[0].(*ast.IfStmt); ok {
			p.buf.WriteByte(' ')
			p.printIfStmt(elseIf)
			return
		}
	}
	p.printSpace()
	p.printBlock(s.Else)
}

func (p *Printer) printForStmt(s *ast.ForStmt) {
	p.print("for")
	p.printSpace()
	p.print("(")
	switch init := s.Init.(type) {
	case *ast.DeclStmt:
		p.printVarDecl(init.Decl)
	case *ast.ExprStmt:
		p.printExpr(init.Expr, ast.PrecLowest)
	}
	p.print(";")
	if s.Cond != nil {
		p.printSpace()
		p.printExpr(s.Cond, ast.PrecLowest)
	}
	p.print(";")
	if s.Post != nil {
		p.printSpace()
		p.printExpr(s.Post, ast.PrecLowest)
	}
	p.print(")")
	p.printSpace()
	p.printBlock(s.Body)
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// printExpr prints e in a position that requires at least prec, adding
// parentheses when e binds looser.
func (p *Printer) printExpr(e ast.Expr, prec ast.Precedence) {
	if ast.ExprPrecedence(e) < prec {
		p.print("(")
		p.printExpr(e, ast.PrecLowest)
		p.print(")")
		return
	}

	switch e := e.(type) {
	case *ast.LiteralExpr:
		p.print(e.Value)

	case *ast.IdentExpr:
		p.print(e.Name)

	case *ast.ParenExpr:
		p.print("(")
		p.printExpr(e.Expr, ast.PrecLowest)
		p.print(")")

	case *ast.CallExpr:
		p.printExpr(e.Func, ast.PrecPostfix)
		p.print("(")
		for i, arg := range e.Args {
			if i > 0 {
				p.print(",")
				p.printSpace()
			}
			p.printExpr(arg, ast.PrecAssign)
		}
		p.print(")")

	case *ast.IndexExpr:
		p.printExpr(e.Base, ast.PrecPostfix)
		p.print("[")
		p.printExpr(e.Index, ast.PrecLowest)
		p.print("]")

	case *ast.MemberExpr:
		p.printExpr(e.Base, ast.PrecPostfix)
		p.buf.WriteByte('.')
		p.buf.WriteString(e.Member)

	case *ast.UnaryExpr:
		if e.Op.IsPostfix() {
			p.printExpr(e.Operand, ast.PrecPostfix)
			p.print(e.Op.String())
			return
		}
		p.print(e.Op.String())
		p.printExpr(e.Operand, ast.PrecPrefix)

	case *ast.BinaryExpr:
		prec := e.Op.Precedence()
		p.printExpr(e.Left, prec)
		p.printSpace()
		p.print(e.Op.String())
		p.printSpace()
		p.printExpr(e.Right, prec+1)

	case *ast.TernaryExpr:
		p.printExpr(e.Cond, ast.PrecLogicalOr)
		p.printSpace()
		p.print("?")
		p.printSpace()
		p.printExpr(e.Then, ast.PrecLowest)
		p.printSpace()
		p.print(":")
		p.printSpace()
		p.printExpr(e.Else, ast.PrecAssign)

	case *ast.AssignExpr:
		p.printExpr(e.Left, ast.PrecTernary)
		p.printSpace()
		p.print(e.Op.String())
		p.printSpace()
		p.printExpr(e.Right, ast.PrecAssign)
	}
}
