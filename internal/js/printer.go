package js

import (
	"strings"
)

// Mapper receives the generated position of every statement along with the
// source offset it came from. Positions are 0-based; columns count UTF-16
// code units.
type Mapper interface {
	Add(genLine, genCol, srcOffset int, name string)
}

// Print renders a program with 4-space indentation.
func Print(prog *Program) string {
	return PrintMapped(prog, nil)
}

// PrintMapped renders a program like Print and reports statement positions
// to m.
func PrintMapped(prog *Program, m Mapper) string {
	p := &printer{mapper: m}
	for i, stmt := range prog.Body {
		if i > 0 {
			p.newline()
			if _, isFn := stmt.(*Function); isFn {
				p.newline()
			} else if _, prevFn := prog.Body[i-1].(*Function); prevFn {
				p.newline()
			}
		}
		p.stmt(stmt)
	}
	if len(prog.Body) > 0 {
		p.buf.WriteByte('\n')
	}
	return p.buf.String()
}

// PrintExpr renders a single expression.
func PrintExpr(e Expr) string {
	p := &printer{}
	p.expr(e, PrecLowest)
	return p.buf.String()
}

type printer struct {
	buf    strings.Builder
	indent int

	mapper Mapper
	// line and col are the generated position of buf[scanned]
	scanned   int
	line, col int
}

// mark reports the current output position as the start of a statement.
func (p *printer) mark(s Stmt, name string) {
	if p.mapper == nil {
		return
	}
	for _, r := range p.buf.String()[p.scanned:] {
		switch {
		case r == '\n':
			p.line++
			p.col = 0
		case r >= 0x10000:
			p.col += 2
		default:
			p.col++
		}
	}
	p.scanned = p.buf.Len()
	p.mapper.Add(p.line, p.col, s.Pos(), name)
}

// print writes s, separating it from the previous token when the two would
// otherwise fuse.
func (p *printer) print(s string) {
	if s == "" {
		return
	}
	if p.buf.Len() > 0 {
		str := p.buf.String()
		last, first := str[len(str)-1], s[0]
		if (isWordByte(last) && isWordByte(first)) ||
			((last == '+' || last == '-') && first == last) {
			p.buf.WriteByte(' ')
		}
	}
	p.buf.WriteString(s)
}

func (p *printer) space() {
	p.buf.WriteByte(' ')
}

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *printer) block(stmts []Stmt) {
	p.print("{")
	p.indent++
	for _, stmt := range stmts {
		p.newline()
		p.stmt(stmt)
	}
	p.indent--
	if len(stmts) > 0 {
		p.newline()
	}
	p.print("}")
}

func (p *printer) stmt(s Stmt) {
	if _, isFn := s.(*Function); !isFn {
		p.mark(s, "")
	}
	switch s := s.(type) {
	case *Function:
		for _, c := range s.Comments {
			p.buf.WriteString(c)
			p.newline()
		}
		p.mark(s, s.Name)
		if s.ReturnComment != "" {
			p.print("/*" + s.ReturnComment + "*/")
			p.space()
		}
		p.print("function")
		p.print(s.Name)
		p.print("(")
		for i, param := range s.Params {
			if i > 0 {
				p.print(",")
				p.space()
			}
			if param.Comment != "" {
				p.print("/*" + param.Comment + "*/")
				p.space()
			}
			p.print(param.Name)
		}
		p.print(")")
		p.space()
		p.block(s.Body)

	case *VarDecl:
		p.varDecl(s)
		p.print(";")

	case *Return:
		p.print("return")
		if s.Value != nil {
			p.space()
			p.expr(s.Value, PrecLowest)
		}
		p.print(";")

	case *If:
		p.ifStmt(s)

	case *While:
		p.print("while")
		p.space()
		p.cond(s.Cond)
		p.space()
		p.block(s.Body)

	case *DoWhile:
		p.print("do")
		p.space()
		p.block(s.Body)
		p.space()
		p.print("while")
		p.space()
		p.cond(s.Cond)
		p.print(";")

	case *For:
		p.print("for")
		p.space()
		p.print("(")
		switch init := s.Init.(type) {
		case *VarDecl:
			p.varDecl(init)
		case *ExprStmt:
			p.expr(init.Expr, PrecLowest)
		}
		p.print(";")
		if s.Cond != nil {
			p.space()
			p.expr(s.Cond, PrecLowest)
		}
		p.print(";")
		if s.Post != nil {
			p.space()
			p.expr(s.Post, PrecLowest)
		}
		p.print(")")
		p.space()
		p.block(s.Body)

	case *Break:
		p.print("break;")

	case *Continue:
		p.print("continue;")

	case *ExprStmt:
		// A leading { or function would start a declaration.
		switch s.Expr.(type) {
		case *Object:
			p.expr(&Paren{Expr: s.Expr}, PrecLowest)
		default:
			p.expr(s.Expr, PrecLowest)
		}
		p.print(";")

	case *Block:
		p.block(s.Body)
	}
}

func (p *printer) varDecl(d *VarDecl) {
	p.print(d.Kind)
	for i, v := range d.Vars {
		if i > 0 {
			p.print(",")
			p.space()
		} else {
			p.space()
		}
		p.print(v.Name)
		if v.Init != nil {
			p.space()
			p.print("=")
			p.space()
			p.expr(v.Init, PrecAssign)
		}
	}
}

func (p *printer) cond(e Expr) {
	p.print("(")
	p.expr(e, PrecLowest)
	p.print(")")
}

func (p *printer) ifStmt(s *If) {
	p.print("if")
	p.space()
	p.cond(s.Cond)
	p.space()
	p.block(s.Body)
	if s.Else == nil {
		return
	}
	p.space()
	p.print("else")
	p.space()
	if len(s.Else) == 1 {
		if elseIf, ok := s.Else[0].(*If); ok {
			p.ifStmt(elseIf)
			return
		}
	}
	p.block(s.Else)
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (p *printer) expr(e Expr, prec Precedence) {
	if ExprPrecedence(e) < prec {
		p.print("(")
		p.expr(e, PrecLowest)
		p.print(")")
		return
	}

	switch e := e.(type) {
	case *Ident:
		p.print(e.Name)

	case *Literal:
		p.print(e.Value)

	case *String:
		p.print("'" + strings.ReplaceAll(e.Value, "'", `\'`) + "'")

	case *Paren:
		p.print("(")
		p.expr(e.Expr, PrecLowest)
		p.print(")")

	case *Call:
		p.expr(e.Callee, PrecMember)
		p.print("(")
		p.exprList(e.Args)
		p.print(")")

	case *Member:
		p.expr(e.Object, PrecMember)
		p.buf.WriteByte('.')
		p.buf.WriteString(e.Property)

	case *Index:
		p.expr(e.Object, PrecMember)
		p.print("[")
		p.expr(e.Index, PrecLowest)
		p.print("]")

	case *Unary:
		p.print(e.Op)
		p.expr(e.Operand, PrecPrefix)

	case *Update:
		if e.Prefix {
			p.print(e.Op)
			p.expr(e.Operand, PrecPrefix)
		} else {
			p.expr(e.Operand, PrecPostfix)
			p.print(e.Op)
		}

	case *Binary:
		prec := binaryPrecedence[e.Op]
		p.expr(e.Left, prec)
		p.space()
		p.print(e.Op)
		p.space()
		p.expr(e.Right, prec+1)

	case *Conditional:
		p.expr(e.Cond, PrecLogicalOr)
		p.print(" ? ")
		p.expr(e.Then, PrecAssign)
		p.print(" : ")
		p.expr(e.Else, PrecAssign)

	case *Assign:
		p.expr(e.Left, PrecPostfix)
		p.space()
		p.print(e.Op)
		p.space()
		p.expr(e.Right, PrecAssign)

	case *Object:
		if len(e.Props) == 0 {
			p.print("{}")
			return
		}
		p.print("{ ")
		for i, prop := range e.Props {
			if i > 0 {
				p.print(", ")
			}
			p.print(prop.Key)
			p.print(": ")
			p.expr(prop.Value, PrecAssign)
		}
		p.print(" }")

	case *Array:
		p.print("[")
		p.exprList(e.Elems)
		p.print("]")
	}
}

func (p *printer) exprList(list []Expr) {
	for i, e := range list {
		if i > 0 {
			p.print(",")
			p.space()
		}
		p.expr(e, PrecAssign)
	}
}
