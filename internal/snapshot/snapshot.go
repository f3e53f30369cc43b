// Package snapshot encodes a GLSL AST as a canonical CBOR document.
//
// The AST is first lowered to a uniform tree of Nodes (kind, value, source
// offset, attributes, children) so that the encoding does not depend on Go
// type names and can be read back without the ast package. Canonical CBOR
// makes the bytes deterministic: the same tree always encodes identically.
package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/HugoDaniel/glslkit/internal/ast"
)

// Node is one element of a snapshot tree.
type Node struct {
	Kind     string            `cbor:"1,keyasint"`
	Value    string            `cbor:"2,keyasint,omitempty"`
	Offset   int               `cbor:"3,keyasint"`
	Attrs    map[string]string `cbor:"4,keyasint,omitempty"`
	Children []*Node           `cbor:"5,keyasint,omitempty"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Marshal encodes file as canonical CBOR.
func Marshal(file *ast.File) ([]byte, error) {
	return encMode.Marshal(FromFile(file))
}

// Unmarshal decodes a snapshot produced by Marshal.
func Unmarshal(data []byte) (*Node, error) {
	var n Node
	if err := cbor.Unmarshal(data, &n); err != nil {
		return nil, errors.Wrap(err, "snapshot: unmarshal")
	}
	return &n, nil
}

// String renders the tree one node per line, indented by depth.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Kind)
	if n.Value != "" {
		fmt.Fprintf(sb, " %q", n.Value)
	}
	fmt.Fprintf(sb, " @%d", n.Offset)
	for _, k := range sortedKeys(n.Attrs) {
		fmt.Fprintf(sb, " %s=%q", k, n.Attrs[k])
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		c.write(sb, depth+1)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ----------------------------------------------------------------------------
// Lowering
// ----------------------------------------------------------------------------

func node(kind, value string, loc ast.Loc, children ...*Node) *Node {
	return &Node{Kind: kind, Value: value, Offset: loc.Offset(), Children: children}
}

func empty() *Node {
	return &Node{Kind: "Empty"}
}

// FromFile lowers a file to a snapshot tree.
func FromFile(file *ast.File) *Node {
	root := &Node{Kind: "File"}
	for _, d := range file.Decls {
		root.Children = append(root.Children, fromDecl(d))
	}
	return root
}

func fromDecl(d ast.Decl) *Node {
	switch d := d.(type) {
	case *ast.VarDecl:
		return fromVarDecl(d)

	case *ast.FunctionDecl:
		n := node("FunctionDecl", d.Name, d.Loc, fromTypeSpec(d.ReturnType))
		if len(d.Doc) > 0 || len(d.Qualifiers) > 0 {
			n.Attrs = make(map[string]string)
		}
		if len(d.Doc) > 0 {
			n.Attrs["doc"] = strings.Join(d.Doc, "\n")
		}
		if len(d.Qualifiers) > 0 {
			n.Attrs["qualifiers"] = strings.Join(d.Qualifiers, " ")
		}
		for _, p := range d.Params {
			pn := node("Param", p.Name, p.Loc, fromTypeSpec(p.Type))
			pn.Children = append(pn.Children, fromExprs("Array", p.Loc, p.Array))
			if len(p.Qualifiers) > 0 {
				pn.Attrs = map[string]string{"qualifiers": strings.Join(p.Qualifiers, " ")}
			}
			n.Children = append(n.Children, pn)
		}
		n.Children = append(n.Children, fromStmts("Body", d.Loc, d.Body))
		return n

	case *ast.StructDecl:
		n := node("StructDecl", d.Name, d.Loc)
		for _, f := range d.Fields {
			n.Children = append(n.Children, fromVarDecl(f))
		}
		return n
	}
	return &Node{Kind: fmt.Sprintf("%T", d)}
}

func fromVarDecl(d *ast.VarDecl) *Node {
	n := node("VarDecl", "", d.Loc, fromTypeSpec(d.Type))
	if len(d.Qualifiers) > 0 {
		n.Attrs = map[string]string{"qualifiers": strings.Join(d.Qualifiers, " ")}
	}
	for _, v := range d.Vars {
		init := empty()
		if v.Init != nil {
			init = fromExpr(v.Init)
		}
		n.Children = append(n.Children, node("Declarator", v.Name, v.Loc, fromExprs("Array", v.Loc, v.Array), init))
	}
	return n
}

func fromTypeSpec(t ast.TypeSpec) *Node {
	return node("Type", t.Name, t.Loc, fromExprs("Array", t.Loc, t.Array))
}

func fromStmts(kind string, loc ast.Loc, stmts []ast.Stmt) *Node {
	n := node(kind, "", loc)
	for _, s := range stmts {
		n.Children = append(n.Children, fromStmt(s))
	}
	return n
}

func fromStmt(s ast.Stmt) *Node {
	switch s := s.(type) {
	case *ast.DeclStmt:
		return fromVarDecl(s.Decl)
	case *ast.ExprStmt:
		return node("ExprStmt", "", s.Loc, fromExpr(s.Expr))
	case *ast.ReturnStmt:
		return node("ReturnStmt", "", s.Loc, fromOptExpr(s.Value))
	case *ast.BreakStmt:
		return node("BreakStmt", "", s.Loc)
	case *ast.ContinueStmt:
		return node("ContinueStmt", "", s.Loc)
	case *ast.DiscardStmt:
		return node("DiscardStmt", "", s.Loc)
	case *ast.IfStmt:
		n := node("IfStmt", "", s.Loc, fromExpr(s.Cond), fromStmts("Body", s.Loc, s.Body))
		if s.Else != nil {
			n.Children = append(n.Children, fromStmts("Else", s.Loc, s.Else))
		}
		return n
	case *ast.WhileStmt:
		return node("WhileStmt", "", s.Loc, fromExpr(s.Cond), fromStmts("Body", s.Loc, s.Body))
	case *ast.DoWhileStmt:
		return node("DoWhileStmt", "", s.Loc, fromStmts("Body", s.Loc, s.Body), fromExpr(s.Cond))
	case *ast.ForStmt:
		init := empty()
		if s.Init != nil {
			init = fromStmt(s.Init)
		}
		return node("ForStmt", "", s.Loc, init, fromOptExpr(s.Cond), fromOptExpr(s.Post), fromStmts("Body", s.Loc, s.Body))
	case *ast.BlockStmt:
		return fromStmts("BlockStmt", s.Loc, s.Stmts)
	}
	return &Node{Kind: fmt.Sprintf("%T", s)}
}

func fromOptExpr(e ast.Expr) *Node {
	if e == nil {
		return empty()
	}
	return fromExpr(e)
}

func fromExprs(kind string, loc ast.Loc, list []ast.Expr) *Node {
	n := node(kind, "", loc)
	for _, e := range list {
		n.Children = append(n.Children, fromOptExpr(e))
	}
	return n
}

func fromExpr(e ast.Expr) *Node {
	switch e := e.(type) {
	case *ast.LiteralExpr:
		return node("Literal", e.Value, e.Loc)
	case *ast.IdentExpr:
		return node("Ident", e.Name, e.Loc)
	case *ast.CallExpr:
		n := node("Call", "", e.Loc, fromExpr(e.Func))
		for _, arg := range e.Args {
			n.Children = append(n.Children, fromExpr(arg))
		}
		return n
	case *ast.IndexExpr:
		return node("Index", "", e.Loc, fromExpr(e.Base), fromExpr(e.Index))
	case *ast.MemberExpr:
		return node("Member", e.Member, e.Loc, fromExpr(e.Base))
	case *ast.ParenExpr:
		return node("Paren", "", e.Loc, fromExpr(e.Expr))
	case *ast.UnaryExpr:
		op := e.Op.String()
		if e.Op.IsPostfix() {
			op = "postfix " + op
		}
		return node("Unary", op, e.Loc, fromExpr(e.Operand))
	case *ast.BinaryExpr:
		return node("Binary", e.Op.String(), e.Loc, fromExpr(e.Left), fromExpr(e.Right))
	case *ast.TernaryExpr:
		return node("Ternary", "", e.Loc, fromExpr(e.Cond), fromExpr(e.Then), fromExpr(e.Else))
	case *ast.AssignExpr:
		return node("Assign", e.Op.String(), e.Loc, fromExpr(e.Left), fromExpr(e.Right))
	}
	return &Node{Kind: fmt.Sprintf("%T", e)}
}
