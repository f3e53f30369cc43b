// Package renamer shortens parameter and local variable names for minified
// GLSL output.
//
// Following esbuild's approach, the renamer:
// - Assigns the shortest names to the most used locals
// - Reuses the same short names in every function
// - Avoids keywords, built-ins and every name visible outside the function
//
// Globals, functions, struct types and struct fields are the interface of a
// shader and are never renamed.
package renamer

import (
	"sort"

	"github.com/tliron/commonlog"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/builtins"
	"github.com/HugoDaniel/glslkit/internal/lexer"
	"github.com/HugoDaniel/glslkit/internal/types"
)

var log = commonlog.GetLogger("glslkit.renamer")

// Options controls renaming.
type Options struct {
	// KeepNames lists local names that keep their original spelling.
	KeepNames []string
}

// File returns a copy of file with the parameters and locals of every
// function renamed. The input tree is not modified.
func File(file *ast.File, opts Options) *ast.File {
	topLevel := topLevelNames(file)
	keep := make(map[string]bool, len(opts.KeepNames))
	for _, name := range opts.KeepNames {
		keep[name] = true
	}
	minifier := DefaultNameMinifier()

	out := &ast.File{Decls: make([]ast.Decl, len(file.Decls))}
	for i, decl := range file.Decls {
		fn, ok := decl.(*ast.FunctionDecl)
		if !ok {
			out.Decls[i] = decl
			continue
		}
		names := assignNames(fn, topLevel, keep, minifier)
		log.Debugf("%s: renamed %d locals", fn.Name, len(names))
		out.Decls[i] = (&rewriter{names: names}).function(fn)
	}
	return out
}

func topLevelNames(file *ast.File) map[string]bool {
	names := make(map[string]bool)
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			for _, v := range d.Vars {
				names[v.Name] = true
			}
		case *ast.FunctionDecl:
			names[d.Name] = true
		case *ast.StructDecl:
			names[d.Name] = true
		}
	}
	return names
}

// ----------------------------------------------------------------------------
// Slot Allocation
// ----------------------------------------------------------------------------

type symbolSlot struct {
	name  string
	count uint32
}

// assignNames maps the renameable locals of fn to short names.
//
// Every occurrence of a local name in the function is renamed, whatever block
// declared it, so the mapping must be one to one and must not produce any
// name the function refers to without declaring it.
func assignNames(fn *ast.FunctionDecl, topLevel, keep map[string]bool, m *NameMinifier) map[string]string {
	var slots []*symbolSlot
	slotOf := make(map[string]*symbolSlot)
	// Top-level names stay visible in the function whether or not it
	// refers to them, and so does the function's own name.
	reserved := make(map[string]bool, len(topLevel))
	for name := range topLevel {
		reserved[name] = true
	}

	declare := func(name string) {
		if topLevel[name] || keep[name] || builtins.IsBuiltin(name) || types.IsBuiltinName(name) {
			reserved[name] = true
			return
		}
		slot, ok := slotOf[name]
		if !ok {
			slot = &symbolSlot{}
			slotOf[name] = slot
			slots = append(slots, slot)
		}
		slot.count++
	}
	// References are resolved once all declarations are known: a name used
	// before its declaration in a later block still names a local.
	walkFunction(fn, declare, func(string) {})
	walkFunction(fn, func(string) {}, func(name string) {
		if slot, ok := slotOf[name]; ok {
			slot.count++
		} else {
			reserved[name] = true
		}
	})

	order := make([]string, 0, len(slots))
	for name := range slotOf {
		order = append(order, name)
	}
	first := make(map[*symbolSlot]int, len(slots))
	for i, slot := range slots {
		first[slot] = i
	}
	// Most used first; ties keep declaration order.
	sort.Slice(order, func(i, j int) bool {
		a, b := slotOf[order[i]], slotOf[order[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return first[a] < first[b]
	})

	names := make(map[string]string, len(order))
	nameIndex := 0
	for _, original := range order {
		name := m.NumberToMinifiedName(nameIndex)
		for reserved[name] || IsReserved(name) {
			nameIndex++
			name = m.NumberToMinifiedName(nameIndex)
		}
		slotOf[original].name = name
		names[original] = name
		nameIndex++
	}
	return names
}

// walkFunction calls declare for each parameter and local declarator of fn
// and ref for each identifier expression, in source order.
func walkFunction(fn *ast.FunctionDecl, declare, ref func(name string)) {
	w := walker{declare: declare, ref: ref}
	for _, p := range fn.Params {
		w.exprs(p.Type.Array)
		w.exprs(p.Array)
		declare(p.Name)
	}
	w.stmts(fn.Body)
}

type walker struct {
	declare func(string)
	ref     func(string)
}

func (w walker) stmts(list []ast.Stmt) {
	for _, s := range list {
		w.stmt(s)
	}
}

func (w walker) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.DeclStmt:
		w.exprs(s.Decl.Type.Array)
		for _, v := range s.Decl.Vars {
			w.exprs(v.Array)
			w.expr(v.Init)
			w.declare(v.Name)
		}
	case *ast.ExprStmt:
		w.expr(s.Expr)
	case *ast.ReturnStmt:
		w.expr(s.Value)
	case *ast.IfStmt:
		w.expr(s.Cond)
		w.stmts(s.Body)
		w.stmts(s.Else)
	case *ast.WhileStmt:
		w.expr(s.Cond)
		w.stmts(s.Body)
	case *ast.DoWhileStmt:
		w.stmts(s.Body)
		w.expr(s.Cond)
	case *ast.ForStmt:
		if s.Init != nil {
			w.stmt(s.Init)
		}
		w.expr(s.Cond)
		w.expr(s.Post)
		w.stmts(s.Body)
	case *ast.BlockStmt:
		w.stmts(s.Stmts)
	}
}

func (w walker) exprs(list []ast.Expr) {
	for _, e := range list {
		w.expr(e)
	}
}

func (w walker) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.IdentExpr:
		w.ref(e.Name)
	case *ast.CallExpr:
		w.expr(e.Func)
		w.exprs(e.Args)
	case *ast.IndexExpr:
		w.expr(e.Base)
		w.expr(e.Index)
	case *ast.MemberExpr:
		w.expr(e.Base)
	case *ast.ParenExpr:
		w.expr(e.Expr)
	case *ast.UnaryExpr:
		w.expr(e.Operand)
	case *ast.BinaryExpr:
		w.expr(e.Left)
		w.expr(e.Right)
	case *ast.TernaryExpr:
		w.expr(e.Cond)
		w.expr(e.Then)
		w.expr(e.Else)
	case *ast.AssignExpr:
		w.expr(e.Left)
		w.expr(e.Right)
	}
}

// ----------------------------------------------------------------------------
// Rewriting
// ----------------------------------------------------------------------------

type rewriter struct {
	names map[string]string
}

func (r *rewriter) name(name string) string {
	if to, ok := r.names[name]; ok {
		return to
	}
	return name
}

func (r *rewriter) function(fn *ast.FunctionDecl) *ast.FunctionDecl {
	out := *fn
	out.ReturnType = r.typeSpec(fn.ReturnType)
	out.Params = make([]ast.Param, len(fn.Params))
	for i, p := range fn.Params {
		p.Type = r.typeSpec(p.Type)
		p.Name = r.name(p.Name)
		p.Array = r.exprs(p.Array)
		out.Params[i] = p
	}
	out.Body = r.stmts(fn.Body)
	return &out
}

func (r *rewriter) typeSpec(t ast.TypeSpec) ast.TypeSpec {
	t.Array = r.exprs(t.Array)
	return t
}

func (r *rewriter) varDecl(d *ast.VarDecl) *ast.VarDecl {
	out := *d
	out.Type = r.typeSpec(d.Type)
	out.Vars = make([]ast.Declarator, len(d.Vars))
	for i, v := range d.Vars {
		v.Name = r.name(v.Name)
		v.Array = r.exprs(v.Array)
		v.Init = r.expr(v.Init)
		out.Vars[i] = v
	}
	return &out
}

func (r *rewriter) stmts(list []ast.Stmt) []ast.Stmt {
	if list == nil {
		return nil
	}
	out := make([]ast.Stmt, len(list))
	for i, s := range list {
		out[i] = r.stmt(s)
	}
	return out
}

func (r *rewriter) stmt(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.DeclStmt:
		return &ast.DeclStmt{Decl: r.varDecl(s.Decl)}
	case *ast.ExprStmt:
		return &ast.ExprStmt{Loc: s.Loc, Expr: r.expr(s.Expr)}
	case *ast.ReturnStmt:
		return &ast.ReturnStmt{Loc: s.Loc, Value: r.expr(s.Value)}
	case *ast.IfStmt:
		return &ast.IfStmt{Loc: s.Loc, Cond: r.expr(s.Cond), Body: r.stmts(s.Body), Else: r.stmts(s.Else)}
	case *ast.WhileStmt:
		return &ast.WhileStmt{Loc: s.Loc, Cond: r.expr(s.Cond), Body: r.stmts(s.Body)}
	case *ast.DoWhileStmt:
		return &ast.DoWhileStmt{Loc: s.Loc, Body: r.stmts(s.Body), Cond: r.expr(s.Cond)}
	case *ast.ForStmt:
		return &ast.ForStmt{
			Loc:  s.Loc,
			Init: r.stmt(s.Init),
			Cond: r.expr(s.Cond),
			Post: r.expr(s.Post),
			Body: r.stmts(s.Body),
		}
	case *ast.BlockStmt:
		return &ast.BlockStmt{Loc: s.Loc, Stmts: r.stmts(s.Stmts)}
	}
	// Break, continue and discard hold no names.
	return s
}

func (r *rewriter) exprs(list []ast.Expr) []ast.Expr {
	if list == nil {
		return nil
	}
	out := make([]ast.Expr, len(list))
	for i, e := range list {
		out[i] = r.expr(e)
	}
	return out
}

func (r *rewriter) expr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.IdentExpr:
		if to, ok := r.names[e.Name]; ok {
			return ast.Ident(e.Loc, to)
		}
		return e
	case *ast.CallExpr:
		return &ast.CallExpr{Loc: e.Loc, Func: r.expr(e.Func), Args: r.exprs(e.Args)}
	case *ast.IndexExpr:
		return &ast.IndexExpr{Loc: e.Loc, Base: r.expr(e.Base), Index: r.expr(e.Index)}
	case *ast.MemberExpr:
		return &ast.MemberExpr{Loc: e.Loc, Base: r.expr(e.Base), Member: e.Member}
	case *ast.ParenExpr:
		return &ast.ParenExpr{Loc: e.Loc, Expr: r.expr(e.Expr)}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Loc: e.Loc, Op: e.Op, Operand: r.expr(e.Operand)}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Loc: e.Loc, Op: e.Op, Left: r.expr(e.Left), Right: r.expr(e.Right)}
	case *ast.TernaryExpr:
		return &ast.TernaryExpr{Loc: e.Loc, Cond: r.expr(e.Cond), Then: r.expr(e.Then), Else: r.expr(e.Else)}
	case *ast.AssignExpr:
		return &ast.AssignExpr{Loc: e.Loc, Op: e.Op, Left: r.expr(e.Left), Right: r.expr(e.Right)}
	}
	return e
}

// ----------------------------------------------------------------------------
// Name Generation
// ----------------------------------------------------------------------------

// NameMinifier generates minified identifier names.
type NameMinifier struct {
	// Characters allowed as first character of identifier
	head string
	// Characters allowed in rest of identifier
	tail string
}

// DefaultNameMinifier creates a minifier for GLSL identifiers.
func DefaultNameMinifier() *NameMinifier {
	// Underscores are left out: GLSL reserves names containing "__".
	return &NameMinifier{
		head: "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
		tail: "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
	}
}

// NumberToMinifiedName converts a number to a minified identifier.
// The sequence is: a, b, ..., z, A, ..., Z, aa, ba, ca, ...
func (m *NameMinifier) NumberToMinifiedName(n int) string {
	nHead := len(m.head)
	nTail := len(m.tail)

	result := make([]byte, 0, 4)
	result = append(result, m.head[n%nHead])
	n = n / nHead

	for n > 0 {
		n--
		result = append(result, m.tail[n%nTail])
		n = n / nTail
	}

	return string(result)
}

// ----------------------------------------------------------------------------
// Reserved Names
// ----------------------------------------------------------------------------

// reservedWords are GLSL keywords the lexer does not tokenize, and words the
// language reserves for future use.
var reservedWords = map[string]bool{
	"asm": true, "buffer": true, "case": true, "cast": true, "centroid": true,
	"class": true, "coherent": true, "default": true, "double": true,
	"enum": true, "extern": true, "external": true, "filter": true,
	"fixed": true, "goto": true, "half": true, "inline": true, "input": true,
	"interface": true, "invariant": true, "layout": true, "long": true,
	"namespace": true, "noinline": true, "noperspective": true, "output": true,
	"packed": true, "partition": true, "patch": true, "precision": true,
	"public": true, "readonly": true, "resource": true, "restrict": true,
	"sample": true, "shared": true, "short": true, "sizeof": true,
	"static": true, "subroutine": true, "superp": true, "switch": true,
	"template": true, "this": true, "typedef": true, "union": true,
	"unsigned": true, "using": true, "volatile": true, "writeonly": true,
	"main": true,
}

// IsReserved reports whether name can never be used for a renamed local.
func IsReserved(name string) bool {
	if _, ok := lexer.Keywords[name]; ok {
		return true
	}
	return reservedWords[name] || builtins.IsBuiltin(name) || types.IsBuiltinName(name)
}
