package types

import (
	"github.com/HugoDaniel/glslkit/internal/ast"
)

// Field is a named struct member.
type Field struct {
	Name string
	Type Type
}

// Param is a named function parameter.
type Param struct {
	Name string
	Type Type
}

// Signature is the registered type of a user function.
type Signature struct {
	Return Type
	Params []Param
}

// Scope holds the name to type bindings visible at a point in a file.
//
// A Scope is never modified after it is built. A subscope points at its
// parent and only stores the names it overrides, so scopes are cheap to
// derive and safe to share between passes.
type Scope struct {
	parent    *Scope
	variables map[string]Type
	functions map[string]*Signature
	structs   map[string][]Field
}

func newScope(parent *Scope) *Scope {
	return &Scope{
		parent:    parent,
		variables: make(map[string]Type),
		functions: make(map[string]*Signature),
		structs:   make(map[string][]Field),
	}
}

// BuildScope collects the top-level variables, functions and structs of a
// file into a root scope.
func BuildScope(file *ast.File) *Scope {
	s := newScope(nil)
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			s.declare(d)

		case *ast.FunctionDecl:
			sig := &Signature{Return: FromSpec(d.ReturnType, nil)}
			for _, p := range d.Params {
				sig.Params = append(sig.Params, Param{Name: p.Name, Type: FromSpec(p.Type, p.Array)})
			}
			s.functions[d.Name] = sig

		case *ast.StructDecl:
			var fields []Field
			for _, f := range d.Fields {
				for _, v := range f.Vars {
					fields = append(fields, Field{Name: v.Name, Type: FromSpec(f.Type, v.Array)})
				}
			}
			s.structs[d.Name] = fields
		}
	}
	log.Debugf("root scope: %d variables, %d functions, %d structs",
		len(s.variables), len(s.functions), len(s.structs))
	return s
}

// Subscope returns the scope of a function body: the receiver overridden by
// the function's parameters and by every local declared anywhere in its
// body, including nested statement bodies.
func (s *Scope) Subscope(fn *ast.FunctionDecl) *Scope {
	sub := newScope(s)
	for _, p := range fn.Params {
		sub.variables[p.Name] = FromSpec(p.Type, p.Array)
	}
	sub.hoist(fn.Body)
	return sub
}

func (s *Scope) declare(d *ast.VarDecl) {
	for _, v := range d.Vars {
		s.variables[v.Name] = FromSpec(d.Type, v.Array)
	}
}

// hoist declares the locals of stmts and of all nested bodies.
func (s *Scope) hoist(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		switch st := stmt.(type) {
		case *ast.DeclStmt:
			s.declare(st.Decl)
		case *ast.IfStmt:
			s.hoist(st.Body)
			s.hoist(st.Else)
		case *ast.WhileStmt:
			s.hoist(st.Body)
		case *ast.DoWhileStmt:
			s.hoist(st.Body)
		case *ast.ForStmt:
			if st.Init != nil {
				s.hoist([]ast.Stmt{st.Init})
			}
			s.hoist(st.Body)
		case *ast.BlockStmt:
			s.hoist(st.Stmts)
		}
	}
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Variable returns the type of a variable visible from s.
func (s *Scope) Variable(name string) (Type, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if t, ok := scope.variables[name]; ok {
			return t, true
		}
	}
	return Type{}, false
}

// IsGlobal reports whether name resolves to a variable of the root scope.
func (s *Scope) IsGlobal(name string) bool {
	for scope := s; scope != nil; scope = scope.parent {
		if _, ok := scope.variables[name]; ok {
			return scope.parent == nil
		}
	}
	return false
}

// Function returns the signature of a user function visible from s.
func (s *Scope) Function(name string) (*Signature, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if sig, ok := scope.functions[name]; ok {
			return sig, true
		}
	}
	return nil, false
}

// Struct returns the ordered fields of a struct visible from s.
func (s *Scope) Struct(name string) ([]Field, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if fields, ok := scope.structs[name]; ok {
			return fields, true
		}
	}
	return nil, false
}

// FieldType returns the type of a struct field.
func (s *Scope) FieldType(structName, field string) (Type, bool) {
	fields, ok := s.Struct(structName)
	if !ok {
		return Type{}, false
	}
	for _, f := range fields {
		if f.Name == field {
			return f.Type, true
		}
	}
	return Type{}, false
}
