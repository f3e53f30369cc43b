package types

import (
	"github.com/tliron/commonlog"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/builtins"
	"github.com/HugoDaniel/glslkit/internal/diagnostic"
	"github.com/HugoDaniel/glslkit/internal/lexer"
)

var log = commonlog.GetLogger("glslkit.types")

// TypeOf infers the type of expr in scope.
//
// TypeOf is pure: the same expression and scope always give the same result.
// Unresolvable identifiers, unknown functions, unknown attributes and
// unsupported accesses return a *diagnostic.TypeError.
func TypeOf(expr ast.Expr, scope *Scope) (Type, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		switch e.Kind {
		case lexer.TokFloatLiteral:
			return Float, nil
		case lexer.TokTrue, lexer.TokFalse:
			return Bool, nil
		}
		return Int, nil

	case *ast.IdentExpr:
		if t, ok := scope.Variable(e.Name); ok {
			return t, nil
		}
		return Type{}, diagnostic.NewTypeError(e.Loc.Offset(), "unresolved identifier %q", e.Name)

	case *ast.ParenExpr:
		return TypeOf(e.Expr, scope)

	case *ast.CallExpr:
		return typeOfCall(e, scope)

	case *ast.IndexExpr:
		base, err := TypeOf(e.Base, scope)
		if err != nil {
			return Type{}, err
		}
		switch {
		case base.IsArray():
			return base.Elem(), nil
		case base.IsMatrix():
			return base.Column(), nil
		case base.IsVector():
			return base.Component(), nil
		}
		return Type{}, diagnostic.NewTypeError(e.Loc.Offset(), "cannot index a value of type %s", base)

	case *ast.MemberExpr:
		base, err := TypeOf(e.Base, scope)
		if err != nil {
			return Type{}, err
		}
		if base.IsVector() {
			if len(e.Member) > 1 {
				return Type{}, diagnostic.NewTypeError(e.Loc.Offset(), "swizzle %q is not supported", e.Member)
			}
			if i, ok := ComponentIndex(e.Member); ok && i < base.Size() {
				return base.Component(), nil
			}
		} else if !base.IsArray() {
			if t, ok := scope.FieldType(base.Name, e.Member); ok {
				return t, nil
			}
		}
		return Type{}, diagnostic.NewTypeError(e.Loc.Offset(), "unknown attribute %q of %s", e.Member, base)

	case *ast.UnaryExpr:
		if e.Op == ast.UnaryOpNot {
			return Bool, nil
		}
		return TypeOf(e.Operand, scope)

	case *ast.BinaryExpr:
		return typeOfBinary(e, scope)

	case *ast.TernaryExpr:
		then, err := TypeOf(e.Then, scope)
		if err != nil {
			return Type{}, err
		}
		els, err := TypeOf(e.Else, scope)
		if err != nil {
			return Type{}, err
		}
		if then != els {
			return Type{}, diagnostic.NewTypeError(e.Loc.Offset(),
				"ternary branches have different types %s and %s", then, els)
		}
		return then, nil

	case *ast.AssignExpr:
		return TypeOf(e.Left, scope)
	}
	return Type{}, diagnostic.NewTypeError(expr.Pos().Offset(), "cannot infer a type for %T", expr)
}

// TypeOfDecl returns the registered return type of a function.
func TypeOfDecl(fn *ast.FunctionDecl) Type {
	return FromSpec(fn.ReturnType, nil)
}

// ComponentIndex returns the component a single-letter vector member selects.
func ComponentIndex(member string) (int, bool) {
	if len(member) != 1 {
		return 0, false
	}
	switch member[0] {
	case 'x', 'r', 's':
		return 0, true
	case 'y', 'g', 't':
		return 1, true
	case 'z', 'b', 'p':
		return 2, true
	case 'w', 'a', 'q':
		return 3, true
	}
	return 0, false
}

func typeOfCall(e *ast.CallExpr, scope *Scope) (Type, error) {
	name := ast.CalleeName(e)
	if name == "" {
		return Type{}, diagnostic.NewTypeError(e.Loc.Offset(), "unsupported call target")
	}

	// Constructors
	if IsBuiltinName(name) {
		return Named(name), nil
	}
	if _, ok := scope.Struct(name); ok {
		return Named(name), nil
	}

	if b := builtins.Lookup(name); b != nil {
		switch b.Kind {
		case builtins.BuiltinFixed:
			return Named(b.Return), nil

		case builtins.BuiltinRelational:
			if len(e.Args) == 0 {
				break
			}
			arg, err := TypeOf(e.Args[0], scope)
			if err != nil {
				return Type{}, err
			}
			if arg.IsVector() {
				return Bool.WithSize(arg.Size()), nil
			}
			return Bool, nil

		case builtins.BuiltinOverloaded:
			if len(e.Args) == 0 {
				break
			}
			var first Type
			for i, arg := range e.Args {
				t, err := TypeOf(arg, scope)
				if err != nil {
					return Type{}, err
				}
				if t.IsVector() {
					return t, nil
				}
				if i == 0 {
					first = t
				}
			}
			return first, nil
		}
	}

	if sig, ok := scope.Function(name); ok {
		return sig.Return, nil
	}
	return Type{}, diagnostic.NewTypeError(e.Loc.Offset(), "unknown function %q", name)
}

func typeOfBinary(e *ast.BinaryExpr, scope *Scope) (Type, error) {
	left, err := TypeOf(e.Left, scope)
	if err != nil {
		return Type{}, err
	}
	right, err := TypeOf(e.Right, scope)
	if err != nil {
		return Type{}, err
	}
	if e.Op.IsComparison() || e.Op.IsLogical() {
		return Bool, nil
	}

	switch {
	case left.IsVector():
		return left, nil
	case right.IsVector():
		return right, nil
	case left.IsMatrix():
		return left, nil
	case right.IsMatrix():
		return right, nil
	}
	if left != right {
		log.Warningf("%d: operands of %q have different types %s and %s",
			e.Loc.Offset(), e.Op.String(), left, right)
	}
	return left, nil
}
