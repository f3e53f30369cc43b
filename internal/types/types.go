// Package types provides the GLSL type model, lexical scopes and type
// inference.
//
// A Type is a plain comparable value: a type name plus a count of array
// dimensions. Types compare structurally with ==; there is no implicit
// scalar to vector widening other than the binary-operator rule in TypeOf.
package types

import (
	"strconv"
	"strings"

	"github.com/HugoDaniel/glslkit/internal/ast"
)

// Type represents a GLSL type.
type Type struct {
	Name string // float, vec3, mat2x3, a struct name, ...
	Dims int    // number of array dimensions
}

// Predeclared types.
var (
	Void  = Type{Name: "void"}
	Float = Type{Name: "float"}
	Int   = Type{Name: "int"}
	Uint  = Type{Name: "uint"}
	Bool  = Type{Name: "bool"}
)

// Named returns the non-array type with the given name.
func Named(name string) Type {
	return Type{Name: name}
}

// Vec returns the float vector type with n components.
func Vec(n int) Type {
	return Type{Name: "vec" + strconv.Itoa(n)}
}

// FromSpec converts a declared type, adding extra array dimensions from a
// declarator or parameter.
func FromSpec(spec ast.TypeSpec, extra []ast.Expr) Type {
	return Type{Name: spec.Name, Dims: len(spec.Array) + len(extra)}
}

func (t Type) String() string {
	if t.Dims == 0 {
		return t.Name
	}
	return t.Name + strings.Repeat("[]", t.Dims)
}

// IsZero reports whether t is the empty type.
func (t Type) IsZero() bool {
	return t.Name == ""
}

// IsArray reports whether t has array dimensions.
func (t Type) IsArray() bool {
	return t.Dims > 0
}

// Elem returns t with one array dimension removed.
func (t Type) Elem() Type {
	if t.Dims == 0 {
		return t
	}
	return Type{Name: t.Name, Dims: t.Dims - 1}
}

// IsScalar reports whether t is float, int, uint or bool.
func (t Type) IsScalar() bool {
	if t.Dims != 0 {
		return false
	}
	switch t.Name {
	case "float", "int", "uint", "bool":
		return true
	}
	return false
}

// IsVector reports whether t is a vecN, ivecN, uvecN or bvecN.
func (t Type) IsVector() bool {
	if t.Dims != 0 {
		return false
	}
	prefix, n := splitSize(t.Name, "vec")
	if n < 2 || n > 4 {
		return false
	}
	switch prefix {
	case "", "i", "u", "b":
		return true
	}
	return false
}

// IsFloatVector reports whether t is a vecN.
func (t Type) IsFloatVector() bool {
	return t.IsVector() && strings.HasPrefix(t.Name, "vec")
}

// IsFloat reports whether t is the float scalar.
func (t Type) IsFloat() bool {
	return t == Float
}

// IsIntegral reports whether t is an int or uint scalar or vector.
func (t Type) IsIntegral() bool {
	if t == Int || t == Uint {
		return true
	}
	return t.IsVector() && (t.Name[0] == 'i' || t.Name[0] == 'u')
}

// IsMatrix reports whether t is a matN or matNxM.
func (t Type) IsMatrix() bool {
	if t.Dims != 0 || !strings.HasPrefix(t.Name, "mat") {
		return false
	}
	cols, rows := matrixShape(t.Name)
	return cols != 0 && rows != 0
}

// Size returns the number of components of a vector, or the number of
// columns of a matrix. It returns 0 for every other type.
func (t Type) Size() int {
	switch {
	case t.IsVector():
		_, n := splitSize(t.Name, "vec")
		return n
	case t.IsMatrix():
		cols, _ := matrixShape(t.Name)
		return cols
	}
	return 0
}

// Component returns the scalar element type of a vector.
func (t Type) Component() Type {
	if !t.IsVector() {
		return t
	}
	switch t.Name[0] {
	case 'i':
		return Int
	case 'u':
		return Uint
	case 'b':
		return Bool
	}
	return Float
}

// Column returns the column vector type of a matrix: matCxR has columns of
// type vecR.
func (t Type) Column() Type {
	_, rows := matrixShape(t.Name)
	return Vec(rows)
}

// WithSize returns the vector type with t's component kind and n components.
// For a scalar t it returns the matching vector type.
func (t Type) WithSize(n int) Type {
	var prefix string
	switch t.Component().Name {
	case "int":
		prefix = "i"
	case "uint":
		prefix = "u"
	case "bool":
		prefix = "b"
	}
	return Type{Name: prefix + "vec" + strconv.Itoa(n)}
}

// IsBuiltinName reports whether name is a built-in GLSL type name.
func IsBuiltinName(name string) bool {
	t := Named(name)
	return t.IsScalar() || t.IsVector() || t.IsMatrix() || t == Void
}

// splitSize splits "ivec3" into ("i", 3) around the marker "vec".
func splitSize(name, marker string) (string, int) {
	i := strings.Index(name, marker)
	if i < 0 || len(name) != i+len(marker)+1 {
		return "", 0
	}
	n := int(name[len(name)-1] - '0')
	return name[:i], n
}

// matrixShape returns the column and row counts of a matrix type name, or
// zeros when name is not a matrix.
func matrixShape(name string) (cols, rows int) {
	dims := strings.TrimPrefix(name, "mat")
	switch len(dims) {
	case 1:
		cols = digit(dims[0])
		rows = cols
	case 3:
		if dims[1] != 'x' {
			return 0, 0
		}
		cols, rows = digit(dims[0]), digit(dims[2])
	}
	if cols == 0 || rows == 0 {
		return 0, 0
	}
	return cols, rows
}

func digit(c byte) int {
	if c < '2' || c > '4' {
		return 0
	}
	return int(c - '0')
}
