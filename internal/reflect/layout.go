package reflect

import (
	"strconv"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/lexer"
	"github.com/HugoDaniel/glslkit/internal/types"
)

// TypeLayout holds size and alignment information for a GLSL type.
type TypeLayout struct {
	Size      int
	Alignment int
	Stride    int // For arrays only (0 otherwise)
}

// LayoutComputer computes std140 uniform block layouts.
//
// Under std140 scalars take 4 bytes, vec2 aligns to 8, vec3 and vec4 align
// to 16, and arrays, matrix columns and structs round their alignment up to
// that of a vec4.
type LayoutComputer struct {
	structs     map[string]*ast.StructDecl
	structCache map[string]*StructLayout
}

// NewLayoutComputer creates a layout computer for a file.
func NewLayoutComputer(file *ast.File) *LayoutComputer {
	lc := &LayoutComputer{
		structs:     make(map[string]*ast.StructDecl),
		structCache: make(map[string]*StructLayout),
	}
	for _, decl := range file.Decls {
		if s, ok := decl.(*ast.StructDecl); ok {
			lc.structs[s.Name] = s
		}
	}
	return lc
}

const vec4Align = 16

// ComputeTypeLayout computes the layout of a named type with the given array
// dimensions, outermost first.
func (lc *LayoutComputer) ComputeTypeLayout(name string, dims []ast.Expr) TypeLayout {
	if len(dims) > 0 {
		return lc.computeArrayLayout(name, dims)
	}

	t := types.Named(name)
	switch {
	case t.IsScalar():
		return TypeLayout{Size: 4, Alignment: 4}

	case t.IsVector():
		return computeVecLayout(t.Size())

	case t.IsMatrix():
		// Column-major: an array of Size() column vectors.
		col := computeVecLayout(t.Column().Size())
		stride := roundUp(col.Size, vec4Align)
		return TypeLayout{Size: t.Size() * stride, Alignment: vec4Align, Stride: stride}
	}

	if layout := lc.GetStructLayout(name); layout != nil {
		return TypeLayout{Size: layout.Size, Alignment: layout.Alignment}
	}
	return TypeLayout{}
}

func computeVecLayout(n int) TypeLayout {
	switch n {
	case 2:
		return TypeLayout{Size: 8, Alignment: 8}
	case 3:
		return TypeLayout{Size: 12, Alignment: 16}
	default:
		return TypeLayout{Size: 16, Alignment: 16}
	}
}

// computeArrayLayout computes the layout of an array. Elements are padded to
// a multiple of 16 bytes.
func (lc *LayoutComputer) computeArrayLayout(name string, dims []ast.Expr) TypeLayout {
	elem := lc.ComputeTypeLayout(name, dims[1:])
	if elem.Size == 0 || elem.Alignment == 0 {
		return TypeLayout{}
	}

	align := roundUp(elem.Alignment, vec4Align)
	stride := roundUp(elem.Size, align)

	count := evaluateConstExpr(dims[0])
	if count < 0 {
		// Unsized or non-literal arrays have unknown size
		return TypeLayout{Alignment: align, Stride: stride}
	}
	return TypeLayout{Size: count * stride, Alignment: align, Stride: stride}
}

// evaluateConstExpr evaluates an integer literal array size.
// Returns -1 if the expression cannot be evaluated.
func evaluateConstExpr(expr ast.Expr) int {
	lit, ok := expr.(*ast.LiteralExpr)
	if !ok || lit.Kind != lexer.TokIntLiteral {
		return -1
	}
	v, ok := types.LiteralValue(lit)
	if !ok || v < 0 {
		return -1
	}
	return int(v)
}

// GetStructLayout returns the layout of a struct by name.
// Returns nil if the name is not a struct of the file.
func (lc *LayoutComputer) GetStructLayout(name string) *StructLayout {
	if cached, ok := lc.structCache[name]; ok {
		return cached
	}
	decl, ok := lc.structs[name]
	if !ok {
		return nil
	}
	return lc.computeStructLayout(decl)
}

// computeStructLayout computes the memory layout for a struct.
func (lc *LayoutComputer) computeStructLayout(decl *ast.StructDecl) *StructLayout {
	if cached, ok := lc.structCache[decl.Name]; ok {
		return cached
	}

	// Placeholder in cache to stop self-referencing declarations
	layout := &StructLayout{}
	lc.structCache[decl.Name] = layout

	var offset int
	maxAlign := 4

	for _, member := range decl.Fields {
		for _, v := range member.Vars {
			dims := append(append([]ast.Expr(nil), member.Type.Array...), v.Array...)
			memberLayout := lc.ComputeTypeLayout(member.Type.Name, dims)
			if memberLayout.Alignment == 0 {
				memberLayout.Alignment = 4
			}

			offset = roundUp(offset, memberLayout.Alignment)

			field := FieldInfo{
				Name:      v.Name,
				Type:      typeToString(member.Type.Name, dims),
				Offset:    offset,
				Size:      memberLayout.Size,
				Alignment: memberLayout.Alignment,
				Layout:    lc.GetStructLayout(member.Type.Name),
			}
			layout.Fields = append(layout.Fields, field)

			offset += memberLayout.Size
			if memberLayout.Alignment > maxAlign {
				maxAlign = memberLayout.Alignment
			}
		}
	}

	layout.Alignment = roundUp(maxAlign, vec4Align)
	layout.Size = roundUp(offset, layout.Alignment)
	return layout
}

// typeToString renders a type with its array sizes, e.g. "vec3[4]".
func typeToString(name string, dims []ast.Expr) string {
	s := name
	for _, d := range dims {
		if n := evaluateConstExpr(d); n >= 0 {
			s += "[" + strconv.Itoa(n) + "]"
		} else {
			s += "[]"
		}
	}
	return s
}

func roundUp(n, align int) int {
	if align <= 0 {
		return n
	}
	return (n + align - 1) / align * align
}
