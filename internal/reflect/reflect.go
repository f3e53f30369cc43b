// Package reflect provides GLSL shader reflection capabilities.
// It extracts interface variables, std140 struct layouts and function
// signatures from GLSL source code.
package reflect

import (
	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/derivative"
	"github.com/HugoDaniel/glslkit/internal/parser"
	"github.com/HugoDaniel/glslkit/internal/types"
)

// ReflectResult contains all reflection information for a file.
type ReflectResult struct {
	Variables []VariableInfo          `json:"variables"`
	Structs   map[string]StructLayout `json:"structs"`
	Functions []FunctionInfo          `json:"functions"`
	Errors    []string                `json:"errors,omitempty"`
}

// VariableInfo describes a global declaration with a storage qualifier.
type VariableInfo struct {
	Name       string        `json:"name"`
	Storage    string        `json:"storage"` // "uniform", "attribute", "varying", "in", "out", "const"
	Qualifiers []string      `json:"qualifiers,omitempty"`
	Type       string        `json:"type"`
	Layout     *StructLayout `json:"layout"` // null unless a uniform struct
}

// StructLayout describes the std140 memory layout of a struct.
type StructLayout struct {
	Size      int         `json:"size"`
	Alignment int         `json:"alignment"`
	Fields    []FieldInfo `json:"fields"`
}

// FieldInfo describes a single struct field.
type FieldInfo struct {
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	Offset    int           `json:"offset"`
	Size      int           `json:"size"`
	Alignment int           `json:"alignment"`
	Layout    *StructLayout `json:"layout,omitempty"` // for nested structs
}

// FunctionInfo describes a function signature.
type FunctionInfo struct {
	Name       string      `json:"name"`
	ReturnType string      `json:"returnType"`
	Params     []ParamInfo `json:"params"`

	// Derivative names the function the differentiate pass would emit for
	// the first parameter, and DerivativeType its return type. Both are
	// empty when the pair has no component-wise derivative.
	Derivative     string `json:"derivative,omitempty"`
	DerivativeType string `json:"derivativeType,omitempty"`
}

// ParamInfo describes a function parameter.
type ParamInfo struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Qualifiers []string `json:"qualifiers,omitempty"`
}

var storageQualifiers = []string{"uniform", "attribute", "varying", "in", "out", "const"}

// Reflect extracts declaration information from GLSL source.
func Reflect(source string) ReflectResult {
	file, err := parser.Parse(source)
	if err != nil {
		return ReflectResult{
			Variables: []VariableInfo{},
			Structs:   make(map[string]StructLayout),
			Functions: []FunctionInfo{},
			Errors:    []string{err.Error()},
		}
	}
	return ReflectFile(file)
}

// ReflectFile extracts reflection information from a parsed file.
func ReflectFile(file *ast.File) ReflectResult {
	result := ReflectResult{
		Variables: []VariableInfo{},
		Structs:   make(map[string]StructLayout),
		Functions: []FunctionInfo{},
	}

	lc := NewLayoutComputer(file)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.StructDecl:
			result.Structs[d.Name] = *lc.computeStructLayout(d)

		case *ast.VarDecl:
			result.Variables = append(result.Variables, extractVariables(d, lc)...)

		case *ast.FunctionDecl:
			result.Functions = append(result.Functions, extractFunction(d))
		}
	}

	return result
}

// extractVariables returns one entry per declarator of a qualified global.
func extractVariables(d *ast.VarDecl, lc *LayoutComputer) []VariableInfo {
	storage := ""
	for _, q := range storageQualifiers {
		if d.HasQualifier(q) {
			storage = q
			break
		}
	}
	if storage == "" {
		return nil
	}

	var out []VariableInfo
	for _, v := range d.Vars {
		dims := append(append([]ast.Expr(nil), d.Type.Array...), v.Array...)
		info := VariableInfo{
			Name:       v.Name,
			Storage:    storage,
			Qualifiers: d.Qualifiers,
			Type:       typeToString(d.Type.Name, dims),
		}
		if storage == "uniform" {
			info.Layout = lc.GetStructLayout(d.Type.Name)
		}
		out = append(out, info)
	}
	return out
}

func extractFunction(fn *ast.FunctionDecl) FunctionInfo {
	info := FunctionInfo{
		Name:       fn.Name,
		ReturnType: typeToString(fn.ReturnType.Name, fn.ReturnType.Array),
		Params:     make([]ParamInfo, 0, len(fn.Params)),
	}
	for _, p := range fn.Params {
		dims := append(append([]ast.Expr(nil), p.Type.Array...), p.Array...)
		info.Params = append(info.Params, ParamInfo{
			Name:       p.Name,
			Type:       typeToString(p.Type.Name, dims),
			Qualifiers: p.Qualifiers,
		})
	}

	if len(fn.Params) > 0 {
		first := fn.Params[0]
		if dt, ok := derivative.ResultType(types.TypeOfDecl(fn), types.FromSpec(first.Type, first.Array)); ok {
			info.Derivative = derivative.Name(first.Name, fn.Name)
			info.DerivativeType = dt.String()
		}
	}
	return info
}
