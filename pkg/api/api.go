// Package api provides the public API for the GLSL toolchain.
//
// This package is intended for programmatic use of the toolchain.
// For CLI usage, see cmd/glslkit.
package api

import (
	"strconv"

	"github.com/HugoDaniel/glslkit/internal/codegen"
	"github.com/HugoDaniel/glslkit/internal/pipeline"
	"github.com/HugoDaniel/glslkit/internal/reflect"
	"github.com/HugoDaniel/glslkit/internal/snapshot"
)

// TransformOptions controls which passes run.
type TransformOptions struct {
	// Passes is a comma-separated list of "simplify", "differentiate" and
	// "js". An empty list parses and re-renders the source.
	Passes string

	// Param is the parameter to differentiate with respect to.
	// Empty means each function's first parameter.
	Param string

	// Dialect names the code generation target. Empty means JavaScript.
	Dialect string

	// MinifyWhitespace renders GLSL output without optional whitespace.
	MinifyWhitespace bool

	// MinifyIdentifiers shortens parameter and local names in GLSL output.
	// Names in KeepNames are preserved.
	MinifyIdentifiers bool
	KeepNames         []string

	// SourceMap requests a source map for JavaScript output. SourceName is
	// the input file name recorded in it.
	SourceMap  bool
	SourceName string
}

// TransformResult contains the output of a transformation.
type TransformResult struct {
	// Code is the rendered GLSL or JavaScript source.
	// Empty when Errors is not.
	Code string

	// Errors contains the failures as "line:col: kind: message".
	Errors []string

	// InputSize is the size of the input in bytes.
	InputSize int

	// OutputSize is the size of the output in bytes.
	OutputSize int

	// SourceMap is the Source Map v3 JSON for JavaScript output, when
	// requested.
	SourceMap string
}

// Transform runs the given passes over GLSL source code.
func Transform(source string, opts TransformOptions) TransformResult {
	passes, err := pipeline.ParsePasses(opts.Passes)
	if err != nil {
		return TransformResult{Errors: []string{err.Error()}, InputSize: len(source)}
	}
	dialect, err := codegen.ParseDialect(opts.Dialect)
	if err != nil {
		return TransformResult{Errors: []string{err.Error()}, InputSize: len(source)}
	}

	result := pipeline.Run(source, pipeline.Options{
		Passes:            passes,
		Param:             opts.Param,
		Dialect:           dialect,
		MinifyWhitespace:  opts.MinifyWhitespace,
		MinifyIdentifiers: opts.MinifyIdentifiers,
		KeepNames:         opts.KeepNames,
		SourceMap:         opts.SourceMap,
		SourceName:        opts.SourceName,
	})

	errors := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		errors[i] = formatError(e)
	}

	out := TransformResult{
		Code:       result.Code,
		Errors:     errors,
		InputSize:  result.Stats.InputSize,
		OutputSize: result.Stats.OutputSize,
	}
	if result.SourceMap != nil {
		data, err := result.SourceMap.JSON()
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			return out
		}
		out.SourceMap = string(data)
	}
	return out
}

func formatError(e pipeline.Error) string {
	return strconv.Itoa(e.Line) + ":" + strconv.Itoa(e.Column) + ": " + e.Message
}

// Simplify applies the algebraic simplification pass.
func Simplify(source string) TransformResult {
	return Transform(source, TransformOptions{Passes: "simplify"})
}

// Differentiate follows every function with its derivative with respect to
// param, then simplifies the result.
func Differentiate(source, param string) TransformResult {
	return Transform(source, TransformOptions{Passes: "differentiate,simplify", Param: param})
}

// ToJS translates GLSL source to JavaScript.
func ToJS(source string) TransformResult {
	return Transform(source, TransformOptions{Passes: "js"})
}

// ----------------------------------------------------------------------------
// Snapshot API
// ----------------------------------------------------------------------------

// Snapshot returns the canonical CBOR encoding of the GLSL tree produced by
// the given passes. A "js" pass is ignored: snapshots are of GLSL trees.
func Snapshot(source string, opts TransformOptions) ([]byte, []string) {
	passes, err := pipeline.ParsePasses(opts.Passes)
	if err != nil {
		return nil, []string{err.Error()}
	}
	glsl := passes[:0:0]
	for _, p := range passes {
		if p != pipeline.JS {
			glsl = append(glsl, p)
		}
	}

	result := pipeline.Run(source, pipeline.Options{Passes: glsl, Param: opts.Param})
	if len(result.Errors) > 0 {
		errors := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			errors[i] = formatError(e)
		}
		return nil, errors
	}
	data, err := snapshot.Marshal(result.File)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return data, nil
}

// ----------------------------------------------------------------------------
// Reflection API
// ----------------------------------------------------------------------------

// ReflectResult contains declaration information from a GLSL file.
type ReflectResult = reflect.ReflectResult

// Reflect extracts interface variables, std140 struct layouts and function
// signatures from GLSL source.
func Reflect(source string) ReflectResult {
	return reflect.Reflect(source)
}

// Minify renders GLSL source with whitespace removed and parameters and
// locals renamed.
func Minify(source string) TransformResult {
	return Transform(source, TransformOptions{MinifyWhitespace: true, MinifyIdentifiers: true})
}
