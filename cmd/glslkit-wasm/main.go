//go:build js && wasm

// Command glslkit-wasm is the WebAssembly build of the GLSL toolchain.
// It exposes transformation and reflection to JavaScript via syscall/js.
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/HugoDaniel/glslkit/pkg/api"
)

var version = "0.1.0"

// jsOptions mirrors the JavaScript options object.
type jsOptions struct {
	Pipeline          *string  `json:"pipeline"`
	Param             *string  `json:"param"`
	Dialect           *string  `json:"dialect"`
	MinifyWhitespace  *bool    `json:"minifyWhitespace"`
	MinifyIdentifiers *bool    `json:"minifyIdentifiers"`
	KeepNames         []string `json:"keepNames"`
	SourceMap         *bool    `json:"sourceMap"`
	SourceName        *string  `json:"sourceName"`
}

func main() {
	js.Global().Set("__glslkit", js.ValueOf(map[string]interface{}{
		"transform": js.FuncOf(transformJS),
		"reflect":   js.FuncOf(reflectJS),
		"version":   version,
	}))

	// Keep the Go runtime alive
	select {}
}

// transformJS is the JavaScript-callable transform function.
// Signature: __glslkit.transform(source: string, options?: object) => object
func transformJS(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("transform requires at least 1 argument (source)")
	}

	source := args[0].String()

	var opts api.TransformOptions
	if len(args) > 1 && !args[1].IsUndefined() && !args[1].IsNull() {
		jsOpts, err := parseOptions(args[1])
		if err != nil {
			return makeError("invalid options: " + err.Error())
		}
		if jsOpts.Pipeline != nil {
			opts.Passes = *jsOpts.Pipeline
		}
		if jsOpts.Param != nil {
			opts.Param = *jsOpts.Param
		}
		if jsOpts.Dialect != nil {
			opts.Dialect = *jsOpts.Dialect
		}
		if jsOpts.MinifyWhitespace != nil {
			opts.MinifyWhitespace = *jsOpts.MinifyWhitespace
		}
		if jsOpts.MinifyIdentifiers != nil {
			opts.MinifyIdentifiers = *jsOpts.MinifyIdentifiers
		}
		opts.KeepNames = jsOpts.KeepNames
		if jsOpts.SourceMap != nil {
			opts.SourceMap = *jsOpts.SourceMap
		}
		if jsOpts.SourceName != nil {
			opts.SourceName = *jsOpts.SourceName
		}
	}

	result := api.Transform(source, opts)

	errors := make([]interface{}, len(result.Errors))
	for i, e := range result.Errors {
		errors[i] = e
	}

	return map[string]interface{}{
		"code":       result.Code,
		"errors":     errors,
		"sourceMap":  result.SourceMap,
		"inputSize":  result.InputSize,
		"outputSize": result.OutputSize,
	}
}

// reflectJS returns the declaration information of a source as a JSON
// string. Signature: __glslkit.reflect(source: string) => string
func reflectJS(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("reflect requires 1 argument (source)")
	}
	data, err := json.Marshal(api.Reflect(args[0].String()))
	if err != nil {
		return makeError(err.Error())
	}
	return string(data)
}

// parseOptions extracts options from a JS object.
func parseOptions(jsVal js.Value) (jsOptions, error) {
	var opts jsOptions
	jsonStr := js.Global().Get("JSON").Call("stringify", jsVal).String()
	err := json.Unmarshal([]byte(jsonStr), &opts)
	return opts, err
}

// makeError creates a result object with an error.
func makeError(msg string) interface{} {
	return map[string]interface{}{
		"code":       "",
		"errors":     []interface{}{msg},
		"sourceMap":  "",
		"inputSize":  0,
		"outputSize": 0,
	}
}
