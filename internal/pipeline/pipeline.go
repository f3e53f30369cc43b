// Package pipeline runs the toolchain over one source file.
//
// It coordinates parsing, scope construction, the transformation passes and
// rendering to produce GLSL or JavaScript output.
package pipeline

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/codegen"
	"github.com/HugoDaniel/glslkit/internal/derivative"
	"github.com/HugoDaniel/glslkit/internal/diagnostic"
	"github.com/HugoDaniel/glslkit/internal/js"
	"github.com/HugoDaniel/glslkit/internal/parser"
	"github.com/HugoDaniel/glslkit/internal/printer"
	"github.com/HugoDaniel/glslkit/internal/renamer"
	"github.com/HugoDaniel/glslkit/internal/simplify"
	"github.com/HugoDaniel/glslkit/internal/sourcemap"
	"github.com/HugoDaniel/glslkit/internal/types"
)

var log = commonlog.GetLogger("glslkit.pipeline")

// Pass is one transformation step.
type Pass string

const (
	Simplify      Pass = "simplify"
	Differentiate Pass = "differentiate"
	JS            Pass = "js"
)

// ParsePasses splits a comma-separated pass list. An empty list is valid
// and means parse and re-render.
func ParsePasses(list string) ([]Pass, error) {
	var passes []Pass
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		switch p := Pass(name); p {
		case Simplify, Differentiate, JS:
			passes = append(passes, p)
		default:
			return nil, errors.Errorf("unknown pass %q", name)
		}
	}
	return passes, nil
}

// Options controls which passes run and how the result is rendered.
type Options struct {
	// Passes run in order after parsing. JS, if present, must be last.
	Passes []Pass

	// Param is the parameter to differentiate with respect to. Empty means
	// each function's first parameter.
	Param string

	// Dialect selects the code generator used by the JS pass.
	Dialect codegen.Dialect

	// MinifyWhitespace renders GLSL output without optional whitespace.
	MinifyWhitespace bool

	// MinifyIdentifiers renders GLSL output with short parameter and local
	// names. KeepNames lists locals that are never renamed.
	MinifyIdentifiers bool
	KeepNames         []string

	// SourceMap builds a source map for JavaScript output, naming the
	// input SourceName.
	SourceMap  bool
	SourceName string
}

// DefaultOptions returns options that parse and re-render the input.
func DefaultOptions() Options {
	return Options{Dialect: codegen.JavaScript}
}

// Validate reports an error for an unusable pass order.
func (o Options) Validate() error {
	for i, p := range o.Passes {
		if p == JS && i != len(o.Passes)-1 {
			return errors.New("the js pass must be the last pass")
		}
	}
	return nil
}

// Result contains the output of a run.
type Result struct {
	// Code is the rendered output. Empty when Errors is not.
	Code string

	// File is the GLSL tree the last GLSL pass produced, for snapshots.
	File *ast.File

	// Errors encountered while processing the file.
	Errors []Error

	// Err is the first failure, with its pass context.
	Err error

	// SourceMap maps Code back to the input. Set only for JavaScript output
	// when Options.SourceMap is.
	SourceMap *sourcemap.Map

	Stats Stats
}

// Error is a positioned failure.
type Error struct {
	Message string
	Line    int
	Column  int
}

// Stats describes a run.
type Stats struct {
	InputSize  int
	OutputSize int
	Functions  int
	Elapsed    time.Duration
}

// Pipeline runs a fixed set of passes.
type Pipeline struct {
	options Options
}

// New creates a pipeline with the given options.
func New(options Options) *Pipeline {
	return &Pipeline{options: options}
}

// Run is a convenience for New(opts).Run(source).
func Run(source string, opts Options) Result {
	return New(opts).Run(source)
}

// Run processes source.
func (p *Pipeline) Run(source string) Result {
	start := time.Now()
	result := Result{Stats: Stats{InputSize: len(source)}}

	fail := func(err error) Result {
		dl := diagnostic.NewDiagnosticList(source)
		dl.AddError(err)
		for _, d := range dl.Diagnostics() {
			result.Errors = append(result.Errors, Error{
				Message: d.Message,
				Line:    d.Range.Start.Line,
				Column:  d.Range.Start.Column,
			})
		}
		result.Err = err
		result.Code = ""
		return result
	}

	if err := p.options.Validate(); err != nil {
		return fail(err)
	}

	file, err := parser.Parse(source)
	if err != nil {
		return fail(err)
	}

	var prog *js.Program
	for _, pass := range p.options.Passes {
		passStart := time.Now()
		switch pass {
		case Simplify:
			file = simplify.File(file)
		case Differentiate:
			file, err = derivative.File(file, derivative.Options{Param: p.options.Param})
		case JS:
			// Scopes are built from the tree the previous pass produced.
			prog, err = codegen.Generate(file, types.BuildScope(file), p.options.Dialect)
		default:
			err = errors.Errorf("unknown pass %q", pass)
		}
		if err != nil {
			return fail(errors.Wrapf(err, "%s", pass))
		}
		log.Debugf("%s: %s", pass, time.Since(passStart))
	}

	result.File = file
	result.Stats.Functions = len(file.Functions())
	switch {
	case prog != nil && p.options.SourceMap:
		b := sourcemap.NewBuilder(source)
		result.Code = js.PrintMapped(prog, b)
		result.SourceMap = b.Build(sourcemap.Options{SourceName: p.options.SourceName, IncludeContent: true})
	case prog != nil:
		result.Code = js.Print(prog)
	default:
		if p.options.MinifyIdentifiers {
			file = renamer.File(file, renamer.Options{KeepNames: p.options.KeepNames})
		}
		result.Code = printer.New(printer.Options{MinifyWhitespace: p.options.MinifyWhitespace}).Print(file)
	}
	result.Stats.OutputSize = len(result.Code)
	result.Stats.Elapsed = time.Since(start)
	return result
}
