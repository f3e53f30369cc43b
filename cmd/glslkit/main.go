// Command glslkit transforms GLSL shader source code.
//
// Usage:
//
//	glslkit [options] <input.glsl>
//	cat input.glsl | glslkit [options]
//
// Options:
//
//	-f <file>            Read input from file
//	-i                   Edit the input file in place
//	-v                   Print a diff against the input instead of the output
//	-pipeline <passes>   Comma-separated passes: simplify, differentiate, js
//	-param <name>        Parameter to differentiate with respect to
//	-dialect <name>      Code generation target for the js pass
//	-minify              Render GLSL without optional whitespace
//	-minify-identifiers  Shorten parameter and local names in GLSL output
//	-keep-names <names>  Comma-separated local names to preserve
//	-o <file>            Write output to file (default: stdout)
//	-source-map <file>   Write a source map for JavaScript output ("inline" embeds it)
//	-emit-ast <file>     Write a CBOR snapshot of the final GLSL tree
//	-reflect             Print declaration information as JSON
//	-config <file>       Use specific config file
//	-no-config           Ignore config files
//	-log-level <n>       Log verbosity
//	-version             Print version and exit
//	-help                Print help and exit
//
// Config file:
//
//	glslkit looks for glslkit.toml or .glslkit.toml in the input's directory
//	and its parents. Config file options are overridden by CLI flags.
//
// Example glslkit.toml:
//
//	pipeline = ["differentiate", "simplify"]
//	param = "t"
//	log-level = 1
//	minify-identifiers = true
//	keep-names = ["uv"]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/HugoDaniel/glslkit/internal/config"
	"github.com/HugoDaniel/glslkit/internal/diagnostic"
	"github.com/HugoDaniel/glslkit/internal/pipeline"
	"github.com/HugoDaniel/glslkit/internal/reflect"
	"github.com/HugoDaniel/glslkit/internal/snapshot"
	"github.com/HugoDaniel/glslkit/internal/sourcemap"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

var log = commonlog.GetLogger("glslkit")

// errReported marks a failure whose diagnostics were already printed.
var errReported = errors.New("failed")

func main() {
	if err := run(); err != nil {
		if err != errReported {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	var (
		inputFile   string
		inPlace     bool
		showDiff    bool
		passList    string
		param       string
		dialect     string
		minify      bool
		minifyIdent bool
		keepNames   string
		outputFile  string
		sourceMap   string
		emitAST     string
		showReflect bool
		configFile  string
		noConfig    bool
		logLevel    int
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&inputFile, "f", "", "Read input from `file`")
	flag.BoolVar(&inPlace, "i", false, "Edit the input file in place")
	flag.BoolVar(&showDiff, "v", false, "Print a diff against the input")
	flag.StringVar(&passList, "pipeline", "", "Comma-separated `passes`: simplify, differentiate, js")
	flag.StringVar(&param, "param", "", "Parameter to differentiate with respect to")
	flag.StringVar(&dialect, "dialect", "", "Code generation target for the js pass")
	flag.BoolVar(&minify, "minify", false, "Render GLSL without optional whitespace")
	flag.BoolVar(&minifyIdent, "minify-identifiers", false, "Shorten parameter and local names in GLSL output")
	flag.StringVar(&keepNames, "keep-names", "", "Comma-separated local `names` to preserve")
	flag.StringVar(&outputFile, "o", "", "Write output to `file`")
	flag.StringVar(&sourceMap, "source-map", "", "Write a source map for JavaScript output to `file` (\"inline\" embeds it)")
	flag.StringVar(&emitAST, "emit-ast", "", "Write a CBOR snapshot of the final GLSL tree to `file`")
	flag.BoolVar(&showReflect, "reflect", false, "Print declaration information as JSON")
	flag.StringVar(&configFile, "config", "", "Use specific config `file`")
	flag.BoolVar(&noConfig, "no-config", false, "Ignore config files")
	flag.IntVar(&logLevel, "log-level", 0, "Log verbosity")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&showHelp, "help", false, "Print help and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "glslkit - GLSL toolchain v%s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: glslkit [options] <input.glsl>\n")
		fmt.Fprintf(os.Stderr, "       cat input.glsl | glslkit [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfig file:\n")
		fmt.Fprintf(os.Stderr, "  Searches for glslkit.toml or .glslkit.toml in the input's and parent directories.\n")
		fmt.Fprintf(os.Stderr, "  CLI flags override config file settings.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  glslkit -pipeline differentiate,simplify shader.glsl\n")
		fmt.Fprintf(os.Stderr, "  glslkit -pipeline simplify -i -v shader.glsl\n")
		fmt.Fprintf(os.Stderr, "  cat shader.glsl | glslkit -pipeline js > shader.js\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		return nil
	}

	if showVersion {
		fmt.Printf("glslkit v%s (%s)\n", version, commit)
		return nil
	}

	if inputFile == "" && flag.NArg() > 0 {
		inputFile = flag.Arg(0)
	}
	if inPlace && inputFile == "" {
		return errors.New("-i needs an input file")
	}

	// Read input
	var source []byte
	var err error
	name := "<stdin>"

	if inputFile != "" {
		source, err = os.ReadFile(inputFile)
		if err != nil {
			return errors.Wrap(err, "reading input")
		}
		name = inputFile
	} else {
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			flag.Usage()
			return errors.New("no input file specified")
		}
		source, err = io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "reading stdin")
		}
	}

	// Load config file
	var cfg *config.Config
	var configPath string
	if !noConfig {
		if configFile != "" {
			cfg, err = config.LoadFile(configFile)
			if err != nil {
				return errors.Wrapf(err, "loading config file %s", configFile)
			}
			configPath = configFile
		} else {
			startDir, _ := os.Getwd()
			if inputFile != "" {
				startDir = filepath.Dir(inputFile)
			}
			cfg, configPath, err = config.Load(startDir)
			if err != nil {
				return errors.Wrap(err, "loading config")
			}
		}
	}

	// Only flags given on the command line override the config file.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	verbosity := cfg.Verbosity(logLevel)
	if set["log-level"] {
		verbosity = logLevel
	}
	commonlog.Configure(verbosity, nil)
	if configPath != "" {
		log.Infof("using config %s", configPath)
	}

	cli := config.MergeOptions{}
	if set["pipeline"] {
		cli.Pipeline = &passList
	}
	if set["param"] {
		cli.Param = &param
	}
	if set["dialect"] {
		cli.Dialect = &dialect
	}
	if set["minify"] {
		cli.Minify = &minify
	}
	if set["minify-identifiers"] {
		cli.MinifyIdentifiers = &minifyIdent
	}
	if keepNames != "" {
		cli.KeepNames = strings.Split(keepNames, ",")
	}
	opts, err := cfg.Merge(cli)
	if err != nil {
		return err
	}
	if !set["v"] {
		showDiff = cfg.ShowDiff()
	}

	if showReflect {
		return writeReflect(string(source))
	}

	if sourceMap != "" {
		opts.SourceMap = true
		opts.SourceName = filepath.Base(name)
	}

	result := pipeline.New(opts).Run(string(source))
	if result.Err != nil {
		// The input file is left untouched.
		fmt.Fprint(os.Stderr, diagnostic.Format(name, string(source), result.Err))
		return errReported
	}
	log.Debugf("%s: %d -> %d bytes in %s", name, result.Stats.InputSize, result.Stats.OutputSize, result.Stats.Elapsed)

	if sourceMap != "" {
		if outputFile != "" && result.SourceMap != nil {
			result.SourceMap.File = filepath.Base(outputFile)
		}
		result.Code, err = attachSourceMap(result.Code, result.SourceMap, sourceMap)
		if err != nil {
			return err
		}
	}

	if emitAST != "" {
		data, err := snapshot.Marshal(result.File)
		if err != nil {
			return errors.Wrap(err, "encoding AST snapshot")
		}
		if err := os.WriteFile(emitAST, data, 0644); err != nil {
			return errors.Wrap(err, "writing AST snapshot")
		}
	}

	if showDiff {
		color := isatty.IsTerminal(os.Stdout.Fd())
		if err := writeDiff(os.Stdout, name, string(source), result.Code, color); err != nil {
			return errors.Wrap(err, "writing diff")
		}
	}

	switch {
	case inPlace:
		if err := os.WriteFile(inputFile, []byte(result.Code), 0644); err != nil {
			return errors.Wrap(err, "writing input file")
		}
	case outputFile != "":
		if err := os.WriteFile(outputFile, []byte(result.Code), 0644); err != nil {
			return errors.Wrap(err, "writing output file")
		}
	case !showDiff:
		if _, err := io.WriteString(os.Stdout, result.Code); err != nil {
			return errors.Wrap(err, "writing output")
		}
	}

	return nil
}

func writeReflect(source string) error {
	result := reflect.Reflect(source)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding reflection")
	}
	fmt.Println(string(data))
	if len(result.Errors) > 0 {
		return errReported
	}
	return nil
}

// attachSourceMap writes m to target, or embeds it when target is "inline",
// and appends the sourceMappingURL comment to code.
func attachSourceMap(code string, m *sourcemap.Map, target string) (string, error) {
	if m == nil {
		return "", errors.New("-source-map needs the js pass")
	}
	if target == "inline" {
		url, err := m.DataURL()
		if err != nil {
			return "", errors.Wrap(err, "encoding source map")
		}
		return code + sourcemap.Comment(url) + "\n", nil
	}
	data, err := m.JSON()
	if err != nil {
		return "", errors.Wrap(err, "encoding source map")
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", errors.Wrap(err, "writing source map")
	}
	return code + sourcemap.Comment(filepath.Base(target)) + "\n", nil
}
