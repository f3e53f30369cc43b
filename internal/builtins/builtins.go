// Package builtins defines the GLSL built-in functions known to the toolchain.
//
// Built-ins are identified by name only. Each entry records how the result
// type of a call is derived from its arguments, and which JavaScript
// namespace a call is routed to by the code generator.
package builtins

// BuiltinKind identifies how the result type of a call is computed.
type BuiltinKind uint8

const (
	// BuiltinOverloaded returns the type of the first vector-valued argument,
	// or the first argument's type when no argument is a vector.
	BuiltinOverloaded BuiltinKind = iota
	// BuiltinFixed always returns the same type.
	BuiltinFixed
	// BuiltinRelational compares component-wise and returns a bool vector
	// shaped like its first argument.
	BuiltinRelational
	// BuiltinOpaque is known to the code generator but has no type rule.
	BuiltinOpaque
)

// Namespace is the JavaScript object a built-in call is routed to.
type Namespace uint8

const (
	NamespaceNone Namespace = iota
	NamespaceMath           // Math.<name>
	NamespaceGLM            // glm.<name>
)

func (n Namespace) String() string {
	switch n {
	case NamespaceMath:
		return "Math"
	case NamespaceGLM:
		return "glm"
	}
	return ""
}

// Builtin represents a built-in function.
type Builtin struct {
	Name      string
	Kind      BuiltinKind
	Return    string // result type name for BuiltinFixed
	Namespace Namespace
}

// Table maps builtin function names to their definitions.
var Table = make(map[string]*Builtin)

func init() {
	registerOverloaded()
	registerFixed()
	registerRelational()
	registerNamespaces()
}

// Lookup returns the builtin function with the given name, or nil.
func Lookup(name string) *Builtin {
	return Table[name]
}

// IsBuiltin returns true if the name is a builtin function with a type rule.
func IsBuiltin(name string) bool {
	b := Table[name]
	return b != nil && b.Kind != BuiltinOpaque
}

// NamespaceOf returns the JavaScript namespace for a call head. Type
// constructors are routed through glm.
func NamespaceOf(name string) Namespace {
	if b := Table[name]; b != nil {
		return b.Namespace
	}
	return NamespaceNone
}

// register adds a builtin to the table, keeping an existing namespace.
func register(b *Builtin) {
	if old := Table[b.Name]; old != nil {
		b.Namespace = old.Namespace
	}
	Table[b.Name] = b
}

// ----------------------------------------------------------------------------
// Type rules
// ----------------------------------------------------------------------------

var overloaded = []string{
	"radians", "degrees",
	"sin", "cos", "tan", "asin", "acos", "atan", "atan2",
	"sinh", "cosh", "tanh",
	"sqrt", "cbrt", "pow", "exp", "exp2", "log", "log2", "inversesqrt",
	"trunc", "floor", "ceil", "round", "mod", "fract",
	"min", "max", "clamp", "mix", "step", "smoothstep",
	"abs", "sign",
	"normalize", "faceforward", "reflect", "refract",
	"not", "frexp", "ldexp",
}

func registerOverloaded() {
	for _, name := range overloaded {
		register(&Builtin{Name: name, Kind: BuiltinOverloaded})
	}
}

func registerFixed() {
	register(&Builtin{Name: "cross", Kind: BuiltinFixed, Return: "vec3"})
	for _, name := range []string{"dot", "length", "distance", "determinant"} {
		register(&Builtin{Name: name, Kind: BuiltinFixed, Return: "float"})
	}
	register(&Builtin{Name: "any", Kind: BuiltinFixed, Return: "bool"})
	register(&Builtin{Name: "all", Kind: BuiltinFixed, Return: "bool"})
}

func registerRelational() {
	for _, name := range []string{
		"equal", "notEqual",
		"lessThan", "lessThanEqual",
		"greaterThan", "greaterThanEqual",
	} {
		register(&Builtin{Name: name, Kind: BuiltinRelational})
	}
}

// ----------------------------------------------------------------------------
// JavaScript routing
// ----------------------------------------------------------------------------

var mathFunctions = []string{
	"PI",
	"trunc", "floor", "ceil", "round",
	"sqrt", "cbrt", "pow", "exp", "log", "log2",
	"sin", "cos", "tan",
	"asin", "acos", "atan", "atan2",
	"sinh", "cosh", "tanh",
	"asinh", "acosh", "atanh",
	"max", "min",
}

var glmFunctions = []string{
	"radians", "degrees",
	"sqrt", "fract",
	"min", "max",
	"abs", "sign",
	"mix", "clamp",
	"length", "distance", "dot", "cross", "normalize",
	"equal",
	"any", "all", "not",
	"frexp", "ldexp",
	"mat2", "mat3", "mat4",
	"vec2", "vec3", "vec4",
	"uvec2", "uvec3", "uvec4",
	"ivec2", "ivec3", "ivec4",
	"bvec2", "bvec3", "bvec4",
}

func registerNamespaces() {
	for _, name := range mathFunctions {
		setNamespace(name, NamespaceMath)
	}
	// glm wins over Math for names in both lists
	for _, name := range glmFunctions {
		setNamespace(name, NamespaceGLM)
	}
}

func setNamespace(name string, ns Namespace) {
	b := Table[name]
	if b == nil {
		b = &Builtin{Name: name, Kind: BuiltinOpaque}
		Table[name] = b
	}
	b.Namespace = ns
}

// ----------------------------------------------------------------------------
// Derivative rules
// ----------------------------------------------------------------------------

// ChainRule maps a single-argument built-in g to the built-in computing
// g'(u), so that d/dx g(u) = g'(u) * du.
var ChainRule = map[string]string{
	"sin":    "cos",
	"length": "normalize",
	"exp":    "exp",
	"sinh":   "cosh",
	"cosh":   "sinh",
}
