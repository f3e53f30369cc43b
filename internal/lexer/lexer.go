// Package lexer provides tokenization for GLSL source code.
//
// The lexer converts a GLSL source string into a sequence of tokens,
// handling:
// - Keywords and qualifiers
// - Identifiers (type names are plain identifiers)
// - Numeric literals (int, float, hex, octal, with suffixes)
// - Operators and punctuation
// - Comments (line and block), kept as documentation when they directly
//   precede a token
// - Preprocessor directive lines, which are discarded
package lexer

// ----------------------------------------------------------------------------
// Token Types
// ----------------------------------------------------------------------------

// TokenKind represents the type of a token.
type TokenKind uint8

const (
	TokError TokenKind = iota
	TokEOF

	// Literals
	TokIntLiteral
	TokFloatLiteral
	TokTrue
	TokFalse

	// Identifiers
	TokIdent

	// Keywords
	TokAttribute
	TokBreak
	TokConst
	TokContinue
	TokDiscard
	TokDo
	TokElse
	TokFlat
	TokFor
	TokHighp
	TokIf
	TokIn
	TokInout
	TokLowp
	TokMediump
	TokOut
	TokPrecise
	TokReturn
	TokSmooth
	TokStruct
	TokUniform
	TokVarying
	TokWhile

	// Operators and punctuation
	TokAnd        // &
	TokAndAnd     // &&
	TokAndEq      // &=
	TokBang       // !
	TokBangEq     // !=
	TokColon      // :
	TokComma      // ,
	TokDot        // .
	TokEq         // =
	TokEqEq       // ==
	TokGt         // >
	TokGtEq       // >=
	TokGtGt       // >>
	TokLBrace     // {
	TokLBracket   // [
	TokLParen     // (
	TokLt         // <
	TokLtEq       // <=
	TokLtLt       // <<
	TokMinus      // -
	TokMinusEq    // -=
	TokMinusMinus // --
	TokOr         // |
	TokOrEq       // |=
	TokOrOr       // ||
	TokPercent    // %
	TokPercentEq  // %=
	TokPlus       // +
	TokPlusEq     // +=
	TokPlusPlus   // ++
	TokQuestion   // ?
	TokRBrace     // }
	TokRBracket   // ]
	TokRParen     // )
	TokSemicolon  // ;
	TokSlash      // /
	TokSlashEq    // /=
	TokStar       // *
	TokStarEq     // *=
	TokTilde      // ~
	TokXor        // ^
	TokXorEq      // ^=
	TokXorXor     // ^^
)

var tokenNames = [...]string{
	TokError:        "error",
	TokEOF:          "end of file",
	TokIntLiteral:   "int literal",
	TokFloatLiteral: "float literal",
	TokTrue:         "true",
	TokFalse:        "false",
	TokIdent:        "identifier",
	TokAttribute:    "attribute",
	TokBreak:        "break",
	TokConst:        "const",
	TokContinue:     "continue",
	TokDiscard:      "discard",
	TokDo:           "do",
	TokElse:         "else",
	TokFlat:         "flat",
	TokFor:          "for",
	TokHighp:        "highp",
	TokIf:           "if",
	TokIn:           "in",
	TokInout:        "inout",
	TokLowp:         "lowp",
	TokMediump:      "mediump",
	TokOut:          "out",
	TokPrecise:      "precise",
	TokReturn:       "return",
	TokSmooth:       "smooth",
	TokStruct:       "struct",
	TokUniform:      "uniform",
	TokVarying:      "varying",
	TokWhile:        "while",
	TokAnd:          "&",
	TokAndAnd:       "&&",
	TokAndEq:        "&=",
	TokBang:         "!",
	TokBangEq:       "!=",
	TokColon:        ":",
	TokComma:        ",",
	TokDot:          ".",
	TokEq:           "=",
	TokEqEq:         "==",
	TokGt:           ">",
	TokGtEq:         ">=",
	TokGtGt:         ">>",
	TokLBrace:       "{",
	TokLBracket:     "[",
	TokLParen:       "(",
	TokLt:           "<",
	TokLtEq:         "<=",
	TokLtLt:         "<<",
	TokMinus:        "-",
	TokMinusEq:      "-=",
	TokMinusMinus:   "--",
	TokOr:           "|",
	TokOrEq:         "|=",
	TokOrOr:         "||",
	TokPercent:      "%",
	TokPercentEq:    "%=",
	TokPlus:         "+",
	TokPlusEq:       "+=",
	TokPlusPlus:     "++",
	TokQuestion:     "?",
	TokRBrace:       "}",
	TokRBracket:     "]",
	TokRParen:       ")",
	TokSemicolon:    ";",
	TokSlash:        "/",
	TokSlashEq:      "/=",
	TokStar:         "*",
	TokStarEq:       "*=",
	TokTilde:        "~",
	TokXor:          "^",
	TokXorEq:        "^=",
	TokXorXor:       "^^",
}

// String returns the string representation of a token kind.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return "unknown"
}

// IsQualifier reports whether the token kind is a storage, parameter,
// precision or interpolation qualifier.
func (k TokenKind) IsQualifier() bool {
	switch k {
	case TokConst, TokUniform, TokAttribute, TokVarying, TokIn, TokOut, TokInout,
		TokHighp, TokMediump, TokLowp, TokPrecise, TokFlat, TokSmooth:
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Token
// ----------------------------------------------------------------------------

// Token represents a lexical token.
type Token struct {
	Kind  TokenKind
	Start int    // Byte offset in source
	End   int    // Byte offset of end (exclusive)
	Value string // For identifiers, keywords and literals

	// Comments holds the contiguous comment block that ends on the line
	// directly above (or on the same line as) this token.
	Comments []string
}

// Text returns the source text of the token.
func (t Token) Text(source string) string {
	if t.Start >= 0 && t.End <= len(source) {
		return source[t.Start:t.End]
	}
	return ""
}

// ----------------------------------------------------------------------------
// Keywords
// ----------------------------------------------------------------------------

// Keywords maps keyword strings to their token kinds.
var Keywords = map[string]TokenKind{
	"attribute": TokAttribute,
	"break":     TokBreak,
	"const":     TokConst,
	"continue":  TokContinue,
	"discard":   TokDiscard,
	"do":        TokDo,
	"else":      TokElse,
	"false":     TokFalse,
	"flat":      TokFlat,
	"for":       TokFor,
	"highp":     TokHighp,
	"if":        TokIf,
	"in":        TokIn,
	"inout":     TokInout,
	"lowp":      TokLowp,
	"mediump":   TokMediump,
	"out":       TokOut,
	"precise":   TokPrecise,
	"return":    TokReturn,
	"smooth":    TokSmooth,
	"struct":    TokStruct,
	"true":      TokTrue,
	"uniform":   TokUniform,
	"varying":   TokVarying,
	"while":     TokWhile,
}

// ----------------------------------------------------------------------------
// Lexer
// ----------------------------------------------------------------------------

// Lexer tokenizes GLSL source code.
type Lexer struct {
	source string
	pos    int
	start  int
	tokens []Token

	// Comment block collected since the previous token, and the number of
	// line breaks seen after its last comment.
	comments       []string
	breaksSinceDoc int
	afterToken     bool
}

// New creates a new lexer for the given source.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		tokens: make([]Token, 0, len(source)/4), // Estimate
	}
}

// Tokenize returns all tokens in the source.
func (l *Lexer) Tokenize() []Token {
	for {
		tok := l.Next()
		l.tokens = append(l.tokens, tok)
		if tok.Kind == TokEOF || tok.Kind == TokError {
			break
		}
	}
	return l.tokens
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	l.comments = nil
	l.breaksSinceDoc = 0
	if errTok, failed := l.skipWhitespaceAndComments(); failed {
		return errTok
	}

	if l.pos >= len(l.source) {
		return Token{Kind: TokEOF, Start: l.pos, End: l.pos}
	}

	l.start = l.pos
	ch := l.source[l.pos]

	var tok Token
	switch {
	case isIdentStart(ch):
		tok = l.scanIdentOrKeyword()
	case isDigit(ch) || (ch == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1])):
		tok = l.scanNumber()
	default:
		tok = l.scanOperator()
	}

	// A blank line between the comments and the token detaches them.
	if len(l.comments) > 0 && l.breaksSinceDoc < 2 {
		tok.Comments = l.comments
	}
	l.afterToken = true
	return tok
}

// ----------------------------------------------------------------------------
// Scanning Helpers
// ----------------------------------------------------------------------------

func (l *Lexer) skipWhitespaceAndComments() (Token, bool) {
	atLineStart := l.pos == 0 || l.source[l.pos-1] == '\n'
	for l.pos < len(l.source) {
		ch := l.source[l.pos]

		if ch == '\n' {
			l.pos++
			l.breaksSinceDoc++
			atLineStart = true
			continue
		}

		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f' {
			l.pos++
			continue
		}

		// Preprocessor directive: discarded along with its continuation lines
		if ch == '#' && atLineStart {
			l.skipDirective()
			l.comments = nil
			continue
		}

		// Line comment
		if ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '/' {
			start := l.pos
			l.pos += 2
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.pos++
			}
			l.addComment(l.source[start:l.pos])
			continue
		}

		// Block comment
		if ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '*' {
			start := l.pos
			l.pos += 2
			closed := false
			for l.pos+1 < len(l.source) {
				if l.source[l.pos] == '*' && l.source[l.pos+1] == '/' {
					l.pos += 2
					closed = true
					break
				}
				l.pos++
			}
			if !closed {
				l.pos = len(l.source)
				return Token{Kind: TokError, Start: start, End: l.pos, Value: "unterminated block comment"}, true
			}
			l.addComment(l.source[start:l.pos])
			continue
		}

		break
	}
	return Token{}, false
}

func (l *Lexer) addComment(text string) {
	// Trailing comment on the previous token's line
	if len(l.comments) == 0 && l.breaksSinceDoc == 0 && l.afterToken {
		return
	}
	if l.breaksSinceDoc >= 2 {
		l.comments = nil
	}
	l.comments = append(l.comments, text)
	l.breaksSinceDoc = 0
}

func (l *Lexer) skipDirective() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == '\\' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '\n' {
			l.pos += 2
			continue
		}
		if ch == '\\' && l.pos+2 < len(l.source) && l.source[l.pos+1] == '\r' && l.source[l.pos+2] == '\n' {
			l.pos += 3
			continue
		}
		if ch == '\n' {
			return
		}
		l.pos++
	}
}

func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos
	for l.pos < len(l.source) && isIdentContinue(l.source[l.pos]) {
		l.pos++
	}

	text := l.source[start:l.pos]
	if kind, ok := Keywords[text]; ok {
		return Token{Kind: kind, Start: start, End: l.pos, Value: text}
	}
	return Token{Kind: TokIdent, Start: start, End: l.pos, Value: text}
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	kind := TokIntLiteral

	// Hex
	if l.pos+1 < len(l.source) && l.source[l.pos] == '0' &&
		(l.source[l.pos+1] == 'x' || l.source[l.pos+1] == 'X') {
		l.pos += 2
		digits := l.pos
		for l.pos < len(l.source) && isHexDigit(l.source[l.pos]) {
			l.pos++
		}
		if l.pos == digits {
			return Token{Kind: TokError, Start: start, End: l.pos, Value: "invalid hex literal"}
		}
		l.skipIntSuffix()
		return l.finishNumber(start, kind)
	}

	for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
		l.pos++
	}

	if l.pos < len(l.source) && l.source[l.pos] == '.' {
		kind = TokFloatLiteral
		l.pos++
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.pos++
		}
	}

	// Exponent
	if l.pos < len(l.source) && (l.source[l.pos] == 'e' || l.source[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.source) && (l.source[l.pos] == '+' || l.source[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			kind = TokFloatLiteral
			for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}

	if kind == TokFloatLiteral {
		l.skipFloatSuffix()
	} else if l.pos < len(l.source) && (l.source[l.pos] == 'f' || l.source[l.pos] == 'F') {
		// "1f" is a float in GLSL 4
		kind = TokFloatLiteral
		l.pos++
	} else {
		l.skipIntSuffix()
	}

	return l.finishNumber(start, kind)
}

func (l *Lexer) finishNumber(start int, kind TokenKind) Token {
	if l.pos < len(l.source) && isIdentContinue(l.source[l.pos]) {
		for l.pos < len(l.source) && isIdentContinue(l.source[l.pos]) {
			l.pos++
		}
		return Token{Kind: TokError, Start: start, End: l.pos, Value: "invalid numeric literal"}
	}
	return Token{Kind: kind, Start: start, End: l.pos, Value: l.source[start:l.pos]}
}

func (l *Lexer) skipIntSuffix() {
	if l.pos < len(l.source) && (l.source[l.pos] == 'u' || l.source[l.pos] == 'U') {
		l.pos++
	}
}

func (l *Lexer) skipFloatSuffix() {
	if l.pos+1 < len(l.source) {
		pair := l.source[l.pos : l.pos+2]
		if pair == "lf" || pair == "LF" {
			l.pos += 2
			return
		}
	}
	if l.pos < len(l.source) && (l.source[l.pos] == 'f' || l.source[l.pos] == 'F') {
		l.pos++
	}
}

func (l *Lexer) scanOperator() Token {
	start := l.pos
	ch := l.source[l.pos]
	l.pos++

	var next byte
	if l.pos < len(l.source) {
		next = l.source[l.pos]
	}

	single := func(kind TokenKind) Token {
		return Token{Kind: kind, Start: start, End: l.pos}
	}
	double := func(kind TokenKind) Token {
		l.pos++
		return Token{Kind: kind, Start: start, End: l.pos}
	}

	switch ch {
	case '+':
		if next == '+' {
			return double(TokPlusPlus)
		}
		if next == '=' {
			return double(TokPlusEq)
		}
		return single(TokPlus)

	case '-':
		if next == '-' {
			return double(TokMinusMinus)
		}
		if next == '=' {
			return double(TokMinusEq)
		}
		return single(TokMinus)

	case '*':
		if next == '=' {
			return double(TokStarEq)
		}
		return single(TokStar)

	case '/':
		if next == '=' {
			return double(TokSlashEq)
		}
		return single(TokSlash)

	case '%':
		if next == '=' {
			return double(TokPercentEq)
		}
		return single(TokPercent)

	case '&':
		if next == '&' {
			return double(TokAndAnd)
		}
		if next == '=' {
			return double(TokAndEq)
		}
		return single(TokAnd)

	case '|':
		if next == '|' {
			return double(TokOrOr)
		}
		if next == '=' {
			return double(TokOrEq)
		}
		return single(TokOr)

	case '^':
		if next == '^' {
			return double(TokXorXor)
		}
		if next == '=' {
			return double(TokXorEq)
		}
		return single(TokXor)

	case '!':
		if next == '=' {
			return double(TokBangEq)
		}
		return single(TokBang)

	case '=':
		if next == '=' {
			return double(TokEqEq)
		}
		return single(TokEq)

	case '<':
		if next == '<' {
			return double(TokLtLt)
		}
		if next == '=' {
			return double(TokLtEq)
		}
		return single(TokLt)

	case '>':
		if next == '>' {
			return double(TokGtGt)
		}
		if next == '=' {
			return double(TokGtEq)
		}
		return single(TokGt)

	case '~':
		return single(TokTilde)
	case '?':
		return single(TokQuestion)
	case ':':
		return single(TokColon)
	case ',':
		return single(TokComma)
	case '.':
		return single(TokDot)
	case ';':
		return single(TokSemicolon)
	case '(':
		return single(TokLParen)
	case ')':
		return single(TokRParen)
	case '[':
		return single(TokLBracket)
	case ']':
		return single(TokRBracket)
	case '{':
		return single(TokLBrace)
	case '}':
		return single(TokRBrace)
	}

	return Token{Kind: TokError, Start: start, End: l.pos, Value: "unexpected character " + string(rune(ch))}
}

// ----------------------------------------------------------------------------
// Character Classification
// ----------------------------------------------------------------------------

// ASCII lookup tables for fast character classification.
// GLSL identifiers are ASCII only.
var (
	asciiIdentStart    [256]bool
	asciiIdentContinue [256]bool
)

func init() {
	for c := 'a'; c <= 'z'; c++ {
		asciiIdentStart[c] = true
		asciiIdentContinue[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		asciiIdentStart[c] = true
		asciiIdentContinue[c] = true
	}
	asciiIdentStart['_'] = true
	asciiIdentContinue['_'] = true

	for c := '0'; c <= '9'; c++ {
		asciiIdentContinue[c] = true
	}
}

func isIdentStart(ch byte) bool {
	return asciiIdentStart[ch]
}

func isIdentContinue(ch byte) bool {
	return asciiIdentContinue[ch]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
