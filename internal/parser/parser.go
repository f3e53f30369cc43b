// Package parser provides GLSL parsing into an AST.
//
// The parser is a hand-written recursive-descent parser over the token
// stream produced by the lexer. It needs no type information: a statement is
// recognised as a declaration from its shape alone (a qualifier keyword, two
// identifiers in a row, or an identifier followed by array brackets and an
// identifier).
//
// Parsing stops at the first error. The error carries the offending token's
// text and position, and no partial tree is returned.
package parser

import (
	"fmt"

	"github.com/HugoDaniel/glslkit/internal/ast"
	"github.com/HugoDaniel/glslkit/internal/diagnostic"
	"github.com/HugoDaniel/glslkit/internal/lexer"
)

// Parser parses GLSL source into an AST.
type Parser struct {
	source    string
	tokens    []lexer.Token
	pos       int
	lineIndex *diagnostic.LineIndex

	err *diagnostic.SyntaxError
}

// New creates a new parser for the given source.
func New(source string) *Parser {
	return &Parser{
		source:    source,
		tokens:    lexer.New(source).Tokenize(),
		lineIndex: diagnostic.NewLineIndex(source),
	}
}

// Parse parses a whole translation unit.
func Parse(source string) (*ast.File, error) {
	return New(source).Parse()
}

// ParseExpression parses source as a single expression.
func ParseExpression(source string) (ast.Expr, error) {
	p := New(source)
	expr := p.parseExpr()
	if !p.failed() && p.current().Kind != lexer.TokEOF {
		p.error(fmt.Sprintf("unexpected %s after expression", p.current().Kind))
	}
	if p.failed() {
		return nil, p.err
	}
	return expr, nil
}

// Parse parses the source and returns the file.
func (p *Parser) Parse() (*ast.File, error) {
	file := &ast.File{}
	p.parseTranslationUnit(file)
	if p.failed() {
		return nil, p.err
	}
	return file, nil
}

// ----------------------------------------------------------------------------
// Token Helpers
// ----------------------------------------------------------------------------

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF, Start: len(p.source), End: len(p.source)}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) lexer.Token {
	pos := p.pos + offset
	if pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF, Start: len(p.source), End: len(p.source)}
	}
	return p.tokens[pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, bool) {
	tok := p.current()
	if tok.Kind != kind {
		p.error(fmt.Sprintf("expected %s, got %s", kind, describe(tok)))
		return tok, false
	}
	p.advance()
	return tok, true
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.current().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) failed() bool {
	return p.err != nil
}

// error records the first syntax error at the current token. Later errors
// are consequences of the first and are dropped.
func (p *Parser) error(msg string) {
	if p.err != nil {
		return
	}
	tok := p.current()
	if tok.Kind == lexer.TokError {
		msg = tok.Value
	}
	line, col := p.lineIndex.ByteOffsetToLineColumn(tok.Start)
	p.err = &diagnostic.SyntaxError{
		Message: msg,
		Pos:     tok.Start,
		Line:    line + 1, // Convert to 1-based
		Column:  col + 1,  // Convert to 1-based
		Span:    tok.Text(p.source),
	}
}

func describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.TokIdent, lexer.TokIntLiteral, lexer.TokFloatLiteral:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Value)
	}
	return tok.Kind.String()
}

func loc(tok lexer.Token) ast.Loc {
	return ast.Loc{Start: int32(tok.Start)}
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

func (p *Parser) parseTranslationUnit(file *ast.File) {
	for !p.failed() && p.current().Kind != lexer.TokEOF {
		if p.match(lexer.TokSemicolon) {
			continue
		}
		if decl := p.parseGlobalDecl(); decl != nil {
			file.Decls = append(file.Decls, decl)
		}
	}
}

func (p *Parser) parseGlobalDecl() ast.Decl {
	first := p.current()
	if first.Kind == lexer.TokStruct {
		return p.parseStructDecl()
	}

	quals := p.parseQualifiers()
	typ := p.parseTypeSpec()
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}

	if len(typ.Array) == 0 && p.current().Kind == lexer.TokLParen {
		for _, q := range quals {
			if !isPrecisionQualifier(q) {
				p.error(fmt.Sprintf("qualifier %q is not allowed on a function", q))
				return nil
			}
		}
		return p.parseFunctionDecl(first, quals, typ, nameTok)
	}
	return p.parseVarDeclRest(first, quals, typ, nameTok, true)
}

func isPrecisionQualifier(q string) bool {
	switch q {
	case "highp", "mediump", "lowp":
		return true
	}
	return false
}

func (p *Parser) parseQualifiers() []string {
	var quals []string
	for p.current().Kind.IsQualifier() {
		quals = append(quals, p.advance().Value)
	}
	return quals
}

func (p *Parser) parseTypeSpec() ast.TypeSpec {
	tok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return ast.TypeSpec{}
	}
	return ast.TypeSpec{Loc: loc(tok), Name: tok.Value, Array: p.parseArrayDims()}
}

// parseArrayDims parses zero or more [size] suffixes.
func (p *Parser) parseArrayDims() []ast.Expr {
	var dims []ast.Expr
	for !p.failed() && p.match(lexer.TokLBracket) {
		var size ast.Expr
		if p.current().Kind != lexer.TokRBracket {
			size = p.parseExpr()
		}
		p.expect(lexer.TokRBracket)
		dims = append(dims, size)
	}
	return dims
}

// parseVarDeclRest parses the declarators following the first name, up to
// and including the terminating semicolon.
func (p *Parser) parseVarDeclRest(first lexer.Token, quals []string, typ ast.TypeSpec, nameTok lexer.Token, allowInit bool) *ast.VarDecl {
	decl := &ast.VarDecl{Loc: loc(first), Qualifiers: quals, Type: typ}
	for {
		d := ast.Declarator{Loc: loc(nameTok), Name: nameTok.Value, Array: p.parseArrayDims()}
		if p.current().Kind == lexer.TokEq {
			if !allowInit {
				p.error(fmt.Sprintf("struct field %q cannot have an initializer", d.Name))
				break
			}
			p.advance()
			d.Init = p.parseExpr()
		}
		decl.Vars = append(decl.Vars, d)
		if p.failed() || !p.match(lexer.TokComma) {
			break
		}
		var ok bool
		if nameTok, ok = p.expect(lexer.TokIdent); !ok {
			break
		}
	}
	p.expect(lexer.TokSemicolon)
	return decl
}

func (p *Parser) parseFunctionDecl(first lexer.Token, quals []string, typ ast.TypeSpec, nameTok lexer.Token) *ast.FunctionDecl {
	fn := &ast.FunctionDecl{
		Loc:        loc(first),
		Doc:        first.Comments,
		Qualifiers: quals,
		ReturnType: typ,
		Name:       nameTok.Value,
	}

	p.expect(lexer.TokLParen)
	// f(void) declares no parameters
	if p.current().Kind == lexer.TokIdent && p.current().Value == "void" && p.peek(1).Kind == lexer.TokRParen {
		p.advance()
	}
	for !p.failed() && p.current().Kind != lexer.TokRParen {
		fn.Params = append(fn.Params, p.parseParam())
		if !p.match(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokRParen)

	fn.Body = p.parseCompoundStmt()
	return fn
}

func (p *Parser) parseParam() ast.Param {
	start := p.current()
	param := ast.Param{Loc: loc(start), Qualifiers: p.parseQualifiers()}
	param.Type = p.parseTypeSpec()
	if nameTok, ok := p.expect(lexer.TokIdent); ok {
		param.Name = nameTok.Value
		param.Array = p.parseArrayDims()
	}
	return param
}

func (p *Parser) parseStructDecl() *ast.StructDecl {
	structTok := p.advance()
	nameTok, _ := p.expect(lexer.TokIdent)
	decl := &ast.StructDecl{Loc: loc(structTok), Name: nameTok.Value}

	p.expect(lexer.TokLBrace)
	for !p.failed() && p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		first := p.current()
		quals := p.parseQualifiers()
		typ := p.parseTypeSpec()
		fieldTok, ok := p.expect(lexer.TokIdent)
		if !ok {
			break
		}
		decl.Fields = append(decl.Fields, p.parseVarDeclRest(first, quals, typ, fieldTok, false))
	}
	p.expect(lexer.TokRBrace)
	p.expect(lexer.TokSemicolon)
	return decl
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *Parser) parseCompoundStmt() []ast.Stmt {
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return nil
	}
	stmts := []ast.Stmt{}
	for !p.failed() && p.current().Kind != lexer.TokRBrace {
		if p.current().Kind == lexer.TokEOF {
			p.error("unexpected end of file, expected }")
			break
		}
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(lexer.TokRBrace)
	return stmts
}

// parseBody parses the body of a control statement: either a braced list
// or a single statement.
func (p *Parser) parseBody() []ast.Stmt {
	if p.current().Kind == lexer.TokLBrace {
		return p.parseCompoundStmt()
	}
	stmts := []ast.Stmt{}
	if stmt := p.parseStatement(); stmt != nil {
		stmts = append(stmts, stmt)
	}
	return stmts
}

// parseStatement returns nil for an empty statement.
func (p *Parser) parseStatement() ast.Stmt {
	tok := p.current()
	switch tok.Kind {
	case lexer.TokSemicolon:
		p.advance()
		return nil

	case lexer.TokLBrace:
		return &ast.BlockStmt{Loc: loc(tok), Stmts: p.parseCompoundStmt()}

	case lexer.TokIf:
		return p.parseIfStmt()

	case lexer.TokWhile:
		p.advance()
		p.expect(lexer.TokLParen)
		cond := p.parseExpr()
		p.expect(lexer.TokRParen)
		return &ast.WhileStmt{Loc: loc(tok), Cond: cond, Body: p.parseBody()}

	case lexer.TokDo:
		p.advance()
		body := p.parseBody()
		p.expect(lexer.TokWhile)
		p.expect(lexer.TokLParen)
		cond := p.parseExpr()
		p.expect(lexer.TokRParen)
		p.expect(lexer.TokSemicolon)
		return &ast.DoWhileStmt{Loc: loc(tok), Body: body, Cond: cond}

	case lexer.TokFor:
		return p.parseForStmt()

	case lexer.TokReturn:
		p.advance()
		stmt := &ast.ReturnStmt{Loc: loc(tok)}
		if p.current().Kind != lexer.TokSemicolon {
			stmt.Value = p.parseExpr()
		}
		p.expect(lexer.TokSemicolon)
		return stmt

	case lexer.TokBreak:
		p.advance()
		p.expect(lexer.TokSemicolon)
		return &ast.BreakStmt{Loc: loc(tok)}

	case lexer.TokContinue:
		p.advance()
		p.expect(lexer.TokSemicolon)
		return &ast.ContinueStmt{Loc: loc(tok)}

	case lexer.TokDiscard:
		p.advance()
		p.expect(lexer.TokSemicolon)
		return &ast.DiscardStmt{Loc: loc(tok)}
	}

	return p.parseSimpleStmt()
}

// parseSimpleStmt parses a declaration or expression statement including
// its semicolon.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	tok := p.current()
	if p.isDeclStart() {
		quals := p.parseQualifiers()
		typ := p.parseTypeSpec()
		nameTok, ok := p.expect(lexer.TokIdent)
		if !ok {
			return nil
		}
		return &ast.DeclStmt{Decl: p.parseVarDeclRest(tok, quals, typ, nameTok, true)}
	}

	expr := p.parseExpr()
	p.expect(lexer.TokSemicolon)
	return &ast.ExprStmt{Loc: loc(tok), Expr: expr}
}

// isDeclStart reports whether the upcoming tokens begin a variable
// declaration.
func (p *Parser) isDeclStart() bool {
	tok := p.current()
	if tok.Kind.IsQualifier() {
		return true
	}
	if tok.Kind != lexer.TokIdent {
		return false
	}
	i := 1
	for p.peek(i).Kind == lexer.TokLBracket {
		depth := 0
		for {
			switch p.peek(i).Kind {
			case lexer.TokLBracket:
				depth++
			case lexer.TokRBracket:
				depth--
			case lexer.TokEOF, lexer.TokError, lexer.TokSemicolon:
				return false
			}
			i++
			if depth == 0 {
				break
			}
		}
	}
	return p.peek(i).Kind == lexer.TokIdent
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	tok := p.advance()
	p.expect(lexer.TokLParen)
	cond := p.parseExpr()
	p.expect(lexer.TokRParen)
	stmt := &ast.IfStmt{Loc: loc(tok), Cond: cond, Body: p.parseBody()}
	if p.match(lexer.TokElse) {
		stmt.Else = p.parseBody()
	}
	return stmt
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	tok := p.advance()
	stmt := &ast.ForStmt{Loc: loc(tok)}
	p.expect(lexer.TokLParen)

	if !p.match(lexer.TokSemicolon) {
		stmt.Init = p.parseSimpleStmt()
	}
	if p.current().Kind != lexer.TokSemicolon {
		stmt.Cond = p.parseExpr()
	}
	p.expect(lexer.TokSemicolon)
	if p.current().Kind != lexer.TokRParen {
		stmt.Post = p.parseExpr()
	}
	p.expect(lexer.TokRParen)

	stmt.Body = p.parseBody()
	return stmt
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignExpr()
}

var assignOps = map[lexer.TokenKind]ast.AssignOp{
	lexer.TokEq:        ast.AssignOpAssign,
	lexer.TokPlusEq:    ast.AssignOpAdd,
	lexer.TokMinusEq:   ast.AssignOpSub,
	lexer.TokStarEq:    ast.AssignOpMul,
	lexer.TokSlashEq:   ast.AssignOpDiv,
	lexer.TokPercentEq: ast.AssignOpMod,
	lexer.TokAndEq:     ast.AssignOpAnd,
	lexer.TokOrEq:      ast.AssignOpOr,
	lexer.TokXorEq:     ast.AssignOpXor,
}

func (p *Parser) parseAssignExpr() ast.Expr {
	left := p.parseTernaryExpr()
	if p.failed() {
		return left
	}
	if op, ok := assignOps[p.current().Kind]; ok {
		p.advance()
		right := p.parseAssignExpr()
		return &ast.AssignExpr{Loc: left.Pos(), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTernaryExpr() ast.Expr {
	cond := p.parseBinaryExpr(ast.PrecLogicalOr)
	if p.failed() || !p.match(lexer.TokQuestion) {
		return cond
	}
	then := p.parseExpr()
	p.expect(lexer.TokColon)
	els := p.parseAssignExpr()
	return &ast.TernaryExpr{Loc: cond.Pos(), Cond: cond, Then: then, Else: els}
}

var binaryOps = map[lexer.TokenKind]ast.BinaryOp{
	lexer.TokStar:    ast.BinOpMul,
	lexer.TokSlash:   ast.BinOpDiv,
	lexer.TokPercent: ast.BinOpMod,
	lexer.TokPlus:    ast.BinOpAdd,
	lexer.TokMinus:   ast.BinOpSub,
	lexer.TokLtLt:    ast.BinOpShl,
	lexer.TokGtGt:    ast.BinOpShr,
	lexer.TokLt:      ast.BinOpLt,
	lexer.TokGt:      ast.BinOpGt,
	lexer.TokLtEq:    ast.BinOpLe,
	lexer.TokGtEq:    ast.BinOpGe,
	lexer.TokEqEq:    ast.BinOpEq,
	lexer.TokBangEq:  ast.BinOpNe,
	lexer.TokAnd:     ast.BinOpAnd,
	lexer.TokXor:     ast.BinOpXor,
	lexer.TokOr:      ast.BinOpOr,
	lexer.TokAndAnd:  ast.BinOpLogicalAnd,
	lexer.TokXorXor:  ast.BinOpLogicalXor,
	lexer.TokOrOr:    ast.BinOpLogicalOr,
}

// parseBinaryExpr parses a left-associative chain of operators at prec,
// with operands at the next tighter tier.
func (p *Parser) parseBinaryExpr(prec ast.Precedence) ast.Expr {
	if prec > ast.PrecMultiplicative {
		return p.parseUnaryExpr()
	}
	left := p.parseBinaryExpr(prec + 1)
	for !p.failed() {
		op, ok := binaryOps[p.current().Kind]
		if !ok || op.Precedence() != prec {
			break
		}
		p.advance()
		right := p.parseBinaryExpr(prec + 1)
		left = &ast.BinaryExpr{Loc: left.Pos(), Op: op, Left: left, Right: right}
	}
	return left
}

var prefixOps = map[lexer.TokenKind]ast.UnaryOp{
	lexer.TokMinus:      ast.UnaryOpNeg,
	lexer.TokPlus:       ast.UnaryOpPlus,
	lexer.TokBang:       ast.UnaryOpNot,
	lexer.TokTilde:      ast.UnaryOpBitNot,
	lexer.TokPlusPlus:   ast.UnaryOpPreInc,
	lexer.TokMinusMinus: ast.UnaryOpPreDec,
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	tok := p.current()
	if op, ok := prefixOps[tok.Kind]; ok {
		p.advance()
		operand := p.parseUnaryExpr()
		return &ast.UnaryExpr{Loc: loc(tok), Op: op, Operand: operand}
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parsePostfixExpr() ast.Expr {
	expr := p.parsePrimaryExpr()

	for !p.failed() {
		tok := p.current()
		switch tok.Kind {
		case lexer.TokLParen:
			p.advance()
			call := &ast.CallExpr{Loc: expr.Pos(), Func: expr, Args: []ast.Expr{}}
			for !p.failed() && p.current().Kind != lexer.TokRParen {
				call.Args = append(call.Args, p.parseExpr())
				if !p.match(lexer.TokComma) {
					break
				}
			}
			p.expect(lexer.TokRParen)
			expr = call

		case lexer.TokLBracket:
			p.advance()
			index := p.parseExpr()
			p.expect(lexer.TokRBracket)
			expr = &ast.IndexExpr{Loc: expr.Pos(), Base: expr, Index: index}

		case lexer.TokDot:
			p.advance()
			member, ok := p.expect(lexer.TokIdent)
			if !ok {
				return expr
			}
			expr = &ast.MemberExpr{Loc: expr.Pos(), Base: expr, Member: member.Value}

		case lexer.TokPlusPlus:
			p.advance()
			expr = &ast.UnaryExpr{Loc: expr.Pos(), Op: ast.UnaryOpPostInc, Operand: expr}

		case lexer.TokMinusMinus:
			p.advance()
			expr = &ast.UnaryExpr{Loc: expr.Pos(), Op: ast.UnaryOpPostDec, Operand: expr}

		default:
			return expr
		}
	}
	return expr
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	tok := p.current()
	switch tok.Kind {
	case lexer.TokIdent:
		p.advance()
		return &ast.IdentExpr{Loc: loc(tok), Name: tok.Value}

	case lexer.TokIntLiteral, lexer.TokFloatLiteral, lexer.TokTrue, lexer.TokFalse:
		p.advance()
		return &ast.LiteralExpr{Loc: loc(tok), Kind: tok.Kind, Value: tok.Value}

	case lexer.TokLParen:
		p.advance()
		inner := p.parseExpr()
		p.expect(lexer.TokRParen)
		return &ast.ParenExpr{Loc: loc(tok), Expr: inner}
	}

	p.error(fmt.Sprintf("expected expression, got %s", describe(tok)))
	return &ast.IdentExpr{Loc: loc(tok)}
}
