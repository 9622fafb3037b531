// Package parser builds an AST from a token stream using a recursive
// descent / precedence-climbing design.
package parser

import (
	"fmt"
	"strconv"

	"github.com/valc-lang/valc/internal/ast"
	"github.com/valc-lang/valc/internal/errors"
	"github.com/valc-lang/valc/internal/lexer"
	"github.com/valc-lang/valc/internal/token"
	"github.com/valc-lang/valc/internal/types"
)

// Precedence levels, loosest to tightest, per spec §4.2.
const (
	_ int = iota
	LOWEST
	ASSIGN_PREC // =
	OR_PREC     // ||
	AND_PREC    // &&
	EQUALS      // == != === !==
	COMPARE     // < <= > >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // unary +, -, !
	CALL        // f(...), a.b, a[i]
)

var precedences = map[token.Type]int{
	token.ASSIGN:    ASSIGN_PREC,
	token.OR_OR:     OR_PREC,
	token.AND_AND:   AND_PREC,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.EQ_STRICT: EQUALS,
	token.NE_STRICT: EQUALS,
	token.LT:        COMPARE,
	token.LE:        COMPARE,
	token.GT:        COMPARE,
	token.GE:        COMPARE,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.PERCENT:   PRODUCT,
	token.LPAREN:    CALL,
	token.DOT:       CALL,
	token.LBRACKET:  CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser consumes tokens from a Lexer and builds the Program AST. Any
// lexical or grammatical mismatch is fatal: the first error recorded stops
// AST construction from being trusted by the caller (Errors() is non-empty
// and the Program returned by ParseProgram must be discarded), matching "partial ASTs are not
// emitted" from spec §4.2.
type Parser struct {
	l      *lexer.Lexer
	file   string
	source string

	curToken  token.Token
	peekToken token.Token

	errs []*errors.CompilerError

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a Parser over l. file and source are carried into error
// messages only.
func New(l *lexer.Lexer, file, source string) *Parser {
	p := &Parser{l: l, file: file, source: source}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:     p.parseIdentifierExpr,
		token.INT:       p.parseIntegerLiteral,
		token.FLOAT:     p.parseFloatLiteral,
		token.STRING:    p.parseStringLiteral,
		token.TRUE:      p.parseBooleanLiteral,
		token.FALSE:     p.parseBooleanLiteral,
		token.NULL:      p.parseNullLiteral,
		token.UNDEFINED: p.parseUndefinedLiteral,
		token.BANG:      p.parseUnaryExpr,
		token.PLUS:      p.parseUnaryExpr,
		token.MINUS:     p.parseUnaryExpr,
		token.LPAREN:    p.parseGroupedExpr,
		token.LBRACKET:  p.parseArrayLiteral,
		token.LBRACE:    p.parseObjectLiteral,
		token.NEW:       p.parseNewExpr,
		token.TYPEOF:    p.parseTypeOfExpr,
	}

	p.infixParseFns = map[token.Type]infixParseFn{
		token.OR_OR:     p.parseBinaryExpr,
		token.AND_AND:   p.parseBinaryExpr,
		token.EQ:        p.parseBinaryExpr,
		token.NOT_EQ:    p.parseBinaryExpr,
		token.EQ_STRICT: p.parseBinaryExpr,
		token.NE_STRICT: p.parseBinaryExpr,
		token.LT:        p.parseBinaryExpr,
		token.LE:        p.parseBinaryExpr,
		token.GT:        p.parseBinaryExpr,
		token.GE:        p.parseBinaryExpr,
		token.PLUS:      p.parseBinaryExpr,
		token.MINUS:     p.parseBinaryExpr,
		token.ASTERISK:  p.parseBinaryExpr,
		token.SLASH:     p.parseBinaryExpr,
		token.PERCENT:   p.parseBinaryExpr,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []*errors.CompilerError { return p.errs }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) addError(kind errors.Kind, pos token.Position, msg string) {
	p.errs = append(p.errs, errors.New(kind, pos, msg, p.source, p.file))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekToken.Type == t {
		p.nextToken()
		return true
	}
	p.addError(errors.ParseError, p.peekToken.Pos,
		fmt.Sprintf("expected next token to be %s, got %s (%q) instead", t, p.peekToken.Type, p.peekToken.Literal))
	return false
}

// ParseProgram parses the whole token stream into a Program. Callers must
// check Errors() after: a non-empty error list means the returned Program
// is incomplete and must not be used.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for p.curToken.Type != token.EOF {
		if len(p.errs) > 0 {
			return program
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SEMICOLON:
		return &ast.EmptyStmt{Token: p.curToken}
	case token.LET, token.CONST:
		return p.parseDefinitionStmt()
	case token.DECLARE, token.FUNCTION:
		decorators := p.collectDecorators()
		return p.parseFunctionStmt(decorators, false)
	case token.RETURN:
		return p.parseReturnStmt()
	case token.CLASS:
		return p.parseClassStmt()
	case token.DECORATOR:
		decorators := p.collectDecorators()
		if p.curToken.Type != token.DECLARE && p.curToken.Type != token.FUNCTION {
			p.addError(errors.ParseError, p.curToken.Pos, "decorators may only precede a function or method declaration")
			return nil
		}
		return p.parseFunctionStmt(decorators, false)
	default:
		return p.parseExpressionStmt()
	}
}

// collectDecorators consumes a run of `@name` tokens preceding a
// declaration, leaving the cursor on the first non-decorator token.
func (p *Parser) collectDecorators() []string {
	var names []string
	for p.curToken.Type == token.DECORATOR {
		names = append(names, p.curToken.Literal)
		p.nextToken()
	}
	return names
}

func (p *Parser) parseExpressionStmt() ast.Statement {
	startTok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.ExpressionStmt{Token: startTok, Expr: expr}
}

func (p *Parser) parseReturnStmt() ast.Statement {
	tok := p.curToken
	if p.peekToken.Type == token.SEMICOLON {
		p.nextToken()
		return &ast.ReturnStmt{Token: tok}
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.ReturnStmt{Token: tok, Value: value}
}

func (p *Parser) parseDefinitionStmt() ast.Statement {
	tok := p.curToken
	isConst := tok.Type == token.CONST

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal

	var typ *ast.TypeExpr
	if p.peekToken.Type == token.COLON {
		p.nextToken()
		p.nextToken()
		typ = p.parseTypeExpr()
		if typ == nil {
			return nil
		}
	}

	var value ast.Expression
	if p.peekToken.Type == token.ASSIGN {
		p.nextToken()
		p.nextToken()
		value = p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
	}

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	return &ast.DefinitionStmt{Token: tok, Name: name, IsConst: isConst, Type: typ, Value: value}
}

// parseTypeExpr parses a base type name followed by zero or more `[]`
// suffixes. PRE: curToken is the base type token. POST: curToken is the
// last `]` of the trailing array suffix, or unchanged if there is none.
func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	tok := p.curToken
	var name string
	switch p.curToken.Type {
	case token.ANY:
		name = "any"
	case token.STRINGKW:
		name = "string"
	case token.NUMBER:
		name = "number"
	case token.VOID:
		name = "void"
	case token.IDENT:
		name = p.curToken.Literal
	default:
		p.addError(errors.ParseError, p.curToken.Pos, fmt.Sprintf("expected type name, got %s (%q)", p.curToken.Type, p.curToken.Literal))
		return nil
	}

	depth := 0
	for p.peekToken.Type == token.LBRACKET {
		p.nextToken()
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		depth++
	}

	return &ast.TypeExpr{Token: tok, Name: name, ArrayDepth: depth}
}

func (p *Parser) parseFunctionStmt(decorators []string, isClassMethod bool) *ast.FunctionStmt {
	isExternal := false
	tok := p.curToken
	if p.curToken.Type == token.DECLARE {
		isExternal = true
		if !p.expectPeek(token.FUNCTION) {
			return nil
		}
	}
	if !isClassMethod {
		if p.curToken.Type != token.FUNCTION {
			p.addError(errors.ParseError, p.curToken.Pos, "expected 'function'")
			return nil
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
	}
	name := p.curToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	params := p.parseParamList()
	if params == nil && p.curToken.Type != token.RPAREN {
		return nil
	}

	if isClassMethod {
		this := &ast.Param{Token: tok, Name: "this", Type: &ast.TypeExpr{Token: tok, Name: "any"}}
		params = append([]*ast.Param{this}, params...)
	}

	var retType *ast.TypeExpr
	if p.peekToken.Type == token.COLON {
		p.nextToken()
		p.nextToken()
		retType = p.parseTypeExpr()
		if retType == nil {
			return nil
		}
	}

	fn := &ast.FunctionStmt{
		Token:         tok,
		Name:          name,
		Params:        params,
		ReturnType:    retType,
		IsExternal:    isExternal,
		IsClassMethod: isClassMethod,
		Decorators:    decorators,
	}

	if isExternal {
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return fn
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatements()
	return fn
}

// parseParamList parses `name[?][: Type]` entries separated by commas, an
// optional leading `...` on the last one, up to the closing `)`.
// PRE: curToken is `(`. POST: curToken is `)`.
func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param

	if p.peekToken.Type == token.RPAREN {
		p.nextToken()
		return params
	}

	p.nextToken()
	for {
		param := p.parseOneParam()
		if param == nil {
			return nil
		}
		params = append(params, param)
		if param.IsRest && p.peekToken.Type == token.COMMA {
			p.addError(errors.ParseError, p.peekToken.Pos, "rest parameter must be last")
			return nil
		}
		if p.peekToken.Type != token.COMMA {
			break
		}
		p.nextToken()
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseOneParam() *ast.Param {
	tok := p.curToken
	isRest := false
	if p.curToken.Type == token.ELLIPSIS {
		isRest = true
		p.nextToken()
	}

	if p.curToken.Type != token.IDENT {
		p.addError(errors.ParseError, p.curToken.Pos, fmt.Sprintf("expected parameter name, got %s", p.curToken.Type))
		return nil
	}
	name := p.curToken.Literal

	isOptional := false
	if p.peekToken.Type == token.QUESTION {
		p.nextToken()
		isOptional = true
	}

	var typ *ast.TypeExpr
	if p.peekToken.Type == token.COLON {
		p.nextToken()
		p.nextToken()
		typ = p.parseTypeExpr()
		if typ == nil {
			return nil
		}
	}

	return &ast.Param{Token: tok, Name: name, Type: typ, IsOptional: isOptional, IsRest: isRest}
}

// parseBlockStatements parses statements up to and including the closing
// `}`. PRE: curToken is `{`. POST: curToken is `}`.
func (p *Parser) parseBlockStatements() []ast.Statement {
	var stmts []ast.Statement
	p.nextToken()
	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		if len(p.errs) > 0 {
			return stmts
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	if p.curToken.Type != token.RBRACE {
		p.addError(errors.ParseError, p.curToken.Pos, "expected '}' to close block")
	}
	return stmts
}

func (p *Parser) parseClassStmt() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	var methods []*ast.FunctionStmt
	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		if len(p.errs) > 0 {
			return nil
		}
		decorators := p.collectDecorators()
		if p.curToken.Type != token.IDENT {
			p.addError(errors.ParseError, p.curToken.Pos, "expected method declaration inside class body")
			return nil
		}
		method := p.parseFunctionStmt(decorators, true)
		if method == nil {
			return nil
		}
		methods = append(methods, method)
		p.nextToken()
	}
	if p.curToken.Type != token.RBRACE {
		p.addError(errors.ParseError, p.curToken.Pos, "expected '}' to close class body")
		return nil
	}

	return &ast.ClassStmt{Token: tok, Name: name, Methods: methods}
}

// -- Expressions --------------------------------------------------------

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		p.addError(errors.ParseError, p.curToken.Pos, fmt.Sprintf("no prefix parse function for %s (%q)", p.curToken.Type, p.curToken.Literal))
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for p.peekToken.Type != token.SEMICOLON && precedence < p.peekPrecedence() {
		switch p.peekToken.Type {
		case token.LPAREN:
			p.nextToken()
			left = p.finishCallExpr(left)
		case token.DOT:
			p.nextToken()
			left = p.finishPropertyExpr(left)
		case token.LBRACKET:
			p.nextToken()
			left = p.finishIndexExpr(left)
		case token.ASSIGN:
			p.nextToken()
			left = p.finishAssignmentExpr(left)
		default:
			infix, ok := p.infixParseFns[p.peekToken.Type]
			if !ok {
				return left
			}
			p.nextToken()
			left = infix(left)
		}
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *Parser) parseIdentifierExpr() ast.Expression {
	return &ast.VariableExpr{Path: &ast.NameIdentifier{Token: p.curToken, Name: p.curToken.Literal}}
}

func (p *Parser) toPath(e ast.Expression) (ast.VariableIdentifier, bool) {
	v, ok := e.(*ast.VariableExpr)
	if !ok {
		return nil, false
	}
	return v.Path, true
}

func (p *Parser) finishPropertyExpr(left ast.Expression) ast.Expression {
	base, ok := p.toPath(left)
	if !ok {
		p.addError(errors.ParseError, p.curToken.Pos, "left side of '.' must be a variable path")
		return nil
	}
	dotTok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return &ast.VariableExpr{Path: &ast.PropertyIdentifier{Token: dotTok, Base: base, Name: p.curToken.Literal}}
}

func (p *Parser) finishIndexExpr(left ast.Expression) ast.Expression {
	base, ok := p.toPath(left)
	if !ok {
		p.addError(errors.ParseError, p.curToken.Pos, "left side of '[' must be a variable path")
		return nil
	}
	tok := p.curToken
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return &ast.VariableExpr{Path: &ast.IndexIdentifier{Token: tok, Base: base, Index: index}}
}

func (p *Parser) finishCallExpr(left ast.Expression) ast.Expression {
	target, ok := p.toPath(left)
	if !ok {
		p.addError(errors.ParseError, p.curToken.Pos, "call target must be a variable path")
		return nil
	}
	tok := p.curToken
	args := p.parseExpressionList(token.RPAREN)
	if args == nil && p.curToken.Type != token.RPAREN {
		return nil
	}
	return &ast.CallExpr{Token: tok, Target: target, Args: args}
}

// finishAssignmentExpr parses `target = value`. Non-chainable: value itself
// may not be an AssignmentExpr, per spec §4.2.
func (p *Parser) finishAssignmentExpr(left ast.Expression) ast.Expression {
	target, ok := p.toPath(left)
	if !ok {
		p.addError(errors.ParseError, p.curToken.Pos, "assignment target must be a variable path")
		return nil
	}
	tok := p.curToken
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	if _, chained := value.(*ast.AssignmentExpr); chained {
		p.addError(errors.ParseError, value.Pos(), "assignment is not chainable")
		return nil
	}
	return &ast.AssignmentExpr{Token: tok, Target: target, Value: value}
}

// parseExpressionList parses a comma-separated expression list up to and
// including the closing token end. PRE: curToken is the opening token.
// POST: curToken is end.
func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression

	if p.peekToken.Type == end {
		p.nextToken()
		return list
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	list = append(list, first)

	for p.peekToken.Type == token.COMMA {
		p.nextToken()
		p.nextToken()
		e := p.parseExpression(LOWEST)
		if e == nil {
			return nil
		}
		list = append(list, e)
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.curToken
	val, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.addError(errors.ParseError, tok.Pos, fmt.Sprintf("could not parse %q as integer", tok.Literal))
		return nil
	}
	return &ast.ConstantExpr{Token: tok, Tag: types.Integer, IntVal: val}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.curToken
	val, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.addError(errors.ParseError, tok.Pos, fmt.Sprintf("could not parse %q as float", tok.Literal))
		return nil
	}
	return &ast.ConstantExpr{Token: tok, Tag: types.Float, FltVal: val}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.ConstantExpr{Token: p.curToken, Tag: types.String, StrVal: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.ConstantExpr{Token: p.curToken, Tag: types.Boolean, BoolVal: p.curToken.Type == token.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.ConstantExpr{Token: p.curToken, Tag: types.Null}
}

func (p *Parser) parseUndefinedLiteral() ast.Expression {
	return &ast.ConstantExpr{Token: p.curToken, Tag: types.Undefined}
}

func (p *Parser) parseUnaryExpr() ast.Expression {
	tok := p.curToken
	op := tok.Literal
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &ast.UnaryExpr{Token: tok, Op: op, Operand: operand}
}

func (p *Parser) parseBinaryExpr(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := tok.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.BinaryExpr{Token: tok, Op: op, Left: left, Right: right}
}

func (p *Parser) parseGroupedExpr() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken
	elements := p.parseExpressionList(token.RBRACKET)
	if elements == nil && p.curToken.Type != token.RBRACKET {
		return nil
	}
	return &ast.ArrayLiteralExpr{Token: tok, Elements: elements}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.curToken
	obj := &ast.ObjectLiteralExpr{Token: tok}

	if p.peekToken.Type == token.RBRACE {
		p.nextToken()
		return obj
	}

	p.nextToken()
	for {
		if p.curToken.Type != token.IDENT && p.curToken.Type != token.STRING {
			p.addError(errors.ParseError, p.curToken.Pos, "expected object key")
			return nil
		}
		key := p.curToken.Literal
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		if val == nil {
			return nil
		}
		obj.Keys = append(obj.Keys, key)
		obj.Values = append(obj.Values, val)

		if p.peekToken.Type != token.COMMA {
			break
		}
		p.nextToken()
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return obj
}

func (p *Parser) parseNewExpr() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	target := &ast.NameIdentifier{Token: p.curToken, Name: p.curToken.Literal}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args := p.parseExpressionList(token.RPAREN)
	if args == nil && p.curToken.Type != token.RPAREN {
		return nil
	}
	return &ast.NewExpr{Token: tok, Target: target, Args: args}
}

func (p *Parser) parseTypeOfExpr() ast.Expression {
	tok := p.curToken
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &ast.TypeOfExpr{Token: tok, Operand: operand}
}
