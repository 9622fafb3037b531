// Package ast defines the Abstract Syntax Tree node types for valc's
// surface language.
package ast

import (
	"bytes"
	"strings"

	"github.com/valc-lang/valc/internal/token"
	"github.com/valc-lang/valc/internal/types"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	// TokenLiteral returns the literal text of the token the node starts at.
	TokenLiteral() string
	// String reserialises the node back to source-like text, for debugging,
	// golden tests, and the parse(lex(S)) round-trip property.
	String() string
	// Pos returns the node's source location.
	Pos() token.Position
}

// Expression is any node that produces a value. Once the semantic pass has
// run, ResolvedKind returns the VariableKind computed for it.
type Expression interface {
	Node
	expressionNode()
	ResolvedKind() *types.Kind
	SetResolvedKind(k types.Kind)
}

// Statement is any node that performs an action without itself producing a
// value.
type Statement interface {
	Node
	statementNode()
}

// exprBase centralises the ResolvedKind bookkeeping shared by every
// Expression implementation.
type exprBase struct {
	kind *types.Kind
}

func (e *exprBase) ResolvedKind() *types.Kind { return e.kind }
func (e *exprBase) SetResolvedKind(k types.Kind) { e.kind = &k }

// Program is the root node: an ordered sequence of top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, stmt := range p.Statements {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	return out.String()
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1, Offset: 0}
}

// TypeExpr is a postfix-array type annotation: `T`, `T[]`, `T[][]`, ...
// Name is the base keyword or identifier ("any", "string", "number",
// "void", or a class name); ArrayDepth counts trailing `[]` suffixes.
type TypeExpr struct {
	Token      token.Token
	Name       string
	ArrayDepth int
}

func (t *TypeExpr) TokenLiteral() string { return t.Token.Literal }
func (t *TypeExpr) Pos() token.Position  { return t.Token.Pos }
func (t *TypeExpr) String() string {
	return t.Name + strings.Repeat("[]", t.ArrayDepth)
}
