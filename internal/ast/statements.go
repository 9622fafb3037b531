package ast

import (
	"strings"

	"github.com/valc-lang/valc/internal/token"
)

// EmptyStmt is a bare `;`.
type EmptyStmt struct {
	Token token.Token
}

func (e *EmptyStmt) statementNode()       {}
func (e *EmptyStmt) TokenLiteral() string { return e.Token.Literal }
func (e *EmptyStmt) Pos() token.Position  { return e.Token.Pos }
func (e *EmptyStmt) String() string       { return ";" }

// ExpressionStmt wraps an expression evaluated for effect.
type ExpressionStmt struct {
	Token token.Token
	Expr  Expression
}

func (e *ExpressionStmt) statementNode()       {}
func (e *ExpressionStmt) TokenLiteral() string { return e.Token.Literal }
func (e *ExpressionStmt) Pos() token.Position  { return e.Expr.Pos() }
func (e *ExpressionStmt) String() string       { return e.Expr.String() + ";" }

// Param is one formal parameter in a function or method signature.
type Param struct {
	Token      token.Token
	Name       string
	Type       *TypeExpr // nil means Any
	IsOptional bool
	IsRest     bool
}

func (p *Param) String() string {
	var sb strings.Builder
	if p.IsRest {
		sb.WriteString("...")
	}
	sb.WriteString(p.Name)
	if p.IsOptional {
		sb.WriteString("?")
	}
	if p.Type != nil {
		sb.WriteString(": ")
		sb.WriteString(p.Type.String())
	}
	return sb.String()
}

// DefinitionStmt is a `let` or `const` declaration, with an optional type
// annotation and optional initialiser.
type DefinitionStmt struct {
	Token       token.Token
	Name        string
	IsConst     bool
	Type        *TypeExpr // nil means inferred
	Value       Expression
	Decorators  []string
}

func (d *DefinitionStmt) statementNode()       {}
func (d *DefinitionStmt) TokenLiteral() string { return d.Token.Literal }
func (d *DefinitionStmt) Pos() token.Position  { return d.Token.Pos }
func (d *DefinitionStmt) String() string {
	var sb strings.Builder
	if d.IsConst {
		sb.WriteString("const ")
	} else {
		sb.WriteString("let ")
	}
	sb.WriteString(d.Name)
	if d.Type != nil {
		sb.WriteString(": ")
		sb.WriteString(d.Type.String())
	}
	if d.Value != nil {
		sb.WriteString(" = ")
		sb.WriteString(d.Value.String())
	}
	sb.WriteString(";")
	return sb.String()
}

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	Token token.Token
	Value Expression // nil means bare `return;`
}

func (r *ReturnStmt) statementNode()       {}
func (r *ReturnStmt) TokenLiteral() string { return r.Token.Literal }
func (r *ReturnStmt) Pos() token.Position  { return r.Token.Pos }
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

// FunctionStmt is a function or method declaration: `function`, `declare
// function`, or a method body inside a class (IsClassMethod true, no
// leading `function` keyword, synthetic `this` prepended to Params).
type FunctionStmt struct {
	Token       token.Token
	Name        string
	Params      []*Param
	ReturnType  *TypeExpr // nil means Any; explicit `void` is represented by Name == "void"
	Body        []Statement
	IsExternal  bool
	IsClassMethod bool
	Decorators  []string
}

func (f *FunctionStmt) statementNode()       {}
func (f *FunctionStmt) TokenLiteral() string { return f.Token.Literal }
func (f *FunctionStmt) Pos() token.Position  { return f.Token.Pos }
func (f *FunctionStmt) String() string {
	var sb strings.Builder
	for _, d := range f.Decorators {
		sb.WriteString("@" + d + " ")
	}
	if f.IsExternal {
		sb.WriteString("declare ")
	}
	if !f.IsClassMethod {
		sb.WriteString("function ")
	}
	sb.WriteString(f.Name)
	sb.WriteString("(")
	declared := f.Params
	if f.IsClassMethod && len(declared) > 0 {
		declared = declared[1:] // the parser re-adds the synthetic `this`
	}
	params := make([]string, len(declared))
	for i, p := range declared {
		params[i] = p.String()
	}
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteString(")")
	if f.ReturnType != nil {
		sb.WriteString(": ")
		sb.WriteString(f.ReturnType.String())
	}
	if f.IsExternal {
		sb.WriteString(";")
		return sb.String()
	}
	sb.WriteString(" {")
	for _, s := range f.Body {
		sb.WriteString(" ")
		sb.WriteString(s.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

// ClassStmt is `class Name { method* }`.
type ClassStmt struct {
	Token   token.Token
	Name    string
	Methods []*FunctionStmt
}

func (c *ClassStmt) statementNode()       {}
func (c *ClassStmt) TokenLiteral() string { return c.Token.Literal }
func (c *ClassStmt) Pos() token.Position  { return c.Token.Pos }
func (c *ClassStmt) String() string {
	var sb strings.Builder
	sb.WriteString("class ")
	sb.WriteString(c.Name)
	sb.WriteString(" {")
	for _, m := range c.Methods {
		sb.WriteString(" ")
		sb.WriteString(m.String())
	}
	sb.WriteString(" }")
	return sb.String()
}
