package ast

import (
	"strconv"
	"strings"

	"github.com/valc-lang/valc/internal/token"
	"github.com/valc-lang/valc/internal/types"
)

// ConstantExpr is a literal: integer, float, string, boolean, null, or
// undefined. Which field is meaningful is determined by Tag.
type ConstantExpr struct {
	exprBase
	Token  token.Token
	Tag    types.Tag
	IntVal int64
	FltVal float64
	StrVal string
	BoolVal bool
}

func (c *ConstantExpr) expressionNode()      {}
func (c *ConstantExpr) TokenLiteral() string { return c.Token.Literal }
func (c *ConstantExpr) Pos() token.Position  { return c.Token.Pos }
func (c *ConstantExpr) String() string {
	switch c.Tag {
	case types.Integer:
		return strconv.FormatInt(c.IntVal, 10)
	case types.Float:
		s := strconv.FormatFloat(c.FltVal, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0" // keep a decimal point so it re-lexes as a float
		}
		return s
	case types.String:
		return "'" + c.StrVal + "'"
	case types.Boolean:
		if c.BoolVal {
			return "true"
		}
		return "false"
	case types.Null:
		return "null"
	case types.Undefined:
		return "undefined"
	default:
		return c.Token.Literal
	}
}

// VariableExpr reads the value bound to a VariableIdentifier path.
type VariableExpr struct {
	exprBase
	Path VariableIdentifier
}

func (v *VariableExpr) expressionNode()      {}
func (v *VariableExpr) TokenLiteral() string { return v.Path.TokenLiteral() }
func (v *VariableExpr) Pos() token.Position  { return v.Path.Pos() }
func (v *VariableExpr) String() string       { return v.Path.String() }

// CallExpr invokes the function bound to Target with Args.
type CallExpr struct {
	exprBase
	Token  token.Token
	Target VariableIdentifier
	Args   []Expression
}

func (c *CallExpr) expressionNode()      {}
func (c *CallExpr) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpr) Pos() token.Position  { return c.Target.Pos() }
func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Target.String() + "(" + strings.Join(args, ", ") + ")"
}

// NewExpr constructs an instance of the class named by Target.
type NewExpr struct {
	exprBase
	Token  token.Token
	Target VariableIdentifier
	Args   []Expression
}

func (n *NewExpr) expressionNode()      {}
func (n *NewExpr) TokenLiteral() string { return n.Token.Literal }
func (n *NewExpr) Pos() token.Position  { return n.Token.Pos }
func (n *NewExpr) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return "new " + n.Target.String() + "(" + strings.Join(args, ", ") + ")"
}

// TypeOfExpr evaluates to the runtime type name of Operand.
type TypeOfExpr struct {
	exprBase
	Token   token.Token
	Operand Expression
}

func (t *TypeOfExpr) expressionNode()      {}
func (t *TypeOfExpr) TokenLiteral() string { return t.Token.Literal }
func (t *TypeOfExpr) Pos() token.Position  { return t.Token.Pos }
func (t *TypeOfExpr) String() string       { return "typeof " + t.Operand.String() }

// UnaryExpr is a prefix `+`, `-`, or `!` applied to Operand.
type UnaryExpr struct {
	exprBase
	Token   token.Token
	Op      string
	Operand Expression
}

func (u *UnaryExpr) expressionNode()      {}
func (u *UnaryExpr) TokenLiteral() string { return u.Token.Literal }
func (u *UnaryExpr) Pos() token.Position  { return u.Token.Pos }
func (u *UnaryExpr) String() string       { return "(" + u.Op + u.Operand.String() + ")" }

// BinaryExpr is a left-associative infix operator application.
type BinaryExpr struct {
	exprBase
	Token token.Token
	Op    string
	Left  Expression
	Right Expression
}

func (b *BinaryExpr) expressionNode()      {}
func (b *BinaryExpr) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryExpr) Pos() token.Position  { return b.Left.Pos() }
func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

// AssignmentExpr assigns Value to Target. Non-chainable: Value may not
// itself be an AssignmentExpr.
type AssignmentExpr struct {
	exprBase
	Token  token.Token
	Target VariableIdentifier
	Value  Expression
}

func (a *AssignmentExpr) expressionNode()      {}
func (a *AssignmentExpr) TokenLiteral() string { return a.Token.Literal }
func (a *AssignmentExpr) Pos() token.Position  { return a.Target.Pos() }
func (a *AssignmentExpr) String() string {
	return a.Target.String() + " = " + a.Value.String()
}

// ArrayLiteralExpr is `[e1, e2, ...]`.
type ArrayLiteralExpr struct {
	exprBase
	Token    token.Token
	Elements []Expression
}

func (a *ArrayLiteralExpr) expressionNode()      {}
func (a *ArrayLiteralExpr) TokenLiteral() string { return a.Token.Literal }
func (a *ArrayLiteralExpr) Pos() token.Position  { return a.Token.Pos }
func (a *ArrayLiteralExpr) String() string {
	elems := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// ObjectLiteralExpr is `{ key: value, ... }`, insertion-ordered.
type ObjectLiteralExpr struct {
	exprBase
	Token  token.Token
	Keys   []string
	Values []Expression
}

func (o *ObjectLiteralExpr) expressionNode()      {}
func (o *ObjectLiteralExpr) TokenLiteral() string { return o.Token.Literal }
func (o *ObjectLiteralExpr) Pos() token.Position  { return o.Token.Pos }
func (o *ObjectLiteralExpr) String() string {
	parts := make([]string, len(o.Keys))
	for i, k := range o.Keys {
		parts[i] = k + ": " + o.Values[i].String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
