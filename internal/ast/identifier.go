package ast

import (
	"github.com/valc-lang/valc/internal/token"
	"github.com/valc-lang/valc/internal/types"
)

// VariableIdentifier is the left-hand-side path grammar: Name(n) |
// Property(base, name) | Index(base, expr). It is also the target carried
// by Call, New, and Assignment expressions.
type VariableIdentifier interface {
	Node
	variableIdentifierNode()
	ResolvedKind() *types.Kind
	SetResolvedKind(k types.Kind)
}

// idBase centralises the ResolvedKind bookkeeping shared by every
// VariableIdentifier implementation, set by the semantic pass as it walks
// Name → Property → Index.
type idBase struct {
	kind *types.Kind
}

func (b *idBase) ResolvedKind() *types.Kind    { return b.kind }
func (b *idBase) SetResolvedKind(k types.Kind) { b.kind = &k }

// NameIdentifier is a bare identifier reference: `x`.
type NameIdentifier struct {
	idBase
	Token token.Token
	Name  string
}

func (n *NameIdentifier) variableIdentifierNode() {}
func (n *NameIdentifier) TokenLiteral() string    { return n.Token.Literal }
func (n *NameIdentifier) Pos() token.Position     { return n.Token.Pos }
func (n *NameIdentifier) String() string          { return n.Name }

// PropertyIdentifier is a property access path: `base.name`.
type PropertyIdentifier struct {
	idBase
	Token token.Token
	Base  VariableIdentifier
	Name  string
}

func (p *PropertyIdentifier) variableIdentifierNode() {}
func (p *PropertyIdentifier) TokenLiteral() string    { return p.Token.Literal }
func (p *PropertyIdentifier) Pos() token.Position     { return p.Base.Pos() }
func (p *PropertyIdentifier) String() string          { return p.Base.String() + "." + p.Name }

// IndexIdentifier is an array index path: `base[expr]`.
type IndexIdentifier struct {
	idBase
	Token token.Token
	Base  VariableIdentifier
	Index Expression
}

func (ix *IndexIdentifier) variableIdentifierNode() {}
func (ix *IndexIdentifier) TokenLiteral() string    { return ix.Token.Literal }
func (ix *IndexIdentifier) Pos() token.Position     { return ix.Base.Pos() }
func (ix *IndexIdentifier) String() string {
	return ix.Base.String() + "[" + ix.Index.String() + "]"
}
