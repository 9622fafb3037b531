// Package types implements the static value-kind system: the tagged
// VariableKind variant, parameter shapes, and variable definitions that the
// semantic pass attaches to declarations and expressions.
package types

import "strings"

// Tag identifies which variant of VariableKind a value holds.
type Tag int

const (
	Any Tag = iota
	Undefined
	Null
	Boolean
	Integer
	Float
	String
	Array
	Object
	Function
	Class
)

func (t Tag) String() string {
	switch t {
	case Any:
		return "any"
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Integer:
		return "number"
	case Float:
		return "float"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	case Function:
		return "function"
	case Class:
		return "class"
	default:
		return "unknown"
	}
}

// Field is one entry of an Object kind's ordered field list.
type Field struct {
	Name string
	Kind Kind
}

// Parameter describes one formal parameter's static shape.
type Parameter struct {
	Kind       Kind
	IsOptional bool
	IsRest     bool
}

// Kind is a VariableKind: a tagged variant over the fixed set of static
// types this language has. Zero value is Any.
type Kind struct {
	Tag Tag

	// Element is set when Tag == Array: the element kind.
	Element *Kind

	// Fields is set when Tag == Object: ordered, insertion-preserving.
	Fields []Field

	// Return/Params are set when Tag == Function.
	Return *Kind
	Params []Parameter

	// ClassName names a Class-tagged kind (nominal).
	ClassName string
}

// NewAny returns the Any kind.
func NewAny() Kind { return Kind{Tag: Any} }

// NewArray returns an Array kind over element.
func NewArray(element Kind) Kind {
	e := element
	return Kind{Tag: Array, Element: &e}
}

// NewObject returns an Object kind with the given ordered fields.
func NewObject(fields []Field) Kind {
	return Kind{Tag: Object, Fields: fields}
}

// NewFunction returns a Function kind.
func NewFunction(ret Kind, params []Parameter) Kind {
	r := ret
	return Kind{Tag: Function, Return: &r, Params: params}
}

// NewClass returns a nominal Class kind.
func NewClass(name string) Kind {
	return Kind{Tag: Class, ClassName: name}
}

// Simple constructs a simple (no-payload) kind: Undefined, Null, Boolean,
// Integer, Float, or String.
func Simple(tag Tag) Kind { return Kind{Tag: tag} }

// IsNumeric reports whether k is Integer or Float.
func (k Kind) IsNumeric() bool { return k.Tag == Integer || k.Tag == Float }

// String renders the kind as a surface-syntax type name, e.g. "number[]".
func (k Kind) String() string {
	switch k.Tag {
	case Array:
		return k.Element.String() + "[]"
	case Object:
		var sb strings.Builder
		sb.WriteString("{ ")
		for i, f := range k.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			sb.WriteString(f.Kind.String())
		}
		sb.WriteString(" }")
		return sb.String()
	case Function:
		var sb strings.Builder
		sb.WriteString("(")
		for i, p := range k.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			if p.IsRest {
				sb.WriteString("...")
			}
			sb.WriteString(p.Kind.String())
			if p.IsOptional {
				sb.WriteString("?")
			}
		}
		sb.WriteString(") => ")
		sb.WriteString(k.Return.String())
		return sb.String()
	case Class:
		return k.ClassName
	default:
		return k.Tag.String()
	}
}

// Equal reports structural equality between two kinds. Any is only equal to
// Any itself here; callers needing "compatible with everything" semantics
// use IsCompatible instead.
func Equal(a, b Kind) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case Array:
		return Equal(*a.Element, *b.Element)
	case Object:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Kind, b.Fields[i].Kind) {
				return false
			}
		}
		return true
	case Function:
		if len(a.Params) != len(b.Params) || !Equal(*a.Return, *b.Return) {
			return false
		}
		for i := range a.Params {
			pa, pb := a.Params[i], b.Params[i]
			if pa.IsOptional != pb.IsOptional || pa.IsRest != pb.IsRest || !Equal(pa.Kind, pb.Kind) {
				return false
			}
		}
		return true
	case Class:
		return a.ClassName == b.ClassName
	default:
		return true
	}
}

// IsCompatible reports whether a value of kind `from` may be used where
// `to` is expected: Any is compatible in both directions, Integer widens to
// Float, and otherwise kinds must be structurally equal.
func IsCompatible(from, to Kind) bool {
	if from.Tag == Any || to.Tag == Any {
		return true
	}
	if from.Tag == Integer && to.Tag == Float {
		return true
	}
	return Equal(from, to)
}
