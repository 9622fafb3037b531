package codegen

import (
	"fmt"

	"github.com/valc-lang/valc/internal/ast"
	"github.com/valc-lang/valc/internal/types"
)

// emitExpr lowers e and returns the register holding its (unlinked,
// freshly produced or aliased-but-not-extra-linked) value. Per spec
// §4.4's reference-count discipline, the result is never linked here —
// only the binding site (a `let`, an assignment target, a function
// epilogue's protective link) links it.
func (g *Generator) emitExpr(e ast.Expression) string {
	switch expr := e.(type) {
	case *ast.ConstantExpr:
		return g.emitConstant(expr)
	case *ast.VariableExpr:
		return g.emitPathLoad(expr.Path)
	case *ast.CallExpr:
		return g.emitCall(expr)
	case *ast.NewExpr:
		return g.emitNew(expr)
	case *ast.TypeOfExpr:
		operand := g.emitExpr(expr.Operand)
		result := g.newTemp()
		g.write(fmt.Sprintf("%s = call %s @val_get_type(%s %s)", result, valTy, valTy, operand))
		return result
	case *ast.UnaryExpr:
		return g.emitUnary(expr)
	case *ast.BinaryExpr:
		return g.emitBinary(expr)
	case *ast.AssignmentExpr:
		return g.emitAssignment(expr)
	case *ast.ArrayLiteralExpr:
		return g.emitArrayLiteral(expr.Elements)
	case *ast.ObjectLiteralExpr:
		return g.emitObjectLiteral(expr)
	default:
		g.fail(e, "unhandled expression node %T", e)
		return "undef"
	}
}

func (g *Generator) emitConstant(c *ast.ConstantExpr) string {
	result := g.newTemp()
	switch c.Tag {
	case types.Integer:
		g.write(fmt.Sprintf("%s = call %s @new_int_val(i64 %d)", result, valTy, c.IntVal))
	case types.Float:
		g.write(fmt.Sprintf("%s = call %s @new_float_val(double %s)", result, valTy, formatFloat(c.FltVal)))
	case types.String:
		ptr := g.newStringGlobal(c.StrVal)
		g.write(fmt.Sprintf("%s = call %s @new_str_val(i8* %s)", result, valTy, ptr))
	case types.Boolean:
		bit := 0
		if c.BoolVal {
			bit = 1
		}
		g.write(fmt.Sprintf("%s = call %s @new_bool_val(i1 %d)", result, valTy, bit))
	case types.Null, types.Undefined:
		g.write(fmt.Sprintf("%s = call %s @new_null_val()", result, valTy))
	default:
		g.fail(c, "constant with unresolved tag reached codegen")
	}
	return result
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%#v", f)
}

// emitPathLoad reads the current value bound to path: a Name resolves
// directly to a local slot, Property/Index resolve their base first and
// call the matching runtime accessor.
func (g *Generator) emitPathLoad(path ast.VariableIdentifier) string {
	switch p := path.(type) {
	case *ast.NameIdentifier:
		reg, ok := g.lookupLocal(p.Name)
		if !ok {
			g.fail(p, "identifier %q has no codegen slot (semantic pass should have caught this)", p.Name)
			return "undef"
		}
		return reg
	case *ast.PropertyIdentifier:
		base := g.emitPathLoad(p.Base)
		key := g.newStringGlobal(p.Name)
		result := g.newTemp()
		g.write(fmt.Sprintf("%s = call %s @val_object_get(%s %s, i8* %s)", result, valTy, valTy, base, key))
		return result
	case *ast.IndexIdentifier:
		base := g.emitPathLoad(p.Base)
		idx := g.emitExpr(p.Index)
		g.linkVal(idx) // val_array_get consumes the index
		result := g.newTemp()
		g.write(fmt.Sprintf("%s = call %s @val_array_get(%s %s, %s %s)", result, valTy, valTy, base, valTy, idx))
		return result
	default:
		g.fail(path, "unhandled identifier path %T", path)
		return "undef"
	}
}

// emitPathStore writes value into path, linking the new occupant and
// unlinking whatever it replaces (the object/array setter replaces
// in-place; a bare Name rebinds the slot directly).
func (g *Generator) emitPathStore(path ast.VariableIdentifier, value string) {
	switch p := path.(type) {
	case *ast.NameIdentifier:
		if old, ok := g.lookupLocal(p.Name); ok {
			g.write(fmt.Sprintf("call void @link_val(%s %s)", valTy, value))
			g.write(fmt.Sprintf("call void @unlink_val(%s %s)", valTy, old))
			g.setLocal(p.Name, value)
			return
		}
		g.fail(p, "assignment to unbound identifier %q", p.Name)
	case *ast.PropertyIdentifier:
		base := g.emitPathLoad(p.Base)
		key := g.newStringGlobal(p.Name)
		g.write(fmt.Sprintf("call %s @val_object_set(%s %s, i8* %s, %s %s)", valTy, valTy, base, key, valTy, value))
	case *ast.IndexIdentifier:
		base := g.emitPathLoad(p.Base)
		idx := g.emitExpr(p.Index)
		g.linkVal(idx) // val_array_set consumes the index
		g.write(fmt.Sprintf("call void @val_array_set(%s %s, %s %s, %s %s)", valTy, base, valTy, idx, valTy, value))
	default:
		g.fail(path, "unhandled assignment target %T", path)
	}
}

func (g *Generator) emitUnary(u *ast.UnaryExpr) string {
	operand := g.emitExpr(u.Operand)
	var fn string
	consumes := true
	switch u.Op {
	case "+":
		fn = "val_op_pos"
		consumes = false // val_op_pos is a pure passthrough; it never touches ref_count
	case "-":
		fn = "val_op_neg"
	case "!":
		fn = "val_op_not"
	default:
		g.fail(u, "unknown unary operator %q", u.Op)
		return "undef"
	}
	// val_op_neg/val_op_not consume their operand (§4.4 "enter pre-linked"),
	// so a read of an already-bound local needs a protective link_val here —
	// otherwise the operator frees the local's only reference out from
	// under its binding (same bug as an unlinked call argument).
	if consumes {
		g.linkVal(operand)
	}
	result := g.newTemp()
	g.write(fmt.Sprintf("%s = call %s @%s(%s %s)", result, valTy, fn, valTy, operand))
	return result
}

var binaryRuntimeFn = map[string]string{
	"+":   "val_op_add",
	"-":   "val_op_sub",
	"*":   "val_op_mul",
	"/":   "val_op_div",
	"%":   "val_op_mod",
	"==":  "val_op_eq",
	"!=":  "val_op_neq",
	"===": "val_op_seq",
	"!==": "val_op_sneq",
	"<":   "val_op_lt",
	">":   "val_op_gt",
	"<=":  "val_op_lte",
	">=":  "val_op_gte",
	"&&":  "val_op_and",
	"||":  "val_op_or",
}

// emitBinary lowers a binary operator to its runtime ABI call. Operator
// helpers consume both operand pointers internally (§5's ordering rule:
// compute the result before freeing inputs), so the codegen protectively
// link_vals both registers first — exactly as a call argument does — so
// that a read of an already-bound local survives the operator's internal
// free, and a fresh, still-unlinked temporary reaches ref_count 0 cleanly
// afterward. This is what makes `x + x` on a singly-owned `x` safe: both
// reads link the same local once each (bringing it to ref_count 3), and
// the operator's two internal frees bring it back down to 1, leaving the
// binding untouched.
func (g *Generator) emitBinary(b *ast.BinaryExpr) string {
	left := g.emitExpr(b.Left)
	right := g.emitExpr(b.Right)
	fn, ok := binaryRuntimeFn[b.Op]
	if !ok {
		g.fail(b, "unknown binary operator %q", b.Op)
		return "undef"
	}
	g.linkVal(left)
	g.linkVal(right)
	result := g.newTemp()
	g.write(fmt.Sprintf("%s = call %s @%s(%s %s, %s %s)", result, valTy, fn, valTy, left, valTy, right))
	return result
}

func (g *Generator) emitAssignment(a *ast.AssignmentExpr) string {
	value := g.emitExpr(a.Value)
	g.emitPathStore(a.Target, value)
	return value
}

func (g *Generator) emitArrayLiteral(elements []ast.Expression) string {
	arr := g.newTemp()
	g.write(fmt.Sprintf("%s = call %s @new_array_val(i64 %d)", arr, valTy, len(elements)))
	for _, el := range elements {
		v := g.emitExpr(el)
		g.write(fmt.Sprintf("call void @val_array_push(%s %s, %s %s)", valTy, arr, valTy, v))
	}
	return arr
}

func (g *Generator) emitObjectLiteral(o *ast.ObjectLiteralExpr) string {
	obj := g.newTemp()
	g.write(fmt.Sprintf("%s = call %s @new_object_val()", obj, valTy))
	for i, key := range o.Keys {
		v := g.emitExpr(o.Values[i])
		keyPtr := g.newStringGlobal(key)
		g.write(fmt.Sprintf("call %s @val_object_set(%s %s, i8* %s, %s %s)", valTy, valTy, obj, keyPtr, valTy, v))
	}
	return obj
}

func (g *Generator) emitNew(n *ast.NewExpr) string {
	className := n.Target.String()
	for _, a := range n.Args {
		g.emitExpr(a) // constructor args are evaluated for side effects only; see SPEC_FULL.md §3 "Class fields"
	}
	result := g.newTemp()
	g.write(fmt.Sprintf("%s = call %s @%s_new()", result, valTy, className))
	return result
}
