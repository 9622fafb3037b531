package codegen

import (
	"fmt"

	"github.com/valc-lang/valc/internal/ast"
)

// emitFunction emits a top-level function (or, with a non-empty
// classPrefix, a class method named "<Class>_<method>") as an LLVM
// function taking one val_t* parameter per formal parameter (the
// synthetic `this` for methods is just Params[0]) and returning val_t*.
// declare-only functions without a `builtin` decorator get a bare
// `declare` line instead of a body, since the linker supplies them.
func (g *Generator) emitFunction(fn *ast.FunctionStmt, classPrefix string) {
	name := fn.Name
	if classPrefix != "" {
		name = classPrefix + "_" + fn.Name
	}

	if fn.IsExternal {
		if hasDecorator(fn.Decorators, "builtin") {
			// A builtin-decorated declare names an existing runtime
			// intrinsic; nothing to declare here, call.go calls it by
			// its declared name directly.
			return
		}
		params := make([]string, len(fn.Params))
		for i := range fn.Params {
			params[i] = valTy
		}
		g.globals.WriteString(fmt.Sprintf("declare %s @%s(%s)\n", valTy, name, joinTypes(params)))
		return
	}

	g.locals = nil
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %%arg.%s", valTy, p.Name)
	}
	g.writeRaw(fmt.Sprintf("define %s @%s(%s) {\n", valTy, name, joinTypes(params)))
	g.indent++
	g.writeRaw("entry:\n")

	for _, p := range fn.Params {
		// Parameters enter pre-linked: the caller hands off an owned
		// reference, so the prologue just records the slot.
		g.defineLocal(p.Name, fmt.Sprintf("%%arg.%s", p.Name))
	}

	g.emitBlockBody(fn.Body)

	if !endsInReturn(fn.Body) {
		g.emitReturn(nil)
	}

	g.indent--
	g.writeRaw("}\n\n")
}

func joinTypes(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func hasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if d == name {
			return true
		}
	}
	return false
}

func endsInReturn(body []ast.Statement) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(*ast.ReturnStmt)
	return ok
}

// emitBlockBody emits statements in sequence. Since the surface language
// has no control flow (spec §9), a `return` mid-list is the last reachable
// statement; anything after it is unreachable and not emitted, matching
// straight-line lowering.
func (g *Generator) emitBlockBody(body []ast.Statement) {
	for _, stmt := range body {
		g.emitStatement(stmt)
		if _, ok := stmt.(*ast.ReturnStmt); ok {
			return
		}
	}
}

func (g *Generator) emitStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.EmptyStmt:
		// nothing to emit
	case *ast.ExpressionStmt:
		g.emitExpr(s.Expr)
	case *ast.DefinitionStmt:
		g.emitDefinition(s)
	case *ast.ReturnStmt:
		g.emitReturn(s.Value)
	case *ast.FunctionStmt, *ast.ClassStmt:
		// top-level declarations; already hoisted out by Generate/emitClass
	default:
		g.fail(stmt, "unhandled statement node %T", stmt)
	}
}

func (g *Generator) emitDefinition(d *ast.DefinitionStmt) {
	var value string
	if d.Value != nil {
		value = g.emitExpr(d.Value)
	} else {
		value = g.newTemp()
		g.write(fmt.Sprintf("%s = call %s @new_null_val()", value, valTy))
	}
	g.write(fmt.Sprintf("call void @link_val(%s %s)", valTy, value))
	g.defineLocal(d.Name, value)
}

// emitReturn implements the protect/unlink-locals/yield sequence from
// spec §9: link the result once to protect it from its own binding's
// unlink (if it aliases a live local), unlink every live local, and ret —
// the protective link is never undone, so it becomes the reference the
// caller now owns.
func (g *Generator) emitReturn(value ast.Expression) {
	var result string
	if value != nil {
		result = g.emitExpr(value)
	} else {
		result = g.newTemp()
		g.write(fmt.Sprintf("%s = call %s @new_null_val()", result, valTy))
	}
	g.write(fmt.Sprintf("call void @link_val(%s %s)", valTy, result))
	g.unlinkLocals()
	g.write(fmt.Sprintf("ret %s %s", valTy, result))
}

// emitMain wraps the translation unit's top-level statements (excluding
// hoisted function/class declarations) in an implicit entry point.
func (g *Generator) emitMain(stmts []ast.Statement) {
	g.locals = nil
	g.writeRaw(fmt.Sprintf("define i32 @main() {\n"))
	g.indent++
	g.writeRaw("entry:\n")
	g.emitBlockBody(stmts)
	g.unlinkLocals()
	g.write("ret i32 0")
	g.indent--
	g.writeRaw("}\n\n")
}

// emitClass emits a field-less constructor and every method as a free
// function named "<Class>_<method>", per spec §9's class-fields open
// question resolution (recorded in SPEC_FULL.md §3).
func (g *Generator) emitClass(cls *ast.ClassStmt) {
	g.writeRaw(fmt.Sprintf("define %s @%s_new() {\n", valTy, cls.Name))
	g.indent++
	g.writeRaw("entry:\n")
	result := g.newTemp()
	g.write(fmt.Sprintf("%s = call %s @new_object_val()", result, valTy))
	g.write(fmt.Sprintf("ret %s %s", valTy, result))
	g.indent--
	g.writeRaw("}\n\n")

	for _, m := range cls.Methods {
		g.emitFunction(m, cls.Name)
	}
}
