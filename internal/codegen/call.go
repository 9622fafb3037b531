package codegen

import (
	"fmt"

	"github.com/valc-lang/valc/internal/ast"
	"github.com/valc-lang/valc/internal/types"
)

// emitCall lowers a Call expression. Three shapes, checked in order:
//
//  1. instance.method(args) — e.Target is a PropertyIdentifier whose Base
//     resolved to a Class kind during semantic analysis. There is no
//     first-class function value in the runtime ABI, so this is always
//     resolved statically to a direct "<Class>_<method>" call; prop.Base
//     is evaluated once for `this`.
//  2. a builtin-decorated `declare function` — suppresses normal
//     call-lowering (spec §4.4) and calls the runtime intrinsic of the
//     same name directly.
//  3. an ordinary user function.
//
// Any function (builtin or user) whose last parameter is a rest parameter
// materialises its trailing call-site arguments into a freshly allocated
// Array value before the call, per spec §4.4 — this is how `echo(s)`,
// taking zero required parameters and one rest parameter, always receives
// a single Array argument regardless of the call site's arity.
func (g *Generator) emitCall(e *ast.CallExpr) string {
	if prop, ok := e.Target.(*ast.PropertyIdentifier); ok {
		if baseKind := prop.Base.ResolvedKind(); baseKind != nil && baseKind.Tag == types.Class {
			return g.emitMethodCall(e, prop, baseKind.ClassName)
		}
	}

	name, ok := e.Target.(*ast.NameIdentifier)
	if !ok {
		g.fail(e, "call target %T did not resolve to a name or method", e.Target)
		return "undef"
	}

	fn, known := g.functions[name.Name]
	if !known {
		g.fail(e, "call to unregistered function %q reached codegen", name.Name)
		return "undef"
	}

	args := g.emitArgsForParams(fn.Params, e.Args)

	calleeName := fn.Name
	result := g.newTemp()
	if fn.IsExternal && hasDecorator(fn.Decorators, "builtin") {
		g.write(fmt.Sprintf("%s = call %s @%s(%s)", result, returnTypeFor(fn), calleeName, joinArgs(args)))
	} else {
		g.write(fmt.Sprintf("%s = call %s @%s(%s)", result, valTy, calleeName, joinArgs(args)))
	}
	return result
}

func (g *Generator) emitMethodCall(e *ast.CallExpr, prop *ast.PropertyIdentifier, className string) string {
	methodKind, ok := g.classMethods[className][prop.Name]
	if !ok {
		g.fail(e, "call to unregistered method %s.%s reached codegen", className, prop.Name)
		return "undef"
	}
	this := g.emitPathLoad(prop.Base)
	g.linkVal(this)
	args := g.emitArgsForKindParams(methodKind.Params, e.Args)

	result := g.newTemp()
	calleeName := className + "_" + prop.Name
	allArgs := append([]string{fmt.Sprintf("%s %s", valTy, this)}, args...)
	g.write(fmt.Sprintf("%s = call %s @%s(%s)", result, valTy, calleeName, joinArgs(allArgs)))
	return result
}

// returnTypeFor renders void for a `: void` declared external, val_t*
// otherwise — builtin declares are the only functions whose LLVM return
// type isn't uniformly val_t* (echo itself returns void per §6).
func returnTypeFor(fn *ast.FunctionStmt) string {
	if fn.ReturnType != nil && fn.ReturnType.Name == "void" {
		return "void"
	}
	return valTy
}

// emitArgsForParams evaluates call args against fn's declared parameter
// list, materialising a trailing rest parameter into a single Array
// argument.
func (g *Generator) emitArgsForParams(params []*ast.Param, callArgs []ast.Expression) []string {
	if n := len(params); n > 0 && params[n-1].IsRest {
		return g.emitArgsWithRest(n-1, callArgs)
	}
	out := make([]string, len(callArgs))
	for i, a := range callArgs {
		reg := g.emitExpr(a)
		g.linkVal(reg)
		out[i] = fmt.Sprintf("%s %s", valTy, reg)
	}
	return out
}

// emitArgsForKindParams is the same materialisation logic for a method's
// types.Parameter signature (classMethods stores Kind, not *ast.Param).
func (g *Generator) emitArgsForKindParams(params []types.Parameter, callArgs []ast.Expression) []string {
	if n := len(params); n > 0 && params[n-1].IsRest {
		return g.emitArgsWithRest(n-1, callArgs)
	}
	out := make([]string, len(callArgs))
	for i, a := range callArgs {
		reg := g.emitExpr(a)
		g.linkVal(reg)
		out[i] = fmt.Sprintf("%s %s", valTy, reg)
	}
	return out
}

func (g *Generator) emitArgsWithRest(fixedCount int, callArgs []ast.Expression) []string {
	var out []string
	for i := 0; i < fixedCount && i < len(callArgs); i++ {
		reg := g.emitExpr(callArgs[i])
		g.linkVal(reg)
		out = append(out, fmt.Sprintf("%s %s", valTy, reg))
	}
	rest := g.emitArrayLiteral(callArgs[min(fixedCount, len(callArgs)):])
	g.linkVal(rest)
	out = append(out, fmt.Sprintf("%s %s", valTy, rest))
	return out
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}
