// Package codegen emits textual LLVM-IR for one translation unit. Every
// runtime value is a `val_t*` and every operation — arithmetic, comparison,
// printing, array/object access — lowers to a call into the runtime ABI
// (§6); this package never inspects a tag field itself.
package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/valc-lang/valc/internal/ast"
	"github.com/valc-lang/valc/internal/errors"
	"github.com/valc-lang/valc/internal/types"
)

// valTy is the pointer type every runtime value is represented by in the
// emitted IR.
const valTy = "%val_t*"

// local is one live binding inside the function currently being emitted
// (no alloca is used): a name bound by a parameter or a `let`/`const`, plus the
// register holding its current value. The per-function epilogue unlinks
// every slot still on this list, innermost (most recently declared) first,
// matching the teacher's local/slot bookkeeping in compiler_core.go
// generalised from bytecode slots to SSA registers.
type local struct {
	name string
	reg  string
}

// Generator walks an elaborated Program (one already accepted by
// semantic.Analyzer) and produces LLVM-IR text. It assumes every
// Expression's ResolvedKind and every VariableIdentifier's ResolvedKind is
// already set — an unset kind reaching codegen is an InternalError, a
// compiler bug, not a user-facing diagnostic.
type Generator struct {
	file   string
	source string

	body    bytes.Buffer
	globals bytes.Buffer
	indent  int

	tempCounter   int
	stringCounter int

	classMethods map[string]map[string]types.Kind
	functions    map[string]*ast.FunctionStmt

	locals []local

	errs []*errors.CompilerError
}

// New creates a Generator. classMethods is the same registry the semantic
// pass built (class name -> method name -> Function kind, `this` already
// stripped); the generator needs it to know a method's arity when lowering
// `instance.method(args)` to a direct `<Class>_<method>` call.
func New(file, source string, classMethods map[string]map[string]types.Kind) *Generator {
	return &Generator{file: file, source: source, classMethods: classMethods, functions: make(map[string]*ast.FunctionStmt)}
}

func (g *Generator) Errors() []*errors.CompilerError { return g.errs }

func (g *Generator) fail(node ast.Node, format string, args ...interface{}) {
	g.errs = append(g.errs, errors.New(errors.InternalError, node.Pos(), fmt.Sprintf(format, args...), g.source, g.file))
}

// Generate emits IR for prog and returns the full module text. Callers
// must check Errors() first — a non-empty error list means the returned
// text is not trustworthy and must be discarded, matching the "no partial
// artefacts" rule from spec §4.4.
func (g *Generator) Generate(prog *ast.Program) string {
	g.emitRuntimeDecls()

	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*ast.FunctionStmt); ok && !fn.IsClassMethod {
			g.functions[fn.Name] = fn
		}
	}

	var topLevel []ast.Statement
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionStmt:
			if s.IsClassMethod {
				continue // emitted via its owning ClassStmt below
			}
			g.emitFunction(s, "")
		case *ast.ClassStmt:
			g.emitClass(s)
		default:
			topLevel = append(topLevel, stmt)
		}
	}

	g.emitMain(topLevel)

	var out bytes.Buffer
	out.WriteString("; generated by valc — do not edit\n\n")
	out.Write(g.globals.Bytes())
	out.WriteString("\n")
	out.Write(g.body.Bytes())
	return out.String()
}

func (g *Generator) write(s string) {
	g.body.WriteString(strings.Repeat("  ", g.indent))
	g.body.WriteString(s)
	g.body.WriteString("\n")
}

func (g *Generator) writeRaw(s string) { g.body.WriteString(s) }

func (g *Generator) newTemp() string {
	g.tempCounter++
	return fmt.Sprintf("%%t%d", g.tempCounter)
}

// newStringGlobal interns s as a global LLVM string constant and returns
// an i8* pointing at its first byte.
func (g *Generator) newStringGlobal(s string) string {
	g.stringCounter++
	name := fmt.Sprintf("@.str.%d", g.stringCounter)
	escaped, length := escapeIRString(s)
	fmt.Fprintf(&g.globals, "%s = private unnamed_addr constant [%d x i8] c\"%s\"\n", name, length, escaped)
	ptr := g.newTemp()
	g.write(fmt.Sprintf("%s = getelementptr inbounds [%d x i8], [%d x i8]* %s, i64 0, i64 0", ptr, length, length, name))
	return ptr
}

func escapeIRString(s string) (string, int) {
	var sb strings.Builder
	n := 0
	for _, b := range []byte(s) {
		switch {
		case b == '"' || b == '\\' || b < 0x20 || b >= 0x7f:
			fmt.Fprintf(&sb, "\\%02X", b)
		default:
			sb.WriteByte(b)
		}
		n++
	}
	sb.WriteString("\\00")
	return sb.String(), n + 1
}

func (g *Generator) pushScope() {}

// defineLocal records a new live slot and returns nothing; callers pass
// the register already holding the (linked) value.
func (g *Generator) defineLocal(name, reg string) {
	g.locals = append(g.locals, local{name: name, reg: reg})
}

func (g *Generator) lookupLocal(name string) (string, bool) {
	for i := len(g.locals) - 1; i >= 0; i-- {
		if g.locals[i].name == name {
			return g.locals[i].reg, true
		}
	}
	return "", false
}

func (g *Generator) setLocal(name, reg string) {
	for i := len(g.locals) - 1; i >= 0; i-- {
		if g.locals[i].name == name {
			g.locals[i].reg = reg
			return
		}
	}
}

// unlinkLocals emits unlink_val for every live local, innermost first, per
// the "per-scope finaliser is a list of unlink_val calls" design note.
func (g *Generator) unlinkLocals() {
	for i := len(g.locals) - 1; i >= 0; i-- {
		g.write(fmt.Sprintf("call void @unlink_val(%s %s)", valTy, g.locals[i].reg))
	}
}

// linkVal emits a link_val call on reg. Parameters "enter pre-linked" per
// spec §4.4: the callee's epilogue unconditionally unlink_vals every
// parameter on return, so every register handed to a call — an argument,
// a method's `this`, or a consumed binary-operator operand — must carry
// an owned reference, not a borrowed one, before it crosses that boundary.
func (g *Generator) linkVal(reg string) {
	g.write(fmt.Sprintf("call void @link_val(%s %s)", valTy, reg))
}
