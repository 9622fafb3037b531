// Package semantic implements the single-traversal semantic pass: scope
// resolution, VariableKind assignment to every expression, and the
// writability/arity/compatibility checks spec §4.3 requires.
package semantic

import (
	"fmt"

	"github.com/valc-lang/valc/internal/ast"
	"github.com/valc-lang/valc/internal/errors"
	"github.com/valc-lang/valc/internal/types"
)

// Analyzer walks a Program once, resolving every identifier and computing
// every expression's VariableKind.
type Analyzer struct {
	file   string
	source string

	top     *scope
	current *scope

	// classes records every class name declared at top level, so `new C()`
	// and type annotations naming a class can resolve it to a Class kind.
	classes map[string]bool

	// classMethods maps a class name to its methods' Function kinds (the
	// synthetic `this` parameter stripped), so `instance.method(args)` can
	// be checked and lowered without a runtime function-value
	// representation, which the ABI in spec §6 does not provide.
	classMethods map[string]map[string]types.Kind

	// returnStack tracks the declared return kind of each function body
	// currently being walked, innermost last. Empty outside any function.
	returnStack []types.Kind

	errs []*errors.CompilerError
}

// New creates an Analyzer for file/source (used only in diagnostics).
func New(file, source string) *Analyzer {
	top := newScope(nil)
	return &Analyzer{
		file: file, source: source, top: top, current: top,
		classes:      map[string]bool{},
		classMethods: map[string]map[string]types.Kind{},
	}
}

// Errors returns every semantic error found. A non-empty result means the
// program must not be passed on to code generation.
func (a *Analyzer) Errors() []*errors.CompilerError { return a.errs }

// ClassMethods exposes the class-name -> method-name -> Function kind
// registry built during analysis, so the code generator can resolve
// `instance.method(args)` calls without redoing class-body elaboration.
func (a *Analyzer) ClassMethods() map[string]map[string]types.Kind { return a.classMethods }

func (a *Analyzer) errorf(kind errors.Kind, node ast.Node, format string, args ...interface{}) {
	a.errs = append(a.errs, errors.New(kind, node.Pos(), fmt.Sprintf(format, args...), a.source, a.file))
}

// Analyze runs the full semantic pass over prog.
func (a *Analyzer) Analyze(prog *ast.Program) {
	a.preRegisterClasses(prog)
	a.preRegisterExternalFunctions(prog)
	a.preRegisterTopLevel(prog)

	for _, stmt := range prog.Statements {
		a.walkStatement(stmt)
	}
}

func (a *Analyzer) preRegisterClasses(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		if cls, ok := stmt.(*ast.ClassStmt); ok {
			a.classes[cls.Name] = true
		}
	}
	for _, stmt := range prog.Statements {
		cls, ok := stmt.(*ast.ClassStmt)
		if !ok {
			continue
		}
		methods := make(map[string]types.Kind, len(cls.Methods))
		for _, m := range cls.Methods {
			fnKind := a.functionKind(m)
			// Strip the synthetic leading `this` parameter: callers at
			// `instance.method(args)` supply only the explicit arguments.
			fnKind.Params = fnKind.Params[1:]
			methods[m.Name] = fnKind
		}
		a.classMethods[cls.Name] = methods
	}
}

// preRegisterExternalFunctions binds every `declare function` first, per
// spec §4.3's pre-registration order.
func (a *Analyzer) preRegisterExternalFunctions(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		fn, ok := stmt.(*ast.FunctionStmt)
		if !ok || !fn.IsExternal {
			continue
		}
		a.defineFunctionSignature(fn)
	}
}

// preRegisterTopLevel binds every remaining non-external top-level name, in
// source order (functions and classes get their full Kind, since it needs
// no body walk; an unannotated let or const gets a placeholder Kind refined
// when its initialiser is walked) so that forward references across top
// level resolve.
func (a *Analyzer) preRegisterTopLevel(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionStmt:
			if !s.IsExternal {
				a.defineFunctionSignature(s)
			}
		case *ast.ClassStmt:
			a.current.define(&types.Definition{
				Location: s.Pos(), Name: s.Name, Kind: types.NewClass(s.Name), IsWritable: false,
			})
		case *ast.DefinitionStmt:
			kind := types.NewAny()
			if s.Type != nil {
				kind = a.kindFromTypeExpr(s.Type)
			}
			if !a.current.define(&types.Definition{
				Location: s.Pos(), Name: s.Name, Kind: kind, IsWritable: !s.IsConst,
			}) {
				a.errorf(errors.ResolveError, s, "duplicate declaration of %q", s.Name)
			}
		}
	}
}

func (a *Analyzer) defineFunctionSignature(fn *ast.FunctionStmt) {
	kind := a.functionKind(fn)
	if !a.current.define(&types.Definition{
		Location:   fn.Pos(),
		Name:       fn.Name,
		Kind:       kind,
		IsWritable: false,
		IsExternal: fn.IsExternal,
		Decorators: fn.Decorators,
	}) {
		a.errorf(errors.ResolveError, fn, "duplicate declaration of %q", fn.Name)
	}
}

func (a *Analyzer) functionKind(fn *ast.FunctionStmt) types.Kind {
	params := make([]types.Parameter, len(fn.Params))
	for i, p := range fn.Params {
		pk := types.NewAny()
		if p.Type != nil {
			pk = a.kindFromTypeExpr(p.Type)
		}
		if p.IsRest {
			pk = types.NewArray(pk)
		}
		params[i] = types.Parameter{Kind: pk, IsOptional: p.IsOptional, IsRest: p.IsRest}
	}
	ret := types.NewAny()
	if fn.ReturnType != nil {
		ret = a.kindFromTypeExpr(fn.ReturnType)
	}
	return types.NewFunction(ret, params)
}

// kindFromTypeExpr converts a parsed TypeExpr into a VariableKind. `void`
// maps to Undefined per spec §4.2.
func (a *Analyzer) kindFromTypeExpr(t *ast.TypeExpr) types.Kind {
	var base types.Kind
	switch t.Name {
	case "any":
		base = types.NewAny()
	case "string":
		base = types.Simple(types.String)
	case "number":
		base = types.Simple(types.Integer)
	case "void":
		base = types.Simple(types.Undefined)
	default:
		if a.classes[t.Name] {
			base = types.NewClass(t.Name)
		} else {
			a.errorf(errors.ResolveError, t, "unknown type %q", t.Name)
			base = types.NewAny()
		}
	}
	for i := 0; i < t.ArrayDepth; i++ {
		base = types.NewArray(base)
	}
	return base
}

func (a *Analyzer) pushScope() { a.current = newScope(a.current) }
func (a *Analyzer) popScope()  { a.current = a.current.outer }

func (a *Analyzer) walkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.EmptyStmt:
		// nothing to check
	case *ast.ExpressionStmt:
		a.walkExpression(s.Expr)
	case *ast.DefinitionStmt:
		a.walkDefinitionStmt(s)
	case *ast.ReturnStmt:
		a.walkReturnStmt(s)
	case *ast.FunctionStmt:
		a.walkFunctionStmt(s)
	case *ast.ClassStmt:
		a.walkClassStmt(s)
	default:
		a.errs = append(a.errs, errors.New(errors.InternalError, stmt.Pos(),
			fmt.Sprintf("unhandled statement kind %T", stmt), a.source, a.file))
	}
}

func (a *Analyzer) walkDefinitionStmt(s *ast.DefinitionStmt) {
	def, _ := a.current.resolve(s.Name)
	// preRegisterTopLevel already bound top-level lets; a block-local let
	// is bound here, now, so within-block forward references fail (spec
	// §4.3: "forward references within a block are not" allowed).
	if def == nil || def.Location != s.Pos() {
		kind := types.NewAny()
		if s.Type != nil {
			kind = a.kindFromTypeExpr(s.Type)
		}
		newDef := &types.Definition{Location: s.Pos(), Name: s.Name, Kind: kind, IsWritable: !s.IsConst}
		if !a.current.define(newDef) {
			a.errorf(errors.ResolveError, s, "duplicate declaration of %q", s.Name)
			return
		}
		def = newDef
	}

	if s.Value == nil {
		return
	}
	valueKind := a.walkExpression(s.Value)
	if s.Type == nil {
		// No explicit annotation: infer from the initialiser, refining the
		// placeholder Any registered during pre-registration (top level) or
		// just bound above (block-local).
		def.Kind = valueKind
		return
	}
	if !types.IsCompatible(valueKind, def.Kind) {
		a.errorf(errors.TypeError, s.Value, "cannot assign %s to %s %q", valueKind, def.Kind, s.Name)
	}
}

func (a *Analyzer) walkReturnStmt(s *ast.ReturnStmt) {
	if len(a.returnStack) == 0 {
		a.errorf(errors.ResolveError, s, "'return' outside of a function")
		return
	}
	expected := a.returnStack[len(a.returnStack)-1]

	var actual types.Kind
	if s.Value == nil {
		actual = types.Simple(types.Undefined)
	} else {
		actual = a.walkExpression(s.Value)
	}
	if !types.IsCompatible(actual, expected) {
		a.errorf(errors.TypeError, s, "return kind %s incompatible with declared return kind %s", actual, expected)
	}
}

func (a *Analyzer) walkFunctionStmt(fn *ast.FunctionStmt) {
	if fn.IsExternal {
		return // is_external ⇒ empty body, nothing to walk
	}

	fnKind, _ := a.current.resolve(fn.Name)
	var retKind types.Kind
	if fnKind != nil {
		retKind = *fnKind.Kind.Return
	} else {
		retKind = types.NewAny()
	}

	a.pushScope()
	a.returnStack = append(a.returnStack, retKind)
	a.bindParams(fn.Params)
	for _, stmt := range fn.Body {
		a.walkStatement(stmt)
	}
	a.returnStack = a.returnStack[:len(a.returnStack)-1]
	a.popScope()
}

func (a *Analyzer) bindParams(params []*ast.Param) {
	seenOptional := false
	for i, p := range params {
		if p.IsRest && i != len(params)-1 {
			a.errs = append(a.errs, errors.New(errors.ResolveError, p.Token.Pos,
				"rest parameter must be last", a.source, a.file))
		}
		if p.IsOptional {
			seenOptional = true
		} else if seenOptional && !p.IsRest {
			a.errs = append(a.errs, errors.New(errors.ResolveError, p.Token.Pos,
				"required parameter cannot follow an optional one", a.source, a.file))
		}

		kind := types.NewAny()
		if p.Type != nil {
			kind = a.kindFromTypeExpr(p.Type)
		}
		if p.IsRest {
			kind = types.NewArray(kind)
		}
		a.current.define(&types.Definition{
			Location:   p.Token.Pos,
			Name:       p.Name,
			Kind:       kind,
			IsWritable: p.Name != "this",
		})
	}
}

func (a *Analyzer) walkClassStmt(cls *ast.ClassStmt) {
	for _, method := range cls.Methods {
		a.walkFunctionStmt(method)
	}
}

// walkExpression computes and records the VariableKind of expr, returning
// it for the caller's own checks.
func (a *Analyzer) walkExpression(expr ast.Expression) types.Kind {
	var kind types.Kind
	switch e := expr.(type) {
	case *ast.ConstantExpr:
		kind = a.constantKind(e)
	case *ast.VariableExpr:
		kind = a.walkVariablePath(e.Path)
	case *ast.TypeOfExpr:
		a.walkExpression(e.Operand)
		kind = types.Simple(types.String)
	case *ast.UnaryExpr:
		kind = a.walkUnary(e)
	case *ast.BinaryExpr:
		kind = a.walkBinary(e)
	case *ast.AssignmentExpr:
		kind = a.walkAssignment(e)
	case *ast.ArrayLiteralExpr:
		kind = a.walkArrayLiteral(e)
	case *ast.ObjectLiteralExpr:
		kind = a.walkObjectLiteral(e)
	case *ast.CallExpr:
		kind = a.walkCall(e)
	case *ast.NewExpr:
		kind = a.walkNew(e)
	default:
		a.errs = append(a.errs, errors.New(errors.InternalError, expr.Pos(),
			fmt.Sprintf("unhandled expression kind %T", expr), a.source, a.file))
		kind = types.NewAny()
	}
	expr.SetResolvedKind(kind)
	return kind
}

func (a *Analyzer) constantKind(c *ast.ConstantExpr) types.Kind {
	return types.Simple(c.Tag)
}

// walkVariablePath resolves a VariableIdentifier to its VariableKind,
// walking Name → Property → Index per spec §4.3. Every path node's
// resolved kind is recorded on the node itself so the code generator can
// later tell a plain-object property apart from a class-method reference
// without re-running resolution.
func (a *Analyzer) walkVariablePath(path ast.VariableIdentifier) types.Kind {
	kind := a.walkVariablePathUncached(path)
	path.SetResolvedKind(kind)
	return kind
}

func (a *Analyzer) walkVariablePathUncached(path ast.VariableIdentifier) types.Kind {
	switch p := path.(type) {
	case *ast.NameIdentifier:
		def, ok := a.current.resolve(p.Name)
		if !ok {
			a.errs = append(a.errs, errors.New(errors.ResolveError, p.Pos(),
				fmt.Sprintf("undeclared identifier %q", p.Name), a.source, a.file))
			return types.NewAny()
		}
		return def.Kind
	case *ast.PropertyIdentifier:
		baseKind := a.walkVariablePath(p.Base)
		switch baseKind.Tag {
		case types.Any:
			return types.NewAny()
		case types.Class:
			// A bound method reference. There is no first-class function
			// value in the runtime ABI, so this kind only makes sense as
			// the target of an immediate Call, which walkCall handles
			// before ever reaching here; treat it as Any elsewhere.
			if _, ok := a.classMethods[baseKind.ClassName][p.Name]; !ok {
				a.errs = append(a.errs, errors.New(errors.ResolveError, p.Pos(),
					fmt.Sprintf("class %q has no method %q", baseKind.ClassName, p.Name), a.source, a.file))
			}
			return types.NewAny()
		case types.Object:
			for _, f := range baseKind.Fields {
				if f.Name == p.Name {
					return f.Kind
				}
			}
			a.errs = append(a.errs, errors.New(errors.TypeError, p.Pos(),
				fmt.Sprintf("object has no field %q", p.Name), a.source, a.file))
			return types.NewAny()
		default:
			a.errs = append(a.errs, errors.New(errors.TypeError, p.Pos(),
				fmt.Sprintf("cannot access property %q on %s", p.Name, baseKind), a.source, a.file))
			return types.NewAny()
		}
	case *ast.IndexIdentifier:
		baseKind := a.walkVariablePath(p.Base)
		a.walkExpression(p.Index)
		switch baseKind.Tag {
		case types.Any:
			return types.NewAny()
		case types.Array:
			return *baseKind.Element
		default:
			a.errs = append(a.errs, errors.New(errors.TypeError, p.Pos(),
				fmt.Sprintf("cannot index into %s", baseKind), a.source, a.file))
			return types.NewAny()
		}
	default:
		return types.NewAny()
	}
}

func (a *Analyzer) walkUnary(e *ast.UnaryExpr) types.Kind {
	operand := a.walkExpression(e.Operand)
	switch e.Op {
	case "+", "-":
		if operand.Tag != types.Any && !operand.IsNumeric() {
			a.errorf(errors.TypeError, e, "unary %q requires a numeric operand, got %s", e.Op, operand)
		}
		if operand.Tag == types.Any {
			return types.NewAny()
		}
		return operand
	case "!":
		if operand.Tag != types.Any && operand.Tag != types.Boolean {
			a.errorf(errors.TypeError, e, "unary '!' requires a boolean operand, got %s", operand)
		}
		return types.Simple(types.Boolean)
	default:
		a.errorf(errors.InternalError, e, "unknown unary operator %q", e.Op)
		return types.NewAny()
	}
}

func (a *Analyzer) walkBinary(e *ast.BinaryExpr) types.Kind {
	left := a.walkExpression(e.Left)
	right := a.walkExpression(e.Right)

	switch e.Op {
	case "&&", "||":
		if !isBooleanish(left) || !isBooleanish(right) {
			a.errorf(errors.TypeError, e, "%q requires boolean operands, got %s and %s", e.Op, left, right)
		}
		return types.Simple(types.Boolean)
	case "===", "!==":
		return types.Simple(types.Boolean)
	case "==", "!=":
		if !types.IsCompatible(left, right) && !types.IsCompatible(right, left) {
			a.errorf(errors.TypeError, e, "%q requires operands of the same kind, got %s and %s", e.Op, left, right)
		}
		return types.Simple(types.Boolean)
	case "<", "<=", ">", ">=":
		if !isNumericish(left) || !isNumericish(right) {
			a.errorf(errors.TypeError, e, "%q requires numeric operands, got %s and %s", e.Op, left, right)
		}
		return types.Simple(types.Boolean)
	case "+":
		if left.Tag == types.Any || right.Tag == types.Any {
			return types.NewAny()
		}
		if left.Tag == types.String && right.Tag == types.String {
			return types.Simple(types.String)
		}
		return a.arithmeticResult(e, left, right)
	case "-", "*", "/":
		return a.arithmeticResult(e, left, right)
	case "%":
		if left.Tag == types.Any || right.Tag == types.Any {
			return types.NewAny()
		}
		if left.Tag != types.Integer || right.Tag != types.Integer {
			a.errorf(errors.TypeError, e, "'%%' requires integer operands, got %s and %s", left, right)
		}
		return types.Simple(types.Integer)
	default:
		a.errorf(errors.InternalError, e, "unknown binary operator %q", e.Op)
		return types.NewAny()
	}
}

func (a *Analyzer) arithmeticResult(e *ast.BinaryExpr, left, right types.Kind) types.Kind {
	if left.Tag == types.Any || right.Tag == types.Any {
		return types.NewAny()
	}
	if !left.IsNumeric() || !right.IsNumeric() {
		a.errorf(errors.TypeError, e, "%q requires numeric operands, got %s and %s", e.Op, left, right)
		return types.NewAny()
	}
	if left.Tag == types.Float || right.Tag == types.Float {
		return types.Simple(types.Float)
	}
	return types.Simple(types.Integer)
}

func isNumericish(k types.Kind) bool { return k.Tag == types.Any || k.IsNumeric() }
func isBooleanish(k types.Kind) bool { return k.Tag == types.Any || k.Tag == types.Boolean }

func (a *Analyzer) walkAssignment(e *ast.AssignmentExpr) types.Kind {
	targetKind := a.walkVariablePath(e.Target)
	def := a.resolveRootDefinition(e.Target)
	if def != nil && !def.IsWritable {
		a.errorf(errors.ResolveError, e, "cannot assign to read-only binding %q", rootName(e.Target))
	}
	valueKind := a.walkExpression(e.Value)
	if !types.IsCompatible(valueKind, targetKind) {
		a.errorf(errors.TypeError, e, "cannot assign %s to %s", valueKind, targetKind)
	}
	return targetKind
}

// resolveRootDefinition finds the Definition for the Name at the root of a
// VariableIdentifier path, used to check writability.
func (a *Analyzer) resolveRootDefinition(path ast.VariableIdentifier) *types.Definition {
	switch p := path.(type) {
	case *ast.NameIdentifier:
		def, _ := a.current.resolve(p.Name)
		return def
	case *ast.PropertyIdentifier:
		return a.resolveRootDefinition(p.Base)
	case *ast.IndexIdentifier:
		return a.resolveRootDefinition(p.Base)
	default:
		return nil
	}
}

func rootName(path ast.VariableIdentifier) string {
	switch p := path.(type) {
	case *ast.NameIdentifier:
		return p.Name
	case *ast.PropertyIdentifier:
		return rootName(p.Base)
	case *ast.IndexIdentifier:
		return rootName(p.Base)
	default:
		return "?"
	}
}

func (a *Analyzer) walkArrayLiteral(e *ast.ArrayLiteralExpr) types.Kind {
	if len(e.Elements) == 0 {
		return types.NewArray(types.NewAny())
	}
	element := a.walkExpression(e.Elements[0])
	for _, el := range e.Elements[1:] {
		k := a.walkExpression(el)
		if !types.IsCompatible(k, element) && !types.IsCompatible(element, k) {
			element = types.NewAny()
		}
	}
	return types.NewArray(element)
}

func (a *Analyzer) walkObjectLiteral(e *ast.ObjectLiteralExpr) types.Kind {
	fields := make([]types.Field, len(e.Keys))
	for i, k := range e.Keys {
		v := a.walkExpression(e.Values[i])
		fields[i] = types.Field{Name: k, Kind: v}
	}
	return types.NewObject(fields)
}

func (a *Analyzer) walkCall(e *ast.CallExpr) types.Kind {
	if prop, ok := e.Target.(*ast.PropertyIdentifier); ok {
		if baseKind := a.walkVariablePath(prop.Base); baseKind.Tag == types.Class {
			return a.walkMethodCall(e, prop, baseKind.ClassName)
		}
	}

	targetKind := a.walkVariablePath(e.Target)
	argKinds := make([]types.Kind, len(e.Args))
	for i, arg := range e.Args {
		argKinds[i] = a.walkExpression(arg)
	}

	if targetKind.Tag == types.Any {
		return types.NewAny()
	}
	if targetKind.Tag != types.Function {
		a.errorf(errors.TypeError, e, "cannot call non-function of kind %s", targetKind)
		return types.NewAny()
	}

	a.checkArgs(e, targetKind.Params, argKinds)
	return *targetKind.Return
}

// walkMethodCall type-checks `instance.method(args)` against the method's
// signature (synthetic `this` already stripped) and sets prop's resolved
// kind to the method's Function kind. The codegen dispatches on prop.Base,
// whose Class kind walkVariablePath already recorded, to emit a direct
// `<Class>_<method>` call.
func (a *Analyzer) walkMethodCall(e *ast.CallExpr, prop *ast.PropertyIdentifier, className string) types.Kind {
	methodKind, ok := a.classMethods[className][prop.Name]
	if !ok {
		a.errorf(errors.ResolveError, e, "class %q has no method %q", className, prop.Name)
		return types.NewAny()
	}
	prop.SetResolvedKind(methodKind)

	argKinds := make([]types.Kind, len(e.Args))
	for i, arg := range e.Args {
		argKinds[i] = a.walkExpression(arg)
	}
	a.checkArgs(e, methodKind.Params, argKinds)
	return *methodKind.Return
}

func (a *Analyzer) checkArgs(e ast.Node, params []types.Parameter, argKinds []types.Kind) {
	required := 0
	hasRest := false
	for _, p := range params {
		if p.IsRest {
			hasRest = true
			continue
		}
		if !p.IsOptional {
			required++
		}
	}
	maxFixed := len(params)
	if hasRest {
		maxFixed--
	}

	if len(argKinds) < required || (!hasRest && len(argKinds) > maxFixed) {
		a.errorf(errors.TypeError, e, "wrong number of arguments: got %d", len(argKinds))
		return
	}

	for i, p := range params {
		if p.IsRest {
			for _, ak := range argKinds[i:] {
				if !types.IsCompatible(ak, *p.Kind.Element) {
					a.errorf(errors.TypeError, e, "rest argument %s incompatible with %s", ak, *p.Kind.Element)
				}
			}
			return
		}
		if i >= len(argKinds) {
			return
		}
		if !types.IsCompatible(argKinds[i], p.Kind) {
			a.errorf(errors.TypeError, e, "argument %d: %s incompatible with parameter kind %s", i+1, argKinds[i], p.Kind)
		}
	}
}

// walkNew requires the target to resolve to a Class, returning an Any
// handle per spec §9 (no typed-field inference exists in this dialect).
func (a *Analyzer) walkNew(e *ast.NewExpr) types.Kind {
	name, ok := e.Target.(*ast.NameIdentifier)
	if !ok {
		a.errorf(errors.TypeError, e, "'new' target must be a class name")
		return types.NewAny()
	}
	if !a.classes[name.Name] {
		a.errorf(errors.ResolveError, e, "undeclared class %q", name.Name)
		return types.NewAny()
	}
	for _, arg := range e.Args {
		a.walkExpression(arg)
	}
	return types.NewAny()
}
