package parser_test

import (
	"testing"

	"github.com/valc-lang/valc/internal/ast"
	"github.com/valc-lang/valc/internal/lexer"
	"github.com/valc-lang/valc/internal/parser"
)

func parseOrFail(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l, "test.valc", input)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", input, p.Errors())
	}
	return prog
}

func parseExprStmt(t *testing.T, input string) ast.Expression {
	t.Helper()
	prog := parseOrFail(t, input)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	stmt, ok := prog.Statements[0].(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("expected ExpressionStmt, got %T", prog.Statements[0])
	}
	return stmt.Expr
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3))"},
		{"1 * 2 + 3;", "((1 * 2) + 3)"},
		{"1 - 2 - 3;", "((1 - 2) - 3)"},
		{"a || b && c;", "(a || (b && c))"},
		{"a == b != c;", "((a == b) != c)"},
		{"a < b && c > d;", "((a < b) && (c > d))"},
		{"-a + !b;", "((-a) + (!b))"},
		{"(1 + 2) * 3;", "((1 + 2) * 3)"},
		{"a.b.c;", "a.b.c"},
		{"a[0][1];", "a[0][1]"},
		{"a.b(1, 2);", "a.b(1, 2)"},
	}

	for _, tt := range tests {
		expr := parseExprStmt(t, tt.input)
		if got := expr.String(); got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAssignmentIsNotChainable(t *testing.T) {
	l := lexer.New("a = b = c;")
	p := parser.New(l, "test.valc", "a = b = c;")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for chained assignment, got none")
	}
}

func TestAssignmentTargetMustBePath(t *testing.T) {
	l := lexer.New("1 = 2;")
	p := parser.New(l, "test.valc", "1 = 2;")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for a non-path assignment target, got none")
	}
}

func TestDefinitionStmt(t *testing.T) {
	prog := parseOrFail(t, "let x: number = 1;")
	def, ok := prog.Statements[0].(*ast.DefinitionStmt)
	if !ok {
		t.Fatalf("expected DefinitionStmt, got %T", prog.Statements[0])
	}
	if def.Name != "x" || def.IsConst {
		t.Errorf("unexpected definition: %+v", def)
	}
	if def.Type == nil || def.Type.Name != "number" {
		t.Errorf("expected type annotation number, got %v", def.Type)
	}
}

func TestArrayTypeAnnotation(t *testing.T) {
	prog := parseOrFail(t, "let xs: number[][];")
	def := prog.Statements[0].(*ast.DefinitionStmt)
	if def.Type.ArrayDepth != 2 {
		t.Errorf("expected array depth 2, got %d", def.Type.ArrayDepth)
	}
}

func TestFunctionStmt(t *testing.T) {
	prog := parseOrFail(t, "function add(a: number, b: number): number { return a + b; }")
	fn, ok := prog.Statements[0].(*ast.FunctionStmt)
	if !ok {
		t.Fatalf("expected FunctionStmt, got %T", prog.Statements[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 || fn.IsExternal {
		t.Errorf("unexpected function: %+v", fn)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body))
	}
}

func TestDeclareFunctionHasNoBody(t *testing.T) {
	prog := parseOrFail(t, "declare function len(s: string): number;")
	fn := prog.Statements[0].(*ast.FunctionStmt)
	if !fn.IsExternal || fn.Body != nil {
		t.Errorf("expected external function with no body, got %+v", fn)
	}
}

func TestRestParameterMustBeLast(t *testing.T) {
	l := lexer.New("function f(...xs: number[], y: number) {}")
	p := parser.New(l, "test.valc", "function f(...xs: number[], y: number) {}")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for a non-trailing rest parameter, got none")
	}
}

func TestDecoratorsOnlyPrecedeFunctions(t *testing.T) {
	l := lexer.New("@builtin let x: number;")
	p := parser.New(l, "test.valc", "@builtin let x: number;")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for a decorator before a non-function declaration, got none")
	}
}

func TestClassStmt(t *testing.T) {
	prog := parseOrFail(t, "class Counter { increment(n: number): number { return n + 1; } }")
	cls, ok := prog.Statements[0].(*ast.ClassStmt)
	if !ok {
		t.Fatalf("expected ClassStmt, got %T", prog.Statements[0])
	}
	if cls.Name != "Counter" || len(cls.Methods) != 1 {
		t.Fatalf("unexpected class: %+v", cls)
	}
	method := cls.Methods[0]
	if len(method.Params) != 2 || method.Params[0].Name != "this" {
		t.Errorf("expected synthetic leading `this` parameter, got %+v", method.Params)
	}
}

func TestArrayAndObjectLiterals(t *testing.T) {
	expr := parseExprStmt(t, "[1, 2, 3];")
	if _, ok := expr.(*ast.ArrayLiteralExpr); !ok {
		t.Fatalf("expected ArrayLiteralExpr, got %T", expr)
	}

	expr = parseExprStmt(t, "{ a: 1, b: 'x' };")
	obj, ok := expr.(*ast.ObjectLiteralExpr)
	if !ok {
		t.Fatalf("expected ObjectLiteralExpr, got %T", expr)
	}
	if len(obj.Keys) != 2 || obj.Keys[0] != "a" || obj.Keys[1] != "b" {
		t.Errorf("unexpected keys: %v", obj.Keys)
	}
}

func TestNewAndTypeOf(t *testing.T) {
	expr := parseExprStmt(t, "new Counter(1);")
	if _, ok := expr.(*ast.NewExpr); !ok {
		t.Fatalf("expected NewExpr, got %T", expr)
	}

	expr = parseExprStmt(t, "typeof x;")
	if _, ok := expr.(*ast.TypeOfExpr); !ok {
		t.Fatalf("expected TypeOfExpr, got %T", expr)
	}
}

func TestReturnStmt(t *testing.T) {
	prog := parseOrFail(t, "function f() { return; }")
	fn := prog.Statements[0].(*ast.FunctionStmt)
	ret, ok := fn.Body[0].(*ast.ReturnStmt)
	if !ok || ret.Value != nil {
		t.Errorf("expected bare return, got %+v", fn.Body[0])
	}
}

func TestIntegerVsFloatLiteral(t *testing.T) {
	expr := parseExprStmt(t, "1;")
	c := expr.(*ast.ConstantExpr)
	if c.IntVal != 1 {
		t.Errorf("expected integer literal 1, got %+v", c)
	}

	expr = parseExprStmt(t, "1.5;")
	c = expr.(*ast.ConstantExpr)
	if c.FltVal != 1.5 {
		t.Errorf("expected float literal 1.5, got %+v", c)
	}
}

func TestUnexpectedTokenIsParseError(t *testing.T) {
	l := lexer.New("let = 1;")
	p := parser.New(l, "test.valc", "let = 1;")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for missing identifier after let, got none")
	}
}
