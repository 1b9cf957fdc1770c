package parser

import (
	"strings"
	"testing"

	"github.com/bob-lang/bob/internal/ast"
	"github.com/bob-lang/bob/internal/lexer"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", input, errs)
	}
	return program
}

func parseErrors(t *testing.T, input string) []string {
	t.Helper()
	p := New(lexer.New(input))
	p.ParseProgram()
	return p.Errors()
}

func firstStatement(t *testing.T, input string) ast.Statement {
	t.Helper()
	program := parse(t, input)
	if len(program.Statements) == 0 {
		t.Fatalf("no statements parsed from %q", input)
	}
	return program.Statements[0]
}

func TestVarStatement(t *testing.T) {
	stmt, ok := firstStatement(t, "var answer = 42").(*ast.VarStatement)
	if !ok {
		t.Fatalf("expected VarStatement")
	}
	if stmt.Name.Value != "answer" {
		t.Errorf("expected name %q, got %q", "answer", stmt.Name.Value)
	}
	num, ok := stmt.Value.(*ast.NumberLiteral)
	if !ok || num.Value != 42 {
		t.Errorf("expected number literal 42, got %#v", stmt.Value)
	}

	// declaration without initializer
	stmt, ok = firstStatement(t, "var x").(*ast.VarStatement)
	if !ok {
		t.Fatalf("expected VarStatement")
	}
	if stmt.Value != nil {
		t.Errorf("expected nil initializer, got %#v", stmt.Value)
	}
}

func TestFunctionStatement(t *testing.T) {
	stmt, ok := firstStatement(t, "func add(a, b) { return a + b }").(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("expected FunctionStatement")
	}
	if stmt.Name.Value != "add" {
		t.Errorf("expected name %q, got %q", "add", stmt.Name.Value)
	}
	if len(stmt.Parameters) != 2 || stmt.Parameters[0].Value != "a" || stmt.Parameters[1].Value != "b" {
		t.Errorf("unexpected parameters %#v", stmt.Parameters)
	}
	if len(stmt.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(stmt.Body.Statements))
	}
	if _, ok := stmt.Body.Statements[0].(*ast.ReturnStatement); !ok {
		t.Errorf("expected ReturnStatement body, got %T", stmt.Body.Statements[0])
	}
}

func TestIfElifElseChain(t *testing.T) {
	input := `
if (a) { 1 }
elif (b) { 2 }
elif (c) { 3 }
else { 4 }
`
	stmt, ok := firstStatement(t, input).(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement")
	}

	// each elif becomes a nested if in the alternative slot
	second, ok := stmt.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected nested IfStatement for first elif, got %T", stmt.Alternative)
	}
	third, ok := second.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected nested IfStatement for second elif, got %T", second.Alternative)
	}
	if _, ok := third.Alternative.(*ast.BlockStatement); !ok {
		t.Errorf("expected BlockStatement for else, got %T", third.Alternative)
	}
}

// for loops are rewritten at parse time into an enclosing block holding the
// initializer and a while loop whose body ends with the increment.
func TestForStatementDesugarsToWhile(t *testing.T) {
	outer, ok := firstStatement(t, "for (var i = 0; i < 3; i++) { print(i) }").(*ast.BlockStatement)
	if !ok {
		t.Fatalf("expected enclosing BlockStatement, got %T",
			firstStatement(t, "for (var i = 0; i < 3; i++) { print(i) }"))
	}
	if len(outer.Statements) != 2 {
		t.Fatalf("expected init + while, got %d statements", len(outer.Statements))
	}
	if _, ok := outer.Statements[0].(*ast.VarStatement); !ok {
		t.Errorf("expected VarStatement init, got %T", outer.Statements[0])
	}

	loop, ok := outer.Statements[1].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("expected WhileStatement, got %T", outer.Statements[1])
	}
	cond, ok := loop.Condition.(*ast.InfixExpression)
	if !ok || cond.Operator != "<" {
		t.Fatalf("unexpected loop condition %#v", loop.Condition)
	}

	body, ok := loop.Body.(*ast.BlockStatement)
	if !ok {
		t.Fatalf("expected block body, got %T", loop.Body)
	}
	last := body.Statements[len(body.Statements)-1]
	exprStmt, ok := last.(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected trailing increment statement, got %T", last)
	}
	if _, ok := exprStmt.Expression.(*ast.PostfixExpression); !ok {
		t.Errorf("expected postfix increment, got %T", exprStmt.Expression)
	}
}

func TestForStatementEmptyClauses(t *testing.T) {
	loop, ok := firstStatement(t, "for (;;) {}").(*ast.WhileStatement)
	if !ok {
		t.Fatalf("expected bare WhileStatement, got %T", firstStatement(t, "for (;;) {}"))
	}
	lit, ok := loop.Condition.(*ast.BooleanLiteral)
	if !ok || !lit.Value {
		t.Errorf("expected implicit true condition, got %#v", loop.Condition)
	}
}

// parallel loops keep their three clauses for the evaluator to inspect.
func TestParallelStatementKeepsClauses(t *testing.T) {
	stmt, ok := firstStatement(t, "parallel (var i = 0; i < 10; i++) { work(i) }").(*ast.ParallelStatement)
	if !ok {
		t.Fatalf("expected ParallelStatement")
	}
	if _, ok := stmt.Init.(*ast.VarStatement); !ok {
		t.Errorf("expected VarStatement init, got %T", stmt.Init)
	}
	if _, ok := stmt.Condition.(*ast.InfixExpression); !ok {
		t.Errorf("expected InfixExpression condition, got %T", stmt.Condition)
	}
	if _, ok := stmt.Increment.(*ast.PostfixExpression); !ok {
		t.Errorf("expected PostfixExpression increment, got %T", stmt.Increment)
	}
	if _, ok := stmt.Body.(*ast.BlockStatement); !ok {
		t.Errorf("expected BlockStatement body, got %T", stmt.Body)
	}
}

func TestAssignmentTargets(t *testing.T) {
	stmt := firstStatement(t, "x = 1").(*ast.ExpressionStatement)
	if _, ok := stmt.Expression.(*ast.AssignExpression); !ok {
		t.Errorf("expected AssignExpression, got %T", stmt.Expression)
	}

	stmt = firstStatement(t, "a[0] = 1").(*ast.ExpressionStatement)
	if _, ok := stmt.Expression.(*ast.IndexAssignExpression); !ok {
		t.Errorf("expected IndexAssignExpression, got %T", stmt.Expression)
	}

	stmt = firstStatement(t, "x += 1").(*ast.ExpressionStatement)
	compound, ok := stmt.Expression.(*ast.CompoundAssignExpression)
	if !ok {
		t.Fatalf("expected CompoundAssignExpression, got %T", stmt.Expression)
	}
	if compound.BinaryOperator() != "+" {
		t.Errorf("expected binary operator %q, got %q", "+", compound.BinaryOperator())
	}
}

func TestInvalidAssignmentTargets(t *testing.T) {
	for _, input := range []string{"1 = 2", "f() = 3", "a[0] += 1"} {
		if errs := parseErrors(t, input); len(errs) == 0 {
			t.Errorf("%q: expected a parse error", input)
		}
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string // top-level operator
	}{
		{"1 + 2 * 3", "+"},
		{"1 * 2 + 3", "+"},
		{"1 < 2 == true", "=="},
		{"a and b or c", "or"},
		{"1 + 2 in [3]", "in"},
		{"2 * 3 ** 2", "*"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			stmt := firstStatement(t, tt.input).(*ast.ExpressionStatement)
			infix, ok := stmt.Expression.(*ast.InfixExpression)
			if !ok {
				t.Fatalf("expected InfixExpression, got %T", stmt.Expression)
			}
			if infix.Operator != tt.expected {
				t.Errorf("expected top-level %q, got %q", tt.expected, infix.Operator)
			}
		})
	}
}

func TestCallAndIndexChaining(t *testing.T) {
	stmt := firstStatement(t, "f(1)(2)[3]").(*ast.ExpressionStatement)
	index, ok := stmt.Expression.(*ast.IndexExpression)
	if !ok {
		t.Fatalf("expected IndexExpression, got %T", stmt.Expression)
	}
	call, ok := index.Left.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", index.Left)
	}
	if _, ok := call.Callee.(*ast.CallExpression); !ok {
		t.Errorf("expected chained CallExpression callee, got %T", call.Callee)
	}
}

func TestReturnWithoutValue(t *testing.T) {
	stmt := firstStatement(t, "func f() { return }").(*ast.FunctionStatement)
	ret := stmt.Body.Statements[0].(*ast.ReturnStatement)
	if ret.Value != nil {
		t.Errorf("expected bare return, got value %#v", ret.Value)
	}
}

func TestNewlinesAsSeparators(t *testing.T) {
	program := parse(t, "\n\nvar x = 1\n\n\nvar y = 2\n")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}

	program = parse(t, "var x = 1; var y = 2; x + y")
	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Statements))
	}
}

func TestParseErrorsCarryLocation(t *testing.T) {
	errs := parseErrors(t, "var x = 1\nvar = 2")
	if len(errs) == 0 {
		t.Fatal("expected a parse error")
	}
	if !strings.HasPrefix(errs[0], "line 2:") {
		t.Errorf("expected error located on line 2, got %q", errs[0])
	}
}

// After an error the parser resynchronizes at the next statement boundary and
// keeps going, so one bad line yields one error, not a cascade.
func TestErrorRecovery(t *testing.T) {
	p := New(lexer.New("var = 1\nvar ok = 2\n@\nvar also = 3"))
	program := p.ParseProgram()

	if len(p.Errors()) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(p.Errors()), p.Errors())
	}
	if len(program.Statements) != 2 {
		t.Errorf("expected 2 good statements, got %d", len(program.Statements))
	}
}

// A stray '}' at statement position must be reported and skipped, not spun on
// forever: it is both the failure point and a sync boundary, so without an
// explicit skip neither the statement parser nor synchronize consumes it.
func TestStrayClosingBraceRecovers(t *testing.T) {
	errs := parseErrors(t, "}")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}

	p := New(lexer.New("var ok = 1\n}\nvar also = 2"))
	program := p.ParseProgram()
	if len(p.Errors()) != 1 {
		t.Errorf("expected 1 error, got %d: %v", len(p.Errors()), p.Errors())
	}
	if len(program.Statements) != 2 {
		t.Errorf("expected 2 good statements, got %d", len(program.Statements))
	}
}

func TestOrphanElifReported(t *testing.T) {
	errs := parseErrors(t, "elif (x) { 1 }")
	if len(errs) == 0 {
		t.Fatal("expected a parse error for elif without if")
	}
}

// The elif/else lookahead skips line breaks but must not swallow an unrelated
// following statement.
func TestIfWithoutElseLeavesNextStatement(t *testing.T) {
	program := parse(t, "if (a) { 1 }\nvar x = 2")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	if _, ok := program.Statements[0].(*ast.IfStatement); !ok {
		t.Errorf("expected IfStatement first, got %T", program.Statements[0])
	}
	if _, ok := program.Statements[1].(*ast.VarStatement); !ok {
		t.Errorf("expected VarStatement second, got %T", program.Statements[1])
	}
}

func TestUnterminatedStringReported(t *testing.T) {
	errs := parseErrors(t, `var s = "oops`)
	if len(errs) == 0 {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(errs[0], "unterminated string") {
		t.Errorf("expected unterminated string error, got %q", errs[0])
	}
}

func TestMissingClosingBrace(t *testing.T) {
	errs := parseErrors(t, "func f() { return 1")
	if len(errs) == 0 {
		t.Fatal("expected a parse error")
	}
}
