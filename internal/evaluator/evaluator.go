package evaluator

import (
	"bufio"
	"io"
	"os"

	"github.com/bob-lang/bob/internal/ast"
	"github.com/bob-lang/bob/internal/config"
)

// maxEvalDepth is the maximum nesting depth of Eval calls.
// Prevents Go stack overflow from runaway recursion in user programs.
const maxEvalDepth = 10000

type Evaluator struct {
	Out io.Writer
	In  *bufio.Reader

	settings *config.Settings
	globals  *Environment
	builtins map[string]*Builtin
	atomics  *AtomicRegistry

	// workerID is 0 on the main interpreter and 1..n on parallel-loop workers.
	workerID int

	// evalDepth tracks the current nesting depth of Eval calls
	evalDepth int
}

func New() *Evaluator {
	return NewWithSettings(config.Default())
}

func NewWithSettings(settings *config.Settings) *Evaluator {
	e := &Evaluator{
		Out:      os.Stdout,
		In:       bufio.NewReader(os.Stdin),
		settings: settings,
		builtins: builtinTable(),
	}
	e.Reset()
	return e
}

// Reset reinitializes globals and the atomic registry, discarding all
// previously defined variables and functions.
func (e *Evaluator) Reset() {
	e.globals = NewEnvironment()
	e.atomics = newAtomicRegistry()
}

// Globals returns the root environment.
func (e *Evaluator) Globals() *Environment {
	return e.globals
}

// Clone creates a sub-evaluator for a parallel-loop worker. It shares the
// globals chain, the builtin table, the atomic registry and the output
// writer; only the call-local state is fresh.
func (e *Evaluator) Clone() *Evaluator {
	return &Evaluator{
		Out:      e.Out,
		In:       e.In,
		settings: e.settings,
		globals:  e.globals,
		builtins: e.builtins,
		atomics:  e.atomics,
	}
}

// Execute runs a program fragment against the persistent interpreter state.
// It returns the last statement's value, or the first runtime error. A return
// statement reaching the top level ends the fragment with its value.
func (e *Evaluator) Execute(program *ast.Program) Object {
	var result Object = NIL
	for _, stmt := range program.Statements {
		result = e.Eval(stmt, e.globals)
		switch result := result.(type) {
		case *Error:
			return result
		case *ReturnValue:
			return result.Value
		}
	}
	return result
}

func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	e.evalDepth++
	if e.evalDepth > maxEvalDepth {
		e.evalDepth--
		return newError("maximum recursion depth exceeded")
	}

	obj := e.evalCore(node, env)
	e.evalDepth--

	// Back-fill the error location from the nearest node token.
	if err, ok := obj.(*Error); ok && err.Line == 0 && node != nil {
		if provider, ok := node.(ast.TokenProvider); ok {
			tok := provider.GetToken()
			err.Line = tok.Line
			err.Column = tok.Column
		}
	}
	return obj
}

func (e *Evaluator) evalCore(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		return e.evalStatements(node.Statements, env)
	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)
	case *ast.VarStatement:
		return e.evalVarStatement(node, env)
	case *ast.FunctionStatement:
		fn := &Function{
			Name:       node.Name.Value,
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        env, // closure
		}
		env.Set(node.Name.Value, fn)
		return NIL
	case *ast.BlockStatement:
		return e.evalStatements(node.Statements, NewEnclosedEnvironment(env))
	case *ast.IfStatement:
		return e.evalIfStatement(node, env)
	case *ast.WhileStatement:
		return e.evalWhileStatement(node, env)
	case *ast.ParallelStatement:
		return e.evalParallelStatement(node, env)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(node, env)

	// Expressions
	case *ast.NumberLiteral:
		return &Number{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)
	case *ast.NilLiteral:
		return NIL
	case *ast.GroupedExpression:
		return e.Eval(node.Expression, env)
	case *ast.Identifier:
		return e.evalIdentifier(node, env)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(node, env)
	case *ast.PrefixExpression:
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefix(node.Operator, right)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.AssignExpression:
		return e.evalAssignExpression(node, env)
	case *ast.CompoundAssignExpression:
		return e.evalCompoundAssign(node, env)
	case *ast.PostfixExpression:
		return e.evalPostfixExpression(node, env)
	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)
	case *ast.IndexAssignExpression:
		return e.evalIndexAssign(node, env)
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	}
	return newError("unknown node type %T", node)
}

// evalStatements runs a statement sequence in env, unwinding on the first
// error or return signal.
func (e *Evaluator) evalStatements(stmts []ast.Statement, env *Environment) Object {
	var result Object = NIL
	for _, stmt := range stmts {
		result = e.Eval(stmt, env)
		if result != nil {
			if rt := result.Type(); rt == RETURN_VALUE_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}
	return result
}

func (e *Evaluator) evalVarStatement(node *ast.VarStatement, env *Environment) Object {
	var value Object = NIL
	if node.Value != nil {
		value = e.Eval(node.Value, env)
		if isError(value) {
			return value
		}
	}
	// define in the current scope only; redeclaration shadows
	env.Set(node.Name.Value, value)
	return NIL
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement, env *Environment) Object {
	condition := e.Eval(node.Condition, env)
	if isError(condition) {
		return condition
	}
	if isTruthy(condition) {
		return e.Eval(node.Consequence, env)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative, env)
	}
	return NIL
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement, env *Environment) Object {
	for {
		condition := e.Eval(node.Condition, env)
		if isError(condition) {
			return condition
		}
		if !isTruthy(condition) {
			return NIL
		}
		result := e.Eval(node.Body, env)
		if result != nil {
			if rt := result.Type(); rt == RETURN_VALUE_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}
}

func (e *Evaluator) evalReturnStatement(node *ast.ReturnStatement, env *Environment) Object {
	var value Object = NIL
	if node.Value != nil {
		value = e.Eval(node.Value, env)
		if isError(value) {
			return value
		}
	}
	return &ReturnValue{Value: value}
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	return newError("undefined variable '%s'", node.Value)
}

func (e *Evaluator) evalArrayLiteral(node *ast.ArrayLiteral, env *Environment) Object {
	elements := make([]Object, 0, len(node.Elements))
	for _, el := range node.Elements {
		val := e.Eval(el, env)
		if isError(val) {
			return val
		}
		elements = append(elements, val)
	}
	return &Array{Elements: elements}
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	// and/or short-circuit; the result is always a Boolean
	if node.Operator == "and" {
		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		if !isTruthy(left) {
			return FALSE
		}
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return nativeBoolToBooleanObject(isTruthy(right))
	}
	if node.Operator == "or" {
		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		if isTruthy(left) {
			return TRUE
		}
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return nativeBoolToBooleanObject(isTruthy(right))
	}

	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	right := e.Eval(node.Right, env)
	if isError(right) {
		return right
	}
	return evalInfix(node.Operator, left, right)
}

func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression, env *Environment) Object {
	value := e.Eval(node.Value, env)
	if isError(value) {
		return value
	}
	if !env.Update(node.Name.Value, value) {
		return newError("undefined variable '%s'", node.Name.Value)
	}
	return value
}

func (e *Evaluator) evalCompoundAssign(node *ast.CompoundAssignExpression, env *Environment) Object {
	current, ok := env.Get(node.Name.Value)
	if !ok {
		return newError("undefined variable '%s'", node.Name.Value)
	}
	value := e.Eval(node.Value, env)
	if isError(value) {
		return value
	}
	result := evalInfix(node.BinaryOperator(), current, value)
	if isError(result) {
		return result
	}
	env.Update(node.Name.Value, result)
	return result
}

// evalPostfixExpression implements i++ and i--: the incremented value is
// written back, the pre-increment value is the expression's result.
func (e *Evaluator) evalPostfixExpression(node *ast.PostfixExpression, env *Environment) Object {
	current, ok := env.Get(node.Name.Value)
	if !ok {
		return newError("undefined variable '%s'", node.Name.Value)
	}
	num, ok := current.(*Number)
	if !ok {
		return newError("'%s' requires a number variable, got %s", node.Operator, current.Type())
	}
	delta := 1.0
	if node.Operator == "--" {
		delta = -1.0
	}
	env.Update(node.Name.Value, &Number{Value: num.Value + delta})
	return current
}

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	index := e.Eval(node.Index, env)
	if isError(index) {
		return index
	}

	idx, ok := index.(*Number)
	if !ok {
		return newError("index must be a number, got %s", index.Type())
	}

	switch target := left.(type) {
	case *Array:
		i, ok := normalizeIndex(int(idx.Value), len(target.Elements))
		if !ok {
			return newError("index out of bounds")
		}
		return target.Elements[i]
	case *String:
		i, ok := normalizeIndex(int(idx.Value), len(target.Value))
		if !ok {
			return newError("index out of bounds")
		}
		return &String{Value: target.Value[i : i+1]}
	default:
		return newError("cannot index %s", left.Type())
	}
}

func (e *Evaluator) evalIndexAssign(node *ast.IndexAssignExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	index := e.Eval(node.Index, env)
	if isError(index) {
		return index
	}
	value := e.Eval(node.Value, env)
	if isError(value) {
		return value
	}

	arr, ok := left.(*Array)
	if !ok {
		return newError("cannot assign by index into %s", left.Type())
	}
	idx, ok := index.(*Number)
	if !ok {
		return newError("index must be a number, got %s", index.Type())
	}
	i, ok := normalizeIndex(int(idx.Value), len(arr.Elements))
	if !ok {
		return newError("index out of bounds")
	}
	// in-place: every alias of the array observes the write
	arr.Elements[i] = value
	return value
}

// normalizeIndex maps negative indices from the end and bounds-checks the
// result.
func normalizeIndex(i, size int) (int, bool) {
	if i < 0 {
		i += size
	}
	if i < 0 || i >= size {
		return 0, false
	}
	return i, true
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	// arguments evaluate left to right before the callee resolves
	args := make([]Object, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		arg := e.Eval(a, env)
		if isError(arg) {
			return arg
		}
		args = append(args, arg)
	}

	// a bare name naming a builtin calls it directly; builtins are not values
	if ident, ok := node.Callee.(*ast.Identifier); ok {
		if builtin, ok := e.builtins[ident.Value]; ok {
			return builtin.Fn(e, args...)
		}
	}

	callee := e.Eval(node.Callee, env)
	if isError(callee) {
		return callee
	}
	return e.applyFunction(callee, args)
}

func (e *Evaluator) applyFunction(fn Object, args []Object) Object {
	function, ok := fn.(*Function)
	if !ok {
		return newError("can only call functions, got %s", fn.Type())
	}
	if len(function.Parameters) != len(args) {
		name := function.Name
		if name == "" {
			name = "function"
		}
		return newError("%s expects %d arguments, got %d", name, len(function.Parameters), len(args))
	}

	// The call scope's parent is the captured closure, not the caller's
	// environment.
	callEnv := NewEnclosedEnvironment(function.Env)
	for i, param := range function.Parameters {
		callEnv.Set(param.Value, args[i])
	}

	result := e.evalStatements(function.Body.Statements, callEnv)
	if ret, ok := result.(*ReturnValue); ok {
		return ret.Value
	}
	if isError(result) {
		return result
	}
	// calls without an explicit return yield nil
	return NIL
}
