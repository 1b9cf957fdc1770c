package evaluator

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/bob-lang/bob/internal/ast"
)

// loopRange is a parallel loop reduced to a simple numeric range: the
// induction variable takes start + k*step for k in [0, count).
type loopRange struct {
	varName string
	start   float64
	step    float64
	count   int
}

// runtimeFailure carries an *Error object across the errgroup boundary.
type runtimeFailure struct {
	obj *Error
}

func (f *runtimeFailure) Error() string { return f.obj.Message }

// errParallelReturn rejects non-local return from a parallel body. The
// rejection holds on every execution path so the strategy the evaluator picks
// is never observable.
func errParallelReturn() *Error {
	return newError("'return' is not allowed in a parallel loop body")
}

func (e *Evaluator) evalParallelStatement(node *ast.ParallelStatement, env *Environment) Object {
	r, errObj := e.reduceLoopRange(node, env)
	if errObj != nil {
		return errObj
	}
	if r == nil {
		// irregular loop shape: correctness over speed
		return e.runLoopClauses(node, env)
	}
	if r.count == 0 {
		return NIL
	}
	if r.count < e.settings.Parallel.Threshold {
		return e.runRangeSequential(r, node.Body, env)
	}
	return e.runRangeParallel(r, node.Body, env)
}

// reduceLoopRange statically reduces the loop clauses to a numeric range.
// It returns (nil, nil) when the shape is not reducible and (nil, err) when a
// clause evaluates to a runtime error. The start/end expressions are
// evaluated once, in the enclosing environment.
func (e *Evaluator) reduceLoopRange(node *ast.ParallelStatement, env *Environment) (*loopRange, Object) {
	var name string
	var startExpr ast.Expression

	switch init := node.Init.(type) {
	case *ast.VarStatement:
		if init.Value == nil {
			return nil, nil
		}
		name = init.Name.Value
		startExpr = init.Value
	case *ast.ExpressionStatement:
		assign, ok := init.Expression.(*ast.AssignExpression)
		if !ok {
			return nil, nil
		}
		name = assign.Name.Value
		startExpr = assign.Value
	default:
		return nil, nil
	}

	cond, ok := node.Condition.(*ast.InfixExpression)
	if !ok {
		return nil, nil
	}
	condVar, ok := cond.Left.(*ast.Identifier)
	if !ok || condVar.Value != name {
		return nil, nil
	}
	switch cond.Operator {
	case "<", "<=", ">", ">=":
	default:
		return nil, nil
	}

	step := 0.0
	switch incr := node.Increment.(type) {
	case *ast.PostfixExpression:
		if incr.Name.Value != name {
			return nil, nil
		}
		step = 1
		if incr.Operator == "--" {
			step = -1
		}
	case *ast.CompoundAssignExpression:
		if incr.Name.Value != name {
			return nil, nil
		}
		switch incr.Operator {
		case "+=", "-=":
		default:
			return nil, nil
		}
		stepObj := e.Eval(incr.Value, env)
		if isError(stepObj) {
			return nil, stepObj
		}
		num, ok := stepObj.(*Number)
		if !ok {
			return nil, nil
		}
		step = num.Value
		if incr.Operator == "-=" {
			step = -step
		}
	default:
		return nil, nil
	}
	if step == 0 {
		return nil, nil
	}

	startObj := e.Eval(startExpr, env)
	if isError(startObj) {
		return nil, startObj
	}
	startNum, ok := startObj.(*Number)
	if !ok {
		return nil, nil
	}
	endObj := e.Eval(cond.Right, env)
	if isError(endObj) {
		return nil, endObj
	}
	endNum, ok := endObj.(*Number)
	if !ok {
		return nil, nil
	}

	count, ok := tripCount(startNum.Value, endNum.Value, step, cond.Operator)
	if !ok {
		return nil, nil
	}
	return &loopRange{varName: name, start: startNum.Value, step: step, count: count}, nil
}

// tripCount computes the number of iterations for the reduced range, or
// reports false when the step runs away from the bound.
func tripCount(start, end, step float64, operator string) (int, bool) {
	var n float64
	switch operator {
	case "<":
		if step <= 0 {
			return 0, false
		}
		n = math.Ceil((end - start) / step)
	case "<=":
		if step <= 0 {
			return 0, false
		}
		n = math.Floor((end-start)/step) + 1
	case ">":
		if step >= 0 {
			return 0, false
		}
		n = math.Ceil((start - end) / -step)
	case ">=":
		if step >= 0 {
			return 0, false
		}
		n = math.Floor((start-end)/-step) + 1
	default:
		return 0, false
	}
	if n <= 0 || math.IsNaN(n) {
		return 0, true
	}
	if n > float64(math.MaxInt32) {
		return 0, false
	}
	return int(n), true
}

// runLoopClauses executes an irreducible parallel loop sequentially, with
// counting-loop clause semantics in the current environment. Return from the
// body is rejected like on the other parallel paths.
func (e *Evaluator) runLoopClauses(node *ast.ParallelStatement, env *Environment) Object {
	loopEnv := NewEnclosedEnvironment(env)
	if node.Init != nil {
		if result := e.Eval(node.Init, loopEnv); isError(result) {
			return result
		}
	}
	for {
		if node.Condition != nil {
			condition := e.Eval(node.Condition, loopEnv)
			if isError(condition) {
				return condition
			}
			if !isTruthy(condition) {
				return NIL
			}
		}
		result := e.Eval(node.Body, loopEnv)
		if result != nil {
			switch result.Type() {
			case ERROR_OBJ:
				return result
			case RETURN_VALUE_OBJ:
				return errParallelReturn()
			}
		}
		if node.Increment != nil {
			if result := e.Eval(node.Increment, loopEnv); isError(result) {
				return result
			}
		}
	}
}

// runRangeSequential executes a reduced range below the parallel threshold.
// Scoping and control flow match the parallel path: each iteration gets a
// fresh child environment binding only the induction variable, and return is
// rejected.
func (e *Evaluator) runRangeSequential(r *loopRange, body ast.Statement, env *Environment) Object {
	for k := 0; k < r.count; k++ {
		iterEnv := NewEnclosedEnvironment(env)
		iterEnv.Set(r.varName, &Number{Value: r.start + float64(k)*r.step})
		result := e.Eval(body, iterEnv)
		if result != nil {
			switch result.Type() {
			case ERROR_OBJ:
				return result
			case RETURN_VALUE_OBJ:
				return errParallelReturn()
			}
		}
	}
	return NIL
}

// runRangeParallel partitions the range across worker threads. Workers share
// the enclosing environment chain (and through it the globals); each
// iteration still runs in its own fresh scope, so induction-variable storage
// is never shared. No cancellation: every partition runs to completion and
// the first recorded error is raised after the join.
func (e *Evaluator) runRangeParallel(r *loopRange, body ast.Statement, env *Environment) Object {
	workers := runtime.NumCPU()
	if max := e.settings.Parallel.MaxWorkers; max > 0 && workers > max {
		workers = max
	}
	if workers > r.count {
		workers = r.count
	}
	if workers < 1 {
		workers = 1
	}

	chunk := r.count / workers
	rem := r.count % workers

	var g errgroup.Group
	next := 0
	for w := 0; w < workers; w++ {
		size := chunk
		if w < rem {
			size++
		}
		lo, hi := next, next+size
		next = hi

		worker := e.Clone()
		worker.workerID = w + 1
		g.Go(func() error {
			for k := lo; k < hi; k++ {
				iterEnv := NewEnclosedEnvironment(env)
				iterEnv.Set(r.varName, &Number{Value: r.start + float64(k)*r.step})
				result := worker.Eval(body, iterEnv)
				if result != nil {
					switch result.Type() {
					case ERROR_OBJ:
						return &runtimeFailure{obj: result.(*Error)}
					case RETURN_VALUE_OBJ:
						return &runtimeFailure{obj: errParallelReturn()}
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if failure, ok := err.(*runtimeFailure); ok {
			return failure.obj
		}
		return newError("parallel loop failed: %v", err)
	}
	return NIL
}
