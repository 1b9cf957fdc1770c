package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bob-lang/bob/internal/ast"
)

type ObjectType string

const (
	NIL_OBJ          = "NIL"
	BOOLEAN_OBJ      = "BOOLEAN"
	NUMBER_OBJ       = "NUMBER"
	STRING_OBJ       = "STRING"
	ARRAY_OBJ        = "ARRAY"
	FUNCTION_OBJ     = "FUNCTION"
	BUILTIN_OBJ      = "BUILTIN"
	RETURN_VALUE_OBJ = "RETURN_VALUE"
	ERROR_OBJ        = "ERROR"
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return formatNumber(n.Value) }

// formatNumber renders integral doubles without a decimal point and
// everything else in the shortest round-trip form.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Array is a shared handle: every Object holding the same *Array observes
// in-place mutations made through any alias.
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, el := range a.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(el.Inspect())
	}
	out.WriteString("]")
	return out.String()
}

// Function is a user-defined callable capturing the environment active at its
// definition (the closure). Immutable after construction.
type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<function " + f.Name + ">" }

type BuiltinFunction func(e *Evaluator, args ...Object) Object

// Builtin is a native function. Builtins live in the evaluator's own table,
// not the environment: they are not first-class values.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<builtin " + b.Name + ">" }

// ReturnValue wraps a value travelling up from a return statement until the
// enclosing call (or the top-level program) unwraps it.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error is a runtime error propagated as a value through evaluation.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("ERROR at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return "ERROR: " + e.Message
}

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(v bool) *Boolean {
	if v {
		return TRUE
	}
	return FALSE
}

func newError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

func isTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Nil:
		return false
	case *Boolean:
		return obj.Value
	case *Number:
		return obj.Value != 0
	case *String:
		return obj.Value != ""
	case *Array:
		return len(obj.Elements) > 0
	default:
		return true
	}
}

// objectsEqual implements value equality. Arrays compare by length only, not
// elementwise; this matches the reference behavior and is relied on by the
// "in" operator. Functions compare by identity.
func objectsEqual(a, b Object) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a := a.(type) {
	case *Nil:
		return true
	case *Boolean:
		return a.Value == b.(*Boolean).Value
	case *Number:
		return a.Value == b.(*Number).Value
	case *String:
		return a.Value == b.(*String).Value
	case *Array:
		return len(a.Elements) == len(b.(*Array).Elements)
	case *Function:
		return a == b.(*Function)
	default:
		return false
	}
}
