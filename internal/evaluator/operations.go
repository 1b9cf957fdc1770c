package evaluator

import (
	"math"
	"strings"
)

// evalInfix implements the binary operator table. The branch order mirrors
// the language reference: numeric pairs, string repetition, string
// concatenation (either side), string comparison and containment, array
// membership, then the coercing equality fallback.
func evalInfix(operator string, left, right Object) Object {
	if left.Type() == NUMBER_OBJ && right.Type() == NUMBER_OBJ {
		return evalNumberInfix(operator, left.(*Number), right.(*Number))
	}

	if left.Type() == STRING_OBJ && right.Type() == NUMBER_OBJ && operator == "*" {
		count := int(math.Floor(right.(*Number).Value))
		if count < 0 {
			count = 0
		}
		return &String{Value: strings.Repeat(left.(*String).Value, count)}
	}

	if left.Type() == STRING_OBJ && operator == "+" {
		return &String{Value: left.(*String).Value + right.Inspect()}
	}
	if left.Type() != STRING_OBJ && right.Type() == STRING_OBJ && operator == "+" {
		return &String{Value: left.Inspect() + right.(*String).Value}
	}

	if left.Type() == STRING_OBJ && right.Type() == STRING_OBJ {
		l, r := left.(*String).Value, right.(*String).Value
		switch operator {
		case "==":
			return nativeBoolToBooleanObject(l == r)
		case "!=":
			return nativeBoolToBooleanObject(l != r)
		case "in":
			return nativeBoolToBooleanObject(strings.Contains(r, l))
		}
		return newError("unsupported operation: %s %s %s", left.Type(), operator, right.Type())
	}

	if right.Type() == ARRAY_OBJ && operator == "in" {
		for _, el := range right.(*Array).Elements {
			if objectsEqual(left, el) {
				return TRUE
			}
		}
		return FALSE
	}

	if operator == "==" || operator == "!=" {
		eq := coercedEqual(left, right)
		if operator == "!=" {
			eq = !eq
		}
		return nativeBoolToBooleanObject(eq)
	}

	return newError("unsupported operation: %s %s %s", left.Type(), operator, right.Type())
}

func evalNumberInfix(operator string, left, right *Number) Object {
	switch operator {
	case "+":
		return &Number{Value: left.Value + right.Value}
	case "-":
		return &Number{Value: left.Value - right.Value}
	case "*":
		return &Number{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return newError("division by zero")
		}
		return &Number{Value: left.Value / right.Value}
	case "%":
		if right.Value == 0 {
			return newError("modulo by zero")
		}
		return &Number{Value: math.Mod(left.Value, right.Value)}
	case "**":
		return &Number{Value: math.Pow(left.Value, right.Value)}
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case "==":
		return nativeBoolToBooleanObject(left.Value == right.Value)
	case "!=":
		return nativeBoolToBooleanObject(left.Value != right.Value)
	}
	return newError("unsupported operation: %s %s %s", NUMBER_OBJ, operator, NUMBER_OBJ)
}

// coercedEqual compares a String/non-String pair through the non-string
// side's rendering; everything else compares structurally.
func coercedEqual(left, right Object) bool {
	if left.Type() == STRING_OBJ && right.Type() != STRING_OBJ {
		return left.(*String).Value == right.Inspect()
	}
	if left.Type() != STRING_OBJ && right.Type() == STRING_OBJ {
		return left.Inspect() == right.(*String).Value
	}
	return objectsEqual(left, right)
}

func evalPrefix(operator string, right Object) Object {
	switch operator {
	case "-":
		if num, ok := right.(*Number); ok {
			return &Number{Value: -num.Value}
		}
		return newError("unary '-' requires a number, got %s", right.Type())
	case "not", "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	}
	return newError("unsupported unary operator %q", operator)
}
