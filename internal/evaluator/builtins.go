package evaluator

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"strings"
	"time"

	"github.com/bob-lang/bob/internal/config"
)

func builtinTable() map[string]*Builtin {
	table := make(map[string]*Builtin)

	table[config.PrintFuncName] = &Builtin{
		Name: config.PrintFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			parts := make([]string, len(args))
			for i, arg := range args {
				parts[i] = arg.Inspect()
			}
			fmt.Fprintln(e.Out, strings.Join(parts, " "))
			return NIL
		},
	}

	table[config.LenFuncName] = &Builtin{
		Name: config.LenFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("len expects 1 argument, got %d", len(args))
			}
			switch arg := args[0].(type) {
			case *Array:
				return &Number{Value: float64(len(arg.Elements))}
			case *String:
				return &Number{Value: float64(len(arg.Value))}
			}
			return newError("len expects an array or string, got %s", args[0].Type())
		},
	}

	table[config.InputFuncName] = &Builtin{
		Name: config.InputFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) > 1 {
				return newError("input expects 0 or 1 arguments, got %d", len(args))
			}
			if len(args) == 1 {
				fmt.Fprint(e.Out, args[0].Inspect())
			}
			line, err := e.In.ReadString('\n')
			if err != nil && line == "" {
				return &String{Value: ""}
			}
			line = strings.TrimRight(line, "\r\n")
			return &String{Value: line}
		},
	}

	registerMathBuiltins(table)

	table[config.RandomFuncName] = &Builtin{
		Name: config.RandomFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 0 {
				return newError("random expects 0 arguments, got %d", len(args))
			}
			return &Number{Value: rand.Float64()}
		},
	}

	table[config.TimeFuncName] = &Builtin{
		Name: config.TimeFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 0 {
				return newError("time expects 0 arguments, got %d", len(args))
			}
			return &Number{Value: float64(time.Now().UnixMilli())}
		},
	}

	table[config.SleepFuncName] = &Builtin{
		Name: config.SleepFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("sleep expects 1 argument, got %d", len(args))
			}
			num, ok := args[0].(*Number)
			if !ok {
				return newError("sleep expects a number, got %s", args[0].Type())
			}
			time.Sleep(time.Duration(num.Value * float64(time.Millisecond)))
			return NIL
		},
	}

	table[config.ThreadIDFuncName] = &Builtin{
		Name: config.ThreadIDFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 0 {
				return newError("thread_id expects 0 arguments, got %d", len(args))
			}
			return &Number{Value: float64(e.workerID)}
		},
	}

	table[config.NumThreadsFuncName] = &Builtin{
		Name: config.NumThreadsFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 0 {
				return newError("num_threads expects 0 arguments, got %d", len(args))
			}
			return &Number{Value: float64(runtime.NumCPU())}
		},
	}

	table[config.PushFuncName] = &Builtin{
		Name: config.PushFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 2 {
				return newError("push expects 2 arguments, got %d", len(args))
			}
			arr, ok := args[0].(*Array)
			if !ok {
				return newError("push expects an array, got %s", args[0].Type())
			}
			arr.Elements = append(arr.Elements, args[1])
			return arr
		},
	}

	table[config.PopFuncName] = &Builtin{
		Name: config.PopFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("pop expects 1 argument, got %d", len(args))
			}
			arr, ok := args[0].(*Array)
			if !ok {
				return newError("pop expects an array, got %s", args[0].Type())
			}
			if len(arr.Elements) == 0 {
				return newError("pop from empty array")
			}
			last := arr.Elements[len(arr.Elements)-1]
			arr.Elements = arr.Elements[:len(arr.Elements)-1]
			return last
		},
	}

	registerAtomicBuiltins(table)
	return table
}

func registerMathBuiltins(table map[string]*Builtin) {
	oneArg := func(name string, fn func(float64) float64) *Builtin {
		return &Builtin{
			Name: name,
			Fn: func(e *Evaluator, args ...Object) Object {
				if len(args) != 1 {
					return newError("%s expects 1 argument, got %d", name, len(args))
				}
				num, ok := args[0].(*Number)
				if !ok {
					return newError("%s expects a number, got %s", name, args[0].Type())
				}
				return &Number{Value: fn(num.Value)}
			},
		}
	}

	table["sqrt"] = oneArg("sqrt", math.Sqrt)
	table["abs"] = oneArg("abs", math.Abs)
	table["floor"] = oneArg("floor", math.Floor)
	table["ceil"] = oneArg("ceil", math.Ceil)
	table["round"] = oneArg("round", math.Round)
	table["sin"] = oneArg("sin", math.Sin)
	table["cos"] = oneArg("cos", math.Cos)
	table["tan"] = oneArg("tan", math.Tan)
	table["log"] = oneArg("log", math.Log)

	table["pow"] = &Builtin{
		Name: "pow",
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 2 {
				return newError("pow expects 2 arguments, got %d", len(args))
			}
			base, ok := args[0].(*Number)
			if !ok {
				return newError("pow expects a number, got %s", args[0].Type())
			}
			exp, ok := args[1].(*Number)
			if !ok {
				return newError("pow expects a number, got %s", args[1].Type())
			}
			return &Number{Value: math.Pow(base.Value, exp.Value)}
		},
	}
}
