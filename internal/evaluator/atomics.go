package evaluator

import "sync"

// AtomicRegistry is the interpreter-wide name→number store behind the
// atomic_* builtins. It is owned by the Evaluator and shared by worker
// clones; one mutex guards every read-modify-write cycle.
type AtomicRegistry struct {
	mu   sync.Mutex
	vals map[string]float64
}

func newAtomicRegistry() *AtomicRegistry {
	return &AtomicRegistry{vals: make(map[string]float64)}
}

func (r *AtomicRegistry) Store(name string, v float64) {
	r.mu.Lock()
	r.vals[name] = v
	r.mu.Unlock()
}

// Load returns 0 for names never stored.
func (r *AtomicRegistry) Load(name string) float64 {
	r.mu.Lock()
	v := r.vals[name]
	r.mu.Unlock()
	return v
}

// Add returns the new value.
func (r *AtomicRegistry) Add(name string, delta float64) float64 {
	r.mu.Lock()
	v := r.vals[name] + delta
	r.vals[name] = v
	r.mu.Unlock()
	return v
}

// Exchange returns the previous value.
func (r *AtomicRegistry) Exchange(name string, v float64) float64 {
	r.mu.Lock()
	old := r.vals[name]
	r.vals[name] = v
	r.mu.Unlock()
	return old
}

// CompareAndSwap swaps iff the current value equals expected.
func (r *AtomicRegistry) CompareAndSwap(name string, expected, v float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vals[name] != expected {
		return false
	}
	r.vals[name] = v
	return true
}

// mirrorAtomic publishes an atomic variable's new value into the globals so
// non-atomic reads observe it.
func (e *Evaluator) mirrorAtomic(name string, v float64) {
	e.globals.Set(name, &Number{Value: v})
}

func atomicName(fname string, args []Object) (string, *Error) {
	if len(args) == 0 {
		return "", newError("%s expects a string name", fname)
	}
	s, ok := args[0].(*String)
	if !ok {
		return "", newError("%s expects a string name, got %s", fname, args[0].Type())
	}
	return s.Value, nil
}

func registerAtomicBuiltins(table map[string]*Builtin) {
	table["atomic_store"] = &Builtin{
		Name: "atomic_store",
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 2 {
				return newError("atomic_store expects 2 arguments, got %d", len(args))
			}
			name, errObj := atomicName("atomic_store", args)
			if errObj != nil {
				return errObj
			}
			num, ok := args[1].(*Number)
			if !ok {
				return newError("atomic_store expects a number value, got %s", args[1].Type())
			}
			e.atomics.Store(name, num.Value)
			e.mirrorAtomic(name, num.Value)
			return num
		},
	}
	table["atomic_load"] = &Builtin{
		Name: "atomic_load",
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("atomic_load expects 1 argument, got %d", len(args))
			}
			name, errObj := atomicName("atomic_load", args)
			if errObj != nil {
				return errObj
			}
			return &Number{Value: e.atomics.Load(name)}
		},
	}

	addLike := func(fname string, sign float64) *Builtin {
		return &Builtin{
			Name: fname,
			Fn: func(e *Evaluator, args ...Object) Object {
				if len(args) != 2 {
					return newError("%s expects 2 arguments, got %d", fname, len(args))
				}
				name, errObj := atomicName(fname, args)
				if errObj != nil {
					return errObj
				}
				num, ok := args[1].(*Number)
				if !ok {
					return newError("%s expects a number value, got %s", fname, args[1].Type())
				}
				v := e.atomics.Add(name, sign*num.Value)
				e.mirrorAtomic(name, v)
				return &Number{Value: v}
			},
		}
	}
	table["atomic_add"] = addLike("atomic_add", 1)
	table["atomic_sub"] = addLike("atomic_sub", -1)

	incLike := func(fname string, delta float64) *Builtin {
		return &Builtin{
			Name: fname,
			Fn: func(e *Evaluator, args ...Object) Object {
				if len(args) != 1 {
					return newError("%s expects 1 argument, got %d", fname, len(args))
				}
				name, errObj := atomicName(fname, args)
				if errObj != nil {
					return errObj
				}
				v := e.atomics.Add(name, delta)
				e.mirrorAtomic(name, v)
				return &Number{Value: v}
			},
		}
	}
	table["atomic_inc"] = incLike("atomic_inc", 1)
	table["atomic_dec"] = incLike("atomic_dec", -1)

	table["atomic_xchg"] = &Builtin{
		Name: "atomic_xchg",
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 2 {
				return newError("atomic_xchg expects 2 arguments, got %d", len(args))
			}
			name, errObj := atomicName("atomic_xchg", args)
			if errObj != nil {
				return errObj
			}
			num, ok := args[1].(*Number)
			if !ok {
				return newError("atomic_xchg expects a number value, got %s", args[1].Type())
			}
			old := e.atomics.Exchange(name, num.Value)
			e.mirrorAtomic(name, num.Value)
			return &Number{Value: old}
		},
	}
	table["atomic_cas"] = &Builtin{
		Name: "atomic_cas",
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 3 {
				return newError("atomic_cas expects 3 arguments, got %d", len(args))
			}
			name, errObj := atomicName("atomic_cas", args)
			if errObj != nil {
				return errObj
			}
			expected, ok := args[1].(*Number)
			if !ok {
				return newError("atomic_cas expects a number value, got %s", args[1].Type())
			}
			newVal, ok := args[2].(*Number)
			if !ok {
				return newError("atomic_cas expects a number value, got %s", args[2].Type())
			}
			swapped := e.atomics.CompareAndSwap(name, expected.Value, newVal.Value)
			if swapped {
				e.mirrorAtomic(name, newVal.Value)
			}
			return nativeBoolToBooleanObject(swapped)
		},
	}
}
