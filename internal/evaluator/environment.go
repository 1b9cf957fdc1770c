package evaluator

import "sync"

// Environment is one node of the lexical scope chain. Each node guards its own
// bindings so environments shared across parallel-loop workers are safe to
// read and write concurrently.
type Environment struct {
	mu    sync.RWMutex
	store map[string]Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Get resolves name through the chain.
func (e *Environment) Get(name string) (Object, bool) {
	e.mu.RLock()
	obj, ok := e.store[name]
	e.mu.RUnlock()
	if !ok && e.outer != nil {
		obj, ok = e.outer.Get(name)
	}
	return obj, ok
}

// Set defines (or redefines) name in the current node only. This is what
// permits shadowing and redeclaration.
func (e *Environment) Set(name string, val Object) Object {
	e.mu.Lock()
	e.store[name] = val
	e.mu.Unlock()
	return val
}

// Update assigns to the nearest node that already defines name and reports
// whether one was found.
func (e *Environment) Update(name string, val Object) bool {
	e.mu.Lock()
	_, ok := e.store[name]
	if ok {
		e.store[name] = val
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()
	if e.outer != nil {
		return e.outer.Update(name, val)
	}
	return false
}
