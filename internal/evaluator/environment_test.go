package evaluator

import (
	"sync"
	"testing"
)

func TestEnvironmentGetSet(t *testing.T) {
	env := NewEnvironment()

	if _, ok := env.Get("x"); ok {
		t.Error("Get on empty environment should report not found")
	}

	env.Set("x", &Number{Value: 1})
	obj, ok := env.Get("x")
	if !ok {
		t.Fatal("Get after Set should find the binding")
	}
	assertNumber(t, obj, 1)
}

func TestEnvironmentChainLookup(t *testing.T) {
	outer := NewEnvironment()
	outer.Set("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	obj, ok := inner.Get("x")
	if !ok {
		t.Fatal("inner scope should see outer bindings")
	}
	assertNumber(t, obj, 1)
}

func TestEnvironmentShadowing(t *testing.T) {
	outer := NewEnvironment()
	outer.Set("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)
	inner.Set("x", &Number{Value: 2})

	obj, _ := inner.Get("x")
	assertNumber(t, obj, 2)
	obj, _ = outer.Get("x")
	assertNumber(t, obj, 1)
}

// Update walks the chain and writes where the name is defined; Set always
// writes the current scope.
func TestEnvironmentUpdateWalksChain(t *testing.T) {
	outer := NewEnvironment()
	outer.Set("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	if !inner.Update("x", &Number{Value: 2}) {
		t.Fatal("Update should find the outer binding")
	}
	obj, _ := outer.Get("x")
	assertNumber(t, obj, 2)

	if inner.Update("missing", NIL) {
		t.Error("Update on an unbound name should report not found")
	}
}

func TestEnvironmentConcurrentAccess(t *testing.T) {
	env := NewEnvironment()
	env.Set("shared", &Number{Value: 0})
	child := NewEnclosedEnvironment(env)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(n float64) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				child.Update("shared", &Number{Value: n})
				if _, ok := child.Get("shared"); !ok {
					t.Error("shared binding disappeared")
					return
				}
			}
		}(float64(g))
	}
	wg.Wait()
}
