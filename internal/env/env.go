package env

import (
	"errors"
	"fmt"
	"strings"
)

// Value is anything reachable in the live environment: nil for undefined or
// null, a Go string, float64 or bool for primitives, or an Object.
type Value interface{}

// Object is a structured value of the live environment.
//
// Implementations are used as map keys to identify live objects, so they must
// be comparable identity handles (pointers, or structs holding only pointers).
// Two handles for the same underlying object must compare equal.
type Object interface {
	// OwnProperty reads an own property without running accessor logic.
	// An accessor property reports (nil, true).
	OwnProperty(name string) (Value, bool)
	// Prototype returns the next link of the prototype chain.
	Prototype() (Object, bool)
}

// Function is a callable Object.
type Function interface {
	Object
	Call(this Value, args ...Value) (Value, error)
}

var (
	ErrPrototypeCycle = errors.New("prototype chain contains a cycle")
	ErrPrototypeDepth = errors.New("prototype chain exceeds maximum depth")
	ErrNotCallable    = errors.New("value is not callable")
)

// DefaultMaxDepth bounds prototype ascension when no limit is configured.
const DefaultMaxDepth = 256

// AsObject reports whether v is a structured value.
func AsObject(v Value) (Object, bool) {
	if v == nil {
		return nil, false
	}
	o, ok := v.(Object)
	return o, ok
}

// AsFunction reports whether v is callable.
func AsFunction(v Value) (Function, bool) {
	if v == nil {
		return nil, false
	}
	f, ok := v.(Function)
	return f, ok
}

// Get reads name from obj or the first object of its prototype chain that owns
// it. Accessor properties are never invoked.
func Get(obj Object, name string, maxDepth int) (Value, bool, error) {
	var (
		out   Value
		found bool
	)
	err := Ascend(obj, maxDepth, func(o Object) bool {
		out, found = o.OwnProperty(name)
		return !found
	})
	return out, found, err
}

// Lookup resolves a dotted path such as "Array.prototype" starting at root.
func Lookup(root Object, path string) (Value, bool) {
	if root == nil {
		return nil, false
	}
	var cur Value = root
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, false
		}
		obj, ok := AsObject(cur)
		if !ok {
			return nil, false
		}
		v, found, err := Get(obj, seg, DefaultMaxDepth)
		if err != nil || !found {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Instance resolves a named-type path to the object describing its
// instances: a constructor yields its prototype, any other object itself.
func Instance(root Object, path string) (Object, bool) {
	v, ok := Lookup(root, path)
	if !ok {
		return nil, false
	}
	if fn, isFn := AsFunction(v); isFn {
		return PrototypeOf(fn)
	}
	return AsObject(v)
}

// PrototypeOf returns the object stored in fn's own "prototype" property.
func PrototypeOf(fn Object) (Object, bool) {
	v, ok := fn.OwnProperty("prototype")
	if !ok {
		return nil, false
	}
	return AsObject(v)
}

// Ascend calls visit for obj and each object up its prototype chain until
// visit returns false or the chain ends. A chain that revisits an object or
// grows beyond maxDepth links is reported as an error instead of looping.
func Ascend(obj Object, maxDepth int, visit func(Object) bool) error {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	seen := make(map[Object]struct{})
	cur := obj
	for depth := 0; cur != nil; depth++ {
		if depth >= maxDepth {
			return fmt.Errorf("%w (%d)", ErrPrototypeDepth, maxDepth)
		}
		if _, dup := seen[cur]; dup {
			return ErrPrototypeCycle
		}
		seen[cur] = struct{}{}
		if !visit(cur) {
			return nil
		}
		next, ok := cur.Prototype()
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}
