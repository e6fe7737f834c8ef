// Package jsvm adapts a goja JavaScript runtime to the env interfaces so the
// association table can be built over, and queried against, real objects.
package jsvm

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"deflens/internal/env"
)

// Realm is one goja runtime. It is not safe for concurrent use.
type Realm struct {
	vm         *goja.Runtime
	descriptor goja.Callable
}

// New starts an empty runtime with the standard globals installed.
func New() (*Realm, error) {
	vm := goja.New()
	objectCtor := vm.Get("Object")
	if objectCtor == nil {
		return nil, errors.New("runtime has no Object constructor")
	}
	gopd, ok := goja.AssertFunction(objectCtor.ToObject(vm).Get("getOwnPropertyDescriptor"))
	if !ok {
		return nil, errors.New("runtime has no Object.getOwnPropertyDescriptor")
	}
	return &Realm{vm: vm, descriptor: gopd}, nil
}

// Runtime exposes the underlying goja runtime.
func (r *Realm) Runtime() *goja.Runtime {
	return r.vm
}

// Run executes a script, typically a prelude defining the environment.
func (r *Realm) Run(name, src string) error {
	if _, err := r.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// Eval evaluates an expression and returns its value.
func (r *Realm) Eval(expr string) (env.Value, error) {
	v, err := r.vm.RunString(expr)
	if err != nil {
		return nil, err
	}
	return r.wrap(v), nil
}

// Global returns the global object.
func (r *Realm) Global() env.Object {
	return Object{o: r.vm.GlobalObject(), r: r}
}

func (r *Realm) wrap(v goja.Value) env.Value {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if o, ok := v.(*goja.Object); ok {
		if _, callable := goja.AssertFunction(o); callable {
			return Function{Object{o: o, r: r}}
		}
		return Object{o: o, r: r}
	}
	switch x := v.Export().(type) {
	case int64:
		return float64(x)
	default:
		return x
	}
}

func (r *Realm) unwrap(v env.Value) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Undefined()
	case Object:
		return x.o
	case Function:
		return x.o
	default:
		return r.vm.ToValue(x)
	}
}

// Object is a handle on a goja object. Handles for the same object compare
// equal.
type Object struct {
	o *goja.Object
	r *Realm
}

// OwnProperty reads a data property through its descriptor so accessors are
// never run. Accessor properties report (nil, true).
func (obj Object) OwnProperty(name string) (env.Value, bool) {
	d, err := obj.r.descriptor(goja.Undefined(), obj.o, obj.r.vm.ToValue(name))
	if err != nil || goja.IsUndefined(d) || goja.IsNull(d) {
		return nil, false
	}
	// Only the descriptor's own fields count; its prototype is
	// Object.prototype, which scripts may extend with "get" or "set".
	desc := d.ToObject(obj.r.vm)
	var hasValue bool
	for _, k := range desc.Keys() {
		switch k {
		case "get", "set":
			return nil, true
		case "value":
			hasValue = true
		}
	}
	if !hasValue {
		return nil, true
	}
	return obj.r.wrap(desc.Get("value")), true
}

func (obj Object) Prototype() (env.Object, bool) {
	p := obj.o.Prototype()
	if p == nil {
		return nil, false
	}
	if _, callable := goja.AssertFunction(p); callable {
		return Function{Object{o: p, r: obj.r}}, true
	}
	return Object{o: p, r: obj.r}, true
}

// ClassName reports the runtime class, e.g. "Object" or "Array".
func (obj Object) ClassName() string {
	return obj.o.ClassName()
}

// Keys lists own enumerable string keys.
func (obj Object) Keys() []string {
	return obj.o.Keys()
}

// Function is a handle on a callable goja object.
type Function struct {
	Object
}

// Call invokes the function. A thrown JavaScript value is returned as the
// runtime's *goja.Exception.
func (fn Function) Call(this env.Value, args ...env.Value) (env.Value, error) {
	callable, ok := goja.AssertFunction(fn.o)
	if !ok {
		return nil, env.ErrNotCallable
	}
	in := make([]goja.Value, len(args))
	for i, a := range args {
		in[i] = fn.r.unwrap(a)
	}
	out, err := callable(fn.r.unwrap(this), in...)
	if err != nil {
		return nil, err
	}
	return fn.r.wrap(out), nil
}
