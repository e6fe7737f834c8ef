// Package heap is an in-memory live object graph. Hosts that do not run a
// JavaScript engine can model their environment with it, and tests use it to
// build small environments by hand.
package heap

import "deflens/internal/env"

// CallFunc implements a Function's behaviour.
type CallFunc func(this env.Value, args ...env.Value) (env.Value, error)

type property struct {
	value  env.Value
	getter func() env.Value
}

// Object is a mutable object with ordered own properties.
type Object struct {
	proto env.Object
	keys  []string
	props map[string]property
}

// Function is a callable Object.
type Function struct {
	Object
	fn CallFunc
}

// New creates an object whose prototype is proto (nil ends the chain).
func New(proto env.Object) *Object {
	return &Object{proto: proto, props: make(map[string]property)}
}

// NewFunction creates a callable object. A nil fn returns undefined.
func NewFunction(proto env.Object, fn CallFunc) *Function {
	f := &Function{fn: fn}
	f.Object.proto = proto
	f.Object.props = make(map[string]property)
	return f
}

// Set defines a data property and returns o for chaining.
func (o *Object) Set(name string, v env.Value) *Object {
	o.define(name, property{value: v})
	return o
}

// DefineGetter defines an accessor property. OwnProperty never calls get.
func (o *Object) DefineGetter(name string, get func() env.Value) *Object {
	o.define(name, property{getter: get})
	return o
}

// Get invokes getters, unlike OwnProperty. It only reads own properties.
func (o *Object) Get(name string) env.Value {
	p, ok := o.props[name]
	if !ok {
		return nil
	}
	if p.getter != nil {
		return p.getter()
	}
	return p.value
}

// SetPrototype replaces the next link of the chain.
func (o *Object) SetPrototype(proto env.Object) {
	o.proto = proto
}

// Keys lists own property names in definition order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) define(name string, p property) {
	if _, exists := o.props[name]; !exists {
		o.keys = append(o.keys, name)
	}
	o.props[name] = p
}

func (o *Object) OwnProperty(name string) (env.Value, bool) {
	p, ok := o.props[name]
	if !ok {
		return nil, false
	}
	if p.getter != nil {
		return nil, true
	}
	return p.value, true
}

func (o *Object) Prototype() (env.Object, bool) {
	if o.proto == nil {
		return nil, false
	}
	return o.proto, true
}

func (f *Function) Call(this env.Value, args ...env.Value) (env.Value, error) {
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(this, args...)
}

// Set is Object.Set returning the function for chaining.
func (f *Function) Set(name string, v env.Value) *Function {
	f.Object.Set(name, v)
	return f
}
