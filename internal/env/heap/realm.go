package heap

import "deflens/internal/env"

// Realm is a minimal standard environment: a global object holding the
// Object, Function, Array, String, Boolean and Number constructors, wired the
// way a JavaScript engine wires them.
type Realm struct {
	Global *Object

	ObjectProto   *Object
	FunctionProto *Function
	ArrayProto    *Object

	Object   *Function
	Function *Function
	Array    *Function
	String   *Function
	Boolean  *Function
	Number   *Function
}

// NewRealm builds a fresh standard environment.
func NewRealm() *Realm {
	r := &Realm{}
	r.ObjectProto = New(nil)
	r.FunctionProto = NewFunction(r.ObjectProto, nil)
	r.Global = New(r.ObjectProto)

	r.Object = r.install("Object", r.ObjectProto)
	r.Function = r.install("Function", r.FunctionProto)
	r.ArrayProto = New(r.ObjectProto)
	r.Array = r.install("Array", r.ArrayProto)
	r.String = r.install("String", New(r.ObjectProto))
	r.Boolean = r.install("Boolean", New(r.ObjectProto))
	r.Number = r.install("Number", New(r.ObjectProto))
	return r
}

// Constructor defines a global constructor whose prototype inherits from
// parent, or from Object.prototype when parent is nil.
func (r *Realm) Constructor(name string, parent env.Object) *Function {
	if parent == nil {
		parent = r.ObjectProto
	}
	return r.install(name, New(parent))
}

// Func creates a function inheriting from Function.prototype.
func (r *Realm) Func(fn CallFunc) *Function {
	return NewFunction(r.FunctionProto, fn)
}

// Obj creates a plain object inheriting from Object.prototype.
func (r *Realm) Obj() *Object {
	return New(r.ObjectProto)
}

// Proto returns the plain-object prototype of a constructor, or nil.
func Proto(ctor *Function) *Object {
	v, _ := ctor.OwnProperty("prototype")
	p, _ := v.(*Object)
	return p
}

func (r *Realm) install(name string, proto env.Object) *Function {
	ctor := NewFunction(r.FunctionProto, nil)
	ctor.Set("prototype", proto)
	if p, ok := proto.(*Object); ok {
		p.Set("constructor", ctor)
	}
	if p, ok := proto.(*Function); ok {
		p.Set("constructor", ctor)
	}
	r.Global.Set(name, ctor)
	return ctor
}
