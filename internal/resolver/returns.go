package resolver

import (
	"strings"

	"deflens/internal/defs"
	"deflens/internal/env"
)

// Constructors whose call result is always an instance, whatever the receiver.
var wellKnownConstructors = []string{"Array", "String", "Boolean"}

// Returns produces a live value standing for the result of calling the
// query's context function. ok is false when no informed answer exists.
//
// Constructors yield their prototype. A function called on nothing is really
// invoked, and any error it raises is returned unchanged. Every other case is
// answered from the function's return signature; unknown signatures decline.
func (r *Resolver) Returns(q *Query) (env.Value, bool, error) {
	fn, ok := env.AsObject(q.Context)
	if !ok {
		return nil, false, nil
	}

	if q.IsConstructor || isWellKnownConstructor(fn, q.Window) {
		proto, ok := env.PrototypeOf(fn)
		if !ok {
			return nil, false, nil
		}
		return proto, true, nil
	}

	if _, structured := env.AsObject(q.Parent); !structured {
		callable, ok := env.AsFunction(fn)
		if !ok {
			return nil, false, nil
		}
		v, err := callable.Call(q.Parent)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}

	node, ok, err := r.Describe(q)
	if err != nil || !ok {
		return nil, false, err
	}
	if !node.IsCall() || node.Return == "" {
		r.logger.Debug("returns declined, no return signature", "token", q.Token.String, "type", node.Type)
		return nil, false, nil
	}
	v, ok := r.materialize(node.Return, q)
	if !ok {
		r.logger.Debug("returns declined, unrecognised signature", "token", q.Token.String, "ret", node.Return)
	}
	return v, ok, nil
}

func (r *Resolver) materialize(ret string, q *Query) (env.Value, bool) {
	switch {
	case ret == "string":
		return "", true
	case ret == "number":
		return float64(0), true
	case ret == "bool":
		return false, true
	case isArrayShape(ret):
		return instanceOf(q.Window, "Array")
	case ret == "fn()":
		return instanceOf(q.Window, "Function")
	case ret == defs.ThisReturn:
		return q.Parent, true
	case strings.HasPrefix(ret, defs.RefPrefix):
		v, ok := env.Lookup(q.Window, strings.TrimPrefix(ret, defs.RefPrefix))
		if !ok {
			return nil, false
		}
		ctor, ok := env.AsFunction(v)
		if !ok {
			return nil, false
		}
		return env.PrototypeOf(ctor)
	}
	return nil, false
}

func isArrayShape(sig string) bool {
	return len(sig) >= 2 && strings.HasPrefix(sig, "[") && strings.HasSuffix(sig, "]")
}

func instanceOf(window env.Object, ctor string) (env.Value, bool) {
	if window == nil {
		return nil, false
	}
	return env.Instance(window, ctor)
}

func isWellKnownConstructor(fn env.Object, window env.Object) bool {
	if window == nil {
		return false
	}
	for _, name := range wellKnownConstructors {
		v, ok := env.Lookup(window, name)
		if !ok {
			continue
		}
		if ctor, isObj := env.AsObject(v); isObj && ctor == fn {
			return true
		}
	}
	return false
}
