package heap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deflens/internal/env"
)

func TestObject(t *testing.T) {
	o := New(nil).Set("b", float64(1)).Set("a", "x").Set("b", float64(2))
	assert.Equal(t, []string{"b", "a"}, o.Keys())

	v, ok := o.OwnProperty("b")
	require.True(t, ok)
	assert.Equal(t, float64(2), v)

	_, ok = o.OwnProperty("c")
	assert.False(t, ok)

	_, ok = o.Prototype()
	assert.False(t, ok)
}

func TestObject_Getter(t *testing.T) {
	calls := 0
	o := New(nil).DefineGetter("g", func() env.Value { calls++; return "computed" })

	v, ok := o.OwnProperty("g")
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Zero(t, calls)

	assert.Equal(t, "computed", o.Get("g"))
	assert.Equal(t, 1, calls)
}

func TestFunction_Call(t *testing.T) {
	fail := errors.New("fail")
	f := NewFunction(nil, func(this env.Value, args ...env.Value) (env.Value, error) {
		if len(args) > 0 {
			return nil, fail
		}
		return this, nil
	})

	v, err := f.Call("receiver")
	require.NoError(t, err)
	assert.Equal(t, "receiver", v)

	_, err = f.Call(nil, "arg")
	assert.ErrorIs(t, err, fail)

	v, err = NewFunction(nil, nil).Call(nil)
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestRealm(t *testing.T) {
	r := NewRealm()

	t.Run("standard wiring", func(t *testing.T) {
		for name, ctor := range map[string]*Function{
			"Object": r.Object, "Function": r.Function, "Array": r.Array,
			"String": r.String, "Boolean": r.Boolean, "Number": r.Number,
		} {
			v, ok := r.Global.OwnProperty(name)
			require.True(t, ok, name)
			assert.True(t, v == env.Value(ctor), name)
		}
		assert.True(t, Proto(r.Array) == r.ArrayProto)
		assert.True(t, Proto(r.Object) == r.ObjectProto)
		assert.Nil(t, Proto(r.Function), "Function.prototype is callable")

		proto, ok := r.Array.Prototype()
		require.True(t, ok)
		assert.True(t, proto == env.Object(r.FunctionProto))
	})

	t.Run("user constructors", func(t *testing.T) {
		base := r.Constructor("Base", nil)
		derived := r.Constructor("Derived", Proto(base))

		p, ok := Proto(derived).Prototype()
		require.True(t, ok)
		assert.True(t, p == env.Object(Proto(base)))

		ctor, ok := Proto(derived).OwnProperty("constructor")
		require.True(t, ok)
		assert.True(t, ctor == env.Value(derived))
	})
}
