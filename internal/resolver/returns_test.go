package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deflens/internal/defs"
	"deflens/internal/env"
	"deflens/internal/env/heap"
	"deflens/internal/graph"
)

type fixture struct {
	realm *heap.Realm
	lib   *heap.Object
	r     *Resolver
	calls int
}

// newFixture builds a "lib" object whose methods all misbehave at runtime, so
// any answer must come from the definitions.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{realm: heap.NewRealm()}
	f.realm.Constructor("Widget", nil)
	runtime := func(this env.Value, args ...env.Value) (env.Value, error) {
		f.calls++
		return "runtime", nil
	}
	f.lib = f.realm.Obj()
	for _, name := range []string{"self", "flag", "text", "count", "list", "callback", "widget", "weird", "plain", "bare", "noRet", "ghost"} {
		f.lib.Set(name, f.realm.Func(runtime))
	}
	f.realm.Global.Set("lib", f.lib)

	lib := defs.NewNode("").
		Add("self", defs.NewNode("fn() -> !this")).
		Add("flag", defs.NewNode("fn() -> bool")).
		Add("text", defs.NewNode("fn() -> string")).
		Add("count", defs.NewNode("fn() -> number")).
		Add("list", defs.NewNode("fn() -> [string]")).
		Add("callback", defs.NewNode("fn() -> fn()")).
		Add("widget", defs.NewNode("fn() -> +Widget")).
		Add("weird", defs.NewNode("fn() -> ?")).
		Add("plain", defs.NewNode("number")).
		Add("noRet", defs.NewNode("fn(a: number)")).
		Add("ghost", defs.NewNode("fn() -> +Ghost"))
	tree := defs.Sanitize(defs.NewNode("").Add("lib", lib))
	f.r = New(graph.BuildTable(f.realm.Global, tree))
	return f
}

func (f *fixture) query(name string) *Query {
	v, _ := f.lib.OwnProperty(name)
	return &Query{
		Token:   Token{Type: TokenProperty, String: name},
		Context: v,
		Parent:  f.lib,
		Window:  f.realm.Global,
	}
}

func TestReturns_FromSignature(t *testing.T) {
	f := newFixture(t)
	widgetProto, _ := env.Instance(f.realm.Global, "Widget")

	tests := []struct {
		name string
		want env.Value
	}{
		{"self", f.lib},
		{"flag", false},
		{"text", ""},
		{"count", float64(0)},
		{"list", f.realm.ArrayProto},
		{"callback", f.realm.FunctionProto},
		{"widget", widgetProto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := f.r.Returns(f.query(tt.name))
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, got == tt.want, "got %v", got)
		})
	}
	assert.Zero(t, f.calls, "signature answers never run the function")
}

func TestReturns_Declines(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"weird", "plain", "noRet", "ghost", "bare"} {
		t.Run(name, func(t *testing.T) {
			_, ok, err := f.r.Returns(f.query(name))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	t.Run("context is not an object", func(t *testing.T) {
		q := f.query("flag")
		q.Context = "text"
		_, ok, err := f.r.Returns(q)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	assert.Zero(t, f.calls)
}

func TestReturns_Constructors(t *testing.T) {
	f := newFixture(t)

	t.Run("new", func(t *testing.T) {
		v, _ := f.realm.Global.OwnProperty("Widget")
		q := &Query{Token: Token{Type: TokenVariable, String: "Widget"}, Context: v, Parent: f.lib, Window: f.realm.Global, IsConstructor: true}
		got, ok, err := f.r.Returns(q)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got == env.Value(heap.Proto(v.(*heap.Function))))
	})

	for _, ctor := range []*heap.Function{f.realm.Array, f.realm.String, f.realm.Boolean} {
		got, ok, err := f.r.Returns(&Query{Context: ctor, Parent: nil, Window: f.realm.Global})
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got == env.Value(heap.Proto(ctor)))
	}

	t.Run("Number is called like any function", func(t *testing.T) {
		got, ok, err := f.r.Returns(&Query{Context: f.realm.Number, Parent: nil, Window: f.realm.Global})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Nil(t, got)
	})
}

func TestReturns_BareCall(t *testing.T) {
	realm := heap.NewRealm()
	r := New(graph.BuildTable(realm.Global, defs.NewNode("")))

	t.Run("real result", func(t *testing.T) {
		fn := realm.Func(func(this env.Value, args ...env.Value) (env.Value, error) {
			return float64(42), nil
		})
		got, ok, err := r.Returns(&Query{Context: fn, Window: realm.Global})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, float64(42), got)
	})

	t.Run("receiver is the primitive parent", func(t *testing.T) {
		var receiver env.Value
		fn := realm.Func(func(this env.Value, args ...env.Value) (env.Value, error) {
			receiver = this
			return nil, nil
		})
		_, ok, err := r.Returns(&Query{Context: fn, Parent: "str", Window: realm.Global})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "str", receiver)
	})

	t.Run("fault propagates unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		fn := realm.Func(func(this env.Value, args ...env.Value) (env.Value, error) {
			return nil, boom
		})
		_, ok, err := r.Returns(&Query{Context: fn, Window: realm.Global})
		assert.False(t, ok)
		assert.Same(t, boom, err)
	})

	t.Run("not callable", func(t *testing.T) {
		_, ok, err := r.Returns(&Query{Context: realm.Obj(), Window: realm.Global})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
