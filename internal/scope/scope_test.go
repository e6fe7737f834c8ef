package scope

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deflens/internal/resolver"
)

func parse(t *testing.T, src string) *File {
	t.Helper()
	f, err := NewAnalyzer().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

// at returns the offset just after the n-th occurrence (1-based) of marker.
func at(t *testing.T, src, marker string, n int) int {
	t.Helper()
	from := 0
	for i := 0; i < n; i++ {
		idx := strings.Index(src[from:], marker)
		require.GreaterOrEqual(t, idx, 0, "marker %q #%d", marker, n)
		from += idx + len(marker)
	}
	return from
}

const scoped = `import def, { a as alias, b } from "mod";
import * as ns from "ns";
var top = 1;
function outer(p, { q, r: renamed }, [s, ...rest], t = 2) {
  let inner = document.title;
  if (p) {
    const blockOnly = 1;
    blockOnly;
  }
  try { risky(); } catch (err) { err; }
  for (const item of rest) { item; }
  var hoisted = function named() { named; };
  class Local {}
  return inner;
}
const arrow = (x) => x;
const single = y => y;
document.body;
`

func TestFile_IsBound(t *testing.T) {
	f := parse(t, scoped)
	require.False(t, f.HasErrors())

	inOuter := at(t, scoped, "return inner", 1)
	inBlock := at(t, scoped, "blockOnly;", 1)
	inCatch := at(t, scoped, "{ err", 1)
	inFor := at(t, scoped, "{ item", 1)
	inNamed := at(t, scoped, "{ named", 1)
	topLevel := at(t, scoped, "document.body", 1)
	inArrow := at(t, scoped, "=> x", 1)
	inSingle := at(t, scoped, "=> y", 1)

	tests := []struct {
		name   string
		offset int
		want   bool
	}{
		{"def", topLevel, true},
		{"alias", topLevel, true},
		{"a", topLevel, false},
		{"b", topLevel, true},
		{"ns", topLevel, true},
		{"top", inOuter, true},
		{"outer", topLevel, true},
		{"p", inOuter, true},
		{"q", inOuter, true},
		{"renamed", inOuter, true},
		{"r", inOuter, false},
		{"s", inOuter, true},
		{"rest", inOuter, true},
		{"t", inOuter, true},
		{"p", topLevel, false},
		{"inner", inOuter, true},
		{"inner", topLevel, false},
		{"blockOnly", inBlock, true},
		{"blockOnly", inOuter, false},
		{"err", inCatch, true},
		{"err", inOuter, false},
		{"item", inFor, true},
		{"item", inOuter, false},
		{"hoisted", inOuter, true},
		{"hoisted", topLevel, false},
		{"named", inNamed, true},
		{"named", inOuter, false},
		{"Local", inOuter, true},
		{"Local", topLevel, false},
		{"x", inArrow, true},
		{"y", inSingle, true},
		{"x", topLevel, false},
		{"document", topLevel, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.IsBound(tt.name, tt.offset), "%s at %d", tt.name, tt.offset)
	}

	scope := f.Scope(inOuter)
	assert.True(t, scope.IsBound("inner"))
	assert.False(t, scope.IsBound("document"))
}

func TestFile_TokenAt(t *testing.T) {
	src := "var el = document.getElementById(\"x\");\nnew Widget(el);\nel.style.color;\n"
	f := parse(t, src)

	t.Run("called property", func(t *testing.T) {
		site, ok := f.TokenAt(at(t, src, "getElementById", 1))
		require.True(t, ok)
		assert.Equal(t, resolver.Token{Type: resolver.TokenProperty, String: "getElementById"}, site.Token)
		assert.Equal(t, "document", site.Object)
		assert.Equal(t, "document.getElementById", site.Expr)
		assert.True(t, site.Callee)
		assert.False(t, site.New)
	})

	t.Run("variable at end of identifier", func(t *testing.T) {
		site, ok := f.TokenAt(at(t, src, "= document", 1))
		require.True(t, ok)
		assert.Equal(t, resolver.TokenVariable, site.Token.Type)
		assert.Equal(t, "document", site.Token.String)
		assert.Empty(t, site.Object)
		assert.False(t, site.Callee)
	})

	t.Run("constructor", func(t *testing.T) {
		site, ok := f.TokenAt(at(t, src, "new Wid", 1))
		require.True(t, ok)
		assert.Equal(t, "Widget", site.Token.String)
		assert.True(t, site.New)
		assert.True(t, site.Callee)
	})

	t.Run("nested member", func(t *testing.T) {
		site, ok := f.TokenAt(at(t, src, "style.col", 1))
		require.True(t, ok)
		assert.Equal(t, "color", site.Token.String)
		assert.Equal(t, "el.style", site.Object)
		assert.Equal(t, "el.style.color", site.Expr)
		assert.True(t, f.IsBound("el", site.Start))
	})

	t.Run("out of range", func(t *testing.T) {
		_, ok := f.TokenAt(-1)
		assert.False(t, ok)
		_, ok = f.TokenAt(len(src) + 1)
		assert.False(t, ok)
	})
}
