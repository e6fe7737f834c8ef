package scope

import (
	sitter "github.com/smacker/go-tree-sitter"

	"deflens/internal/resolver"
)

// Site describes the token under a cursor.
type Site struct {
	Token resolver.Token
	// Object is the source of the receiver expression for a member access,
	// empty otherwise.
	Object string
	// Expr is the source of the whole expression the token ends, such as
	// "document.body" for the token "body".
	Expr string
	// Callee is set when the expression is called; New when it is the
	// constructor of a new expression.
	Callee bool
	New    bool
	Start  int
	End    int
}

// TokenAt returns the token covering offset. A cursor placed just after an
// identifier still refers to it.
func (f *File) TokenAt(offset int) (Site, bool) {
	if offset < 0 || offset > len(f.src) {
		return Site{}, false
	}
	leaf := f.leafAt(uint32(offset))
	if leaf == nil || leaf.ChildCount() > 0 {
		return Site{}, false
	}

	site := Site{
		Token: resolver.Token{Type: resolver.TokenOther, String: f.text(leaf)},
		Start: int(leaf.StartByte()),
		End:   int(leaf.EndByte()),
	}
	expr := leaf
	switch leaf.Type() {
	case nodeIdentifier, nodeShorthand:
		site.Token.Type = resolver.TokenVariable
	case nodeProperty:
		site.Token.Type = resolver.TokenProperty
		if p := leaf.Parent(); p != nil && p.Type() == nodeMember && sameNode(p.ChildByFieldName("property"), leaf) {
			expr = p
			site.Object = f.text(p.ChildByFieldName("object"))
		}
	}
	site.Expr = f.text(expr)

	if p := expr.Parent(); p != nil {
		switch p.Type() {
		case nodeCall:
			site.Callee = sameNode(p.ChildByFieldName("function"), expr)
		case nodeNew:
			site.New = sameNode(p.ChildByFieldName("constructor"), expr)
			site.Callee = site.New
		}
	}
	return site, true
}

// leafAt descends to the smallest node covering off, preferring identifiers
// when off sits on the boundary between two tokens.
func (f *File) leafAt(off uint32) *sitter.Node {
	cur := f.root
	for {
		var next *sitter.Node
		for i := 0; i < int(cur.ChildCount()); i++ {
			c := cur.Child(i)
			if c.StartByte() > off || off > c.EndByte() {
				continue
			}
			if next == nil || isName(c.Type()) {
				next = c
			}
			if isName(c.Type()) {
				break
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

func isName(typ string) bool {
	switch typ {
	case nodeIdentifier, nodeProperty, nodeShorthand, "this":
		return true
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
