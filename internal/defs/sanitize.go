package defs

import "strings"

// Sanitize returns a canonical copy of root: every descendant whose type is a
// call signature has its return type split off into Return. Only the last
// " -> " segment is peeled, so "fn(a) -> fn(b) -> string" keeps
// "fn(a) -> fn(b)" as its type. Nodes that already carry a Return are left
// as they are, which makes Sanitize a fixed point on its own output.
//
// The input is not modified. Metadata values and scalar children are shared.
func Sanitize(root *Node) *Node {
	if root == nil {
		return nil
	}
	out := &Node{
		Type:   root.Type,
		Return: root.Return,
		meta:   append([]Meta(nil), root.meta...),
		props:  make([]Prop, len(root.props)),
	}
	for i, p := range root.props {
		if p.Node == nil {
			out.props[i] = p
			continue
		}
		child := Sanitize(p.Node)
		splitReturn(child)
		out.props[i] = Prop{Name: p.Name, Node: child}
	}
	return out
}

func splitReturn(n *Node) {
	if n.Return != "" || !IsCallSignature(n.Type) {
		return
	}
	parts := strings.Split(n.Type, arrow)
	if len(parts) < 2 {
		return
	}
	n.Return = parts[len(parts)-1]
	n.Type = strings.Join(parts[:len(parts)-1], arrow)
}
