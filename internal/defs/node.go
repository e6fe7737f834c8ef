package defs

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	// MetaPrefix marks keys that annotate a node instead of naming a property.
	MetaPrefix = "!"

	KeyType   = "!type"
	KeyReturn = "!ret"
	KeyDoc    = "!doc"
	KeyURL    = "!url"

	// RefPrefix starts a named-type reference such as "+Array.prototype".
	RefPrefix = "+"
	// ThisReturn is the return signature of functions returning their receiver.
	ThisReturn = "!this"

	callPrefix = "fn("
	arrow      = " -> "
)

// IsMeta reports whether key is a metadata key.
func IsMeta(key string) bool {
	return strings.HasPrefix(key, MetaPrefix)
}

// Meta is a metadata field other than the type and return signatures.
// Value holds a string, float64, bool, nil, []interface{} or *Node.
type Meta struct {
	Key   string
	Value interface{}
}

// Prop is a child entry. Node is nil for a scalar leaf, whose raw value is
// kept in Scalar.
type Prop struct {
	Name   string
	Node   *Node
	Scalar interface{}
}

// Node is one definition of the knowledge base, describing a live property.
type Node struct {
	Type   string
	Return string

	meta  []Meta
	props []Prop
}

// NewNode creates a node with the given type signature.
func NewNode(typ string) *Node {
	return &Node{Type: typ}
}

// Add appends (or replaces) a child node and returns n for chaining.
func (n *Node) Add(name string, child *Node) *Node {
	n.putProp(Prop{Name: name, Node: child})
	return n
}

// AddScalar appends (or replaces) a scalar leaf.
func (n *Node) AddScalar(name string, v interface{}) *Node {
	n.putProp(Prop{Name: name, Scalar: v})
	return n
}

// SetMeta sets a metadata field. The type and return keys map onto Type and
// Return when given strings.
func (n *Node) SetMeta(key string, v interface{}) *Node {
	if s, ok := v.(string); ok {
		switch key {
		case KeyType:
			n.Type = s
			return n
		case KeyReturn:
			n.Return = s
			return n
		}
	}
	for i := range n.meta {
		if n.meta[i].Key == key {
			n.meta[i].Value = v
			return n
		}
	}
	n.meta = append(n.meta, Meta{Key: key, Value: v})
	return n
}

func (n *Node) putProp(p Prop) {
	for i := range n.props {
		if n.props[i].Name == p.Name {
			n.props[i] = p
			return
		}
	}
	n.props = append(n.props, p)
}

// Child returns the child node named name, or nil for scalars and absences.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, p := range n.props {
		if p.Name == name {
			return p.Node
		}
	}
	return nil
}

// Props returns the child entries in document order.
func (n *Node) Props() []Prop {
	out := make([]Prop, len(n.props))
	copy(out, n.props)
	return out
}

// Names returns child names in document order, scalar leaves included.
func (n *Node) Names() []string {
	out := make([]string, 0, len(n.props))
	for _, p := range n.props {
		out = append(out, p.Name)
	}
	return out
}

// Meta returns a metadata field.
func (n *Node) Meta(key string) (interface{}, bool) {
	switch key {
	case KeyType:
		return n.Type, n.Type != ""
	case KeyReturn:
		return n.Return, n.Return != ""
	}
	for _, m := range n.meta {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Doc returns the "!doc" annotation.
func (n *Node) Doc() string {
	v, _ := n.Meta(KeyDoc)
	s, _ := v.(string)
	return s
}

// IsCall reports whether Type is a call signature.
func (n *Node) IsCall() bool {
	return n != nil && IsCallSignature(n.Type)
}

// Reference returns the path of a named-type reference ("+Path").
func (n *Node) Reference() (string, bool) {
	if n == nil || !strings.HasPrefix(n.Type, RefPrefix) {
		return "", false
	}
	return strings.TrimPrefix(n.Type, RefPrefix), true
}

// IsCallSignature reports whether sig starts with "fn(".
func IsCallSignature(sig string) bool {
	return strings.HasPrefix(sig, callPrefix)
}

// Signature renders the full call signature, return type included.
func (n *Node) Signature() string {
	if n.Return == "" {
		return n.Type
	}
	return n.Type + arrow + n.Return
}

// MarshalJSON writes the node back in document form, keeping key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(key string, v interface{}) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
	if n.Type != "" {
		if err := field(KeyType, n.Type); err != nil {
			return nil, err
		}
	}
	if n.Return != "" {
		if err := field(KeyReturn, n.Return); err != nil {
			return nil, err
		}
	}
	for _, m := range n.meta {
		if err := field(m.Key, m.Value); err != nil {
			return nil, err
		}
	}
	for _, p := range n.props {
		var v interface{} = p.Scalar
		if p.Node != nil {
			v = p.Node
		}
		if err := field(p.Name, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
