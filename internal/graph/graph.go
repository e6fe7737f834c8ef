package graph

import (
	"deflens/internal/defs"
	"deflens/internal/env"
)

// Table associates live objects, by identity, with the definition node that
// describes them. It is built once by a Builder and only read afterwards.
type Table struct {
	entries map[env.Object]*defs.Node
	stats   Stats
}

// Lookup returns the node describing obj.
func (t *Table) Lookup(obj env.Object) (*defs.Node, bool) {
	if t == nil || obj == nil {
		return nil, false
	}
	n, ok := t.entries[obj]
	return n, ok
}

// Len returns the number of associated objects.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Stats reports how the table was built.
func (t *Table) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	return t.stats
}

// Builder folds definition trees into a table. Later trees overwrite earlier
// associations for the same object.
type Builder struct {
	entries map[env.Object]*defs.Node
	stats   Stats
	built   bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[env.Object]*defs.Node)}
}

// Add walks root and the live object in parallel, associating every node with
// the object reached by the same property path. Properties are read with
// OwnProperty, so accessors are never run.
func (b *Builder) Add(root *defs.Node, live env.Value) Stats {
	before := b.stats
	b.stats.Trees++
	b.walk(root, live)
	return b.stats.Sub(before)
}

func (b *Builder) walk(n *defs.Node, live env.Value) {
	obj, ok := env.AsObject(live)
	if n == nil || !ok {
		b.stats.Skipped++
		return
	}
	if _, exists := b.entries[obj]; exists {
		b.stats.Overwritten++
	} else {
		b.stats.Recorded++
	}
	b.entries[obj] = n

	for _, p := range n.Props() {
		if p.Node == nil {
			continue
		}
		v, found := obj.OwnProperty(p.Name)
		if !found {
			b.stats.Missing++
			continue
		}
		b.walk(p.Node, v)
	}
}

// Build freezes the builder into a read-only table. The builder must not be
// used afterwards.
func (b *Builder) Build() *Table {
	if b.built {
		panic("graph: Build called twice")
	}
	b.built = true
	t := &Table{entries: b.entries, stats: b.stats}
	b.entries = nil
	return t
}

// BuildTable folds the given trees, in order, against the same live root.
func BuildTable(root env.Object, trees ...*defs.Node) *Table {
	b := NewBuilder()
	for _, tree := range trees {
		b.Add(tree, root)
	}
	return b.Build()
}
