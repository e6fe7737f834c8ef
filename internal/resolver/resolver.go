package resolver

import (
	"fmt"
	"log/slog"

	"deflens/internal/defs"
	"deflens/internal/env"
	"deflens/internal/graph"
)

// Resolver answers description and return-type queries against a built
// association table. It holds no mutable state and never writes to the table.
type Resolver struct {
	table    *graph.Table
	maxDepth int
	logger   *slog.Logger
}

type Option func(*Resolver)

// WithMaxDepth bounds prototype-chain walks.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(table *graph.Table, opts ...Option) *Resolver {
	r := &Resolver{
		table:    table,
		maxDepth: env.DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the association table the resolver reads.
func (r *Resolver) Table() *graph.Table {
	return r.table
}

// Describe returns the definition describing the query's token. ok is false
// when there is no informed answer and the caller should try other sources.
// An error is only returned for a malformed prototype chain.
//
// A variable bound in the query's lexical scope is never described. Otherwise
// a context object with its own association wins. Failing that, the parent's
// prototype chain is searched for a node with a child named by the token. A
// node typed "+Path" is redirected once to the object Path describes.
func (r *Resolver) Describe(q *Query) (*defs.Node, bool, error) {
	if q.Token.Type == TokenVariable && q.Scope != nil && q.Scope.IsBound(q.Token.String) {
		r.logger.Debug("describe declined, name is bound locally", "token", q.Token.String)
		return nil, false, nil
	}

	if ctx, ok := env.AsObject(q.Context); ok {
		if n, found := r.table.Lookup(ctx); found {
			return n, true, nil
		}
	}

	parent, ok := env.AsObject(q.Parent)
	if !ok {
		return nil, false, nil
	}

	var answer *defs.Node
	err := r.walk(parent, q.Window, func(node *defs.Node) bool {
		answer = node.Child(q.Token.String)
		return answer == nil
	})
	if err != nil || answer == nil {
		return nil, false, err
	}
	return answer, true, nil
}

// Members lists the property names described for obj along its prototype
// chain, nearest first and without duplicates.
func (r *Resolver) Members(obj env.Object, window env.Object) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	err := r.walk(obj, window, func(node *defs.Node) bool {
		for _, name := range node.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		return true
	})
	return names, err
}

// walk visits the node of every associated object on start's prototype
// chain until visit returns false. A node typed "+Path" is replaced, once,
// by the node of the object Path describes, and the walk continues from that
// object's prototype.
func (r *Resolver) walk(start env.Object, window env.Object, visit func(*defs.Node) bool) error {
	seen := make(map[env.Object]struct{})
	cur := start
	for depth := 0; ; depth++ {
		if depth >= r.maxDepth {
			return fmt.Errorf("%w (%d)", env.ErrPrototypeDepth, r.maxDepth)
		}
		if _, dup := seen[cur]; dup {
			return env.ErrPrototypeCycle
		}
		seen[cur] = struct{}{}

		if node, found := r.table.Lookup(cur); found {
			if target, redirected := r.redirect(node, window); redirected && target != cur {
				if _, dup := seen[target]; dup {
					return env.ErrPrototypeCycle
				}
				seen[target] = struct{}{}
				cur = target
				node, found = r.table.Lookup(cur)
			}
			if found && !visit(node) {
				return nil
			}
		}

		next, ok := cur.Prototype()
		if !ok {
			return nil
		}
		cur = next
	}
}

// redirect resolves a "+Path" node to the live object describing instances of
// Path. Unresolvable references leave the walk where it is.
func (r *Resolver) redirect(n *defs.Node, window env.Object) (env.Object, bool) {
	path, ok := n.Reference()
	if !ok || window == nil {
		return nil, false
	}
	target, ok := env.Instance(window, path)
	if !ok {
		r.logger.Debug("unresolved type reference", "ref", n.Type)
		return nil, false
	}
	return target, true
}
