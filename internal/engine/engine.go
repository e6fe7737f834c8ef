// Package engine exposes the resolver to a completion host as the
// "describe" and "function" handlers of a pipeline.
package engine

import (
	"log/slog"

	"deflens/internal/graph"
	"deflens/internal/pipeline"
	"deflens/internal/resolver"
)

// Handler names registered by Register.
const (
	DescribeHandler = "deflens.describe"
	FunctionHandler = "deflens.function"
)

// Engine owns the association table and the resolver reading it.
type Engine struct {
	resolver *resolver.Resolver
}

type Option func(*options)

type options struct {
	maxDepth int
	logger   *slog.Logger
}

func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New wraps a built table. The table is only read from here on.
func New(table *graph.Table, opts ...Option) *Engine {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Engine{
		resolver: resolver.New(table,
			resolver.WithMaxDepth(o.maxDepth),
			resolver.WithLogger(o.logger),
		),
	}
}

// Resolver exposes the underlying resolver for direct use.
func (e *Engine) Resolver() *resolver.Resolver {
	return e.resolver
}

// Register installs the describe and function handlers on p.
func (e *Engine) Register(p *pipeline.Pipeline) {
	p.Use(pipeline.EventDescribe, DescribeHandler, e.Describe)
	p.Use(pipeline.EventFunction, FunctionHandler, e.Function)
}

// Describe answers with a *defs.Node or passes the request on.
func (e *Engine) Describe(q *resolver.Query, next pipeline.Next, done pipeline.Done) {
	node, ok, err := e.resolver.Describe(q)
	switch {
	case err != nil:
		done(nil, err)
	case !ok:
		next()
	default:
		done(node, nil)
	}
}

// Function answers with a live value representing the call result, or
// passes the request on.
func (e *Engine) Function(q *resolver.Query, next pipeline.Next, done pipeline.Done) {
	v, ok, err := e.resolver.Returns(q)
	switch {
	case err != nil:
		done(nil, err)
	case !ok:
		next()
	default:
		done(v, nil)
	}
}
