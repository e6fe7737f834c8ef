package pipeline

import (
	"log/slog"

	"deflens/internal/resolver"
)

// Event names dispatched by completion hosts.
const (
	EventDescribe = "describe"
	EventFunction = "function"
)

// Next passes the request to the following handler unmodified.
type Next func()

// Done completes the dispatch with a result or an error.
type Done func(result interface{}, err error)

// Handler processes a request and must call exactly one of next or done
// before returning. Returning without calling either counts as next.
type Handler func(q *resolver.Query, next Next, done Done)

type stage struct {
	name    string
	handler Handler
}

// StageResult records what one handler did during a dispatch.
type StageResult struct {
	Handler string
	Passed  bool
	Err     error
}

// Outcome is the result of a dispatch.
type Outcome struct {
	Handled bool
	Handler string
	Result  interface{}
	Err     error
	Trace   []StageResult
}

// Pipeline runs named handler chains, one per event, synchronously and in
// registration order.
type Pipeline struct {
	events map[string][]stage
	logger *slog.Logger
}

func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{events: make(map[string][]stage), logger: logger}
}

// Use appends a handler to an event's chain.
func (p *Pipeline) Use(event, name string, h Handler) {
	p.events[event] = append(p.events[event], stage{name: name, handler: h})
}

// Handlers lists handler names registered for an event, in order.
func (p *Pipeline) Handlers(event string) []string {
	var out []string
	for _, s := range p.events[event] {
		out = append(out, s.name)
	}
	return out
}

// Dispatch runs the event's chain until a handler calls done or the chain is
// exhausted.
func (p *Pipeline) Dispatch(event string, q *resolver.Query) Outcome {
	var out Outcome
	for _, s := range p.events[event] {
		var (
			finished bool
			result   interface{}
			err      error
		)
		next := func() {}
		done := func(r interface{}, e error) {
			finished = true
			result, err = r, e
		}
		s.handler(q, next, done)

		out.Trace = append(out.Trace, StageResult{Handler: s.name, Passed: !finished, Err: err})
		if finished {
			out.Handled = true
			out.Handler = s.name
			out.Result = result
			out.Err = err
			p.logger.Debug("dispatch handled", "event", event, "handler", s.name, "error", err)
			return out
		}
	}
	p.logger.Debug("dispatch fell through", "event", event, "handlers", len(out.Trace))
	return out
}
