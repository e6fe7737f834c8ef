package resolver

import "deflens/internal/env"

type TokenType string

const (
	TokenVariable TokenType = "variable"
	TokenProperty TokenType = "property"
	TokenOther    TokenType = "other"
)

// Token is the source token a query is made for.
type Token struct {
	Type   TokenType `json:"type"`
	String string    `json:"string"`
}

// Scope answers whether an identifier is bound in the lexical scope at the
// token's position.
type Scope interface {
	IsBound(name string) bool
}

// ScopeFunc adapts a function to Scope.
type ScopeFunc func(name string) bool

func (f ScopeFunc) IsBound(name string) bool { return f(name) }

// Query is one resolution request.
type Query struct {
	Token Token
	// Context is the value the token evaluated to, when known.
	Context env.Value
	// Parent is the object the token was accessed on.
	Parent env.Value
	// Window is the root of the live environment.
	Window env.Object
	// IsConstructor marks a function used with "new".
	IsConstructor bool
	Scope         Scope
}
