package domain

import "context"

// Capability is a named permission held by a requesting principal. The core
// consults membership only; accounts and sessions live outside this module.
type Capability string

// Capabilities consulted by the visibility engine and the scope guard.
const (
	// CapabilityViewSuppressed lets a principal see suppressed records.
	CapabilityViewSuppressed Capability = "view_suppressed"
	// CapabilityManageRepository gates suppression toggles and repository administration.
	CapabilityManageRepository Capability = "manage_repository"
)

// Principal is the acting identity for a request.
type Principal struct {
	Username     string
	capabilities map[Capability]struct{}
}

// NewPrincipal constructs a principal holding the given capabilities.
func NewPrincipal(username string, capabilities ...Capability) Principal {
	p := Principal{Username: username}
	if len(capabilities) > 0 {
		p.capabilities = make(map[Capability]struct{}, len(capabilities))
		for _, c := range capabilities {
			p.capabilities[c] = struct{}{}
		}
	}
	return p
}

// Can reports whether the principal holds the capability.
func (p Principal) Can(c Capability) bool {
	_, ok := p.capabilities[c]
	return ok
}

// Scope carries the repository context and acting principal of a session.
// Every read and write is confined to the scope's repository.
type Scope struct {
	RepositoryID int64
	Principal    Principal
}

// scopeKey is an unexported type used as the context key for Scope.
type scopeKey struct{}

// WithScope returns a new context with the given Scope attached.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFromContext retrieves the Scope from the context. Returns the zero
// value and false if no scope is set.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}
