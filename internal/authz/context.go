package authz

import "context"

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in the context. The
// principal is loaded fresh for each request; nothing here survives across
// requests.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from the context, or nil when
// the request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
