package auth

import "context"

// claimsContextKey is an unexported type so the context key can never
// collide with a key defined in another package.
type claimsContextKey struct{}

// WithClaims attaches validated Claims to ctx, for downstream handlers.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext retrieves Claims attached by the auth gate middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(Claims)
	return claims, ok
}
