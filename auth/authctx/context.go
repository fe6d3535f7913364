// Package authctx carries authentication claims through a request context
// in a type-safe way, so a handler retrieving them never has to type-assert
// against `any` itself.
package authctx

import "context"

type contextKey struct{}

var claimsKey = contextKey{}

// Set stores authentication claims in the context.
func Set(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Get retrieves typed authentication claims from the context. Returns the
// claims and true if present and of the requested type, or the zero value
// and false otherwise.
func Get[T any](ctx context.Context) (T, bool) {
	val := ctx.Value(claimsKey)
	if val == nil {
		var zero T
		return zero, false
	}
	claims, ok := val.(T)
	return claims, ok
}
