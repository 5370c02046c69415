package auth

import "context"

// Principal is the verified identity attached to a request.
type Principal struct {
	Email string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns nil when the request carried no verified token.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok {
		return nil
	}
	return &p
}
