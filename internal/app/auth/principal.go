package auth

import "context"

// Principal is the identity established for a signed-in user. It is
// built once per request from the session cookie and passed through the
// request context; nothing retains it across requests.
type Principal struct {
	UserID     string
	Name       string
	AvatarURL  string
	ProfileURL string
}

type principalContextKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the request's principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok && p.UserID != ""
}
