// Package auth carries the authenticated principal through request contexts.
package auth

import "context"

// Principal 当前请求的已认证用户
type Principal struct {
	UserID    string
	Email     string
	SessionID string
}

type principalKey struct{}

// WithPrincipal 将 principal 放入 context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext 取出 principal，未认证时 ok 为 false
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != ""
}
