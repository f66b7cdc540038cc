package common

import "context"

type ctxKey string

const (
	companyIDKey ctxKey = "identity/company-id"
	userIDKey    ctxKey = "identity/user-id"
)

// Identity is the caller as resolved by the authentication collaborator:
// the buying company plus the acting user inside it.
type Identity struct {
	CompanyID string
	UserID    string
}

// WithIdentity stores the resolved identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, companyIDKey, id.CompanyID)
	return context.WithValue(ctx, userIDKey, id.UserID)
}

// CompanyID extracts the caller's company identifier if present.
func CompanyID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(companyIDKey).(string)
	return v, ok && v != ""
}

// UserID extracts the acting user identifier if present.
func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}
