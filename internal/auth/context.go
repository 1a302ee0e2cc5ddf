package auth

import (
	"context"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

type userKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// IsAdmin reports whether ctx carries an admin user.
func IsAdmin(ctx context.Context) bool {
	u, ok := UserFromContext(ctx)
	return ok && u.IsAdmin
}
