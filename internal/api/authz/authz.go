package authz

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// AuthUser is the caller identity forwarded by the upstream gateway.
type AuthUser struct {
	ID string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// UserID returns the id of the user in ctx, or "" when there is none.
func UserID(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}

func RequireUser(ctx context.Context) error {
	user := UserFromContext(ctx)
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return ErrUnauthenticated
	}
	return nil
}

// RequireOwner allows access only to the user that owns a record.
func RequireOwner(ctx context.Context, ownerID string) error {
	if err := RequireUser(ctx); err != nil {
		return err
	}
	if UserFromContext(ctx).ID != ownerID {
		return ErrForbidden
	}
	return nil
}
