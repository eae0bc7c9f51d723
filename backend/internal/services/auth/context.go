package auth

import (
	"context"
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"
	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/model"
)

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

type Identity struct {
	UserID    string
	Role      enums.Role
	Name      string
	Email     string
	ExpiresAt time.Time
}

func (i Identity) Actor() model.Actor {
	return model.Actor{
		ID:    i.UserID,
		Name:  i.Name,
		Email: i.Email,
		Role:  i.Role,
	}
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
