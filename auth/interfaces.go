package auth

import (
	"context"
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
)

type UserRepo interface {
	GetOrCreateUser(ctx context.Context, username string) (domain.User, error)
	GetUserById(ctx context.Context, id string) (domain.User, error)
}

type TokenManager interface {
	Generate(id string, now time.Time) (string, error)
	Verify(token string) (string, error)
}
