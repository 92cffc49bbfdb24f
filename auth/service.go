package auth

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/rs/zerolog/log"
)

const MaxUsernameLength = 32

type service struct {
	userRepo     UserRepo
	tokenManager TokenManager
	now          func() time.Time
}

func NewService(userRepo UserRepo, tokenManager TokenManager) *service {
	return &service{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		now:          time.Now,
	}
}

// normalizeUsername trims surrounding spaces and rejects names that are empty,
// too long or contain control characters.
func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n == 0 || n > MaxUsernameLength {
		return "", ErrInvalidUsernameFormat
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return "", ErrInvalidUsernameFormat
		}
	}
	return username, nil
}

// Login resolves username to a user, creating it on first use, and issues a
// token carrying its id.
func (s *service) Login(ctx context.Context, username string) (domain.User, string, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return domain.User{}, "", err
	}

	user, err := s.userRepo.GetOrCreateUser(ctx, username)
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.tokenManager.Generate(user.Id, s.now())
	if err != nil {
		return domain.User{}, "", err
	}

	log.Debug().Str("user", user.Id).Msg("user logged in")
	return user, token, nil
}

func (s *service) VerifyToken(token string) (string, error) {
	return s.tokenManager.Verify(token)
}

func (s *service) GenerateToken(id string) (string, error) {
	return s.tokenManager.Generate(id, s.now())
}

func (s *service) CurrentUser(ctx context.Context, id string) (domain.User, error) {
	return s.userRepo.GetUserById(ctx, id)
}
