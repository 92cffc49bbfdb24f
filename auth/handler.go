package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingTokenStr          = "missing-token"
	ErrExpiredTokenStr          = "expired-token"
	ErrInvalidTokenStr          = "invalid-token"
	ErrServerTimeoutStr         = "server-timeout"
	ErrInvalidRequestFormatStr  = "bad-request-format"
	ErrInvalidUsernameFormatStr = "invalid-username-format"
	ErrUserNotFoundStr          = "user-not-found"
	ErrUnknownStr               = "unknown-error"
)

type AuthService interface {
	Login(ctx context.Context, username string) (domain.User, string, error)
	VerifyToken(token string) (string, error)
	GenerateToken(id string) (string, error)
	CurrentUser(ctx context.Context, id string) (domain.User, error)
}

type authHandler struct {
	authService  AuthService
	cookieMaxAge time.Duration
}

func NewAuthHandler(service AuthService, cookieMaxAge time.Duration) *authHandler {
	return &authHandler{authService: service, cookieMaxAge: cookieMaxAge}
}

func (ah *authHandler) setTokenCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteNoneMode)
	ctx.SetCookie("token", token, maxAge, "/", "", true, true)
}

// bearerToken reads the session token from the "token" cookie, falling back
// to an Authorization: Bearer header.
func bearerToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie("token"); err == nil && token != "" {
		return token
	}
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// redact keeps the header and payload of a token and masks most of the
// signature.
func redact(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "<malformed>"
	}
	sig := []rune(parts[2])
	if len(sig) > 10 {
		sig = append(sig[:10], []rune(strings.Repeat("*", len(sig)-10))...)
	}
	return parts[0] + "." + parts[1] + "." + string(sig)
}

// RequireAuthMiddleware sets "id" on the context to the caller's user id.
// Forged tokens are answered after trollTime.
func (ah *authHandler) RequireAuthMiddleware(trollTime time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			ctx.String(http.StatusUnauthorized, ErrMissingTokenStr)
			ctx.Abort()
			return
		}

		id, err := ah.authService.VerifyToken(token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidSigningAlg),
				errors.Is(err, domain.ErrInvalidTokenSignature),
				errors.Is(err, domain.ErrCorruptedToken):
				log.Warn().Err(err).
					Str("ip", ctx.ClientIP()).
					Str("user_agent", ctx.Request.UserAgent()).
					Str("token", redact(token)).
					Msg("suspicious token")
				time.Sleep(trollTime)
				ctx.String(http.StatusUnauthorized, ErrInvalidTokenStr)
			case errors.Is(err, domain.ErrExpiredToken):
				ctx.String(http.StatusUnauthorized, ErrExpiredTokenStr)
			default:
				log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg("token verification failed")
				ctx.String(http.StatusInternalServerError, ErrUnknownStr)
			}
			ctx.Abort()
			return
		}

		ctx.Set("id", id)
		ctx.Next()
	}
}

func (ah *authHandler) LoginHandler(ctx *gin.Context) {
	var body struct {
		Username string `json:"username"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		ctx.Abort()
		return
	}

	user, token, err := ah.authService.Login(ctx.Request.Context(), body.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsernameFormat):
			ctx.String(http.StatusBadRequest, ErrInvalidUsernameFormatStr)
		case errors.Is(err, context.DeadlineExceeded):
			ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
		case errors.Is(err, context.Canceled):
			ctx.Status(499) // http code for "Client Closed Request"
		default:
			log.Error().Err(err).
				Str("ip", ctx.ClientIP()).
				Str("username", body.Username).
				Msg("login failed")
			ctx.String(http.StatusInternalServerError, ErrUnknownStr)
		}
		ctx.Abort()
		return
	}

	ah.setTokenCookie(ctx, token, int(ah.cookieMaxAge.Seconds()))
	ctx.JSON(http.StatusOK, gin.H{"id": user.Id, "username": user.Username})
}

func (ah *authHandler) RefreshSessionHandler(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token == "" {
		ctx.String(http.StatusUnauthorized, ErrMissingTokenStr)
		return
	}

	id, err := ah.authService.VerifyToken(token)
	if err != nil {
		ctx.String(http.StatusUnauthorized, ErrInvalidTokenStr)
		return
	}

	newToken, err := ah.authService.GenerateToken(id)
	if err != nil {
		log.Error().Err(err).Str("user", id).Msg("token refresh failed")
		ctx.String(http.StatusInternalServerError, ErrUnknownStr)
		return
	}

	ah.setTokenCookie(ctx, newToken, int(ah.cookieMaxAge.Seconds()))
	ctx.Status(http.StatusOK)
}

// MeHandler must run behind RequireAuthMiddleware.
func (ah *authHandler) MeHandler(ctx *gin.Context) {
	user, err := ah.authService.CurrentUser(ctx.Request.Context(), ctx.GetString("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			ctx.String(http.StatusUnauthorized, ErrUserNotFoundStr)
		case errors.Is(err, context.DeadlineExceeded):
			ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
		case errors.Is(err, context.Canceled):
			ctx.Status(499)
		default:
			log.Error().Err(err).Msg("loading current user failed")
			ctx.String(http.StatusInternalServerError, ErrUnknownStr)
		}
		ctx.Abort()
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (ah *authHandler) LogoutHandler(ctx *gin.Context) {
	ah.setTokenCookie(ctx, "", -1)
	ctx.Status(http.StatusOK)
}
