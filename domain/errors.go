package domain

import "errors"

var (
	UnexpectedDatabaseError          = errors.New("unexpected-database-error")
	UnexpectedCacheError             = errors.New("unexpected-cache-error")
	UnexpectedTokenGenerationError   = errors.New("unexpected-token-generation-error")
	UnexpectedTokenVerificationError = errors.New("unexpected-token-verification-error")
)

var (
	ErrUserNotFound     = errors.New("user-not-found")
	ErrRoomNotFound     = errors.New("room-not-found")
	ErrPlaylistNotFound = errors.New("playlist-not-found")
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid-input")
)

var (
	ErrInvalidSigningAlg     = errors.New("invalid-signing-alg")
	ErrExpiredToken          = errors.New("expired-token")
	ErrInvalidTokenSignature = errors.New("invalid-token-signature")
	ErrCorruptedToken        = errors.New("corrupted-token")
)
