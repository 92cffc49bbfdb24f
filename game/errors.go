package game

import (
	"errors"
	"fmt"

	"github.com/Fubalt/Blindtest-web-app/domain"
)

var (
	ErrUnknownAction  = fmt.Errorf("%w: unknown-action", domain.ErrInvalidInput)
	ErrMissingFields  = fmt.Errorf("%w: missing-required-fields", domain.ErrInvalidInput)
	ErrBadSettings    = fmt.Errorf("%w: invalid-settings", domain.ErrInvalidInput)
	ErrBadElapsed     = fmt.Errorf("%w: invalid-elapsed-ms", domain.ErrInvalidInput)
	ErrTooManyGuesses = errors.New("too-many-guesses")
)
