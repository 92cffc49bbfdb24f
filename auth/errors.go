package auth

import (
	"fmt"

	"github.com/Fubalt/Blindtest-web-app/domain"
)

var (
	ErrInvalidUsernameFormat = fmt.Errorf("%w: invalid-username-format", domain.ErrInvalidInput)
)
