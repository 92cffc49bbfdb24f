package auth

import (
	"strings"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/google/uuid"
)

// CanonicalId trims an identifier and, when it is a uuid, rewrites it in
// its canonical lowercase hyphenated form.
func CanonicalId(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

// AssertOwner fails with domain.ErrUnauthorized unless callerId names the
// owner of the resource.
func AssertOwner(ownerId, callerId string) error {
	owner, caller := CanonicalId(ownerId), CanonicalId(callerId)
	if owner == "" || caller == "" || owner != caller {
		return domain.ErrUnauthorized
	}
	return nil
}
