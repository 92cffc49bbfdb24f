package auth_test

import (
	"testing"

	"github.com/Fubalt/Blindtest-web-app/auth"
	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/stretchr/testify/assert"
)

func TestAssertOwner(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description   string
		owner         string
		caller        string
		expectedError error
	}{
		{"same id", "host-1", "host-1", nil},
		{"different id", "host-1", "host-2", domain.ErrUnauthorized},
		{"surrounding spaces", " host-1 ", "host-1", nil},
		{"uuid case differs", "6F9619FF-8B86-D011-B42D-00CF4FC964FF", "6f9619ff-8b86-d011-b42d-00cf4fc964ff", nil},
		{"uuid braces", "{6f9619ff-8b86-d011-b42d-00cf4fc964ff}", "6f9619ff-8b86-d011-b42d-00cf4fc964ff", nil},
		{"empty caller", "host-1", "", domain.ErrUnauthorized},
		{"empty owner", "", "", domain.ErrUnauthorized},
		{"prefix is not enough", "host-10", "host-1", domain.ErrUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()
			err := auth.AssertOwner(tc.owner, tc.caller)
			if tc.expectedError == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.expectedError)
		})
	}
}
