package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() LoginRequest {
	return LoginRequest{
		Type:     "user",
		Name:     "alice",
		Password: "longenough1",
	}
}

func TestValidateLoginRequest(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		mutate    func(*LoginRequest)
		wantField string
	}{
		{
			name:     "valid login payload",
			username: "alice",
			mutate:   func(r *LoginRequest) {},
		},
		{
			name:     "valid with email",
			username: "alice",
			mutate:   func(r *LoginRequest) { r.Email = "alice@example.com" },
		},
		{
			name:     "extra couchdb fields are ignored",
			username: "alice",
			mutate: func(r *LoginRequest) {
				r.ID = "org.couchdb.user:alice"
				r.Roles = []string{}
				r.Date = "2021-12-03T13:14:21.712Z"
			},
		},
		{
			name:      "wrong type",
			username:  "alice",
			mutate:    func(r *LoginRequest) { r.Type = "admin" },
			wantField: "type",
		},
		{
			name:      "empty name",
			username:  "",
			mutate:    func(r *LoginRequest) { r.Name = "" },
			wantField: "name",
		},
		{
			name:      "name too long",
			username:  strings.Repeat("a", 101),
			mutate:    func(r *LoginRequest) { r.Name = strings.Repeat("a", 101) },
			wantField: "name",
		},
		{
			name:      "password too short",
			username:  "alice",
			mutate:    func(r *LoginRequest) { r.Password = "short" },
			wantField: "password",
		},
		{
			name:      "password too long",
			username:  "alice",
			mutate:    func(r *LoginRequest) { r.Password = strings.Repeat("p", 101) },
			wantField: "password",
		},
		{
			name:      "invalid email",
			username:  "alice",
			mutate:    func(r *LoginRequest) { r.Email = "not-an-email" },
			wantField: "email",
		},
		{
			name:      "username mismatch",
			username:  "alice",
			mutate:    func(r *LoginRequest) { r.Name = "bob" },
			wantField: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			verr := ValidateLoginRequest(tt.username, &req)
			if tt.wantField == "" {
				assert.Nil(t, verr)
			} else {
				require.NotNil(t, verr)
				assert.Equal(t, tt.wantField, verr.Field)
			}
		})
	}
}

func TestValidateUsernameMismatchMessage(t *testing.T) {
	req := validRequest()
	req.Name = "bob"

	verr := ValidateLoginRequest("alice", &req)
	require.NotNil(t, verr)
	assert.Equal(t, "username(alice) not match user.name(bob)", verr.Message)
}

func TestValidationShortCircuits(t *testing.T) {
	// Bad type wins over the name mismatch that would also fail
	req := validRequest()
	req.Type = "robot"
	req.Name = "bob"

	verr := ValidateLoginRequest("alice", &req)
	require.NotNil(t, verr)
	assert.Equal(t, "type", verr.Field)
}
