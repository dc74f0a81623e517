package registry

import (
	"errors"

	"github.com/wharfhq/wharf/pkg/auth"
)

// NamespacePrefix is the legacy couchdb account namespace used in request
// paths and response IDs.
const NamespacePrefix = "org.couchdb.user:"

var (
	// ErrBadCredentials means the account exists but the password did not
	// match. Mapped to 401.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrUnknownAccount means the account does not exist and the payload
	// carried no email, so creation was not attempted. Mapped to 404.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrStateConflict means the retried login after a creation conflict
	// did not succeed. This indicates an inconsistency (for example, the
	// concurrently created account has a different password) and is mapped
	// to 500, not to the normal rejection paths.
	ErrStateConflict = errors.New("account state conflict after creation retry")
)

// LoginRequest is the couchdb-style user document sent by npm clients.
// The _id, roles, and date fields are accepted for compatibility and
// otherwise ignored.
type LoginRequest struct {
	ID       string   `json:"_id,omitempty"`
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Date     string   `json:"date,omitempty"`
}

// Attempt is a validated login-or-create attempt.
type Attempt struct {
	Username   string
	Password   string
	Email      string
	ClientAddr string
}

// Session is the outcome of a successful login or registration: the
// resolved account and the plaintext token minted for this request.
type Session struct {
	Account    *auth.Account
	TokenValue string
	Created    bool
}

// userEnvelope is the registry-compatible success body. Rev deliberately
// carries the stable account ID, not a revision counter; npm clients
// depend on this legacy shape.
type userEnvelope struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id"`
	Rev   string `json:"rev"`
	Token string `json:"token"`
}

// whoamiEnvelope is the introspection success body.
type whoamiEnvelope struct {
	Username string `json:"username"`
}

// buildUserEnvelope shapes the success response for a login or creation.
func buildUserEnvelope(session *Session) userEnvelope {
	return userEnvelope{
		OK:    true,
		ID:    NamespacePrefix + session.Account.Name,
		Rev:   session.Account.ID,
		Token: session.TokenValue,
	}
}
