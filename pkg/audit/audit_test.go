package audit

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrail() (*TrailLogger, *test.Hook) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	hook := test.NewLocal(log)
	return NewTrailLoggerWith(log), hook
}

func TestLoginSucceeded(t *testing.T) {
	trail, hook := newTestTrail()

	trail.LoginSucceeded("alice", "acct-1", "203.0.113.7")

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, EventLoginSucceeded, entry.Data["event"])
	assert.Equal(t, "alice", entry.Data["username"])
	assert.Equal(t, "acct-1", entry.Data["account_id"])
	assert.Equal(t, "203.0.113.7", entry.Data["client_addr"])
}

func TestLoginFailedIsWarning(t *testing.T) {
	trail, hook := newTestTrail()

	trail.LoginFailed("alice", "203.0.113.7", "bad password")

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, EventLoginFailed, entry.Data["event"])
	assert.Equal(t, "bad password", entry.Data["reason"])
}

func TestTokenIssuedRecordsPrefixOnly(t *testing.T) {
	trail, hook := newTestTrail()

	trail.TokenIssued("acct-1", "a1b2c3d4")

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, EventTokenIssued, entry.Data["event"])
	assert.Equal(t, "a1b2c3d4", entry.Data["token_prefix"])
	assert.NotContains(t, entry.Data, "token")
}

func TestAccountCreated(t *testing.T) {
	trail, hook := newTestTrail()

	trail.AccountCreated("bob", "acct-2", "198.51.100.4")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, EventAccountCreated, hook.LastEntry().Data["event"])
}

func TestCredentialRejected(t *testing.T) {
	trail, hook := newTestTrail()

	trail.CredentialRejected("198.51.100.4", "unknown token")

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, EventCredentialRejected, entry.Data["event"])
}

func TestNopLoggerDoesNothing(t *testing.T) {
	var logger Logger = NopLogger{}
	assert.NotPanics(t, func() {
		logger.LoginSucceeded("a", "b", "c")
		logger.LoginFailed("a", "b", "c")
		logger.AccountCreated("a", "b", "c")
		logger.TokenIssued("a", "b")
		logger.CredentialRejected("a", "b")
	})
}
