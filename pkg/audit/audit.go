package audit

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Event types recorded in the audit trail
const (
	EventLoginSucceeded     = "auth.login"
	EventLoginFailed        = "auth.login_failed"
	EventAccountCreated     = "account.created"
	EventTokenIssued        = "token.issued"
	EventCredentialRejected = "token.rejected"
)

// Logger records security-relevant events. Implementations must be safe
// for concurrent use.
type Logger interface {
	LoginSucceeded(username, accountID, clientAddr string)
	LoginFailed(username, clientAddr, reason string)
	AccountCreated(username, accountID, clientAddr string)
	TokenIssued(accountID, tokenPrefix string)
	CredentialRejected(clientAddr, reason string)
}

// TrailLogger writes audit events through logrus as structured JSON.
type TrailLogger struct {
	log *logrus.Logger
}

// NewTrailLogger creates an audit logger writing JSON entries to output.
func NewTrailLogger(output io.Writer) *TrailLogger {
	log := logrus.New()
	log.SetOutput(output)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
	return &TrailLogger{log: log}
}

// NewTrailLoggerWith wraps an existing logrus logger, useful for tests.
func NewTrailLoggerWith(log *logrus.Logger) *TrailLogger {
	return &TrailLogger{log: log}
}

func (t *TrailLogger) LoginSucceeded(username, accountID, clientAddr string) {
	t.log.WithFields(logrus.Fields{
		"event":       EventLoginSucceeded,
		"username":    username,
		"account_id":  accountID,
		"client_addr": clientAddr,
	}).Info("login succeeded")
}

func (t *TrailLogger) LoginFailed(username, clientAddr, reason string) {
	t.log.WithFields(logrus.Fields{
		"event":       EventLoginFailed,
		"username":    username,
		"client_addr": clientAddr,
		"reason":      reason,
	}).Warn("login failed")
}

func (t *TrailLogger) AccountCreated(username, accountID, clientAddr string) {
	t.log.WithFields(logrus.Fields{
		"event":       EventAccountCreated,
		"username":    username,
		"account_id":  accountID,
		"client_addr": clientAddr,
	}).Info("account created")
}

func (t *TrailLogger) TokenIssued(accountID, tokenPrefix string) {
	t.log.WithFields(logrus.Fields{
		"event":        EventTokenIssued,
		"account_id":   accountID,
		"token_prefix": tokenPrefix,
	}).Info("token issued")
}

func (t *TrailLogger) CredentialRejected(clientAddr, reason string) {
	t.log.WithFields(logrus.Fields{
		"event":       EventCredentialRejected,
		"client_addr": clientAddr,
		"reason":      reason,
	}).Warn("credential rejected")
}

// NopLogger discards all audit events.
type NopLogger struct{}

func (NopLogger) LoginSucceeded(username, accountID, clientAddr string) {}
func (NopLogger) LoginFailed(username, clientAddr, reason string)       {}
func (NopLogger) AccountCreated(username, accountID, clientAddr string) {}
func (NopLogger) TokenIssued(accountID, tokenPrefix string)             {}
func (NopLogger) CredentialRejected(clientAddr, reason string)          {}
