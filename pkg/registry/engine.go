package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/wharfhq/wharf/pkg/audit"
	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/observability"
	"github.com/wharfhq/wharf/pkg/storage"
)

// Gateway authenticates a name/password pair against the account store.
type Gateway interface {
	Login(ctx context.Context, name, password string) (auth.LoginResult, error)
}

// Provisioner creates a new account, atomically with respect to the name.
type Provisioner interface {
	Create(ctx context.Context, name, password, email, clientAddr string) (*auth.Account, error)
}

// Issuer mints a bearer token bound to one account.
type Issuer interface {
	Issue(ctx context.Context, accountID string, scopes []auth.Scope) (*auth.Token, string, error)
}

// sessionScopes are granted to every token minted by the login endpoint.
var sessionScopes = []auth.Scope{auth.ScopeRead, auth.ScopePublish}

// Engine is the login-or-create decision engine. Login is attempted
// unconditionally first; creation is a fallback gated on the payload
// carrying an email, and a creation name conflict is absorbed by exactly
// one retried login.
type Engine struct {
	gateway     Gateway
	provisioner Provisioner
	issuer      Issuer
	logger      *observability.Logger
	metrics     *observability.Metrics
	audit       audit.Logger
}

// NewEngine creates the decision engine.
func NewEngine(gateway Gateway, provisioner Provisioner, issuer Issuer, logger *observability.Logger, metrics *observability.Metrics, trail audit.Logger) *Engine {
	return &Engine{
		gateway:     gateway,
		provisioner: provisioner,
		issuer:      issuer,
		logger:      logger,
		metrics:     metrics,
		audit:       trail,
	}
}

// LoginOrCreate runs the decision machine for one validated attempt.
// Returns a Session on the LoggedIn and Created terminal states, or
// ErrBadCredentials, ErrUnknownAccount, ErrStateConflict, or a wrapped
// infrastructure error otherwise.
func (e *Engine) LoginOrCreate(ctx context.Context, attempt Attempt) (*Session, error) {
	result, err := e.gateway.Login(ctx, attempt.Username, attempt.Password)
	if err != nil {
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	switch result.Code {
	case auth.LoginSuccess:
		e.countOutcome("success")
		e.audit.LoginSucceeded(attempt.Username, result.Account.ID, attempt.ClientAddr)
		return e.openSession(ctx, result.Account, false)

	case auth.LoginFail:
		e.countOutcome("fail")
		e.audit.LoginFailed(attempt.Username, attempt.ClientAddr, "password mismatch")
		return nil, ErrBadCredentials

	case auth.LoginUserNotFound:
		// fall through to the creation branch below

	default:
		return nil, fmt.Errorf("unexpected login outcome %q", result.Code)
	}

	// A login payload and a registration payload share the same shape;
	// the email field is the one signal distinguishing them.
	if attempt.Email == "" {
		e.countOutcome("unknown_account")
		e.audit.LoginFailed(attempt.Username, attempt.ClientAddr, "unknown account")
		return nil, ErrUnknownAccount
	}

	account, err := e.provisioner.Create(ctx, attempt.Username, attempt.Password, attempt.Email, attempt.ClientAddr)
	if err != nil {
		if errors.Is(err, storage.ErrNameTaken) {
			return e.retryLogin(ctx, attempt)
		}
		return nil, fmt.Errorf("account creation: %w", err)
	}

	e.countOutcome("created")
	e.metrics.AccountsCreatedTotal.Inc()
	e.audit.AccountCreated(attempt.Username, account.ID, attempt.ClientAddr)
	return e.openSession(ctx, account, true)
}

// retryLogin re-enters the login state exactly once after a creation
// conflict, so no caller of a concurrent registration burst observes the
// raw conflict. A retried login that does not succeed indicates an
// inconsistency and is reported as such, never as a normal rejection.
func (e *Engine) retryLogin(ctx context.Context, attempt Attempt) (*Session, error) {
	e.metrics.CreateConflictRetriesTotal.Inc()
	e.logger.WithField("username", attempt.Username).Info("creation conflict, retrying login")

	result, err := e.gateway.Login(ctx, attempt.Username, attempt.Password)
	if err != nil {
		return nil, fmt.Errorf("login retry after conflict: %w", err)
	}

	if result.Code != auth.LoginSuccess {
		e.countOutcome("conflict_unresolved")
		e.logger.WithFields(map[string]interface{}{
			"username": attempt.Username,
			"outcome":  result.Code.String(),
		}).Error("retried login did not succeed after creation conflict")
		return nil, ErrStateConflict
	}

	e.countOutcome("success")
	e.audit.LoginSucceeded(attempt.Username, result.Account.ID, attempt.ClientAddr)
	return e.openSession(ctx, result.Account, false)
}

// openSession issues a fresh token for the resolved account.
func (e *Engine) openSession(ctx context.Context, account *auth.Account, created bool) (*Session, error) {
	token, value, err := e.issuer.Issue(ctx, account.ID, sessionScopes)
	if err != nil {
		return nil, fmt.Errorf("token issuance: %w", err)
	}

	e.metrics.TokensIssuedTotal.Inc()
	e.audit.TokenIssued(account.ID, token.TokenPrefix)

	return &Session{
		Account:    account,
		TokenValue: value,
		Created:    created,
	}, nil
}

func (e *Engine) countOutcome(outcome string) {
	e.metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}
