package registry

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wharfhq/wharf/pkg/auth"
	"github.com/wharfhq/wharf/pkg/httputil"
	"github.com/wharfhq/wharf/pkg/observability"
)

// Handlers serves the npm-compatible account endpoints.
type Handlers struct {
	engine   *Engine
	resolver *TokenResolver
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewHandlers creates the account endpoint handlers.
func NewHandlers(engine *Engine, resolver *TokenResolver, logger *observability.Logger, metrics *observability.Metrics) *Handlers {
	return &Handlers{
		engine:   engine,
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
	}
}

// RegisterRoutes binds the account endpoints on the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/-/user/"+NamespacePrefix+"{username}", h.loginOrCreate).Methods("PUT")
	router.HandleFunc("/-/whoami", h.whoami).Methods("GET")
}

// loginOrCreate handles PUT /-/user/org.couchdb.user:<username>.
func (h *Handlers) loginOrCreate(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req LoginRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteUnprocessableEntity(w, err.Error())
		return
	}

	if verr := ValidateLoginRequest(username, &req); verr != nil {
		httputil.WriteUnprocessableEntity(w, verr.Message)
		return
	}

	attempt := Attempt{
		Username:   username,
		Password:   req.Password,
		Email:      req.Email,
		ClientAddr: httputil.ClientAddr(r),
	}

	session, err := h.engine.LoginOrCreate(r.Context(), attempt)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadCredentials):
			httputil.WriteUnauthorized(w, "Please check your login name and password")
		case errors.Is(err, ErrUnknownAccount):
			httputil.WriteNotFoundError(w, fmt.Sprintf("User %s not exists", username))
		default:
			observability.FromContext(r.Context()).
				WithField("username", username).
				WithError(err).
				Error("login or create failed")
			httputil.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httputil.WriteSuccess(w, buildUserEnvelope(session))
}

// whoami handles GET /-/whoami.
func (h *Handlers) whoami(w http.ResponseWriter, r *http.Request) {
	credential := httputil.BearerToken(r)

	account, err := h.resolver.Resolve(r.Context(), credential, auth.ScopeRead, httputil.ClientAddr(r))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) {
			h.metrics.IntrospectionsTotal.WithLabelValues("unauthorized").Inc()
			httputil.WriteUnauthorized(w, "Unauthorized")
			return
		}
		h.metrics.IntrospectionsTotal.WithLabelValues("error").Inc()
		observability.FromContext(r.Context()).WithError(err).Error("introspection failed")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.IntrospectionsTotal.WithLabelValues("ok").Inc()
	httputil.WriteSuccess(w, whoamiEnvelope{Username: account.Name})
}
