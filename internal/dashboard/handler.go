package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/finboard/middlewares"
	"github.com/dmitrymomot/finboard/pkg/session"
)

// maxBodyBytes limits the login request body.
const maxBodyBytes = 64 << 10

// ErrNotProvisioned is written when a handler runs outside middlewares.Session.
var ErrNotProvisioned = errors.New("session store not provisioned")

// SessionResponse is the JSON view of the session.
type SessionResponse struct {
	User      *User         `json:"user"`
	Persisted *bool         `json:"persisted,omitempty"`
	Token     string        `json:"token,omitempty"`
	State     session.State `json:"state"`
}

// LoginRequest is the body of POST /api/session.
type LoginRequest struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Handler serves /api/session.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates the session API handler.
func NewHandler(log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{logger: log}
}

// Routes registers the session endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", h.get)
		r.Post("/", h.login)
		r.Delete("/", h.logout)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view(store.Snapshot(), nil))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		middlewares.WriteError(w, http.StatusBadRequest, errors.New("malformed request body"))
		return
	}
	if req.User == nil {
		middlewares.WriteError(w, http.StatusBadRequest, session.ErrNilPrincipal)
		return
	}

	outcome, err := store.Login(r.Context(), *req.User, req.Token)
	if err != nil {
		middlewares.WriteError(w, http.StatusBadRequest, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in",
		slog.String("user_id", req.User.ID),
		slog.Bool("persisted", outcome.OK()),
	)

	persisted := outcome.OK()
	writeJSON(w, http.StatusOK, view(store.Snapshot(), &persisted))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	outcome := store.Logout(r.Context())
	h.logger.InfoContext(r.Context(), "user logged out", slog.Bool("persisted", outcome.OK()))

	persisted := outcome.OK()
	writeJSON(w, http.StatusOK, view(store.Snapshot(), &persisted))
}

// store fetches the provisioned store or answers 500.
func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*session.Store[User], bool) {
	s, err := session.FromContext[User](r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "session store missing from request context", slog.Any("error", err))
		middlewares.WriteError(w, http.StatusInternalServerError, ErrNotProvisioned)
		return nil, false
	}
	return s, true
}

func view(snap session.Snapshot[User], persisted *bool) SessionResponse {
	resp := SessionResponse{State: snap.State, Persisted: persisted}
	if snap.Authenticated() {
		u := snap.Principal
		resp.User = &u
		resp.Token = snap.Token
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
