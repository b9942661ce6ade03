// AngelaMos | 2026
// handler.go

package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/member-portal/internal/middleware"
	"github.com/carterperez-dev/templates/member-portal/internal/web"
)

const (
	msgLoginSuccess     = "Logged in successfully."
	msgLoginFailed      = "Incorrect username or password."
	msgLoggedOut        = "You have been logged out."
	msgLoginRequired    = "Please log in first."
	msgCredentialsBlank = "Please enter your username and password."
)

type Handler struct {
	service  *Service
	sessions *SessionManager
	renderer *web.Renderer
	flasher  *web.Flasher
}

func NewHandler(
	service *Service,
	sessions *SessionManager,
	renderer *web.Renderer,
	flasher *web.Flasher,
) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		renderer: renderer,
		flasher:  flasher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
}

type LoginForm struct {
	Username string
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/members", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, web.PageLogin, web.View{
		Title: "Log in",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginFailure(w, r, "", msgCredentialsBlank)
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		h.renderLoginFailure(w, r, username, msgCredentialsBlank)
		return
	}

	member, err := h.service.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.renderLoginFailure(w, r, username, msgLoginFailed)
			return
		}
		h.renderer.ServerError(w, r, err)
		return
	}

	// A session already on this browser is replaced, never left valid.
	if err := h.sessions.Revoke(r); err != nil {
		slog.ErrorContext(r.Context(), "revoke previous session",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}

	if err := h.sessions.Login(w, member.ID); err != nil {
		h.renderer.ServerError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "member logged in",
		"member_id", member.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	h.flash(w, r, web.Success(msgLoginSuccess))
	http.Redirect(w, r, "/members", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		// The cookie is already cleared; only the server-side revocation
		// failed.
		slog.ErrorContext(r.Context(), "revoke session",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}

	h.flash(w, r, web.Info(msgLoggedOut))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// DenyAnonymous is the SessionGuard hook run before redirecting to /login.
func (h *Handler) DenyAnonymous(w http.ResponseWriter, r *http.Request) {
	h.flash(w, r, web.Warning(msgLoginRequired))
}

func (h *Handler) renderLoginFailure(
	w http.ResponseWriter,
	r *http.Request,
	username, msg string,
) {
	h.renderer.Render(w, r, http.StatusOK, web.PageLogin, web.View{
		Title:   "Log in",
		Me:      middleware.GetIdentity(r.Context()),
		Flashes: []web.Flash{web.Danger(msg)},
		Data:    LoginForm{Username: username},
	})
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, f web.Flash) {
	if err := h.flasher.Add(w, r, f); err != nil {
		slog.WarnContext(r.Context(), "add flash", "error", err)
	}
}
