// AngelaMos | 2026
// handler.go

package member

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/member-portal/internal/middleware"
	"github.com/carterperez-dev/templates/member-portal/internal/web"
)

const (
	msgRegistered    = "Registration successful, please log in."
	msgUsernameTaken = "That username is already taken, please choose another."
)

type Handler struct {
	service  *Service
	renderer *web.Renderer
	flasher  *web.Flasher
}

func NewHandler(service *Service, renderer *web.Renderer, flasher *web.Flasher) *Handler {
	return &Handler{
		service:  service,
		renderer: renderer,
		flasher:  flasher,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	requireMember func(http.Handler) http.Handler,
) {
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.Register)

	r.With(requireMember).Get("/members", h.List)
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	recent, err := h.service.Recent(r.Context(), RecentLimit)
	if err != nil {
		h.renderer.ServerError(w, r, err)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, web.PageRegister, web.View{
		Title: "Register",
		Data:  recent,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.back(w, r, web.Danger("Please complete the form."))
		return
	}

	in, err := RegisterInputFromForm(r.PostForm)
	if err != nil {
		h.back(w, r, web.Danger(err.Error()))
		return
	}

	m, err := h.service.Register(r.Context(), in)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			h.back(w, r, web.Danger(verr.Message))
		case errors.Is(err, ErrUsernameTaken):
			h.back(w, r, web.Danger(msgUsernameTaken))
		default:
			h.renderer.ServerError(w, r, err)
		}
		return
	}

	slog.InfoContext(r.Context(), "member registered",
		"member_id", m.ID,
		"sponsored", m.HasSponsor(),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	h.flash(w, r, web.Success(msgRegistered))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.Listing(r.Context())
	if err != nil {
		h.renderer.ServerError(w, r, err)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, web.PageMembers, web.View{
		Title: "Members",
		Data:  page,
	})
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request, f web.Flash) {
	h.flash(w, r, f)
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, f web.Flash) {
	if err := h.flasher.Add(w, r, f); err != nil {
		slog.WarnContext(r.Context(), "add flash",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
}

