// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

const identityKey contextKey = "session_identity"

// Identity is the member bound to the current request's session.
type Identity struct {
	ID       int64
	Username string
	Name     string
	Level    string
}

type SessionResolver interface {
	// CurrentMember returns nil with a nil error for anonymous requests.
	CurrentMember(r *http.Request) (*Identity, error)
}

// resolvedSession marks that the session was already looked up for this
// request, so Require does not hit the store twice after Load.
type resolvedSession struct {
	identity *Identity
}

type SessionGuard struct {
	Resolver  SessionResolver
	LoginPath string
	// OnDenied runs before the redirect to LoginPath, typically to queue a
	// flash notice.
	OnDenied func(w http.ResponseWriter, r *http.Request)
	OnError  func(w http.ResponseWriter, r *http.Request, err error)
}

// Load resolves the session, if any, and stores the identity in the request
// context. Anonymous requests pass through.
func (g *SessionGuard) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, ok := g.resolve(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require short-circuits anonymous requests with a 303 to LoginPath. The
// wrapped handler only runs for an authenticated member.
func (g *SessionGuard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, ok := g.resolve(w, r)
		if !ok {
			return
		}

		if GetIdentity(r.Context()) == nil {
			if g.OnDenied != nil {
				g.OnDenied(w, r)
			}
			http.Redirect(w, r, g.loginPath(), http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *SessionGuard) resolve(
	w http.ResponseWriter,
	r *http.Request,
) (*http.Request, bool) {
	if _, done := r.Context().Value(identityKey).(resolvedSession); done {
		return r, true
	}

	identity, err := g.Resolver.CurrentMember(r)
	if err != nil {
		if g.OnError != nil {
			g.OnError(w, r, err)
		} else {
			slog.ErrorContext(r.Context(), "resolve session", "error", err)
			http.Error(
				w,
				http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError,
			)
		}
		return r, false
	}

	return r.WithContext(WithIdentity(r.Context(), identity)), true
}

func (g *SessionGuard) loginPath() string {
	if g.LoginPath == "" {
		return "/login"
	}
	return g.LoginPath
}

// WithIdentity records the resolved identity; nil marks an anonymous request.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, resolvedSession{identity: identity})
}

func GetIdentity(ctx context.Context) *Identity {
	if s, ok := ctx.Value(identityKey).(resolvedSession); ok {
		return s.identity
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetIdentity(ctx) != nil
}
