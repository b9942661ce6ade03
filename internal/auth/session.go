// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/member-portal/internal/config"
	"github.com/carterperez-dev/templates/member-portal/internal/core"
	"github.com/carterperez-dev/templates/member-portal/internal/middleware"
)

const sessionTokenType = "session"

// SessionManager issues and resolves the signed session cookie. The cookie
// carries only the member id; everything else is read from the store on
// each request.
type SessionManager struct {
	key     jwk.Key
	config  config.SessionConfig
	revoker Revoker
	members MemberProvider
	now     func() time.Time
}

func NewSessionManager(
	cfg config.SessionConfig,
	revoker Revoker,
	members MemberProvider,
) (*SessionManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required")
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import session key: %w", err)
	}

	return &SessionManager{
		key:     key,
		config:  cfg,
		revoker: revoker,
		members: members,
		now:     time.Now,
	}, nil
}

var _ middleware.SessionResolver = (*SessionManager)(nil)

// Login binds memberID to the response by setting a fresh session cookie.
func (m *SessionManager) Login(w http.ResponseWriter, memberID int64) error {
	now := m.now()
	expires := now.Add(m.config.TTL)

	signed, err := m.issue(memberID, now, expires)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Logout expires the cookie and revokes its token id until the token's own
// expiry, so a copied cookie stops working too.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	m.clearCookie(w)

	if err := m.Revoke(r); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Revoke invalidates the session token carried by r, if any. Cookies that
// are missing or no longer verify need no revocation.
func (m *SessionManager) Revoke(r *http.Request) error {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	token, err := m.parse(cookie.Value)
	if err != nil {
		return nil
	}

	jti, ok := token.JwtID()
	if !ok || jti == "" {
		return nil
	}
	exp, ok := token.Expiration()
	if !ok {
		return nil
	}

	if err := m.revoker.Revoke(r.Context(), jti, exp); err != nil {
		return fmt.Errorf("revoke session %s: %w", jti, err)
	}
	return nil
}

// CurrentMember returns nil, nil for anonymous requests, including tampered,
// expired or revoked cookies and members that no longer resolve. An error
// means the session could not be checked at all.
func (m *SessionManager) CurrentMember(
	r *http.Request,
) (*middleware.Identity, error) {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	memberID, jti, err := m.verify(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, core.ErrSessionInvalid) ||
			errors.Is(err, core.ErrSessionRevoked) {
			slog.DebugContext(r.Context(), "discarding session cookie",
				"error", err,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			return nil, nil
		}
		return nil, err
	}

	member, err := m.members.GetByID(r.Context(), memberID)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(r.Context(), "session member no longer exists",
			"member_id", memberID,
			"jti", jti,
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session member: %w", err)
	}

	return &middleware.Identity{
		ID:       member.ID,
		Username: member.Username,
		Name:     member.Name,
		Level:    member.Level,
	}, nil
}

func (m *SessionManager) issue(
	memberID int64,
	now, expires time.Time,
) (string, error) {
	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Subject(strconv.FormatInt(memberID, 10)).
		IssuedAt(now).
		Expiration(expires).
		Claim("type", sessionTokenType).
		Build()
	if err != nil {
		return "", fmt.Errorf("build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return string(signed), nil
}

func (m *SessionManager) parse(value string) (jwt.Token, error) {
	token, err := jwt.Parse(
		[]byte(value),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w: %w", core.ErrSessionInvalid, err)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil ||
		tokenType != sessionTokenType {
		return nil, fmt.Errorf(
			"parse session token: wrong type: %w",
			core.ErrSessionInvalid,
		)
	}

	return token, nil
}

func (m *SessionManager) verify(
	ctx context.Context,
	value string,
) (int64, string, error) {
	token, err := m.parse(value)
	if err != nil {
		return 0, "", err
	}

	subject, ok := token.Subject()
	if !ok {
		return 0, "", fmt.Errorf("missing subject: %w", core.ErrSessionInvalid)
	}
	memberID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || memberID <= 0 {
		return 0, "", fmt.Errorf("bad subject %q: %w", subject, core.ErrSessionInvalid)
	}

	jti, ok := token.JwtID()
	if !ok || jti == "" {
		return 0, "", fmt.Errorf("missing token id: %w", core.ErrSessionInvalid)
	}

	revoked, err := m.revoker.IsRevoked(ctx, jti)
	if err != nil {
		return 0, "", err
	}
	if revoked {
		return 0, "", fmt.Errorf("token %s: %w", jti, core.ErrSessionRevoked)
	}

	return memberID, jti, nil
}

func (m *SessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
