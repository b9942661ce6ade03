// AngelaMos | 2026
// flash.go

package web

import (
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/carterperez-dev/templates/member-portal/internal/config"
)

const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

const flashMaxAge = 10 * 60

type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// Flasher keeps one-shot notices in a signed cookie between a redirect and
// the page that follows it.
type Flasher struct {
	store *sessions.CookieStore
	name  string
}

func NewFlasher(cfg config.SessionConfig) *Flasher {
	// Derived so the flash cookie and the session token never share a key.
	key := sha256.Sum256([]byte("flash:" + cfg.Secret))

	store := sessions.NewCookieStore(key[:])
	store.MaxAge(flashMaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.Secure
	store.Options.SameSite = http.SameSiteLaxMode

	return &Flasher{store: store, name: cfg.FlashName}
}

func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, flash Flash) error {
	session, err := f.store.Get(r, f.name)
	if err != nil && session == nil {
		return fmt.Errorf("load flash cookie: %w", err)
	}

	session.AddFlash(flash)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save flash cookie: %w", err)
	}
	return nil
}

// Pop returns and clears the pending flashes. A cookie that fails to decode
// is dropped rather than surfaced.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	session, err := f.store.Get(r, f.name)
	if session == nil {
		slog.WarnContext(r.Context(), "load flash cookie", "error", err)
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}

	if err := session.Save(r, w); err != nil {
		slog.WarnContext(r.Context(), "clear flash cookie", "error", err)
	}

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if fl, ok := v.(Flash); ok {
			flashes = append(flashes, fl)
		}
	}
	return flashes
}

func Success(msg string) Flash { return Flash{Category: FlashSuccess, Message: msg} }
func Danger(msg string) Flash  { return Flash{Category: FlashDanger, Message: msg} }
func Warning(msg string) Flash { return Flash{Category: FlashWarning, Message: msg} }
func Info(msg string) Flash    { return Flash{Category: FlashInfo, Message: msg} }
