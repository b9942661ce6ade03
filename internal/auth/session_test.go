// AngelaMos | 2026
// session_test.go

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/member-portal/internal/config"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "test-secret-test-secret-test-secret-0123",
		CookieName: "session",
		FlashName:  "flash",
		TTL:        time.Hour,
		Issuer:     "member-portal-test",
	}
}

func newTestSessions(t *testing.T) (*SessionManager, *fakeMembers, *fakeRevoker) {
	t.Helper()

	members := newFakeMembers(&MemberInfo{
		ID:       7,
		Username: "alice",
		Name:     "Alice",
		Level:    "gold",
	})
	revoker := newFakeRevoker()

	sm, err := NewSessionManager(testSessionConfig(), revoker, members)
	require.NoError(t, err)

	return sm, members, revoker
}

func login(t *testing.T, sm *SessionManager, memberID int64) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Login(rec, memberID))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWith(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestLoginSetsHardenedCookie(t *testing.T) {
	sm, _, _ := newTestSessions(t)

	cookie := login(t, sm, 7)

	assert.Equal(t, "session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.NotContains(t, cookie.Value, "alice")
}

func TestCurrentMemberAfterLogin(t *testing.T) {
	sm, _, _ := newTestSessions(t)
	cookie := login(t, sm, 7)

	me, err := sm.CurrentMember(requestWith(cookie))
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, int64(7), me.ID)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "gold", me.Level)
}

func TestCurrentMemberAnonymous(t *testing.T) {
	sm, _, _ := newTestSessions(t)

	me, err := sm.CurrentMember(requestWith(nil))
	require.NoError(t, err)
	assert.Nil(t, me)
}

func TestCurrentMemberRejectsTamperedCookie(t *testing.T) {
	sm, _, _ := newTestSessions(t)
	cookie := login(t, sm, 7)

	parts := strings.Split(cookie.Value, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := *cookie
	tampered.Value = parts[0] + "." + parts[1] + "." + string(sig)

	me, err := sm.CurrentMember(requestWith(&tampered))
	require.NoError(t, err)
	assert.Nil(t, me)
}

func TestCurrentMemberRejectsForeignKey(t *testing.T) {
	sm, members, revoker := newTestSessions(t)

	otherCfg := testSessionConfig()
	otherCfg.Secret = "another-secret-another-secret-another-se"
	other, err := NewSessionManager(otherCfg, revoker, members)
	require.NoError(t, err)

	me, err := sm.CurrentMember(requestWith(login(t, other, 7)))
	require.NoError(t, err)
	assert.Nil(t, me)
}

func TestCurrentMemberRejectsExpiredSession(t *testing.T) {
	sm, _, _ := newTestSessions(t)
	cookie := login(t, sm, 7)

	sm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	me, err := sm.CurrentMember(requestWith(cookie))
	require.NoError(t, err)
	assert.Nil(t, me)
}

func TestCurrentMemberWhenMemberGone(t *testing.T) {
	sm, members, _ := newTestSessions(t)
	cookie := login(t, sm, 7)
	members.remove(7)

	me, err := sm.CurrentMember(requestWith(cookie))
	require.NoError(t, err)
	assert.Nil(t, me)
}

func TestCurrentMemberSurfacesStoreFailure(t *testing.T) {
	sm, members, _ := newTestSessions(t)
	cookie := login(t, sm, 7)
	members.lookErr = errors.New("db down")

	me, err := sm.CurrentMember(requestWith(cookie))
	assert.Nil(t, me)
	assert.Error(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	sm, _, revoker := newTestSessions(t)
	cookie := login(t, sm, 7)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Logout(rec, requestWith(cookie)))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "session", cleared[0].Name)
	assert.Empty(t, cleared[0].Value)
	assert.Negative(t, cleared[0].MaxAge)
	assert.Len(t, revoker.revoked, 1)

	me, err := sm.CurrentMember(requestWith(cookie))
	require.NoError(t, err)
	assert.Nil(t, me, "a copied cookie must not outlive logout")
}

func TestLogoutWithoutSession(t *testing.T) {
	sm, _, revoker := newTestSessions(t)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Logout(rec, requestWith(nil)))

	assert.Empty(t, revoker.revoked)
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestRevocationStoreFailure(t *testing.T) {
	sm, _, revoker := newTestSessions(t)
	cookie := login(t, sm, 7)
	revoker.err = errors.New("redis down")

	_, err := sm.CurrentMember(requestWith(cookie))
	assert.Error(t, err)

	rec := httptest.NewRecorder()
	err = sm.Logout(rec, requestWith(cookie))
	assert.Error(t, err)
	require.Len(t, rec.Result().Cookies(), 1, "cookie is cleared even when revocation fails")
}

func TestRevokeLeavesCookieAlone(t *testing.T) {
	sm, _, revoker := newTestSessions(t)
	cookie := login(t, sm, 7)

	require.NoError(t, sm.Revoke(requestWith(cookie)))
	assert.Len(t, revoker.revoked, 1)

	require.NoError(t, sm.Revoke(requestWith(nil)))
	assert.Len(t, revoker.revoked, 1)

	me, err := sm.CurrentMember(requestWith(cookie))
	require.NoError(t, err)
	assert.Nil(t, me)
}
