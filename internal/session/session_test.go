package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *Manager {
	return NewManager(config.Default().Session)
}

// carry replays the cookies from a previous response on a new request. A
// later Set-Cookie replaces an earlier one of the same name, as in a browser.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	latest := map[string]*http.Cookie{}
	var order []string
	for _, c := range rec.Result().Cookies() {
		if _, seen := latest[c.Name]; !seen {
			order = append(order, c.Name)
		}
		latest[c.Name] = c
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, name := range order {
		req.AddCookie(latest[name])
	}
	return req
}

func TestLoginLogout(t *testing.T) {
	m := newManager()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	assert.Empty(t, m.UserID(req))

	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(rec, req, "abc123"))

	next := carry(rec)
	assert.Equal(t, "abc123", m.UserID(next))

	rec = httptest.NewRecorder()
	require.NoError(t, m.Logout(rec, next))
	assert.Empty(t, m.UserID(carry(rec)))
}

func TestFlashesArePoppedOnce(t *testing.T) {
	m := newManager()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	m.AddFlash(rec, req, FlashError, "bad input")
	m.AddFlash(rec, req, FlashSuccess, "saved")

	next := carry(rec)
	rec = httptest.NewRecorder()
	errs, ok := m.Flashes(rec, next)
	assert.Equal(t, []string{"bad input"}, errs)
	assert.Equal(t, []string{"saved"}, ok)

	errs, ok = m.Flashes(httptest.NewRecorder(), carry(rec))
	assert.Empty(t, errs)
	assert.Empty(t, ok)
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	m := newManager()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: config.Default().Session.Name, Value: "garbage"})

	assert.Empty(t, m.UserID(req))
}
