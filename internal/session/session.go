package session

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/config"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// Flash kinds.
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// Manager keeps the login identity and one-shot flash messages in a signed
// cookie.
type Manager struct {
	store sessions.Store
	name  string
}

func NewManager(cfg config.SessionConfig) *Manager {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, name: cfg.Name}
}

// get never fails: a cookie that cannot be decoded yields a fresh session.
func (m *Manager) get(r *http.Request) *sessions.Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		zap.L().Debug("discarding unreadable session cookie", zap.Error(err))
	}
	return sess
}

func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID string) error {
	sess := m.get(r)
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// Logout forgets the identity but keeps the cookie so a flash can follow.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := m.get(r)
	delete(sess.Values, userIDKey)
	return sess.Save(r, w)
}

// UserID returns the logged-in user's id, or "" for anonymous requests.
func (m *Manager) UserID(r *http.Request) string {
	id, _ := m.get(r).Values[userIDKey].(string)
	return id
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sess := m.get(r)
	sess.AddFlash(msg, kind)
	if err := sess.Save(r, w); err != nil {
		zap.L().Error("failed to save flash", zap.Error(err))
	}
}

// Flashes pops every queued message. It writes a cookie, so call it before
// the response body.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) (errs, successes []string) {
	sess := m.get(r)
	errs = toStrings(sess.Flashes(FlashError))
	successes = toStrings(sess.Flashes(FlashSuccess))
	if len(errs)+len(successes) == 0 {
		return nil, nil
	}
	if err := sess.Save(r, w); err != nil {
		zap.L().Error("failed to clear flashes", zap.Error(err))
	}
	return errs, successes
}

func toStrings(values []interface{}) []string {
	var out []string
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
