package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixedSession string

func (s fixedSession) UserID(*http.Request) string { return string(s) }

type userMap map[string]*models.User

func (m userMap) GetUser(_ context.Context, id string) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

type staticBusiness models.BusinessInfo

func (b staticBusiness) Current(context.Context) models.BusinessInfo { return models.BusinessInfo(b) }

type recordedFlash struct{ kind, msg string }

type flashSpy struct{ got []recordedFlash }

func (f *flashSpy) AddFlash(_ http.ResponseWriter, _ *http.Request, kind, msg string) {
	f.got = append(f.got, recordedFlash{kind, msg})
}

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentify(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	alice := &models.User{Username: "alice", Role: models.RoleCustomer}
	business := staticBusiness{Name: "Acme"}

	tests := []struct {
		name     string
		session  string
		wantUser *models.User
	}{
		{"anonymous", "", nil},
		{"known user", id, alice},
		{"stale session", primitive.NewObjectID().Hex(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser *models.User
			var gotBusiness models.BusinessInfo
			h := Identify(fixedSession(tt.session), userMap{id: alice}, business)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = CurrentUser(r.Context())
				gotBusiness = Business(r.Context())
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantUser, gotUser)
			assert.Equal(t, "Acme", gotBusiness.Name)
		})
	}
}

func TestBusinessDefaultsWithoutIdentify(t *testing.T) {
	assert.Equal(t, models.DefaultBusinessInfo(), Business(context.Background()))
	assert.Nil(t, CurrentUser(context.Background()))
}

func TestGuard(t *testing.T) {
	customer := &models.User{Username: "c", Role: models.RoleCustomer}
	admin := &models.User{Username: "a", Role: models.RoleAdmin}

	tests := []struct {
		name       string
		policy     Policy
		user       *models.User
		wantStatus int
		wantFlash  bool
	}{
		{"public anonymous", Public, nil, http.StatusOK, false},
		{"session anonymous", Session, nil, http.StatusSeeOther, true},
		{"session customer", Session, customer, http.StatusOK, false},
		{"admin anonymous", Admin, nil, http.StatusForbidden, false},
		{"admin customer", Admin, customer, http.StatusForbidden, false},
		{"admin admin", Admin, admin, http.StatusOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &flashSpy{}
			h := NewGuard(spy).Require(tt.policy, ok())

			req := httptest.NewRequest(http.MethodGet, "/business", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantFlash, len(spy.got) > 0)
			switch rec.Code {
			case http.StatusSeeOther:
				assert.Equal(t, "/login", rec.Header().Get("Location"))
			case http.StatusForbidden:
				var body map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "Access restricted to business owners only", body["message"])
			}
		})
	}
}

func TestGuardUnknownPolicyPanics(t *testing.T) {
	assert.Panics(t, func() { NewGuard(&flashSpy{}).Require(Policy(42), ok()) })
}

func TestRateLimiter(t *testing.T) {
	h := NewRateLimiter(2).Handler(ok())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another port from the same host shares the budget; another host does not
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:6000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	req.RemoteAddr = "10.0.0.2:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	h := NewRateLimiter(0).Handler(ok())
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAccessLogKeepsStatus(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
