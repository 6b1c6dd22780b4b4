package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"go.uber.org/zap"
)

// SessionReader exposes the identity stored in the session cookie.
type SessionReader interface {
	UserID(r *http.Request) string
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type BusinessSource interface {
	Current(ctx context.Context) models.BusinessInfo
}

// Identify attaches the session user and the business profile to the request
// context before any route handler runs. A session naming a user that no
// longer exists is treated as anonymous.
func Identify(sessions SessionReader, users UserLookup, business BusinessSource) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithBusiness(r.Context(), business.Current(r.Context()))

			if id := sessions.UserID(r); id != "" {
				user, err := users.GetUser(ctx, id)
				if err != nil {
					zap.L().Debug("session user not resolved", zap.String("user_id", id), zap.Error(err))
				} else {
					ctx = WithUser(ctx, user)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
