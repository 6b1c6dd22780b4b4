package middleware

import (
	"context"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
)

type ctxKey int

const (
	userKey ctxKey = iota
	businessKey
)

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func WithBusiness(ctx context.Context, info models.BusinessInfo) context.Context {
	return context.WithValue(ctx, businessKey, info)
}

// Business returns the profile attached by Identify, falling back to the
// defaults when the request never passed through it.
func Business(ctx context.Context) models.BusinessInfo {
	if info, ok := ctx.Value(businessKey).(models.BusinessInfo); ok {
		return info
	}
	return models.DefaultBusinessInfo()
}
