package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/session"
	"go.uber.org/zap"
)

// Policy is the access requirement attached to a route.
type Policy int

const (
	Public Policy = iota
	Session
	Admin
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "public"
	case Session:
		return "session"
	case Admin:
		return "admin"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Flasher queues a message for the next page.
type Flasher interface {
	AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string)
}

const restrictedMessage = "Access restricted to business owners only"

// Guard enforces policies using the identity attached by Identify.
type Guard struct {
	flash Flasher
}

func NewGuard(flash Flasher) *Guard {
	return &Guard{flash: flash}
}

// Require wraps next so it only runs when the request satisfies p.
func (g *Guard) Require(p Policy, next http.Handler) http.Handler {
	switch p {
	case Public:
		return next
	case Session:
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CurrentUser(r.Context()) == nil {
				g.flash.AddFlash(w, r, session.FlashError, "You must be logged in to do that")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	case Admin:
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CurrentUser(r.Context()).IsAdmin() {
				zap.L().Warn("admin route refused", zap.String("path", r.URL.Path))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": restrictedMessage})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	panic(fmt.Sprintf("middleware: unknown policy %v", p))
}
