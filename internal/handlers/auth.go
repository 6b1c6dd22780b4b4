package handlers

import (
	"net/http"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/metrics"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/middleware"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/services"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/session"
	"go.uber.org/zap"
)

type AuthHandler struct {
	*pages
	users *services.UserService
}

func NewAuthHandler(p *pages, users *services.UserService) *AuthHandler {
	return &AuthHandler{pages: p, users: users}
}

func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", "Home", nil)
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", "Register", nil)
}

// Register creates a customer account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form, err := bind(r)
	if err != nil {
		h.fail(w, r, err, "/register")
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterInput{
		Username:    form.Get("username"),
		Password:    form.Get("password"),
		FullName:    form.Get("full_name"),
		Email:       form.Get("email"),
		PhoneNumber: form.Get("phone_number"),
	})
	if err != nil {
		h.fail(w, r, err, "/register")
		return
	}
	metrics.RecordRegistration()

	if err := h.sessions.Login(w, r, user.ID.Hex()); err != nil {
		zap.L().Error("failed to start session after registration", zap.Error(err))
		h.flash(w, r, session.FlashSuccess, "Account created, please log in")
		redirect(w, r, "/login")
		return
	}
	h.flash(w, r, session.FlashSuccess, "Welcome, "+user.Username+"!")
	redirect(w, r, "/client/services_search")
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", "Log in", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := bind(r)
	if err != nil {
		h.fail(w, r, err, "/login")
		return
	}

	user, err := h.users.Authenticate(r.Context(), form.Get("username"), form.Get("password"))
	metrics.RecordLogin(err == nil)
	if err != nil {
		h.fail(w, r, err, "/login")
		return
	}

	if err := h.sessions.Login(w, r, user.ID.Hex()); err != nil {
		h.fail(w, r, err, "/login")
		return
	}
	zap.L().Info("user logged in", zap.String("username", user.Username))

	h.flash(w, r, session.FlashSuccess, "Welcome back!")
	if user.IsAdmin() {
		redirect(w, r, "/business")
		return
	}
	redirect(w, r, "/client")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.fail(w, r, err, "/")
		return
	}
	if user := middleware.CurrentUser(r.Context()); user != nil {
		zap.L().Info("user logged out", zap.String("username", user.Username))
	}
	h.flash(w, r, session.FlashSuccess, "Goodbye!")
	redirect(w, r, "/")
}
