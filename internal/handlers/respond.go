package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/middleware"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/services"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/session"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/views"
	"go.uber.org/zap"
)

const genericFailure = "Something went wrong, please try again"

// pages bundles what every HTML handler needs.
type pages struct {
	sessions *session.Manager
	views    *views.Renderer
}

func (p *pages) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	errs, successes := p.sessions.Flashes(w, r)
	pd := views.PageData{
		Title:       title,
		CurrentUser: middleware.CurrentUser(r.Context()),
		Business:    middleware.Business(r.Context()),
		Errors:      errs,
		Successes:   successes,
		Data:        data,
	}

	var buf bytes.Buffer
	if err := p.views.Render(&buf, page, pd); err != nil {
		zap.L().Error("failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, genericFailure, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		zap.L().Debug("failed to write page", zap.String("page", page), zap.Error(err))
	}
}

type errorPage struct {
	Status  int
	Message string
}

func (p *pages) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"message": msg})
		return
	}
	p.render(w, r, status, "error", http.StatusText(status), errorPage{Status: status, Message: msg})
}

func (p *pages) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	p.sessions.AddFlash(w, r, kind, msg)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// fail maps a service error onto the response. User mistakes are flashed and
// sent back to the form at back; missing and forbidden resources get an
// error page; anything else is logged and reported generically.
func (p *pages) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	status, msg := classify(err)
	switch status {
	case http.StatusNotFound, http.StatusForbidden:
		p.renderError(w, r, status, msg)
		return
	case http.StatusInternalServerError:
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"message": msg})
		return
	}
	p.flash(w, r, session.FlashError, msg)
	redirect(w, r, back)
}

func classify(err error) (int, string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, fmt.Sprintf("%s %s", fieldLabel(verr.Field), verr.Message)
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "The requested item was not found"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "You are not allowed to do that"
	case errors.Is(err, services.ErrReservedUsername),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNotPending):
		return http.StatusBadRequest, capitalize(err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	}
	return http.StatusInternalServerError, genericFailure
}

func fieldLabel(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	return capitalize(label)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func wantsJSON(r *http.Request) bool {
	if isJSON(r) {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// bind reads the request body as form values. JSON objects are accepted too;
// their top-level fields are flattened into strings.
func bind(r *http.Request) (url.Values, error) {
	if !isJSON(r) {
		if err := r.ParseForm(); err != nil {
			return nil, &services.ValidationError{Field: "body", Message: "could not be read"}
		}
		return r.Form, nil
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, &services.ValidationError{Field: "body", Message: "is not valid JSON"}
	}
	values := url.Values{}
	for k, v := range body {
		switch v := v.(type) {
		case nil:
		case string:
			values.Set(k, v)
		default:
			values.Set(k, fmt.Sprint(v))
		}
	}
	return values, nil
}
