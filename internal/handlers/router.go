package handlers

import (
	"io/fs"
	"net/http"
	"strings"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/config"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/metrics"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/middleware"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/services"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/session"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/views"
)

// Deps is everything the HTTP layer is built from.
type Deps struct {
	Config    *config.AppConfig
	Sessions  *session.Manager
	Views     *views.Renderer
	Limiter   *middleware.RateLimiter
	Users     *services.UserService
	Catalog   *services.CatalogService
	Purchases *services.PurchaseService
	Business  *services.BusinessService
	Cards     *services.CardService
}

// bodySlack is allowed on top of the logo size for form fields and
// multipart framing.
const bodySlack = 1 << 20

// NewRouter registers every route with its access policy. Forms reach the
// PUT, PATCH and DELETE routes through a _method field or query parameter.
func NewRouter(d Deps) http.Handler {
	p := &pages{sessions: d.Sessions, views: d.Views}
	guard := middleware.NewGuard(d.Sessions)

	auth := NewAuthHandler(p, d.Users)
	business := NewBusinessHandler(p, d.Catalog, d.Purchases, d.Business, d.Config.Uploads.MaxBytes)
	client := NewClientHandler(p, d.Users, d.Catalog, d.Purchases)
	cards := NewCardHandler(p, d.Cards)

	router := mux.NewRouter()
	router.Use(metrics.Instrument, middleware.AccessLog)

	handle := func(path string, policy middleware.Policy, h http.HandlerFunc, methods ...string) {
		router.Handle(path, guard.Require(policy, h)).Methods(methods...)
	}
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		if d.Limiter == nil {
			return h
		}
		return d.Limiter.Handler(h).ServeHTTP
	}

	// public
	handle("/", middleware.Public, auth.Home, http.MethodGet)
	handle("/register", middleware.Public, auth.RegisterForm, http.MethodGet)
	handle("/register", middleware.Public, limited(auth.Register), http.MethodPost)
	handle("/login", middleware.Public, auth.LoginForm, http.MethodGet)
	handle("/login", middleware.Public, limited(auth.Login), http.MethodPost)
	handle("/logout", middleware.Session, auth.Logout, http.MethodPost)

	// business owner
	handle("/business", middleware.Admin, business.Dashboard, http.MethodGet)
	handle("/business/edit", middleware.Admin, business.EditForm, http.MethodGet)
	handle("/business/edit", middleware.Admin, business.Update, http.MethodPut)
	handle("/business/logo", middleware.Admin, business.UploadLogo, http.MethodPut)
	handle("/business/services_requested", middleware.Admin, business.Requests, http.MethodGet)
	handle("/business/services_requested/{id}", middleware.Admin, business.UpdateStatus, http.MethodPatch)
	handle("/business/services_confirmed", middleware.Admin, business.Confirmed, http.MethodGet)
	handle("/business/services", middleware.Admin, business.Services, http.MethodGet)
	handle("/business/services", middleware.Admin, business.CreateService, http.MethodPost)
	handle("/business/services/{id}/edit", middleware.Admin, business.EditService, http.MethodGet)
	handle("/business/services/{id}", middleware.Admin, business.UpdateService, http.MethodPut)
	handle("/business/services/{id}", middleware.Admin, business.DeleteService, http.MethodDelete)
	handle("/metrics", middleware.Admin, metrics.Handler().ServeHTTP, http.MethodGet)

	// customer
	handle("/client", middleware.Session, client.Dashboard, http.MethodGet)
	handle("/client/services_search", middleware.Session, client.Search, http.MethodGet)
	handle("/client/services_search", middleware.Session, client.Purchase, http.MethodPost)
	handle("/client/services_cancel", middleware.Session, client.CancelList, http.MethodGet)
	handle("/client/services_cancel/{id}", middleware.Session, client.Cancel, http.MethodDelete)
	handle("/client/services_view", middleware.Session, client.View, http.MethodGet)
	handle("/client/receipts_view", middleware.Session, client.Receipts, http.MethodGet)
	handle("/client/notification", middleware.Session, client.Notifications, http.MethodGet)
	handle("/client/notification/{status}", middleware.Session, client.Notifications, http.MethodGet)
	handle("/client/edit", middleware.Session, client.EditForm, http.MethodGet)
	handle("/client/edit", middleware.Session, client.Update, http.MethodPut)
	handle("/client/cards", middleware.Session, cards.Page, http.MethodGet)
	handle("/client/cards", middleware.Session, cards.AddForm, http.MethodPost)
	handle("/client/cards/{id}", middleware.Session, cards.DeleteForm, http.MethodDelete)

	// card API
	handle("/addCard", middleware.Session, cards.AddJSON, http.MethodPost)
	handle("/getCards", middleware.Session, cards.ListJSON, http.MethodPost, http.MethodGet)
	handle("/deleteCard/{id}", middleware.Session, cards.DeleteJSON, http.MethodDelete)

	if d.Config.Uploads.Backend == config.UploadLocal {
		prefix := strings.TrimSuffix(d.Config.Uploads.URLPrefix, "/") + "/"
		router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(filesOnly{http.Dir(d.Config.Uploads.Dir)}))).
			Methods(http.MethodGet, http.MethodHead)
	}

	router.NotFoundHandler = middleware.AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.renderError(w, r, http.StatusNotFound, "Page not found")
	}))

	var h http.Handler = router
	h = middleware.Identify(d.Sessions, d.Users, d.Business)(h)
	h = gorillahandlers.HTTPMethodOverrideHandler(h)
	return limitBody(h, d.Config.Uploads.MaxBytes+bodySlack)
}

func limitBody(next http.Handler, n int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, n)
		}
		next.ServeHTTP(w, r)
	})
}

// filesOnly hides directories so the file server never lists them.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
