package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/metrics"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/middleware"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/services"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/session"
)

// ClientHandler serves the customer pages; routes require a session.
type ClientHandler struct {
	*pages
	users     *services.UserService
	catalog   *services.CatalogService
	purchases *services.PurchaseService
}

func NewClientHandler(p *pages, users *services.UserService, catalog *services.CatalogService, purchases *services.PurchaseService) *ClientHandler {
	return &ClientHandler{pages: p, users: users, catalog: catalog, purchases: purchases}
}

func (h *ClientHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/client/services_search")
}

// Search lists the whole catalog; finding a service by name is left to the
// page.
func (h *ClientHandler) Search(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.render(w, r, http.StatusOK, "client/search", "Services", list)
}

// Purchase creates a pending request. Any status in the body is ignored.
func (h *ClientHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	form, err := bind(r)
	if err != nil {
		h.fail(w, r, err, "/client/services_search")
		return
	}

	user := middleware.CurrentUser(r.Context())
	purchase, err := h.purchases.Request(r.Context(), user.ID, form.Get("serviceId"))
	if err != nil {
		h.fail(w, r, err, "/client/services_search")
		return
	}
	metrics.RecordPurchase("requested")

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, purchase)
		return
	}
	h.flash(w, r, session.FlashSuccess, "Service requested")
	redirect(w, r, "/client/services_view")
}

func (h *ClientHandler) listOwn(w http.ResponseWriter, r *http.Request, status models.PurchaseStatus, page, title string) {
	user := middleware.CurrentUser(r.Context())
	details, err := h.purchases.ListForUser(r.Context(), user.ID, status)
	if err != nil {
		h.fail(w, r, err, "/client/services_search")
		return
	}
	h.render(w, r, http.StatusOK, page, title, details)
}

func (h *ClientHandler) CancelList(w http.ResponseWriter, r *http.Request) {
	h.listOwn(w, r, models.StatusPending, "client/cancel", "Pending requests")
}

func (h *ClientHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if err := h.purchases.Cancel(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err, "/client/services_cancel")
		return
	}
	metrics.RecordPurchase("cancelled")

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Request cancelled"})
		return
	}
	h.flash(w, r, session.FlashSuccess, "Request cancelled")
	redirect(w, r, "/client/services_cancel")
}

func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
	h.listOwn(w, r, "", "client/view", "My requests")
}

func (h *ClientHandler) Receipts(w http.ResponseWriter, r *http.Request) {
	h.listOwn(w, r, models.StatusConfirmed, "client/receipts", "Receipts")
}

type notificationsPage struct {
	Status    models.PurchaseStatus
	Purchases []models.PurchaseDetail
}

// Notifications lists the user's purchases, optionally narrowed to a
// decided status.
func (h *ClientHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	var status models.PurchaseStatus
	if raw, ok := mux.Vars(r)["status"]; ok {
		decision, valid := models.ParseDecision(raw)
		if !valid {
			h.fail(w, r, services.ErrInvalidStatus, "/client/notification")
			return
		}
		status = decision
	}

	user := middleware.CurrentUser(r.Context())
	details, err := h.purchases.ListForUser(r.Context(), user.ID, status)
	if err != nil {
		h.fail(w, r, err, "/client/services_search")
		return
	}
	h.render(w, r, http.StatusOK, "client/notifications", "Notifications", notificationsPage{Status: status, Purchases: details})
}

func (h *ClientHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "client/edit", "My profile", nil)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	form, err := bind(r)
	if err != nil {
		h.fail(w, r, err, "/client/edit")
		return
	}

	user := middleware.CurrentUser(r.Context())
	err = h.users.UpdateProfile(r.Context(), user.Username, models.Profile{
		FullName:    form.Get("full_name"),
		Email:       form.Get("email"),
		PhoneNumber: form.Get("phone_number"),
	})
	if err != nil {
		h.fail(w, r, err, "/client/edit")
		return
	}
	h.flash(w, r, session.FlashSuccess, "Profile updated")
	redirect(w, r, "/client/edit")
}
