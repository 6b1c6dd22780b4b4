package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/metrics"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/services"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/session"
	"go.uber.org/zap"
)

// BusinessHandler serves the owner-side pages. Every route is registered
// behind the Admin policy.
type BusinessHandler struct {
	*pages
	catalog   *services.CatalogService
	purchases *services.PurchaseService
	business  *services.BusinessService
	maxLogo   int64
}

func NewBusinessHandler(p *pages, catalog *services.CatalogService, purchases *services.PurchaseService, business *services.BusinessService, maxLogo int64) *BusinessHandler {
	return &BusinessHandler{
		pages:     p,
		catalog:   catalog,
		purchases: purchases,
		business:  business,
		maxLogo:   maxLogo,
	}
}

func (h *BusinessHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/business/services_requested")
}

func (h *BusinessHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "business/edit", "Business profile", h.business.Current(r.Context()))
}

func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	form, err := bind(r)
	if err != nil {
		h.fail(w, r, err, "/business/edit")
		return
	}
	err = h.business.Update(r.Context(), services.BusinessInput{
		Name:       form.Get("name"),
		Address:    form.Get("address"),
		PostalCode: form.Get("postal_code"),
		Email:      form.Get("email"),
		Phone:      form.Get("phone"),
	})
	if err != nil {
		h.fail(w, r, err, "/business/edit")
		return
	}
	h.flash(w, r, session.FlashSuccess, "Business information updated")
	redirect(w, r, "/business/edit")
}

// UploadLogo answers in plain text.
func (h *BusinessHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("logo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if h.maxLogo > 0 && header.Size > h.maxLogo {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		http.Error(w, "Only image files are allowed", http.StatusBadRequest)
		return
	}

	if _, err := h.business.UploadLogo(r.Context(), header.Filename, contentType, file); err != nil {
		zap.L().Error("logo upload failed", zap.String("filename", header.Filename), zap.Error(err))
		http.Error(w, "Error uploading logo", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Logo uploaded successfully"))
}

func (h *BusinessHandler) Requests(w http.ResponseWriter, r *http.Request) {
	details, err := h.purchases.ListAll(r.Context(), "")
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.render(w, r, http.StatusOK, "business/requests", "Service requests", details)
}

func (h *BusinessHandler) Confirmed(w http.ResponseWriter, r *http.Request) {
	details, err := h.purchases.ListAll(r.Context(), models.StatusConfirmed)
	if err != nil {
		h.fail(w, r, err, "/business/services_requested")
		return
	}
	h.render(w, r, http.StatusOK, "business/confirmed", "Confirmed services", details)
}

func (h *BusinessHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	form, err := bind(r)
	if err != nil {
		h.fail(w, r, err, "/business/services_requested")
		return
	}

	purchase, err := h.purchases.UpdateStatus(r.Context(), mux.Vars(r)["id"], form.Get("status"))
	if err != nil {
		h.fail(w, r, err, "/business/services_requested")
		return
	}
	metrics.RecordPurchase(string(purchase.Status))

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, purchase)
		return
	}
	h.flash(w, r, session.FlashSuccess, "Request marked as "+string(purchase.Status))
	redirect(w, r, "/business/services_requested")
}

func (h *BusinessHandler) Services(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "/business/services_requested")
		return
	}
	h.render(w, r, http.StatusOK, "business/services", "Services", list)
}

func serviceInput(r *http.Request) (services.ServiceInput, error) {
	form, err := bind(r)
	if err != nil {
		return services.ServiceInput{}, err
	}
	return services.ServiceInput{
		Name:        form.Get("name"),
		Price:       form.Get("price"),
		Description: form.Get("description"),
	}, nil
}

func (h *BusinessHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	in, err := serviceInput(r)
	if err != nil {
		h.fail(w, r, err, "/business/services")
		return
	}
	service, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "/business/services")
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, service)
		return
	}
	h.flash(w, r, session.FlashSuccess, "Service "+service.Name+" added")
	redirect(w, r, "/business/services")
}

func (h *BusinessHandler) EditService(w http.ResponseWriter, r *http.Request) {
	service, err := h.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err, "/business/services")
		return
	}
	h.render(w, r, http.StatusOK, "business/service_edit", "Edit "+service.Name, service)
}

func (h *BusinessHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	in, err := serviceInput(r)
	if err != nil {
		h.fail(w, r, err, "/business/services/"+id+"/edit")
		return
	}
	service, err := h.catalog.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err, "/business/services/"+id+"/edit")
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, service)
		return
	}
	h.flash(w, r, session.FlashSuccess, "Service updated")
	redirect(w, r, "/business/services")
}

func (h *BusinessHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err, "/business/services")
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Service deleted"})
		return
	}
	h.flash(w, r, session.FlashSuccess, "Service deleted")
	redirect(w, r, "/business/services")
}
