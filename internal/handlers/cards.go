package handlers

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/middleware"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/services"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/session"
)

// CardHandler serves both the card page and the JSON card API.
type CardHandler struct {
	*pages
	cards *services.CardService
}

func NewCardHandler(p *pages, cards *services.CardService) *CardHandler {
	return &CardHandler{pages: p, cards: cards}
}

func cardInput(form url.Values) services.CardInput {
	return services.CardInput{
		CardType:   form.Get("cardType"),
		CardNumber: form.Get("cardNumber"),
		ExpiryDate: form.Get("expiryDate"),
		CardName:   form.Get("cardName"),
	}
}

func (h *CardHandler) Page(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	cards, err := h.cards.List(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, err, "/client/services_search")
		return
	}
	h.render(w, r, http.StatusOK, "client/cards", "Payment cards", cards)
}

func (h *CardHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	form, err := bind(r)
	if err != nil {
		h.fail(w, r, err, "/client/cards")
		return
	}
	user := middleware.CurrentUser(r.Context())
	if _, err := h.cards.Add(r.Context(), user.ID, cardInput(form)); err != nil {
		h.fail(w, r, err, "/client/cards")
		return
	}
	h.flash(w, r, session.FlashSuccess, "Card added")
	redirect(w, r, "/client/cards")
}

func (h *CardHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if err := h.cards.Delete(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err, "/client/cards")
		return
	}
	h.flash(w, r, session.FlashSuccess, "Card removed")
	redirect(w, r, "/client/cards")
}

// The JSON endpoints always answer in JSON, whatever the request encoding.

func (h *CardHandler) jsonError(w http.ResponseWriter, err error) {
	status, msg := classify(err)
	writeJSON(w, status, map[string]string{"message": msg})
}

func (h *CardHandler) AddJSON(w http.ResponseWriter, r *http.Request) {
	form, err := bind(r)
	if err != nil {
		h.jsonError(w, err)
		return
	}
	user := middleware.CurrentUser(r.Context())
	card, err := h.cards.Add(r.Context(), user.ID, cardInput(form))
	if err != nil {
		h.jsonError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *CardHandler) ListJSON(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	cards, err := h.cards.List(r.Context(), user.ID)
	if err != nil {
		h.jsonError(w, err)
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *CardHandler) DeleteJSON(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if err := h.cards.Delete(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		h.jsonError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Card deleted successfully"})
}
