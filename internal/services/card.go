package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CardService struct {
	cards repository.CardRepository
}

func NewCardService(cards repository.CardRepository) *CardService {
	return &CardService{cards: cards}
}

type CardInput struct {
	CardType   string `json:"cardType"`
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CardName   string `json:"cardName"`
}

// Add stores a card for userID. Only presence of each field is checked.
func (s *CardService) Add(ctx context.Context, userID primitive.ObjectID, in CardInput) (*models.Card, error) {
	card := &models.Card{
		UserID:     userID,
		CardType:   strings.TrimSpace(in.CardType),
		CardNumber: strings.TrimSpace(in.CardNumber),
		ExpiryDate: strings.TrimSpace(in.ExpiryDate),
		CardName:   strings.TrimSpace(in.CardName),
	}
	for _, f := range []struct{ name, value string }{
		{"cardType", card.CardType},
		{"cardNumber", card.CardNumber},
		{"expiryDate", card.ExpiryDate},
		{"cardName", card.CardName},
	} {
		if err := required(f.name, f.value); err != nil {
			return nil, err
		}
	}

	if err := s.cards.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

func (s *CardService) List(ctx context.Context, userID primitive.ObjectID) ([]models.Card, error) {
	return s.cards.ListByUser(ctx, userID)
}

// Delete removes one of userID's cards. Cards of other users are refused.
func (s *CardService) Delete(ctx context.Context, userID primitive.ObjectID, id string) error {
	objID, err := parseID(id)
	if err != nil {
		return err
	}
	card, err := s.cards.GetByID(ctx, objID)
	if err != nil {
		return fmt.Errorf("card %s: %w", id, err)
	}
	if card.UserID != userID {
		zap.L().Warn("card delete refused", zap.String("card_id", id), zap.String("user_id", userID.Hex()))
		return ErrForbidden
	}
	if err := s.cards.Delete(ctx, objID); err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	return nil
}
