package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Card is a payment card record kept for display only; nothing is charged.
// Its JSON names match the fields the card API accepts.
type Card struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user" json:"user"`
	CardType   string             `bson:"card_type" json:"cardType"`
	CardNumber string             `bson:"card_number" json:"cardNumber"`
	ExpiryDate string             `bson:"expiry_date" json:"expiryDate"`
	CardName   string             `bson:"card_name" json:"cardName"`
}

// MaskedNumber keeps the last four digits.
func (c Card) MaskedNumber() string {
	n := strings.ReplaceAll(c.CardNumber, " ", "")
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}
