package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PurchaseStatus string

const (
	StatusPending   PurchaseStatus = "pending"
	StatusConfirmed PurchaseStatus = "confirmed"
	StatusRejected  PurchaseStatus = "rejected"
)

// ParseDecision accepts only the statuses a business owner can set.
func ParseDecision(s string) (PurchaseStatus, bool) {
	switch PurchaseStatus(s) {
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// Purchase is a customer's request for a service. Service and User hold
// references, not embedded documents.
type Purchase struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ServiceID     primitive.ObjectID `bson:"service" json:"service_id"`
	UserID        primitive.ObjectID `bson:"user" json:"user_id"`
	DatePurchased time.Time          `bson:"date_purchased" json:"date_purchased"`
	Status        PurchaseStatus     `bson:"status" json:"status"`
}

// PurchaseDetail is a purchase with its references resolved. Service or User
// is nil when the referenced document no longer exists.
type PurchaseDetail struct {
	Purchase
	Service *Service `json:"service"`
	User    *User    `json:"user"`
}
