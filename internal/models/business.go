package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// BusinessInfo is the single business profile document.
type BusinessInfo struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Address    string             `bson:"address" json:"address"`
	PostalCode string             `bson:"postal_code" json:"postal_code"`
	Email      string             `bson:"email" json:"email"`
	Phone      string             `bson:"phone" json:"phone"`
	Logo       string             `bson:"logo,omitempty" json:"logo,omitempty"`
}

// DefaultBusinessInfo is inserted on first start and shown when the stored
// profile cannot be read.
func DefaultBusinessInfo() BusinessInfo {
	return BusinessInfo{
		Name:       "Business Name",
		Address:    "123 Concordia Street",
		PostalCode: "A1B 2C3",
		Email:      "default.email@domain.com",
		Phone:      "123-456-7890",
	}
}
