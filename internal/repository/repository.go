// Package repository stores the application's documents. Every collection has a
// MongoDB implementation and an in-memory one used for tests and local runs.
package repository

import (
	"context"
	"errors"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserRepository interface {
	// Create fails with ErrDuplicate when the username is taken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindByRole(ctx context.Context, role models.Role) (*models.User, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	// UpsertProfile writes the profile fields of the user matched by
	// username, inserting a bare document when none matches.
	UpsertProfile(ctx context.Context, username string, profile models.Profile) error
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	InsertMany(ctx context.Context, services []models.Service) error
	List(ctx context.Context) ([]models.Service, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Service, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	Update(ctx context.Context, service *models.Service) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PurchaseFilter narrows purchase listings. Zero fields match everything.
type PurchaseFilter struct {
	UserID primitive.ObjectID
	Status models.PurchaseStatus
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error)
	// List returns matching purchases, newest first.
	List(ctx context.Context, filter PurchaseFilter) ([]models.Purchase, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PurchaseStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type BusinessRepository interface {
	Get(ctx context.Context) (*models.BusinessInfo, error)
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, info *models.BusinessInfo) error
	// Upsert replaces the profile fields of the single document, creating
	// it if the collection is empty. The logo is left untouched.
	Upsert(ctx context.Context, info models.BusinessInfo) error
	SetLogo(ctx context.Context, path string) error
}

type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Card, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Card, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Repositories bundles one implementation of every collection.
type Repositories struct {
	Users     UserRepository
	Services  ServiceRepository
	Purchases PurchaseRepository
	Business  BusinessRepository
	Cards     CardRepository
}
