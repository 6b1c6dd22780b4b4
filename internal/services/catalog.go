package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/repository"
	"go.uber.org/zap"
)

// CatalogService manages the business's service offerings.
type CatalogService struct {
	services repository.ServiceRepository
}

func NewCatalogService(services repository.ServiceRepository) *CatalogService {
	return &CatalogService{services: services}
}

// ServiceInput carries form values; Price is parsed here so the handler can
// pass it through untouched.
type ServiceInput struct {
	Name        string
	Price       string
	Description string
}

func (in ServiceInput) toModel() (models.Service, error) {
	s := models.Service{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if err := required("name", s.Name); err != nil {
		return s, err
	}
	if err := required("price", in.Price); err != nil {
		return s, err
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil || price < 0 {
		return s, &ValidationError{Field: "price", Message: "must be a non-negative number"}
	}
	s.Price = price
	if err := required("description", s.Description); err != nil {
		return s, err
	}
	return s, nil
}

func (s *CatalogService) List(ctx context.Context) ([]models.Service, error) {
	return s.services.List(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.services.GetByID(ctx, objID)
}

func (s *CatalogService) Create(ctx context.Context, in ServiceInput) (*models.Service, error) {
	service, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.services.Create(ctx, &service); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	zap.L().Info("service created", zap.String("id", service.ID.Hex()), zap.String("name", service.Name))
	return &service, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, in ServiceInput) (*models.Service, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	service, err := in.toModel()
	if err != nil {
		return nil, err
	}
	service.ID = objID
	if err := s.services.Update(ctx, &service); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return &service, nil
}

// Delete removes a service. Purchases that reference it keep the dangling
// reference and render as a removed service.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	objID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.services.Delete(ctx, objID); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	zap.L().Info("service deleted", zap.String("id", id))
	return nil
}
