package services

import (
	"context"
	"fmt"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PurchaseService struct {
	purchases repository.PurchaseRepository
	services  repository.ServiceRepository
	users     repository.UserRepository
}

func NewPurchaseService(repos *repository.Repositories) *PurchaseService {
	return &PurchaseService{
		purchases: repos.Purchases,
		services:  repos.Services,
		users:     repos.Users,
	}
}

// Request records userID's request for serviceID. New purchases are always
// pending; repeated requests for the same service are allowed.
func (s *PurchaseService) Request(ctx context.Context, userID primitive.ObjectID, serviceID string) (*models.Purchase, error) {
	if err := required("serviceId", serviceID); err != nil {
		return nil, err
	}
	svcID, err := parseID(serviceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.services.GetByID(ctx, svcID); err != nil {
		return nil, fmt.Errorf("service %s: %w", serviceID, err)
	}

	purchase := &models.Purchase{
		ServiceID: svcID,
		UserID:    userID,
		Status:    models.StatusPending,
	}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	zap.L().Info("purchase requested",
		zap.String("purchase_id", purchase.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("service_id", serviceID))
	return purchase, nil
}

// ListAll returns every purchase, optionally narrowed to one status, with
// service and user resolved.
func (s *PurchaseService) ListAll(ctx context.Context, status models.PurchaseStatus) ([]models.PurchaseDetail, error) {
	return s.list(ctx, repository.PurchaseFilter{Status: status})
}

// ListForUser returns userID's purchases, optionally narrowed to one status.
func (s *PurchaseService) ListForUser(ctx context.Context, userID primitive.ObjectID, status models.PurchaseStatus) ([]models.PurchaseDetail, error) {
	return s.list(ctx, repository.PurchaseFilter{UserID: userID, Status: status})
}

func (s *PurchaseService) list(ctx context.Context, filter repository.PurchaseFilter) ([]models.PurchaseDetail, error) {
	purchases, err := s.purchases.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return s.resolve(ctx, purchases)
}

func (s *PurchaseService) resolve(ctx context.Context, purchases []models.Purchase) ([]models.PurchaseDetail, error) {
	if len(purchases) == 0 {
		return nil, nil
	}

	var serviceIDs, userIDs []primitive.ObjectID
	for _, p := range purchases {
		serviceIDs = append(serviceIDs, p.ServiceID)
		userIDs = append(userIDs, p.UserID)
	}

	services, err := s.services.ListByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve services: %w", err)
	}
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}

	servicesByID := make(map[primitive.ObjectID]*models.Service, len(services))
	for i := range services {
		servicesByID[services[i].ID] = &services[i]
	}
	usersByID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		usersByID[users[i].ID] = &users[i]
	}

	details := make([]models.PurchaseDetail, 0, len(purchases))
	for _, p := range purchases {
		details = append(details, models.PurchaseDetail{
			Purchase: p,
			Service:  servicesByID[p.ServiceID],
			User:     usersByID[p.UserID],
		})
	}
	return details, nil
}

// UpdateStatus sets a business decision on a purchase. Only confirmed and
// rejected are accepted; the current status is not consulted, so a decision
// can be reversed.
func (s *PurchaseService) UpdateStatus(ctx context.Context, id, status string) (*models.Purchase, error) {
	decision, ok := models.ParseDecision(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.purchases.UpdateStatus(ctx, objID, decision); err != nil {
		return nil, fmt.Errorf("update purchase %s: %w", id, err)
	}

	zap.L().Info("purchase status updated", zap.String("purchase_id", id), zap.String("status", string(decision)))
	return s.purchases.GetByID(ctx, objID)
}

// Cancel deletes a pending purchase owned by userID.
func (s *PurchaseService) Cancel(ctx context.Context, userID primitive.ObjectID, id string) error {
	objID, err := parseID(id)
	if err != nil {
		return err
	}
	purchase, err := s.purchases.GetByID(ctx, objID)
	if err != nil {
		return fmt.Errorf("purchase %s: %w", id, err)
	}
	if purchase.UserID != userID {
		zap.L().Warn("purchase cancel refused",
			zap.String("purchase_id", id),
			zap.String("user_id", userID.Hex()))
		return ErrForbidden
	}
	if purchase.Status != models.StatusPending {
		return ErrNotPending
	}
	if err := s.purchases.Delete(ctx, objID); err != nil {
		return fmt.Errorf("delete purchase %s: %w", id, err)
	}
	return nil
}
