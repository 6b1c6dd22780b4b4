package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/repository"
	"go.uber.org/zap"
)

// AdminAccount holds the credentials used when no administrator exists.
type AdminAccount struct {
	Username string
	Password string
}

// Bootstrap prepares an empty database: business profile, administrator and
// sample catalog. Every step is idempotent.
type Bootstrap struct {
	repos *repository.Repositories
	admin AdminAccount
}

func NewBootstrap(repos *repository.Repositories, admin AdminAccount) *Bootstrap {
	return &Bootstrap{repos: repos, admin: admin}
}

// Run executes the steps in order. A failing step is logged and does not stop
// the ones after it; all failures are returned joined.
func (b *Bootstrap) Run(ctx context.Context) error {
	zap.L().Info("running startup scripts")

	var errs []error
	for _, step := range []struct {
		name string
		fn   func(context.Context) error
	}{
		{"business_info", b.ensureBusinessInfo},
		{"admin_account", b.ensureAdmin},
		{"services", b.seedServices},
	} {
		if err := step.fn(ctx); err != nil {
			zap.L().Error("startup step failed", zap.String("step", step.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	zap.L().Info("startup scripts completed", zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

func (b *Bootstrap) ensureBusinessInfo(ctx context.Context) error {
	count, err := b.repos.Business.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		zap.L().Debug("business info already exists")
		return nil
	}

	info := models.DefaultBusinessInfo()
	if err := b.repos.Business.Insert(ctx, &info); err != nil {
		return err
	}
	zap.L().Info("initialized business info with default values")
	return nil
}

// ensureAdmin looks for any administrator by role, not by username. If the
// seeded admin was renamed it still counts.
func (b *Bootstrap) ensureAdmin(ctx context.Context) error {
	_, err := b.repos.Users.FindByRole(ctx, models.RoleAdmin)
	switch {
	case err == nil:
		zap.L().Debug("admin account already exists")
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	hash, err := HashPassword(b.admin.Password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Username:     b.admin.Username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		FullName:     "Admin User",
		Email:        "admin@example.com",
		PhoneNumber:  "1234567890",
	}
	if err := b.repos.Users.Create(ctx, admin); err != nil {
		return err
	}
	zap.L().Info("created default admin account", zap.String("username", admin.Username))
	return nil
}

func (b *Bootstrap) seedServices(ctx context.Context) error {
	count, err := b.repos.Services.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		zap.L().Debug("services already exist, skipping seeding")
		return nil
	}

	catalog := DefaultCatalog()
	if err := b.repos.Services.InsertMany(ctx, catalog); err != nil {
		return err
	}
	zap.L().Info("seeded sample services", zap.Int("count", len(catalog)))
	return nil
}

// DefaultCatalog is the sample catalog inserted into an empty database.
func DefaultCatalog() []models.Service {
	return []models.Service{
		{Name: "Basic Cleaning", Price: 50, Description: "A basic cleaning service for residential spaces."},
		{Name: "Deep Cleaning", Price: 150, Description: "Comprehensive cleaning for residential and commercial spaces."},
		{Name: "Lawn Maintenance", Price: 75, Description: "Regular lawn mowing and trimming services."},
		{Name: "Home Organization", Price: 200, Description: "Organize your home spaces efficiently and aesthetically."},
		{Name: "Carpet Cleaning", Price: 100, Description: "Specialized cleaning for carpets and rugs."},
		{Name: "Pet Grooming", Price: 80, Description: "Complete grooming services for your pets."},
		{Name: "Window Washing", Price: 60, Description: "Professional window washing for homes and offices."},
		{Name: "Moving Assistance", Price: 300, Description: "Help with packing, moving, and setting up your belongings."},
	}
}
