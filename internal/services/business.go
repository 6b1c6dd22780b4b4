package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/repository"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/storage"
	"go.uber.org/zap"
)

// BusinessService serves the single business profile. Reads go through an
// in-process copy that every write through this service invalidates.
type BusinessService struct {
	business repository.BusinessRepository
	logos    storage.LogoStore

	mu     sync.RWMutex
	cached *models.BusinessInfo
	// generation changes on every invalidation; a read that started before
	// one must not populate the cache.
	generation uint64
}

func NewBusinessService(business repository.BusinessRepository, logos storage.LogoStore) *BusinessService {
	return &BusinessService{business: business, logos: logos}
}

// Current returns the stored profile, or the built-in defaults when it
// cannot be read. It never fails.
func (s *BusinessService) Current(ctx context.Context) models.BusinessInfo {
	s.mu.RLock()
	cached, gen := s.cached, s.generation
	s.mu.RUnlock()
	if cached != nil {
		return *cached
	}

	info, err := s.business.Get(ctx)
	if err != nil {
		zap.L().Warn("business info lookup failed, using defaults", zap.Error(err))
		return models.DefaultBusinessInfo()
	}

	s.mu.Lock()
	if s.generation == gen {
		s.cached = info
	}
	s.mu.Unlock()
	return *info
}

func (s *BusinessService) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.generation++
	s.mu.Unlock()
}

// BusinessInput is the editable part of the profile.
type BusinessInput struct {
	Name       string
	Address    string
	PostalCode string
	Email      string
	Phone      string
}

func (s *BusinessService) Update(ctx context.Context, in BusinessInput) error {
	info := models.BusinessInfo{
		Name:       strings.TrimSpace(in.Name),
		Address:    strings.TrimSpace(in.Address),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
	}
	for _, f := range []struct{ name, value string }{
		{"name", info.Name},
		{"address", info.Address},
		{"postal_code", info.PostalCode},
		{"email", info.Email},
		{"phone", info.Phone},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}

	defer s.invalidate()
	if err := s.business.Upsert(ctx, info); err != nil {
		return fmt.Errorf("update business info: %w", err)
	}
	zap.L().Info("business info updated")
	return nil
}

// UploadLogo stores the image and records its access path on the profile.
func (s *BusinessService) UploadLogo(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	path, err := s.logos.Save(ctx, filename, contentType, body)
	if err != nil {
		return "", fmt.Errorf("store logo: %w", err)
	}

	defer s.invalidate()
	if err := s.business.SetLogo(ctx, path); err != nil {
		return "", fmt.Errorf("record logo path: %w", err)
	}
	zap.L().Info("business logo updated", zap.String("path", path))
	return path, nil
}
