package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemory returns repositories backed by process memory. Documents are
// copied on the way in and out, so callers never share state with the store.
func NewMemory() *Repositories {
	return &Repositories{
		Users:     &memUsers{},
		Services:  &memServices{},
		Purchases: &memPurchases{},
		Business:  &memBusiness{},
		Cards:     &memCards{},
	}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type memUsers struct {
	mu    sync.RWMutex
	users []models.User
}

func (r *memUsers) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *memUsers) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *memUsers) FindByRole(_ context.Context, role models.Role) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Role == role })
}

func (r *memUsers) CountByRole(_ context.Context, role models.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *memUsers) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.User
	for _, u := range r.users {
		if containsID(ids, u.ID) {
			u.PasswordHash = ""
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUsers) UpsertProfile(_ context.Context, username string, profile models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].Username == username {
			r.users[i].FullName = profile.FullName
			r.users[i].Email = profile.Email
			r.users[i].PhoneNumber = profile.PhoneNumber
			return nil
		}
	}
	r.users = append(r.users, models.User{
		ID:          primitive.NewObjectID(),
		Username:    username,
		Role:        models.RoleCustomer,
		FullName:    profile.FullName,
		Email:       profile.Email,
		PhoneNumber: profile.PhoneNumber,
		CreatedAt:   time.Now(),
	})
	return nil
}

type memServices struct {
	mu       sync.RWMutex
	services []models.Service
}

func (r *memServices) Create(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	service.ID = primitive.NewObjectID()
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt
	r.services = append(r.services, *service)
	return nil
}

func (r *memServices) InsertMany(ctx context.Context, services []models.Service) error {
	for i := range services {
		if err := r.Create(ctx, &services[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *memServices) List(_ context.Context) ([]models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.Service(nil), r.services...), nil
}

func (r *memServices) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Service
	for _, s := range r.services {
		if containsID(ids, s.ID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memServices) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.services)), nil
}

func (r *memServices) GetByID(_ context.Context, id primitive.ObjectID) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.services {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memServices) Update(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.services {
		if r.services[i].ID == service.ID {
			service.CreatedAt = r.services[i].CreatedAt
			service.UpdatedAt = time.Now()
			r.services[i] = *service
			return nil
		}
	}
	return ErrNotFound
}

func (r *memServices) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.services {
		if r.services[i].ID == id {
			r.services = append(r.services[:i], r.services[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type memPurchases struct {
	mu        sync.RWMutex
	purchases []models.Purchase
}

func (r *memPurchases) Create(_ context.Context, purchase *models.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	purchase.ID = primitive.NewObjectID()
	if purchase.DatePurchased.IsZero() {
		purchase.DatePurchased = time.Now()
	}
	if purchase.Status == "" {
		purchase.Status = models.StatusPending
	}
	r.purchases = append(r.purchases, *purchase)
	return nil
}

func (r *memPurchases) GetByID(_ context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.purchases {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memPurchases) List(_ context.Context, filter PurchaseFilter) ([]models.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Purchase
	// walk backwards so equal timestamps still come out newest first
	for i := len(r.purchases) - 1; i >= 0; i-- {
		p := r.purchases[i]
		if !filter.UserID.IsZero() && p.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DatePurchased.After(out[j].DatePurchased)
	})
	return out, nil
}

func (r *memPurchases) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.PurchaseStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.purchases {
		if r.purchases[i].ID == id {
			r.purchases[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (r *memPurchases) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.purchases {
		if r.purchases[i].ID == id {
			r.purchases = append(r.purchases[:i], r.purchases[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type memBusiness struct {
	mu   sync.RWMutex
	docs []models.BusinessInfo
}

func (r *memBusiness) Get(_ context.Context) (*models.BusinessInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.docs) == 0 {
		return nil, ErrNotFound
	}
	info := r.docs[0]
	return &info, nil
}

func (r *memBusiness) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.docs)), nil
}

func (r *memBusiness) Insert(_ context.Context, info *models.BusinessInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info.ID = primitive.NewObjectID()
	r.docs = append(r.docs, *info)
	return nil
}

func (r *memBusiness) Upsert(_ context.Context, info models.BusinessInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.docs) == 0 {
		info.ID = primitive.NewObjectID()
		info.Logo = ""
		r.docs = append(r.docs, info)
		return nil
	}
	current := &r.docs[0]
	current.Name = info.Name
	current.Address = info.Address
	current.PostalCode = info.PostalCode
	current.Email = info.Email
	current.Phone = info.Phone
	return nil
}

func (r *memBusiness) SetLogo(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.docs) == 0 {
		r.docs = append(r.docs, models.BusinessInfo{ID: primitive.NewObjectID()})
	}
	r.docs[0].Logo = path
	return nil
}

type memCards struct {
	mu    sync.RWMutex
	cards []models.Card
}

func (r *memCards) Create(_ context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	card.ID = primitive.NewObjectID()
	r.cards = append(r.cards, *card)
	return nil
}

func (r *memCards) GetByID(_ context.Context, id primitive.ObjectID) (*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cards {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memCards) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Card
	for _, c := range r.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCards) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.cards {
		if r.cards[i].ID == id {
			r.cards = append(r.cards[:i], r.cards[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
