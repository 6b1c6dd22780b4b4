package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- helpers ---

func seeded(t *testing.T) *repository.Repositories {
	t.Helper()
	repos := repository.NewMemory()
	require.NoError(t, NewBootstrap(repos, AdminAccount{Username: "admin", Password: "admin"}).Run(context.Background()))
	return repos
}

func registerCustomer(t *testing.T, repos *repository.Repositories, name string) *models.User {
	t.Helper()
	u, err := NewUserService(repos.Users).Register(context.Background(), RegisterInput{Username: name, Password: "pw"})
	require.NoError(t, err)
	return u
}

type fakeLogos struct {
	saved string
	err   error
}

func (f *fakeLogos) Save(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(body)
	f.saved = string(b)
	return "/uploads/" + name, nil
}

type brokenBusiness struct {
	repository.BusinessRepository
	err error
}

func (b brokenBusiness) Get(context.Context) (*models.BusinessInfo, error) { return nil, b.err }
func (b brokenBusiness) Count(context.Context) (int64, error)              { return 0, b.err }

// pausedBusiness holds Get after the document has been read until release is
// closed.
type pausedBusiness struct {
	repository.BusinessRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (b *pausedBusiness) Get(ctx context.Context) (*models.BusinessInfo, error) {
	info, err := b.BusinessRepository.Get(ctx)
	b.once.Do(func() { close(b.read) })
	<-b.release
	return info, err
}

// --- users ---

func TestRegister_ReservedAdminName(t *testing.T) {
	repos := repository.NewMemory()
	users := NewUserService(repos.Users)

	for _, name := range []string{"admin", "ADMIN", "Admin", " aDmIn "} {
		_, err := users.Register(context.Background(), RegisterInput{Username: name, Password: "pw"})
		assert.ErrorIs(t, err, ErrReservedUsername, name)
	}

	n, err := repos.Users.CountByRole(context.Background(), models.RoleCustomer)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegister_DuplicateAndValidation(t *testing.T) {
	repos := repository.NewMemory()
	users := NewUserService(repos.Users)
	ctx := context.Background()

	u, err := users.Register(ctx, RegisterInput{Username: "bob", Password: "secret", Email: " b@x.io "})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.Equal(t, "b@x.io", u.Email)
	assert.NotEqual(t, "secret", u.PasswordHash)

	_, err = users.Register(ctx, RegisterInput{Username: "bob", Password: "other"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = users.Register(ctx, RegisterInput{Username: "", Password: "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)

	_, err = users.Register(ctx, RegisterInput{Username: "carl"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestAuthenticate(t *testing.T) {
	repos := repository.NewMemory()
	users := NewUserService(repos.Users)
	ctx := context.Background()

	registered := registerCustomer(t, repos, "dana")

	got, err := users.Authenticate(ctx, "dana", "pw")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, got.ID)

	_, err = users.Authenticate(ctx, "dana", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Authenticate(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUnknownRoleIsRefused(t *testing.T) {
	repos := repository.NewMemory()
	users := NewUserService(repos.Users)
	ctx := context.Background()

	hash, err := HashPassword("pw")
	require.NoError(t, err)
	odd := &models.User{Username: "odd", PasswordHash: hash, Role: models.Role("owner")}
	require.NoError(t, repos.Users.Create(ctx, odd))

	_, err = users.Authenticate(ctx, "odd", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.GetUser(ctx, odd.ID.Hex())
	assert.ErrorIs(t, err, ErrForbidden)

	registered := registerCustomer(t, repos, "even")
	got, err := users.GetUser(ctx, registered.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "even", got.Username)
}

func TestUpdateProfile(t *testing.T) {
	repos := repository.NewMemory()
	users := NewUserService(repos.Users)
	u := registerCustomer(t, repos, "erin")

	require.NoError(t, users.UpdateProfile(context.Background(), "erin", models.Profile{FullName: " Erin E ", PhoneNumber: "555"}))

	got, err := users.GetUser(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Erin E", got.FullName)
	assert.Equal(t, "555", got.PhoneNumber)

	_, err = users.GetUser(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- startup ---

func TestBootstrap_Idempotent(t *testing.T) {
	repos := repository.NewMemory()
	boot := NewBootstrap(repos, AdminAccount{Username: "admin", Password: "admin"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, boot.Run(ctx))
	}

	n, err := repos.Business.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	admins, err := repos.Users.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, admins)

	services, err := repos.Services.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 8, services)

	admin, err := NewUserService(repos.Users).Authenticate(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestBootstrap_KeepsExistingCatalog(t *testing.T) {
	repos := repository.NewMemory()
	ctx := context.Background()
	require.NoError(t, repos.Services.Create(ctx, &models.Service{Name: "Only", Price: 1, Description: "d"}))

	require.NoError(t, NewBootstrap(repos, AdminAccount{Username: "admin", Password: "admin"}).Run(ctx))

	n, err := repos.Services.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestBootstrap_StepFailureDoesNotStopOthers(t *testing.T) {
	repos := repository.NewMemory()
	boom := errors.New("db down")
	repos.Business = brokenBusiness{BusinessRepository: repos.Business, err: boom}
	ctx := context.Background()

	err := NewBootstrap(repos, AdminAccount{Username: "admin", Password: "admin"}).Run(ctx)
	require.ErrorIs(t, err, boom)

	admins, err := repos.Users.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, admins)

	n, err := repos.Services.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)
}

// --- catalog ---

func TestCatalog_CRUD(t *testing.T) {
	repos := repository.NewMemory()
	catalog := NewCatalogService(repos.Services)
	ctx := context.Background()

	_, err := catalog.Create(ctx, ServiceInput{Name: "Tutoring", Price: "abc", Description: "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	_, err = catalog.Create(ctx, ServiceInput{Name: "Tutoring", Price: "20"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)

	s, err := catalog.Create(ctx, ServiceInput{Name: "Tutoring", Price: "20.5", Description: "Math"})
	require.NoError(t, err)
	assert.Equal(t, 20.5, s.Price)

	_, err = catalog.Update(ctx, s.ID.Hex(), ServiceInput{Name: "Tutoring+", Price: "25", Description: "Math"})
	require.NoError(t, err)
	got, err := catalog.Get(ctx, s.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Tutoring+", got.Name)

	require.NoError(t, catalog.Delete(ctx, s.ID.Hex()))
	assert.ErrorIs(t, catalog.Delete(ctx, s.ID.Hex()), ErrNotFound)
	_, err = catalog.Update(ctx, "zzz", ServiceInput{Name: "a", Price: "1", Description: "b"})
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- purchases ---

func TestPurchase_RequestAlwaysPending(t *testing.T) {
	repos := seeded(t)
	purchases := NewPurchaseService(repos)
	user := registerCustomer(t, repos, "frank")
	ctx := context.Background()

	list, err := repos.Services.List(ctx)
	require.NoError(t, err)

	p1, err := purchases.Request(ctx, user.ID, list[0].ID.Hex())
	require.NoError(t, err)
	p2, err := purchases.Request(ctx, user.ID, list[0].ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, p1.Status)
	assert.NotEqual(t, p1.ID, p2.ID)

	_, err = purchases.Request(ctx, user.ID, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	details, err := purchases.ListForUser(ctx, user.ID, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.NotNil(t, details[0].Service)
	assert.Equal(t, list[0].Name, details[0].Service.Name)
	require.NotNil(t, details[0].User)
	assert.Equal(t, "frank", details[0].User.Username)
}

func TestPurchase_UpdateStatus(t *testing.T) {
	repos := seeded(t)
	purchases := NewPurchaseService(repos)
	user := registerCustomer(t, repos, "gina")
	ctx := context.Background()

	list, _ := repos.Services.List(ctx)
	p, err := purchases.Request(ctx, user.ID, list[1].ID.Hex())
	require.NoError(t, err)

	for _, bad := range []string{"pending", "done", "", "Confirmed"} {
		_, err := purchases.UpdateStatus(ctx, p.ID.Hex(), bad)
		assert.ErrorIs(t, err, ErrInvalidStatus, bad)
		stored, err := repos.Purchases.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, stored.Status)
	}

	updated, err := purchases.UpdateStatus(ctx, p.ID.Hex(), "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	// decisions can be reversed
	updated, err = purchases.UpdateStatus(ctx, p.ID.Hex(), "rejected")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)

	_, err = purchases.UpdateStatus(ctx, primitive.NewObjectID().Hex(), "confirmed")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := purchases.ListAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
	rejected, err := purchases.ListAll(ctx, models.StatusRejected)
	require.NoError(t, err)
	assert.Len(t, rejected, 1)
}

func TestPurchase_CancelOwnership(t *testing.T) {
	repos := seeded(t)
	purchases := NewPurchaseService(repos)
	owner := registerCustomer(t, repos, "hank")
	intruder := registerCustomer(t, repos, "ivy")
	ctx := context.Background()

	list, _ := repos.Services.List(ctx)
	p, err := purchases.Request(ctx, owner.ID, list[2].ID.Hex())
	require.NoError(t, err)

	assert.ErrorIs(t, purchases.Cancel(ctx, intruder.ID, p.ID.Hex()), ErrForbidden)
	_, err = repos.Purchases.GetByID(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, purchases.Cancel(ctx, owner.ID, p.ID.Hex()))
	_, err = repos.Purchases.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurchase_CancelRequiresPending(t *testing.T) {
	repos := seeded(t)
	purchases := NewPurchaseService(repos)
	owner := registerCustomer(t, repos, "jack")
	ctx := context.Background()

	list, _ := repos.Services.List(ctx)
	p, err := purchases.Request(ctx, owner.ID, list[3].ID.Hex())
	require.NoError(t, err)
	_, err = purchases.UpdateStatus(ctx, p.ID.Hex(), "confirmed")
	require.NoError(t, err)

	assert.ErrorIs(t, purchases.Cancel(ctx, owner.ID, p.ID.Hex()), ErrNotPending)
}

func TestPurchase_DeletedServiceResolvesToNil(t *testing.T) {
	repos := seeded(t)
	purchases := NewPurchaseService(repos)
	owner := registerCustomer(t, repos, "kim")
	ctx := context.Background()

	list, _ := repos.Services.List(ctx)
	_, err := purchases.Request(ctx, owner.ID, list[4].ID.Hex())
	require.NoError(t, err)
	require.NoError(t, repos.Services.Delete(ctx, list[4].ID))

	details, err := purchases.ListForUser(ctx, owner.ID, "")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Nil(t, details[0].Service)
}

// --- business ---

func TestBusiness_CacheAndInvalidation(t *testing.T) {
	repos := seeded(t)
	logos := &fakeLogos{}
	business := NewBusinessService(repos.Business, logos)
	ctx := context.Background()

	assert.Equal(t, "Business Name", business.Current(ctx).Name)

	err := business.Update(ctx, BusinessInput{Name: "Shiny", Address: "1 Road", PostalCode: "H0H 0H0", Email: "s@x.io", Phone: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Shiny", business.Current(ctx).Name)

	path, err := business.UploadLogo(ctx, "logo.png", "image/png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "img", logos.saved)
	assert.Equal(t, path, business.Current(ctx).Logo)
	assert.Equal(t, "Shiny", business.Current(ctx).Name)

	err = business.Update(ctx, BusinessInput{Name: "No address"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "address", verr.Field)
}

func TestBusiness_ReadOverlappingUpdateIsNotCached(t *testing.T) {
	repos := seeded(t)
	paused := &pausedBusiness{BusinessRepository: repos.Business, read: make(chan struct{}), release: make(chan struct{})}
	business := NewBusinessService(paused, &fakeLogos{})
	ctx := context.Background()

	done := make(chan models.BusinessInfo)
	go func() { done <- business.Current(ctx) }()
	<-paused.read

	err := business.Update(ctx, BusinessInput{Name: "New", Address: "1 Road", PostalCode: "H0H 0H0", Email: "n@x.io", Phone: "1"})
	require.NoError(t, err)
	close(paused.release)
	assert.Equal(t, "Business Name", (<-done).Name)

	assert.Equal(t, "New", business.Current(ctx).Name)
}

func TestBusiness_FallbackOnLookupFailure(t *testing.T) {
	repos := repository.NewMemory()
	business := NewBusinessService(brokenBusiness{BusinessRepository: repos.Business, err: errors.New("down")}, &fakeLogos{})

	assert.Equal(t, models.DefaultBusinessInfo(), business.Current(context.Background()))
}

func TestBusiness_LogoStoreFailure(t *testing.T) {
	repos := seeded(t)
	business := NewBusinessService(repos.Business, &fakeLogos{err: errors.New("disk full")})

	_, err := business.UploadLogo(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Empty(t, business.Current(context.Background()).Logo)
}

// --- cards ---

func TestCards(t *testing.T) {
	repos := repository.NewMemory()
	cards := NewCardService(repos.Cards)
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	ctx := context.Background()

	_, err := cards.Add(ctx, owner, CardInput{CardType: "visa"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cardNumber", verr.Field)

	c, err := cards.Add(ctx, owner, CardInput{CardType: "visa", CardNumber: "4111111111111111", ExpiryDate: "12/30", CardName: "Owner"})
	require.NoError(t, err)

	mine, err := cards.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := cards.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	assert.ErrorIs(t, cards.Delete(ctx, other, c.ID.Hex()), ErrForbidden)
	require.NoError(t, cards.Delete(ctx, owner, c.ID.Hex()))
	assert.ErrorIs(t, cards.Delete(ctx, owner, c.ID.Hex()), ErrNotFound)
}
