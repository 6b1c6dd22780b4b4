package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// reservedUsername can never be claimed through registration.
const reservedUsername = "admin"

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// RegisterInput is the data collected by the sign-up form.
type RegisterInput struct {
	Username    string
	Password    string
	FullName    string
	Email       string
	PhoneNumber string
}

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates a customer account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := required("username", username); err != nil {
		return nil, err
	}
	if err := required("password", in.Password); err != nil {
		return nil, err
	}
	if strings.EqualFold(username, reservedUsername) {
		return nil, ErrReservedUsername
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.TrimSpace(in.Email),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	zap.L().Info("user registered", zap.String("username", username))
	return user, nil
}

// Authenticate checks a username/password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := checkRole(user); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser by id of type string
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if err := checkRole(user); err != nil {
		return nil, err
	}
	return user, nil
}

// checkRole refuses accounts whose stored role is not one this server knows.
func checkRole(user *models.User) error {
	if user.Role.Valid() {
		return nil
	}
	zap.L().Warn("account has an unknown role", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return fmt.Errorf("user %s: %w", user.Username, ErrForbidden)
}

// UpdateProfile writes the editable profile fields of username's account.
func (s *UserService) UpdateProfile(ctx context.Context, username string, profile models.Profile) error {
	profile.FullName = strings.TrimSpace(profile.FullName)
	profile.Email = strings.TrimSpace(profile.Email)
	profile.PhoneNumber = strings.TrimSpace(profile.PhoneNumber)

	if err := s.users.UpsertProfile(ctx, username, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
