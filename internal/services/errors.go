package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrReservedUsername   = errors.New("this username is reserved")
	ErrUsernameTaken      = errors.New("a user with the given username is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidStatus      = errors.New("invalid status, must be confirmed or rejected")
	ErrForbidden          = errors.New("not allowed")
	ErrNotPending         = errors.New("only pending requests can be cancelled")

	// ErrNotFound is the repository sentinel, re-exported so handlers
	// need not import the storage layer.
	ErrNotFound = repository.ErrNotFound
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// parseID turns a hex identifier into an ObjectID. Malformed identifiers
// cannot name a stored document, so they are reported as not found.
func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return objID, nil
}
