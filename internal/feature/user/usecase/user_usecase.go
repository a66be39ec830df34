package usecase

import (
	"context"
	"fmt"
	"strings"

	"user_backend/internal/feature/user/domain/entity"
)

// UpdateResult reports how many documents an update matched and actually changed.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// UserRepository abstracts the document store holding users.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create inserts the user and returns the store-assigned ID.
	Create(ctx context.Context, user *entity.User) (string, error)

	// FindAll returns every stored user in the store's natural order.
	// An empty collection yields an empty slice and no error.
	FindAll(ctx context.Context) ([]entity.User, error)

	// FindByID returns the user with the given ID.
	// It returns ErrUserNotFound when the ID is malformed or no user matches.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// UpdateByID sets the given fields on the matching user.
	// A malformed ID matches nothing.
	UpdateByID(ctx context.Context, id string, fields map[string]any) (UpdateResult, error)

	// DeleteByID removes the matching user and returns the number of deleted documents.
	// A malformed ID deletes nothing.
	DeleteByID(ctx context.Context, id string) (int64, error)
}

// UserUsecase provides the CRUD operations on users.
type UserUsecase struct {
	repo UserRepository
}

// NewUserUsecase creates a new UserUsecase with the given repository.
func NewUserUsecase(r UserRepository) *UserUsecase {
	return &UserUsecase{repo: r}
}

// ListUsers returns all users. It never returns a nil slice on success.
func (u *UserUsecase) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := u.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// GetUser returns a single user, or ErrUserNotFound.
func (u *UserUsecase) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return u.repo.FindByID(ctx, id)
}

// CreateUser validates the required fields and stores a new user.
// Values are stored as given; only presence is checked.
func (u *UserUsecase) CreateUser(ctx context.Context, name, email, password string) (string, error) {
	if name == "" || email == "" || password == "" {
		return "", ErrMissingRequiredFields
	}
	id, err := u.repo.Create(ctx, entity.NewUser(name, email, password))
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// UpdateUser sets arbitrary fields on an existing user.
// The values are not re-validated against the creation rules; only the ID is protected.
// ErrUserNotFound is returned only when nothing matched, so an update that leaves the
// document unchanged still succeeds.
func (u *UserUsecase) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return ErrNoDataProvided
	}
	if _, ok := fields[entity.FieldID]; ok {
		return fmt.Errorf("%w: %s", ErrImmutableField, entity.FieldID)
	}
	for name := range fields {
		if !validFieldName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
		}
	}

	res, err := u.repo.UpdateByID(ctx, id, fields)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.Matched == 0 {
		return ErrUserNotFound
	}
	return nil
}

// validFieldName reports whether name is stored as a plain top-level field.
// A document store would read "a.b" as a path into "a" and "$x" as an operator.
func validFieldName(name string) bool {
	return !strings.Contains(name, ".") && !strings.HasPrefix(name, "$")
}

// DeleteUser removes a user. Deleting an absent user yields ErrUserNotFound every time.
func (u *UserUsecase) DeleteUser(ctx context.Context, id string) error {
	n, err := u.repo.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
