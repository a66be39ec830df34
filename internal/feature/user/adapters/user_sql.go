package adapters

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"

	"user_backend/internal/feature/user/domain/entity"
	"user_backend/internal/feature/user/usecase"
)

// userSQL is a relational implementation of the UserRepository interface.
// It stores each user as a JSON document row so updates keep the same
// arbitrary-field semantics as the document store.
type userSQL struct {
	db *gorm.DB
}

// Compile-time check to ensure userSQL implements UserRepository.
var _ usecase.UserRepository = (*userSQL)(nil)

// NewUserSQL creates a new instance of userSQL.
func NewUserSQL(db *gorm.DB) *userSQL {
	return &userSQL{db: db}
}

// Create stores the user under a freshly generated ObjectID-style ID.
func (r *userSQL) Create(ctx context.Context, u *entity.User) (string, error) {
	const op = "adapters/sql/Create"

	doc, err := encodeDocument(u.Document())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	model := &UserModel{ID: entity.NewID(), Document: doc}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	u.ID = model.ID
	return model.ID, nil
}

// FindAll returns every user in insertion order.
func (r *userSQL) FindAll(ctx context.Context) ([]entity.User, error) {
	const op = "adapters/sql/FindAll"

	var models []UserModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := make([]entity.User, 0, len(models))
	for i := range models {
		u, err := models[i].ToEntity()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// FindByID returns the user with the given ID.
// A malformed ID is reported as usecase.ErrUserNotFound without querying.
func (r *userSQL) FindByID(ctx context.Context, id string) (*entity.User, error) {
	const op = "adapters/sql/FindByID"

	if !entity.IsValidID(id) {
		return nil, usecase.ErrUserNotFound
	}

	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := model.ToEntity()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// UpdateByID merges fields into the stored document.
// Modified is 1 only when the merged document differs from the stored one.
func (r *userSQL) UpdateByID(ctx context.Context, id string, fields map[string]any) (usecase.UpdateResult, error) {
	const op = "adapters/sql/UpdateByID"

	if !entity.IsValidID(id) {
		return usecase.UpdateResult{}, nil
	}

	var res usecase.UpdateResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserModel
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		res.Matched = 1

		current, err := model.decode()
		if err != nil {
			return err
		}
		merged := make(map[string]any, len(current)+len(fields))
		for k, v := range current {
			merged[k] = v
		}
		for k, v := range fields {
			merged[k] = v
		}
		if reflect.DeepEqual(current, merged) {
			return nil
		}

		doc, err := encodeDocument(merged)
		if err != nil {
			return err
		}
		result := tx.Model(&UserModel{}).Where("id = ?", id).Update("document", doc)
		if result.Error != nil {
			return result.Error
		}
		res.Modified = result.RowsAffected
		return nil
	})
	if err != nil {
		return usecase.UpdateResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// DeleteByID removes the matching row. A malformed ID deletes nothing.
func (r *userSQL) DeleteByID(ctx context.Context, id string) (int64, error) {
	const op = "adapters/sql/DeleteByID"

	if !entity.IsValidID(id) {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Delete(&UserModel{}, "id = ?", id)
	if result.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, result.Error)
	}
	return result.RowsAffected, nil
}
