package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/jenca-cloud/users/internal/errors"
	"github.com/jenca-cloud/users/internal/model"
)

// UserRepository is the record store contract shared by both services.
// Records are immutable once created: there is no update operation,
// changing a password means delete and recreate.
type UserRepository interface {
	// Create inserts a record, returning apperrors.ErrUserExists when the
	// email is already taken. Uniqueness is enforced by the primary key,
	// so a concurrent race resolves to exactly one success.
	Create(ctx context.Context, user *model.User) error
	// FindByEmail returns the record for email, or apperrors.ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Delete removes the record for email and returns its snapshot, or
	// apperrors.ErrUserNotFound when absent.
	Delete(ctx context.Context, email string) (*model.User, error)
	// List returns every record in a stable order.
	List(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return err
		}
		return tx.Where("email = ?", email).Delete(&model.User{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0)
	if err := r.db.WithContext(ctx).Order("email").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
