package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/zero-sllm-auth/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines the persistence operations registration depends on.
// Create assigns ID and CreatedAt and reports a unique-index violation on
// email as ErrDuplicateEmail. GetByEmail returns ErrNotFound when absent.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
