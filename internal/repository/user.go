package repository

import (
	"context"
	"errors"

	"users-service/internal/domain"
)

// ErrDuplicate is matched by store errors caused by the unique (first_name, last_name) constraint.
var ErrDuplicate = errors.New("unique constraint violated")

// UserRepository defines persistence operations for User records.
type UserRepository interface {
	Init(ctx context.Context) error
	Find(ctx context.Context, criteria domain.Criteria) ([]domain.User, error)
	Insert(ctx context.Context, firstName, lastName string) (int64, error)
	// Update and Delete return the number of rows changed, 0 when id does not exist.
	Update(ctx context.Context, id int64, firstName, lastName string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Ping(ctx context.Context) error
}
