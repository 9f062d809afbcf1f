package service

import (
	"context"
	"errors"
	"fmt"

	"users-service/internal/domain"
	"users-service/internal/repository"
)

var (
	// ErrMissingFields indicates that a name or the target id was not supplied.
	ErrMissingFields = errors.New("missing required fields")
	// ErrMissingID indicates that a delete request carried no usable id.
	ErrMissingID = errors.New("missing user id")
	// ErrNotFound is returned when no user has the requested id.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when the (first name, last name) pair is already taken.
	ErrConflict = errors.New("user already exists")
)

// UserService describes the user record operations exposed over HTTP.
type UserService interface {
	Lookup(ctx context.Context, firstName, lastName string) ([]domain.User, error)
	Create(ctx context.Context, firstName, lastName string) (*domain.User, error)
	Update(ctx context.Context, id int64, firstName, lastName string) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Lookup returns users matching every non-empty name. With no names it returns all users.
func (s *userService) Lookup(ctx context.Context, firstName, lastName string) ([]domain.User, error) {
	var criteria domain.Criteria
	if firstName != "" {
		criteria = criteria.And(domain.FirstNameIs(firstName))
	}
	if lastName != "" {
		criteria = criteria.And(domain.LastNameIs(lastName))
	}

	users, err := s.users.Find(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *userService) Create(ctx context.Context, firstName, lastName string) (*domain.User, error) {
	if firstName == "" || lastName == "" {
		return nil, ErrMissingFields
	}

	id, err := s.users.Insert(ctx, firstName, lastName)
	if err != nil {
		return nil, classify(err)
	}

	return &domain.User{ID: id, FirstName: firstName, LastName: lastName}, nil
}

func (s *userService) Update(ctx context.Context, id int64, firstName, lastName string) (*domain.User, error) {
	if id <= 0 || firstName == "" || lastName == "" {
		return nil, ErrMissingFields
	}

	changed, err := s.users.Update(ctx, id, firstName, lastName)
	if err != nil {
		return nil, classify(err)
	}
	if changed == 0 {
		return nil, ErrNotFound
	}

	return &domain.User{ID: id, FirstName: firstName, LastName: lastName}, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrMissingID
	}

	changed, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if changed == 0 {
		return ErrNotFound
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
