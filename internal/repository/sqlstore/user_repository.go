package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"users-service/internal/domain"
	"users-service/internal/repository"
)

const selectUsers = `
SELECT id, first_name, last_name
FROM users`

type UserRepository struct {
	db *DB

	insertUser string
	updateUser string
	deleteUser string
}

func NewUserRepository(db *DB) repository.UserRepository {
	ph := db.dialect.placeholder

	insert := fmt.Sprintf(`
INSERT INTO users (first_name, last_name)
VALUES (%s, %s)`, ph(1), ph(2))
	if db.dialect.returningID {
		insert += ` RETURNING id`
	}

	return &UserRepository{
		db:         db,
		insertUser: insert,
		updateUser: fmt.Sprintf(`
UPDATE users
SET first_name=%s, last_name=%s
WHERE id=%s`, ph(1), ph(2), ph(3)),
		deleteUser: fmt.Sprintf(`DELETE FROM users WHERE id=%s`, ph(1)),
	}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.db.dialect.createUsers); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Find(ctx context.Context, criteria domain.Criteria) ([]domain.User, error) {
	where, args, err := compileWhere(criteria, r.db.dialect.placeholder)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, selectUsers+where+`
ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

func (r *UserRepository) Insert(ctx context.Context, firstName, lastName string) (int64, error) {
	if r.db.dialect.returningID {
		var id int64
		if err := r.db.QueryRowContext(ctx, r.insertUser, firstName, lastName).Scan(&id); err != nil {
			return 0, r.wrap("insert user", err)
		}
		return id, nil
	}

	res, err := r.db.ExecContext(ctx, r.insertUser, firstName, lastName)
	if err != nil {
		return 0, r.wrap("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	return id, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, firstName, lastName string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.updateUser, firstName, lastName, id)
	if err != nil {
		return 0, r.wrap("update user", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("user update rows affected: %w", err)
	}
	return aff, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.deleteUser, id)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("user delete rows affected: %w", err)
	}
	return aff, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", r.db.Driver(), err)
	}
	return nil
}

func (r *UserRepository) wrap(op string, err error) error {
	if r.db.dialect.isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, repository.ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user      domain.User
		firstName sql.NullString
		lastName  sql.NullString
	)
	if err := row.Scan(&user.ID, &firstName, &lastName); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.FirstName = firstName.String
	user.LastName = lastName.String
	return &user, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
