package postgres

import (
	"context"
	"time"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	var createdOn time.Time
	query := `SELECT id, email, first_name, last_name, is_staff, created_on FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsStaff, &createdOn)
	if err != nil {
		return nil, notFound(err)
	}
	u.CreatedOn = createdOn.Format(domain.DateLayout)
	return u, nil
}

func (r *userRepository) UpdateName(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET first_name = $1, last_name = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, u.FirstName, u.LastName, u.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
