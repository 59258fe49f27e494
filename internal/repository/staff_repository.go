package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admitra/portal-backend/internal/model"
)

var ErrDuplicateEmail = errors.New("staff with this email already exists")

// StaffRepository handles staff account data access.
type StaffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository creates a new StaffRepository.
func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// GetByID retrieves a staff account by ID.
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*model.Staff, error) {
	s := &model.Staff{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at
		 FROM staff WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.Password, &s.Role, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByEmail retrieves a staff account by email.
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	s := &model.Staff{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at
		 FROM staff WHERE email = $1`, email,
	).Scan(&s.ID, &s.Name, &s.Email, &s.Password, &s.Role, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new staff account.
func (r *StaffRepository) Create(ctx context.Context, s *model.Staff) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO staff (name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Email, s.Password, s.Role,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}
