package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/vedran77/messagely/internal/domain"
)

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, first_name, last_name, phone, join_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		user.Username, user.PasswordHash, user.FirstName, user.LastName,
		user.Phone, user.JoinAt,
	)
	if err != nil {
		return translate(err, "userRepo.Create")
	}
	return nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT username, password_hash, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = $1`

	var u domain.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.JoinAt, &u.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "userRepo.GetByUsername")
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.PublicProfile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT username, first_name, last_name, phone
		FROM users
		ORDER BY username`)
	if err != nil {
		return nil, errors.Wrap(err, "userRepo.List")
	}
	defer rows.Close()

	var users []domain.PublicProfile
	for rows.Next() {
		var p domain.PublicProfile
		if err := rows.Scan(&p.Username, &p.FirstName, &p.LastName, &p.Phone); err != nil {
			return nil, errors.Wrap(err, "userRepo.List.Scan")
		}
		users = append(users, p)
	}
	return users, errors.Wrap(rows.Err(), "userRepo.List.Rows")
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, username string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE username = $2`, at, username)
	if err != nil {
		return false, errors.Wrap(err, "userRepo.UpdateLastLogin")
	}
	return tag.RowsAffected() == 1, nil
}
