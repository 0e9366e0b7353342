package postgres

import (
	"context"

	"github.com/boddenberg/office-admin-go/internal/domain"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, password, secret, is_active, is_superuser, is_staff, created_at, updated_at`

func scanUser(row pgx.Row, u *domain.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Password, &u.Secret,
		&u.IsActive, &u.IsSuperuser, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt)
}

func (s *Store) getUserBy(ctx context.Context, op, column, value string) (*domain.User, error) {
	var (
		u     domain.User
		found bool
	)
	err := s.run(ctx, op, func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM system_user WHERE `+column+` = $1`, value)
		var err error
		found, err = getOne(row, func(r pgx.Row) error { return scanUser(r, &u) })
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserBy(ctx, "GetUserByID", "id", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserBy(ctx, "GetUserByUsername", "username", username)
}

func (s *Store) GetUserBySecret(ctx context.Context, secret string) (*domain.User, error) {
	return s.getUserBy(ctx, "GetUserBySecret", "secret", secret)
}

// ListUsers returns users newest first.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.run(ctx, "ListUsers", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM system_user ORDER BY created_at DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		users = users[:0]
		for rows.Next() {
			var u domain.User
			if err := scanUser(rows, &u); err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	return users, err
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	return s.run(ctx, "CreateUser", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `INSERT INTO system_user (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			u.ID, u.Username, u.Password, u.Secret,
			u.IsActive, u.IsSuperuser, u.IsStaff, u.CreatedAt, u.UpdatedAt)
		return err
	})
}

func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	return s.run(ctx, "SetUserActive", func(ctx context.Context) error {
		return s.execOne(ctx, `UPDATE system_user SET is_active = $2, updated_at = now() WHERE id = $1`,
			&domain.ErrNotFound{Resource: "user", ID: id, Message: domain.MsgUserNotFound}, id, active)
	})
}
