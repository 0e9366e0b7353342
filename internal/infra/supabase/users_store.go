package supabase

import (
	"context"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"
)

// ============================================================
// Users (system_user)
// ============================================================

// userRow maps system_user columns, including the credential columns
// domain.User keeps out of its JSON.
type userRow struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	Secret      string    `json:"secret"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	IsStaff     bool      `json:"is_staff"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:          r.ID,
		Username:    r.Username,
		Password:    r.Password,
		Secret:      r.Secret,
		IsActive:    r.IsActive,
		IsSuperuser: r.IsSuperuser,
		IsStaff:     r.IsStaff,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (c *Client) getUserBy(ctx context.Context, op, column, value string) (*domain.User, error) {
	var user *domain.User
	err := c.call(ctx, op, func(ctx context.Context) error {
		body, err := c.doGet(ctx, "system_user?"+column+"="+eq(value)+"&limit=1")
		if err != nil {
			return err
		}
		row, err := decodeFirst[userRow](body)
		if err != nil || row == nil {
			return err
		}
		user = row.toDomain()
		return nil
	})
	return user, err
}

func (c *Client) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return c.getUserBy(ctx, "GetUserByID", "id", id)
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return c.getUserBy(ctx, "GetUserByUsername", "username", username)
}

func (c *Client) GetUserBySecret(ctx context.Context, secret string) (*domain.User, error) {
	return c.getUserBy(ctx, "GetUserBySecret", "secret", secret)
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := c.call(ctx, "ListUsers", func(ctx context.Context) error {
		body, err := c.doGet(ctx, "system_user?order=created_at.desc")
		if err != nil {
			return err
		}
		rows, err := decodeList[userRow](body)
		if err != nil {
			return err
		}
		users = make([]domain.User, 0, len(rows))
		for i := range rows {
			users = append(users, *rows[i].toDomain())
		}
		return nil
	})
	return users, err
}

func (c *Client) CreateUser(ctx context.Context, u *domain.User) error {
	row := userRow{
		ID:          u.ID,
		Username:    u.Username,
		Password:    u.Password,
		Secret:      u.Secret,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		IsStaff:     u.IsStaff,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	return c.call(ctx, "CreateUser", func(ctx context.Context) error {
		_, err := c.doPost(ctx, "system_user", row)
		return err
	})
}

func (c *Client) SetUserActive(ctx context.Context, id string, active bool) error {
	patch := map[string]any{"is_active": active, "updated_at": time.Now().UTC()}
	return c.call(ctx, "SetUserActive", func(ctx context.Context) error {
		body, err := c.doPatch(ctx, "system_user?id="+eq(id), patch)
		if err != nil {
			return err
		}
		return expectRow(body, &domain.ErrNotFound{Resource: "user", ID: id, Message: domain.MsgUserNotFound})
	})
}
