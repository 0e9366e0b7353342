package domain

import "time"

// User is a system user. It owns every Contato, Company, Processo and
// Produto it creates.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Password    string    `json:"-"`
	Secret      string    `json:"-"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	IsStaff     bool      `json:"is_staff"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUserRequest carries the fields needed to provision a user.
type NewUserRequest struct {
	Username    string
	Password    string
	IsSuperuser bool
	IsStaff     bool
}
