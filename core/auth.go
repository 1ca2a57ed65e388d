package core

import (
	"context"
	"strings"
	"time"
)

// Role is the privilege level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the public profile of a resident or administrator. It never carries the password hash.
type User struct {
	ID           int64     `json:"id"`
	NamaDepan    string    `json:"namaDepan"`
	NamaBelakang string    `json:"namaBelakang"`
	NomorHp      string    `json:"nomorHp"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterInput carries the profile fields of a new account.
type RegisterInput struct {
	NamaDepan    string
	NamaBelakang string
	NomorHp      string
	Email        string
	Password     string
}

//go:generate mockgen -source=auth.go -destination=auth_mock_test.go -package=core

// AuthService defines authentication behaviour used by the HTTP layer.
type AuthService interface {
	Login(ctx context.Context, email, password string) (AccessCredential, User, error)
	Register(ctx context.Context, in RegisterInput) (User, error)
	RegisterAdmin(ctx context.Context, in RegisterInput) (User, error)
	Logout(ctx context.Context) error
	// CurrentUser returns nil without error when the subject no longer exists.
	CurrentUser(ctx context.Context, subjectID int64) (*User, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
