package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	DisplayName  string
	Subtitle     string
	Description  string
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the externally visible view of a user. It never carries
// the password hash.
type Profile struct {
	ID          string
	Username    string
	DisplayName string
	Subtitle    string
	Description string
	ImageURL    string
}

func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Subtitle:    u.Subtitle,
		Description: u.Description,
		ImageURL:    u.ImageURL,
	}
}

// ProfilePatch applies a partial update. Nil fields are left untouched.
type ProfilePatch struct {
	DisplayName *string
	Subtitle    *string
	Description *string
	ImageURL    *string
}

func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.Subtitle == nil && p.Description == nil && p.ImageURL == nil
}

type CreateParams struct {
	ID           string
	Username     string
	PasswordHash string
	DisplayName  string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*User, error)
}
