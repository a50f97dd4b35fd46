// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a stored account. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	Nickname     string
	Email        *string
	Phone        *string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public view of a User.
type Profile struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile strips credentials from u.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		UserName:  u.UserName,
		Nickname:  u.Nickname,
		Email:     u.Email,
		Phone:     u.Phone,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// ProfilePatch lists the profile fields to change. Nil fields are left alone.
type ProfilePatch struct {
	Nickname *string `json:"nickname" validate:"omitnil,min=1,max=50"`
	Email    *string `json:"email" validate:"omitnil,max=100"`
	Phone    *string `json:"phone" validate:"omitnil,max=20"`
	Avatar   *string `json:"avatar" validate:"omitnil,max=255"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Nickname == nil && p.Email == nil && p.Phone == nil && p.Avatar == nil
}

// Identity is what a valid token proves about its bearer.
type Identity struct {
	OwnerID  string
	Username string
}
