package models

import "time"

type User struct {
	ID                 string
	Email              string
	Name               string
	Phone              string
	PasswordHash       string
	Role               Role
	MustChangePassword bool
	ResetToken         *string
	ResetTokenExpires  *time.Time
	CreatedAt          time.Time
}

// Summary is the representation of a user that login and user-listing
// responses expose. Password hashes and reset tokens never leave the server.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Summary strips credentials from a user record.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
