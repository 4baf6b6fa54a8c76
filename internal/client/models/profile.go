package models

import "strings"

// ProfilePhoto is a binary image payload with its mime type.
type ProfilePhoto struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mimeType"`
}

// UserProfile is a user's public identity. A missing profile means the
// user has not onboarded yet.
type UserProfile struct {
	Name    string        `json:"name"`
	College string        `json:"college"`
	Photo   *ProfilePhoto `json:"photo,omitempty"`
}

// Trimmed returns p with name and college trimmed.
func (p UserProfile) Trimmed() UserProfile {
	p.Name = strings.TrimSpace(p.Name)
	p.College = strings.TrimSpace(p.College)
	return p
}

// UserRole is the access role the service assigns to an identity.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// ExtendedUserProfile is a user directory row.
type ExtendedUserProfile struct {
	Identity string      `json:"principal"`
	Profile  UserProfile `json:"profile"`
	Role     UserRole    `json:"role"`
}
