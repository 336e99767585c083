package kebapi

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is used for role-based authorisation of users
type Role string

const (
	// RoleAdmin can do everything, everywhere
	RoleAdmin Role = "Admin"
	// RoleUser is a registered user
	RoleUser Role = "User"
	// RoleEveryone is the anonymous catch-all
	RoleEveryone Role = "Everyone"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleEveryone:
		return true
	default:
		return false
	}
}

// AccountStatus implements soft delete of users
type AccountStatus string

const (
	// AccountStatusActive is a live account
	AccountStatusActive AccountStatus = "Active"
	// AccountStatusInactive is a soft-deleted account
	AccountStatusInactive AccountStatus = "Inactive"
)

// User is the user model. PasswordHash holds the credential hash bundle; it
// is created at registration, never mutated afterwards, and never serialized
// into any outward representation.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64         `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username      string        `bun:"username,notnull,unique" json:"username,omitempty"`
	Name          string        `bun:"name,notnull" json:"name,omitempty"`
	Surname       string        `bun:"surname" json:"surname,omitempty"`
	Email         string        `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string        `bun:"password_hash,notnull" json:"-"`
	Role          Role          `bun:"user_role,notnull" json:"user_role,omitempty"`
	AccountStatus AccountStatus `bun:"account_status,notnull" json:"account_status,omitempty"`
	CreatedAt     *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Venue is the venue model
type Venue struct {
	bun.BaseModel `bun:"table:venues,alias:vn"`
	ID            int64   `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string  `bun:"name,notnull" json:"name,omitempty"`
	GeoLat        float64 `bun:"geo_lat,notnull" json:"geo_lat"`
	GeoLng        float64 `bun:"geo_lng,notnull" json:"geo_lng"`
	Address       string  `bun:"address" json:"address,omitempty"`
	Rating        uint8   `bun:"rating" json:"rating,omitempty"`
	MainMediaPath string  `bun:"main_media_path" json:"main_media_path,omitempty"`
}

// UserFavourite links a user to a favourited venue
type UserFavourite struct {
	bun.BaseModel `bun:"table:user_favourites,alias:fav"`
	UserID        int64      `bun:"user_id,pk" json:"user_id"`
	VenueID       int64      `bun:"venue_id,pk" json:"venue_id"`
	Venue         *Venue     `bun:"rel:belongs-to,join:venue_id=id" json:"venue,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
