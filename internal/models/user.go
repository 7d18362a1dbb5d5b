package models

import (
	"strings"
	"time"
)

// AvatarPaths is one generation of a user's avatar: the three object-store
// keys produced by a single upload. It is a value type — a new upload always
// replaces the whole set, never edits keys in place.
type AvatarPaths struct {
	Original  string `gorm:"column:avatar_original_path;size:256" json:"original,omitempty"`
	Thumbnail string `gorm:"column:avatar_thumbnail_path;size:256" json:"thumbnail,omitempty"`
	Profile   string `gorm:"column:avatar_profile_path;size:256" json:"profile,omitempty"`
}

// Present reports whether this generation exists. The original key is the
// existence witness: thumbnail/profile may be blank on legacy records.
// Blank and absent are treated the same.
func (p AvatarPaths) Present() bool {
	return strings.TrimSpace(p.Original) != ""
}

// Keys returns the non-blank keys in original, thumbnail, profile order
func (p AvatarPaths) Keys() []string {
	var keys []string
	for _, k := range []string{p.Original, p.Thumbnail, p.Profile} {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Country is a reference record users point at
type Country struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"size:64;uniqueIndex;not null" json:"title"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User represents a user profile with an optional avatar generation
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"size:256;uniqueIndex;not null" json:"email"`
	Phone    string `gorm:"size:16;uniqueIndex;not null" json:"phone"`
	Active   bool   `gorm:"not null;default:true" json:"active"`
	AboutMe  string `gorm:"size:2048" json:"about_me,omitempty"`

	CountryID int64   `gorm:"not null;index" json:"country_id"`
	Country   Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`

	City       string `gorm:"size:64" json:"city,omitempty"`
	Experience *int16 `json:"experience,omitempty"`

	Avatar AvatarPaths `gorm:"embedded" json:"avatar,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAvatar reports whether the user currently has an avatar generation
func (u *User) HasAvatar() bool {
	return u.Avatar.Present()
}

// SetAvatar replaces the avatar generation wholesale
func (u *User) SetAvatar(paths AvatarPaths) {
	u.Avatar = paths
}

// ClearAvatar removes the avatar reference entirely
func (u *User) ClearAvatar() {
	u.Avatar = AvatarPaths{}
}
