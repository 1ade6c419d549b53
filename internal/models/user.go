package models

import "time"

// User represents a registered user row in the relational store. Credentials
// are not stored here; they belong to the identity provider's account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID string    `gorm:"size:36;uniqueIndex;not null" json:"account_id"`
	Username  string    `gorm:"size:20;uniqueIndex;not null" json:"username"`
	FullName  string    `gorm:"size:50;not null" json:"full_name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Bio       string    `gorm:"size:160" json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// PostCount is not persisted; computed at query time
	PostCount int64 `gorm:"-" json:"post_count"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// UserSummary is the slice of a user embedded in feed posts.
type UserSummary struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Summary returns the feed-embeddable projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}
