package models

import "time"

// Post represents a feed post. Caption, tags and location are immutable after
// creation; only the relationship rows (likes, saved) change afterwards.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Caption   string    `gorm:"size:500;not null" json:"caption"`
	Tags      []string  `gorm:"serializer:json" json:"tags"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	ImagePath string    `json:"-"`
	Location  string    `gorm:"size:100" json:"location,omitempty"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Likes     []Like    `gorm:"foreignKey:PostID" json:"likes"`
	Saved     []Save    `gorm:"foreignKey:PostID" json:"saved"`
	CreatedAt time.Time `json:"created_at"`
}

// Like is a (user, post) relationship row. The composite unique index is the
// authoritative guard against double-likes.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Save is a (user, post) bookmark row, symmetric to Like.
type Save struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saved_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Save) TableName() string {
	return "saved"
}

// LikedBy reports whether userID appears in the post's like set.
func (p *Post) LikedBy(userID uint) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// SavedBy reports whether userID appears in the post's saved set.
func (p *Post) SavedBy(userID uint) bool {
	for _, s := range p.Saved {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// FeedPage is an ordered window of posts addressed by an offset cursor.
// NextCursor is present exactly when the page came back full.
type FeedPage struct {
	Posts      []Post `json:"posts"`
	NextCursor *int   `json:"next_cursor,omitempty"`
}
