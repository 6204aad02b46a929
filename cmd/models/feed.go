package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Content      string    `gorm:"column:content;type:text;not null" json:"content"`
	MediaURL     *string   `gorm:"column:media_url;size:500" json:"media_url,omitempty"`
	ParentPostID *string   `gorm:"column:parent_post_id;type:uuid;index" json:"parent_post_id,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;index" json:"created_at"`

	User    *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Likes   []Like `gorm:"foreignKey:PostID" json:"likes,omitempty"`
	Replies []Post `gorm:"foreignKey:ParentPostID" json:"replies,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Like rows are unique per (user, post); liking twice is a no-op at the
// storage layer, not an error.
type Like struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    string    `gorm:"column:post_id;type:uuid;not null;uniqueIndex:idx_likes_user_post" json:"post_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
