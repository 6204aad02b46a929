package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;size:255" json:"name,omitempty"`
	Username     string    `gorm:"column:username;size:20;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255" json:"-"`
	ImageURL     *string   `gorm:"column:image_url;size:500" json:"image_url,omitempty"`
	Provider     string    `gorm:"column:provider;size:50;not null;default:credentials" json:"provider"`
	ProviderID   *string   `gorm:"column:provider_id;size:255" json:"provider_id,omitempty"`
	Bio          *string   `gorm:"column:bio;type:text" json:"bio,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	Likes []Like `gorm:"foreignKey:UserID" json:"likes,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
