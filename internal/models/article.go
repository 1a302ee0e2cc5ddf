package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article is a blog post shown on the storefront
type Article struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Content     string         `gorm:"not null" json:"content"`
	AuthorID    string         `gorm:"type:varchar(36);not null;index" json:"authorId"`
	Author      *ArticleAuthor `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Category    string         `gorm:"not null;index" json:"category"`
	Tags        []string       `gorm:"type:text;serializer:json" json:"tags"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Published   bool           `gorm:"not null;index" json:"published"`
	PublishDate *time.Time     `json:"publishDate,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ArticleAuthor is the slice of the users table exposed alongside articles.
type ArticleAuthor struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (ArticleAuthor) TableName() string { return "users" }

type ArticleRequest struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Content   string   `json:"content" validate:"required"`
	Category  string   `json:"category" validate:"required,max=64"`
	Tags      []string `json:"tags" validate:"omitempty,dive,max=32"`
	ImageURL  string   `json:"imageUrl"`
	Published bool     `json:"published"`
}

type ArticleFilter struct {
	Category      string
	Published     *bool
	AuthorID      string
	OnlyPublished bool
}
