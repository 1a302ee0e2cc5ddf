package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/database"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

type ArticleRepository interface {
	Create(ctx context.Context, a *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error)
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id string) error
}

type GormArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

func (r *GormArticleRepository) Create(ctx context.Context, a *models.Article) error {
	return translate(database.Conn(ctx, r.db).Omit("Author").Create(a).Error, ErrArticleNotFound)
}

// GetByID loads an article with its author summary.
func (r *GormArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var a models.Article
	if err := database.Conn(ctx, r.db).Preload("Author").First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err, ErrArticleNotFound)
	}
	return &a, nil
}

// List returns matching articles, newest first.
func (r *GormArticleRepository) List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error) {
	q := database.Conn(ctx, r.db).Preload("Author")

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.AuthorID != "" {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	switch {
	case filter.OnlyPublished:
		q = q.Where("published = ?", true)
	case filter.Published != nil:
		q = q.Where("published = ?", *filter.Published)
	}

	articles := make([]models.Article, 0)
	if err := q.Order("created_at DESC").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Update overwrites the editable columns of an article.
func (r *GormArticleRepository) Update(ctx context.Context, a *models.Article) error {
	res := database.Conn(ctx, r.db).
		Model(a).
		Select("title", "content", "category", "tags", "image_url", "published", "publish_date", "updated_at").
		Omit("Author").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func (r *GormArticleRepository) Delete(ctx context.Context, id string) error {
	res := database.Conn(ctx, r.db).Delete(&models.Article{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}
