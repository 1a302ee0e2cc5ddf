package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// ArticleService manages storefront blog posts
type ArticleService struct {
	repo repository.ArticleRepository
	now  func() time.Time
	log  *logger.Logger
}

// NewArticleService creates a new article service
func NewArticleService(repo repository.ArticleRepository, log *logger.Logger) *ArticleService {
	return &ArticleService{
		repo: repo,
		now:  time.Now,
		log:  log.With("service", "ArticleService"),
	}
}

// List returns articles matching filter. Callers that are not admins only
// ever see published articles.
func (s *ArticleService) List(ctx context.Context, viewer *models.User, filter models.ArticleFilter) ([]models.Article, error) {
	filter.OnlyPublished = viewer == nil || !viewer.IsAdmin
	articles, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// Get returns one article. Unpublished articles are visible to admins only.
func (s *ArticleService) Get(ctx context.Context, viewer *models.User, id string) (*models.Article, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Published && (viewer == nil || !viewer.IsAdmin) {
		return nil, ErrArticleUnpublished
	}
	return a, nil
}

// Create stores an article written by author.
func (s *ArticleService) Create(ctx context.Context, author *models.User, req models.ArticleRequest) (*models.Article, error) {
	a := &models.Article{AuthorID: author.ID}
	s.apply(a, req)

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.log.Info("article created", "article_id", a.ID, "author_id", author.ID, "published", a.Published)
	return s.get(ctx, a.ID)
}

// Update replaces an article's editable fields. The publish date is set the
// first time the article is published and kept afterwards.
func (s *ArticleService) Update(ctx context.Context, id string, req models.ArticleRequest) (*models.Article, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.apply(a, req)

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	s.log.Info("article updated", "article_id", id, "published", a.Published)
	return s.get(ctx, id)
}

// Delete removes an article.
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	s.log.Info("article deleted", "article_id", id)
	return nil
}

func (s *ArticleService) apply(a *models.Article, req models.ArticleRequest) {
	a.Title = req.Title
	a.Content = req.Content
	a.Category = req.Category
	a.Tags = req.Tags
	if a.Tags == nil {
		a.Tags = []string{}
	}
	a.ImageURL = req.ImageURL
	// Each move from draft to published stamps a new date.
	if req.Published && !a.Published {
		now := s.now()
		a.PublishDate = &now
	}
	a.Published = req.Published
}

func (s *ArticleService) get(ctx context.Context, id string) (*models.Article, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrArticleNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}
