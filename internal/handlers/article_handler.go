package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/auth"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/service"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// ArticleHandler serves the training and nutrition articles.
type ArticleHandler struct {
	articleService *service.ArticleService
	log            *logger.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articleService *service.ArticleService, log *logger.Logger) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		log:            log,
	}
}

type articleListResponse struct {
	Count    int              `json:"count"`
	Articles []models.Article `json:"articles"`
}

type articleResponse struct {
	Message string          `json:"message"`
	Article *models.Article `json:"article"`
}

// ListArticles handles GET /api/articles
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ArticleFilter{
		Category: q.Get("category"),
		AuthorID: q.Get("author"),
	}
	if raw := q.Get("published"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid published parameter", h.log)
			return
		}
		filter.Published = &published
	}

	viewer, _ := auth.UserFromContext(r.Context())
	articles, err := h.articleService.List(r.Context(), viewer, filter)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	WriteJSON(w, http.StatusOK, articleListResponse{Count: len(articles), Articles: articles}, h.log)
}

// GetArticle handles GET /api/articles/{articleId}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.UserFromContext(r.Context())
	article, err := h.articleService.Get(r.Context(), viewer, chi.URLParam(r, "articleId"))
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, article, h.log)
}

// CreateArticle handles POST /api/articles
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	author, ok := currentUser(w, r, h.log)
	if !ok {
		return
	}
	var req models.ArticleRequest
	if !decodeValid(w, r, &req, h.log) {
		return
	}

	article, err := h.articleService.Create(r.Context(), author, req)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusCreated, articleResponse{Message: "Article created successfully", Article: article}, h.log)
}

// UpdateArticle handles PUT /api/articles/{articleId}
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req models.ArticleRequest
	if !decodeValid(w, r, &req, h.log) {
		return
	}

	article, err := h.articleService.Update(r.Context(), chi.URLParam(r, "articleId"), req)
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, articleResponse{Message: "Article updated successfully", Article: article}, h.log)
}

// DeleteArticle handles DELETE /api/articles/{articleId}
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.articleService.Delete(r.Context(), chi.URLParam(r, "articleId")); err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, messageResponse{Message: "Article deleted successfully"}, h.log)
}
