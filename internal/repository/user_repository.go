package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/database"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	SetRefreshToken(ctx context.Context, id string, token *string) error
	SetResetToken(ctx context.Context, id string, token *string, expires *time.Time) error
	SetPassword(ctx context.Context, id, hash string) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, u *models.User) error {
	return translate(database.Conn(ctx, r.db).Create(u).Error, ErrUserNotFound)
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByUsernameOrEmail returns any user holding either identifier.
func (r *GormUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return r.first(ctx, "username = ? OR email = ?", username, email)
}

func (r *GormUserRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return r.first(ctx, "refresh_token = ?", token)
}

// GetByResetToken returns the user whose reset token matches and has not
// expired at now.
func (r *GormUserRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	u, err := r.first(ctx, "reset_password_token = ?", token)
	if err != nil {
		return nil, err
	}
	if u.ResetPasswordExpires == nil || !u.ResetPasswordExpires.After(now) {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *GormUserRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	return r.update(ctx, id, map[string]interface{}{"refresh_token": token})
}

func (r *GormUserRepository) SetResetToken(ctx context.Context, id string, token *string, expires *time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"reset_password_token":   token,
		"reset_password_expires": expires,
	})
}

func (r *GormUserRepository) SetPassword(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash":          hash,
		"reset_password_token":   nil,
		"reset_password_expires": nil,
		"refresh_token":          nil,
	})
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var u models.User
	if err := database.Conn(ctx, r.db).Where(query, args...).First(&u).Error; err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *GormUserRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := database.Conn(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
