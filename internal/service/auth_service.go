package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/auth"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/config"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/mailer"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

const resetTokenBytes = 20

// AuthService handles accounts, sessions and account recovery
type AuthService struct {
	users     repository.UserRepository
	issuer    *auth.Issuer
	mailer    mailer.Mailer
	cfg       config.AuthConfig
	publicURL string
	now       func() time.Time
	log       *logger.Logger
}

// NewAuthService creates a new auth service. publicURL is the storefront
// origin used in password reset links.
func NewAuthService(users repository.UserRepository, issuer *auth.Issuer, m mailer.Mailer, cfg config.AuthConfig, publicURL string, log *logger.Logger) *AuthService {
	return &AuthService{
		users:     users,
		issuer:    issuer,
		mailer:    m,
		cfg:       cfg,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
		log:       log.With("service", "AuthService"),
	}
}

// Signup registers a customer account and starts a session.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	u, err := s.register(ctx, req, false)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, u, "User registered successfully")
}

// SignupAdmin registers an admin account when the admin secret matches.
func (s *AuthService) SignupAdmin(ctx context.Context, req models.AdminSignupRequest) (*models.AuthResponse, error) {
	if err := s.CheckAdminSecret(req.AdminSecret); err != nil {
		return nil, err
	}
	u, err := s.register(ctx, req.SignupRequest, true)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, u, "Admin user registered successfully")
}

// CheckAdminSecret rejects admin signups that do not carry the configured
// secret. An empty configured secret disables admin signup.
func (s *AuthService) CheckAdminSecret(secret string) error {
	if s.cfg.AdminSecret == "" || secret != s.cfg.AdminSecret {
		return ErrInvalidAdminSecret
	}
	return nil
}

func (s *AuthService) register(ctx context.Context, req models.SignupRequest, admin bool) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing.Email == email:
		return nil, ErrEmailExists
	case err == nil:
		return nil, ErrUsernameExists
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		IsAdmin:      admin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", "user_id", u.ID, "admin", admin)
	return u, nil
}

// Login authenticates by username, or by email when no username is given,
// and rotates the refresh token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" && email == "" {
		return nil, ErrLoginIdentifier
	}

	var u *models.User
	var err error
	if username != "" {
		u, err = s.users.GetByUsername(ctx, username)
	} else {
		u, err = s.users.GetByEmail(ctx, email)
	}
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, u, "Login successful")
}

// Logout forgets the stored refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrRefreshRequired
	}

	u, err := s.users.GetByRefreshToken(ctx, refreshToken)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup refresh token: %w", err)
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, nil); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// Refresh exchanges the current refresh token for a new pair. A token that
// verifies but is no longer the stored one is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshMissing
	}

	userID, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u.RefreshToken == nil || *u.RefreshToken != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	resp, err := s.startSession(ctx, u, "")
	if err != nil {
		return nil, err
	}
	resp.User = nil
	return resp, nil
}

// ForgotUsername mails the account's username.
func (s *AuthService) ForgotUsername(ctx context.Context, email string) error {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	return s.send(ctx, mailer.Message{
		To:      u.Email,
		Subject: "Your StrivFitness Username",
		Body: "You are receiving this because you (or someone else) requested your username for your StrivFitness account.\n\n" +
			"Your username is: " + u.Username + "\n\n" +
			"If you did not request this, please ignore this email.",
	})
}

// ForgotPassword stores a one-hour reset token and mails the reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := auth.RandomToken(resetTokenBytes)
	if err != nil {
		return err
	}
	expires := s.now().Add(s.cfg.ResetTTL)
	if err := s.users.SetResetToken(ctx, u.ID, &token, &expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	return s.send(ctx, mailer.Message{
		To:      u.Email,
		Subject: "StrivFitness Password Reset",
		Body: "You are receiving this because you (or someone else) requested the reset of the password for your StrivFitness account.\n\n" +
			"Please click on the following link, or paste it into your browser to complete the process:\n\n" +
			s.publicURL + "/reset-password/" + token + "\n\n" +
			"If you did not request this, please ignore this email and your password will remain unchanged.",
	})
}

// ResetPassword sets a new password using a valid reset token. Every
// session of the account ends.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return ErrResetFieldsRequired
	}
	if len(password) < 6 {
		return badRequest("password must be at least 6 characters")
	}

	u, err := s.users.GetByResetToken(ctx, token, s.now())
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("lookup reset token: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}

	s.log.Info("password reset", "user_id", u.ID)
	return nil
}

// Authenticate resolves an access token to its user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.issuer.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) startSession(ctx context.Context, u *models.User, message string) (*models.AuthResponse, error) {
	pair, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, &pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	summary := u.Summary()
	return &models.AuthResponse{
		Message:      message,
		User:         &summary,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNoAccountForEmail
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

func (s *AuthService) send(ctx context.Context, msg mailer.Message) error {
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("failed to send email", "to", msg.To, "subject", msg.Subject, "error", err)
		return newError(errMail, "Error sending email")
	}
	return nil
}

var errMail = errors.New("mail delivery failed")
