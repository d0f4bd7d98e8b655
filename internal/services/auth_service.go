package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carbonova/carbonova-backend/internal/config"
	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
	"github.com/carbonova/carbonova-backend/pkg/apperrors"
	"github.com/carbonova/carbonova-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid email or password. Please check your credentials or sign up for a new account."
	msgEmailNotConfirmed  = "Please check your email and confirm your account before signing in."
)

type authService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	revokedRepo repositories.RevokedTokenRepository
	tokens      TokenIssuer
	cfg         config.AuthConfig
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	revokedRepo repositories.RevokedTokenRepository,
	tokens TokenIssuer,
	cfg config.AuthConfig,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		revokedRepo: revokedRepo,
		tokens:      tokens,
		cfg:         cfg,
	}
}

// SignUp validates the form, stores the user and upserts their profile
func (s *authService) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || fullName == "" {
		return nil, apperrors.Validation("Email and full name are required.")
	}
	if len(req.Password) < s.cfg.MinPasswordLength {
		return nil, apperrors.Validation(fmt.Sprintf("Password must be at least %d characters long.", s.cfg.MinPasswordLength))
	}
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.Validation("Passwords do not match.")
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.New(apperrors.CodeConflict, "An account with this email already exists.", nil)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, internalError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError(err)
	}

	user := &models.User{
		Email:          email,
		Password:       string(hashedPassword),
		Role:           models.RoleUser,
		EmailConfirmed: !s.cfg.RequireEmailConfirmation,
	}
	if s.cfg.RequireEmailConfirmation {
		user.ConfirmationToken = uuid.NewString()
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.New(apperrors.CodeConflict, "An account with this email already exists.", err)
		}
		return nil, internalError(err)
	}

	if err := s.profileRepo.Upsert(ctx, &models.Profile{ID: user.ID, FullName: fullName}); err != nil {
		return nil, internalError(err)
	}

	logger.WithFields(logrus.Fields{
		"user_id":              user.ID.Hex(),
		"confirmation_pending": !user.EmailConfirmed,
	}).Info("User signed up")
	return user, nil
}

// SignIn returns a session for valid credentials
func (s *authService) SignIn(ctx context.Context, req *models.SignInRequest) (*models.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, msgInvalidCredentials, nil)
		}
		return nil, internalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, msgInvalidCredentials, nil)
	}
	if s.cfg.RequireEmailConfirmation && !user.EmailConfirmed {
		return nil, apperrors.New(apperrors.CodeEmailNotConfirmed, msgEmailNotConfirmed, nil)
	}

	token, claims, err := s.tokens.Issue(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, internalError(err)
	}

	return &models.Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user,
	}, nil
}

// SignOut revokes a token id
func (s *authService) SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return apperrors.New(apperrors.CodeUnauthorized, "Not signed in.", nil)
	}
	if err := s.revokedRepo.Revoke(ctx, &models.RevokedToken{ID: tokenID, ExpiresAt: expiresAt}); err != nil {
		return internalError(err)
	}
	return nil
}

// CurrentUser returns the user and profile for userID
func (s *authService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.CurrentUser, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "Not signed in.", nil)
		}
		return nil, internalError(err)
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, internalError(err)
	}
	return &models.CurrentUser{User: user, Profile: profile}, nil
}

// ConfirmEmail consumes a confirmation token
func (s *authService) ConfirmEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.FindByConfirmationToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return lookupError(err, "This confirmation link is invalid or has already been used.")
	}
	if err := s.userRepo.MarkEmailConfirmed(ctx, user.ID); err != nil {
		return internalError(err)
	}
	return nil
}

// IsRevoked reports whether tokenID was signed out
func (s *authService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.revokedRepo.IsRevoked(ctx, tokenID)
}
