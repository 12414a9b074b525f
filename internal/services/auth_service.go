package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/collegehub-edu/portal-service/internal/auth"
	"github.com/collegehub-edu/portal-service/internal/config"
	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
	"github.com/collegehub-edu/portal-service/internal/validator"
)

type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type ResetPasswordRequest = validator.ResetPasswordRequest

// AuthResult is what every successful session operation hands back: a fresh
// access token, the raw refresh token destined for the cookie, and the
// sanitized user.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.SanitizedUser
}

// AuthService orchestrates registration, login, refresh rotation and logout
// against the credential store and the token service.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	Refresh(ctx context.Context, rawRefreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, rawRefreshToken string) error
	Me(ctx context.Context, userID string) (*models.SanitizedUser, error)
	ResetPassword(ctx context.Context, userID string, req *ResetPasswordRequest) error
}

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenService
	cfg       config.AuthConfig
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, tokens *auth.TokenService, cfg config.AuthConfig, logger *slog.Logger, v *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		cfg:       cfg,
		logger:    logger,
		validator: v,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = NormalizeEmail(req.Email)
	if ve := s.validator.Validate(req); ve != nil {
		return nil, NewValidationError(ve.Error())
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	approval, err := s.repo.Approval().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotApproved
		}
		return nil, fmt.Errorf("failed to look up approval: %w", err)
	}
	if approval.Registered() {
		return nil, ErrApprovalConsumed
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleStudent,
		ClassCode:    approval.ClassCode,
		ClassID:      approval.ClassCode,
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	// User creation and the approved -> registered flip are one logical
	// unit; the transaction keeps a failed flip from leaving an orphaned
	// user behind.
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().Create(ctx, user); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrEmailTaken
			}
			return err
		}
		transitioned, err := tx.Approval().MarkRegistered(ctx, req.Email, time.Now().UTC())
		if err != nil {
			return err
		}
		if !transitioned {
			return ErrApprovalConsumed
		}
		return tx.Session().Append(ctx, &models.RefreshSession{
			UserID:    user.ID,
			TokenHash: auth.HashToken(refreshToken),
			ExpiresAt: time.Now().UTC().Add(s.tokens.RefreshTTL()),
		})
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "class_code", user.ClassCode)

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitize(),
	}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	req.Email = NormalizeEmail(req.Email)
	if ve := s.validator.Validate(req); ve != nil {
		return nil, NewValidationError(ve.Error())
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	now := time.Now().UTC()
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Session().PruneExpired(ctx, user.ID, now); err != nil {
			return err
		}
		if err := tx.Session().Append(ctx, &models.RefreshSession{
			UserID:    user.ID,
			TokenHash: auth.HashToken(refreshToken),
			ExpiresAt: now.Add(s.tokens.RefreshTTL()),
		}); err != nil {
			return err
		}
		return tx.Session().Trim(ctx, user.ID, s.cfg.MaxRefreshSessions)
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitize(),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, rawRefreshToken string) (*AuthResult, error) {
	if rawRefreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	claims, err := s.tokens.VerifyRefreshToken(rawRefreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.User().GetByID(ctx, claims.Subject)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	rotatedToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	// Rotation: the conditional remove of the presented token's hash decides
	// the winner of any concurrent exchange of the same token. The loser
	// sees removed == false and fails as revoked.
	now := time.Now().UTC()
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Session().PruneExpired(ctx, user.ID, now); err != nil {
			return err
		}
		removed, err := tx.Session().Remove(ctx, user.ID, auth.HashToken(rawRefreshToken))
		if err != nil {
			return err
		}
		if !removed {
			return ErrRevokedRefreshToken
		}
		if err := tx.Session().Append(ctx, &models.RefreshSession{
			UserID:    user.ID,
			TokenHash: auth.HashToken(rotatedToken),
			ExpiresAt: now.Add(s.tokens.RefreshTTL()),
		}); err != nil {
			return err
		}
		return tx.Session().Trim(ctx, user.ID, s.cfg.MaxRefreshSessions)
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: rotatedToken,
		User:         user.Sanitize(),
	}, nil
}

// Logout is best-effort and idempotent: it removes the matching session when
// the token parses, and reports success either way.
func (s *authService) Logout(ctx context.Context, rawRefreshToken string) error {
	if rawRefreshToken == "" {
		return nil
	}

	claims, err := s.tokens.VerifyRefreshToken(rawRefreshToken)
	if err != nil {
		return nil
	}

	if _, err := s.repo.Session().Remove(ctx, claims.Subject, auth.HashToken(rawRefreshToken)); err != nil {
		s.logger.Warn("failed to remove session on logout", "user_id", claims.Subject, "error", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*models.SanitizedUser, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user.Sanitize(), nil
}

// ResetPassword re-hashes explicitly at the service layer; there is no
// implicit storage-side hashing hook.
func (s *authService) ResetPassword(ctx context.Context, userID string, req *ResetPasswordRequest) error {
	if ve := s.validator.Validate(req); ve != nil {
		return NewValidationError(ve.Error())
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserGone
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return ErrInvalidCredentials
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.User().UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset", "user_id", userID)
	return nil
}
