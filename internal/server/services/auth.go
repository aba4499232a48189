// This file implements AuthService, the account-facing facade: credential
// verification, session issuance, password flows, and user administration.
// Token mechanics live in RefreshTokenService.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shepherdhq/memberd/internal/common"
	"github.com/shepherdhq/memberd/internal/logging"
	"github.com/shepherdhq/memberd/internal/server/auth"
	"github.com/shepherdhq/memberd/internal/server/config"
	"github.com/shepherdhq/memberd/internal/server/mail"
	"github.com/shepherdhq/memberd/internal/server/models"
	"github.com/shepherdhq/memberd/internal/server/repositories/repomanager"
)

const resetTokenValidity = time.Hour

// LoginResult is what a successful credential exchange returns.
type LoginResult struct {
	Tokens TokenPair          `json:"tokens"`
	User   models.UserSummary `json:"user"`
	// MustChangePassword tells the client to force a password change
	// before using the rest of the API.
	MustChangePassword bool `json:"mustChangePassword"`
}

// RegisterInput describes a new account. Password is optional; when empty a
// random temporary password is generated and mailed to the user.
type RegisterInput struct {
	Email    string
	Name     string
	Phone    string
	Role     models.Role
	Password string
}

// UpdateUserInput carries the mutable profile fields.
type UpdateUserInput struct {
	Name  string
	Phone string
	Role  models.Role
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *RefreshTokenService
	issuer      *auth.Issuer
	mailer      mail.Mailer
	log         logging.Logger
	bcryptCost  int
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, tokens *RefreshTokenService,
	issuer *auth.Issuer, mailer mail.Mailer, log logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		issuer:      issuer,
		mailer:      mailer,
		log:         log,
		bcryptCost:  cfg.BcryptCost,
	}
}

// Register creates an account. New users start with mustChangePassword set
// so the temporary credential cannot become permanent. The welcome mail is
// best-effort: a mail outage must not lose the account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.UserSummary, error) {
	if input.Email == "" || !input.Role.Valid() {
		return nil, fmt.Errorf("%w: email and a valid role are required", common.ErrInvalidInput)
	}

	password := input.Password
	if password == "" {
		generated, err := common.MakeRandHexString(6)
		if err != nil {
			return nil, fmt.Errorf("%w: error generating password: %w", common.ErrInternal, err)
		}
		password = generated
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: error hashing password: %w", common.ErrInternal, err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{
		Email:              input.Email,
		Name:               input.Name,
		Phone:              input.Phone,
		PasswordHash:       string(hash),
		Role:               input.Role,
		MustChangePassword: true,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("%w: error creating user: %w", common.ErrInternal, err)
	}

	if body, err := mail.WelcomeBody(user.Name, user.Email, password); err == nil {
		if err := s.mailer.Send(ctx, user.Email, user.Name, "Your account is ready", body); err != nil {
			s.log.Warn(ctx, "welcome mail failed", "user_id", user.ID, "error", err)
		}
	}

	summary := user.Summary()
	return &summary, nil
}

// Login verifies the credentials and mints a session. Bad email and bad
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: error finding user: %w", common.ErrInternal, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}

	access, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%w: error issuing access token: %w", common.ErrInternal, err)
	}
	refresh, err := s.tokens.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: error creating refresh token: %w", common.ErrInternal, err)
	}

	return &LoginResult{
		Tokens:             TokenPair{AccessToken: access, RefreshToken: refresh},
		User:               user.Summary(),
		MustChangePassword: user.MustChangePassword,
	}, nil
}

// Refresh rotates the refresh token and returns a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.tokens.Rotate(ctx, refreshToken)
}

// Logout revokes the refresh token. Logging out twice succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

// ChangePassword verifies the current password and stores a new hash. It
// also clears the must-change flag. Existing sessions on other devices stay
// valid: changing a password you know is not an account-recovery event.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		return fmt.Errorf("%w: error finding user: %w", common.ErrInternal, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return common.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%w: error hashing password: %w", common.ErrInternal, err)
	}
	if err := repo.FinishReset(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("%w: error updating password: %w", common.ErrInternal, err)
	}
	return nil
}

// ForgotPassword stores a one-hour reset token and mails it. The response is
// identical whether or not the address belongs to an account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: error finding user: %w", common.ErrInternal, err)
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return fmt.Errorf("%w: error generating reset token: %w", common.ErrInternal, err)
	}
	if err := repo.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenValidity)); err != nil {
		return fmt.Errorf("%w: error storing reset token: %w", common.ErrInternal, err)
	}

	if body, err := mail.ResetBody(user.Name, token); err == nil {
		if err := s.mailer.Send(ctx, user.Email, user.Name, "Password reset", body); err != nil {
			s.log.Warn(ctx, "reset mail failed", "user_id", user.ID, "error", err)
		}
	}
	return nil
}

// ResetPassword consumes a reset token: it sets the new password and kills
// every session the account has. Recovery means the old credential may be
// compromised, so nothing issued under it survives.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		return fmt.Errorf("%w: error finding reset token: %w", common.ErrInternal, err)
	}
	if user.ResetTokenExpires == nil || !user.ResetTokenExpires.After(time.Now()) {
		return common.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%w: error hashing password: %w", common.ErrInternal, err)
	}
	if err := repo.FinishReset(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("%w: error updating password: %w", common.ErrInternal, err)
	}
	return s.tokens.RevokeAllForUser(ctx, user.ID)
}

// ListUsers returns every account, credentials stripped.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	all, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: error listing users: %w", common.ErrInternal, err)
	}
	out := make([]models.UserSummary, 0, len(all))
	for i := range all {
		out = append(out, all[i].Summary())
	}
	return out, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*models.UserSummary, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: error finding user: %w", common.ErrInternal, err)
	}
	summary := user.Summary()
	return &summary, nil
}

func (s *AuthService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*models.UserSummary, error) {
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrInvalidInput, input.Role)
	}
	user, err := s.repomanager.Users(s.db).Update(ctx, &models.User{
		ID:    id,
		Name:  input.Name,
		Phone: input.Phone,
		Role:  input.Role,
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: error updating user: %w", common.ErrInternal, err)
	}
	summary := user.Summary()
	return &summary, nil
}

// DeleteUser removes the account and revokes its sessions. The refresh-token
// rows go with the user via the schema's cascade; the explicit revoke covers
// any copy already read by a concurrent request.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: error deleting user: %w", common.ErrInternal, err)
	}
	return nil
}
