package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/shepherdhq/memberd/internal/common"
	"github.com/shepherdhq/memberd/internal/logging"
	"github.com/shepherdhq/memberd/internal/server/auth"
	"github.com/shepherdhq/memberd/internal/server/models"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (nopLogger) With(args ...any) logging.Logger                    { return nopLogger{} }

type sentMail struct {
	To, Subject, Body string
}

type recordMailer struct {
	sent []sentMail
}

func (m *recordMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	m.sent = append(m.sent, sentMail{To: toEmail, Subject: subject, Body: htmlBody})
	return nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func newAuthService(t *testing.T, us ...*models.User) (*AuthService, *fakeRepoManager, *recordMailer, sqlmock.Sqlmock) {
	t.Helper()
	tokens, m, mock := newTokenService(t, us...)
	mailer := &recordMailer{}
	svc := &AuthService{
		db:          tokens.db,
		repomanager: m,
		tokens:      tokens,
		issuer:      auth.NewIssuer([]byte("test-secret"), 15*time.Minute),
		mailer:      mailer,
		log:         nopLogger{},
		bcryptCost:  bcrypt.MinCost,
	}
	return svc, m, mailer, mock
}

func TestRegister_Success(t *testing.T) {
	svc, m, mailer, _ := newAuthService(t)

	summary, err := svc.Register(context.Background(), RegisterInput{
		Email: "new@example.com",
		Name:  "New User",
		Role:  models.RoleCellLeader,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if summary.Email != "new@example.com" || summary.Role != models.RoleCellLeader {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	stored := m.users.rows[summary.ID]
	if !stored.MustChangePassword {
		t.Fatal("new user must be flagged for password change")
	}
	if stored.PasswordHash == "" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Fatalf("password not hashed: %q", stored.PasswordHash)
	}

	if len(mailer.sent) != 1 || mailer.sent[0].To != "new@example.com" {
		t.Fatalf("welcome mail not sent: %+v", mailer.sent)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthService(t, &models.User{ID: "u1", Email: "a@example.com"})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@example.com",
		Role:  models.RoleAdmin,
	})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, _, _, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@example.com",
		Role:  models.Role("JANITOR"),
	})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	user := &models.User{
		ID:           "u1",
		Email:        "a@example.com",
		PasswordHash: mustHash(t, "secret"),
		Role:         models.RoleAdmin,
	}
	svc, _, _, mock := newAuthService(t, user)

	expectTx(mock)
	result, err := svc.Login(context.Background(), "a@example.com", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatal("missing tokens")
	}
	if result.User.ID != "u1" || result.MustChangePassword {
		t.Fatalf("unexpected result: %+v", result)
	}

	claims, err := svc.issuer.Parse(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != models.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLogin_FailuresAreUniform(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@example.com", PasswordHash: mustHash(t, "secret")}
	svc, _, _, _ := newAuthService(t, user)

	_, badPassword := svc.Login(context.Background(), "a@example.com", "wrong")
	_, badEmail := svc.Login(context.Background(), "nobody@example.com", "secret")

	if !errors.Is(badPassword, common.ErrUnauthorized) || !errors.Is(badEmail, common.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for both, got %v / %v", badPassword, badEmail)
	}
	if badPassword.Error() != badEmail.Error() {
		t.Fatal("failure modes must be indistinguishable")
	}
}

func TestLoginThenRefresh(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@example.com", PasswordHash: mustHash(t, "secret"), Role: models.RoleAdmin}
	svc, _, _, mock := newAuthService(t, user)
	ctx := context.Background()

	expectTx(mock)
	result, err := svc.Login(ctx, "a@example.com", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	expectTx(mock)
	pair, err := svc.Refresh(ctx, result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if pair.RefreshToken == result.Tokens.RefreshToken {
		t.Fatal("refresh token not rotated")
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("second Logout error: %v", err)
	}
}

func TestChangePassword_KeepsOtherSessions(t *testing.T) {
	user := &models.User{
		ID:                 "u1",
		Email:              "a@example.com",
		PasswordHash:       mustHash(t, "old"),
		MustChangePassword: true,
	}
	svc, m, _, mock := newAuthService(t, user)
	ctx := context.Background()

	expectTx(mock)
	otherSession, err := svc.tokens.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.ChangePassword(ctx, "u1", "old", "new"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}

	// password change is not account recovery: the other device stays in
	if _, err := svc.tokens.Validate(ctx, otherSession); err != nil {
		t.Fatalf("other session was revoked: %v", err)
	}

	stored := m.users.rows["u1"]
	if stored.MustChangePassword {
		t.Fatal("must-change flag not cleared")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new")) != nil {
		t.Fatal("new password not stored")
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	user := &models.User{ID: "u1", PasswordHash: mustHash(t, "old")}
	svc, _, _, _ := newAuthService(t, user)

	err := svc.ChangePassword(context.Background(), "u1", "not-old", "new")
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	svc, _, mailer, _ := newAuthService(t)

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("want nil for unknown email, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("no mail should be sent for unknown addresses")
	}
}

func TestForgotPassword_StoresTokenAndMails(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@example.com", Name: "Alice"}
	svc, m, mailer, _ := newAuthService(t, user)

	if err := svc.ForgotPassword(context.Background(), "a@example.com"); err != nil {
		t.Fatalf("ForgotPassword error: %v", err)
	}

	stored := m.users.rows["u1"]
	if stored.ResetToken == nil || stored.ResetTokenExpires == nil {
		t.Fatal("reset token not stored")
	}
	if !stored.ResetTokenExpires.After(time.Now().Add(50 * time.Minute)) {
		t.Fatalf("expiry too short: %v", stored.ResetTokenExpires)
	}
	if len(mailer.sent) != 1 || !strings.Contains(mailer.sent[0].Body, *stored.ResetToken) {
		t.Fatal("reset mail missing token")
	}
}

func TestResetPassword_RevokesAllSessions(t *testing.T) {
	token := "reset-tok"
	expires := time.Now().Add(time.Hour)
	user := &models.User{
		ID:                 "u1",
		Email:              "a@example.com",
		PasswordHash:       mustHash(t, "old"),
		ResetToken:         &token,
		ResetTokenExpires:  &expires,
		MustChangePassword: true,
	}
	svc, m, _, mock := newAuthService(t, user)
	ctx := context.Background()

	expectTx(mock)
	session, err := svc.tokens.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.ResetPassword(ctx, token, "brand-new"); err != nil {
		t.Fatalf("ResetPassword error: %v", err)
	}

	// recovery kills every session
	if _, err := svc.tokens.Validate(ctx, session); !errors.Is(err, common.ErrTokenRevoked) {
		t.Fatalf("session survived reset: %v", err)
	}

	stored := m.users.rows["u1"]
	if stored.ResetToken != nil || stored.MustChangePassword {
		t.Fatalf("reset state not cleared: %+v", stored)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brand-new")) != nil {
		t.Fatal("new password not stored")
	}

	// the token is one-shot
	if err := svc.ResetPassword(ctx, token, "again"); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("reused reset token: want ErrUnauthorized, got %v", err)
	}
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	token := "reset-tok"
	expires := time.Now().Add(-time.Minute)
	user := &models.User{ID: "u1", ResetToken: &token, ResetTokenExpires: &expires}
	svc, _, _, _ := newAuthService(t, user)

	err := svc.ResetPassword(context.Background(), token, "new")
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestUserCRUD(t *testing.T) {
	svc, _, _, _ := newAuthService(t,
		&models.User{ID: "u1", Email: "a@example.com", Role: models.RoleAdmin},
		&models.User{ID: "u2", Email: "b@example.com", Role: models.RoleCellLeader},
	)
	ctx := context.Background()

	all, err := svc.ListUsers(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListUsers: %v (%d users)", err, len(all))
	}

	got, err := svc.GetUser(ctx, "u2")
	if err != nil || got.Email != "b@example.com" {
		t.Fatalf("GetUser: %v %+v", err, got)
	}

	updated, err := svc.UpdateUser(ctx, "u2", UpdateUserInput{Name: "Bob", Role: models.RoleZonalCoordinator})
	if err != nil || updated.Role != models.RoleZonalCoordinator {
		t.Fatalf("UpdateUser: %v %+v", err, updated)
	}

	if _, err := svc.UpdateUser(ctx, "u2", UpdateUserInput{Role: models.Role("BOGUS")}); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}

	if err := svc.DeleteUser(ctx, "u2"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := svc.GetUser(ctx, "u2"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteUser_RevokesSessions(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@example.com"}
	svc, _, _, mock := newAuthService(t, user)
	ctx := context.Background()

	expectTx(mock)
	session, err := svc.tokens.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser error: %v", err)
	}
	if _, err := svc.tokens.Validate(ctx, session); !errors.Is(err, common.ErrTokenRevoked) {
		t.Fatalf("session survived delete: %v", err)
	}
}
