package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"codearena/internal/domain"
)

var errSenderDown = errors.New("sender down")

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(string) bool { return true }

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func newUserServiceForTest(sender *mockSender, limiter OTPRateLimiter) (*UserService, *mockUserRepo) {
	users := newMockUserRepo()
	if limiter == nil {
		limiter = allowAllLimiter{}
	}
	return NewUserService(zap.NewNop(), users, sender, limiter), users
}

func TestUserService_CreateUserDefaultsToStudent(t *testing.T) {
	svc, _ := newUserServiceForTest(&mockSender{}, nil)
	user, err := svc.CreateUser(context.Background(), CreateUserInput{Email: " Alguien@Colegio.EDU "})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "alguien@colegio.edu" {
		t.Fatalf("email must be normalized, got %q", user.Email)
	}
	if user.Role != domain.RoleStudent {
		t.Fatalf("expected student role, got %q", user.Role)
	}
}

func TestUserService_CreateUserRejectsBadRole(t *testing.T) {
	svc, _ := newUserServiceForTest(&mockSender{}, nil)
	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "a@b.c", Role: "principal"})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserService_AuthenticateWithPassword(t *testing.T) {
	svc, _ := newUserServiceForTest(&mockSender{}, nil)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "admin@colegio.edu", Role: domain.RoleAdmin, Password: "s3creta"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	user, err := svc.Authenticate(ctx, "admin@colegio.edu", "s3creta")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("unexpected role %q", user.Role)
	}

	if _, err := svc.Authenticate(ctx, "admin@colegio.edu", "otra"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nadie@colegio.edu", "s3creta"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestUserService_AuthenticateRejectsPasswordlessAccount(t *testing.T) {
	svc, _ := newUserServiceForTest(&mockSender{}, nil)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "alumno@colegio.edu"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alumno@colegio.edu", "loquesea"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_UpsertSSOUserCreatesStudent(t *testing.T) {
	svc, _ := newUserServiceForTest(&mockSender{}, nil)
	ctx := context.Background()

	user, err := svc.UpsertSSOUser(ctx, SSOInput{
		Provider:    "Portal",
		Subject:     "p-1",
		Email:       "nuevo@colegio.edu",
		DisplayName: "Nuevo",
		SchoolID:    "sch-1",
	})
	if err != nil {
		t.Fatalf("upsert sso: %v", err)
	}
	if user.Role != domain.RoleStudent || user.AuthProvider != "portal" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.EmailVerifiedAt == nil {
		t.Fatal("sso login must verify the email")
	}

	again, err := svc.UpsertSSOUser(ctx, SSOInput{Provider: "portal", Subject: "p-1"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != user.ID {
		t.Fatal("same identity must resolve to the same user")
	}
}

func TestUserService_UpsertSSOUserLinksByEmail(t *testing.T) {
	svc, users := newUserServiceForTest(&mockSender{}, nil)
	ctx := context.Background()
	existing, err := svc.CreateUser(ctx, CreateUserInput{Email: "docente@colegio.edu", Role: domain.RoleTeacher})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	linked, err := svc.UpsertSSOUser(ctx, SSOInput{Provider: "portal", Subject: "p-9", Email: "docente@colegio.edu"})
	if err != nil {
		t.Fatalf("upsert sso: %v", err)
	}
	if linked.ID != existing.ID {
		t.Fatal("must link to the existing account by email")
	}
	stored, _ := users.GetByID(ctx, existing.ID)
	if stored.AuthProvider != "portal" || stored.AuthSubject != "p-9" {
		t.Fatalf("identity not persisted: %+v", stored)
	}
	if stored.Role != domain.RoleTeacher {
		t.Fatal("linking must not change the role")
	}
}

func TestUserService_UpsertSSOUserRejectsEmptyIdentity(t *testing.T) {
	svc, _ := newUserServiceForTest(&mockSender{}, nil)
	if _, err := svc.UpsertSSOUser(context.Background(), SSOInput{Provider: "portal"}); !errors.Is(err, ErrOAuthInvalid) {
		t.Fatalf("expected ErrOAuthInvalid, got %v", err)
	}
}

func TestUserService_OTPFlow(t *testing.T) {
	sender := &mockSender{}
	svc, _ := newUserServiceForTest(sender, nil)
	ctx := context.Background()

	if _, err := svc.RequestOTP(ctx, "alumna@colegio.edu", "Alumna"); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].code == "" {
		t.Fatalf("expected one otp email, got %+v", sender.sent)
	}

	user, err := svc.VerifyOTP(ctx, "alumna@colegio.edu", sender.sent[0].code)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if user.EmailVerifiedAt == nil {
		t.Fatal("otp verification must verify the email")
	}

	// El codigo ya consumido no puede reutilizarse.
	if _, err := svc.VerifyOTP(ctx, "alumna@colegio.edu", sender.sent[0].code); !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("expected ErrOTPNotRequested on reuse, got %v", err)
	}
}

func TestUserService_OTPWrongCode(t *testing.T) {
	sender := &mockSender{}
	svc, _ := newUserServiceForTest(sender, nil)
	ctx := context.Background()
	if _, err := svc.RequestOTP(ctx, "alumna@colegio.edu", ""); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	wrong := "000000"
	if sender.sent[0].code == wrong {
		wrong = "000001"
	}
	if _, err := svc.VerifyOTP(ctx, "alumna@colegio.edu", wrong); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid for wrong code, got %v", err)
	}
	if _, err := svc.VerifyOTP(ctx, "alumna@colegio.edu", "no-num"); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
}

func TestUserService_OTPExpired(t *testing.T) {
	sender := &mockSender{}
	svc, users := newUserServiceForTest(sender, nil)
	ctx := context.Background()
	user, err := svc.RequestOTP(ctx, "alumna@colegio.edu", "")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}

	stored, _ := users.GetByID(ctx, user.ID)
	if err := users.UpdateOTP(ctx, user.ID, stored.OtpCodeHash, time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("backdate otp: %v", err)
	}

	if _, err := svc.VerifyOTP(ctx, "alumna@colegio.edu", sender.sent[0].code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestUserService_OTPRateLimited(t *testing.T) {
	svc, _ := newUserServiceForTest(&mockSender{}, denyAllLimiter{})
	if _, err := svc.RequestOTP(context.Background(), "alumna@colegio.edu", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestUserService_OTPSenderFailure(t *testing.T) {
	svc, _ := newUserServiceForTest(&mockSender{fail: true}, nil)
	if _, err := svc.RequestOTP(context.Background(), "alumna@colegio.edu", ""); !errors.Is(err, ErrEmailSendFailure) {
		t.Fatalf("expected ErrEmailSendFailure, got %v", err)
	}
}

func TestUserService_SetRole(t *testing.T) {
	svc, users := newUserServiceForTest(&mockSender{}, nil)
	ctx := context.Background()
	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "x@colegio.edu"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	updated, err := svc.SetRole(ctx, user.ID, domain.RoleTeacher, "sch-2")
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if updated.Role != domain.RoleTeacher || updated.SchoolID != "sch-2" {
		t.Fatalf("unexpected result: %+v", updated)
	}
	stored, _ := users.GetByID(ctx, user.ID)
	if stored.Role != domain.RoleTeacher {
		t.Fatal("role must be persisted")
	}

	if _, err := svc.SetRole(ctx, user.ID, "principal", ""); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := svc.SetRole(ctx, "nope", domain.RoleAdmin, ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestOTPRateLimiter_Window(t *testing.T) {
	limiter := NewOTPRateLimiter(time.Hour, 2)
	if !limiter.Allow("k") || !limiter.Allow("k") {
		t.Fatal("first two requests must pass")
	}
	if limiter.Allow("k") {
		t.Fatal("third request inside the window must be blocked")
	}
	if !limiter.Allow("otra") {
		t.Fatal("independent keys must not interfere")
	}
}
