package service_test

import (
	"context"
	"testing"
	"time"

	"codespeak/internal/core/ident"
	perr "codespeak/internal/platform/errors"
	"codespeak/internal/platform/store/mem"
	"codespeak/internal/services/auth/domain"
	"codespeak/internal/services/auth/repo"
	"codespeak/internal/services/auth/service"
)

const secret = "test-signing-secret"

func newSvc(t *testing.T, opts ...func(*service.Options)) *service.Svc {
	t.Helper()
	o := service.Options{Secret: secret}
	for _, fn := range opts {
		fn(&o)
	}
	return service.New(repo.NewMem(mem.New()), o)
}

func register(t *testing.T, svc *service.Svc, email string) domain.AuthOutput {
	t.Helper()
	out, err := svc.Register(context.Background(), domain.RegisterInput{
		Name:            "Ada",
		Email:           email,
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return out
}

func TestRegisterLoginVerify_RoundTrip(t *testing.T) {
	svc := newSvc(t)
	out := register(t, svc, "Ada@Example.COM")

	if !ident.IsID(out.User.ID) {
		t.Fatalf("user id not a document id: %q", out.User.ID)
	}
	if out.User.Email != "ada@example.com" {
		t.Fatalf("email not folded: %q", out.User.Email)
	}
	if out.Token == "" {
		t.Fatal("register must issue a token")
	}

	userID, err := svc.Verify(context.Background(), out.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != out.User.ID {
		t.Fatalf("Verify subject = %q, want %q", userID, out.User.ID)
	}

	// login with any casing of the email
	in, err := svc.Login(context.Background(), domain.LoginInput{
		Email:    "ADA@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if in.User.ID != out.User.ID {
		t.Fatalf("login resolved a different account: %q", in.User.ID)
	}
	if in.Token == out.Token {
		t.Fatal("each login must mint a fresh token")
	}
}

func TestRegister_PasswordsMustMatch(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.Register(context.Background(), domain.RegisterInput{
		Name:            "Ada",
		Email:           "ada@example.com",
		Password:        "correct horse",
		ConfirmPassword: "battery staple",
	})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want Validation, got %v", err)
	}
	e, _ := perr.As(err)
	if e == nil || len(e.Details()) != 1 || e.Details()[0] != "Passwords do not match" {
		t.Fatalf("details wrong: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newSvc(t)
	register(t, svc, "ada@example.com")

	_, err := svc.Register(context.Background(), domain.RegisterInput{
		Name:            "Imposter",
		Email:           "ADA@EXAMPLE.COM", // folds onto the existing account
		Password:        "something else1",
		ConfirmPassword: "something else1",
	})
	if !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("want DuplicateKey, got %v", err)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc := newSvc(t)
	register(t, svc, "ada@example.com")

	for _, in := range []domain.LoginInput{
		{Email: "nobody@example.com", Password: "correct horse"},
		{Email: "ada@example.com", Password: "wrong"},
	} {
		_, err := svc.Login(context.Background(), in)
		if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
			t.Fatalf("login %q: want Unauthorized, got %v", in.Email, err)
		}
		e, _ := perr.As(err)
		if e == nil || e.ToWire().Message != "Invalid email or password" {
			t.Fatalf("login %q leaks failure mode: %v", in.Email, err)
		}
	}
}

func TestVerify_RejectsBadTokens(t *testing.T) {
	svc := newSvc(t)
	out := register(t, svc, "ada@example.com")

	bad := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"tampered", out.Token + "x"},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Verify(context.Background(), tc.token); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
				t.Fatalf("want Unauthorized, got %v", err)
			}
		})
	}

	// a token signed with another secret never verifies
	other := newSvc(t, func(o *service.Options) { o.Secret = "different" })
	foreign := register(t, other, "eve@example.com")
	if _, err := svc.Verify(context.Background(), foreign.Token); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("foreign signature accepted: %v", err)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	svc := newSvc(t, func(o *service.Options) { o.TTL = time.Nanosecond })
	out := register(t, svc, "ada@example.com")

	time.Sleep(2 * time.Millisecond)
	if _, err := svc.Verify(context.Background(), out.Token); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestVerify_DeletedAccount(t *testing.T) {
	db := mem.New()
	svc := service.New(repo.NewMem(db), service.Options{Secret: secret})
	out := register(t, svc, "ada@example.com")

	if err := db.Update(func(tx *mem.Tx) error {
		tx.Delete("users", out.User.ID)
		return nil
	}); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := svc.Verify(context.Background(), out.Token); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("token for deleted account accepted: %v", err)
	}
}
