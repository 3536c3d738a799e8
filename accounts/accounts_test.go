// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/danielhkuo/survetic/apperr"
	"github.com/danielhkuo/survetic/mailer"
	"github.com/danielhkuo/survetic/models"
	"github.com/danielhkuo/survetic/session"
	"github.com/danielhkuo/survetic/testutil"
)

type fixture struct {
	db   *sql.DB
	svc  *Service
	mail *mailer.Recorder
}

func setup(t *testing.T) fixture {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	rec := &mailer.Recorder{}
	svc := NewService(conn, session.NewSQLStore(conn), rec, testutil.GetTestConfig())
	return fixture{db: conn, svc: svc, mail: rec}
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if !apperr.Is(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}

func ptr[T any](v T) *T { return &v }

var alice = models.RegisterRequest{
	Email:     "alice@example.com",
	Password:  "hunter2x",
	FirstName: "Alice",
	LastName:  "Liddell",
}

// registerVerified registers alice, verifies her, and logs her in.
func (f fixture) registerVerified(t *testing.T) *models.LoginResponse {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, alice); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	last, _ := f.mail.Last()
	if err := f.svc.VerifyEmail(ctx, last.Token); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	resp, err := f.svc.Login(ctx, models.LoginRequest{Email: alice.Email, Password: alice.Password})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return resp
}

func TestRegister(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	req := alice
	req.Email = "  Alice@Example.COM "
	u, err := f.svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized", u.Email)
	}
	if u.IsVerified || u.IsAdmin {
		t.Errorf("new user verified=%v admin=%v", u.IsVerified, u.IsAdmin)
	}
	if u.PasswordHash == alice.Password {
		t.Error("password stored in plaintext")
	}

	sent := f.mail.Sent()
	if len(sent) != 1 || sent[0].To != "alice@example.com" || sent[0].FirstName != "Alice" || sent[0].Token == "" {
		t.Fatalf("verification email = %+v", sent)
	}

	// Only the hash is stored
	var stored string
	if err := f.db.QueryRow(`SELECT verification_token FROM users WHERE id = $1`, u.ID).Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if stored == sent[0].Token {
		t.Error("raw verification token stored")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, alice); err != nil {
		t.Fatal(err)
	}

	req := alice
	req.Email = " ALICE@example.com"
	_, err := f.svc.Register(ctx, req)
	assertKind(t, err, apperr.KindConflict)
}

func TestRegister_Validation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		mod  func(r *models.RegisterRequest)
	}{
		{"missing email", func(r *models.RegisterRequest) { r.Email = "" }},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "alice" }},
		{"short password", func(r *models.RegisterRequest) { r.Password = "12345" }},
		{"missing first name", func(r *models.RegisterRequest) { r.FirstName = "   " }},
		{"password over 72 bytes", func(r *models.RegisterRequest) { r.Password = string(make([]byte, 73)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := alice
			tt.mod(&req)
			_, err := f.svc.Register(context.Background(), req)
			assertKind(t, err, apperr.KindValidation)
		})
	}
}

func TestRegister_EmailFailureDoesNotFail(t *testing.T) {
	f := setup(t)
	f.mail.SetErr(errors.New("resend down"))

	u, err := f.svc.Register(context.Background(), alice)
	if err != nil {
		t.Fatalf("Register() error = %v, want success despite email failure", err)
	}
	if u.ID == "" {
		t.Error("user not created")
	}
}

func TestVerifyEmail_SingleUse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, alice); err != nil {
		t.Fatal(err)
	}
	last, _ := f.mail.Last()

	if err := f.svc.VerifyEmail(ctx, last.Token); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	assertKind(t, f.svc.VerifyEmail(ctx, last.Token), apperr.KindNotFound)
	assertKind(t, f.svc.VerifyEmail(ctx, "made-up"), apperr.KindNotFound)
	assertKind(t, f.svc.VerifyEmail(ctx, ""), apperr.KindValidation)
}

func TestLogin_Unverified(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, alice); err != nil {
		t.Fatal(err)
	}

	// Wrong password: generic failure
	_, err := f.svc.Login(ctx, models.LoginRequest{Email: alice.Email, Password: "wrongpass"})
	assertKind(t, err, apperr.KindUnauthorized)
	if e := apperr.From(err); e.Code != "" || e.Message != msgInvalidCredentials {
		t.Errorf("wrong password on unverified account leaked state: %+v", e)
	}

	// Right password: distinguishable, still 401
	_, err = f.svc.Login(ctx, models.LoginRequest{Email: alice.Email, Password: alice.Password})
	assertKind(t, err, apperr.KindUnauthorized)
	if e := apperr.From(err); e.Code != apperr.CodeEmailNotVerified {
		t.Errorf("Code = %q, want %q", e.Code, apperr.CodeEmailNotVerified)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	f := setup(t)
	f.registerVerified(t)
	ctx := context.Background()

	_, unknownErr := f.svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "hunter2x"})
	_, wrongErr := f.svc.Login(ctx, models.LoginRequest{Email: alice.Email, Password: "hunter3x"})

	assertKind(t, unknownErr, apperr.KindUnauthorized)
	assertKind(t, wrongErr, apperr.KindUnauthorized)
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("unknown email %q and wrong password %q should be indistinguishable", unknownErr, wrongErr)
	}
}

func TestLoginAuthenticateLogout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	resp := f.registerVerified(t)

	if resp.Token == "" || resp.ExpiresAt.IsZero() {
		t.Fatalf("LoginResponse = %+v", resp)
	}
	if resp.User.Email != alice.Email || !resp.User.IsVerified {
		t.Errorf("LoginResponse.User = %+v", resp.User)
	}

	// Case-insensitive login
	if _, err := f.svc.Login(ctx, models.LoginRequest{Email: "ALICE@example.com", Password: alice.Password}); err != nil {
		t.Errorf("Login(uppercase email) error = %v", err)
	}

	id, err := f.svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if id.User.ID != resp.User.ID || id.SessionID == "" {
		t.Errorf("Identity = %+v", id)
	}

	if err := f.svc.Logout(ctx, id); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	_, err = f.svc.Authenticate(ctx, resp.Token)
	assertKind(t, err, apperr.KindUnauthorized)
}

func TestAuthenticate_Rejects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := f.svc.Authenticate(ctx, token)
		assertKind(t, err, apperr.KindUnauthorized)
	}
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	resp := f.registerVerified(t)

	// Remove the row directly so the session survives
	if _, err := f.db.Exec(`DELETE FROM users WHERE id = $1`, resp.User.ID); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Authenticate(ctx, resp.Token)
	assertKind(t, err, apperr.KindUnauthorized)
}

func TestResendVerification(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assertKind(t, f.svc.ResendVerification(ctx, models.ResendVerificationRequest{Email: "ghost@example.com"}), apperr.KindNotFound)

	if _, err := f.svc.Register(ctx, alice); err != nil {
		t.Fatal(err)
	}
	first, _ := f.mail.Last()

	if err := f.svc.ResendVerification(ctx, models.ResendVerificationRequest{Email: "Alice@example.com"}); err != nil {
		t.Fatalf("ResendVerification() error = %v", err)
	}
	second, _ := f.mail.Last()
	if second.Token == first.Token {
		t.Fatal("token was not rotated")
	}

	// The old token is dead, the new one works
	assertKind(t, f.svc.VerifyEmail(ctx, first.Token), apperr.KindNotFound)
	if err := f.svc.VerifyEmail(ctx, second.Token); err != nil {
		t.Fatalf("VerifyEmail(new token) error = %v", err)
	}

	err := f.svc.ResendVerification(ctx, models.ResendVerificationRequest{Email: alice.Email})
	assertKind(t, err, apperr.KindValidation)
	if apperr.From(err).Code != apperr.CodeAlreadyVerified {
		t.Errorf("Code = %q, want %q", apperr.From(err).Code, apperr.CodeAlreadyVerified)
	}
}

func TestResendVerification_DeliveryFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, alice); err != nil {
		t.Fatal(err)
	}
	f.mail.SetErr(errors.New("resend down"))

	err := f.svc.ResendVerification(ctx, models.ResendVerificationRequest{Email: alice.Email})
	assertKind(t, err, apperr.KindInternal)
}

func TestUpdateProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	resp := f.registerVerified(t)
	testutil.CreateTestUser(t, f.db, "bob@example.com", testutil.UserOpts{})

	id, err := f.svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatal(err)
	}

	u, err := f.svc.UpdateProfile(ctx, id, models.UpdateProfileRequest{FirstName: ptr(" Alicia "), Email: ptr("ALICIA@example.com")})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if u.FirstName != "Alicia" || u.LastName != "Liddell" || u.Email != "alicia@example.com" {
		t.Errorf("UpdateProfile() = %+v", u)
	}

	_, err = f.svc.UpdateProfile(ctx, id, models.UpdateProfileRequest{Email: ptr("Bob@example.com")})
	assertKind(t, err, apperr.KindConflict)

	_, err = f.svc.UpdateProfile(ctx, id, models.UpdateProfileRequest{LastName: ptr("")})
	assertKind(t, err, apperr.KindValidation)
}

func TestChangePassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := f.registerVerified(t)

	second, err := f.svc.Login(ctx, models.LoginRequest{Email: alice.Email, Password: alice.Password})
	if err != nil {
		t.Fatal(err)
	}

	id, err := f.svc.Authenticate(ctx, first.Token)
	if err != nil {
		t.Fatal(err)
	}

	err = f.svc.ChangePassword(ctx, id, models.ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "brandnew1"})
	assertKind(t, err, apperr.KindUnauthorized)

	if err := f.svc.ChangePassword(ctx, id, models.ChangePasswordRequest{CurrentPassword: alice.Password, NewPassword: "brandnew1"}); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	// The session that made the change survives, the other one doesn't
	if _, err := f.svc.Authenticate(ctx, first.Token); err != nil {
		t.Errorf("current session revoked: %v", err)
	}
	_, err = f.svc.Authenticate(ctx, second.Token)
	assertKind(t, err, apperr.KindUnauthorized)

	_, err = f.svc.Login(ctx, models.LoginRequest{Email: alice.Email, Password: alice.Password})
	assertKind(t, err, apperr.KindUnauthorized)
	if _, err := f.svc.Login(ctx, models.LoginRequest{Email: alice.Email, Password: "brandnew1"}); err != nil {
		t.Errorf("Login(new password) error = %v", err)
	}
}
