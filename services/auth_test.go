package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/pkg/crypto"
)

func validRegistration() core.RegisterRequest {
	return core.RegisterRequest{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "SecurePass1",
		ConfirmPassword: "SecurePass1",
	}
}

// Requirement: validation failures never reach storage.
func TestAuthService_RegisterValidationDoesNotTouchStorage(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *core.RegisterRequest)
		wantErr error
		wantMsg string
	}{
		{
			name:    "mismatched confirmation",
			mutate:  func(r *core.RegisterRequest) { r.ConfirmPassword = "SecurePass2" },
			wantErr: core.ErrPasswordMismatch,
			wantMsg: "Passwords do not match.",
		},
		{
			name:    "short password",
			mutate:  func(r *core.RegisterRequest) { r.Password, r.ConfirmPassword = "abc", "abc" },
			wantErr: core.ErrPasswordTooShort,
			wantMsg: "Password must be at least 8 characters long.",
		},
		{
			name:    "missing email",
			mutate:  func(r *core.RegisterRequest) { r.Email = "" },
			wantErr: core.ErrEmailRequired,
			wantMsg: "Email is required.",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			storage := NewFakeStorage()
			auth, _ := newTestAuth(storage)
			req := validRegistration()
			test.mutate(&req)

			// Act
			_, err := auth.Register(context.Background(), req)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, test.wantErr)
			}
			if got := core.UserMessage(err); got != test.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, test.wantMsg)
			}
			if len(storage.Calls) != 0 {
				t.Errorf("storage was called: %v", storage.Calls)
			}
		})
	}
}

// Requirement: duplicate username or email is reported and nothing is inserted.
func TestAuthService_RegisterConflicts(t *testing.T) {
	tests := []struct {
		name    string
		req     core.RegisterRequest
		wantErr error
		wantMsg string
	}{
		{
			name:    "same username",
			req:     core.RegisterRequest{Username: "bob", Email: "other@example.com", Password: "SecurePass1", ConfirmPassword: "SecurePass1"},
			wantErr: core.ErrUsernameExists,
			wantMsg: "Username already exists.",
		},
		{
			name:    "same email under a different username",
			req:     core.RegisterRequest{Username: "robert", Email: "bob@example.com", Password: "SecurePass1", ConfirmPassword: "SecurePass1"},
			wantErr: core.ErrEmailExists,
			wantMsg: "Email already registered.",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			storage := NewFakeStorage()
			auth, _ := newTestAuth(storage)
			if _, err := auth.Register(context.Background(), validRegistration()); err != nil {
				t.Fatalf("first Register() error = %v", err)
			}

			// Act
			_, err := auth.Register(context.Background(), test.req)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, test.wantErr)
			}
			if got := core.UserMessage(err); got != test.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, test.wantMsg)
			}
			if storage.UserCount() != 1 || storage.Calls["CreateUser"] != 1 {
				t.Errorf("users = %d, inserts = %d; want 1 and 1", storage.UserCount(), storage.Calls["CreateUser"])
			}
		})
	}
}

func TestAuthService_RegisterStoresHashAndIssuesNoSession(t *testing.T) {
	storage := NewFakeStorage()
	auth, _ := newTestAuth(storage)

	u, err := auth.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if !u.Enabled || u.ID == 0 {
		t.Errorf("user = %+v", u)
	}
	if storage.Hashes[u.ID] == "SecurePass1" {
		t.Error("password stored in plain text")
	}
	if storage.SessionCount() != 0 {
		t.Error("registration must not log the user in")
	}
}

func TestAuthService_RegisterStorageRaceConflict(t *testing.T) {
	storage := NewFakeStorage()
	storage.Fail["CreateUser"] = core.ErrUsernameExists
	auth, _ := newTestAuth(storage)

	_, err := auth.Register(context.Background(), validRegistration())
	if core.UserMessage(err) != "Username already exists." {
		t.Errorf("Register() error = %v", err)
	}
}

// Requirement: login failures are generic and never say which field was wrong.
func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		disable  bool
		wantErr  error
	}{
		{name: "valid credentials", username: "bob", password: "SecurePass1"},
		{name: "wrong password", username: "bob", password: "WrongPass1", wantErr: core.ErrInvalidCredentials},
		{name: "unknown user", username: "nobody", password: "SecurePass1", wantErr: core.ErrInvalidCredentials},
		{name: "empty password", username: "bob", password: "", wantErr: core.ErrInvalidCredentials},
		{name: "disabled account", username: "bob", password: "SecurePass1", disable: true, wantErr: core.ErrInvalidCredentials},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			storage := NewFakeStorage()
			auth, _ := newTestAuth(storage)
			u, _ := auth.Register(context.Background(), validRegistration())
			if test.disable {
				storage.Users[u.ID].Enabled = false
			}

			// Act
			result, err := auth.Login(context.Background(), core.LoginRequest{Username: test.username, Password: test.password})

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr != nil {
				if core.UserMessage(err) != "Invalid username or password." {
					t.Errorf("UserMessage() = %q", core.UserMessage(err))
				}
				if storage.SessionCount() != 0 {
					t.Error("failed login created a session")
				}
				return
			}
			if result.Token == "" || result.Identity.Username != "bob" || result.Identity.Email != "bob@example.com" {
				t.Errorf("result = %+v", result)
			}
			if storage.SessionCount() != 1 {
				t.Errorf("session rows = %d, want 1", storage.SessionCount())
			}
		})
	}
}

// Requirement: a valid login session validates immediately and lasts 24h.
func TestAuthService_LoginThenGetSession(t *testing.T) {
	storage := NewFakeStorage()
	auth, _ := newTestAuth(storage)
	u, _ := auth.Register(context.Background(), validRegistration())

	result, err := auth.Login(context.Background(), core.LoginRequest{Username: "bob", Password: "SecurePass1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	data, err := auth.GetSession(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if data.Identity.ID != u.ID {
		t.Errorf("Identity.ID = %d, want %d", data.Identity.ID, u.ID)
	}
	if want := baseTime.Add(24 * time.Hour); !data.Session.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", data.Session.ExpiresAt, want)
	}
}

func TestAuthService_LoginWithRealHasher(t *testing.T) {
	storage := NewFakeStorage()
	hasher := &crypto.Bcrypt{Cost: 4}
	auth := NewAuthService(storage, hasher, newTestSessionManager(storage, nil))

	if _, err := auth.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := auth.Login(context.Background(), core.LoginRequest{Username: "bob", Password: "SecurePass1"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
}

func TestAuthService_LoginStorageFailure(t *testing.T) {
	storage := NewFakeStorage()
	auth, _ := newTestAuth(storage)
	storage.Fail["GetCredentialsByUsername"] = errors.New("db down")

	_, err := auth.Login(context.Background(), core.LoginRequest{Username: "bob", Password: "SecurePass1"})
	if err == nil || errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want a storage error", err)
	}
	if core.KindOf(err) != core.KindStorage {
		t.Errorf("KindOf() = %v, want storage", core.KindOf(err))
	}
}

func TestAuthService_Logout(t *testing.T) {
	storage := NewFakeStorage()
	auth, _ := newTestAuth(storage)
	_, _ = auth.Register(context.Background(), validRegistration())
	result, _ := auth.Login(context.Background(), core.LoginRequest{Username: "bob", Password: "SecurePass1"})

	if err := auth.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if err := auth.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout(\"\") error = %v", err)
	}
	if storage.SessionCount() != 0 {
		t.Errorf("session rows = %d, want 0", storage.SessionCount())
	}
	if _, err := auth.GetSession(context.Background(), result.Token); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("GetSession() after Logout error = %v", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	alice := registerAlice(storage)
	auth, _ := newTestAuth(storage)

	// Act
	got, err := auth.CurrentUser(context.Background(), alice.ID)

	// Assert
	if err != nil || got.Email != "alice@example.com" || got.CreatedAt.IsZero() {
		t.Fatalf("CurrentUser() = %+v, %v", got, err)
	}
	if _, err := auth.CurrentUser(context.Background(), 999); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("unknown user error = %v", err)
	}
}
