package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfAndUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantMsg  string
	}{
		{name: "password mismatch", err: ErrPasswordMismatch, wantKind: KindValidation, wantMsg: "Passwords do not match."},
		{name: "too short", err: ErrPasswordTooShort, wantKind: KindValidation, wantMsg: "Password must be at least 8 characters long."},
		{name: "username taken", err: ErrUsernameExists, wantKind: KindConflict, wantMsg: "Username already exists."},
		{name: "wrapped email taken", err: fmt.Errorf("failed to register: %w", ErrEmailExists), wantKind: KindConflict, wantMsg: "Email already registered."},
		{name: "bad credentials", err: ErrInvalidCredentials, wantKind: KindAuthentication, wantMsg: "Invalid username or password."},
		{name: "user not found reads as bad credentials", err: ErrUserNotFound, wantKind: KindAuthentication, wantMsg: "Invalid username or password."},
		{name: "expired session is silent", err: ErrSessionExpired, wantKind: KindSessionExpired, wantMsg: ""},
		{name: "storage failure is generic", err: errors.New("connection refused"), wantKind: KindStorage, wantMsg: GenericMessage},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := KindOf(test.err); got != test.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, test.wantKind)
			}
			if got := UserMessage(test.err); got != test.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, test.wantMsg)
			}
		})
	}
}
