package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lborres/studyplan/core"
)

type stubValidator struct {
	data  *core.SessionData
	err   error
	calls int
}

func (s *stubValidator) Validate(_ context.Context, _ string) (*core.SessionData, error) {
	s.calls++
	return s.data, s.err
}

func testGateConfig() core.GateConfig {
	return NewEndpointRegistry().GateConfig(PathLogin, PathHome)
}

var bob = &core.Identity{ID: 7, Username: "bob", Email: "bob@example.com"}

// Requirement: hydration resolves the cookie once and picks the render path.
func TestGate_Hydrate(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		validator *stubValidator
		wantState GateState
		wantClear bool
		wantErr   bool
	}{
		{name: "valid token", token: "t", validator: &stubValidator{data: &core.SessionData{Identity: bob}}, wantState: HydratedAuth},
		{name: "no cookie", token: "", validator: &stubValidator{}, wantState: HydratedAnon},
		{name: "unknown token clears cookie", token: "t", validator: &stubValidator{err: core.ErrSessionNotFound}, wantState: HydratedAnon, wantClear: true},
		{name: "expired token clears cookie", token: "t", validator: &stubValidator{err: core.ErrSessionExpired}, wantState: HydratedAnon, wantClear: true},
		{name: "storage failure stays unhydrated", token: "t", validator: &stubValidator{err: errors.New("db down")}, wantState: Unhydrated, wantErr: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			gate := NewGate(testGateConfig())

			// Act
			clearCookie, err := gate.Hydrate(context.Background(), test.token, test.validator)

			// Assert
			if (err != nil) != test.wantErr {
				t.Fatalf("Hydrate() error = %v, wantErr %v", err, test.wantErr)
			}
			if clearCookie != test.wantClear {
				t.Errorf("clearCookie = %v, want %v", clearCookie, test.wantClear)
			}
			if gate.State() != test.wantState {
				t.Errorf("State() = %v, want %v", gate.State(), test.wantState)
			}
			if test.wantState == HydratedAuth && gate.Identity() != bob {
				t.Errorf("Identity() = %+v", gate.Identity())
			}
		})
	}
}

// Requirement: hydration is one-shot per client session.
func TestGate_HydrateOnce(t *testing.T) {
	gate := NewGate(testGateConfig())
	v := &stubValidator{data: &core.SessionData{Identity: bob}}

	for i := 0; i < 3; i++ {
		if _, err := gate.Hydrate(context.Background(), "t", v); err != nil {
			t.Fatalf("Hydrate() error = %v", err)
		}
	}
	if v.calls != 1 {
		t.Errorf("Validate called %d times, want 1", v.calls)
	}

	// a different cookie is a different client session
	v.err = core.ErrSessionNotFound
	clearCookie, _ := gate.Hydrate(context.Background(), "other", v)
	if !clearCookie || gate.State() != HydratedAnon || v.calls != 2 {
		t.Errorf("rehydrate: clear=%v state=%v calls=%d", clearCookie, gate.State(), v.calls)
	}
}

// Requirement: anonymous clients are sent to login from protected pages and
// authenticated ones are sent home from login and signup.
func TestGate_Guard(t *testing.T) {
	anon := NewGate(testGateConfig())
	anon.SignOut()
	authed := NewGate(testGateConfig())
	authed.SignIn(bob, "t", time.Time{})
	fresh := NewGate(testGateConfig())

	tests := []struct {
		name string
		gate *Gate
		path string
		want string
	}{
		{name: "anonymous on plan", gate: anon, path: "/plan", want: PathLogin},
		{name: "anonymous on nested plan action", gate: anon, path: "/plan/topics/3/toggle", want: PathLogin},
		{name: "anonymous on home", gate: anon, path: PathHome, want: PathLogin},
		{name: "anonymous on login", gate: anon, path: PathLogin, want: ""},
		{name: "anonymous on landing", gate: anon, path: PathLanding, want: ""},
		{name: "unhydrated on plan", gate: fresh, path: "/plan", want: PathLogin},
		{name: "authenticated on login", gate: authed, path: PathLogin, want: PathHome},
		{name: "authenticated on signup", gate: authed, path: PathSignup, want: PathHome},
		{name: "authenticated on plan", gate: authed, path: "/plan", want: ""},
		{name: "authenticated on landing", gate: authed, path: PathLanding, want: ""},
		{name: "lookalike path is not protected", gate: anon, path: "/planner", want: ""},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := test.gate.Guard(test.path); got != test.want {
				t.Errorf("Guard(%q) = %q, want %q", test.path, got, test.want)
			}
		})
	}
}

func TestGate_SignInSignOut(t *testing.T) {
	gate := NewGate(testGateConfig())

	gate.SignIn(bob, "t", time.Time{})
	if !gate.Authenticated() || gate.NeedsHydration("t") {
		t.Fatalf("after SignIn: state %v", gate.State())
	}

	gate.SignOut()
	if gate.State() != HydratedAnon || gate.Identity() != nil {
		t.Errorf("after SignOut: state %v identity %v", gate.State(), gate.Identity())
	}
}

// Requirement: a hydrated session is checked again once it has expired.
func TestGate_RehydratesAfterExpiry(t *testing.T) {
	// Arrange
	now := baseTime
	gate := NewGate(testGateConfig())
	gate.now = func() time.Time { return now }
	v := &stubValidator{data: &core.SessionData{
		Identity: bob,
		Session:  &core.Session{UserID: bob.ID, ExpiresAt: baseTime.Add(time.Hour)},
	}}
	if _, err := gate.Hydrate(context.Background(), "t", v); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	// Act
	now = baseTime.Add(59 * time.Minute)
	before := gate.NeedsHydration("t")
	now = baseTime.Add(time.Hour)
	v.data, v.err = nil, core.ErrSessionExpired
	clearCookie, err := gate.Hydrate(context.Background(), "t", v)

	// Assert
	if before {
		t.Error("NeedsHydration() = true before expiry")
	}
	if err != nil || !clearCookie {
		t.Fatalf("Hydrate() after expiry = %v, %v; want cookie cleared", clearCookie, err)
	}
	if gate.State() != HydratedAnon || v.calls != 2 {
		t.Errorf("state = %v, calls = %d", gate.State(), v.calls)
	}
}
