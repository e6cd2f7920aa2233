package services

import (
	"context"
	"errors"
	"time"

	"github.com/lborres/studyplan/core"
)

// GateState is where a client is in hydration
type GateState int

const (
	Unhydrated GateState = iota
	HydratedAuth
	HydratedAnon
)

func (s GateState) String() string {
	switch s {
	case HydratedAuth:
		return "authenticated"
	case HydratedAnon:
		return "anonymous"
	default:
		return "unhydrated"
	}
}

// SessionValidator resolves a session token, see SessionManager.Validate
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*core.SessionData, error)
}

// Gate is the per-client hydration state machine and route guard. It is
// not safe for concurrent use; the owning Client serialises access.
type Gate struct {
	config   core.GateConfig
	state    GateState
	identity *core.Identity
	token    string

	// zero when the session's expiry is unknown
	expiresAt time.Time
	now       func() time.Time
}

func NewGate(config core.GateConfig) *Gate {
	return &Gate{config: config, now: time.Now}
}

func (g *Gate) State() GateState { return g.state }

func (g *Gate) Identity() *core.Identity { return g.identity }

func (g *Gate) Authenticated() bool { return g.state == HydratedAuth }

// NeedsHydration is true before the first check, whenever the presented
// cookie token is not the one the gate was hydrated with, and once the
// hydrated session has passed its expiry.
func (g *Gate) NeedsHydration(token string) bool {
	switch {
	case g.state == Unhydrated, token != g.token:
		return true
	case g.state == HydratedAuth && !g.expiresAt.IsZero():
		return !g.now().Before(g.expiresAt)
	default:
		return false
	}
}

// Hydrate resolves token once. An unknown, expired or tampered token moves
// the gate to HydratedAnon and reports that the cookie must be cleared.
// Storage failures leave the gate unhydrated and are returned.
func (g *Gate) Hydrate(ctx context.Context, token string, sessions SessionValidator) (clearCookie bool, err error) {
	if !g.NeedsHydration(token) {
		return false, nil
	}

	if token == "" {
		g.becomeAnonymous()
		return false, nil
	}

	data, err := sessions.Validate(ctx, token)
	switch {
	case err == nil:
		var expiresAt time.Time
		if data.Session != nil {
			expiresAt = data.Session.ExpiresAt
		}
		g.SignIn(data.Identity, token, expiresAt)
		return false, nil
	case errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSessionExpired),
		errors.Is(err, core.ErrInvalidToken):
		g.becomeAnonymous()
		return true, nil
	default:
		return false, err
	}
}

// SignIn records a fresh login without another round trip to storage.
func (g *Gate) SignIn(identity *core.Identity, token string, expiresAt time.Time) {
	g.state = HydratedAuth
	g.identity = identity
	g.token = token
	g.expiresAt = expiresAt
}

func (g *Gate) SignOut() {
	g.becomeAnonymous()
}

func (g *Gate) becomeAnonymous() {
	g.state = HydratedAnon
	g.identity = nil
	g.token = ""
	g.expiresAt = time.Time{}
}

// Guard returns where a request for path must be redirected, or "" to
// let it render. An unhydrated gate is treated as anonymous.
func (g *Gate) Guard(path string) string {
	switch {
	case g.config.IsProtected(path) && g.state != HydratedAuth:
		return g.config.LoginPath
	case g.config.IsGuestOnly(path) && g.state == HydratedAuth:
		return g.config.LandingPath
	}
	return ""
}
