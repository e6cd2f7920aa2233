package core

import (
	"strings"
	"time"
)

type SessionConfig struct {
	MaxAge time.Duration
	// Single revokes a user's other sessions when they log in again.
	Single bool
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 24 * time.Hour,
	}
}

// GateConfig tells the auth gate which paths need which state
type GateConfig struct {
	LoginPath   string
	LandingPath string
	Protected   []string
	GuestOnly   []string
}

func (g GateConfig) IsProtected(path string) bool { return contains(g.Protected, path) }

func (g GateConfig) IsGuestOnly(path string) bool { return contains(g.GuestOnly, path) }

// contains matches a listed path or anything nested below it.
func contains(paths []string, path string) bool {
	for _, p := range paths {
		if p == path || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
