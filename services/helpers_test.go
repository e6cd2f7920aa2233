package services

import (
	"context"
	"strings"
	"time"

	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/pkg/cache"
)

var baseTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain$" + password, nil }

func (plainHasher) Verify(password, hash string) (bool, error) {
	return strings.TrimPrefix(hash, "plain$") == password, nil
}

func newTestSessionManager(storage core.SessionStorage, c core.Cache) *SessionManager {
	sm := NewSessionManager(core.DefaultSessionConfig(), storage, c)
	sm.now = func() time.Time { return baseTime }
	return sm
}

func newTestAuth(storage *FakeStorage) (*AuthService, *SessionManager) {
	sm := newTestSessionManager(storage, nil)
	return NewAuthService(storage, plainHasher{}, sm), sm
}

func newMemoryCache() *cache.SessionCache {
	return cache.NewSessionCache(core.CacheConfig{TTL: time.Hour})
}

func registerAlice(storage *FakeStorage) *core.User {
	auth, _ := newTestAuth(storage)
	u, err := auth.Register(context.Background(), core.RegisterRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "SecurePass1",
		ConfirmPassword: "SecurePass1",
	})
	if err != nil {
		panic(err)
	}
	return u
}
