package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3/log"

	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/pkg/crypto"
)

// SessionManager issues and resolves the opaque tokens behind the
// session cookie. Only SHA-256 digests of tokens reach storage.
type SessionManager struct {
	config  core.SessionConfig
	storage core.SessionStorage
	cache   core.Cache // optional
	now     func() time.Time
}

func NewSessionManager(config core.SessionConfig, storage core.SessionStorage, cache core.Cache) *SessionManager {
	if config.MaxAge <= 0 {
		config.MaxAge = core.DefaultSessionConfig().MaxAge
	}
	return &SessionManager{config: config, storage: storage, cache: cache, now: time.Now}
}

func (sm *SessionManager) MaxAge() time.Duration { return sm.config.MaxAge }

// Single reports whether a login revokes the user's other sessions.
func (sm *SessionManager) Single() bool { return sm.config.Single }

// Issue writes exactly one session row for userID expiring MaxAge from now.
func (sm *SessionManager) Issue(ctx context.Context, userID int64) (*core.IssuedSession, error) {
	pair, err := crypto.GenerateHashedToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	if sm.config.Single {
		if _, err := sm.RevokeAllForUser(ctx, userID); err != nil {
			return nil, err
		}
	}

	session := &core.Session{
		UserID:    userID,
		TokenHash: pair.Hash,
		ExpiresAt: sm.now().Add(sm.config.MaxAge),
	}
	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &core.IssuedSession{Session: session, Token: pair.Token}, nil
}

// Validate resolves token to its user. Unknown tokens yield
// ErrSessionNotFound; expired ones are deleted and yield ErrSessionExpired.
// Any other error comes from storage.
func (sm *SessionManager) Validate(ctx context.Context, token string) (*core.SessionData, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}
	tokenHash := crypto.HashToken(token)

	if sm.cache != nil {
		if data, err := sm.cache.Get(tokenHash); err == nil {
			if sm.expired(data.Session) {
				return nil, sm.expire(ctx, tokenHash)
			}
			return data, nil
		}
	}

	data, err := sm.storage.GetSessionData(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if sm.expired(data.Session) {
		return nil, sm.expire(ctx, tokenHash)
	}

	if sm.cache != nil {
		// a cache failure never fails the request
		_ = sm.cache.Set(tokenHash, data)
	}
	return data, nil
}

func (sm *SessionManager) expired(s *core.Session) bool {
	return !sm.now().Before(s.ExpiresAt)
}

func (sm *SessionManager) expire(ctx context.Context, tokenHash string) error {
	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}
	// the sweeper removes the row later if this delete fails
	if err := sm.storage.DeleteSessionByHash(ctx, tokenHash); err != nil {
		log.Errorw("failed to delete expired session", "error", err)
	}
	return core.ErrSessionExpired
}

// Revoke removes the session behind token. Revoking twice is not an error.
func (sm *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return core.ErrInvalidToken
	}
	tokenHash := crypto.HashToken(token)

	if err := sm.storage.DeleteSessionByHash(ctx, tokenHash); err != nil {
		return err
	}
	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}
	return nil
}

func (sm *SessionManager) RevokeAllForUser(ctx context.Context, userID int64) (int, error) {
	count, err := sm.storage.DeleteUserSessions(ctx, userID)
	if err != nil {
		return 0, err
	}

	// Cached entries are keyed by hash only, so drop them all
	if sm.cache != nil && count > 0 {
		_ = sm.cache.Clear()
	}
	return count, nil
}

// Sweep deletes every session row that has expired.
func (sm *SessionManager) Sweep(ctx context.Context) (int, error) {
	return sm.storage.DeleteExpiredSessions(ctx, sm.now())
}

// RunSweeper calls Sweep every interval until ctx is done.
func (sm *SessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sm.Sweep(ctx)
			switch {
			case err != nil && !errors.Is(err, context.Canceled):
				log.Errorw("session sweep failed", "error", err)
			case n > 0:
				log.Infow("swept expired sessions", "count", n)
			}
		}
	}
}
