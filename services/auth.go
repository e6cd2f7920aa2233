package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/pkg/crypto"
)

type AuthService struct {
	db             core.UserStorage
	passwordHasher crypto.PasswordHandler
	sessionManager *SessionManager
}

func NewAuthService(db core.UserStorage, passwordHasher crypto.PasswordHandler, sessionManager *SessionManager) *AuthService {
	return &AuthService{
		db:             db,
		passwordHasher: passwordHasher,
		sessionManager: sessionManager,
	}
}

// Register creates an enabled account. Nothing is written unless every
// validation and uniqueness check passes. No session is issued.
func (s *AuthService) Register(ctx context.Context, req core.RegisterRequest) (*core.User, error) {
	// Step 1: Validate the form
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Uniqueness, username first
	taken, err := s.db.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, core.ErrUsernameExists
	}

	taken, err = s.db.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, core.ErrEmailExists
	}

	// Step 3: Hash and insert user + profile together
	hash, err := s.passwordHasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		Username: req.Username,
		Email:    req.Email,
		Enabled:  true,
	}
	// A concurrent registration can still win the race; storage maps
	// that unique violation to the same sentinels.
	if err := s.db.CreateUser(ctx, user, hash); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a fresh session. Every credential
// failure is reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req core.LoginRequest) (*core.LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	creds, err := s.db.GetCredentialsByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !creds.Enabled {
		return nil, core.ErrInvalidCredentials
	}

	valid, err := s.passwordHasher.Verify(req.Password, creds.PasswordHash)
	if err != nil {
		if errors.Is(err, crypto.ErrUnsupportedHash) || errors.Is(err, crypto.ErrMalformedHash) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	issued, err := s.sessionManager.Issue(ctx, creds.UserID)
	if err != nil {
		return nil, err
	}

	return &core.LoginResult{
		Identity: &core.Identity{ID: creds.UserID, Username: creds.Username, Email: creds.Email},
		Session:  issued.Session,
		Token:    issued.Token,
	}, nil
}

// Logout revokes the session behind token. An empty token is a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessionManager.Revoke(ctx, token)
}

// GetSession resolves token to the signed-in user, see SessionManager.Validate.
func (s *AuthService) GetSession(ctx context.Context, token string) (*core.SessionData, error) {
	return s.sessionManager.Validate(ctx, token)
}

// CurrentUser re-reads the signed-in user's account.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*core.User, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
