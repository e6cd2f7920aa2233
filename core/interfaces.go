package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// SessionStorage defines session-related database operations
type SessionStorage interface {
	CreateSession(ctx context.Context, session *Session) error
	// GetSessionData joins the session row with its user and profile.
	// Returns ErrSessionNotFound when no row matches.
	GetSessionData(ctx context.Context, tokenHash string) (*SessionData, error)
	// DeleteSessionByHash is idempotent: a missing row is not an error.
	DeleteSessionByHash(ctx context.Context, tokenHash string) error
	DeleteUserSessions(ctx context.Context, userID int64) (int, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// UserStorage defines user-related database operations
type UserStorage interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// CreateUser inserts the user and its profile row together and fills in
	// ID, CreatedAt and UpdatedAt.
	CreateUser(ctx context.Context, u *User, passwordHash string) error
	GetCredentialsByUsername(ctx context.Context, username string) (*Credentials, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

// CatalogStorage defines the read-only reference data queries
type CatalogStorage interface {
	ListLevels(ctx context.Context) ([]string, error)
	ListBoards(ctx context.Context, level string) ([]string, error)
	ListSubjects(ctx context.Context, level, board string) ([]Subject, error)
	ListTopics(ctx context.Context, subjectID int64) ([]Topic, error)
	ImportCatalog(ctx context.Context, seeds []SubjectSeed) (ImportStats, error)
}

// PlanStorage defines student_topics operations
type PlanStorage interface {
	// ReplacePlan deletes every row for userID and inserts rows, atomically.
	ReplacePlan(ctx context.Context, userID int64, rows []PlanRow) error
	// ListPlan returns the user's rows ordered by exam date then subject,
	// hours resolved by topic name (0 when unmatched). Status is left empty.
	ListPlan(ctx context.Context, userID int64) ([]PlanItem, error)
	DeletePlan(ctx context.Context, userID int64) (int, error)
}

type StorageAdapter interface {
	UserStorage
	SessionStorage
	CatalogStorage
	PlanStorage
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations, keyed by token hash
type Cache interface {
	Get(tokenHash string) (*SessionData, error)
	Set(tokenHash string, data *SessionData) error
	Delete(tokenHash string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
	// Sliding refreshes an entry's age on every hit.
	Sliding bool
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}
