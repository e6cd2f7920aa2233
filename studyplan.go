package studyplan

import (
	"fmt"
	"time"

	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/pkg/cache"
	"github.com/lborres/studyplan/pkg/crypto"
	"github.com/lborres/studyplan/services"
)

// interfaces
type (
	StorageAdapter  = core.StorageAdapter
	Cache           = core.Cache
	PasswordHandler = crypto.PasswordHandler
)

// HTTPAdapter mounts the page routes of an App on a web framework
type HTTPAdapter interface {
	RegisterRoutes(app *App) error
}

// structs
type (
	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig
	GateConfig    = core.GateConfig
)

type (
	User        = core.User
	Identity    = core.Identity
	Session     = core.Session
	SessionData = core.SessionData
	Subject     = core.Subject
	Topic       = core.Topic
	PlanItem    = core.PlanItem
	PlanForm    = core.PlanForm
	CacheStats  = core.CacheStats
)

const (
	defaultSecretLen    = 32
	defaultClientTTL    = 30 * time.Minute
	defaultClientsLimit = 10000
)

// Constructors & helpers (convenience re-exports)
var (
	NewSessionCache      = cache.NewSessionCache
	NewArgon2            = crypto.NewArgon2
	NewHasher            = crypto.NewHasher
	DefaultSessionConfig = core.DefaultSessionConfig
)

var (
	ErrPasswordMismatch   = core.ErrPasswordMismatch
	ErrPasswordTooShort   = core.ErrPasswordTooShort
	ErrUsernameExists     = core.ErrUsernameExists
	ErrEmailExists        = core.ErrEmailExists
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrInvalidToken    = core.ErrInvalidToken
	ErrSessionNotFound = core.ErrSessionNotFound
	ErrSessionExpired  = core.ErrSessionExpired
)

var (
	ErrDBAdapterRequired   = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

type Config struct {
	// Secret signs cookies. At least 32 characters.
	Secret string

	Database StorageAdapter
	HTTP     HTTPAdapter

	// CacheAdapter defaults to an in-memory session cache unless DisableCache is set.
	CacheAdapter Cache
	DisableCache bool

	SessionConfig  *SessionConfig
	PasswordHasher PasswordHandler
	// ClientConfig bounds the per-browser state kept between requests.
	ClientConfig *CacheConfig

	// CookieSecure marks cookies Secure; enable behind HTTPS.
	CookieSecure bool
}

// App is the wired application handed to the HTTP adapter
type App struct {
	Sessions  *services.SessionManager
	Auth      *services.AuthService
	Catalog   *services.CatalogService
	Plans     *services.PlanService
	Clients   *services.ClientRegistry
	Endpoints *services.EndpointRegistry
	Gate      GateConfig

	Secret       string
	CookieSecure bool
}

func New(config Config) (*App, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = NewSessionCache(CacheConfig{
			TTL:     cache.DefaultTTL,
			MaxSize: cache.DefaultMaxSize,
		})
	}

	sessionConfig := config.SessionConfig
	if sessionConfig == nil {
		defaults := DefaultSessionConfig()
		sessionConfig = &defaults
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		hasher, err := NewHasher(crypto.AlgorithmArgon2)
		if err != nil {
			return nil, err
		}
		passwordHasher = hasher
	}

	clientConfig := config.ClientConfig
	if clientConfig == nil {
		clientConfig = &CacheConfig{TTL: defaultClientTTL, MaxSize: defaultClientsLimit}
	}

	endpoints := services.NewEndpointRegistry()
	gate := endpoints.GateConfig(services.PathLogin, services.PathHome)

	clients, err := services.NewClientRegistry(gate, *clientConfig)
	if err != nil {
		return nil, err
	}

	sessions := services.NewSessionManager(*sessionConfig, config.Database, cacheAdapter)
	catalog := services.NewCatalogService(config.Database)

	app := &App{
		Sessions:     sessions,
		Auth:         services.NewAuthService(config.Database, passwordHasher, sessions),
		Catalog:      catalog,
		Plans:        services.NewPlanService(config.Database, catalog),
		Clients:      clients,
		Endpoints:    endpoints,
		Gate:         gate,
		Secret:       config.Secret,
		CookieSecure: config.CookieSecure,
	}

	if err := config.HTTP.RegisterRoutes(app); err != nil {
		return nil, err
	}

	return app, nil
}
