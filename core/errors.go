package core

import "errors"

// The messages below are rendered inline next to the form that triggered them,
// so their text is part of the contract.

// Registration errors (client input)
var (
	ErrPasswordMismatch = errors.New("Passwords do not match.")                      // 400
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters long.") // 400
	ErrUsernameRequired = errors.New("Username is required.")                        // 400
	ErrEmailRequired    = errors.New("Email is required.")                           // 400
	ErrInvalidEmail     = errors.New("Invalid email address.")                       // 400
	ErrPasswordRequired = errors.New("Password is required.")                        // 400
)

// Conflict errors
var (
	ErrUsernameExists = errors.New("Username already exists.")  // 409 Conflict
	ErrEmailExists    = errors.New("Email already registered.") // 409 Conflict
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("Invalid username or password.") // 401 Unauthorized
	ErrUserNotFound       = errors.New("user not found")                // 401, never shown as such
)

// Session errors
var (
	ErrInvalidToken    = errors.New("invalid session token") // 401
	ErrSessionNotFound = errors.New("session not found")     // 401
	ErrSessionExpired  = errors.New("session expired")       // 401
	ErrCacheNotFound   = errors.New("not found in cache")
)

// Plan errors
var (
	ErrInvalidStatus  = errors.New("Unknown plan status.")    // 400
	ErrInvalidSubject = errors.New("Unknown subject.")        // 400
	ErrInvalidTopic   = errors.New("Unknown topic.")          // 400
	ErrUnknownField   = errors.New("unknown selection field") // 400
)

// Config errors (server-side configuration)
var (
	ErrDBAdapterRequired   = errors.New("database adapter is required") // 500
	ErrHTTPAdapterRequired = errors.New("http adapter is required")     // 500
	ErrSecretRequired      = errors.New("secret is required")           // 500
	ErrSecretTooShort      = errors.New("secret too short")             // 500
)

// GenericMessage is what users see for anything that is not their fault.
const GenericMessage = "Something went wrong. Please try again."

type ErrorKind int

const (
	KindStorage ErrorKind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindSessionExpired
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindSessionExpired:
		return "session_expired"
	default:
		return "storage"
	}
}

// KindOf classifies err. Anything unrecognised is a storage error.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrUsernameRequired),
		errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidSubject),
		errors.Is(err, ErrInvalidTopic),
		errors.Is(err, ErrUnknownField):
		return KindValidation

	case errors.Is(err, ErrUsernameExists),
		errors.Is(err, ErrEmailExists):
		return KindConflict

	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUserNotFound):
		return KindAuthentication

	case errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSessionExpired):
		return KindSessionExpired

	default:
		return KindStorage
	}
}

// UserMessage returns the single short string shown to the user for err.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return rootMessage(err)
	case KindAuthentication:
		return ErrInvalidCredentials.Error()
	case KindSessionExpired:
		return ""
	default:
		return GenericMessage
	}
}

// rootMessage strips any wrapping context so only the sentinel text is shown.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
