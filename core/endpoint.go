package core

// Access says which gate state a page requires
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	// AccessGuestOnly pages bounce authenticated users to the landing page.
	AccessGuestOnly
)

func (a Access) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessGuestOnly:
		return "guest-only"
	default:
		return "public"
	}
}

type Endpoint struct {
	Path     string
	Method   string
	Metadata EndpointMetadata
}

type EndpointMetadata struct {
	OperationID string
	Description string
	Access      Access
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Error string            `json:"error"`
	Kind  string            `json:"kind,omitempty"`
	Form  map[string]string `json:"form,omitempty"`
}
