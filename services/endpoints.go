package services

import (
	"fmt"
	"sort"

	"github.com/lborres/studyplan/core"
)

const (
	PathLanding     = "/"
	PathSignup      = "/signup"
	PathLogin       = "/login"
	PathLogout      = "/logout"
	PathHome        = "/authenticated_home"
	PathPlan        = "/plan"
	PathPlanLevel   = "/plan/level"
	PathPlanBoard   = "/plan/board"
	PathPlanSubject = "/plan/subject"
	PathPlanTopic   = "/plan/topics/:id/toggle"
	PathPlanCreate  = "/plan/generate"
	PathPlanDelete  = "/plan/delete"
	PathPlanStatus  = "/plan/items/:id/status"
)

// PageEndpoints returns the framework-agnostic page routes. Handlers are
// supplied by the HTTP adapter, matched by OperationID.
func PageEndpoints() []core.Endpoint {
	page := func(method, path, op, desc string, access core.Access) core.Endpoint {
		return core.Endpoint{
			Path:   path,
			Method: method,
			Metadata: core.EndpointMetadata{
				OperationID: op,
				Description: desc,
				Access:      access,
			},
		}
	}

	return []core.Endpoint{
		page("GET", PathLanding, "landing", "Public landing page", core.AccessPublic),
		page("GET", PathSignup, "signupPage", "Registration form", core.AccessGuestOnly),
		page("POST", PathSignup, "signup", "Register with username, email and password", core.AccessGuestOnly),
		page("GET", PathLogin, "loginPage", "Login form", core.AccessGuestOnly),
		page("POST", PathLogin, "login", "Log in and set the session cookie", core.AccessGuestOnly),
		page("POST", PathLogout, "logout", "Revoke the session and forget the client", core.AccessPublic),
		page("GET", PathHome, "home", "Authenticated landing page", core.AccessProtected),
		page("GET", PathPlan, "planPage", "Plan page with selection and current plan", core.AccessProtected),
		page("POST", PathPlanLevel, "selectLevel", "Choose a level; clears board, subject and topics", core.AccessProtected),
		page("POST", PathPlanBoard, "selectBoard", "Choose a board; clears subject and topics", core.AccessProtected),
		page("POST", PathPlanSubject, "selectSubject", "Choose a subject; clears topics", core.AccessProtected),
		page("POST", PathPlanTopic, "toggleTopic", "Add or remove a topic from the selection", core.AccessProtected),
		page("POST", PathPlanCreate, "generatePlan", "Replace the plan with the selected topics", core.AccessProtected),
		page("POST", PathPlanDelete, "deletePlan", "Delete every plan item", core.AccessProtected),
		page("POST", PathPlanStatus, "updateStatus", "Change the displayed status of one plan item", core.AccessProtected),
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	endpoints map[string]*core.Endpoint
}

// NewEndpointRegistry creates a registry with the page endpoints registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{endpoints: make(map[string]*core.Endpoint)}

	// PageEndpoints has no duplicates
	_ = reg.Register(PageEndpoints())
	return reg
}

func endpointKey(ep *core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

// Register adds endpoints all-or-nothing. It fails if any endpoint
// conflicts with a registered one or with another in the same batch.
func (r *EndpointRegistry) Register(endpoints []core.Endpoint) error {
	seen := make(map[string]bool, len(endpoints))
	for i := range endpoints {
		key := endpointKey(&endpoints[i])
		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", endpoints[i].Method, endpoints[i].Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint: %s %s", endpoints[i].Method, endpoints[i].Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		ep := endpoints[i]
		r.endpoints[endpointKey(&ep)] = &ep
	}
	return nil
}

// Endpoints returns every registered endpoint ordered by path then method.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}

// GateConfig derives the gate's protected and guest-only paths from the
// access metadata of the registered endpoints.
func (r *EndpointRegistry) GateConfig(loginPath, landingPath string) core.GateConfig {
	cfg := core.GateConfig{LoginPath: loginPath, LandingPath: landingPath}
	seen := make(map[string]bool)

	for _, ep := range r.Endpoints() {
		if seen[ep.Path] {
			continue
		}
		switch ep.Metadata.Access {
		case core.AccessProtected:
			cfg.Protected = append(cfg.Protected, ep.Path)
		case core.AccessGuestOnly:
			cfg.GuestOnly = append(cfg.GuestOnly, ep.Path)
		default:
			continue
		}
		seen[ep.Path] = true
	}
	return cfg
}
