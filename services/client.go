package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/pkg/cache"
	"github.com/lborres/studyplan/pkg/crypto"
)

// Client is the state held for one browser between requests: who it is
// and what it has picked on the plan page.
type Client struct {
	ID string

	mu    sync.Mutex
	gate  *Gate
	form  core.PlanForm
	items []core.PlanItem
}

// Do runs fn with exclusive access to the client's state.
func (c *Client) Do(fn func(s *ClientState) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &ClientState{Gate: c.gate, Form: c.form, Items: c.items}
	err := fn(s)
	c.form, c.items = s.Form, s.Items
	return err
}

// ClientState is the mutable view handed to Client.Do
type ClientState struct {
	Gate  *Gate
	Form  core.PlanForm
	Items []core.PlanItem
}

// Reset forgets the plan page, keeping the gate.
func (s *ClientState) Reset() {
	s.Form = core.PlanForm{}
	s.Items = nil
}

// ClientRegistry holds one Client per client id. Idle clients expire
// after the configured TTL.
type ClientRegistry struct {
	clients *cache.Memory[*Client]
	ids     *crypto.NanoIDGenerator
	gate    core.GateConfig
}

func NewClientRegistry(gate core.GateConfig, config core.CacheConfig) (*ClientRegistry, error) {
	ids, err := crypto.NewNanoID("", 0)
	if err != nil {
		return nil, err
	}
	config.Sliding = true

	return &ClientRegistry{
		clients: cache.NewMemory[*Client](config),
		ids:     ids,
		gate:    gate,
	}, nil
}

// Acquire returns the client for id, or a fresh one when id is empty,
// unknown or expired. created reports the latter; the caller must then
// hand the new ID back to the browser.
func (r *ClientRegistry) Acquire(id string) (client *Client, created bool, err error) {
	if id != "" {
		client, err := r.clients.Get(id)
		if err == nil {
			return client, false, nil
		}
		if !errors.Is(err, core.ErrCacheNotFound) {
			return nil, false, err
		}
	}

	newID, err := r.ids.Generate()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate client id: %w", err)
	}

	client = &Client{ID: newID, gate: NewGate(r.gate)}
	if err := r.clients.Set(newID, client); err != nil {
		return nil, false, err
	}
	return client, true, nil
}

// Remove tears a client down, as on logout.
func (r *ClientRegistry) Remove(id string) {
	_ = r.clients.Delete(id)
}

// SignOutUser signs out every client authenticated as userID except keep,
// for when the user's other sessions have been revoked. It reports how
// many clients were signed out.
func (r *ClientRegistry) SignOutUser(userID int64, keep string) int {
	n := 0
	for _, client := range r.clients.Values() {
		if client.ID == keep {
			continue
		}
		_ = client.Do(func(s *ClientState) error {
			if id := s.Gate.Identity(); id != nil && id.ID == userID {
				s.Gate.SignOut()
				s.Reset()
				n++
			}
			return nil
		})
	}
	return n
}

func (r *ClientRegistry) Len() int { return r.clients.Len() }

func (r *ClientRegistry) Prune() int { return r.clients.Prune() }
