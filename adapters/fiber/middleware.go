package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/studyplan/services"
)

const clientLocal = "studyplan.client"

// gate runs before every page: it attaches the browser's Client,
// hydrates it once from the session cookie, then applies the route guard.
func (a *Adapter) gate(c fiber.Ctx) error {
	clientID, tampered := a.cookies.read(c, clientCookie)
	if tampered {
		a.cookies.clear(c, clientCookie)
	}

	client, created, err := a.sp.Clients.Acquire(clientID)
	if err != nil {
		return a.fail(c, err)
	}
	if created {
		if err := a.cookies.write(c, clientCookie, client.ID, time.Time{}); err != nil {
			return a.fail(c, err)
		}
	}

	token, tampered := a.cookies.read(c, sessionCookie)

	var redirect string
	err = client.Do(func(s *services.ClientState) error {
		clearCookie, err := s.Gate.Hydrate(c.Context(), token, a.sp.Sessions)
		if err != nil {
			return err
		}
		if clearCookie || tampered {
			a.cookies.clear(c, sessionCookie)
			s.Reset()
		}

		redirect = s.Gate.Guard(c.Path())
		return nil
	})
	if err != nil {
		return a.fail(c, err)
	}

	if redirect != "" {
		return c.Redirect().Status(fiber.StatusSeeOther).To(redirect)
	}

	c.Locals(clientLocal, client)
	return c.Next()
}

func clientFrom(c fiber.Ctx) *services.Client {
	client, _ := c.Locals(clientLocal).(*services.Client)
	return client
}

// withClient runs h holding the client's lock, so one browser's form
// actions apply in order and a double submit cannot interleave.
func (a *Adapter) withClient(h func(c fiber.Ctx, s *services.ClientState) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		client := clientFrom(c)
		if client == nil {
			return c.Redirect().Status(fiber.StatusSeeOther).To(a.sp.Gate.LoginPath)
		}
		return client.Do(func(s *services.ClientState) error {
			if !s.Gate.Authenticated() {
				return c.Redirect().Status(fiber.StatusSeeOther).To(a.sp.Gate.LoginPath)
			}
			return h(c, s)
		})
	}
}
