package fiber

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/utils/v2"

	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/services"
)

// bindBody decodes the request body into out, then copies each of fields
// out of the request buffer, which fasthttp reuses once the handler returns.
// Every bound string that is kept past the request must be listed.
func bindBody(c fiber.Ctx, out any, fields ...*string) error {
	if err := c.Bind().Body(out); err != nil {
		return err
	}
	for _, f := range fields {
		*f = utils.CopyString(*f)
	}
	return nil
}

func (a *Adapter) identity(c fiber.Ctx) *core.Identity {
	client := clientFrom(c)
	if client == nil {
		return nil
	}
	var id *core.Identity
	_ = client.Do(func(s *services.ClientState) error {
		id = s.Gate.Identity()
		return nil
	})
	return id
}

func (a *Adapter) landing(c fiber.Ctx) error {
	user := a.identity(c)
	return c.JSON(landingView{Authenticated: user != nil, User: user})
}

func (a *Adapter) home(c fiber.Ctx) error {
	id := a.identity(c)
	if id == nil {
		return c.Redirect().Status(fiber.StatusSeeOther).To(a.sp.Gate.LoginPath)
	}

	user, err := a.sp.Auth.CurrentUser(c.Context(), id.ID)
	if err != nil {
		return a.fail(c, err)
	}
	return c.JSON(homeView{User: user})
}

func (a *Adapter) signupPage(c fiber.Ctx) error {
	return c.JSON(formView{Form: map[string]string{"username": "", "email": ""}})
}

func (a *Adapter) loginPage(c fiber.Ctx) error {
	return c.JSON(formView{Form: map[string]string{"username": ""}})
}

// formFailure re-renders a form with the inline error. Passwords are never echoed.
func (a *Adapter) formFailure(c fiber.Ctx, err error, form map[string]string) error {
	status, body := errorResponse(c, err)
	return c.Status(status).JSON(formView{Form: form, Error: body.Error, Kind: body.Kind})
}

func (a *Adapter) signup(c fiber.Ctx) error {
	var req core.RegisterRequest
	if err := bindBody(c, &req, &req.Username, &req.Email, &req.Password, &req.ConfirmPassword); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{Error: "invalid request body"})
	}

	if _, err := a.sp.Auth.Register(c.Context(), req); err != nil {
		return a.formFailure(c, err, map[string]string{"username": req.Username, "email": req.Email})
	}

	return c.Redirect().Status(fiber.StatusSeeOther).To(services.PathLogin)
}

func (a *Adapter) login(c fiber.Ctx) error {
	var req core.LoginRequest
	if err := bindBody(c, &req, &req.Username, &req.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{Error: "invalid request body"})
	}

	result, err := a.sp.Auth.Login(c.Context(), req)
	if err != nil {
		return a.formFailure(c, err, map[string]string{"username": req.Username})
	}

	if err := a.cookies.write(c, sessionCookie, result.Token, result.Session.ExpiresAt); err != nil {
		return a.fail(c, err)
	}
	var keep string
	if client := clientFrom(c); client != nil {
		keep = client.ID
		_ = client.Do(func(s *services.ClientState) error {
			s.Gate.SignIn(result.Identity, result.Token, result.Session.ExpiresAt)
			s.Reset()
			return nil
		})
	}
	// the other sessions' rows are gone; their browsers must not stay signed in
	if a.sp.Sessions.Single() {
		a.sp.Clients.SignOutUser(result.Identity.ID, keep)
	}

	return c.Redirect().Status(fiber.StatusSeeOther).To(a.sp.Gate.LandingPath)
}

func (a *Adapter) logout(c fiber.Ctx) error {
	token, _ := a.cookies.read(c, sessionCookie)
	if err := a.sp.Auth.Logout(c.Context(), token); err != nil {
		return a.fail(c, err)
	}

	if client := clientFrom(c); client != nil {
		_ = client.Do(func(s *services.ClientState) error {
			s.Gate.SignOut()
			s.Reset()
			return nil
		})
		a.sp.Clients.Remove(client.ID)
	}
	a.cookies.clear(c, sessionCookie)
	a.cookies.clear(c, clientCookie)

	return c.Redirect().Status(fiber.StatusSeeOther).To(services.PathLanding)
}
