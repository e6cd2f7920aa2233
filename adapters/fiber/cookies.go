package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gorilla/securecookie"
)

const (
	sessionCookie = "session_id"
	clientCookie  = "client_id"
)

// cookieJar signs cookie values with the app secret so a forged or
// edited cookie reads as absent.
type cookieJar struct {
	codec  *securecookie.SecureCookie
	secure bool
}

func newCookieJar(secret string, secure bool) *cookieJar {
	codec := securecookie.New([]byte(secret), nil)
	// expiry is enforced server side
	codec.MaxAge(0)
	return &cookieJar{codec: codec, secure: secure}
}

// read returns the verified value of name. tampered is true when a
// cookie was sent but failed verification.
func (j *cookieJar) read(c fiber.Ctx, name string) (value string, tampered bool) {
	raw := c.Cookies(name)
	if raw == "" {
		return "", false
	}
	if err := j.codec.Decode(name, raw, &value); err != nil {
		return "", true
	}
	return value, false
}

// write sets a signed HttpOnly cookie. A zero expires makes it a browser-session cookie.
func (j *cookieJar) write(c fiber.Ctx, name, value string, expires time.Time) error {
	encoded, err := j.codec.Encode(name, value)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:        name,
		Value:       encoded,
		Path:        "/",
		Expires:     expires,
		SessionOnly: expires.IsZero(),
		HTTPOnly:    true,
		Secure:      j.secure,
		SameSite:    fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func (j *cookieJar) clear(c fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(1, 0),
		HTTPOnly: true,
		Secure:   j.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
