package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/studyplan"
)

type Adapter struct {
	app     *fiber.App
	sp      *studyplan.App
	cookies *cookieJar
}

var _ studyplan.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

// RegisterRoutes mounts every endpoint in the registry behind the gate.
// Each endpoint's OperationID must have a handler here.
func (a *Adapter) RegisterRoutes(sp *studyplan.App) error {
	a.sp = sp
	a.cookies = newCookieJar(sp.Secret, sp.CookieSecure)

	handlers := a.handlers()
	for _, ep := range sp.Endpoints.Endpoints() {
		h, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no fiber handler for %s %s (%s)", ep.Method, ep.Path, ep.Metadata.OperationID)
		}
		a.app.Add([]string{ep.Method}, ep.Path, a.gate, h)
	}

	return nil
}

func (a *Adapter) handlers() map[string]fiber.Handler {
	return map[string]fiber.Handler{
		"landing":    a.landing,
		"signupPage": a.signupPage,
		"signup":     a.signup,
		"loginPage":  a.loginPage,
		"login":      a.login,
		"logout":     a.logout,
		"home":       a.home,

		"planPage":      a.withClient(a.planPage),
		"selectLevel":   a.withClient(a.selectLevel),
		"selectBoard":   a.withClient(a.selectBoard),
		"selectSubject": a.withClient(a.selectSubject),
		"toggleTopic":   a.withClient(a.toggleTopic),
		"generatePlan":  a.withClient(a.generatePlan),
		"deletePlan":    a.withClient(a.deletePlan),
		"updateStatus":  a.withClient(a.updateStatus),
	}
}
