package fiber

import (
	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/services"
)

// Views are the JSON models the presentation layer renders.

type landingView struct {
	Authenticated bool           `json:"authenticated"`
	User          *core.Identity `json:"user,omitempty"`
}

type formView struct {
	Form  map[string]string `json:"form"`
	Error string            `json:"error,omitempty"`
	Kind  string            `json:"kind,omitempty"`
}

type homeView struct {
	User *core.User `json:"user"`
}

type planView struct {
	User       *core.Identity    `json:"user"`
	Selection  core.Selection    `json:"selection"`
	Levels     []string          `json:"levels"`
	Boards     []string          `json:"boards"`
	Subjects   []core.Subject    `json:"subjects"`
	Topics     []core.Topic      `json:"topics"`
	TotalHours int               `json:"totalHours"`
	Items      []core.PlanItem   `json:"items"`
	Statuses   []core.PlanStatus `json:"statuses"`
	Error      string            `json:"error,omitempty"`
}

func newPlanView(s *services.ClientState) planView {
	return planView{
		User:       s.Gate.Identity(),
		Selection:  s.Form.Selection,
		Levels:     s.Form.Levels,
		Boards:     s.Form.Boards,
		Subjects:   s.Form.Subjects,
		Topics:     s.Form.Topics,
		TotalHours: s.Form.TotalHours(),
		Items:      s.Items,
		Statuses:   core.PlanStatuses,
	}
}
