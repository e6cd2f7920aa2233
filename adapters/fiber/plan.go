package fiber

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/studyplan/core"
	"github.com/lborres/studyplan/services"
)

type levelInput struct {
	Level string `json:"level" form:"level"`
}

type boardInput struct {
	Board string `json:"board" form:"board"`
}

type subjectInput struct {
	SubjectID string `json:"subject_id" form:"subject_id"`
}

type statusInput struct {
	Status string `json:"status" form:"status"`
}

type deleteInput struct {
	// KeepDisplay leaves the displayed items in place after the rows are gone.
	KeepDisplay bool `json:"keep_display" form:"keep_display"`
}

// renderPlan answers every plan action with the whole page. err, if any,
// is shown inline with its status.
func renderPlan(c fiber.Ctx, s *services.ClientState, err error) error {
	view := newPlanView(s)
	if err == nil {
		return c.JSON(view)
	}

	status, body := errorResponse(c, err)
	view.Error = body.Error
	return c.Status(status).JSON(view)
}

func userID(s *services.ClientState) int64 {
	return s.Gate.Identity().ID
}

// planPage is page entry: a fresh form, the level list and the stored plan.
func (a *Adapter) planPage(c fiber.Ctx, s *services.ClientState) error {
	page, err := a.sp.Plans.LoadPage(c.Context(), userID(s))
	if err != nil {
		return a.fail(c, err)
	}

	s.Form = core.PlanForm{Levels: page.Levels}
	s.Items = page.Items
	return renderPlan(c, s, nil)
}

func (a *Adapter) changeSelection(c fiber.Ctx, s *services.ClientState, field core.Field, value string) error {
	form, err := a.sp.Catalog.ChangeSelection(c.Context(), s.Form, field, value)
	if err != nil {
		return renderPlan(c, s, err)
	}
	s.Form = form
	return renderPlan(c, s, nil)
}

func (a *Adapter) selectLevel(c fiber.Ctx, s *services.ClientState) error {
	var in levelInput
	if err := bindBody(c, &in, &in.Level); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{Error: "invalid request body"})
	}
	return a.changeSelection(c, s, core.FieldLevel, in.Level)
}

func (a *Adapter) selectBoard(c fiber.Ctx, s *services.ClientState) error {
	var in boardInput
	if err := bindBody(c, &in, &in.Board); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{Error: "invalid request body"})
	}
	return a.changeSelection(c, s, core.FieldBoard, in.Board)
}

func (a *Adapter) selectSubject(c fiber.Ctx, s *services.ClientState) error {
	var in subjectInput
	if err := bindBody(c, &in, &in.SubjectID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{Error: "invalid request body"})
	}
	return a.changeSelection(c, s, core.FieldSubject, in.SubjectID)
}

func (a *Adapter) toggleTopic(c fiber.Ctx, s *services.ClientState) error {
	return a.changeSelection(c, s, core.FieldTopic, c.Params("id"))
}

func (a *Adapter) generatePlan(c fiber.Ctx, s *services.ClientState) error {
	items, err := a.sp.Plans.Generate(c.Context(), userID(s), s.Form)
	if err != nil {
		return renderPlan(c, s, err)
	}
	// nil means nothing was selected and nothing changed
	if items != nil {
		s.Items = items
	}
	return renderPlan(c, s, nil)
}

func (a *Adapter) deletePlan(c fiber.Ctx, s *services.ClientState) error {
	var in deleteInput
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{Error: "invalid request body"})
		}
	}

	if _, err := a.sp.Plans.Delete(c.Context(), userID(s)); err != nil {
		return renderPlan(c, s, err)
	}
	if !in.KeepDisplay {
		s.Items = nil
	}
	return renderPlan(c, s, nil)
}

func (a *Adapter) updateStatus(c fiber.Ctx, s *services.ClientState) error {
	var in statusInput
	if err := bindBody(c, &in, &in.Status); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{Error: "invalid request body"})
	}

	// an id that is not in the list is a no-op, like an unknown one
	itemID, _ := strconv.ParseInt(c.Params("id"), 10, 64)

	items, err := core.UpdateStatus(s.Items, itemID, core.PlanStatus(in.Status))
	if err != nil {
		return renderPlan(c, s, err)
	}
	s.Items = items
	return renderPlan(c, s, nil)
}
