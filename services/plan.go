package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lborres/studyplan/core"
)

type PlanService struct {
	plans   core.PlanStorage
	catalog *CatalogService
}

func NewPlanService(plans core.PlanStorage, catalog *CatalogService) *PlanService {
	return &PlanService{plans: plans, catalog: catalog}
}

// Generate replaces userID's plan with one row per selected topic and
// returns the reloaded plan. With no subject or no topics selected it
// does nothing and returns nil.
func (s *PlanService) Generate(ctx context.Context, userID int64, form core.PlanForm) ([]core.PlanItem, error) {
	sel := form.Selection
	if sel.SubjectID == 0 || len(sel.TopicIDs) == 0 {
		return nil, nil
	}

	subject, ok := form.SelectedSubject()
	if !ok {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidSubject, sel.SubjectID)
	}

	topics := form.SelectedTopics()
	if len(topics) == 0 {
		return nil, nil
	}

	rows := make([]core.PlanRow, 0, len(topics))
	for _, t := range topics {
		rows = append(rows, core.PlanRow{
			StudentID: userID,
			Level:     sel.Level,
			Subject:   t.Name,
			ExamBoard: sel.Board,
			ExamCode:  subject.ExamCode,
			ExamDate:  sel.ExamDate,
		})
	}

	if err := s.plans.ReplacePlan(ctx, userID, rows); err != nil {
		return nil, fmt.Errorf("failed to replace plan: %w", err)
	}

	return s.Load(ctx, userID)
}

// Load returns the stored plan with every status reset to Not Started.
func (s *PlanService) Load(ctx context.Context, userID int64) ([]core.PlanItem, error) {
	items, err := s.plans.ListPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	for i := range items {
		items[i].Status = core.StatusNotStarted
	}
	return items, nil
}

func (s *PlanService) Delete(ctx context.Context, userID int64) (int, error) {
	n, err := s.plans.DeletePlan(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete plan: %w", err)
	}
	return n, nil
}

// Page is what the plan page needs on entry
type Page struct {
	Levels []string
	Items  []core.PlanItem
}

// LoadPage fetches the level list and the user's plan concurrently.
func (s *PlanService) LoadPage(ctx context.Context, userID int64) (*Page, error) {
	var page Page
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		levels, err := s.catalog.ListLevels(ctx)
		page.Levels = levels
		return err
	})
	g.Go(func() error {
		items, err := s.Load(ctx, userID)
		page.Items = items
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &page, nil
}
