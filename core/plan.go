package core

import (
	"fmt"
	"slices"
)

// PlanStatus is display-only progress on a plan item. It is not persisted:
// every reload starts again from StatusNotStarted.
type PlanStatus string

const (
	StatusNotStarted PlanStatus = "Not Started"
	StatusInProgress PlanStatus = "In Progress"
	StatusCompleted  PlanStatus = "Completed"
)

var PlanStatuses = []PlanStatus{StatusNotStarted, StatusInProgress, StatusCompleted}

func ParsePlanStatus(s string) (PlanStatus, error) {
	status := PlanStatus(s)
	if !slices.Contains(PlanStatuses, status) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// UpdateStatus returns a copy of items with the status of itemID replaced.
// An unknown itemID leaves the list unchanged.
func UpdateStatus(items []PlanItem, itemID int64, status PlanStatus) ([]PlanItem, error) {
	if !slices.Contains(PlanStatuses, status) {
		return items, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	out := slices.Clone(items)
	for i := range out {
		if out[i].ID == itemID {
			out[i].Status = status
			break
		}
	}
	return out, nil
}
