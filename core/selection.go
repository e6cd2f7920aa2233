package core

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Field is one step of the level -> board -> subject -> topic cascade
type Field int

const (
	FieldLevel Field = iota + 1
	FieldBoard
	FieldSubject
	FieldTopic
)

func (f Field) String() string {
	switch f {
	case FieldLevel:
		return "level"
	case FieldBoard:
		return "board"
	case FieldSubject:
		return "subject"
	case FieldTopic:
		return "topic"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

func ParseField(s string) (Field, error) {
	switch s {
	case "level":
		return FieldLevel, nil
	case "board":
		return FieldBoard, nil
	case "subject":
		return FieldSubject, nil
	case "topic":
		return FieldTopic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Selection is what the user has picked so far
type Selection struct {
	Level     string    `json:"level"`
	Board     string    `json:"board"`
	SubjectID int64     `json:"subjectId"`
	ExamDate  time.Time `json:"examDate"`
	// TopicIDs is a set kept sorted; selection order is not significant.
	TopicIDs []int64 `json:"topicIds"`
}

// Apply returns the selection after field changes to value. Every field
// downstream of the changed one is cleared; toggling a topic only flips that
// topic's membership.
func (s Selection) Apply(field Field, value string) (Selection, error) {
	switch field {
	case FieldLevel:
		return Selection{Level: value}, nil

	case FieldBoard:
		return Selection{Level: s.Level, Board: value}, nil

	case FieldSubject:
		id, err := parseID(value, ErrInvalidSubject)
		if err != nil {
			return s, err
		}
		return Selection{Level: s.Level, Board: s.Board, SubjectID: id}, nil

	case FieldTopic:
		id, err := parseID(value, ErrInvalidTopic)
		if err != nil {
			return s, err
		}
		next := s
		next.TopicIDs = toggle(s.TopicIDs, id)
		return next, nil
	}

	return s, fmt.Errorf("%w: %s", ErrUnknownField, field)
}

func (s Selection) HasTopic(id int64) bool {
	_, found := slices.BinarySearch(s.TopicIDs, id)
	return found
}

func toggle(ids []int64, id int64) []int64 {
	out := slices.Clone(ids)
	i, found := slices.BinarySearch(out, id)
	if found {
		return slices.Delete(out, i, i+1)
	}
	return slices.Insert(out, i, id)
}

func parseID(value string, invalid error) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", invalid, value)
	}
	return id, nil
}

// PlanForm is the whole plan-page form: the selection plus the catalog
// options currently offered at each step.
type PlanForm struct {
	Selection Selection `json:"selection"`
	Levels    []string  `json:"levels"`
	Boards    []string  `json:"boards"`
	Subjects  []Subject `json:"subjects"`
	Topics    []Topic   `json:"topics"`
}

// Apply runs the selection cascade and drops the options that belonged to the
// cleared steps. Picking a subject snapshots its exam date.
func (f PlanForm) Apply(field Field, value string) (PlanForm, error) {
	sel, err := f.Selection.Apply(field, value)
	if err != nil {
		return f, err
	}

	next := f
	next.Selection = sel

	switch field {
	case FieldLevel:
		next.Boards = nil
		next.Subjects = nil
		next.Topics = nil
	case FieldBoard:
		next.Subjects = nil
		next.Topics = nil
	case FieldSubject:
		subject, ok := f.subject(sel.SubjectID)
		if !ok {
			return f, fmt.Errorf("%w: %d", ErrInvalidSubject, sel.SubjectID)
		}
		next.Selection.ExamDate = subject.ExamDate
		next.Topics = nil
	case FieldTopic:
		id, _ := strconv.ParseInt(value, 10, 64)
		if !f.offersTopic(id) {
			return f, fmt.Errorf("%w: %d", ErrInvalidTopic, id)
		}
	}

	return next, nil
}

// SelectedSubject returns the chosen subject if it is among the offered ones.
func (f PlanForm) SelectedSubject() (Subject, bool) {
	return f.subject(f.Selection.SubjectID)
}

// SelectedTopics returns the offered topics that are selected, in offer order.
func (f PlanForm) SelectedTopics() []Topic {
	var out []Topic
	for _, t := range f.Topics {
		if f.Selection.HasTopic(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

func (f PlanForm) TotalHours() int {
	return TotalHours(f.Selection.TopicIDs, f.Topics)
}

func (f PlanForm) subject(id int64) (Subject, bool) {
	for _, s := range f.Subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

func (f PlanForm) offersTopic(id int64) bool {
	for _, t := range f.Topics {
		if t.ID == id {
			return true
		}
	}
	return false
}

// TotalHours sums the hours of the topics whose id is selected.
func TotalHours(selected []int64, topics []Topic) int {
	total := 0
	for _, t := range topics {
		if slices.Contains(selected, t.ID) {
			total += t.Hours
		}
	}
	return total
}
