package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lborres/studyplan/core"
)

const examDateLayout = "2006-01-02"

var ErrInvalidCatalog = errors.New("invalid catalog file")

type CatalogService struct {
	db core.CatalogStorage
}

func NewCatalogService(db core.CatalogStorage) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListLevels(ctx context.Context) ([]string, error) {
	levels, err := s.db.ListLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	return levels, nil
}

func (s *CatalogService) ListBoards(ctx context.Context, level string) ([]string, error) {
	boards, err := s.db.ListBoards(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, nil
}

func (s *CatalogService) ListSubjects(ctx context.Context, level, board string) ([]core.Subject, error) {
	subjects, err := s.db.ListSubjects(ctx, level, board)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *CatalogService) ListTopics(ctx context.Context, subjectID int64) ([]core.Topic, error) {
	topics, err := s.db.ListTopics(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

// ChangeSelection applies one form change and loads the options for the
// step it unlocks. On error the form is returned unchanged.
func (s *CatalogService) ChangeSelection(ctx context.Context, form core.PlanForm, field core.Field, value string) (core.PlanForm, error) {
	next, err := form.Apply(field, value)
	if err != nil {
		return form, err
	}

	switch field {
	case core.FieldLevel:
		if next.Selection.Level != "" {
			if next.Boards, err = s.ListBoards(ctx, next.Selection.Level); err != nil {
				return form, err
			}
		}
	case core.FieldBoard:
		if next.Selection.Board != "" {
			if next.Subjects, err = s.ListSubjects(ctx, next.Selection.Level, next.Selection.Board); err != nil {
				return form, err
			}
		}
	case core.FieldSubject:
		if next.Topics, err = s.ListTopics(ctx, next.Selection.SubjectID); err != nil {
			return form, err
		}
	}

	return next, nil
}

type catalogFile struct {
	Subjects []struct {
		Level    string `yaml:"level"`
		Board    string `yaml:"board"`
		Subject  string `yaml:"subject"`
		ExamCode string `yaml:"examcode"`
		ExamDate string `yaml:"examdate"`
		Topics   []struct {
			Topic string `yaml:"topic"`
			Size  string `yaml:"size"`
			Hours int    `yaml:"hours"`
		} `yaml:"topics"`
	} `yaml:"subjects"`
}

// Import reads a YAML catalog and upserts its subjects and topics.
//
//	subjects:
//	  - level: GCSE
//	    board: AQA
//	    subject: Mathematics
//	    examcode: "8300"
//	    examdate: "2026-05-14"
//	    topics:
//	      - {topic: Algebra, size: Large, hours: 5}
func (s *CatalogService) Import(ctx context.Context, r io.Reader) (core.ImportStats, error) {
	seeds, err := ParseCatalog(r)
	if err != nil {
		return core.ImportStats{}, err
	}

	stats, err := s.db.ImportCatalog(ctx, seeds)
	if err != nil {
		return core.ImportStats{}, fmt.Errorf("failed to import catalog: %w", err)
	}
	return stats, nil
}

func ParseCatalog(r io.Reader) ([]core.SubjectSeed, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	seeds := make([]core.SubjectSeed, 0, len(file.Subjects))
	for i, entry := range file.Subjects {
		level := strings.TrimSpace(entry.Level)
		board := strings.TrimSpace(entry.Board)
		name := strings.TrimSpace(entry.Subject)
		if level == "" || board == "" || name == "" {
			return nil, fmt.Errorf("%w: subject %d needs level, board and subject", ErrInvalidCatalog, i+1)
		}

		examDate, err := time.Parse(examDateLayout, strings.TrimSpace(entry.ExamDate))
		if err != nil {
			return nil, fmt.Errorf("%w: %s examdate: %v", ErrInvalidCatalog, name, err)
		}

		seed := core.SubjectSeed{
			Subject: core.Subject{
				Level:    level,
				Board:    board,
				Name:     name,
				ExamCode: strings.TrimSpace(entry.ExamCode),
				ExamDate: examDate,
			},
		}
		for _, t := range entry.Topics {
			topic := strings.TrimSpace(t.Topic)
			if topic == "" {
				return nil, fmt.Errorf("%w: %s has a topic without a name", ErrInvalidCatalog, name)
			}
			if t.Hours < 0 {
				return nil, fmt.Errorf("%w: %s/%s has negative hours", ErrInvalidCatalog, name, topic)
			}
			seed.Topics = append(seed.Topics, core.Topic{Name: topic, Size: t.Size, Hours: t.Hours})
		}
		seeds = append(seeds, seed)
	}

	return seeds, nil
}
