// ABOUTME: Per-section lesson logs posted by staff and read by students of that section
// ABOUTME: Logs are kept newest first; summaries and homework render from Markdown

package classlog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

// Input is the lesson log form.
type Input struct {
	Date          string            `json:"date"`
	Class         records.ClassName `json:"class"`
	Section       string            `json:"section"`
	Subject       string            `json:"subject"`
	LessonSummary string            `json:"lessonSummary"`
	Homework      string            `json:"homework"`
}

// Service posts and reads class logs.
type Service struct {
	repos  *records.Repositories
	logger *slog.Logger
}

// NewService creates a class log Service. A nil logger uses slog.Default().
func NewService(repos *records.Repositories, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repos:  repos,
		logger: logger.With("component", "classlog"),
	}
}

// Post records a lesson. The newest log comes first.
func (s *Service) Post(ctx context.Context, in Input) (*records.ClassLog, error) {
	teacher, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	log := records.ClassLog{
		ID:            uuid.New().String(),
		Date:          strings.TrimSpace(in.Date),
		Class:         in.Class,
		Section:       in.Section,
		Subject:       strings.TrimSpace(in.Subject),
		LessonSummary: strings.TrimSpace(in.LessonSummary),
		Homework:      strings.TrimSpace(in.Homework),
	}
	if err := records.Validate(log); err != nil {
		return nil, err
	}

	err = s.repos.ClassLogs.Update(ctx, func(items []records.ClassLog) ([]records.ClassLog, error) {
		return append([]records.ClassLog{log}, items...), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("class log posted", "log_id", log.ID, "class", log.Class, "section", log.Section, "by", teacher.ID)
	return &log, nil
}

// Visible returns the logs the principal may read: everything for staff,
// only their own section for a student.
func (s *Service) Visible(ctx context.Context) ([]records.ClassLog, error) {
	p := auth.FromContext(ctx)
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}

	items, err := s.repos.ClassLogs.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if p.IsStaff() {
		return items, nil
	}
	if !p.IsStudent() {
		return nil, auth.ErrForbidden
	}

	out := []records.ClassLog{}
	for _, l := range items {
		if l.Class == p.Student.Class && l.Section == p.Student.Section {
			out = append(out, l)
		}
	}
	return out, nil
}

// Rendered holds the HTML of a log's free-text fields.
type Rendered struct {
	LessonSummary string
	Homework      string
}

// RenderHTML converts the lesson summary and homework from Markdown. Raw
// HTML in the source is not passed through.
func RenderHTML(log records.ClassLog) (Rendered, error) {
	summary, err := markdown(log.LessonSummary)
	if err != nil {
		return Rendered{}, fmt.Errorf("rendering lesson summary: %w", err)
	}
	homework, err := markdown(log.Homework)
	if err != nil {
		return Rendered{}, fmt.Errorf("rendering homework: %w", err)
	}
	return Rendered{LessonSummary: summary, Homework: homework}, nil
}

func markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
