// ABOUTME: Headmaster administration over teachers, staff, timetable and the school profile
// ABOUTME: Every mutation requires the headmaster principal in the context

package admin

import (
	"context"
	"errors"
	"log/slog"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

// ErrHeadmasterProtected is returned when an operation would remove the headmaster
var ErrHeadmasterProtected = errors.New("the headmaster record cannot be rejected")

// Service implements the approval workflow and the management console.
type Service struct {
	repos  *records.Repositories
	logger *slog.Logger
}

// New creates an admin Service. A nil logger uses slog.Default().
func New(repos *records.Repositories, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repos:  repos,
		logger: logger.With("component", "admin"),
	}
}

// SchoolProfile returns the stored school identity. Any signed-in principal
// may read it.
func (s *Service) SchoolProfile(ctx context.Context) (*records.SchoolInfo, error) {
	if auth.FromContext(ctx) == nil {
		return nil, auth.ErrUnauthenticated
	}
	info, err := s.repos.School.Get(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, records.ErrNotFound
	}
	return info, nil
}
