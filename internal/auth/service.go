// ABOUTME: Identity and session service: first-run setup, school discovery, login, registration
// ABOUTME: The session principal is persisted so it survives restarts and is cleared on logout

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/schoolbook/internal/records"
	"github.com/2389/schoolbook/internal/store"
)

// Service owns the session lifecycle: load at init, set on login or setup,
// cleared on logout.
type Service struct {
	repos   *records.Repositories
	session *records.Document[Principal]
	logger  *slog.Logger
}

// NewService creates a Service over repos. A nil logger uses slog.Default().
func NewService(repos *records.Repositories, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repos:   repos,
		session: records.NewDocument[Principal](repos, store.KeySession),
		logger:  logger.With("component", "auth"),
	}
}

// NeedsSetup reports whether no headmaster exists yet.
func (s *Service) NeedsSetup(ctx context.Context) (bool, error) {
	teachers, err := s.repos.Teachers.GetAll(ctx)
	if err != nil {
		return false, err
	}
	return !records.HasHeadmaster(teachers), nil
}

// SetupRequest is the first-run form creating the school and its headmaster.
type SetupRequest struct {
	SchoolName     string `json:"schoolName" validate:"required"`
	AccessCode     string `json:"accessCode" validate:"accesscode"`
	HeadmasterName string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Pin            string `json:"pin" validate:"required"`
	Contact        string `json:"contact"`
}

// Setup creates the school identity and the headmaster in one write and
// signs the headmaster in. It fails with ErrAlreadySetUp once a headmaster
// exists.
func (s *Service) Setup(ctx context.Context, req SetupRequest) (*Principal, error) {
	req.SchoolName = strings.TrimSpace(req.SchoolName)
	req.HeadmasterName = strings.TrimSpace(req.HeadmasterName)
	req.Email = strings.TrimSpace(req.Email)
	if err := records.Validate(req); err != nil {
		return nil, err
	}

	headmaster := records.Teacher{
		ID:           uuid.New().String(),
		Name:         req.HeadmasterName,
		Email:        req.Email,
		Role:         records.UserRoleTeacher,
		IsHeadmaster: true,
		Designation:  records.HeadmasterDesignation,
		Contact:      req.Contact,
		Pin:          req.Pin,
		Status:       records.StatusApproved,
	}
	info := records.SchoolInfo{Name: req.SchoolName, AccessCode: req.AccessCode}

	if err := s.repos.Bootstrap(ctx, info, headmaster); err != nil {
		return nil, err
	}

	p := StaffPrincipal(headmaster)
	if err := s.session.Put(ctx, *p); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.logger.Info("school set up", "school", info.Name, "headmaster_id", headmaster.ID)
	return p, nil
}

// Discover checks an access code against the stored school. Success yields
// the Gate through which login and registration are reached. It fails with
// ErrSetupRequired while no headmaster exists.
func (s *Service) Discover(ctx context.Context, code string) (*Gate, error) {
	if !records.IsAccessCode(code) {
		return nil, records.NewValidationError(ErrInvalidAccessCode,
			records.FieldError{Field: "accessCode", Message: "must be exactly 6 digits"})
	}

	needsSetup, err := s.NeedsSetup(ctx)
	if err != nil {
		return nil, err
	}
	if needsSetup {
		return nil, ErrSetupRequired
	}

	info, err := s.repos.School.Get(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil || info.AccessCode != code {
		s.logger.Debug("access code rejected")
		return nil, ErrInvalidAccessCode
	}

	return &Gate{svc: s, school: *info}, nil
}

// Current returns the persisted session principal, or nil when signed out.
func (s *Service) Current(ctx context.Context) (*Principal, error) {
	return s.session.Get(ctx)
}

// Logout clears the session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("signed out")
	return nil
}

func (s *Service) signIn(ctx context.Context, p *Principal) error {
	if err := s.session.Put(ctx, *p); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	s.logger.Info("signed in", "role", p.Role, "principal_id", p.ID())
	return nil
}
