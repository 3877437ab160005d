// ABOUTME: Gate is the authentication stage reached only after a successful discovery
// ABOUTME: Handles staff and student login plus self-service staff registration

package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/schoolbook/internal/records"
)

// Gate is the authentication stage for one discovered school.
type Gate struct {
	svc    *Service
	school records.SchoolInfo
}

// School returns the discovered school.
func (g *Gate) School() records.SchoolInfo {
	return g.school
}

// Credentials identify a principal. Staff use email and pin, students use
// roll number and password.
type Credentials struct {
	Role       Role   `json:"role" validate:"oneof=staff student"`
	Identifier string `json:"identifier" validate:"required"`
	Secret     string `json:"secret" validate:"required"`
}

// Login authenticates against the stored teachers or students and persists
// the session on success.
func (g *Gate) Login(ctx context.Context, c Credentials) (*Principal, error) {
	c.Identifier = strings.TrimSpace(c.Identifier)
	if err := records.Validate(c); err != nil {
		return nil, err
	}

	var p *Principal
	switch c.Role {
	case RoleStaff:
		teachers, err := g.svc.repos.Teachers.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range teachers {
			if t.EmailMatches(c.Identifier) && t.Pin == c.Secret {
				if t.Status == records.StatusPending {
					g.svc.logger.Info("login refused pending approval", "teacher_id", t.ID)
					return nil, ErrPendingApproval
				}
				p = StaffPrincipal(t)
				break
			}
		}
	case RoleStudent:
		students, err := g.svc.repos.Students.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, st := range students {
			if st.RollNumber == c.Identifier && st.Password == c.Secret {
				p = StudentPrincipal(st)
				break
			}
		}
	}

	if p == nil {
		return nil, ErrInvalidCredentials
	}
	if err := g.svc.signIn(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Registration is the self-service staff sign-up form.
type Registration struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Designation string `json:"designation"`
	Contact     string `json:"contact"`
	Pin         string `json:"pin" validate:"required"`
}

// RegisterStaff appends a PENDING teacher. It fails with ErrDuplicateEmail
// when any teacher already uses the email, compared case-insensitively. No
// session is established.
func (g *Gate) RegisterStaff(ctx context.Context, r Registration) (*records.Teacher, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if err := records.Validate(r); err != nil {
		return nil, err
	}

	teacher := records.Teacher{
		ID:          uuid.New().String(),
		Name:        r.Name,
		Email:       r.Email,
		Role:        records.UserRoleTeacher,
		Designation: r.Designation,
		Contact:     r.Contact,
		Pin:         r.Pin,
		Status:      records.StatusPending,
	}

	err := g.svc.repos.Teachers.Update(ctx, func(teachers []records.Teacher) ([]records.Teacher, error) {
		for _, t := range teachers {
			if t.EmailMatches(teacher.Email) {
				return nil, ErrDuplicateEmail
			}
		}
		return append(teachers, teacher), nil
	})
	if err != nil {
		return nil, err
	}

	g.svc.logger.Info("staff registered", "teacher_id", teacher.ID, "email", teacher.Email)
	return &teacher, nil
}
