// ABOUTME: Staff approval workflow and direct teacher management
// ABOUTME: Pending and approved views are filters over the teacher collection by status

package admin

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

// Pending returns teachers awaiting approval in registration order.
func (s *Service) Pending(ctx context.Context) ([]records.Teacher, error) {
	return s.byStatus(ctx, records.StatusPending)
}

// Approved returns approved teachers, the headmaster included.
func (s *Service) Approved(ctx context.Context) ([]records.Teacher, error) {
	return s.byStatus(ctx, records.StatusApproved)
}

func (s *Service) byStatus(ctx context.Context, status records.TeacherStatus) ([]records.Teacher, error) {
	if _, err := auth.RequireHeadmaster(ctx); err != nil {
		return nil, err
	}
	teachers, err := s.repos.Teachers.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []records.Teacher{}
	for _, t := range teachers {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

// Approve marks a teacher APPROVED. An unknown id or an already approved
// teacher is left as is.
func (s *Service) Approve(ctx context.Context, teacherID string) error {
	hm, err := auth.RequireHeadmaster(ctx)
	if err != nil {
		return err
	}

	approved := false
	err = s.repos.Teachers.Update(ctx, func(teachers []records.Teacher) ([]records.Teacher, error) {
		for i := range teachers {
			if teachers[i].ID == teacherID && teachers[i].Status != records.StatusApproved {
				teachers[i].Status = records.StatusApproved
				approved = true
			}
		}
		return teachers, nil
	})
	if err != nil {
		return err
	}

	if approved {
		s.logger.Info("teacher approved", "teacher_id", teacherID, "by", hm.ID)
	} else {
		s.logger.Debug("approve was a no-op", "teacher_id", teacherID)
	}
	return nil
}

// Reject deletes a teacher record. An unknown id is a no-op. The headmaster
// cannot be rejected.
func (s *Service) Reject(ctx context.Context, teacherID string) error {
	hm, err := auth.RequireHeadmaster(ctx)
	if err != nil {
		return err
	}

	removed := 0
	err = s.repos.Teachers.Update(ctx, func(teachers []records.Teacher) ([]records.Teacher, error) {
		kept := teachers[:0]
		for _, t := range teachers {
			if t.ID != teacherID {
				kept = append(kept, t)
				continue
			}
			if t.IsHeadmaster {
				return nil, ErrHeadmasterProtected
			}
			removed++
		}
		return kept, nil
	})
	if err != nil {
		return err
	}

	if removed > 0 {
		s.logger.Info("teacher rejected", "teacher_id", teacherID, "by", hm.ID)
	}
	return nil
}

// TeacherInput is the headmaster's teacher form. An empty ID creates a
// teacher; an empty Pin on edit keeps the stored pin.
type TeacherInput struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Designation string `json:"designation"`
	Contact     string `json:"contact"`
	Pin         string `json:"pin"`
}

// SaveTeacher creates or edits a teacher directly. Saved teachers are
// APPROVED; the headmaster flag of an existing record is preserved. Editing
// an unknown id is a no-op and returns nil.
func (s *Service) SaveTeacher(ctx context.Context, in TeacherInput) (*records.Teacher, error) {
	if _, err := auth.RequireHeadmaster(ctx); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := records.Validate(in); err != nil {
		return nil, err
	}

	var saved *records.Teacher
	err := s.repos.Teachers.Update(ctx, func(teachers []records.Teacher) ([]records.Teacher, error) {
		idx := -1
		if in.ID != "" {
			idx = slices.IndexFunc(teachers, func(t records.Teacher) bool { return t.ID == in.ID })
			if idx < 0 {
				return teachers, nil
			}
		}

		for _, t := range teachers {
			if t.ID != in.ID && t.EmailMatches(in.Email) {
				return nil, auth.ErrDuplicateEmail
			}
		}

		t := records.Teacher{
			ID:          in.ID,
			Name:        in.Name,
			Email:       in.Email,
			Role:        records.UserRoleTeacher,
			Designation: in.Designation,
			Contact:     in.Contact,
			Pin:         in.Pin,
			Status:      records.StatusApproved,
		}
		if idx >= 0 {
			t.IsHeadmaster = teachers[idx].IsHeadmaster
			if t.Pin == "" {
				t.Pin = teachers[idx].Pin
			}
		}
		if err := records.Validate(t); err != nil {
			return nil, err
		}

		saved = &t
		if idx >= 0 {
			teachers[idx] = t
			return teachers, nil
		}
		saved.ID = uuid.New().String()
		return append(teachers, *saved), nil
	})
	if err != nil {
		return nil, err
	}

	if saved == nil {
		s.logger.Debug("save teacher was a no-op", "teacher_id", in.ID)
		return nil, nil
	}
	s.logger.Info("teacher saved", "teacher_id", saved.ID)
	return saved, nil
}
