// ABOUTME: Non-login staff directory maintained by the headmaster
// ABOUTME: Upsert by id and delete; a missing id on delete is a no-op

package admin

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

// ListStaff returns the staff directory. Any staff principal may read it.
func (s *Service) ListStaff(ctx context.Context) ([]records.Staff, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	return s.repos.Staff.GetAll(ctx)
}

// SaveStaff creates the member when ID is empty or unknown, otherwise
// replaces it in place.
func (s *Service) SaveStaff(ctx context.Context, member records.Staff) (*records.Staff, error) {
	if _, err := auth.RequireHeadmaster(ctx); err != nil {
		return nil, err
	}

	member.Name = strings.TrimSpace(member.Name)
	if err := records.Validate(member); err != nil {
		return nil, err
	}

	err := s.repos.Staff.Update(ctx, func(items []records.Staff) ([]records.Staff, error) {
		if member.ID != "" {
			for i := range items {
				if items[i].ID == member.ID {
					items[i] = member
					return items, nil
				}
			}
		} else {
			member.ID = uuid.New().String()
		}
		return append(items, member), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("staff saved", "staff_id", member.ID)
	return &member, nil
}

// DeleteStaff removes a staff member.
func (s *Service) DeleteStaff(ctx context.Context, id string) error {
	if _, err := auth.RequireHeadmaster(ctx); err != nil {
		return err
	}
	return s.repos.Staff.Update(ctx, func(items []records.Staff) ([]records.Staff, error) {
		kept := items[:0]
		for _, m := range items {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		return kept, nil
	})
}
