// ABOUTME: Weekly timetable maintenance and per-section lookup
// ABOUTME: Entries are listed by weekday then start time

package admin

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

// clockLayout is the HH:MM form of period start and end times
const clockLayout = "15:04"

// Timetable returns the entries for a class and section, sorted by day and
// start time. Empty filters match everything. Students only see their own
// section.
func (s *Service) Timetable(ctx context.Context, class records.ClassName, section string) ([]records.TimeTableEntry, error) {
	p := auth.FromContext(ctx)
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}
	if p.IsStudent() {
		class, section = p.Student.Class, p.Student.Section
	}

	entries, err := s.repos.Timetable.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := []records.TimeTableEntry{}
	for _, e := range entries {
		if class != "" && e.Class != class {
			continue
		}
		if section != "" && e.Section != section {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b records.TimeTableEntry) int {
		return cmp.Or(
			cmp.Compare(slices.Index(records.Weekdays, a.Day), slices.Index(records.Weekdays, b.Day)),
			cmp.Compare(a.StartTime, b.StartTime),
		)
	})
	return out, nil
}

// SaveTimetableEntry creates or replaces an entry.
func (s *Service) SaveTimetableEntry(ctx context.Context, entry records.TimeTableEntry) (*records.TimeTableEntry, error) {
	if _, err := auth.RequireHeadmaster(ctx); err != nil {
		return nil, err
	}
	if err := records.Validate(entry); err != nil {
		return nil, err
	}
	start, err := time.Parse(clockLayout, entry.StartTime)
	if err != nil {
		return nil, records.NewValidationError(nil, records.FieldError{Field: "startTime", Message: "must be a time in HH:MM form"})
	}
	end, err := time.Parse(clockLayout, entry.EndTime)
	if err != nil {
		return nil, records.NewValidationError(nil, records.FieldError{Field: "endTime", Message: "must be a time in HH:MM form"})
	}
	if !end.After(start) {
		return nil, records.NewValidationError(nil, records.FieldError{Field: "endTime", Message: "must be after the start time"})
	}
	// Zero-padded so entries sort by time as strings
	entry.StartTime, entry.EndTime = start.Format(clockLayout), end.Format(clockLayout)

	err = s.repos.Timetable.Update(ctx, func(items []records.TimeTableEntry) ([]records.TimeTableEntry, error) {
		if entry.ID != "" {
			for i := range items {
				if items[i].ID == entry.ID {
					items[i] = entry
					return items, nil
				}
			}
		} else {
			entry.ID = uuid.New().String()
		}
		return append(items, entry), nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteTimetableEntry removes an entry. A missing id is a no-op.
func (s *Service) DeleteTimetableEntry(ctx context.Context, id string) error {
	if _, err := auth.RequireHeadmaster(ctx); err != nil {
		return err
	}
	return s.repos.Timetable.Update(ctx, func(items []records.TimeTableEntry) ([]records.TimeTableEntry, error) {
		return slices.DeleteFunc(items, func(e records.TimeTableEntry) bool { return e.ID == id }), nil
	})
}
