// ABOUTME: Daily attendance as an idempotent toggle over presence records
// ABOUTME: Presence is the existence of a record; absence is its lack

package attendance

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

// recordNamespace scopes the name-based ids of attendance records
var recordNamespace = uuid.MustParse("6f1c2a0e-7d43-4b8e-9a55-3e2b1c0d9f17")

// RecordID returns the id given to the presence record of a student on a day.
func RecordID(studentID, date string) string {
	return uuid.NewSHA1(recordNamespace, []byte(studentID+"/"+date)).String()
}

// Service marks and reports attendance.
type Service struct {
	repos  *records.Repositories
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates an attendance Service. A nil logger uses slog.Default().
func NewService(repos *records.Repositories, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repos:  repos,
		logger: logger.With("component", "attendance"),
		now:    time.Now,
	}
}

// Today returns the current UTC day in DateLayout.
func (s *Service) Today() string {
	return s.now().UTC().Format(records.DateLayout)
}

func checkDate(date string) error {
	if !records.IsDate(date) {
		return records.NewValidationError(nil, records.FieldError{Field: "date", Message: "must be a date in YYYY-MM-DD form"})
	}
	return nil
}

// Toggle flips the presence of a student on a day and returns the new state.
// Applying it twice leaves the attendance collection as it was.
func (s *Service) Toggle(ctx context.Context, studentID, date string) (bool, error) {
	teacher, err := auth.RequireStaff(ctx)
	if err != nil {
		return false, err
	}
	if err := checkDate(date); err != nil {
		return false, err
	}
	if _, err := s.student(ctx, studentID); err != nil {
		return false, err
	}

	present := false
	err = s.repos.Attendance.Update(ctx, func(items []records.AttendanceRecord) ([]records.AttendanceRecord, error) {
		matches := func(r records.AttendanceRecord) bool {
			return r.StudentID == studentID && r.Date == date
		}

		if slices.ContainsFunc(items, func(r records.AttendanceRecord) bool { return matches(r) && r.IsPresent }) {
			return slices.DeleteFunc(items, matches), nil
		}

		// Stale absent records never count as presence and are replaced
		items = slices.DeleteFunc(items, matches)
		rec := records.AttendanceRecord{
			ID:        RecordID(studentID, date),
			StudentID: studentID,
			Date:      date,
			IsPresent: true,
		}
		present = true
		return slices.Insert(items, insertAt(items, rec), rec), nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Debug("attendance toggled", "student_id", studentID, "date", date, "present", present, "by", teacher.ID)
	return present, nil
}

// insertAt returns the index before the first record ordered after rec by
// (date, studentId).
func insertAt(items []records.AttendanceRecord, rec records.AttendanceRecord) int {
	for i, r := range items {
		if compareRecords(r, rec) > 0 {
			return i
		}
	}
	return len(items)
}

func compareRecords(a, b records.AttendanceRecord) int {
	return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.StudentID, b.StudentID))
}

// IsPresentOn reports whether a present record exists for the student and
// day. Staff may ask about anyone, a student only about themselves.
func (s *Service) IsPresentOn(ctx context.Context, studentID, date string) (bool, error) {
	if err := canRead(ctx, studentID); err != nil {
		return false, err
	}
	if err := checkDate(date); err != nil {
		return false, err
	}

	items, err := s.repos.Attendance.GetAll(ctx)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(items, func(r records.AttendanceRecord) bool {
		return r.StudentID == studentID && r.Date == date && r.IsPresent
	}), nil
}

// RosterEntry is one student's mark on a roster day.
type RosterEntry struct {
	Student records.Student
	Present bool
}

// Roster lists the students of a class section with their presence on date.
func (s *Service) Roster(ctx context.Context, class records.ClassName, section, date string) ([]RosterEntry, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	if err := checkDate(date); err != nil {
		return nil, err
	}

	students, err := s.repos.Students.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Attendance.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool)
	for _, r := range items {
		if r.Date == date && r.IsPresent {
			present[r.StudentID] = true
		}
	}

	out := []RosterEntry{}
	for _, st := range students {
		if st.Class == class && st.Section == section {
			out = append(out, RosterEntry{Student: st, Present: present[st.ID]})
		}
	}
	return out, nil
}

// History returns the days a student was present, newest first.
func (s *Service) History(ctx context.Context, studentID string) ([]records.AttendanceRecord, error) {
	if err := canRead(ctx, studentID); err != nil {
		return nil, err
	}

	items, err := s.repos.Attendance.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := []records.AttendanceRecord{}
	for _, r := range items {
		if r.StudentID == studentID && r.IsPresent {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b records.AttendanceRecord) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return out, nil
}

func canRead(ctx context.Context, studentID string) error {
	p := auth.FromContext(ctx)
	switch {
	case p == nil:
		return auth.ErrUnauthenticated
	case p.IsStaff():
		return nil
	case p.IsStudent() && p.Student.ID == studentID:
		return nil
	}
	return auth.ErrForbidden
}

func (s *Service) student(ctx context.Context, id string) (*records.Student, error) {
	students, err := s.repos.Students.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range students {
		if students[i].ID == id {
			return &students[i], nil
		}
	}
	return nil, records.ErrNotFound
}
