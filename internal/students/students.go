// ABOUTME: Student directory maintained by staff: enroll, edit, delete, list and search
// ABOUTME: Roll numbers are unique across the school; photos are bounded data URLs

package students

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

// ErrDuplicateRollNumber is returned when another student already has the roll number
var ErrDuplicateRollNumber = errors.New("duplicate roll number")

// Input is the enrollment form. Password is only used on create and
// defaults to records.DefaultStudentPassword.
type Input struct {
	Name         string            `json:"name"`
	RollNumber   string            `json:"rollNumber"`
	FatherName   string            `json:"fatherName"`
	ParentMobile string            `json:"parentMobile"`
	Class        records.ClassName `json:"class"`
	Section      string            `json:"section"`
	Password     string            `json:"password"`
	Photo        string            `json:"photo"`
}

// Service manages the student directory.
type Service struct {
	repos  *records.Repositories
	logger *slog.Logger
}

// NewService creates a student Service. A nil logger uses slog.Default().
func NewService(repos *records.Repositories, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repos:  repos,
		logger: logger.With("component", "students"),
	}
}

func (in Input) student(id string) records.Student {
	return records.Student{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		RollNumber:   strings.TrimSpace(in.RollNumber),
		FatherName:   strings.TrimSpace(in.FatherName),
		ParentMobile: strings.TrimSpace(in.ParentMobile),
		Class:        in.Class,
		Section:      in.Section,
		Password:     in.Password,
		Photo:        in.Photo,
	}
}

func validate(s records.Student) error {
	if err := records.Validate(s); err != nil {
		return err
	}
	return checkPhoto(s.Photo)
}

// checkPhoto bounds an inline data URL photo to records.MaxPhotoBytes once
// decoded. Plain URLs are stored as given.
func checkPhoto(photo string) error {
	if !strings.HasPrefix(photo, "data:") {
		return nil
	}
	tooLarge := records.NewValidationError(nil, records.FieldError{Field: "photo", Message: "photo too large (>1MB)"})

	_, payload, ok := strings.Cut(photo, ",")
	if !ok {
		return records.NewValidationError(nil, records.FieldError{Field: "photo", Message: "must be a data URL"})
	}
	if !strings.Contains(photo[:len(photo)-len(payload)], ";base64") {
		if len(payload) > records.MaxPhotoBytes {
			return tooLarge
		}
		return nil
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > records.MaxPhotoBytes+2 {
		return tooLarge
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return records.NewValidationError(nil, records.FieldError{Field: "photo", Message: "must be valid base64"})
	}
	if len(decoded) > records.MaxPhotoBytes {
		return tooLarge
	}
	return nil
}

func rollTaken(students []records.Student, roll, exceptID string) bool {
	return slices.ContainsFunc(students, func(s records.Student) bool {
		return s.RollNumber == roll && s.ID != exceptID
	})
}

// Create enrolls a student.
func (s *Service) Create(ctx context.Context, in Input) (*records.Student, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}

	st := in.student(uuid.New().String())
	if st.Password == "" {
		st.Password = records.DefaultStudentPassword
	}
	if err := validate(st); err != nil {
		return nil, err
	}

	err := s.repos.Students.Update(ctx, func(items []records.Student) ([]records.Student, error) {
		if rollTaken(items, st.RollNumber, st.ID) {
			return nil, ErrDuplicateRollNumber
		}
		return append(items, st), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("student enrolled", "student_id", st.ID, "roll", st.RollNumber)
	return &st, nil
}

// Update edits a student in place. The stored password is kept and an empty
// photo keeps the stored photo. An unknown id is a no-op and returns nil.
func (s *Service) Update(ctx context.Context, id string, in Input) (*records.Student, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}

	var updated *records.Student
	err := s.repos.Students.Update(ctx, func(items []records.Student) ([]records.Student, error) {
		idx := slices.IndexFunc(items, func(st records.Student) bool { return st.ID == id })
		if idx < 0 {
			return items, nil
		}

		st := in.student(id)
		st.Password = items[idx].Password
		if st.Photo == "" {
			st.Photo = items[idx].Photo
		}
		if err := validate(st); err != nil {
			return nil, err
		}
		if rollTaken(items, st.RollNumber, id) {
			return nil, ErrDuplicateRollNumber
		}

		items[idx] = st
		updated = &st
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	if updated != nil {
		s.logger.Info("student updated", "student_id", id)
	}
	return updated, nil
}

// Delete removes a student. Attendance and chat records that reference the
// student are kept. An unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return err
	}

	removed := false
	err := s.repos.Students.Update(ctx, func(items []records.Student) ([]records.Student, error) {
		n := len(items)
		items = slices.DeleteFunc(items, func(st records.Student) bool { return st.ID == id })
		removed = len(items) < n
		return items, nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.logger.Info("student deleted", "student_id", id)
	}
	return nil
}

// Get returns one student or records.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*records.Student, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	items, err := s.repos.Students.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, records.ErrNotFound
}

// List returns students of a class and section in enrollment order. Empty
// filters match everything.
func (s *Service) List(ctx context.Context, class records.ClassName, section string) ([]records.Student, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	items, err := s.repos.Students.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []records.Student{}
	for _, st := range items {
		if (class == "" || st.Class == class) && (section == "" || st.Section == section) {
			out = append(out, st)
		}
	}
	return out, nil
}

// Search matches the query against names case-insensitively and against roll
// numbers as a substring. An empty query returns everyone.
func (s *Service) Search(ctx context.Context, query string) ([]records.Student, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	items, err := s.repos.Students.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(query)
	q := strings.ToLower(raw)
	out := []records.Student{}
	for _, st := range items {
		if strings.Contains(strings.ToLower(st.Name), q) || strings.Contains(st.RollNumber, raw) {
			out = append(out, st)
		}
	}
	return out, nil
}
