// ABOUTME: Repositories bundles every entity collection over one store
// ABOUTME: Owns the per-key locks and the atomic school bootstrap write

package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/2389/schoolbook/internal/store"
)

// Repositories exposes typed access to every collection in a store.
type Repositories struct {
	store  store.Store
	logger *slog.Logger
	locks  map[store.Key]*sync.Mutex

	School     *Document[SchoolInfo]
	Teachers   *Collection[Teacher]
	Staff      *Collection[Staff]
	Students   *Collection[Student]
	Attendance *Collection[AttendanceRecord]
	ClassLogs  *Collection[ClassLog]
	Chats      *Collection[ChatMessage]
	Timetable  *Collection[TimeTableEntry]
}

// New creates Repositories over s. A nil logger uses slog.Default().
func New(s store.Store, logger *slog.Logger) *Repositories {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Repositories{
		store:  s,
		logger: logger.With("component", "records"),
		locks:  make(map[store.Key]*sync.Mutex, len(store.Keys)),
	}
	for _, k := range store.Keys {
		r.locks[k] = &sync.Mutex{}
	}

	r.School = NewDocument[SchoolInfo](r, store.KeySchoolInfo)
	r.Teachers = NewCollection[Teacher](r, store.KeyTeachers)
	r.Staff = NewCollection[Staff](r, store.KeyStaff)
	r.Students = NewCollection[Student](r, store.KeyStudents)
	r.Attendance = NewCollection[AttendanceRecord](r, store.KeyAttendance)
	r.ClassLogs = NewCollection[ClassLog](r, store.KeyClassLogs)
	r.Chats = NewCollection[ChatMessage](r, store.KeyChats)
	r.Timetable = NewCollection[TimeTableEntry](r, store.KeyTimetable)

	return r
}

// lock acquires the mutexes of keys in the fixed order of store.Keys so
// multi-key operations never deadlock. The returned func releases them.
func (r *Repositories) lock(keys ...store.Key) func() {
	var held []*sync.Mutex
	for _, k := range store.Keys {
		for _, want := range keys {
			if k == want {
				mu := r.locks[k]
				mu.Lock()
				held = append(held, mu)
				break
			}
		}
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// Bootstrap writes the school info and the headmaster in one atomic store
// write. It fails with ErrAlreadyBootstrapped if a headmaster already exists.
// The teacher collection is replaced by the headmaster alone. Both records
// are validated and the headmaster must carry the headmaster flag.
func (r *Repositories) Bootstrap(ctx context.Context, info SchoolInfo, headmaster Teacher) error {
	if err := Validate(info); err != nil {
		return err
	}
	if err := Validate(headmaster); err != nil {
		return err
	}
	if !headmaster.IsHeadmaster {
		return NewValidationError(nil, FieldError{Field: "isHeadmaster", Message: "must be set"})
	}

	unlock := r.lock(store.KeySchoolInfo, store.KeyTeachers)
	defer unlock()

	teachers, err := r.Teachers.load(ctx)
	if err != nil {
		return err
	}
	if HasHeadmaster(teachers) {
		return ErrAlreadyBootstrapped
	}

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding school info: %w", err)
	}
	teachersJSON, err := encodeCollection([]Teacher{headmaster})
	if err != nil {
		return fmt.Errorf("encoding teachers: %w", err)
	}

	err = r.store.PutMany(ctx, map[store.Key][]byte{
		store.KeySchoolInfo: infoJSON,
		store.KeyTeachers:   teachersJSON,
	})
	if err != nil {
		return fmt.Errorf("writing bootstrap: %w", err)
	}

	r.logger.Info("school bootstrapped", "school", info.Name, "headmaster_id", headmaster.ID)
	return nil
}

// DemoStudents are written by SeedDemo into an empty store
var DemoStudents = []Student{
	{
		ID:           "s1",
		Name:         "John Doe",
		RollNumber:   "1001",
		FatherName:   "Mr. Robert Doe",
		ParentMobile: "555-0101",
		Class:        Class6,
		Section:      "K-shakha",
		Password:     DefaultStudentPassword,
	},
	{
		ID:           "s2",
		Name:         "Jane Smith",
		RollNumber:   "1002",
		FatherName:   "Mr. Alan Smith",
		ParentMobile: "555-0202",
		Class:        Class9,
		Section:      "Science",
		Password:     DefaultStudentPassword,
	},
}

// SeedDemo writes the demo students and empty attendance, class log and chat
// collections when no students document exists yet. It reports whether
// anything was written.
func (r *Repositories) SeedDemo(ctx context.Context) (bool, error) {
	unlock := r.lock(store.KeyStudents, store.KeyAttendance, store.KeyClassLogs, store.KeyChats)
	defer unlock()

	_, err := r.store.Get(ctx, store.KeyStudents)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrAbsent) {
		return false, fmt.Errorf("reading students: %w", err)
	}

	students, err := encodeCollection(DemoStudents)
	if err != nil {
		return false, fmt.Errorf("encoding demo students: %w", err)
	}
	empty := []byte("[]")

	err = r.store.PutMany(ctx, map[store.Key][]byte{
		store.KeyStudents:   students,
		store.KeyAttendance: empty,
		store.KeyClassLogs:  empty,
		store.KeyChats:      empty,
	})
	if err != nil {
		return false, fmt.Errorf("writing demo data: %w", err)
	}

	r.logger.Info("seeded demo data", "students", len(DemoStudents))
	return true, nil
}
