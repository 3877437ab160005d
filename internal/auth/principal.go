// ABOUTME: Principal is the authenticated actor, a staff Teacher or a Student
// ABOUTME: Encodes as a tagged session document and still reads the untagged legacy form

package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2389/schoolbook/internal/records"
)

// Role discriminates the kind of principal.
type Role string

const (
	RoleStaff   Role = "staff"
	RoleStudent Role = "student"
)

// Principal is an authenticated actor. Exactly one of Teacher or Student is
// set, matching Role.
type Principal struct {
	Role    Role              `json:"role"`
	Teacher *records.Teacher `json:"teacher,omitempty"`
	Student *records.Student `json:"student,omitempty"`
}

// StaffPrincipal wraps a teacher.
func StaffPrincipal(t records.Teacher) *Principal {
	return &Principal{Role: RoleStaff, Teacher: &t}
}

// StudentPrincipal wraps a student.
func StudentPrincipal(s records.Student) *Principal {
	return &Principal{Role: RoleStudent, Student: &s}
}

// ID returns the id of the wrapped entity.
func (p *Principal) ID() string {
	switch {
	case p.Teacher != nil:
		return p.Teacher.ID
	case p.Student != nil:
		return p.Student.ID
	}
	return ""
}

// Name returns the display name of the wrapped entity.
func (p *Principal) Name() string {
	switch {
	case p.Teacher != nil:
		return p.Teacher.Name
	case p.Student != nil:
		return p.Student.Name
	}
	return ""
}

// IsStaff reports whether p is a staff principal.
func (p *Principal) IsStaff() bool {
	return p != nil && p.Role == RoleStaff && p.Teacher != nil
}

// IsStudent reports whether p is a student principal.
func (p *Principal) IsStudent() bool {
	return p != nil && p.Role == RoleStudent && p.Student != nil
}

// IsHeadmaster reports whether p is the headmaster.
func (p *Principal) IsHeadmaster() bool {
	return p.IsStaff() && p.Teacher.IsHeadmaster
}

var errUnknownPrincipal = errors.New("unrecognized session principal")

// UnmarshalJSON reads the tagged form {"role", "teacher"|"student"} and the
// legacy form where a bare Teacher or Student is stored and a Teacher is
// recognized by its email field.
func (p *Principal) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	type tagged Principal
	if raw, ok := fields["role"]; ok {
		var role Role
		if err := json.Unmarshal(raw, &role); err == nil && (role == RoleStaff || role == RoleStudent) {
			var t tagged
			if err := json.Unmarshal(data, &t); err != nil {
				return err
			}
			*p = Principal(t)
			if !p.IsStaff() && !p.IsStudent() {
				return fmt.Errorf("%w: role %q without entity", errUnknownPrincipal, role)
			}
			return nil
		}
	}

	if _, ok := fields["email"]; ok {
		var t records.Teacher
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		*p = *StaffPrincipal(t)
		return nil
	}
	if _, ok := fields["rollNumber"]; ok {
		var s records.Student
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = *StudentPrincipal(s)
		return nil
	}
	return errUnknownPrincipal
}
