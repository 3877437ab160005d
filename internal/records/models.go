// ABOUTME: Entity types persisted by schoolbook and the fixed class/section enumerations
// ABOUTME: JSON field names match the stored documents so datasets stay portable

package records

import "strings"

// ClassName is one of the fixed class grades.
type ClassName string

const (
	Class6  ClassName = "6th"
	Class7  ClassName = "7th"
	Class8  ClassName = "8th"
	Class9  ClassName = "9th"
	Class10 ClassName = "10th"
)

// Classes lists every class in display order
var Classes = []ClassName{Class6, Class7, Class8, Class9, Class10}

// SectionsGeneral are the sections of the lower classes
var SectionsGeneral = []string{"K-shakha", "Kh-shakha", "G-shakha", "Gh-shakha"}

// SectionsSpecialized are the tracks of the upper classes
var SectionsSpecialized = []string{"Science", "Humanities", "Business Studies"}

// Weekdays are the days a timetable entry can fall on
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Valid reports whether c is a known class.
func (c ClassName) Valid() bool {
	for _, known := range Classes {
		if c == known {
			return true
		}
	}
	return false
}

// SectionsFor returns the sections available to a class, or nil for an unknown class.
func SectionsFor(c ClassName) []string {
	switch c {
	case Class6, Class7, Class8:
		return SectionsGeneral
	case Class9, Class10:
		return SectionsSpecialized
	default:
		return nil
	}
}

// ValidSection reports whether section belongs to class c.
func ValidSection(c ClassName, section string) bool {
	for _, s := range SectionsFor(c) {
		if s == section {
			return true
		}
	}
	return false
}

// SchoolInfo identifies the single school served by a store.
type SchoolInfo struct {
	Name       string `json:"name" validate:"required"`
	AccessCode string `json:"accessCode" validate:"accesscode"`
}

// TeacherStatus is the approval state of a staff login
type TeacherStatus string

const (
	StatusPending  TeacherStatus = "PENDING"
	StatusApproved TeacherStatus = "APPROVED"
)

// UserRoleTeacher is the role value stored on every Teacher record
const UserRoleTeacher = "Teacher"

// HeadmasterDesignation is assigned to the headmaster created at setup
const HeadmasterDesignation = "Headmaster"

// Teacher is a staff member who can log in.
type Teacher struct {
	ID           string        `json:"id"`
	Name         string        `json:"name" validate:"required"`
	Email        string        `json:"email" validate:"required,email"`
	Role         string        `json:"role"`
	IsHeadmaster bool          `json:"isHeadmaster,omitempty"`
	Designation  string        `json:"designation"`
	Contact      string        `json:"contact"`
	Pin          string        `json:"pin" validate:"required"`
	Status       TeacherStatus `json:"status"`
}

// EmailMatches compares emails case-insensitively.
func (t Teacher) EmailMatches(email string) bool {
	return strings.EqualFold(t.Email, email)
}

// HasHeadmaster reports whether any teacher is flagged as headmaster.
func HasHeadmaster(teachers []Teacher) bool {
	for _, t := range teachers {
		if t.IsHeadmaster {
			return true
		}
	}
	return false
}

// Staff is non-login personnel.
type Staff struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Designation string `json:"designation"`
	Contact     string `json:"contact"`
}

// DefaultStudentPassword is given to students created without a password
const DefaultStudentPassword = "pass"

// MaxPhotoBytes bounds the decoded size of a student photo
const MaxPhotoBytes = 1 << 20

// Student is an enrolled pupil.
type Student struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required"`
	RollNumber   string    `json:"rollNumber" validate:"required"`
	FatherName   string    `json:"fatherName"`
	ParentMobile string    `json:"parentMobile"`
	Class        ClassName `json:"class" validate:"classname"`
	Section      string    `json:"section" validate:"required"`
	Password     string    `json:"password,omitempty"`
	Photo        string    `json:"photo,omitempty"` // data URL or plain URL
}

// SameClassAs reports whether both students share class and section.
func (s Student) SameClassAs(other Student) bool {
	return s.Class == other.Class && s.Section == other.Section
}

// AttendanceRecord marks a student present on a day. Absence is the lack of a record.
type AttendanceRecord struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Date      string `json:"date"` // YYYY-MM-DD
	IsPresent bool   `json:"isPresent"`
}

// ClassLog is one lesson entry for a class section.
type ClassLog struct {
	ID            string    `json:"id"`
	Date          string    `json:"date" validate:"isodate"`
	Class         ClassName `json:"class" validate:"classname"`
	Section       string    `json:"section" validate:"required"`
	Subject       string    `json:"subject" validate:"required"`
	LessonSummary string    `json:"lessonSummary" validate:"required"`
	Homework      string    `json:"homework"`
}

// ChatMessage is one direction of a peer conversation.
type ChatMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"` // Unix milliseconds
}

// TimeTableEntry is one scheduled period.
type TimeTableEntry struct {
	ID        string    `json:"id"`
	Day       string    `json:"day" validate:"weekday"`
	StartTime string    `json:"startTime" validate:"required"`
	EndTime   string    `json:"endTime" validate:"required"`
	Class     ClassName `json:"class" validate:"classname"`
	Section   string    `json:"section" validate:"required"`
	Subject   string    `json:"subject" validate:"required"`
	TeacherID string    `json:"teacherId"`
}
