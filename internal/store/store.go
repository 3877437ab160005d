// ABOUTME: Store interface and the closed key set for schoolbook persistence
// ABOUTME: Every collection and singleton lives under one well-known key as a JSON document

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAbsent is returned by Get when nothing has been stored under a key
var ErrAbsent = errors.New("key absent")

// ErrUnknownKey is returned when a key outside the closed key set is used
var ErrUnknownKey = errors.New("unknown key")

// ErrInvalidJSON is returned when a value handed to Put is not well-formed JSON
var ErrInvalidJSON = errors.New("value is not valid JSON")

// Key names one stored document.
type Key string

const (
	KeySchoolInfo Key = "edu_school_info"
	KeyTeachers   Key = "edu_teachers"
	KeyStaff      Key = "edu_staff"
	KeyStudents   Key = "edu_students"
	KeyAttendance Key = "edu_attendance"
	KeyClassLogs  Key = "edu_class_logs"
	KeyChats      Key = "edu_chats"
	KeyTimetable  Key = "edu_timetable"
	KeySession    Key = "edu_auth_user" // current session principal
)

// Keys lists every valid key
var Keys = []Key{
	KeySchoolInfo,
	KeyTeachers,
	KeyStaff,
	KeyStudents,
	KeyAttendance,
	KeyClassLogs,
	KeyChats,
	KeyTimetable,
	KeySession,
}

// Valid reports whether k belongs to the closed key set.
func (k Key) Valid() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// Store is the key-value persistence adapter. Values are whole JSON documents;
// there are no partial writes.
type Store interface {
	// Get returns the document stored under key, or ErrAbsent.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Put replaces the document stored under key.
	Put(ctx context.Context, key Key, value []byte) error

	// Delete removes key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key Key) error

	// PutMany replaces several documents atomically: either every value is
	// visible to subsequent reads or none is.
	PutMany(ctx context.Context, values map[Key][]byte) error

	// Close releases any resources held by the store
	Close() error
}

// checkWrite validates a key/value pair before any backend touches it.
func checkWrite(key Key, value []byte) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if !json.Valid(value) {
		return fmt.Errorf("%w: key %q", ErrInvalidJSON, key)
	}
	return nil
}

// checkKey validates a key used for reads and deletes.
func checkKey(key Key) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// checkBatch validates every pair of a PutMany call.
func checkBatch(values map[Key][]byte) error {
	for k, v := range values {
		if err := checkWrite(k, v); err != nil {
			return err
		}
	}
	return nil
}
