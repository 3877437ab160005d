package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

func TestStaff_SaveListDelete(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()

	clerk, err := ts.admin.SaveStaff(ctx, records.Staff{Name: "Clerk", Designation: "Office"})
	require.NoError(t, err)
	_, err = ts.admin.SaveStaff(ctx, records.Staff{Name: "Guard", Designation: "Security"})
	require.NoError(t, err)

	clerk.Contact = "555-0100"
	_, err = ts.admin.SaveStaff(ctx, *clerk)
	require.NoError(t, err)

	list, err := ts.admin.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "555-0100", list[0].Contact)

	require.NoError(t, ts.admin.DeleteStaff(ctx, clerk.ID))
	require.NoError(t, ts.admin.DeleteStaff(ctx, "missing"))

	list, err = ts.admin.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Guard", list[0].Name)

	_, err = ts.admin.SaveStaff(ctx, records.Staff{})
	assert.ErrorIs(t, err, records.ErrInvalidInput)
}

func TestTimetable_SortedAndScoped(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()

	entries := []records.TimeTableEntry{
		{Day: "Tuesday", StartTime: "09:00", EndTime: "09:45", Class: records.Class6, Section: "K-shakha", Subject: "Math"},
		{Day: "Monday", StartTime: "10:00", EndTime: "10:45", Class: records.Class6, Section: "K-shakha", Subject: "English"},
		{Day: "Monday", StartTime: "09:00", EndTime: "09:45", Class: records.Class6, Section: "K-shakha", Subject: "Science"},
		{Day: "Monday", StartTime: "09:00", EndTime: "09:45", Class: records.Class9, Section: "Science", Subject: "Physics"},
	}
	for _, e := range entries {
		_, err := ts.admin.SaveTimetableEntry(ctx, e)
		require.NoError(t, err)
	}

	got, err := ts.admin.Timetable(ctx, records.Class6, "K-shakha")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Science", got[0].Subject)
	assert.Equal(t, "English", got[1].Subject)
	assert.Equal(t, "Math", got[2].Subject)

	all, err := ts.admin.Timetable(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// A student sees their own section whatever they ask for
	student := auth.StudentPrincipal(records.Student{ID: "s2", Class: records.Class9, Section: "Science"})
	mine, err := ts.admin.Timetable(auth.WithPrincipal(context.Background(), student), records.Class6, "K-shakha")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Physics", mine[0].Subject)

	require.NoError(t, ts.admin.DeleteTimetableEntry(ctx, got[0].ID))
	got, err = ts.admin.Timetable(ctx, records.Class6, "K-shakha")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTimetable_Validation(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()

	bad := []records.TimeTableEntry{
		{Day: "Sunday", StartTime: "09:00", EndTime: "09:45", Class: records.Class6, Section: "K-shakha", Subject: "Math"},
		{Day: "Monday", StartTime: "09:00", EndTime: "09:45", Class: records.Class6, Section: "Science", Subject: "Math"},
		{Day: "Monday", StartTime: "10:00", EndTime: "09:45", Class: records.Class6, Section: "K-shakha", Subject: "Math"},
		{Day: "Monday", StartTime: "25:00", EndTime: "26:00", Class: records.Class6, Section: "K-shakha", Subject: "Math"},
		{Day: "Monday", StartTime: "noon", EndTime: "13:00", Class: records.Class6, Section: "K-shakha", Subject: "Math"},
	}
	for _, e := range bad {
		_, err := ts.admin.SaveTimetableEntry(ctx, e)
		assert.ErrorIs(t, err, records.ErrInvalidInput)
	}
}

func TestTimetable_PadsClockTimes(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()

	for _, start := range []string{"10:00", "9:15"} {
		_, err := ts.admin.SaveTimetableEntry(ctx, records.TimeTableEntry{
			Day: "Monday", StartTime: start, EndTime: "11:00", Class: records.Class7, Section: "G-shakha", Subject: start,
		})
		require.NoError(t, err)
	}

	got, err := ts.admin.Timetable(ctx, records.Class7, "G-shakha")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "09:15", got[0].StartTime)
	assert.Equal(t, "10:00", got[1].StartTime)
}

func TestSchoolProfile(t *testing.T) {
	ts := setupTestSchool(t)

	info, err := ts.admin.SchoolProfile(ts.asHeadmaster())
	require.NoError(t, err)
	assert.Equal(t, "Hill School", info.Name)
	assert.Equal(t, testAccessCode, info.AccessCode)

	_, err = ts.admin.SchoolProfile(context.Background())
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}
