package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

func TestApprove_PendingBecomesApproved(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()
	t1 := ts.register(t, "Ann", "a@b.com", "1234")

	pending, err := ts.admin.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, t1.ID, pending[0].ID)

	require.NoError(t, ts.admin.Approve(ctx, t1.ID))

	pending, err = ts.admin.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	approved, err := ts.admin.Approved(ctx)
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	// Approving again or approving an unknown id changes nothing
	require.NoError(t, ts.admin.Approve(ctx, t1.ID))
	require.NoError(t, ts.admin.Approve(ctx, "missing"))
	approved, err = ts.admin.Approved(ctx)
	require.NoError(t, err)
	assert.Len(t, approved, 2)
}

func TestReject_RemovesRecord(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()
	t1 := ts.register(t, "Ann", "a@b.com", "1234")

	require.NoError(t, ts.admin.Reject(ctx, t1.ID))

	teachers, err := ts.repos.Teachers.GetAll(ctx)
	require.NoError(t, err)
	for _, teacher := range teachers {
		assert.NotEqual(t, t1.ID, teacher.ID)
	}

	// The email is free again
	ts.register(t, "Ann", "a@b.com", "1234")

	require.NoError(t, ts.admin.Reject(ctx, "missing"))
}

func TestReject_HeadmasterProtected(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()

	err := ts.admin.Reject(ctx, ts.headmaster.ID())
	assert.ErrorIs(t, err, ErrHeadmasterProtected)

	needs, err := ts.auth.NeedsSetup(ctx)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestWorkflow_RequiresHeadmaster(t *testing.T) {
	ts := setupTestSchool(t)
	t1 := ts.register(t, "Ann", "a@b.com", "1234")
	require.NoError(t, ts.admin.Approve(ts.asHeadmaster(), t1.ID))

	asTeacher := auth.WithPrincipal(context.Background(), auth.StaffPrincipal(*t1))
	assert.ErrorIs(t, ts.admin.Approve(asTeacher, t1.ID), auth.ErrForbidden)
	assert.ErrorIs(t, ts.admin.Reject(asTeacher, t1.ID), auth.ErrForbidden)
	_, err := ts.admin.Pending(asTeacher)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = ts.admin.Pending(context.Background())
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestSaveTeacher(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()

	created, err := ts.admin.SaveTeacher(ctx, TeacherInput{Name: "Bob", Email: "bob@school.test", Pin: "1111", Designation: "Science"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, records.StatusApproved, created.Status)
	assert.Equal(t, records.UserRoleTeacher, created.Role)

	// Edit keeps the pin when none is given
	edited, err := ts.admin.SaveTeacher(ctx, TeacherInput{ID: created.ID, Name: "Bobby", Email: "bob@school.test"})
	require.NoError(t, err)
	assert.Equal(t, "1111", edited.Pin)
	assert.Equal(t, "Bobby", edited.Name)

	// Editing the headmaster keeps the flag
	hm, err := ts.admin.SaveTeacher(ctx, TeacherInput{ID: ts.headmaster.ID(), Name: "Head", Email: "hm@school.test"})
	require.NoError(t, err)
	assert.True(t, hm.IsHeadmaster)

	_, err = ts.admin.SaveTeacher(ctx, TeacherInput{Name: "Dup", Email: "BOB@school.test", Pin: "2"})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)

	_, err = ts.admin.SaveTeacher(ctx, TeacherInput{Name: "No Pin", Email: "np@school.test"})
	assert.ErrorIs(t, err, records.ErrInvalidInput)

	teachers, err := ts.repos.Teachers.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, teachers, 2)
}

func TestSaveTeacher_UnknownIDIsNoop(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()

	saved, err := ts.admin.SaveTeacher(ctx, TeacherInput{ID: "ghost", Name: "Ghost", Email: "ghost@school.test", Pin: "1111"})
	require.NoError(t, err)
	assert.Nil(t, saved)

	teachers, err := ts.repos.Teachers.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, ts.headmaster.ID(), teachers[0].ID)
}

func TestSaveTeacher_ValidatesStoredRecord(t *testing.T) {
	ts := setupTestSchool(t)
	ctx := ts.asHeadmaster()

	_, err := ts.admin.SaveTeacher(ctx, TeacherInput{Name: "No Pin", Email: "np@school.test"})
	require.ErrorIs(t, err, records.ErrInvalidInput)
	var ve *records.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "pin", ve.Fields[0].Field)
	assert.Equal(t, "this field is required", ve.Fields[0].Message)

	// Whitespace-only names are trimmed before validation
	_, err = ts.admin.SaveTeacher(ctx, TeacherInput{Name: "   ", Email: "blank@school.test", Pin: "1"})
	assert.ErrorIs(t, err, records.ErrInvalidInput)
}
