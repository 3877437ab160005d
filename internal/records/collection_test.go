package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/schoolbook/internal/store"
)

func newTestRepos(t *testing.T) (*Repositories, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	return New(s, nil), s
}

func TestCollection_AbsentIsEmpty(t *testing.T) {
	r, _ := newTestRepos(t)

	students, err := r.Students.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestCollection_CorruptIsEmpty(t *testing.T) {
	r, s := newTestRepos(t)
	ctx := context.Background()

	// Valid JSON, wrong shape
	require.NoError(t, s.Put(ctx, store.KeyTeachers, []byte(`{"not":"a list"}`)))

	teachers, err := r.Teachers.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, teachers)
}

func TestCollection_NullIsEmpty(t *testing.T) {
	r, s := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.KeyChats, []byte(`null`)))

	chats, err := r.Chats.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)
}

func TestCollection_SaveAllPreservesOrder(t *testing.T) {
	r, s := newTestRepos(t)
	ctx := context.Background()

	in := []Staff{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}, {ID: "c", Name: "C"}}
	require.NoError(t, r.Staff.SaveAll(ctx, in))

	out, err := r.Staff.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	raw, err := s.Get(ctx, store.KeyStaff)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"b","name":"B","designation":"","contact":""},{"id":"a","name":"A","designation":"","contact":""},{"id":"c","name":"C","designation":"","contact":""}]`, string(raw))
}

func TestCollection_SaveAllNilWritesEmptyList(t *testing.T) {
	r, s := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, r.Timetable.SaveAll(ctx, nil))

	raw, err := s.Get(ctx, store.KeyTimetable)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}

func TestCollection_UpdateAbortsOnError(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, r.Staff.SaveAll(ctx, []Staff{{ID: "1", Name: "One"}}))

	boom := errors.New("boom")
	err := r.Staff.Update(ctx, func(items []Staff) ([]Staff, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	items, err := r.Staff.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCollection_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Chats.Update(ctx, func(items []ChatMessage) ([]ChatMessage, error) {
				return append(items, ChatMessage{ID: fmt.Sprintf("m%d", i)}), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := r.Chats.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, writers)
}

func TestDocument_GetPutClear(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	info, err := r.School.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, r.School.Put(ctx, SchoolInfo{Name: "Hill School", AccessCode: "042017"}))

	info, err = r.School.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "042017", info.AccessCode)

	require.NoError(t, r.School.Clear(ctx))
	info, err = r.School.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestDocument_CorruptIsAbsent(t *testing.T) {
	r, s := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.KeySchoolInfo, []byte(`[1,2,3]`)))

	info, err := r.School.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, info)
}
