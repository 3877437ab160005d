package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// backends returns every Store implementation that can run in this environment.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	result := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": setupTestStore(t),
	}

	mattn, err := NewSQLiteStoreWithDriver(DriverMattn, filepath.Join(t.TempDir(), "mattn.db"))
	if err == nil {
		t.Cleanup(func() { mattn.Close() })
		result["sqlite3"] = mattn
	} else if !strings.Contains(err.Error(), "CGO_ENABLED") {
		require.NoError(t, err)
	}

	if addr := os.Getenv("SCHOOLBOOK_TEST_REDIS"); addr != "" {
		r, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr, Prefix: "schoolbook-test:" + t.Name() + ":"})
		require.NoError(t, err)
		t.Cleanup(func() {
			for _, k := range Keys {
				r.Delete(context.Background(), k)
			}
			r.Close()
		})
		result["redis"] = r
	}

	if url := os.Getenv("SCHOOLBOOK_TEST_POSTGRES"); url != "" {
		p, err := NewPostgresStore(context.Background(), url)
		require.NoError(t, err)
		t.Cleanup(func() {
			for _, k := range Keys {
				p.Delete(context.Background(), k)
			}
			p.Close()
		})
		result["postgres"] = p
	}

	return result
}

func TestStore_GetAbsent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), KeyStudents)
			assert.ErrorIs(t, err, ErrAbsent)
		})
	}
}

func TestStore_PutThenGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Put(ctx, KeyStudents, []byte(`[{"id":"s1"}]`)))
			got, err := s.Get(ctx, KeyStudents)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"s1"}]`, string(got))

			// Whole-value replace
			require.NoError(t, s.Put(ctx, KeyStudents, []byte(`[]`)))
			got, err = s.Get(ctx, KeyStudents)
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(got))
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Put(ctx, KeySession, []byte(`{"role":"staff"}`)))
			require.NoError(t, s.Delete(ctx, KeySession))

			_, err := s.Get(ctx, KeySession)
			assert.ErrorIs(t, err, ErrAbsent)

			// Deleting again is not an error
			assert.NoError(t, s.Delete(ctx, KeySession))
		})
	}
}

func TestStore_UnknownKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := s.Put(ctx, Key("edu_grades"), []byte(`[]`))
			assert.ErrorIs(t, err, ErrUnknownKey)

			_, err = s.Get(ctx, Key("edu_grades"))
			assert.ErrorIs(t, err, ErrUnknownKey)

			err = s.PutMany(ctx, map[Key][]byte{KeyStaff: []byte(`[]`), Key("nope"): []byte(`[]`)})
			assert.ErrorIs(t, err, ErrUnknownKey)

			// Nothing from the rejected batch was written
			_, err = s.Get(ctx, KeyStaff)
			assert.ErrorIs(t, err, ErrAbsent)
		})
	}
}

func TestStore_InvalidJSON(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Put(context.Background(), KeyTeachers, []byte(`[{"id":`))
			assert.ErrorIs(t, err, ErrInvalidJSON)
		})
	}
}

func TestStore_PutMany(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := s.PutMany(ctx, map[Key][]byte{
				KeySchoolInfo: []byte(`{"name":"Test School","accessCode":"042017"}`),
				KeyTeachers:   []byte(`[{"id":"hm1"}]`),
			})
			require.NoError(t, err)

			info, err := s.Get(ctx, KeySchoolInfo)
			require.NoError(t, err)
			assert.JSONEq(t, `{"name":"Test School","accessCode":"042017"}`, string(info))

			teachers, err := s.Get(ctx, KeyTeachers)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"hm1"}]`, string(teachers))
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	value := []byte(`[1]`)
	require.NoError(t, s.Put(ctx, KeyChats, value))
	value[1] = '2'

	got, err := s.Get(ctx, KeyChats)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	got[1] = '3'
	again, err := s.Get(ctx, KeyChats)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(again))
}

func TestKey_Valid(t *testing.T) {
	for _, k := range Keys {
		assert.True(t, k.Valid(), "key %q", k)
	}
	assert.False(t, Key("").Valid())
	assert.False(t, Key("edu_unknown").Valid())
}
