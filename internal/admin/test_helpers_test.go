// ABOUTME: Shared test helpers for admin package tests
// ABOUTME: Builds a SQLite-backed school with a signed-in headmaster

package admin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
	"github.com/2389/schoolbook/internal/store"
)

const testAccessCode = "042017"

type testSchool struct {
	repos      *records.Repositories
	auth       *auth.Service
	admin      *Service
	headmaster *auth.Principal
}

// setupTestSchool creates a school with a headmaster on a temp SQLite store.
func setupTestSchool(t *testing.T) *testSchool {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repos := records.New(s, nil)
	authSvc := auth.NewService(repos, nil)
	hm, err := authSvc.Setup(context.Background(), auth.SetupRequest{
		SchoolName:     "Hill School",
		AccessCode:     testAccessCode,
		HeadmasterName: "Head Master",
		Email:          "hm@school.test",
		Pin:            "9999",
	})
	require.NoError(t, err)

	return &testSchool{repos: repos, auth: authSvc, admin: New(repos, nil), headmaster: hm}
}

func (ts *testSchool) asHeadmaster() context.Context {
	return auth.WithPrincipal(context.Background(), ts.headmaster)
}

// register signs up a pending teacher through discovery.
func (ts *testSchool) register(t *testing.T, name, email, pin string) *records.Teacher {
	t.Helper()
	gate, err := ts.auth.Discover(context.Background(), testAccessCode)
	require.NoError(t, err)
	teacher, err := gate.RegisterStaff(context.Background(), auth.Registration{Name: name, Email: email, Pin: pin})
	require.NoError(t, err)
	return teacher
}
