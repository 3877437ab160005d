package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/config"
)

// useTempSchool points the CLI at a fresh SQLite database with demo students.
func useTempSchool(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "storage:\n  backend: sqlite\n  path: " + filepath.Join(dir, "school.db") +
		"\nschool:\n  seed_demo: true\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	t.Setenv("SCHOOLBOOK_CONFIG", cfgPath)
	t.Setenv("SCHOOLBOOK_DB_PATH", "")
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_SchoolDay(t *testing.T) {
	useTempSchool(t)

	out, err := runCLI(t, "", "setup", "--school", "Hill School", "--code", "042017",
		"--name", "Head", "--email", "hm@school.test", "--pin", "9999")
	require.NoError(t, err)
	assert.Contains(t, out, `School "Hill School" set up; signed in as Head`)

	out, err = runCLI(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Headmaster:  yes")

	out, err = runCLI(t, "", "students", "list", "--class", "6th")
	require.NoError(t, err)
	assert.Contains(t, out, "John Doe")
	assert.NotContains(t, out, "Jane Smith")

	out, err = runCLI(t, "", "attendance", "toggle", "s1", "--date", "2024-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "s1 marked present on 2024-01-10")

	out, err = runCLI(t, "", "attendance", "roster", "--class", "6th", "--section", "K-shakha", "--date", "2024-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "yes")

	_, err = runCLI(t, "", "logs", "post", "--date", "2024-01-10", "--class", "6th", "--section", "K-shakha",
		"--subject", "Math", "--summary", "Fractions **intro**", "--homework", "Page 12")
	require.NoError(t, err)

	_, err = runCLI(t, "", "logout")
	require.NoError(t, err)

	// Password read from stdin when not passed as a flag
	out, err = runCLI(t, "pass\n", "login", "--code", "042017", "--role", "student", "--id", "1001")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in to Hill School as John Doe (student)")

	out, err = runCLI(t, "", "attendance", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-10")
	assert.Contains(t, out, "total: 1")

	out, err = runCLI(t, "", "logs", "list", "--html")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>intro</strong>")

	out, err = runCLI(t, "", "chat", "peers")
	require.NoError(t, err)
	assert.Contains(t, out, "(none)")

	_, err = runCLI(t, "", "students", "list")
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestRun_RegistrationAwaitsApproval(t *testing.T) {
	useTempSchool(t)

	_, err := runCLI(t, "", "setup", "--school", "Hill School", "--code", "042017",
		"--name", "Head", "--email", "hm@school.test", "--pin", "9999")
	require.NoError(t, err)

	_, err = runCLI(t, "", "register", "--code", "042017", "--name", "T One",
		"--email", "t1@school.test", "--pin", "1111")
	require.NoError(t, err)

	out, err := runCLI(t, "", "teachers", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "t1@school.test")

	out, err = runCLI(t, "", "teachers", "save", "--id", "ghost", "--name", "Ghost",
		"--email", "ghost@school.test", "--pin", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "No teacher with id ghost; nothing saved")

	out, err = runCLI(t, "", "teachers", "approved")
	require.NoError(t, err)
	assert.NotContains(t, out, "ghost@school.test")

	_, err = runCLI(t, "", "login", "--code", "042017", "--role", "staff", "--id", "t1@school.test", "--secret", "1111")
	assert.ErrorIs(t, err, auth.ErrPendingApproval)

	_, err = runCLI(t, "", "login", "--code", "999999", "--id", "x", "--secret", "y")
	assert.ErrorIs(t, err, auth.ErrInvalidAccessCode)
}

func TestRun_AuthBeforeSetup(t *testing.T) {
	useTempSchool(t)

	_, err := runCLI(t, "", "login", "--code", "042017", "--role", "student", "--id", "1001", "--secret", "pass")
	assert.ErrorIs(t, err, auth.ErrSetupRequired)

	_, err = runCLI(t, "", "register", "--code", "042017", "--name", "T One",
		"--email", "t1@school.test", "--pin", "1111")
	assert.ErrorIs(t, err, auth.ErrSetupRequired)

	out, err := runCLI(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestRun_UnknownAndHelp(t *testing.T) {
	_, err := runCLI(t, "", "dance")
	assert.ErrorIs(t, err, errUnknownCommand)

	out, err := runCLI(t, "", "help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage: schoolbook <command> [args]")

	out, err = runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "schoolbook dev\n", out)
}

func TestParseFlags(t *testing.T) {
	opts, positional, err := parseFlags([]string{"s1", "--date", "2024-01-10", "--html", "--class=6th", "extra"}, "html")
	require.NoError(t, err)
	assert.Equal(t, options{"date": "2024-01-10", "html": "true", "class": "6th"}, opts)
	assert.Equal(t, []string{"s1", "extra"}, positional)
	assert.True(t, opts.has("html"))
	assert.Equal(t, "fallback", opts.or("missing", "fallback"))

	_, _, err = parseFlags([]string{"--date"})
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	logger.Debug("hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	buf.Reset()
	logger = setupLogger(config.LoggingConfig{Level: "warn"}, &buf)
	logger.Info("dropped")
	logger.With("component", "store").Warn("kept", "key", "students")
	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "WRN kept")
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "key=students")

	buf.Reset()
	logger.WithGroup("req").Warn("grouped", "id", "s1")
	assert.Contains(t, buf.String(), "WRN grouped")
	assert.Contains(t, buf.String(), "req.id=s1")
}
