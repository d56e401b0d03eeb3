package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spendtrack/spendtrack-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_success.db")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-name", "Asha", "-email", "Asha@X.com", "-password", "secret1", "-driver", "sqlite", "-dsn", dbPath}
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "User asha@x.com created successfully")
}

func TestRun_DuplicateUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_duplicate.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-name", "Asha", "-email", "asha@x.com", "-password", "secret1", "-driver", "sqlite", "-dsn", dbPath}

	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err, "first run should succeed")

	stdout.Reset()
	stderr.Reset()
	err = run(args, stdin, stdout, stderr)
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	err := run([]string{"-password", "secret1"}, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_interactive.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := bytes.NewBufferString("interactive_secret\n")

	args := []string{"-name", "Asha", "-email", "asha@x.com", "-driver", "sqlite", "-dsn", dbPath}
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "created successfully")
}

func TestRun_EmptyPassword(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := bytes.NewBufferString("   \n")

	args := []string{"-name", "Asha", "-email", "asha@x.com", "-dsn", filepath.Join(t.TempDir(), "x.db")}
	err := run(args, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password cannot be empty")
}

func TestRun_WeakPassword(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-name", "Asha", "-email", "asha@x.com", "-password", "123", "-driver", "sqlite", "-dsn", filepath.Join(t.TempDir(), "weak.db")}
	err := run(args, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password must be at least 6 characters")
}

func TestRun_UnsupportedDriver(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-name", "Asha", "-email", "asha@x.com", "-password", "secret1", "-driver", "oracle"}
	err := run(args, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestRun_GeneratedPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_generate.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"-name", "Asha", "-email", "asha@x.com", "-generate", "-driver", "sqlite", "-dsn", dbPath}
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)

	_, pw, found := strings.Cut(stdout.String(), "Temporary password: ")
	require.True(t, found, stdout.String())
	assert.Len(t, strings.TrimSpace(pw), 16)
}

func TestRun_GenerateWithPassword(t *testing.T) {
	args := []string{"-name", "Asha", "-email", "asha@x.com", "-generate", "-password", "secret1"}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestRun_MongoDriverFromEnv(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mongo")
	t.Setenv("DATABASE_DSN", "not-a-mongo-uri")

	args := []string{"-name", "Asha", "-email", "asha@x.com", "-password", "secret1"}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to mongo")
	assert.NotContains(t, err.Error(), "unsupported database driver")
}

func TestRun_DriverFromEnvUsesItsDefaultDSN(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "")

	args := []string{"-name", "Asha", "-email", "asha@x.com", "-password", "secret1"}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))

	assert.FileExists(t, filepath.Join(dir, config.DefaultDSN("sqlite")))
}
