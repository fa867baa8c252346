package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_MigrateOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fintrack.db")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	err := run([]string{"-db", dbPath}, stdin, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Database ready")

	// Re-running against the same file is a no-op.
	err = run([]string{"-db", dbPath}, stdin, stdout, stderr)
	require.NoError(t, err)
}

func TestRun_CreateAdmin(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fintrack.db")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := bytes.NewBufferString("s3cret\n")

	args := []string{"-db", dbPath, "-admin-user", "admin", "-admin-email", "admin@example.com"}
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "User admin created successfully")

	// Same user again fails.
	stdin = bytes.NewBufferString("s3cret\n")
	err = run(args, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_AdminRequiresEmail(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fintrack.db")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	err := run([]string{"-db", dbPath, "-admin-user", "admin"}, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin-email")
}

func TestRun_EmptyPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fintrack.db")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := bytes.NewBufferString("   \n")

	args := []string{"-db", dbPath, "-admin-user", "admin", "-admin-email", "admin@example.com"}
	err := run(args, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password cannot be empty")
}
