package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	identityapp "github.com/velux/backend/internal/application/identity"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"manage", "--log-level", "error"}, args...))
	return out.String(), err
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("VELUX_APP_ENV", "test")
	t.Setenv("VELUX_DATABASE_DRIVER", "sqlite")
	t.Setenv("VELUX_DATABASE_SQLITE_PATH", filepath.Join(t.TempDir(), "manage.db"))
}

func TestMigrateList_Embedded(t *testing.T) {
	out, err := run(t, "migrate", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "000001_create_identity_and_catalog")
	assert.Contains(t, out, "000002_create_carts")
	assert.NotContains(t, out, "(no down)")
}

func TestMigrateCreate(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "migrate", "--dir", dir, "create", "add coupons")
	require.NoError(t, err)
	assert.Contains(t, out, "000001_add_coupons.up.sql")

	_, err = os.Stat(filepath.Join(dir, "000001_add_coupons.down.sql"))
	require.NoError(t, err)

	out, err = run(t, "migrate", "--dir", dir, "list")
	require.NoError(t, err)
	assert.Equal(t, "000001_add_coupons\n", out)
}

func TestMigrate_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"steps without count", []string{"migrate", "steps"}, "non-zero integer"},
		{"steps zero", []string{"migrate", "steps", "0"}, "non-zero integer"},
		{"goto not a number", []string{"migrate", "goto", "latest"}, "invalid version"},
		{"force not a number", []string{"migrate", "force", "x"}, "invalid version"},
		{"down unconfirmed", []string{"migrate", "down"}, "--yes"},
		{"create without name", []string{"migrate", "create"}, "name required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestMigrateUp_RefusesSQLite(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "migrate", "up")
	assert.ErrorIs(t, err, errSQLiteMigrations)
}

func TestCreateAdmin(t *testing.T) {
	useSQLite(t)
	args := []string{"create-admin", "--username", "root", "--email", "root@example.com", "--password", "S3cure-pass!"}

	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "created staff user root")

	_, err = run(t, args...)
	assert.ErrorIs(t, err, identityapp.ErrUsernameTaken)
}

func TestCreateAdmin_RequiresFlags(t *testing.T) {
	_, err := run(t, "create-admin", "--username", "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Required flag")
}

func TestEnsureBucket_StorageDisabled(t *testing.T) {
	useSQLite(t)
	t.Setenv("VELUX_STORAGE_ENABLED", "false")

	_, err := run(t, "ensure-bucket")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}
