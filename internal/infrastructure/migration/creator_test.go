package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add payment records")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_payment_records.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_payment_records.down.sql"))
	assert.Len(t, mf.Version, 14)

	for _, path := range []string{mf.UpPath, mf.DownPath} {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Add payment records")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add payment records", "add_payment_records"},
		{"fix--cash  balance", "fix_cash_balance"},
		{"Trailing ", "trailing"},
		{"UPPER", "upper"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in))
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "first")
	require.NoError(t, err)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Contains(t, migrations[0], "first")

	empty, err := ListMigrations(dir + "/missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
