package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratecast/internal/domain"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "state", "policy.json"), nil)
}

func TestRoundTrip(t *testing.T) {
	fs := testStore(t)

	policy := domain.Policy{
		"COMMERCIAL": {Code: 3, Rate: domain.RatePtr(6.05)},
		"OWNER-OCCUPIED": {Code: 9, Tiers: []domain.Tier{
			{Rate: 1.8, UpTo: domain.BoundPtr(1_300_000)},
			{Rate: 2.0, UpTo: domain.BoundPtr(4_500_000)},
			{Rate: 3.25},
		}},
	}
	require.NoError(t, fs.Save(policy))

	got, ok := fs.Load()
	require.True(t, ok)
	assert.Equal(t, policy, got)
}

func TestLoadMissingFile(t *testing.T) {
	fs := testStore(t)

	got, ok := fs.Load()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLoadCorruptFileIsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(path, []byte("not json {"), 0o644))

	fs := NewFileStore(path, nil)
	got, ok := fs.Load()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestLoadForeignValueIsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`"just a string"`), 0o644))

	fs := NewFileStore(path, nil)
	_, ok := fs.Load()
	assert.False(t, ok)
}

func TestSaveOverwritesPrevious(t *testing.T) {
	fs := testStore(t)

	require.NoError(t, fs.Save(domain.Policy{"APARTMENT": {Code: 2, Rate: domain.RatePtr(3.5)}}))
	require.NoError(t, fs.Save(domain.Policy{"APARTMENT": {Code: 2, Rate: domain.RatePtr(4.0)}}))

	got, ok := fs.Load()
	require.True(t, ok)
	assert.Equal(t, 4.0, got["APARTMENT"].FlatRate())
}
