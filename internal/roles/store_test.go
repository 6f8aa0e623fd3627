package roles

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/class-divider/internal/partition"
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("role-%d", n)
	})
}

func TestOpenSeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".divider", "roles.yaml")
	store, err := Open(path, sequentialIDs())
	require.NoError(t, err)

	assert.Equal(t, DefaultNames, partition.RoleNames(store.List()))
	_, err = os.Stat(path)
	assert.NoError(t, err, "defaults should be written to disk")
}

func TestAddPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	store, err := Open(path, sequentialIDs())
	require.NoError(t, err)

	role, err := store.Add("  Checker ")
	require.NoError(t, err)
	assert.Equal(t, "Checker", role.Name)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, append(append([]string(nil), DefaultNames...), "Checker"), partition.RoleNames(reopened.List()))
	found, ok := reopened.Find(role.ID)
	require.True(t, ok)
	assert.Equal(t, role, found)
}

func TestAddRejectsEmptyAndDuplicate(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "roles.yaml"), sequentialIDs())
	require.NoError(t, err)

	_, err = store.Add("   ")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = store.Add("Leader")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Len(t, store.List(), len(DefaultNames))
}

func TestRemoveAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	store, err := Open(path, sequentialIDs())
	require.NoError(t, err)

	leader, ok := store.Find("Leader")
	require.True(t, ok)
	removed, err := store.Remove(leader.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leader", removed.Name)
	_, ok = store.Find("Leader")
	assert.False(t, ok)

	_, err = store.Remove("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, r := range store.List() {
		_, err := store.Remove(r.ID)
		require.NoError(t, err)
	}
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, reopened.List(), "an emptied list must stay empty")

	require.NoError(t, reopened.Reset())
	assert.Equal(t, DefaultNames, partition.RoleNames(reopened.List()))
}

func TestOpenNormalizesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	content := "version: 1\nroles:\n  - id: a\n    name: ' Leader '\n  - name: Scribe\n  - id: c\n    name: Leader\n  - id: d\n    name: ''\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := Open(path, sequentialIDs())
	require.NoError(t, err)
	got := store.List()
	require.Len(t, got, 2)
	assert.Equal(t, partition.Role{ID: "a", Name: "Leader"}, got[0])
	assert.Equal(t, partition.Role{ID: "role-1", Name: "Scribe"}, got[1])
}

func TestOpenRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles: [:::"), 0o644))
	_, err := Open(path)
	assert.Error(t, err)
}
