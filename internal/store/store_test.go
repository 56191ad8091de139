package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata", "fs.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSeedsReservedRoots(t *testing.T) {
	s := openTestStore(t)

	name, err := s.FolderName(RootFolderTagID)
	require.NoError(t, err)
	assert.Equal(t, "/", name)

	n, err := s.CountTopTags()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInsertAndLookupFile(t *testing.T) {
	s := openTestStore(t)

	id, err := s.InsertFile("hello.txt", "DEADBEEF", RootFolderTagID)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	found, err := s.GetFileID("hello.txt", RootFolderTagID)
	require.NoError(t, err)
	assert.Equal(t, id, found)

	hash, err := s.Hash(id)
	require.NoError(t, err)
	assert.Equal(t, "DEADBEEF", hash)
}

func TestHashReferenceCounting(t *testing.T) {
	s := openTestStore(t)

	ref, err := s.HashReferenced("ABC123")
	require.NoError(t, err)
	assert.False(t, ref)

	_, err = s.InsertFile("a.txt", "ABC123", RootFolderTagID)
	require.NoError(t, err)

	ref, err = s.HashReferenced("ABC123")
	require.NoError(t, err)
	assert.True(t, ref)

	many, err := s.HashReferencedMoreThanOnce("ABC123")
	require.NoError(t, err)
	assert.False(t, many)

	_, err = s.InsertFile("b.txt", "ABC123", RootFolderTagID)
	require.NoError(t, err)

	many, err = s.HashReferencedMoreThanOnce("ABC123")
	require.NoError(t, err)
	assert.True(t, many)
}

func TestInsertAndDeleteTag(t *testing.T) {
	s := openTestStore(t)

	id, err := s.InsertTag("photos", RootTagID+";")
	require.NoError(t, err)
	require.NoError(t, s.UpdateChildTagIDsRaw(RootTagID, id+";"))

	found, err := s.TagID("photos")
	require.NoError(t, err)
	assert.Equal(t, id, found)

	require.NoError(t, s.DeleteTagRow(id))
	found, err = s.TagID("photos")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFlushAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata", "fs.db")

	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.InsertFile("persisted.txt", "FEEDFACE", RootFolderTagID)
	require.NoError(t, err)
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	id, err := reopened.GetFileID("persisted.txt", RootFolderTagID)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
