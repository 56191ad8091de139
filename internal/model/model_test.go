package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taggablefs/tagfs/internal/hashing"
	"github.com/taggablefs/tagfs/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "metadata", "fs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	root := t.TempDir()
	return New(st, root)
}

func writeBlob(t *testing.T, m *Model, hash string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(m.blobPath(hash), content, 0o644))
}

func createFileWithContent(t *testing.T, m *Model, path string, content []byte) {
	t.Helper()
	blobPath, err := m.CreateFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(blobPath, content, 0o644))

	hash := hashing.SumBytes(content)
	final := filepath.Join(filepath.Dir(blobPath), hash)
	require.NoError(t, os.Rename(blobPath, final))

	fileID := fileIDFor(t, m, path)
	require.NoError(t, m.store.UpdateHash(fileID, hash))
}

func fileIDFor(t *testing.T, m *Model, path string) string {
	t.Helper()
	parentID, err := m.resolveFolder(parentPath(path))
	require.NoError(t, err)
	id, err := m.store.GetFileID(baseName(path), parentID)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func TestCreateFolderAndListFolder(t *testing.T) {
	m := newTestModel(t)

	require.NoError(t, m.CreateFolder("/docs"))
	require.ErrorIs(t, m.CreateFolder("/docs"), ErrExists)

	entries, err := m.ListFolder("/")
	require.NoError(t, err)
	assert.Contains(t, entries, "docs")
}

func TestCreateFileAndGetFilePath(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateFolder("/docs"))

	createFileWithContent(t, m, "/docs/a.txt", []byte("hello"))

	path, err := m.GetFilePath("/docs/a.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDeleteFolderNotEmpty(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateFolder("/docs"))
	createFileWithContent(t, m, "/docs/a.txt", []byte("x"))

	assert.ErrorIs(t, m.DeleteFolder("/docs"), ErrNotEmpty)
}

func TestDeleteFileDedupUnlinksOnlyOnLastReference(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateFolder("/docs"))

	createFileWithContent(t, m, "/docs/a.txt", []byte("shared"))
	createFileWithContent(t, m, "/docs/b.txt", []byte("shared"))

	hash := hashing.SumBytes([]byte("shared"))
	blobPath := m.blobPath(hash)

	_, err := m.DeleteFile("/docs/a.txt")
	require.NoError(t, err)
	_, err = os.Stat(blobPath)
	assert.NoError(t, err, "blob should survive while b.txt still references it")

	_, err = m.DeleteFile("/docs/b.txt")
	require.NoError(t, err)
	_, err = os.Stat(blobPath)
	assert.True(t, os.IsNotExist(err), "blob should be unlinked once the last reference is gone")
}

func TestTagFilesAndSearchByTags(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateFolder("/docs"))
	createFileWithContent(t, m, "/docs/a.txt", []byte("a"))
	createFileWithContent(t, m, "/docs/b.txt", []byte("b"))

	require.NoError(t, m.TagFiles("/docs/a.txt", "red"))
	require.NoError(t, m.TagFiles("/docs/a.txt", "urgent"))
	require.NoError(t, m.TagFiles("/docs/b.txt", "red"))

	strict, err := m.SearchByTags([]string{"red", "urgent"}, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt"}, strict)

	any, err := m.SearchByTags([]string{"red", "urgent"}, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, any)
}

func TestTagFilesRejectsDuplicateFilenameUnderSameTag(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateFolder("/docs"))
	require.NoError(t, m.CreateFolder("/more"))
	createFileWithContent(t, m, "/docs/a.txt", []byte("a"))
	createFileWithContent(t, m, "/more/a.txt", []byte("a-different"))

	require.NoError(t, m.TagFiles("/docs/a.txt", "red"))
	assert.ErrorIs(t, m.TagFiles("/more/a.txt", "red"), ErrExists)
}

func TestNestTagRejectsCycle(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateTag("animal"))
	require.NoError(t, m.CreateTag("dog"))
	require.NoError(t, m.NestTag("dog", "animal"))

	assert.ErrorIs(t, m.NestTag("animal", "dog"), ErrCycle)
}

func TestNestTagRejectsDuplicateEdge(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateTag("animal"))
	require.NoError(t, m.CreateTag("dog"))
	require.NoError(t, m.NestTag("dog", "animal"))

	assert.ErrorIs(t, m.NestTag("dog", "animal"), ErrExists)
}

func TestDeleteTagNotEmpty(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateFolder("/docs"))
	createFileWithContent(t, m, "/docs/a.txt", []byte("a"))
	require.NoError(t, m.TagFiles("/docs/a.txt", "red"))

	assert.ErrorIs(t, m.DeleteTag("red"), ErrNotEmpty)

	require.NoError(t, m.UntagFiles("/docs/a.txt", "red"))
	assert.NoError(t, m.DeleteTag("red"))
}

func TestTagViewAncestorPathResolution(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateTag("animal"))
	require.NoError(t, m.CreateTag("mammal"))
	require.NoError(t, m.CreateTag("dog"))
	require.NoError(t, m.NestTag("mammal", "animal"))
	require.NoError(t, m.NestTag("dog", "mammal"))

	// "dog" is reachable through either ancestor name in any position,
	// since intermediate components denote "any ancestor" rather than a
	// strict parent chain.
	id, err := m.resolveTagPath("/animal/dog")
	require.NoError(t, err)
	mammalID, err := m.store.TagID("mammal")
	require.NoError(t, err)
	dogID, err := m.store.TagID("dog")
	require.NoError(t, err)
	assert.Equal(t, dogID, id)
	assert.NotEqual(t, mammalID, id)
}

func TestRenamePathPreservesTags(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateFolder("/docs"))
	createFileWithContent(t, m, "/docs/old.txt", []byte("v1"))
	require.NoError(t, m.TagFiles("/docs/old.txt", "red"))

	createFileWithContent(t, m, "/docs/new.txt", []byte("v2"))

	require.NoError(t, m.RenamePath("/docs/new.txt", "/docs/old.txt"))

	tags, err := m.GetFileTags(fileIDFor(t, m, "/docs/old.txt"))
	require.NoError(t, err)
	assert.Contains(t, tags, "red")
}

func TestSearchByTagsIdempotentOnOrdering(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.CreateFolder("/docs"))
	createFileWithContent(t, m, "/docs/a.txt", []byte("a"))
	require.NoError(t, m.TagFiles("/docs/a.txt", "x"))
	require.NoError(t, m.TagFiles("/docs/a.txt", "y"))

	first, err := m.SearchByTags([]string{"x", "y"}, true)
	require.NoError(t, err)
	second, err := m.SearchByTags([]string{"y", "x"}, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
}
