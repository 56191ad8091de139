package model

// FileIDForPath resolves a default-mode path to its underlying file_id,
// used by operations (like GetFileTags) that are addressed by path at
// the wire layer but keyed by file_id in the Metadata Store.
func (m *Model) FileIDForPath(path string) (string, error) {
	parentID, err := m.resolveFolder(parentPath(path))
	if err != nil {
		return "", err
	}
	fileID, err := m.store.GetFileID(baseName(path), parentID)
	if err != nil {
		return "", wrapIO(err)
	}
	if fileID == "" {
		return "", ErrNoEntry
	}
	return fileID, nil
}

// FileIDForTaggedPath resolves a tag-view path to its underlying file_id.
func (m *Model) FileIDForTaggedPath(path string) (string, error) {
	tagID, err := m.resolveTagPath(parentPath(path))
	if err != nil {
		return "", err
	}
	fileID, err := m.taggedFileID(tagID, baseName(path))
	if err != nil {
		return "", err
	}
	if fileID == "" {
		return "", ErrNoEntry
	}
	return fileID, nil
}

// UntagTaggedPath removes the file named by a tag-view path from the tag
// that directly contains it (the tag-view analogue of DeleteFile: the
// bridge's unlink request in tag-view mode means "remove this tagging",
// not "delete the underlying file").
func (m *Model) UntagTaggedPath(path string) error {
	tagID, err := m.resolveTagPath(parentPath(path))
	if err != nil {
		return err
	}
	fileID, err := m.taggedFileID(tagID, baseName(path))
	if err != nil {
		return err
	}
	if fileID == "" {
		return ErrNoEntry
	}
	return m.untagSingleFile(tagID, fileID)
}
