package model

import (
	"github.com/taggablefs/tagfs/internal/store"
)

// resolveFolder walks path from the default-mode root, returning the
// tag_id of the folder it names. An empty path resolves to the root.
func (m *Model) resolveFolder(path string) (string, error) {
	id := store.RootFolderTagID
	for _, part := range splitPath(path) {
		next, err := m.store.FolderID(part, id)
		if err != nil {
			return "", wrapIO(err)
		}
		if next == "" {
			return "", ErrNoEntry
		}
		id = next
	}
	return id, nil
}

// GetFilePath resolves path to the real blob path backing it.
func (m *Model) GetFilePath(path string) (string, error) {
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
	hash, err := m.store.Hash(fileID)
	if err != nil {
		return "", wrapIO(err)
	}
	return m.blobPath(hash), nil
}

// GetFilePathForWrite returns the same path as GetFilePath. Both resolve
// newly allocated placeholders (whose hash is still a TEMP token rather
// than a content digest) as well as written files, since the bridge needs
// a real path to open for its first write.
func (m *Model) GetFilePathForWrite(path string) (string, error) {
	return m.GetFilePath(path)
}

// ListFolder lists the names of every subfolder and file directly under
// path, subfolders first.
func (m *Model) ListFolder(path string) ([]string, error) {
	folderID, err := m.resolveFolder(path)
	if err != nil {
		return nil, err
	}

	folderIDs, err := m.store.FolderIDsInFolder(folderID)
	if err != nil {
		return nil, wrapIO(err)
	}
	fileIDs, err := m.store.FileIDsInFolder(folderID)
	if err != nil {
		return nil, wrapIO(err)
	}

	names := make([]string, 0, len(folderIDs)+len(fileIDs))
	for _, id := range folderIDs {
		name, err := m.store.FolderName(id)
		if err != nil {
			return nil, wrapIO(err)
		}
		names = append(names, name)
	}
	for _, id := range fileIDs {
		name, err := m.store.FilenameFromID(id)
		if err != nil {
			return nil, wrapIO(err)
		}
		names = append(names, name)
	}
	return names, nil
}

// CreateFolder creates a new empty folder at path.
func (m *Model) CreateFolder(path string) error {
	parentID, err := m.resolveFolder(parentPath(path))
	if err != nil {
		return err
	}
	name := baseName(path)

	if conflict, err := m.siblingExists(parentID, name); err != nil {
		return err
	} else if conflict {
		return ErrExists
	}

	_, err = m.store.InsertFolder(name, parentID)
	if err != nil {
		return wrapIO(err)
	}
	return nil
}

// DeleteFolder removes the empty folder at path, failing with ErrNotEmpty
// if it still contains files or subfolders.
func (m *Model) DeleteFolder(path string) error {
	folderID, err := m.resolveFolder(path)
	if err != nil {
		return err
	}

	files, err := m.store.FileIDsInFolder(folderID)
	if err != nil {
		return wrapIO(err)
	}
	if len(files) > 0 {
		return ErrNotEmpty
	}
	subfolders, err := m.store.FolderIDsInFolder(folderID)
	if err != nil {
		return wrapIO(err)
	}
	if len(subfolders) > 0 {
		return ErrNotEmpty
	}

	return wrapIO(m.store.DeleteFolderRow(folderID))
}

// CreateFile allocates a placeholder file at path and returns the real
// path the bridge should create empty content at. The placeholder token
// is assigned by the core (see nextPlaceholder) rather than by the
// bridge, so a single call both allocates and records it.
func (m *Model) CreateFile(path string) (string, error) {
	parentID, err := m.resolveFolder(parentPath(path))
	if err != nil {
		return "", err
	}
	name := baseName(path)

	if conflict, err := m.siblingExists(parentID, name); err != nil {
		return "", err
	} else if conflict {
		return "", ErrExists
	}

	placeholder := m.nextPlaceholder()
	if _, err := m.store.InsertFile(name, placeholder, parentID); err != nil {
		return "", wrapIO(err)
	}
	return m.blobPath(placeholder), nil
}

// siblingExists reports whether a file or folder named name already
// exists directly under parentID.
func (m *Model) siblingExists(parentID, name string) (bool, error) {
	if id, err := m.store.GetFileID(name, parentID); err != nil {
		return false, wrapIO(err)
	} else if id != "" {
		return true, nil
	}
	if id, err := m.store.FolderID(name, parentID); err != nil {
		return false, wrapIO(err)
	} else if id != "" {
		return true, nil
	}
	return false, nil
}

// DeleteFile removes the file at path, unlinking its blob if this was the
// last reference and dropping it from every tag that referenced it.
// Returns the tags it was removed from, so RenamePath can re-attach them
// to a replacement file.
func (m *Model) DeleteFile(path string) ([]string, error) {
	parentID, err := m.resolveFolder(parentPath(path))
	if err != nil {
		return nil, err
	}
	fileID, err := m.store.GetFileID(baseName(path), parentID)
	if err != nil {
		return nil, wrapIO(err)
	}
	if fileID == "" {
		return nil, ErrNoEntry
	}
	return m.deleteFileByID(fileID)
}

// deleteFileByID performs the unlink/untag/delete-row sequence once the
// file_id is already known.
func (m *Model) deleteFileByID(fileID string) ([]string, error) {
	hash, err := m.store.Hash(fileID)
	if err != nil {
		return nil, wrapIO(err)
	}

	lastRef, err := m.store.HashReferencedMoreThanOnce(hash)
	if err != nil {
		return nil, wrapIO(err)
	}
	if !lastRef {
		if err := m.unlinkBlob(hash); err != nil {
			return nil, err
		}
	}

	removedFrom, err := m.untagFileEverywhere(fileID)
	if err != nil {
		return nil, err
	}

	if err := m.store.DeleteFileRow(fileID); err != nil {
		return nil, wrapIO(err)
	}
	return removedFrom, nil
}

// RenamePath implements the default-mode rename/move operation.
func (m *Model) RenamePath(oldPath, newPath string) error {
	oldParentID, err := m.resolveFolder(parentPath(oldPath))
	if err != nil {
		return err
	}
	oldName := baseName(oldPath)

	oldFileID, err := m.store.GetFileID(oldName, oldParentID)
	if err != nil {
		return wrapIO(err)
	}
	oldFolderID, err := m.store.FolderID(oldName, oldParentID)
	if err != nil {
		return wrapIO(err)
	}

	newParentID, err := m.resolveFolder(parentPath(newPath))
	if err != nil {
		return err
	}
	newName := baseName(newPath)

	newFileID, err := m.store.GetFileID(newName, newParentID)
	if err != nil {
		return wrapIO(err)
	}
	newFolderID, err := m.store.FolderID(newName, newParentID)
	if err != nil {
		return wrapIO(err)
	}

	switch {
	case oldFileID != "" && newFolderID == "":
		if err := m.checkTaggedSiblingConflict(oldFileID, newName); err != nil {
			return err
		}
		var preserved []string
		if newFileID != "" {
			preserved, err = m.deleteFileByID(newFileID)
			if err != nil {
				return err
			}
		}
		if err := m.store.UpdateFileNameParent(oldFileID, newName, newParentID); err != nil {
			return wrapIO(err)
		}
		if len(preserved) > 0 {
			if err := m.reattachTags(oldFileID, preserved); err != nil {
				return err
			}
		}
		return nil

	case oldFolderID != "" && newFileID == "" && newFolderID == "":
		return wrapIO(m.store.UpdateFolderNameParent(oldFolderID, newName, newParentID))

	case oldFileID == "" && oldFolderID == "":
		return ErrNoEntry

	default:
		return ErrExists
	}
}

// checkTaggedSiblingConflict rejects a rename when any tag the file
// carries already has a different file with the destination name,
// matching the original renamePath's cross-tag sibling-uniqueness check.
func (m *Model) checkTaggedSiblingConflict(fileID, newName string) error {
	tags, err := m.tagsContainingFile(fileID)
	if err != nil {
		return err
	}
	for _, tagID := range tags {
		fileIDs, err := m.tagFileIDs(tagID)
		if err != nil {
			return err
		}
		for _, id := range fileIDs {
			if id == fileID {
				continue
			}
			name, err := m.store.FilenameFromID(id)
			if err != nil {
				return wrapIO(err)
			}
			if name == newName {
				return ErrExists
			}
		}
	}
	return nil
}

// reattachTags adds fileID back onto every tag listed in tagIDs, used
// after RenamePath replaces an existing file so the replacement keeps the
// tags the overwritten file carried (P7).
func (m *Model) reattachTags(fileID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		ids, err := m.tagFileIDs(tagID)
		if err != nil {
			return err
		}
		ids = appendUniqueID(ids, fileID)
		if err := m.store.UpdateFilesIDsRaw(tagID, serializeIDs(ids)); err != nil {
			return wrapIO(err)
		}
	}
	return nil
}

// untagFileEverywhere removes fileID from every tag currently referencing
// it, returning the list of tag ids it was removed from.
func (m *Model) untagFileEverywhere(fileID string) ([]string, error) {
	allTags, err := m.store.AllTagIDs()
	if err != nil {
		return nil, wrapIO(err)
	}
	var removedFrom []string
	for _, tagID := range allTags {
		ids, err := m.tagFileIDs(tagID)
		if err != nil {
			return nil, err
		}
		if !containsID(ids, fileID) {
			continue
		}
		ids = removeID(ids, fileID)
		if err := m.store.UpdateFilesIDsRaw(tagID, serializeIDs(ids)); err != nil {
			return nil, wrapIO(err)
		}
		removedFrom = append(removedFrom, tagID)
	}
	return removedFrom, nil
}

func (m *Model) tagFileIDs(tagID string) ([]string, error) {
	raw, err := m.store.FilesIDsRaw(tagID)
	if err != nil {
		return nil, wrapIO(err)
	}
	return deserializeIDs(raw), nil
}

// tagsContainingFile returns every tag_id whose files_ids contains fileID.
func (m *Model) tagsContainingFile(fileID string) ([]string, error) {
	allTags, err := m.store.AllTagIDs()
	if err != nil {
		return nil, wrapIO(err)
	}
	var out []string
	for _, tagID := range allTags {
		ids, err := m.tagFileIDs(tagID)
		if err != nil {
			return nil, err
		}
		if containsID(ids, fileID) {
			out = append(out, tagID)
		}
	}
	return out, nil
}
