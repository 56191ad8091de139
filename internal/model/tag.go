package model

import (
	"github.com/taggablefs/tagfs/internal/store"
)

// resolveTagPath resolves a tag-view path to the tag_id of its leaf
// component. Per the carried-forward redesign decision in DESIGN.md
// (Open Question b), intermediate path components need only be *some*
// ancestor of the leaf tag, not a strict linear parent chain: the leaf is
// found by its name alone (tag names are globally unique), and every
// other component is checked against the leaf's full ancestor closure.
// A path without a leading slash (such as a bare tag name) is resolved as
// if it had one.
func (m *Model) resolveTagPath(path string) (string, error) {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	parts := splitPath(path)
	if len(parts) == 0 {
		return store.RootTagID, nil
	}

	leafName := parts[len(parts)-1]
	leafID, err := m.store.TagID(leafName)
	if err != nil {
		return "", wrapIO(err)
	}
	if leafID == "" {
		return "", ErrNoEntry
	}

	if len(parts) == 1 {
		return leafID, nil
	}

	ancestorNames, err := m.ancestorNameSet(leafID)
	if err != nil {
		return "", err
	}
	for _, p := range parts[:len(parts)-1] {
		if !ancestorNames[p] {
			return "", ErrNoEntry
		}
	}
	return leafID, nil
}

// ancestorNameSet returns the set of names of every ancestor of tagID
// (the transitive closure over parent_tags), used by resolveTagPath and
// the cycle check in NestTag.
func (m *Model) ancestorNameSet(tagID string) (map[string]bool, error) {
	ids, err := m.ancestorTagIDs(tagID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(ids))
	for _, id := range ids {
		name, err := m.store.TagName(id)
		if err != nil {
			return nil, wrapIO(err)
		}
		names[name] = true
	}
	return names, nil
}

// ancestorTagIDs walks parent_tags upward from tagID, returning every
// ancestor id reached (not including tagID itself), stopping at the
// sentinel root.
func (m *Model) ancestorTagIDs(tagID string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	var walk func(id string) error
	walk = func(id string) error {
		if id == "" || id == store.RootTagID {
			return nil
		}
		parents, err := m.parentTagIDs(id)
		if err != nil {
			return err
		}
		for _, p := range parents {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
			if err := walk(p); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(tagID); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Model) parentTagIDs(tagID string) ([]string, error) {
	raw, err := m.store.ParentTagIDsRaw(tagID)
	if err != nil {
		return nil, wrapIO(err)
	}
	return deserializeIDs(raw), nil
}

func (m *Model) childTagIDs(tagID string) ([]string, error) {
	raw, err := m.store.ChildTagIDsRaw(tagID)
	if err != nil {
		return nil, wrapIO(err)
	}
	return deserializeIDs(raw), nil
}

// ListTagChildren lists the names of every child tag and every tagged
// file directly under the resolved tag path, tags first.
func (m *Model) ListTagChildren(tagPath string) ([]string, error) {
	tagID, err := m.resolveTagPath(tagPath)
	if err != nil {
		return nil, err
	}

	children, err := m.childTagIDs(tagID)
	if err != nil {
		return nil, err
	}
	files, err := m.tagFileIDs(tagID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(children)+len(files))
	for _, id := range children {
		name, err := m.store.TagName(id)
		if err != nil {
			return nil, wrapIO(err)
		}
		names = append(names, name)
	}
	for _, id := range files {
		name, err := m.store.FilenameFromID(id)
		if err != nil {
			return nil, wrapIO(err)
		}
		names = append(names, name)
	}
	return names, nil
}

// CreateTag creates a new tag. tagOrPath may be a bare name (parented
// under the sentinel root) or a path whose parent resolves to an
// existing tag.
func (m *Model) CreateTag(tagOrPath string) error {
	name := baseName(tagOrPath)
	if existing, err := m.store.TagID(name); err != nil {
		return wrapIO(err)
	} else if existing != "" {
		return ErrExists
	}

	parentID := store.RootTagID
	if p := parentPath(tagOrPath); p != "" {
		id, err := m.resolveTagPath(p)
		if err != nil {
			return err
		}
		parentID = id
	}

	newID, err := m.store.InsertTag(name, parentID+";")
	if err != nil {
		return wrapIO(err)
	}

	children, err := m.childTagIDs(parentID)
	if err != nil {
		return err
	}
	children = appendUniqueID(children, newID)
	if err := m.store.UpdateChildTagIDsRaw(parentID, serializeIDs(children)); err != nil {
		return wrapIO(err)
	}
	return nil
}

// DeleteTag removes a tag that has neither child tags nor tagged files.
func (m *Model) DeleteTag(tagOrPath string) error {
	tagID, err := m.resolveTagPath(tagOrPath)
	if err != nil {
		return err
	}

	children, err := m.childTagIDs(tagID)
	if err != nil {
		return err
	}
	files, err := m.tagFileIDs(tagID)
	if err != nil {
		return err
	}
	if len(children) > 0 || len(files) > 0 {
		return ErrNotEmpty
	}

	parents, err := m.parentTagIDs(tagID)
	if err != nil {
		return err
	}
	for _, parentID := range parents {
		siblings, err := m.childTagIDs(parentID)
		if err != nil {
			return err
		}
		siblings = removeID(siblings, tagID)
		if err := m.store.UpdateChildTagIDsRaw(parentID, serializeIDs(siblings)); err != nil {
			return wrapIO(err)
		}
	}

	return wrapIO(m.store.DeleteTagRow(tagID))
}

// TagFiles tags every file named by path (a single file, or every direct
// child of a folder) with tagName, auto-creating the tag if it does not
// yet exist.
func (m *Model) TagFiles(path, tagName string) error {
	tagID, err := m.store.TagID(tagName)
	if err != nil {
		return wrapIO(err)
	}
	if tagID == "" {
		if err := m.CreateTag(tagName); err != nil {
			return err
		}
		tagID, err = m.store.TagID(tagName)
		if err != nil {
			return wrapIO(err)
		}
	}

	parentID, err := m.resolveFolder(parentPath(path))
	if err != nil {
		return err
	}
	name := baseName(path)

	if fileID, err := m.store.GetFileID(name, parentID); err != nil {
		return wrapIO(err)
	} else if fileID != "" {
		return m.tagSingleFile(tagID, fileID)
	}

	if folderID, err := m.store.FolderID(name, parentID); err != nil {
		return wrapIO(err)
	} else if folderID != "" {
		fileIDs, err := m.store.FileIDsInFolder(folderID)
		if err != nil {
			return wrapIO(err)
		}
		var accumulated error
		for _, fileID := range fileIDs {
			if err := m.tagSingleFile(tagID, fileID); err != nil {
				accumulated = err
			}
		}
		return accumulated
	}

	return ErrNoEntry
}

func (m *Model) tagSingleFile(tagID, fileID string) error {
	ids, err := m.tagFileIDs(tagID)
	if err != nil {
		return err
	}
	name, err := m.store.FilenameFromID(fileID)
	if err != nil {
		return wrapIO(err)
	}
	for _, id := range ids {
		if id == fileID {
			continue
		}
		other, err := m.store.FilenameFromID(id)
		if err != nil {
			return wrapIO(err)
		}
		if other == name {
			return ErrExists
		}
	}
	ids = appendUniqueID(ids, fileID)
	return wrapIO(m.store.UpdateFilesIDsRaw(tagID, serializeIDs(ids)))
}

// UntagFiles removes the tag relationship between tagName and every file
// named by path, without auto-creating the tag.
func (m *Model) UntagFiles(path, tagName string) error {
	tagID, err := m.store.TagID(tagName)
	if err != nil {
		return wrapIO(err)
	}
	if tagID == "" {
		return ErrNoEntry
	}

	parentID, err := m.resolveFolder(parentPath(path))
	if err != nil {
		return err
	}
	name := baseName(path)

	if fileID, err := m.store.GetFileID(name, parentID); err != nil {
		return wrapIO(err)
	} else if fileID != "" {
		return m.untagSingleFile(tagID, fileID)
	}

	if folderID, err := m.store.FolderID(name, parentID); err != nil {
		return wrapIO(err)
	} else if folderID != "" {
		fileIDs, err := m.store.FileIDsInFolder(folderID)
		if err != nil {
			return wrapIO(err)
		}
		var accumulated error
		for _, fileID := range fileIDs {
			if err := m.untagSingleFile(tagID, fileID); err != nil {
				accumulated = err
			}
		}
		return accumulated
	}

	return ErrNoEntry
}

func (m *Model) untagSingleFile(tagID, fileID string) error {
	ids, err := m.tagFileIDs(tagID)
	if err != nil {
		return err
	}
	if !containsID(ids, fileID) {
		return ErrNoEntry
	}
	ids = removeID(ids, fileID)
	return wrapIO(m.store.UpdateFilesIDsRaw(tagID, serializeIDs(ids)))
}

// NestTag links child as a nested tag under parent, rejecting the edge if
// it already exists or would introduce a cycle.
func (m *Model) NestTag(child, parent string) error {
	childID, err := m.store.TagID(child)
	if err != nil {
		return wrapIO(err)
	}
	parentID, err := m.store.TagID(parent)
	if err != nil {
		return wrapIO(err)
	}
	if childID == "" || parentID == "" {
		return ErrNoEntry
	}

	childParents, err := m.parentTagIDs(childID)
	if err != nil {
		return err
	}
	parentChildren, err := m.childTagIDs(parentID)
	if err != nil {
		return err
	}
	if containsID(childParents, parentID) || containsID(parentChildren, childID) {
		return ErrExists
	}

	ancestors, err := m.ancestorTagIDs(parentID)
	if err != nil {
		return err
	}
	if containsID(ancestors, childID) || parentID == childID {
		return ErrCycle
	}

	childParents = appendUniqueID(childParents, parentID)
	if err := m.store.UpdateParentTagIDsRaw(childID, serializeIDs(childParents)); err != nil {
		return wrapIO(err)
	}
	parentChildren = appendUniqueID(parentChildren, childID)
	return wrapIO(m.store.UpdateChildTagIDsRaw(parentID, serializeIDs(parentChildren)))
}

// UnnestTag removes a nesting edge between child and parent.
func (m *Model) UnnestTag(child, parent string) error {
	childID, err := m.store.TagID(child)
	if err != nil {
		return wrapIO(err)
	}
	parentID, err := m.store.TagID(parent)
	if err != nil {
		return wrapIO(err)
	}
	if childID == "" || parentID == "" {
		return ErrNoEntry
	}

	childParents, err := m.parentTagIDs(childID)
	if err != nil {
		return err
	}
	parentChildren, err := m.childTagIDs(parentID)
	if err != nil {
		return err
	}
	if !containsID(childParents, parentID) || !containsID(parentChildren, childID) {
		return ErrNoEntry
	}

	if err := m.store.UpdateParentTagIDsRaw(childID, serializeIDs(removeID(childParents, parentID))); err != nil {
		return wrapIO(err)
	}
	return wrapIO(m.store.UpdateChildTagIDsRaw(parentID, serializeIDs(removeID(parentChildren, childID))))
}

// RenameTaggedPath implements the tag-view rename/move operation: moving
// a file between tags (names must match) or renaming/reparenting a tag.
func (m *Model) RenameTaggedPath(oldPath, newPath string) error {
	oldParentID, err := m.resolveTagPath(parentPath(oldPath))
	if err != nil {
		return ErrNoEntry
	}
	newParentID, err := m.resolveTagPath(parentPath(newPath))
	if err != nil {
		return ErrNoEntry
	}

	oldName := baseName(oldPath)
	newName := baseName(newPath)

	oldFileID, err := m.taggedFileID(oldParentID, oldName)
	if err != nil {
		return err
	}
	newFileID, err := m.taggedFileID(newParentID, newName)
	if err != nil {
		return err
	}
	oldTagID, _ := m.store.TagID(oldName)
	newTagID, _ := m.store.TagID(newName)

	switch {
	case oldFileID != "" && newTagID == "" && newFileID == "":
		if oldName != newName {
			return ErrInvalid
		}
		if err := m.untagSingleFile(oldParentID, oldFileID); err != nil {
			return err
		}
		return m.tagSingleFile(newParentID, oldFileID)

	case oldTagID != "" && newFileID == "":
		if newTagID != "" && newTagID != oldTagID {
			return ErrInvalid
		}
		if oldParentID != newParentID {
			if err := m.UnnestTag(oldName, mustTagName(m, oldParentID)); err != nil {
				return err
			}
			if err := m.NestTag(oldName, mustTagName(m, newParentID)); err != nil {
				return err
			}
		}
		if newTagID == "" && newName != oldName {
			return wrapIO(m.store.UpdateTagName(oldTagID, newName))
		}
		if newTagID == "" && oldParentID == newParentID {
			return ErrInvalid
		}
		return nil

	default:
		return ErrInvalid
	}
}

// mustTagName resolves a tag_id back to its name for the rare cases where
// NestTag/UnnestTag's string-typed API needs one; tagID is always one this
// package itself produced, so failure here indicates corrupted state and
// is treated as an empty name (the subsequent call then fails with
// ErrNoEntry, which is still a sane outcome).
func mustTagName(m *Model, tagID string) string {
	name, _ := m.store.TagName(tagID)
	return name
}

// taggedFileID looks up the file_id of a tagged file named name directly
// under tagID, or "" if no such file is tagged there.
func (m *Model) taggedFileID(tagID, name string) (string, error) {
	ids, err := m.tagFileIDs(tagID)
	if err != nil {
		return "", err
	}
	for _, id := range ids {
		fname, err := m.store.FilenameFromID(id)
		if err != nil {
			return "", wrapIO(err)
		}
		if fname == name {
			return id, nil
		}
	}
	return "", nil
}

// GetTaggedFilePath resolves a tag-view path to the real blob path of the
// tagged file it names.
func (m *Model) GetTaggedFilePath(path string) (string, error) {
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
	hash, err := m.store.Hash(fileID)
	if err != nil {
		return "", wrapIO(err)
	}
	return m.blobPath(hash), nil
}

// GetFileTags returns the names of every tag referencing fileID.
func (m *Model) GetFileTags(fileID string) ([]string, error) {
	rows, err := m.store.AllTagFilesRows()
	if err != nil {
		return nil, wrapIO(err)
	}
	var names []string
	for _, row := range rows {
		if containsID(deserializeIDs(row.FilesIDsRaw), fileID) {
			names = append(names, row.TagName)
		}
	}
	return names, nil
}

// SearchByTags resolves a set of tag names to the files tagged with all of
// them (strict) or any of them (non-strict). An unknown tag name yields an
// empty result in either mode.
func (m *Model) SearchByTags(tags []string, strict bool) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	sets := make([][]string, 0, len(tags))
	for _, name := range tags {
		tagID, err := m.store.TagID(name)
		if err != nil {
			return nil, wrapIO(err)
		}
		if tagID == "" {
			return nil, nil
		}
		ids, err := m.tagFileIDs(tagID)
		if err != nil {
			return nil, err
		}
		sets = append(sets, ids)
	}

	var result []string
	if strict {
		result = sets[0]
		for _, s := range sets[1:] {
			result = intersect(result, s)
		}
	} else {
		seen := map[string]bool{}
		for _, s := range sets {
			for _, id := range s {
				if !seen[id] {
					seen[id] = true
					result = append(result, id)
				}
			}
		}
	}

	names := make([]string, 0, len(result))
	for _, id := range result {
		name, err := m.store.FilenameFromID(id)
		if err != nil {
			return nil, wrapIO(err)
		}
		names = append(names, name)
	}
	return names, nil
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	var out []string
	for _, v := range a {
		if set[v] {
			out = append(out, v)
		}
	}
	return out
}
