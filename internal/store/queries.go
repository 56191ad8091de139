package store

import "strconv"

// This file exposes the prepared-statement catalogue as a typed Go API.
// Every method here corresponds 1:1 to a statement in the catalogue;
// internal/model calls these instead of touching SQL directly.

// GetFileID resolves a file by name within a folder. Returns "" if absent.
func (s *Store) GetFileID(name, parentFolder string) (string, error) {
	return s.scalar(stmtGetFileID, name, parentFolder)
}

// FileIDsInFolder lists the file_ids directly under a folder.
func (s *Store) FileIDsInFolder(parentFolder string) ([]string, error) {
	return s.column(stmtGetFileIDsInFolder, parentFolder)
}

// FilenameFromID resolves a file_id to its filename.
func (s *Store) FilenameFromID(fileID string) (string, error) {
	return s.scalar(stmtGetFilenameFromID, fileID)
}

// Hash returns the content hash stored for a file_id.
func (s *Store) Hash(fileID string) (string, error) {
	return s.scalar(stmtGetHash, fileID)
}

// HashReferenced reports whether at least one file references hash.
func (s *Store) HashReferenced(hash string) (bool, error) {
	v, err := s.scalar(stmtCountHashGT0, hash)
	return v == "1", err
}

// HashReferencedMoreThanOnce reports whether more than one file
// references hash.
func (s *Store) HashReferencedMoreThanOnce(hash string) (bool, error) {
	v, err := s.scalar(stmtCountHashGT1, hash)
	return v == "1", err
}

// UpdateHash rewrites the hash of an existing file row.
func (s *Store) UpdateHash(fileID, hash string) error {
	_, err := s.exec(stmtUpdateHash, hash, fileID)
	return err
}

// InsertFile inserts a new file row and returns its assigned file_id.
func (s *Store) InsertFile(name, hash, parentFolder string) (string, error) {
	id, err := s.execLastInsertID(stmtInsertFile, name, hash, parentFolder)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

// DeleteFileRow removes a file row by id.
func (s *Store) DeleteFileRow(fileID string) error {
	_, err := s.exec(stmtDeleteFile, fileID)
	return err
}

// UpdateFileNameParent renames/moves a file row.
func (s *Store) UpdateFileNameParent(fileID, name, parentFolder string) error {
	_, err := s.exec(stmtUpdateFileNameParent, name, parentFolder, fileID)
	return err
}

// FolderID resolves a folder by name within a parent folder.
func (s *Store) FolderID(name, parentFolder string) (string, error) {
	return s.scalar(stmtGetFolderID, name, parentFolder)
}

// FolderIDsInFolder lists the subfolder tag_ids directly under a folder.
func (s *Store) FolderIDsInFolder(parentFolder string) ([]string, error) {
	return s.column(stmtGetFolderIDsInFolder, parentFolder)
}

// FolderName resolves a folder tag_id to its name.
func (s *Store) FolderName(tagID string) (string, error) {
	return s.scalar(stmtGetFolderNameFromID, tagID)
}

// InsertFolder inserts a new folder row and returns its assigned tag_id.
func (s *Store) InsertFolder(name, parentFolder string) (string, error) {
	id, err := s.execLastInsertID(stmtInsertFolder, name, parentFolder)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

// DeleteFolderRow removes a folder row by id.
func (s *Store) DeleteFolderRow(tagID string) error {
	_, err := s.exec(stmtDeleteFolder, tagID)
	return err
}

// UpdateFolderNameParent renames/moves a folder row.
func (s *Store) UpdateFolderNameParent(tagID, name, parentFolder string) error {
	_, err := s.exec(stmtUpdateFolderNameParent, name, parentFolder, tagID)
	return err
}

// TagID resolves a tag by name. Returns "" if absent.
func (s *Store) TagID(name string) (string, error) {
	return s.scalar(stmtGetTagID, name)
}

// TagName resolves a tag_id to its name.
func (s *Store) TagName(tagID string) (string, error) {
	return s.scalar(stmtGetTagNameFromID, tagID)
}

// AllTagIDs lists every tag (not folder) tag_id.
func (s *Store) AllTagIDs() ([]string, error) {
	return s.column(stmtGetAllTagIDs)
}

// ParentTagIDsRaw returns the raw semicolon-delimited parent_tags column.
func (s *Store) ParentTagIDsRaw(tagID string) (string, error) {
	return s.scalar(stmtGetParentTagIDs, tagID)
}

// ChildTagIDsRaw returns the raw semicolon-delimited child_tags column.
func (s *Store) ChildTagIDsRaw(tagID string) (string, error) {
	return s.scalar(stmtGetChildTagIDs, tagID)
}

// FilesIDsRaw returns the raw semicolon-delimited files_ids column.
func (s *Store) FilesIDsRaw(tagID string) (string, error) {
	return s.scalar(stmtGetFilesIDs, tagID)
}

// InsertTag inserts a new tag row (parent_folder fixed to '0') and returns
// its assigned tag_id. parentTagsRaw seeds the parent_tags column directly
// so the caller can create the node and its upward edge in one statement.
func (s *Store) InsertTag(name, parentTagsRaw string) (string, error) {
	id, err := s.execLastInsertID(stmtInsertTag, name, parentTagsRaw)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

// DeleteTagRow removes a tag row by id.
func (s *Store) DeleteTagRow(tagID string) error {
	_, err := s.exec(stmtDeleteTag, tagID)
	return err
}

// UpdateParentTagIDsRaw overwrites the parent_tags column.
func (s *Store) UpdateParentTagIDsRaw(tagID, raw string) error {
	_, err := s.exec(stmtUpdateParentTagIDs, raw, tagID)
	return err
}

// UpdateChildTagIDsRaw overwrites the child_tags column.
func (s *Store) UpdateChildTagIDsRaw(tagID, raw string) error {
	_, err := s.exec(stmtUpdateChildTagIDs, raw, tagID)
	return err
}

// UpdateFilesIDsRaw overwrites the files_ids column.
func (s *Store) UpdateFilesIDsRaw(tagID, raw string) error {
	_, err := s.exec(stmtUpdateFilesIDs, raw, tagID)
	return err
}

// UpdateTagName renames a tag in place.
func (s *Store) UpdateTagName(tagID, name string) error {
	_, err := s.exec(stmtUpdateTagName, name, tagID)
	return err
}

// TagFilesRow is one row of the full tag scan used by GetFileTags.
type TagFilesRow struct {
	TagID      string
	TagName    string
	FilesIDsRaw string
}

// AllTagFilesRows returns tag_id/tag_name/files_ids for every tag, used to
// find every tag a given file_id belongs to.
func (s *Store) AllTagFilesRows() ([]TagFilesRow, error) {
	raw, err := s.rows(stmtGetFileTags)
	if err != nil {
		return nil, err
	}
	out := make([]TagFilesRow, len(raw))
	for i, r := range raw {
		out[i] = TagFilesRow{TagID: r[0], TagName: r[1], FilesIDsRaw: r[2]}
	}
	return out, nil
}

// CountFiles returns the total number of file rows.
func (s *Store) CountFiles() (int, error) {
	v, err := s.scalar(stmtCountFiles)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// CountTopTags returns the number of tags (rows with parent_folder 0);
// folders and the two reserved roots are not counted.
func (s *Store) CountTopTags() (int, error) {
	v, err := s.scalar(stmtCountTopTags)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// CountDistinctHashes returns the number of distinct content hashes
// referenced by any file row.
func (s *Store) CountDistinctHashes() (int, error) {
	v, err := s.scalar(stmtCountDistinctHashes)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}
