// Package store implements the Metadata Store: an embedded relational
// store over the file and tag tables, accessed exclusively through a
// closed catalogue of prepared statements.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/taggablefs/tagfs/internal/util"
)

var log = util.GetLogger("Store")

// statement names, one per entry in the prepared-statement catalogue.
// Grouped the way TFSManager.cpp's prepareStatements groups them: file
// lookups, folder lookups, tag lookups, and the mutating statements each
// operation needs.
const (
	stmtGetFileID             = "get_file_id"
	stmtGetFileIDsInFolder    = "get_file_ids_in_folder"
	stmtGetFilenameFromID     = "get_filename_from_id"
	stmtGetFolderID           = "get_folder_id"
	stmtGetHash               = "get_hash"
	stmtCountHashGT0          = "count_hash_gt_0"
	stmtCountHashGT1          = "count_hash_gt_1"
	stmtUpdateHash            = "update_hash"
	stmtInsertFile            = "insert_file"
	stmtDeleteFile            = "delete_file"
	stmtUpdateFileNameParent  = "update_file_name_parent"
	stmtGetFolderIDsInFolder  = "get_folder_ids_in_folder"
	stmtGetFolderNameFromID   = "get_folder_name_from_id"
	stmtInsertFolder          = "insert_folder"
	stmtDeleteFolder          = "delete_folder"
	stmtUpdateFolderNameParent = "update_folder_name_parent"
	stmtGetTagID              = "get_tag_id"
	stmtGetTagNameFromID      = "get_tag_name_from_id"
	stmtGetAllTagIDs          = "get_all_tag_ids"
	stmtGetParentTagIDs       = "get_parent_tag_ids"
	stmtGetChildTagIDs        = "get_child_tag_ids"
	stmtGetFilesIDs           = "get_files_ids"
	stmtInsertTag             = "insert_tag"
	stmtDeleteTag             = "delete_tag"
	stmtUpdateParentTagIDs    = "update_parent_tag_ids"
	stmtUpdateChildTagIDs     = "update_child_tag_ids"
	stmtUpdateFilesIDs        = "update_files_ids"
	stmtUpdateTagName         = "update_tag_name"
	stmtGetFileTags           = "get_file_tags"
	stmtCountFiles            = "count_files"
	stmtCountTopTags          = "count_top_tags"
	stmtCountDistinctHashes   = "count_distinct_hashes"
)

// catalogue is the closed set of parameterised SQL statements the store
// may execute; no other query text reaches the database.
var catalogue = map[string]string{
	stmtGetFileID:          `SELECT file_id FROM files WHERE filename = ? AND parent_folder = ?`,
	stmtGetFileIDsInFolder: `SELECT file_id FROM files WHERE parent_folder = ? ORDER BY file_id`,
	stmtGetFilenameFromID:  `SELECT filename FROM files WHERE file_id = ?`,
	stmtGetFolderID:        `SELECT tag_id FROM tags WHERE tag_name = ? AND parent_folder = ?`,
	stmtGetHash:            `SELECT hash FROM files WHERE file_id = ?`,
	stmtCountHashGT0:       `SELECT CASE WHEN COUNT(*) > 0 THEN 1 ELSE 0 END FROM files WHERE hash = ?`,
	stmtCountHashGT1:       `SELECT CASE WHEN COUNT(*) > 1 THEN 1 ELSE 0 END FROM files WHERE hash = ?`,
	stmtUpdateHash:         `UPDATE files SET hash = ? WHERE file_id = ?`,
	stmtInsertFile:         `INSERT INTO files (filename, hash, parent_folder) VALUES (?, ?, ?)`,
	stmtDeleteFile:         `DELETE FROM files WHERE file_id = ?`,
	stmtUpdateFileNameParent: `UPDATE files SET filename = ?, parent_folder = ? WHERE file_id = ?`,
	stmtGetFolderIDsInFolder: `SELECT tag_id FROM tags WHERE parent_folder = ? ORDER BY tag_id`,
	stmtGetFolderNameFromID:  `SELECT tag_name FROM tags WHERE tag_id = ?`,
	stmtInsertFolder:         `INSERT INTO tags (tag_name, parent_folder, parent_tags, child_tags, files_ids) VALUES (?, ?, '', '', '')`,
	stmtDeleteFolder:         `DELETE FROM tags WHERE tag_id = ?`,
	stmtUpdateFolderNameParent: `UPDATE tags SET tag_name = ?, parent_folder = ? WHERE tag_id = ?`,
	stmtGetTagID:            `SELECT tag_id FROM tags WHERE tag_name = ? AND parent_folder = '0'`,
	stmtGetTagNameFromID:    `SELECT tag_name FROM tags WHERE tag_id = ?`,
	stmtGetAllTagIDs:        `SELECT tag_id FROM tags WHERE parent_folder = '0'`,
	stmtGetParentTagIDs:     `SELECT parent_tags FROM tags WHERE tag_id = ?`,
	stmtGetChildTagIDs:      `SELECT child_tags FROM tags WHERE tag_id = ?`,
	stmtGetFilesIDs:         `SELECT files_ids FROM tags WHERE tag_id = ?`,
	stmtInsertTag:           `INSERT INTO tags (tag_name, parent_folder, parent_tags, child_tags, files_ids) VALUES (?, '0', ?, '', '')`,
	stmtDeleteTag:           `DELETE FROM tags WHERE tag_id = ?`,
	stmtUpdateParentTagIDs:  `UPDATE tags SET parent_tags = ? WHERE tag_id = ?`,
	stmtUpdateChildTagIDs:   `UPDATE tags SET child_tags = ? WHERE tag_id = ?`,
	stmtUpdateFilesIDs:      `UPDATE tags SET files_ids = ? WHERE tag_id = ?`,
	stmtUpdateTagName:       `UPDATE tags SET tag_name = ? WHERE tag_id = ?`,
	stmtGetFileTags:         `SELECT tag_id, tag_name, files_ids FROM tags WHERE parent_folder = '0'`,
	stmtCountFiles:          `SELECT COUNT(*) FROM files`,
	stmtCountTopTags:        `SELECT COUNT(*) FROM tags WHERE parent_folder = '0'`,
	stmtCountDistinctHashes: `SELECT COUNT(DISTINCT hash) FROM files`,
}

// tableNames lists every table the bulk load/flush must copy, in an order
// safe for foreign-key insertion (tags before files).
var tableNames = []string{"tags", "files"}

// Store is the Metadata Store: an in-memory SQLite database accessed
// exclusively through prepared statements, bulk-loaded from and flushed
// to a backing file.
type Store struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
	path  string
}

// Open creates the in-memory Metadata Store, preparing the full statement
// catalogue and loading existing state from path if present, or seeding a
// fresh schema with the two reserved roots otherwise.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("store: open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite only supports one writer

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	s := &Store{db: db, stmts: make(map[string]*sql.Stmt, len(catalogue)), path: path}
	for name, query := range catalogue {
		stmt, err := db.Prepare(query)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("store: prepare %s: %w", name, err)
		}
		s.stmts[name] = stmt
	}

	if _, err := os.Stat(path); err == nil {
		if err := s.loadFromFile(path); err != nil {
			s.Close()
			return nil, fmt.Errorf("store: load from %s: %w", path, err)
		}
		log.Info().Str("path", path).Msg("loaded metadata store from disk")
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			s.Close()
			return nil, fmt.Errorf("store: create metadata dir: %w", err)
		}
		if _, err := db.Exec(rootRowsDML); err != nil {
			s.Close()
			return nil, fmt.Errorf("store: seed reserved roots: %w", err)
		}
		log.Info().Str("path", path).Msg("initialised fresh metadata store")
	}

	return s, nil
}

// loadFromFile bulk-copies every row from the file-backed database at path
// into the in-memory database, mirroring the semantics of the original
// sqlite3_backup API using ATTACH DATABASE, the mechanism database/sql's
// driver actually exposes.
func (s *Store) loadFromFile(path string) error {
	if _, err := s.db.Exec(`ATTACH DATABASE ? AS disk`, path); err != nil {
		return err
	}
	defer s.db.Exec(`DETACH DATABASE disk`)

	for _, table := range tableNames {
		if _, err := s.db.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
		if _, err := s.db.Exec(`INSERT INTO main.` + table + ` SELECT * FROM disk.` + table); err != nil {
			return err
		}
	}
	return nil
}

// Flush bulk-copies every row from the in-memory database back to the
// backing file, replacing it wholesale. Failures here are fatal: the
// caller is expected to log and exit, since a failed flush means the
// daemon cannot durably persist its state.
func (s *Store) Flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	if _, err := s.db.Exec(`ATTACH DATABASE ? AS disk`, s.path); err != nil {
		return err
	}
	defer s.db.Exec(`DETACH DATABASE disk`)

	for _, table := range tableNames {
		createStmt := `CREATE TABLE IF NOT EXISTS disk.` + table + ` AS SELECT * FROM main.` + table + ` WHERE 0`
		if _, err := s.db.Exec(createStmt); err != nil {
			return err
		}
		if _, err := s.db.Exec(`INSERT INTO disk.` + table + ` SELECT * FROM main.` + table); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every prepared statement and the underlying connection.
func (s *Store) Close() error {
	for _, stmt := range s.stmts {
		stmt.Close()
	}
	return s.db.Close()
}

// scalar runs stmt and returns the first column of the first row, or ""
// if there are no rows. Mirrors dbExecuteSV.
func (s *Store) scalar(name string, args ...any) (string, error) {
	row := s.stmts[name].QueryRow(args...)
	var v sql.NullString
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return v.String, nil
}

// column runs stmt and returns the first column across every row. Mirrors
// dbExecuteMV.
func (s *Store) column(name string, args ...any) ([]string, error) {
	rows, err := s.stmts[name].Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// rows runs stmt and returns every column of every row. Mirrors
// dbExecuteMR.
func (s *Store) rows(name string, args ...any) ([][]string, error) {
	rset, err := s.stmts[name].Query(args...)
	if err != nil {
		return nil, err
	}
	defer rset.Close()

	cols, err := rset.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]string
	for rset.Next() {
		raw := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rset.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]string, len(cols))
		for i, v := range raw {
			row[i] = v.String
		}
		out = append(out, row)
	}
	return out, rset.Err()
}

// exec runs a mutating statement and returns the number of affected rows.
func (s *Store) exec(name string, args ...any) (int64, error) {
	res, err := s.stmts[name].Exec(args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// execLastInsertID runs an INSERT statement and returns the new row id.
func (s *Store) execLastInsertID(name string, args ...any) (int64, error) {
	res, err := s.stmts[name].Exec(args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
