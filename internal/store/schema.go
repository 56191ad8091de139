package store

// schemaDDL is emitted verbatim on first initialisation and must compare
// equal on every subsequent reload, per SPEC_FULL.md §6.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS tags (
	tag_id        INTEGER PRIMARY KEY AUTOINCREMENT,
	tag_name      TEXT NOT NULL,
	parent_folder INTEGER NOT NULL,
	parent_tags   TEXT NOT NULL DEFAULT '',
	child_tags    TEXT NOT NULL DEFAULT '',
	files_ids     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS files (
	file_id       INTEGER PRIMARY KEY AUTOINCREMENT,
	filename      TEXT NOT NULL,
	hash          TEXT NOT NULL,
	parent_folder INTEGER NOT NULL,
	FOREIGN KEY (parent_folder) REFERENCES tags (tag_id)
);
`

// RootFolderTagID names the reserved default-mode tree root.
const RootFolderTagID = "1"

// RootTagID names the reserved sentinel root of the tag-view graph.
const RootTagID = "0"

// rootRowsDML seeds the two reserved roots described in SPEC_FULL.md §3.
// tag_id=0 is the tag-graph sentinel root; tag_id=1 is the default-mode
// tree root. Both carry parent_folder=-1 so neither is mistaken for an
// ordinary folder or tag.
const rootRowsDML = `
INSERT INTO tags (tag_id, tag_name, parent_folder, parent_tags, child_tags, files_ids)
VALUES (0, '__TaggableFS__//', -1, '', '', '');
INSERT INTO tags (tag_id, tag_name, parent_folder, parent_tags, child_tags, files_ids)
VALUES (1, '/', -1, '', '', '');
`
