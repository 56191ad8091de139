// Package model implements the Filesystem Model: folder and tag
// operations layered over the Metadata Store, plus content-addressed blob
// maintenance.
package model

import (
	"github.com/taggablefs/tagfs/internal/store"
	"github.com/taggablefs/tagfs/internal/util"
)

var log = util.GetLogger("Model")

// Model is the Filesystem Model: every folder-side and tag-side operation
// the dispatcher can invoke. A Model is only ever driven by the
// single-threaded dispatch loop, so its mutable state (the placeholder
// counter) needs no locking.
type Model struct {
	store          *store.Store
	root           string // blob storage root directory
	placeholderSeq uint64
}

// New constructs a Model over an already-open Metadata Store, rooted at
// the given blob storage directory.
func New(st *store.Store, root string) *Model {
	return &Model{store: st, root: root}
}

// Stats is a point-in-time snapshot of store occupancy, exposed to the
// operator CLI's stats subcommand.
type Stats struct {
	Files      int
	Tags       int
	Blobs      int
	DedupRatio float64
}

// Stats computes the current Stats snapshot.
func (m *Model) Stats() (Stats, error) {
	files, err := m.store.CountFiles()
	if err != nil {
		return Stats{}, wrapIO(err)
	}
	tags, err := m.store.CountTopTags()
	if err != nil {
		return Stats{}, wrapIO(err)
	}
	blobs, err := m.store.CountDistinctHashes()
	if err != nil {
		return Stats{}, wrapIO(err)
	}
	ratio := 1.0
	if blobs > 0 {
		ratio = float64(files) / float64(blobs)
	}
	return Stats{Files: files, Tags: tags, Blobs: blobs, DedupRatio: ratio}, nil
}
