package model

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/taggablefs/tagfs/internal/hashing"
)

// blobPath returns the path a content-addressed blob for hash lives at.
func (m *Model) blobPath(hash string) string {
	return filepath.Join(m.root, hash)
}

// nextPlaceholder allocates the next monotonic placeholder token. Callers
// run strictly serially (the single-threaded dispatch loop), so a bare
// counter needs no synchronization.
func (m *Model) nextPlaceholder() string {
	m.placeholderSeq++
	return fmt.Sprintf("TEMP%09d", m.placeholderSeq)
}

// isPlaceholderOrEmpty reports whether hash names either a not-yet-written
// placeholder token or the fixed empty-content digest.
func isPlaceholderOrEmpty(hash string) bool {
	if hash == hashing.EmptyDigest {
		return true
	}
	return len(hash) >= 4 && hash[:4] == "TEMP"
}

// hashFile computes the content hash of the file at path.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return hashing.Sum(f)
}

// copyFile copies src to dst, creating dst (and truncating if it already
// exists).
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// unlinkBlob removes the blob at root/hash, tolerating its absence (it may
// already be gone if an earlier step partially completed).
func (m *Model) unlinkBlob(hash string) error {
	err := os.Remove(m.blobPath(hash))
	if err != nil && !os.IsNotExist(err) {
		return wrapIO(err)
	}
	return nil
}

// rehashAndRename recomputes the digest of the file at tmpPath and moves
// it to root/newhash, returning the new hash. If tmpPath's content already
// hashes to the same value as oldHash, or to the empty-content sentinel,
// the temp file is discarded and oldHash is returned unchanged, matching
// the original truncateFile/updateFile's skip condition.
func (m *Model) rehashAndRename(tmpPath, oldHash string) (string, error) {
	newHash, err := hashFile(tmpPath)
	if err != nil {
		return "", wrapIO(err)
	}
	if newHash == oldHash || newHash == hashing.EmptyDigest {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			return "", wrapIO(err)
		}
		return oldHash, nil
	}
	if err := os.Rename(tmpPath, m.blobPath(newHash)); err != nil {
		return "", wrapIO(err)
	}
	return newHash, nil
}

// TruncateFile implements the folder-side truncate operation: if other
// files share the file's current hash, the blob is copied aside before
// truncating so those other files keep their original content; otherwise
// the blob is truncated in place. Either way the file's hash is
// recomputed and the File row updated.
func (m *Model) TruncateFile(path string, length int64) error {
	fileID, hash, err := m.resolveFileForWrite(path)
	if err != nil {
		return err
	}

	shared, err := m.store.HashReferencedMoreThanOnce(hash)
	if err != nil {
		return wrapIO(err)
	}

	target := m.blobPath(hash)
	if shared {
		tmp := target + ".TRUNCATE"
		if err := copyFile(target, tmp); err != nil {
			return wrapIO(err)
		}
		if err := os.Truncate(tmp, length); err != nil {
			return wrapIO(err)
		}
		newHash, err := m.rehashAndRename(tmp, hash)
		if err != nil {
			return err
		}
		if newHash != hash {
			if err := m.store.UpdateHash(fileID, newHash); err != nil {
				return wrapIO(err)
			}
		}
		return nil
	}

	if err := os.Truncate(target, length); err != nil {
		return wrapIO(err)
	}
	newHash, err := hashFile(target)
	if err != nil {
		return wrapIO(err)
	}
	if newHash != hash {
		if err := os.Rename(target, m.blobPath(newHash)); err != nil {
			return wrapIO(err)
		}
		if err := m.store.UpdateHash(fileID, newHash); err != nil {
			return wrapIO(err)
		}
	}
	return nil
}

// UpdateFile implements the post-write-release hook: it looks for a
// root/{oldhash}.WRITE shadow file left by the bridge during the write
// window, and if present, rehashes it and promotes it to the new blob
// name, deleting the old blob if nothing else references it.
func (m *Model) UpdateFile(path string) error {
	fileID, oldHash, err := m.resolveFileForWrite(path)
	if err != nil {
		return err
	}

	shadow := m.blobPath(oldHash) + ".WRITE"
	if _, err := os.Stat(shadow); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wrapIO(err)
	}

	newHash, err := m.rehashAndRename(shadow, oldHash)
	if err != nil {
		return err
	}
	if newHash == oldHash {
		return nil
	}

	if err := m.store.UpdateHash(fileID, newHash); err != nil {
		return wrapIO(err)
	}

	stillReferenced, err := m.store.HashReferenced(oldHash)
	if err != nil {
		return wrapIO(err)
	}
	if !stillReferenced {
		if err := m.unlinkBlob(oldHash); err != nil {
			return err
		}
	}
	return nil
}

// resolveFileForWrite resolves path to its file_id and current hash,
// returning ErrNoEntry if the path does not name an existing file.
func (m *Model) resolveFileForWrite(path string) (fileID, hash string, err error) {
	parentID, err := m.resolveFolder(parentPath(path))
	if err != nil {
		return "", "", err
	}
	fileID, err = m.store.GetFileID(baseName(path), parentID)
	if err != nil {
		return "", "", wrapIO(err)
	}
	if fileID == "" {
		return "", "", ErrNoEntry
	}
	hash, err = m.store.Hash(fileID)
	if err != nil {
		return "", "", wrapIO(err)
	}
	return fileID, hash, nil
}
