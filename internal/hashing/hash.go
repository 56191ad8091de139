// Package hashing computes the fixed-length content digests used to name
// blobs in the content-addressed store.
package hashing

import (
	"encoding/hex"
	"io"
	"strings"

	"github.com/zeebo/blake3"
)

// EmptyDigest is the digest of zero-byte content, rendered uppercase hex.
// Freshly created files hold a TEMP placeholder token rather than this
// digest; see internal/model/blob.go (rehashAndRename) for how the
// truncate/update logic treats it specially.
var EmptyDigest = SumBytes(nil)

// Sum computes the uppercase hex digest of everything read from r.
func Sum(r io.Reader) (string, error) {
	h := blake3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return render(h.Sum(nil)), nil
}

// SumBytes computes the uppercase hex digest of data directly.
func SumBytes(data []byte) string {
	h := blake3.New()
	h.Write(data)
	return render(h.Sum(nil))
}

func render(sum []byte) string {
	return strings.ToUpper(hex.EncodeToString(sum))
}
