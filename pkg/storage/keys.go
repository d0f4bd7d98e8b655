package storage

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// ProofKey builds the object key for an activity proof file: <userID>/<ULID><ext>.
// The ULID carries the upload time in milliseconds plus 80 random bits.
func ProofKey(userID, ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return userID + "/" + ulid.Make().String() + ext
}
