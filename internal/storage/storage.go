// Package storage persists uploaded animal images behind a small blob
// interface. The returned reference is stored verbatim on the animal
// record; nothing else in the application interprets it.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore writes an uploaded blob and returns an opaque reference.
type BlobStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// objectName builds a collision-free object key from the original
// filename, keeping the extension so the serving side can infer a
// content type.
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return fmt.Sprintf("%s%s", uuid.NewString(), ext)
}
