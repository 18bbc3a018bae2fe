// Package objstore is the landing zone between extraction and the
// warehouse: raw attachments and normalized JSON extracts are written
// under content-addressed keys, staged loads read whole prefixes, and
// archival is a prefix move.
package objstore

import (
	"context"
)

// Store is the object storage surface the pipeline needs. Keys are
// slash-separated paths relative to the store's bucket.
type Store interface {
	// UploadFile stores a local file under key.
	UploadFile(ctx context.Context, key, localPath string) error
	// UploadJSON stores records as newline-delimited JSON objects, the
	// shape the warehouse bulk load consumes.
	UploadJSON(ctx context.Context, key string, records []map[string]string) error
	// HasPrefix reports whether at least one object exists under prefix.
	HasPrefix(ctx context.Context, prefix string) (bool, error)
	// List returns the keys under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Move renames one object.
	Move(ctx context.Context, srcKey, dstKey string) error
	// MovePrefix renames every object under srcPrefix, preserving the
	// remainder of each key. Returns the number of objects moved.
	MovePrefix(ctx context.Context, srcPrefix, dstPrefix string) (int, error)
	// URI returns the fully qualified location of key, the form the
	// warehouse bulk load is pointed at.
	URI(key string) string
}
