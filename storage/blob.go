// Package storage stores menu images in an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// ErrNotOwned is returned by Delete for URLs the store did not produce
var ErrNotOwned = errors.New("url does not belong to this store")

// BlobStore puts and deletes binary objects, addressed by public URL
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds "<prefix>/<unix-millis>-<filename>". Filenames are sanitized
// and timestamped so concurrent uploads never collide on a key.
func ObjectKey(prefix, filename string, now time.Time) string {
	name := unsafeChars.ReplaceAllString(path.Base(filename), "_")
	if name == "" || name == "." || name == "_" {
		name = "image"
	}
	return path.Join(strings.Trim(prefix, "/"), fmt.Sprintf("%d-%s", now.UnixMilli(), name))
}

// MenuImagePrefix is where a restaurant's menu images live
func MenuImagePrefix(restaurantID string) string {
	return path.Join("restaurants", restaurantID, "menu")
}
