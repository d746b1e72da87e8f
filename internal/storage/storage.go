// Package storage provides object storage abstractions for benchmark
// datasets. Implementations include the local filesystem and S3.
package storage

import (
	"context"
	"errors"
	"io"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrDownloadFailed = errors.New("download failed")
	ErrUploadFailed   = errors.New("upload failed")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	// Key is the object's path within the store.
	Key string
	// Size is the object size in bytes.
	Size int64
}

// Object is an open read handle. Parquet readers need random access to
// reach the footer first, so handles expose io.ReaderAt rather than a
// stream.
type Object interface {
	io.ReaderAt
	io.Closer

	// Size returns the object size in bytes.
	Size() int64
}

// ObjectStore abstracts where benchmark datasets live.
type ObjectStore interface {
	// Open returns a random-access handle on the object, or
	// ErrObjectNotFound.
	Open(ctx context.Context, key string) (Object, error)

	// Stat returns object metadata, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// List returns metadata for all objects under the prefix, sorted by
	// key. A missing prefix yields an empty list.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Put writes an object from the reader, replacing any existing one.
	Put(ctx context.Context, key string, r io.Reader) (ObjectInfo, error)

	// Delete removes an object. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, key string) error
}
