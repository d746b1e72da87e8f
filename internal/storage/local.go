package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// LocalStore implements ObjectStore on a local directory. Keys are
// slash-separated paths relative to the root.
type LocalStore struct {
	root string
}

// NewLocalStore creates a local store rooted at the given directory,
// creating it if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Root returns the store's base directory.
func (l *LocalStore) Root() string {
	return l.root
}

type localObject struct {
	*os.File
	size int64
}

func (o *localObject) Size() int64 { return o.size }

// Open returns a random-access handle on the object.
func (l *LocalStore) Open(ctx context.Context, key string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	return &localObject{File: f, size: stat.Size()}, nil
}

// Stat returns object metadata.
func (l *LocalStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	stat, err := os.Stat(l.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectInfo{}, ErrObjectNotFound
		}
		return ObjectInfo{}, err
	}
	if stat.IsDir() {
		return ObjectInfo{}, ErrObjectNotFound
	}

	return ObjectInfo{Key: key, Size: stat.Size()}, nil
}

// List returns all objects under the prefix, sorted by key.
func (l *LocalStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	searchDir := l.fullPath(prefix)
	var objects []ObjectInfo

	err := filepath.Walk(searchDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil // prefix doesn't exist, return empty list
			}
			return err
		}
		if !info.IsDir() {
			rel, err := filepath.Rel(l.root, path)
			if err != nil {
				return err
			}
			objects = append(objects, ObjectInfo{Key: filepath.ToSlash(rel), Size: info.Size()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Put writes an object, creating parent directories as needed.
func (l *LocalStore) Put(ctx context.Context, key string, r io.Reader) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	destPath := l.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return ObjectInfo{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, r)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return ObjectInfo{Key: key, Size: n}, nil
}

// Delete removes an object. Missing objects are ignored.
func (l *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(l.fullPath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// fullPath returns the full filesystem path for an object.
func (l *LocalStore) fullPath(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}
