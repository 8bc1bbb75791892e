package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	skyio "github.com/matzehuels/skyrender/pkg/io"
)

// Ext is the file extension of shard cache entries.
const Ext = ".bin"

// FileCache implements a file-based cache for CLI usage.
// Every entry is a file "<key>.bin" directly inside the cache directory.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Path returns the file path for key. It does not check that the entry exists.
func (c *FileCache) Path(key string) string {
	return filepath.Join(c.dir, key+Ext)
}

// Has reports whether an entry exists for key.
func (c *FileCache) Has(ctx context.Context, key string) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	_, err := os.Stat(c.Path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get retrieves an entry from the cache.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(c.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores an entry with an atomic replace-on-write.
func (c *FileCache) Set(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return skyio.WriteBytesAtomic(c.Path(key), data)
}

// Delete removes an entry from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(c.Path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Keys lists the keys of all entries in the cache, sorted.
func (c *FileCache) Keys() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, Ext) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, Ext))
	}
	sort.Strings(keys)
	return keys, nil
}

// Size returns the total size in bytes of all entries.
func (c *FileCache) Size() (int64, error) {
	keys, err := c.Keys()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, k := range keys {
		info, err := os.Stat(c.Path(k))
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
