package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when cachePayload format changes.
const cacheSchemaVersion uint16 = 1

// cacheAppName names the cache directory under $XDG_CACHE_HOME.
const cacheAppName = "chuckfmt"

// Digest is a SHA-256 cache key.
type Digest = [sha256.Size]byte

// DiskCache memoizes postprocessed formatter output on disk, keyed by a
// digest of the formatter arguments and the raw input. clang-format runs
// dominate wall time on large trees, and most files do not change between
// runs. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload is the on-disk entry. Args are stored alongside the output so
// a digest collision cannot hand back output produced under different flags.
type cachePayload struct {
	Schema uint16
	Args   []string
	Output []byte
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location ($XDG_CACHE_HOME/<app> or ~/.cache/<app>).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// CacheKey digests the formatter arguments and input text.
func CacheKey(args []string, input []byte) Digest {
	h := sha256.New()
	var schema [2]byte
	schema[0] = byte(cacheSchemaVersion >> 8)
	schema[1] = byte(cacheSchemaVersion)
	h.Write(schema[:])
	for _, a := range args {
		h.Write([]byte(a))
		h.Write([]byte{0})
	}
	h.Write([]byte{0})
	h.Write(input)

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// subdirectory keeps entries easy to inspect and wipe
	return filepath.Join(c.dir, "out", hexKey+".mp")
}

// Get returns the cached output for key, if present and produced under the
// same arguments and schema. Corrupted entries read as misses.
func (c *DiskCache) Get(key Digest, args []string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var payload cachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion || !slices.Equal(payload.Args, args) {
		return nil, false
	}
	return payload.Output, true
}

// Put serializes and writes an entry, atomically replacing any previous one.
func (c *DiskCache) Put(key Digest, args []string, output []byte) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := msgpack.Marshal(&cachePayload{
		Schema: cacheSchemaVersion,
		Args:   args,
		Output: output,
	})
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), p)
}

// DropAll invalidates the cache, useful after schema changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// DropCache wipes the standard on-disk output cache.
func DropCache() error {
	cache, err := OpenDiskCache(cacheAppName)
	if err != nil {
		return err
	}
	return cache.DropAll()
}
