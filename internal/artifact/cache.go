package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"minic/internal/project"
)

// DiskCache stores artifacts by content key. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens (creating if needed) a cache rooted at dir.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Key derives the cache key of a unit from its bytes and the config fingerprint.
func Key(source []byte, fingerprint project.Digest) project.Digest {
	return project.Combine(project.DigestOf(source), fingerprint)
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "units", key.Hex()+".mp")
}

// Put writes a atomically under key.
func (c *DiskCache) Put(key project.Digest, a *Artifact) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(a); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get loads the artifact stored under key. Entries written with another
// schema version count as misses.
func (c *DiskCache) Get(key project.Digest) (*Artifact, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()
	var a Artifact
	if err := msgpack.NewDecoder(f).Decode(&a); err != nil {
		return nil, false, err
	}
	if a.Schema != SchemaVersion {
		return nil, false, nil
	}
	return &a, true, nil
}

// DropAll removes every entry.
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
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
