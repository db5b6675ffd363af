package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"nbmend/internal/change"
	"nbmend/internal/notebook"
)

// Current schema version - increment when CachedOutcome changes.
const resultCacheSchemaVersion uint16 = 1

// CacheKey identifies one (operation, template, submission) triple.
type CacheKey [32]byte

// NewCacheKey hashes the operation key with both document digests. op must
// carry every setting that can change the outcome, see reconcile.Operation.Key.
func NewCacheKey(op string, template, submission notebook.Digest) CacheKey {
	h := sha256.New()
	h.Write([]byte(op))
	h.Write([]byte{0})
	h.Write(template[:])
	h.Write(submission[:])
	var k CacheKey
	copy(k[:], h.Sum(nil))
	return k
}

// ResultCache remembers submissions an operation left unchanged, so a
// re-run can skip them and replay their report.
// Thread-safe for concurrent access.
type ResultCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedEntry is the persisted form of change.Entry.
type CachedEntry struct {
	Code     uint16
	Severity uint8
	Tag      string
	Names    []string
	Message  string
}

// CachedOutcome is the payload stored per key.
type CachedOutcome struct {
	Schema  uint16
	Op      string
	Entries []CachedEntry
}

// OpenResultCache opens a cache in dir, or in the user cache directory under
// app when dir is empty.
func OpenResultCache(dir, app string) (*ResultCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResultCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *ResultCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *ResultCache) pathFor(key CacheKey) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "outcomes", hexKey[:2], hexKey+".mp")
}

// Put records an unchanged outcome.
func (c *ResultCache) Put(key CacheKey, op string, rep *change.Report) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := CachedOutcome{Schema: resultCacheSchemaVersion, Op: op}
	for _, e := range rep.Items() {
		payload.Entries = append(payload.Entries, CachedEntry{
			Code:     uint16(e.Code),
			Severity: uint8(e.Severity),
			Tag:      e.Tag,
			Names:    e.Names,
			Message:  e.Message,
		})
	}

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get returns the report recorded under key. ok is false on a miss or when
// the entry was written by another schema version.
func (c *ResultCache) Get(key CacheKey) (rep *change.Report, ok bool, err error) {
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

	var payload CachedOutcome
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != resultCacheSchemaVersion {
		return nil, false, nil
	}
	entries := make([]change.Entry, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		entries = append(entries, change.Entry{
			Code:     change.Code(e.Code),
			Severity: change.Severity(e.Severity),
			Tag:      e.Tag,
			Names:    e.Names,
			Message:  e.Message,
		})
	}
	rep = change.NewReport()
	rep.Restore(entries)
	return rep, true, nil
}

// DropAll removes every cached outcome.
func (c *ResultCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "outcomes"))
}
