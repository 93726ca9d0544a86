package astroapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LookupStatus is the outcome of a cache read.
type LookupStatus int

const (
	Miss LookupStatus = iota
	Hit
	Corrupt
)

func (s LookupStatus) String() string {
	switch s {
	case Hit:
		return "hit"
	case Corrupt:
		return "corrupt"
	default:
		return "miss"
	}
}

// Lookup is the explicit result of Store.Get. Payload is set on Hit; Err
// explains a Corrupt entry.
type Lookup struct {
	Status  LookupStatus
	Payload []byte
	Err     error
}

// Store is a key-value cache with a fixed TTL. Expired entries read as Miss.
type Store interface {
	Get(key string) Lookup
	Put(key string, payload []byte) error
}

// fileEntry is the on-disk record. Payload is kept as raw bytes so a read
// returns exactly what was written.
type fileEntry struct {
	Key      string    `json:"key"`
	StoredAt time.Time `json:"stored_at"`
	Payload  []byte    `json:"payload"`
}

// FileStore persists entries as one JSON file per key. Writes go through a
// temp file and rename, so readers never observe a partial entry. There is no
// cross-process lock; concurrent writers of one key last-write-win.
type FileStore struct {
	dir   string
	ttl   time.Duration
	clock clockwork.Clock
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string, ttl time.Duration, clock clockwork.Clock) *FileStore {
	return &FileStore{dir: dir, ttl: ttl, clock: clock}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, "planets_"+key+".json")
}

func (s *FileStore) Get(key string) Lookup {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return Lookup{Status: Miss}
	}
	if err != nil {
		return Lookup{Status: Corrupt, Err: fmt.Errorf("read cache entry: %w", err)}
	}

	var e fileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return Lookup{Status: Corrupt, Err: fmt.Errorf("decode cache entry: %w", err)}
	}
	if e.Key != key {
		return Lookup{Status: Corrupt, Err: fmt.Errorf("cache entry key mismatch: %q", e.Key)}
	}
	if s.clock.Since(e.StoredAt) >= s.ttl {
		return Lookup{Status: Miss}
	}
	return Lookup{Status: Hit, Payload: e.Payload}
}

func (s *FileStore) Put(key string, payload []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(fileEntry{Key: key, StoredAt: s.clock.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".planets-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

// MemoryStore is a thread-safe LRU cache with TTL, for single-process use.
type MemoryStore struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key      string
	payload  []byte
	storedAt time.Time
	prev     *entry
	next     *entry
}

// NewMemoryStore creates an LRU store holding at most maxEntries.
func NewMemoryStore(maxEntries int, ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *MemoryStore) Get(key string) Lookup {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Lookup{Status: Miss}
	}
	if c.clock.Since(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		c.remove(e)
		return Lookup{Status: Miss}
	}
	c.moveToFront(e)
	return Lookup{Status: Hit, Payload: append([]byte(nil), e.payload...)}
}

func (c *MemoryStore) Put(key string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload = append([]byte(nil), payload...)
	now := c.clock.Now()
	if e, ok := c.entries[key]; ok {
		e.payload = payload
		e.storedAt = now
		c.moveToFront(e)
		return nil
	}

	e := &entry{key: key, payload: payload, storedAt: now}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryStore) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *MemoryStore) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *MemoryStore) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *MemoryStore) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
