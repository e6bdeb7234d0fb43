package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"riprice/internal/logging"

	"github.com/goccy/go-json"
)

// IndexFile is the name of the index kept in the cache directory
const IndexFile = "index.json"

// Entry describes one downloaded offer file
type Entry struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	ETag      string    `json:"etag,omitempty"`
	Size      int64     `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
}

// OfferCache tracks offer files on disk so unchanged files are not downloaded again
type OfferCache struct {
	dir      string
	entries  map[string]Entry
	lock     sync.RWMutex
	saveLock sync.Mutex
}

// Key identifies the cached file of a service in a given format
func Key(service, format string) string {
	return service + "." + format
}

// NewOfferCache opens the cache rooted at dir, creating it when needed
func NewOfferCache(dir string) (*OfferCache, error) {
	if dir == "" {
		dir = "cache"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	oc := &OfferCache{
		dir:     dir,
		entries: make(map[string]Entry),
	}

	if err := oc.Load(); err != nil {
		// A corrupt index only costs a re-download.
		logging.Error("Failed to load offer cache index", err, map[string]interface{}{
			"dir": dir,
		})
	}

	return oc, nil
}

// Dir returns the cache directory
func (oc *OfferCache) Dir() string {
	return oc.dir
}

// FilePath returns where the offer file for key is stored
func (oc *OfferCache) FilePath(key string) string {
	return filepath.Join(oc.dir, key)
}

// Get returns the entry for key if it exists and its file is still on disk
func (oc *OfferCache) Get(key string) (Entry, bool) {
	oc.lock.RLock()
	entry, ok := oc.entries[key]
	oc.lock.RUnlock()
	if !ok {
		return Entry{}, false
	}

	if _, err := os.Stat(entry.Path); err != nil {
		return Entry{}, false
	}
	return entry, true
}

// Set records an entry
func (oc *OfferCache) Set(key string, entry Entry) {
	oc.lock.Lock()
	oc.entries[key] = entry
	oc.lock.Unlock()
}

// Len returns the number of indexed files
func (oc *OfferCache) Len() int {
	oc.lock.RLock()
	defer oc.lock.RUnlock()
	return len(oc.entries)
}

// Load reads the index from disk
func (oc *OfferCache) Load() error {
	data, err := os.ReadFile(filepath.Join(oc.dir, IndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache index: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse cache index: %w", err)
	}

	oc.lock.Lock()
	oc.entries = entries
	if oc.entries == nil {
		oc.entries = make(map[string]Entry)
	}
	oc.lock.Unlock()

	return nil
}

// Save writes the index to disk
func (oc *OfferCache) Save() error {
	oc.saveLock.Lock()
	defer oc.saveLock.Unlock()

	oc.lock.RLock()
	entries := make(map[string]Entry, len(oc.entries))
	for k, v := range oc.entries {
		entries[k] = v
	}
	oc.lock.RUnlock()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache index: %w", err)
	}

	indexPath := filepath.Join(oc.dir, IndexFile)
	tempFile := indexPath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache index: %w", err)
	}

	if err := os.Rename(tempFile, indexPath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp cache index: %w", err)
	}

	logging.Debug("Cache index saved", map[string]interface{}{
		"dir":     oc.dir,
		"entries": len(entries),
	})

	return nil
}
