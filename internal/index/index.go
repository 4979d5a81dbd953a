// Package index maintains a cached snapshot of the media files discovered
// under the configured roots. The snapshot is rebuilt lazily when a listing
// observes it stale; staleness is detected by a TTL, a root-set comparison,
// and per-root high-watermark modification times, so detection never requires
// a full re-scan.
package index

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"localfeed/internal/logging"
	"localfeed/internal/mediatypes"
	"localfeed/internal/metrics"
	"localfeed/internal/pathguard"
)

// DefaultTTL bounds the age of a snapshot before it must be revalidated.
const DefaultTTL = 30 * time.Second

// Item is one indexed media file.
type Item struct {
	Path    string          `json:"path"`
	Kind    mediatypes.Kind `json:"kind"`
	Size    int64           `json:"size"`
	ModTime time.Time       `json:"modTime"`
}

// Snapshot is an immutable capture of the indexed items, newest-first, plus
// the per-root high-watermark modification times observed during the walk.
type Snapshot struct {
	Items      []Item
	CapturedAt time.Time
	Watermarks map[string]time.Time // keyed by configured root string
}

// FolderAggregate summarizes one leaf folder of the current snapshot.
type FolderAggregate struct {
	Path   string    `json:"path"`
	Name   string    `json:"name"`
	Count  int       `json:"count"`
	Newest time.Time `json:"newestModTime"`
}

// RootsFunc returns the currently configured media roots.
type RootsFunc func() []string

// Cache owns the snapshot and the folder aggregates derived from it. All
// shared state is guarded by mu; the filesystem walk happens outside the
// lock and the fresh snapshot is installed atomically.
type Cache struct {
	roots        RootsFunc
	ttl          time.Duration
	maxVideoSize int64
	now          func() time.Time

	mu      sync.Mutex
	snap    *Snapshot
	folders []FolderAggregate

	// rebuildMu serializes walks so concurrent stale readers don't all
	// re-scan; readers keep serving the old snapshot meanwhile.
	rebuildMu sync.Mutex
}

// New creates an index cache over the given roots provider.
func New(roots RootsFunc, ttl time.Duration, maxVideoSize int64) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		roots:        roots,
		ttl:          ttl,
		maxVideoSize: maxVideoSize,
		now:          time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// ListAll returns the indexed items, rebuilding the snapshot first if it is
// absent or invalid. Items are newest-modified-first by default and reversed
// for SortOldest. The returned slice is a copy callers may reorder freely.
func (c *Cache) ListAll(order mediatypes.SortOrder) []Item {
	snap := c.currentValid()
	if snap == nil {
		snap = c.rebuild()
	}

	items := make([]Item, len(snap.Items))
	copy(items, snap.Items)
	if order == mediatypes.SortOldest {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return items
}

// ListByFolder filters the index to items whose immediate parent directory
// equals folder exactly.
func (c *Cache) ListByFolder(folder string, order mediatypes.SortOrder) []Item {
	all := c.ListAll(order)
	filtered := make([]Item, 0, len(all))
	for _, item := range all {
		if filepath.Dir(item.Path) == folder {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// LeafFolders groups the current items by parent folder, returning a count
// and the newest modification time per folder. The result is cached until
// the next invalidation and recomputed from scratch afterwards.
func (c *Cache) LeafFolders() []FolderAggregate {
	c.mu.Lock()
	cached := c.folders
	c.mu.Unlock()
	if cached != nil {
		return cached
	}

	items := c.ListAll(mediatypes.SortNewest)

	byFolder := make(map[string]*FolderAggregate)
	var order []string
	for _, item := range items {
		folder := filepath.Dir(item.Path)
		agg, ok := byFolder[folder]
		if !ok {
			agg = &FolderAggregate{Path: folder, Name: filepath.Base(folder)}
			byFolder[folder] = agg
			order = append(order, folder)
		}
		agg.Count++
		if item.ModTime.After(agg.Newest) {
			agg.Newest = item.ModTime
		}
	}

	folders := make([]FolderAggregate, 0, len(order))
	for _, path := range order {
		folders = append(folders, *byFolder[path])
	}

	c.mu.Lock()
	c.folders = folders
	c.mu.Unlock()
	return folders
}

// Invalidate drops the snapshot and the folder aggregates. Called whenever
// the configured root set changes; the next listing rebuilds lazily.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.folders = nil
	c.mu.Unlock()
	metrics.IndexInvalidationsTotal.Inc()
	logging.Debug("index invalidated")
}

// currentValid returns the installed snapshot if it is still usable, nil
// otherwise. The validity walk happens outside the lock.
func (c *Cache) currentValid() *Snapshot {
	c.mu.Lock()
	snap := c.snap
	c.mu.Unlock()

	if snap == nil || !c.valid(snap) {
		return nil
	}
	return snap
}

// valid checks the three snapshot validity conditions: TTL, identical root
// set, and no root watermark past the one recorded at capture.
func (c *Cache) valid(snap *Snapshot) bool {
	if c.now().Sub(snap.CapturedAt) > c.ttl {
		return false
	}

	roots := c.roots()
	if len(roots) != len(snap.Watermarks) {
		return false
	}
	for _, root := range roots {
		recorded, ok := snap.Watermarks[root]
		if !ok {
			return false
		}
		if watermark(pathguard.Normalize(root)).After(recorded) {
			return false
		}
	}
	return true
}

// rebuild walks every configured root and installs a fresh snapshot. Only
// one walk runs at a time; a caller that lost the race reuses the winner's
// snapshot instead of re-walking.
func (c *Cache) rebuild() *Snapshot {
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	if snap := c.currentValid(); snap != nil {
		return snap
	}

	start := c.now()
	snap := &Snapshot{
		CapturedAt: start,
		Watermarks: make(map[string]time.Time),
	}

	for _, root := range c.roots() {
		expanded := pathguard.Normalize(root)
		info, err := os.Stat(expanded)
		if err != nil || !info.IsDir() {
			continue
		}

		high := info.ModTime()
		err = filepath.Walk(expanded, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				// Unreadable entries are skipped, never fatal to the scan.
				logging.Debug("index walk error at %s: %v", path, err)
				return nil
			}
			if fi.ModTime().After(high) {
				high = fi.ModTime()
			}
			if fi.IsDir() {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(fi.Name()))
			kind := mediatypes.GetKind(ext)
			if kind == mediatypes.KindOther {
				return nil
			}
			if kind == mediatypes.KindVideo && c.maxVideoSize > 0 && fi.Size() > c.maxVideoSize {
				return nil
			}

			snap.Items = append(snap.Items, Item{
				Path:    path,
				Kind:    kind,
				Size:    fi.Size(),
				ModTime: fi.ModTime(),
			})
			return nil
		})
		if err != nil {
			logging.Warn("index walk failed for root %s: %v", root, err)
		}
		snap.Watermarks[root] = high
	}

	// Newest first; ties break on path so repeated scans order stably.
	sort.Slice(snap.Items, func(i, j int) bool {
		if !snap.Items[i].ModTime.Equal(snap.Items[j].ModTime) {
			return snap.Items[i].ModTime.After(snap.Items[j].ModTime)
		}
		return snap.Items[i].Path < snap.Items[j].Path
	})

	c.mu.Lock()
	c.snap = snap
	c.folders = nil
	c.mu.Unlock()

	elapsed := time.Since(start)
	metrics.IndexRebuildsTotal.Inc()
	metrics.IndexRebuildDuration.Observe(elapsed.Seconds())
	metrics.IndexItems.Set(float64(len(snap.Items)))
	logging.Info("index rebuilt: %d items across %d roots in %v",
		len(snap.Items), len(snap.Watermarks), elapsed)

	return snap
}

// watermark returns the most recent modification time of the directory or
// anything beneath it, or the zero time if it cannot be statted.
func watermark(dir string) time.Time {
	info, err := os.Stat(dir)
	if err != nil {
		return time.Time{}
	}
	high := info.ModTime()
	_ = filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if fi.ModTime().After(high) {
			high = fi.ModTime()
		}
		return nil
	})
	return high
}
