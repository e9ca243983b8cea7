package ncm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultResourceName is the packaged workbook file name.
const DefaultResourceName = "Planilha_NCM.xls"

// ErrResourceNotFound is returned when no workbook can be located.
var ErrResourceNotFound = errors.New("ncm: spreadsheet resource not found")

// Source tells the cache where the workbook lives.
type Source struct {
	// Path is an explicit override, used only when the file exists.
	Path string
	// ResourceDir and ResourceName locate the packaged workbook.
	ResourceDir  string
	ResourceName string
}

// Resolve returns the override when it exists, else the packaged location.
// The packaged location is returned even if missing; loading reports that.
func (s Source) Resolve() (string, error) {
	if s.Path != "" {
		if _, err := os.Stat(s.Path); err == nil {
			return s.Path, nil
		}
	}
	name := s.ResourceName
	if name == "" {
		name = DefaultResourceName
	}
	if s.ResourceDir == "" {
		return "", fmt.Errorf("%w: no override path and no resource directory", ErrResourceNotFound)
	}
	return filepath.Join(s.ResourceDir, name), nil
}

// Snapshot is one immutable load of the workbook.
type Snapshot struct {
	ID       uuid.UUID
	Table    *Table
	Path     string
	ModTime  time.Time
	LoadedAt time.Time
	Sheets   []SheetReport
}

// Cache owns the current snapshot and rebuilds it whenever the workbook's
// modification time changes. Readers always see either the previous or the
// fully built next snapshot.
type Cache struct {
	src    Source
	logger *slog.Logger
	read   func(path string) ([]Sheet, error)
	stat   func(path string) (fs.FileInfo, error)
	now    func() time.Time

	current atomic.Pointer[Snapshot]
	loads   atomic.Int64
	group   singleflight.Group
}

// Option customizes a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for load reports.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithReader replaces the workbook reader. Tests use it to feed sheets
// directly.
func WithReader(read func(path string) ([]Sheet, error)) Option {
	return func(c *Cache) { c.read = read }
}

// NewCache creates an empty cache. Nothing is read until the first Get.
func NewCache(src Source, opts ...Option) *Cache {
	c := &Cache{
		src:    src,
		logger: slog.Default(),
		read:   ReadWorkbook,
		stat:   os.Stat,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current table, rebuilding it first if needed.
func (c *Cache) Get(ctx context.Context) (*Table, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Table, nil
}

// Snapshot returns the current snapshot, rebuilding it when nothing is
// loaded yet or the file's modification time changed. A missing file always
// forces a load attempt, so stale data is never served for a removed file.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := c.current.Load(); snap != nil && !c.stale(snap) {
		return snap, nil
	}
	return c.reload(ctx)
}

// ForceReload rebuilds the snapshot regardless of modification time.
func (c *Cache) ForceReload(ctx context.Context) (*Snapshot, error) {
	return c.reload(ctx)
}

// Current returns the last loaded snapshot without checking the file.
func (c *Cache) Current() *Snapshot {
	return c.current.Load()
}

// Loads returns how many times the workbook has been read.
func (c *Cache) Loads() int64 {
	return c.loads.Load()
}

func (c *Cache) stale(snap *Snapshot) bool {
	path, err := c.src.Resolve()
	if err != nil {
		return true
	}
	info, err := c.stat(path)
	if err != nil {
		return true
	}
	return path != snap.Path || !info.ModTime().Equal(snap.ModTime)
}

// reload collapses concurrent rebuilds into one read.
func (c *Cache) reload(ctx context.Context) (*Snapshot, error) {
	ch := c.group.DoChan("load", func() (any, error) {
		return c.load()
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (c *Cache) load() (*Snapshot, error) {
	path, err := c.src.Resolve()
	if err != nil {
		return nil, err
	}
	info, err := c.stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	start := c.now()
	sheets, err := c.read(path)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	table, reports := BuildTable(sheets, c.logger)

	snap := &Snapshot{
		ID:       uuid.New(),
		Table:    table,
		Path:     path,
		ModTime:  info.ModTime(),
		LoadedAt: c.now(),
		Sheets:   reports,
	}
	c.current.Store(snap)
	c.loads.Add(1)

	c.logger.Info("ncm table loaded",
		"path", path,
		"rows", table.Len(),
		"sheets", len(reports),
		"snapshot", snap.ID,
		"duration_ms", snap.LoadedAt.Sub(start).Milliseconds(),
	)
	return snap, nil
}

// Status summarizes the cache for health endpoints.
type Status struct {
	Loaded     bool          `json:"loaded"`
	SnapshotID string        `json:"snapshot_id,omitempty"`
	Path       string        `json:"path,omitempty"`
	Rows       int           `json:"rows"`
	ModTime    time.Time     `json:"mod_time,omitzero"`
	LoadedAt   time.Time     `json:"loaded_at,omitzero"`
	Loads      int64         `json:"loads"`
	Sheets     []SheetReport `json:"sheets,omitempty"`
}

// Status reports the last loaded snapshot without touching the file.
func (c *Cache) Status() Status {
	st := Status{Loads: c.Loads()}
	snap := c.current.Load()
	if snap == nil {
		return st
	}
	st.Loaded = true
	st.SnapshotID = snap.ID.String()
	st.Path = snap.Path
	st.Rows = snap.Table.Len()
	st.ModTime = snap.ModTime
	st.LoadedAt = snap.LoadedAt
	st.Sheets = snap.Sheets
	return st
}
