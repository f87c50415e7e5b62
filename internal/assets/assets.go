// Package assets locates sprite files in directories and GRF archives and
// caches their decoded frames.
package assets

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/collidergen/internal/logger"
	"github.com/Faultbox/collidergen/pkg/formats"
	"github.com/Faultbox/collidergen/pkg/grf"
)

// ErrNotFound is returned when no source holds the requested path.
var ErrNotFound = errors.New("asset not found")

type archive struct {
	name string
	*grf.Archive
}

// Manager resolves sprite paths against plain directories first, then GRF
// archives in reverse order (last added = highest priority). It is safe for
// concurrent use; concurrent requests for the same frames decode once.
type Manager struct {
	opts     formats.Options
	dirs     []string
	archives []archive
	frames   *Cache[[]image.Image]
	group    singleflight.Group
	log      *zap.Logger
	mu       sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager(opts formats.Options) *Manager {
	return &Manager{
		opts:   opts,
		frames: NewCache[[]image.Image](),
		log:    logger.Named("assets"),
	}
}

// AddDir adds a directory to search.
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding directory: %s is not a directory", dir)
	}
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
	return nil
}

// AddArchive opens a GRF archive and adds it to the manager.
func (m *Manager) AddArchive(path string) error {
	a, err := grf.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}
	m.AddOpenArchive(path, a)
	return nil
}

// AddOpenArchive adds an already opened archive. The manager closes it.
func (m *Manager) AddOpenArchive(name string, a *grf.Archive) {
	m.mu.Lock()
	m.archives = append(m.archives, archive{name: name, Archive: a})
	m.mu.Unlock()
	m.log.Debug("archive added", zap.String("archive", name), zap.Int("files", a.Len()))
}

// Load returns the raw bytes of path. Absolute paths are read directly.
func (m *Manager) Load(path string) ([]byte, error) {
	if filepath.IsAbs(path) {
		return os.ReadFile(path)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, dir := range m.dirs {
		full := filepath.Join(dir, filepath.FromSlash(path))
		data, err := os.ReadFile(full)
		if err == nil {
			m.log.Debug("loaded from directory", zap.String("path", full))
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", full, err)
		}
	}

	for i := len(m.archives) - 1; i >= 0; i-- {
		a := m.archives[i]
		if !a.Contains(path) {
			continue
		}
		data, err := a.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", path, a.name, err)
		}
		m.log.Debug("loaded from archive", zap.String("path", path), zap.String("archive", a.name))
		return data, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Frames returns the decoded frames of a sprite. Results are cached by
// normalized path.
func (m *Manager) Frames(path string) ([]image.Image, error) {
	key := grf.Normalize(path)
	if frames, ok := m.frames.Get(key); ok {
		return frames, nil
	}

	v, err, shared := m.group.Do(key, func() (any, error) {
		data, err := m.Load(path)
		if err != nil {
			return nil, err
		}
		frames, err := formats.DecodeFrames(path, data, m.opts)
		if err != nil {
			return nil, err
		}
		m.frames.Set(key, frames)
		return frames, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		m.log.Debug("shared decode", zap.String("path", key))
	}
	return v.([]image.Image), nil
}

// Sprites lists every decodable file: directory entries relative to their
// directory, then archive entries. Duplicates are reported once.
func (m *Manager) Sprites() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		key := grf.Normalize(p)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}

	for _, dir := range m.dirs {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !formats.Supported(p) {
				return nil
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			add(filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", dir, err)
		}
	}
	for i := len(m.archives) - 1; i >= 0; i-- {
		for _, p := range m.archives[i].WithSuffix(formats.Extensions...) {
			add(p)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Stats returns frame cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.frames.Stats()
}

// Close closes all archives and drops cached frames.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.archives {
		if err := a.Close(); err != nil {
			m.log.Warn("closing archive", zap.String("archive", a.name), zap.Error(err))
		}
	}
	m.archives = nil
	m.frames.Clear()
}
