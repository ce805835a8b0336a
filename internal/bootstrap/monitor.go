// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// PERMISSION MONITOR
// =============================================================================

// Monitor re-asserts the support directory's locked down permissions while
// the app runs. Chmod events land through fsnotify; a periodic sweep catches
// drift fsnotify cannot see (new mounts, missed events, platforms without
// chmod notifications).
type Monitor struct {
	boot     *Bootstrapper
	watcher  *fsnotify.Watcher
	interval time.Duration

	mu      sync.Mutex
	pending map[string]time.Time // path -> last event time

	ctx    context.Context
	cancel context.CancelFunc
}

// debounce is how long a path must be quiet before its permissions are
// re-checked. Batches the event storms extraction and updates produce.
const debounce = 250 * time.Millisecond

// NewMonitor creates a Monitor for the bootstrapper's support directory.
// sweepInterval is the fallback full-tree sweep period.
func NewMonitor(boot *Bootstrapper, sweepInterval time.Duration) (*Monitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// No fsnotify on this platform; the sweep alone still works.
		watcher = nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		boot:     boot,
		watcher:  watcher,
		interval: sweepInterval,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching. Safe to call once.
func (m *Monitor) Start() error {
	if m.watcher != nil {
		if err := m.addRecursive(m.boot.SupportDir()); err != nil {
			return err
		}
		go m.processEvents()
		go m.processPending()
	}

	go m.sweep()
	return nil
}

// Close stops watching and releases resources.
func (m *Monitor) Close() error {
	m.cancel()
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

// addRecursive adds a directory and all its subdirectories to the watch list.
func (m *Monitor) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			return nil
		}
		// Non-fatal, continue
		_ = m.watcher.Add(path)
		return nil
	})
}

// processEvents processes file system events.
func (m *Monitor) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			_ = r
		}
	}()

	for {
		select {
		case <-m.ctx.Done():
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			// Chmod is the drift we exist for; Create/Write entries may have
			// arrived with loose permissions.
			if event.Op&(fsnotify.Chmod|fsnotify.Create|fsnotify.Write) != 0 {
				m.mu.Lock()
				m.pending[event.Name] = time.Now()
				m.mu.Unlock()
			}

			// Watch new directories too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = m.addRecursive(event.Name)
				}
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			_ = err
		}
	}
}

// processPending repairs paths whose events have settled.
func (m *Monitor) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			m.mu.Lock()
			var toRepair []string
			for path, eventTime := range m.pending {
				if now.Sub(eventTime) >= debounce {
					toRepair = append(toRepair, path)
					delete(m.pending, path)
				}
			}
			m.mu.Unlock()

			for _, path := range toRepair {
				m.repairPath(path)
			}
		}
	}
}

// repairPath restores the expected permissions on a single path.
func (m *Monitor) repairPath(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return // gone, nothing to repair
	}

	want := FilePerm
	if info.IsDir() {
		want = DirPerm
	} else if info.Mode()&0111 != 0 {
		want = ExecPerm
	}

	if info.Mode().Perm() != want {
		_ = os.Chmod(path, want)
	}
}

// sweep periodically re-asserts the whole tree, independent of events.
func (m *Monitor) sweep() {
	if m.interval <= 0 {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			_ = m.boot.AssertPermissions()
		}
	}
}
