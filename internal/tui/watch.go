package tui

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
)

const watchDebounce = 300 * time.Millisecond

// DirChangedMsg is sent when a watched category directory changed on disk.
type DirChangedMsg struct{}

// dirWatcher watches every category directory of a game directory and
// coalesces bursts of events into single notifications. The game root and
// the categories' parent directories are watched too, so categories created
// after startup are picked up.
type dirWatcher struct {
	watcher    *fsnotify.Watcher
	targets    []string
	categories map[string]bool
	changed    chan struct{}
	done       chan struct{}

	mu      sync.Mutex
	watched map[string]bool
}

func newDirWatcher(gameDir string) (*dirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	root := filepath.Clean(gameDir)
	dw := &dirWatcher{
		watcher:    w,
		targets:    []string{root},
		categories: make(map[string]bool),
		changed:    make(chan struct{}, 1),
		done:       make(chan struct{}),
		watched:    make(map[string]bool),
	}
	seen := map[string]bool{root: true}
	for _, c := range domain.Categories {
		dir := root
		for _, part := range strings.Split(c.Subdir, "/") {
			dir = filepath.Join(dir, part)
			if !seen[dir] {
				seen[dir] = true
				dw.targets = append(dw.targets, dir)
			}
		}
		dw.categories[dir] = true
	}

	dw.addExisting()
	log.Debug().Int("dirs", dw.watchCount()).Msg("watching game directory")

	go dw.loop()
	return dw, nil
}

// addExisting starts watching every target directory that exists now.
func (dw *dirWatcher) addExisting() {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	for _, dir := range dw.targets {
		if dw.watched[dir] {
			continue
		}
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			continue
		}
		if err := dw.watcher.Add(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("watching directory")
			continue
		}
		dw.watched[dir] = true
	}
}

func (dw *dirWatcher) isWatched(dir string) bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.watched[dir]
}

func (dw *dirWatcher) watchCount() int {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return len(dw.watched)
}

// relevant reports whether an event touches a category directory or its contents.
func (dw *dirWatcher) relevant(name string) bool {
	return dw.categories[name] || dw.categories[filepath.Dir(name)]
}

func (dw *dirWatcher) loop() {
	for {
		select {
		case ev, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				dw.mu.Lock()
				delete(dw.watched, ev.Name)
				dw.mu.Unlock()
			}
			if ev.Op&fsnotify.Create != 0 {
				dw.addExisting()
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 || !dw.relevant(ev.Name) {
				continue
			}
			select {
			case dw.changed <- struct{}{}:
			default:
			}
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("file watcher")
		case <-dw.done:
			return
		}
	}
}

// wait blocks until a change arrives, then lets the burst settle.
func (dw *dirWatcher) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-dw.changed:
		case <-dw.done:
			return nil
		}

		timer := time.NewTimer(watchDebounce)
		defer timer.Stop()
		for {
			select {
			case <-dw.changed:
				timer.Reset(watchDebounce)
			case <-timer.C:
				return DirChangedMsg{}
			case <-dw.done:
				return nil
			}
		}
	}
}

func (dw *dirWatcher) Close() error {
	close(dw.done)
	return dw.watcher.Close()
}
