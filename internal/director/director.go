// Package director owns page choreography: scene files, their compilation
// into timelines, and the timeline coordinator that plays them.
package director

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Director keeps the scenes of every page, loaded from a directory and
// reloaded when files change.
type Director struct {
	Dir string

	log    *zap.Logger
	mu     sync.RWMutex
	scenes map[string]*Scene
}

// NewDirector creates a Director for scenes in dir
func NewDirector(dir string, log *zap.Logger) *Director {
	if log == nil {
		log = zap.NewNop()
	}
	return &Director{
		Dir:    dir,
		log:    log,
		scenes: make(map[string]*Scene),
	}
}

// LoadAll reads every scene in Dir. A file that fails to load is logged and
// skipped; the error reports how many failed.
func (d *Director) LoadAll() error {
	paths, err := ListScenes(d.Dir)
	if err != nil {
		return err
	}
	failed := 0
	for _, p := range paths {
		if _, err := d.Load(p); err != nil {
			d.log.Warn("scene skipped", zap.String("path", p), zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenes failed to load", failed, len(paths))
	}
	return nil
}

// Load reads and validates one scene file and makes it current for its page.
func (d *Director) Load(path string) (*Scene, error) {
	sc, err := ReadScene(path)
	if err != nil {
		return nil, err
	}
	if sc.Page == "" {
		return nil, fmt.Errorf("%s: scene has no page", path)
	}
	if _, err := Compile(sc, nil); err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.scenes[strings.ToLower(sc.Page)] = sc
	d.mu.Unlock()

	d.log.Info("scene loaded", zap.String("page", sc.Page), zap.Int("timelines", len(sc.Timelines)))
	return sc, nil
}

// Put validates and stores a scene without touching the disk.
func (d *Director) Put(sc *Scene) error {
	if _, err := Compile(sc, nil); err != nil {
		return err
	}
	d.mu.Lock()
	d.scenes[strings.ToLower(sc.Page)] = sc
	d.mu.Unlock()
	return nil
}

// Remove forgets the scene of page.
func (d *Director) Remove(page string) {
	d.mu.Lock()
	delete(d.scenes, strings.ToLower(page))
	d.mu.Unlock()
}

// Scene returns the scene for page; page names are case-insensitive.
func (d *Director) Scene(page string) (*Scene, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sc, ok := d.scenes[strings.ToLower(page)]
	return sc, ok
}

// Pages lists loaded page names in order.
func (d *Director) Pages() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pages := make([]string, 0, len(d.scenes))
	for _, sc := range d.scenes {
		pages = append(pages, sc.Page)
	}
	sort.Strings(pages)
	return pages
}
