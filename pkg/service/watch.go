package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mattsolo1/grove-core/util/pathutil"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-book/pkg/content"
	"github.com/mattsolo1/grove-book/pkg/site"
)

// Watch builds the book once and then again whenever a document, the
// sidebars file or the site config changes. Every build outcome is passed to
// onBuild. Watch blocks until ctx is done and returns nil in that case.
func (s *Service) Watch(ctx context.Context, onBuild func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	cfg := s.site()
	docsDir := filepath.Clean(cfg.DocsDir)
	if err := addTree(watcher, docsDir); err != nil {
		return fmt.Errorf("watch docs: %w", err)
	}
	watched := map[string]bool{lookupPath(docsDir): true}
	for _, f := range []string{cfg.SidebarPath, cfg.Source} {
		if f == "" {
			continue
		}
		// Watch the parent so files replaced by editors keep being seen.
		dir := filepath.Dir(f)
		if watched[lookupPath(dir)] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		watched[lookupPath(dir)] = true
	}

	onBuild(s.Build(ctx))

	var (
		timer    *time.Timer
		fire     <-chan time.Time
		reloadFn bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			relevant, isConfig := s.classify(event, docsDir)
			if !relevant {
				continue
			}
			if event.Has(fsnotify.Create) && isUnder(lookupPath(event.Name), lookupPath(docsDir)) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						s.logger.WithFields(logrus.Fields{"dir": event.Name, "error": err}).Error("failed to watch new directory")
					}
				}
			}
			s.logger.WithFields(logrus.Fields{"file": event.Name, "op": event.Op.String()}).Debug("change detected")
			reloadFn = reloadFn || isConfig

			if timer == nil {
				timer = time.NewTimer(s.Config.Debounce)
			} else {
				timer.Stop()
				timer.Reset(s.Config.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if reloadFn {
				reloadFn = false
				if err := s.reloadSite(); err != nil {
					onBuild(nil, err)
					continue
				}
			}
			onBuild(s.Build(ctx))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.WithError(err).Error("watcher error")
		}
	}
}

// classify reports whether event should trigger a rebuild and whether it
// touched the site config.
func (s *Service) classify(event fsnotify.Event, docsDir string) (relevant, isConfig bool) {
	if event.Op == fsnotify.Chmod {
		return false, false
	}
	cfg := s.site()
	name, root := lookupPath(event.Name), lookupPath(docsDir)
	switch {
	case cfg.Source != "" && samePath(event.Name, cfg.Source):
		return true, true
	case samePath(event.Name, cfg.SidebarPath):
		return true, false
	case isUnder(name, root):
		base := filepath.Base(name)
		if content.IsIgnored(base) && name != root {
			return false, false
		}
		// Directories carry no extension; removals of them matter too.
		return content.IsDocFile(base) || filepath.Ext(base) == "", false
	}
	return false, false
}

func (s *Service) site() *site.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Config.Site
}

func (s *Service) reloadSite() error {
	path := s.site().Source
	cfg, err := site.Load(path)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"path": path, "error": err}).Warn("site config reload failed")
		return fmt.Errorf("reload site config: %w", err)
	}
	s.mu.Lock()
	s.Config.Site = cfg
	s.mu.Unlock()
	return nil
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && content.IsIgnored(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

// lookupPath normalizes p for comparison. Paths that no longer exist, such as
// removed files, are normalized through their parent directory.
func lookupPath(p string) string {
	if n, err := pathutil.NormalizeForLookup(p); err == nil {
		return n
	}
	dir, base := filepath.Split(filepath.Clean(p))
	if n, err := pathutil.NormalizeForLookup(dir); err == nil {
		return filepath.Join(n, base)
	}
	return filepath.Clean(p)
}

func samePath(a, b string) bool {
	if same, err := pathutil.ComparePaths(a, b); err == nil && same {
		return true
	}
	return lookupPath(a) == lookupPath(b)
}

// isUnder reports whether name is dir or inside it. Both must be normalized.
func isUnder(name, dir string) bool {
	return name == dir || strings.HasPrefix(name, dir+string(filepath.Separator))
}
