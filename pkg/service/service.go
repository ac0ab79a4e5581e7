package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-book/pkg/content"
	"github.com/mattsolo1/grove-book/pkg/models"
	"github.com/mattsolo1/grove-book/pkg/nav"
	"github.com/mattsolo1/grove-book/pkg/sidebars"
	"github.com/mattsolo1/grove-book/pkg/site"
)

// DefaultDebounce is the delay between the last file event and a rebuild in Watch.
const DefaultDebounce = 100 * time.Millisecond

// Service builds the navigation of a book
type Service struct {
	Config *Config

	logger *logrus.Logger
	mu     sync.Mutex // serializes builds
}

// Config holds service configuration
type Config struct {
	Site     *site.Config
	Logger   *logrus.Logger
	Metrics  *Metrics // optional
	Debounce time.Duration
}

// Sidebar is one resolved navigation tree.
type Sidebar struct {
	Name       string
	Tree       nav.Tree
	Entries    []nav.Entry
	Index      *nav.Index
	Categories []nav.CategoryInfo
}

// Result is the output of a successful build.
type Result struct {
	Site     *site.Config
	Content  *content.Store
	Sidebars []*Sidebar
	// Documents that appear in no sidebar.
	Orphans []nav.DocumentID
	BuiltAt time.Time
}

// Page is everything the renderer needs to place a document.
type Page struct {
	Document  *models.Document
	Permalink string
	Sidebar   string
	Entry     nav.Entry
}

// New creates a new build service
func New(config *Config) (*Service, error) {
	if config == nil || config.Site == nil {
		return nil, errors.New("site config is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.WarnLevel)
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	return &Service{Config: config, logger: logger}, nil
}

// Build scans the docs, loads the sidebars and resolves every tree. Any
// validation failure fails the whole build; the first error of each tree is
// reported. Concurrent calls are serialized.
func (s *Service) Build(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := s.build(ctx)
	elapsed := time.Since(start)

	if m := s.Config.Metrics; m != nil {
		m.observe(res, err, elapsed)
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"duration": elapsed,
			"error":    err,
		}).Warn("build failed")
		return nil, err
	}

	for _, sb := range res.Sidebars {
		s.logger.WithFields(logrus.Fields{
			"sidebar": sb.Name,
			"entries": len(sb.Entries),
		}).Debug("resolved sidebar")
	}
	if len(res.Orphans) > 0 {
		s.logger.WithField("documents", res.Orphans).Info("documents not in any sidebar")
	}
	s.logger.WithFields(logrus.Fields{
		"documents": res.Content.Len(),
		"sidebars":  len(res.Sidebars),
		"duration":  elapsed,
	}).Info("build finished")
	return res, nil
}

func (s *Service) build(ctx context.Context) (*Result, error) {
	cfg := s.Config.Site

	store, err := content.Scan(ctx, cfg.DocsDir,
		content.WithDrafts(cfg.IncludeDrafts),
		content.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("scan docs: %w", err)
	}

	trees, err := sidebars.Load(cfg.SidebarPath)
	if err != nil {
		return nil, fmt.Errorf("load sidebars: %w", err)
	}
	trees = sidebars.ApplyLabels(trees, store)

	var errs []error
	for _, tree := range trees {
		if err := nav.Validate(tree, store); err != nil {
			errs = append(errs, err)
		}
	}
	if err := cfg.CheckNavbar(store); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	res := &Result{
		Site:     cfg,
		Content:  store,
		Sidebars: make([]*Sidebar, 0, len(trees)),
	}
	placed := make(map[nav.DocumentID]bool)
	for _, tree := range trees {
		entries, err := nav.Resolve(tree)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			placed[e.ID] = true
		}
		res.Sidebars = append(res.Sidebars, &Sidebar{
			Name:       tree.Name,
			Tree:       tree,
			Entries:    entries,
			Index:      nav.NewIndex(entries),
			Categories: nav.Categories(tree),
		})
	}
	for _, id := range store.IDs() {
		if !placed[id] {
			res.Orphans = append(res.Orphans, id)
		}
	}
	res.BuiltAt = time.Now()
	return res, nil
}

// Sidebar returns the sidebar with the given name.
func (r *Result) Sidebar(name string) (*Sidebar, bool) {
	for _, sb := range r.Sidebars {
		if sb.Name == name {
			return sb, true
		}
	}
	return nil, false
}

// Lookup finds the entry of id in the named sidebar.
func (r *Result) Lookup(sidebar string, id nav.DocumentID) (nav.Entry, bool) {
	sb, ok := r.Sidebar(sidebar)
	if !ok {
		return nav.Entry{}, false
	}
	return sb.Index.Lookup(id)
}

// Page returns the page of id. The entry comes from the first sidebar that
// contains the document; orphans get a page with an empty Sidebar.
func (r *Result) Page(id nav.DocumentID) (*Page, bool) {
	doc, ok := r.Content.Get(id)
	if !ok {
		return nil, false
	}
	page := &Page{Document: doc, Permalink: r.Site.Permalink(doc)}
	for _, sb := range r.Sidebars {
		if e, ok := sb.Index.Lookup(id); ok {
			page.Sidebar = sb.Name
			page.Entry = e
			break
		}
	}
	return page, true
}
