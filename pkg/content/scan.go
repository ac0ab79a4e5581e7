package content

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mattsolo1/grove-book/pkg/frontmatter"
	"github.com/mattsolo1/grove-book/pkg/models"
	"github.com/mattsolo1/grove-book/pkg/nav"
)

// Option configures Scan.
type Option func(*scanOptions)

type scanOptions struct {
	concurrency   int
	includeDrafts bool
	logger        *logrus.Logger
}

// WithConcurrency bounds the number of files parsed at once.
func WithConcurrency(n int) Option {
	return func(o *scanOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithDrafts keeps documents marked `draft: true`. Drafts are dropped by default.
func WithDrafts(include bool) Option {
	return func(o *scanOptions) {
		o.includeDrafts = include
	}
}

// WithLogger sets the logger used for non-fatal scan warnings.
func WithLogger(logger *logrus.Logger) Option {
	return func(o *scanOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// IsDocFile reports whether name is a chapter file.
func IsDocFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".mdx"
}

// IsIgnored reports whether a file or directory name is skipped by Scan.
// Names starting with "_" are partials, names starting with "." are hidden.
func IsIgnored(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// Scan walks dir and parses every chapter file into a Store.
func Scan(ctx context.Context, dir string, options ...Option) (*Store, error) {
	opts := &scanOptions{concurrency: 8}
	for _, opt := range options {
		opt(opts)
	}
	if opts.logger == nil {
		opts.logger = logrus.New()
		opts.logger.SetOutput(io.Discard)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat docs dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs dir %s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && IsIgnored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsDocFile(d.Name()) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk docs dir: %w", err)
	}

	docs := make([]*models.Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := parseDocument(dir, p, opts.logger)
			if err != nil {
				return fmt.Errorf("parse %s: %w", p, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := docs[:0]
	for _, doc := range docs {
		if doc.Draft && !opts.includeDrafts {
			opts.logger.WithField("id", doc.ID).Debug("skipping draft")
			continue
		}
		kept = append(kept, doc)
	}
	return NewStore(kept...)
}

// parseDocument creates a Document from a chapter file.
// Frontmatter wins over the first heading, which wins over the filename.
func parseDocument(root, p string, logger *logrus.Logger) (*models.Document, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(root, p)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)
	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))

	doc := &models.Document{
		Path:       p,
		SourcePath: rel,
		ModifiedAt: info.ModTime(),
		Keywords:   []string{},
		Tags:       []string{},
	}

	fm, body, err := frontmatter.Parse(string(raw))
	if err != nil {
		logger.WithFields(logrus.Fields{"path": rel, "error": err}).Warn("ignoring unreadable frontmatter")
		fm = nil
	}

	id := stem
	var title, label string
	if fm != nil {
		if fm.ID != "" {
			if strings.Contains(fm.ID, "/") {
				return nil, fmt.Errorf("%w %q: frontmatter id must not contain '/'", ErrInvalidID, fm.ID)
			}
			id = fm.ID
		}
		title = fm.Title
		label = fm.SidebarLabel
		doc.Slug = fm.Slug
		doc.Description = fm.Description
		doc.Keywords = fm.Keywords
		doc.Tags = fm.Tags
		doc.Draft = fm.Draft
	}
	if dir := doc.Dir(); dir != "" {
		id = dir + "/" + id
	}
	doc.ID = nav.DocumentID(id)

	if title == "" {
		title = extractHeading(body)
	}
	if title == "" {
		title = TitleFromFilename(stem)
	}
	doc.Title = title
	if label == "" {
		label = title
	}
	doc.Label = label
	doc.WordCount = len(strings.Fields(body))

	return doc, nil
}
