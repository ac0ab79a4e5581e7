package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mattsolo1/grove-book/pkg/nav"
)

type outcome struct {
	res *Result
	err error
}

func startWatch(t *testing.T, svc *Service) (<-chan outcome, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	builds := make(chan outcome, 16)
	done := make(chan error, 1)
	go func() {
		done <- svc.Watch(ctx, func(res *Result, err error) {
			builds <- outcome{res, err}
		})
	}()
	stop := func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop")
		}
	}
	return builds, stop
}

func nextBuild(t *testing.T, builds <-chan outcome) outcome {
	t.Helper()
	select {
	case o := <-builds:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for build")
		return outcome{}
	}
}

func TestWatchRebuildsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	configPath := setupBook(t, bookConfig, bookSidebars)
	root := filepath.Dir(configPath)
	svc := newService(t, configPath, nil)
	svc.Config.Debounce = 20 * time.Millisecond

	builds, stop := startWatch(t, svc)
	defer stop()

	first := nextBuild(t, builds)
	require.NoError(t, first.err)
	assert.Equal(t, []nav.DocumentID{"99-appendix"}, first.res.Orphans)

	// A new document in a new directory, then a sidebar that places it.
	writeFile(t, root, "docs/extra/05-more.md", "# More\n")
	writeFile(t, root, "sidebars.yml", bookSidebars+"  - extra/05-more\n  - 99-appendix\n")

	var last outcome
	require.Eventually(t, func() bool {
		select {
		case last = <-builds:
		default:
		}
		return last.err == nil && last.res != nil && len(last.res.Orphans) == 0
	}, 5*time.Second, 10*time.Millisecond)

	e, ok := last.res.Lookup("bookSidebar", "extra/05-more")
	require.True(t, ok)
	assert.Equal(t, "More", e.Label)
	assert.Equal(t, nav.DocumentID("99-appendix"), e.Next)
}

func TestWatchReportsBrokenBuild(t *testing.T) {
	defer goleak.VerifyNone(t)

	configPath := setupBook(t, bookConfig, bookSidebars)
	root := filepath.Dir(configPath)
	svc := newService(t, configPath, nil)
	svc.Config.Debounce = 20 * time.Millisecond

	builds, stop := startWatch(t, svc)
	defer stop()

	require.NoError(t, nextBuild(t, builds).err)

	writeFile(t, root, "sidebars.yml", bookSidebars+"  - 42-nowhere\n")

	var last outcome
	require.Eventually(t, func() bool {
		select {
		case last = <-builds:
		default:
		}
		return last.err != nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, last.err, nav.ErrDanglingReference)
}

func TestWatchReloadsSiteConfig(t *testing.T) {
	defer goleak.VerifyNone(t)

	configPath := setupBook(t, bookConfig, bookSidebars)
	root := filepath.Dir(configPath)
	svc := newService(t, configPath, nil)
	svc.Config.Debounce = 20 * time.Millisecond

	builds, stop := startWatch(t, svc)
	defer stop()

	require.NoError(t, nextBuild(t, builds).err)

	writeFile(t, root, "book.yml", "title: Renamed\nbase_url: /renamed/\n")

	var last outcome
	require.Eventually(t, func() bool {
		select {
		case last = <-builds:
		default:
		}
		return last.res != nil && last.res.Site.Title == "Renamed"
	}, 5*time.Second, 10*time.Millisecond)

	page, ok := last.res.Page("02-vague-code-problem")
	require.True(t, ok)
	assert.Equal(t, "/renamed/02-vague-code-problem", page.Permalink)
}

func TestClassify(t *testing.T) {
	configPath := setupBook(t, bookConfig, bookSidebars)
	root := filepath.Dir(configPath)
	svc := newService(t, configPath, nil)
	docs := filepath.Join(root, "docs")

	tests := []struct {
		name     string
		event    fsnotify.Event
		relevant bool
		config   bool
	}{
		{"doc write", fsnotify.Event{Name: filepath.Join(docs, "01-intro.md"), Op: fsnotify.Write}, true, false},
		{"mdx create", fsnotify.Event{Name: filepath.Join(docs, "x.mdx"), Op: fsnotify.Create}, true, false},
		{"new directory", fsnotify.Event{Name: filepath.Join(docs, "guides"), Op: fsnotify.Create}, true, false},
		{"image", fsnotify.Event{Name: filepath.Join(docs, "logo.svg"), Op: fsnotify.Write}, false, false},
		{"partial", fsnotify.Event{Name: filepath.Join(docs, "_snippet.md"), Op: fsnotify.Write}, false, false},
		{"chmod only", fsnotify.Event{Name: filepath.Join(docs, "01-intro.md"), Op: fsnotify.Chmod}, false, false},
		{"sidebars", fsnotify.Event{Name: filepath.Join(root, "sidebars.yml"), Op: fsnotify.Write}, true, false},
		{"site config", fsnotify.Event{Name: configPath, Op: fsnotify.Rename}, true, true},
		{"unrelated file", fsnotify.Event{Name: filepath.Join(root, "README.md"), Op: fsnotify.Write}, false, false},
		{"sidebars through relative segments", fsnotify.Event{Name: root + "/docs/../sidebars.yml", Op: fsnotify.Write}, true, false},
		{"removed doc", fsnotify.Event{Name: filepath.Join(docs, "05-old.md"), Op: fsnotify.Remove}, true, false},
		{"sibling with docs prefix", fsnotify.Event{Name: filepath.Join(root, "docs-old", "a.md"), Op: fsnotify.Write}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relevant, config := svc.classify(tt.event, docs)
			assert.Equal(t, tt.relevant, relevant)
			assert.Equal(t, tt.config, config)
		})
	}
}

func TestLookupPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/01-intro.md", "# Intro\n")

	existing := lookupPath(filepath.Join(root, "docs", "01-intro.md"))
	assert.Equal(t, existing, lookupPath(root+"/docs/./01-intro.md"))

	// A removed file normalizes like its directory.
	gone := lookupPath(filepath.Join(root, "docs", "02-gone.md"))
	assert.Equal(t, filepath.Join(lookupPath(filepath.Join(root, "docs")), "02-gone.md"), gone)
	assert.True(t, isUnder(gone, lookupPath(filepath.Join(root, "docs"))))

	assert.True(t, samePath(filepath.Join(root, "docs"), root+"/docs/"))
	assert.False(t, samePath(filepath.Join(root, "docs"), filepath.Join(root, "docs-old")))
}
