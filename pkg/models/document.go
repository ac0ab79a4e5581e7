package models

import (
	"path"
	"time"

	"github.com/mattsolo1/grove-book/pkg/nav"
)

// Document represents one chapter file in the docs directory
type Document struct {
	ID         nav.DocumentID `json:"id"`
	Path       string         `json:"path"`        // Absolute path on disk
	SourcePath string         `json:"source_path"` // Slash-separated, relative to the docs directory
	Title      string         `json:"title"`
	Label      string         `json:"label"` // Sidebar label derived from frontmatter, heading or filename
	Slug       string         `json:"slug,omitempty"`
	ModifiedAt time.Time      `json:"modified_at"`
	WordCount  int            `json:"word_count"`

	// Frontmatter fields
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords"`
	Tags        []string `json:"tags"`
	Draft       bool     `json:"draft,omitempty"`
}

// Dir returns the slash-separated directory of the document relative to the
// docs directory, or "" for top-level documents.
func (d *Document) Dir() string {
	dir := path.Dir(d.SourcePath)
	if dir == "." {
		return ""
	}
	return dir
}
