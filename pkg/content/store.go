package content

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mattsolo1/grove-book/pkg/models"
	"github.com/mattsolo1/grove-book/pkg/nav"
)

var (
	// ErrDuplicateID is returned when two files resolve to the same document id.
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrInvalidID is returned when a frontmatter id contains a path separator.
	ErrInvalidID = errors.New("invalid document id")
)

// Store is an immutable snapshot of the documents of a book.
type Store struct {
	docs []*models.Document
	byID map[nav.DocumentID]*models.Document
}

// NewStore creates a store from docs. Documents are kept sorted by id.
func NewStore(docs ...*models.Document) (*Store, error) {
	s := &Store{
		docs: make([]*models.Document, 0, len(docs)),
		byID: make(map[nav.DocumentID]*models.Document, len(docs)),
	}
	for _, doc := range docs {
		if prev, ok := s.byID[doc.ID]; ok {
			return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateID, doc.ID, prev.SourcePath, doc.SourcePath)
		}
		s.byID[doc.ID] = doc
		s.docs = append(s.docs, doc)
	}
	sort.Slice(s.docs, func(i, j int) bool { return s.docs[i].ID < s.docs[j].ID })
	return s, nil
}

// Has reports whether a document with id exists.
func (s *Store) Has(id nav.DocumentID) bool {
	_, ok := s.byID[id]
	return ok
}

// Get returns the document with id.
func (s *Store) Get(id nav.DocumentID) (*models.Document, bool) {
	doc, ok := s.byID[id]
	return doc, ok
}

// Label returns the sidebar label of the document with id.
func (s *Store) Label(id nav.DocumentID) (string, bool) {
	doc, ok := s.byID[id]
	if !ok {
		return "", false
	}
	return doc.Label, true
}

// IDs returns all document ids in sorted order.
func (s *Store) IDs() []nav.DocumentID {
	ids := make([]nav.DocumentID, len(s.docs))
	for i, doc := range s.docs {
		ids[i] = doc.ID
	}
	return ids
}

// Documents returns all documents sorted by id.
func (s *Store) Documents() []*models.Document {
	return append([]*models.Document(nil), s.docs...)
}

// Len returns the number of documents.
func (s *Store) Len() int {
	return len(s.docs)
}
