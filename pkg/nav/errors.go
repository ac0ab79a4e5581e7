package nav

import (
	"errors"
	"fmt"
)

var (
	// ErrDanglingReference is returned when a DocRef points to a document
	// that does not exist in the content store.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrDuplicateDocument is returned when the same document is referenced
	// more than once within a single tree.
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrEmptyCategory is returned when a category has no items.
	ErrEmptyCategory = errors.New("empty category")

	// ErrEmptyDocumentID is returned for a DocRef without an id.
	ErrEmptyDocumentID = errors.New("empty document id")

	// ErrInvalidNode is returned for nodes that are neither a DocRef nor a Category.
	ErrInvalidNode = errors.New("invalid node")
)

// ValidationError reports a structural problem in a navigation tree.
// Kind is one of the package sentinel errors.
type ValidationError struct {
	Kind  error
	Tree  string
	ID    DocumentID // offending document, empty for ErrEmptyCategory
	Label string     // offending category label, ErrEmptyCategory only
	Path  Path

	// FirstPath is where a duplicated document was first seen.
	FirstPath Path
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	var msg string
	switch {
	case errors.Is(e.Kind, ErrEmptyCategory):
		msg = fmt.Sprintf("%s %q at %s", e.Kind, e.Label, e.Path)
	case errors.Is(e.Kind, ErrEmptyDocumentID), errors.Is(e.Kind, ErrInvalidNode):
		msg = fmt.Sprintf("%s at %s", e.Kind, e.Path)
	case errors.Is(e.Kind, ErrDuplicateDocument):
		msg = fmt.Sprintf("%s %q at %s (first at %s)", e.Kind, e.ID, e.Path, e.FirstPath)
	default:
		msg = fmt.Sprintf("%s %q at %s", e.Kind, e.ID, e.Path)
	}
	if e.Tree == "" {
		return msg
	}
	return fmt.Sprintf("sidebar %q: %s", e.Tree, msg)
}

func (e *ValidationError) Unwrap() error { return e.Kind }
