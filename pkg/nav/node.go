package nav

import (
	"fmt"
	"strings"
)

// DocumentID uniquely identifies one content document, e.g. "01-intro" or "guides/setup".
type DocumentID string

// Kind categorizes the different kinds of nodes in a navigation tree.
type Kind string

const (
	KindDoc      Kind = "doc"
	KindCategory Kind = "category"
)

// Node is a single item in a navigation tree. It is either a DocRef or a Category.
type Node interface {
	Kind() Kind
}

// DocRef is a leaf node referencing one document.
type DocRef struct {
	ID    DocumentID
	Label string
}

// Kind implements Node.
func (DocRef) Kind() Kind { return KindDoc }

// Category groups an ordered, non-empty list of child nodes under a label.
type Category struct {
	Label     string
	Collapsed bool
	Items     []Node
}

// Kind implements Node.
func (Category) Kind() Kind { return KindCategory }

// Normalize returns the DocRef or Category behind n, dereferencing pointers.
// Any other node is returned unchanged.
func Normalize(n Node) Node {
	switch n := n.(type) {
	case *DocRef:
		if n != nil {
			return *n
		}
	case *Category:
		if n != nil {
			return *n
		}
	}
	return n
}

// Tree is a named, ordered sequence of root-level nodes (one sidebar).
type Tree struct {
	Name  string
	Items []Node
}

// DocSet is the authoritative set of existing documents.
type DocSet interface {
	Has(id DocumentID) bool
}

// IDSet is a map-backed DocSet.
type IDSet map[DocumentID]struct{}

// NewIDSet creates an IDSet holding ids.
func NewIDSet(ids ...DocumentID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has implements DocSet.
func (s IDSet) Has(id DocumentID) bool {
	_, ok := s[id]
	return ok
}

// Path locates a node by its item index at each nesting level, outermost first.
type Path []int

// String renders the path as "[1].items[0]".
func (p Path) String() string {
	var sb strings.Builder
	for i, idx := range p {
		if i > 0 {
			sb.WriteString(".items")
		}
		sb.WriteString(fmt.Sprintf("[%d]", idx))
	}
	return sb.String()
}

func (p Path) child(i int) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = i
	return c
}

// Visit describes one node reached by Walk.
type Visit struct {
	Node  Node
	Path  Path
	Depth int // number of enclosing categories

	// Labels of the enclosing categories, outermost first.
	Ancestors []string
}

// Walk visits every node of tree depth-first in declared order. A category is
// visited before its items. Pointer nodes are reported as their values.
// Walk stops at the first error returned by fn.
func Walk(tree Tree, fn func(v Visit) error) error {
	return walkItems(tree.Items, nil, nil, fn)
}

func walkItems(items []Node, path Path, ancestors []string, fn func(v Visit) error) error {
	for i, n := range items {
		n = Normalize(n)
		p := path.child(i)
		if err := fn(Visit{Node: n, Path: p, Depth: len(ancestors), Ancestors: ancestors}); err != nil {
			return err
		}
		if c, ok := n.(Category); ok {
			next := make([]string, len(ancestors), len(ancestors)+1)
			copy(next, ancestors)
			next = append(next, c.Label)
			if err := walkItems(c.Items, p, next, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// CategoryInfo exposes a category's presentation data for a renderer.
type CategoryInfo struct {
	Label     string
	Collapsed bool
	Depth     int
	Path      Path
	Docs      []DocumentID // every document below the category, in order
}

// Categories lists the categories of tree in declared order. Nodes that are
// neither a DocRef nor a Category are skipped; Validate reports them.
func Categories(tree Tree) []CategoryInfo {
	var out []CategoryInfo
	var visit func(items []Node, path Path, depth int) []DocumentID
	visit = func(items []Node, path Path, depth int) []DocumentID {
		var ids []DocumentID
		for i, n := range items {
			p := path.child(i)
			switch n := Normalize(n).(type) {
			case DocRef:
				ids = append(ids, n.ID)
			case Category:
				idx := len(out)
				out = append(out, CategoryInfo{
					Label:     n.Label,
					Collapsed: n.Collapsed,
					Depth:     depth,
					Path:      p,
				})
				docs := visit(n.Items, p, depth+1)
				out[idx].Docs = docs
				ids = append(ids, docs...)
			}
		}
		return ids
	}
	visit(tree.Items, nil, 0)
	return out
}
