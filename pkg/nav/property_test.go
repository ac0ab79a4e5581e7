package nav

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// genTree draws a tree with unique ids and no empty categories. The returned
// ids are in depth-first declared order.
func genTree(t *rapid.T) (Tree, []DocumentID) {
	var ids []DocumentID
	newDoc := func() Node {
		id := DocumentID(fmt.Sprintf("doc-%d", len(ids)))
		ids = append(ids, id)
		return DocRef{ID: id}
	}

	var gen func(depth int) []Node
	gen = func(depth int) []Node {
		n := rapid.IntRange(0, 4).Draw(t, "width")
		nodes := make([]Node, 0, n)
		for i := 0; i < n; i++ {
			if depth < 4 && rapid.Bool().Draw(t, "category") {
				label := fmt.Sprintf("cat-%d-%d", depth, i)
				items := gen(depth + 1)
				if len(items) == 0 {
					items = []Node{newDoc()}
				}
				nodes = append(nodes, Category{Label: label, Items: items})
				continue
			}
			nodes = append(nodes, newDoc())
		}
		return nodes
	}

	return Tree{Name: "generated", Items: gen(0)}, ids
}

func TestPropertyValidTreesValidate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree, ids := genTree(t)
		if err := Validate(tree, NewIDSet(ids...)); err != nil {
			t.Fatalf("valid tree rejected: %v", err)
		}
	})
}

func TestPropertyMissingDocumentIsDangling(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree, ids := genTree(t)
		if len(ids) == 0 {
			t.Skip("no documents")
		}
		missing := rapid.SampledFrom(ids).Draw(t, "missing")
		known := NewIDSet(ids...)
		delete(known, missing)

		err := Validate(tree, known)
		var verr *ValidationError
		if !errors.As(err, &verr) || !errors.Is(err, ErrDanglingReference) {
			t.Fatalf("expected dangling reference, got %v", err)
		}
		if verr.ID != missing {
			t.Fatalf("expected %q, got %q", missing, verr.ID)
		}
	})
}

func TestPropertyRepeatedDocumentIsDuplicate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree, ids := genTree(t)
		if len(ids) == 0 {
			t.Skip("no documents")
		}
		dup := rapid.SampledFrom(ids).Draw(t, "dup")
		tree.Items = append(tree.Items, DocRef{ID: dup})

		err := Validate(tree, NewIDSet(ids...))
		var verr *ValidationError
		if !errors.As(err, &verr) || !errors.Is(err, ErrDuplicateDocument) {
			t.Fatalf("expected duplicate document, got %v", err)
		}
		if verr.ID != dup {
			t.Fatalf("expected %q, got %q", dup, verr.ID)
		}
	})
}

func TestPropertyResolveOrderAndLinks(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree, ids := genTree(t)
		entries, err := Resolve(tree)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if len(entries) != len(ids) {
			t.Fatalf("expected %d entries, got %d", len(ids), len(entries))
		}
		n := len(entries)
		for i, e := range entries {
			if e.ID != ids[i] {
				t.Fatalf("entry %d: expected %q, got %q", i, ids[i], e.ID)
			}
			if i == 0 && e.HasPrevious() {
				t.Fatalf("first entry has previous %q", e.Previous)
			}
			if i > 0 && e.Previous != entries[i-1].ID {
				t.Fatalf("entry %d: previous %q, want %q", i, e.Previous, entries[i-1].ID)
			}
			if i == n-1 && e.HasNext() {
				t.Fatalf("last entry has next %q", e.Next)
			}
			if i < n-1 && e.Next != entries[i+1].ID {
				t.Fatalf("entry %d: next %q, want %q", i, e.Next, entries[i+1].ID)
			}
			if len(e.Breadcrumb) != e.Depth {
				t.Fatalf("entry %d: depth %d with breadcrumb %v", i, e.Depth, e.Breadcrumb)
			}
		}
	})
}

func TestPropertyResolveIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tree, _ := genTree(rt)
		first, err := Resolve(tree)
		if err != nil {
			rt.Fatalf("resolve: %v", err)
		}
		second, err := Resolve(tree)
		if err != nil {
			rt.Fatalf("resolve: %v", err)
		}
		require.Equal(rt, first, second)
	})
}
