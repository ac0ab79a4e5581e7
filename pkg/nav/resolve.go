package nav

// Entry is the resolved navigation record of one document.
type Entry struct {
	ID       DocumentID `json:"id"`
	Label    string     `json:"label"`
	Depth    int        `json:"depth"`
	Position int        `json:"position"`

	// Empty when the entry is first or last.
	Previous DocumentID `json:"previous,omitempty"`
	Next     DocumentID `json:"next,omitempty"`

	// Labels of the enclosing categories, outermost first.
	Breadcrumb []string `json:"breadcrumb,omitempty"`
}

// HasPrevious reports whether the entry has a previous document.
func (e Entry) HasPrevious() bool { return e.Previous != "" }

// HasNext reports whether the entry has a next document.
func (e Entry) HasNext() bool { return e.Next != "" }

// Validate checks tree against the set of known documents. It walks the tree
// depth-first in declared order and returns the first *ValidationError found.
// A nil known set holds no documents.
func Validate(tree Tree, known DocSet) error {
	if known == nil {
		known = NewIDSet()
	}
	return check(tree, known)
}

// check validates tree structure. Reference existence is only checked when
// known is non-nil.
func check(tree Tree, known DocSet) error {
	seen := make(map[DocumentID]Path)
	return Walk(tree, func(v Visit) error {
		switch n := v.Node.(type) {
		case Category:
			if len(n.Items) == 0 {
				return &ValidationError{Kind: ErrEmptyCategory, Tree: tree.Name, Label: n.Label, Path: v.Path}
			}
		case DocRef:
			// "" marks a missing neighbour in Entry.
			if n.ID == "" {
				return &ValidationError{Kind: ErrEmptyDocumentID, Tree: tree.Name, Path: v.Path}
			}
			if known != nil && !known.Has(n.ID) {
				return &ValidationError{Kind: ErrDanglingReference, Tree: tree.Name, ID: n.ID, Path: v.Path}
			}
			if first, ok := seen[n.ID]; ok {
				return &ValidationError{Kind: ErrDuplicateDocument, Tree: tree.Name, ID: n.ID, Path: v.Path, FirstPath: first}
			}
			seen[n.ID] = v.Path
		default:
			return &ValidationError{Kind: ErrInvalidNode, Tree: tree.Name, Path: v.Path}
		}
		return nil
	})
}

// Resolve flattens tree into entries in display order and links each entry to
// its neighbours. Links cross category boundaries: reading order is continuous.
// The structural checks of Validate (invalid nodes, empty ids, duplicates,
// empty categories) run first; reference existence is left to Validate.
func Resolve(tree Tree) ([]Entry, error) {
	if err := check(tree, nil); err != nil {
		return nil, err
	}

	entries := []Entry{}
	_ = Walk(tree, func(v Visit) error {
		ref, ok := v.Node.(DocRef)
		if !ok {
			return nil
		}
		label := ref.Label
		if label == "" {
			label = string(ref.ID)
		}
		var crumbs []string
		if len(v.Ancestors) > 0 {
			crumbs = append([]string(nil), v.Ancestors...)
		}
		entries = append(entries, Entry{
			ID:         ref.ID,
			Label:      label,
			Depth:      v.Depth,
			Position:   len(entries),
			Breadcrumb: crumbs,
		})
		return nil
	})

	for i := range entries {
		if i > 0 {
			entries[i].Previous = entries[i-1].ID
		}
		if i < len(entries)-1 {
			entries[i].Next = entries[i+1].ID
		}
	}
	return entries, nil
}
