package nav

// Index maps document ids to their resolved entries.
type Index struct {
	entries []Entry
	byID    map[DocumentID]int
}

// NewIndex builds an index over entries, typically the output of Resolve.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		entries: append([]Entry(nil), entries...),
		byID:    make(map[DocumentID]int, len(entries)),
	}
	for i, e := range idx.entries {
		if _, ok := idx.byID[e.ID]; !ok {
			idx.byID[e.ID] = i
		}
	}
	return idx
}

// Lookup returns the entry for id, or false if id was never resolved.
func (idx *Index) Lookup(id DocumentID) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	i, ok := idx.byID[id]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[i], true
}

// Entries returns the indexed entries in display order.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}
	return append([]Entry(nil), idx.entries...)
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Lookup finds id in entries. Callers doing repeated lookups should keep an Index.
func Lookup(entries []Entry, id DocumentID) (Entry, bool) {
	return NewIndex(entries).Lookup(id)
}
