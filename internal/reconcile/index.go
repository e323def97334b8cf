package reconcile

// Entry is a catalog record snapshot. ID is the remote identifier required by
// the delete call and never appears in reports.
type Entry struct {
	ID         int64
	Title      string
	Year       int
	Path       string
	SizeOnDisk int64
}

// Index maps normalized titles to catalog entries for a single run.
type Index struct {
	entries    map[string]Entry
	collisions []string
}

// BuildIndex keys every entry by Normalize(entry.Title) in input order. When
// two titles normalize identically the later entry replaces the earlier one.
func BuildIndex(entries []Entry) *Index {
	idx := &Index{entries: make(map[string]Entry, len(entries))}
	for _, entry := range entries {
		key := Normalize(entry.Title)
		if _, exists := idx.entries[key]; exists {
			idx.collisions = append(idx.collisions, key)
		}
		idx.entries[key] = entry
	}
	return idx
}

// Lookup returns the entry stored under a normalized key.
func (i *Index) Lookup(key string) (Entry, bool) {
	if i == nil {
		return Entry{}, false
	}
	entry, ok := i.entries[key]
	return entry, ok
}

// Len reports the number of distinct keys.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.entries)
}

// Collisions lists keys that were overwritten while building, once per overwrite.
func (i *Index) Collisions() []string {
	if i == nil || len(i.collisions) == 0 {
		return nil
	}
	out := make([]string, len(i.collisions))
	copy(out, i.collisions)
	return out
}
