package catalog

// DiffIDs returns the ids to link and unlink to move from current to desired.
// Both results keep the order of their source slice and contain no duplicates.
func DiffIDs(current, desired []int64) (toAdd []int64, toRemove []int64) {
	have := make(map[int64]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}
	want := make(map[int64]struct{}, len(desired))
	for _, id := range desired {
		want[id] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(desired))
	for _, id := range desired {
		if _, ok := have[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		toAdd = append(toAdd, id)
	}

	clear(seen)
	for _, id := range current {
		if _, ok := want[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		toRemove = append(toRemove, id)
	}
	return toAdd, toRemove
}
