package retrieval

import "sort"

// Merge deduplicates, ranks, and diversifies adapter outputs.
//
// Candidates are sorted descending by score with unscored candidates
// last; the sort is stable, so ties keep adapter execution order and
// results are reproducible for identical candidate sets. A candidate is
// admitted if its chunk has not been seen and its document has not
// reached perDocCap. The cap is relaxed in a second pass only when the
// pool cannot otherwise fill limit results.
func Merge(candidates []Candidate, limit, perDocCap int) []Candidate {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}
	if perDocCap <= 0 {
		perDocCap = 1
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Score, sorted[j].Score
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})

	merged := make([]Candidate, 0, limit)
	seen := make(map[string]bool, len(sorted))
	perDoc := make(map[string]int)

	for _, c := range sorted {
		if len(merged) == limit {
			return merged
		}
		if c.ChunkID == "" || seen[c.ChunkID] {
			continue
		}
		if perDoc[c.DocumentID] >= perDocCap {
			continue
		}
		seen[c.ChunkID] = true
		perDoc[c.DocumentID]++
		merged = append(merged, c)
	}

	// Second pass: exceed the diversity cap only when strictly necessary
	// to reach the requested count.
	for _, c := range sorted {
		if len(merged) == limit {
			break
		}
		if c.ChunkID == "" || seen[c.ChunkID] {
			continue
		}
		seen[c.ChunkID] = true
		perDoc[c.DocumentID]++
		merged = append(merged, c)
	}

	return merged
}
