// Package changeset computes the minimal structural edits that turn one
// ordered list of identified elements into another.
//
// Elements are matched by key. Keys present only in the previous list are
// removals, keys present only in the current list are inserts, and keys
// present in both are either kept in place or moved. Moves are minimal: the
// elements whose relative order is preserved form a longest increasing
// subsequence of previous positions, and every other shared element moves.
// Kept elements whose content differs (per the equal func) are mutations.
//
// Index conventions follow batch-update semantics: removals and the From side
// of moves and mutations are indices into the previous list; inserts and the
// To side are indices into the current list.
package changeset

import (
	"fmt"
	"sort"
)

// Move pairs a previous index with a current index.
type Move struct {
	From int
	To   int
}

// Changeset lists the edits between two snapshots. All slices are sorted:
// Removals and Inserts ascending, Moves and Mutations by To.
type Changeset struct {
	Removals  []int
	Inserts   []int
	Moves     []Move
	Mutations []Move
}

// IsEmpty reports whether the changeset has no edits.
func (c Changeset) IsEmpty() bool {
	return c.Count() == 0
}

// Count returns the total number of edits.
func (c Changeset) Count() int {
	return len(c.Removals) + len(c.Inserts) + len(c.Moves) + len(c.Mutations)
}

func (c Changeset) String() string {
	return fmt.Sprintf("changeset{removals=%v inserts=%v moves=%v mutations=%v}",
		c.Removals, c.Inserts, c.Moves, c.Mutations)
}

// Compute diffs prev against curr.
//
// key extracts the identity of an element. equal compares the content of two
// elements with the same key; pass nil to never report mutations.
// Duplicate keys produce an unspecified but replayable result: only the last
// occurrence of a key takes part in matching, earlier ones are removed or
// inserted.
func Compute[T any, K comparable](prev, curr []T, key func(T) K, equal func(a, b T) bool) Changeset {
	prevIndex := make(map[K]int, len(prev))
	for i, p := range prev {
		prevIndex[key(p)] = i
	}
	currIndex := make(map[K]int, len(curr))
	for j, c := range curr {
		currIndex[key(c)] = j
	}

	var cs Changeset
	for i, p := range prev {
		k := key(p)
		if _, ok := currIndex[k]; !ok || prevIndex[k] != i {
			cs.Removals = append(cs.Removals, i)
		}
	}

	// Shared elements in current order, carrying their previous position.
	var shared []Move
	for j, c := range curr {
		k := key(c)
		i, ok := prevIndex[k]
		if !ok || currIndex[k] != j {
			cs.Inserts = append(cs.Inserts, j)
			continue
		}
		shared = append(shared, Move{From: i, To: j})
	}

	kept := longestIncreasing(shared)
	for n, m := range shared {
		if !kept[n] {
			cs.Moves = append(cs.Moves, m)
			continue
		}
		if equal != nil && !equal(prev[m.From], curr[m.To]) {
			cs.Mutations = append(cs.Mutations, m)
		}
	}
	return cs
}

// longestIncreasing marks the members of a longest strictly increasing
// subsequence of shared[i].From.
func longestIncreasing(shared []Move) []bool {
	kept := make([]bool, len(shared))
	if len(shared) == 0 {
		return kept
	}

	// tails[l] is the index into shared of the smallest tail of an increasing
	// run of length l+1.
	tails := make([]int, 0, len(shared))
	parent := make([]int, len(shared))
	for n, m := range shared {
		l := sort.Search(len(tails), func(x int) bool {
			return shared[tails[x]].From >= m.From
		})
		if l > 0 {
			parent[n] = tails[l-1]
		} else {
			parent[n] = -1
		}
		if l == len(tails) {
			tails = append(tails, n)
		} else {
			tails[l] = n
		}
	}

	for n := tails[len(tails)-1]; n >= 0; n = parent[n] {
		kept[n] = true
	}
	return kept
}

// Apply replays cs against prev and returns the resulting list, taking
// inserted and mutated elements from curr. It returns an error when cs does
// not describe a valid transition between lists of these lengths.
func Apply[T any](prev, curr []T, cs Changeset) ([]T, error) {
	removed := make([]bool, len(prev))
	mark := func(i int) error {
		if i < 0 || i >= len(prev) {
			return fmt.Errorf("changeset: previous index %d out of range [0,%d)", i, len(prev))
		}
		if removed[i] {
			return fmt.Errorf("changeset: previous index %d used twice", i)
		}
		removed[i] = true
		return nil
	}
	for _, i := range cs.Removals {
		if err := mark(i); err != nil {
			return nil, err
		}
	}
	for _, m := range cs.Moves {
		if err := mark(m.From); err != nil {
			return nil, err
		}
	}

	n := len(prev) - len(cs.Removals) + len(cs.Inserts)
	if n != len(curr) {
		return nil, fmt.Errorf("changeset: replay yields %d elements, current has %d", n, len(curr))
	}

	out := make([]T, n)
	filled := make([]bool, n)
	place := func(j int, v T) error {
		if j < 0 || j >= n {
			return fmt.Errorf("changeset: current index %d out of range [0,%d)", j, n)
		}
		if filled[j] {
			return fmt.Errorf("changeset: current index %d filled twice", j)
		}
		out[j] = v
		filled[j] = true
		return nil
	}
	for _, j := range cs.Inserts {
		if j < 0 || j >= n {
			return nil, fmt.Errorf("changeset: current index %d out of range [0,%d)", j, n)
		}
		if err := place(j, curr[j]); err != nil {
			return nil, err
		}
	}
	for _, m := range cs.Moves {
		if err := place(m.To, prev[m.From]); err != nil {
			return nil, err
		}
	}

	mutated := make(map[int]int, len(cs.Mutations))
	for _, m := range cs.Mutations {
		mutated[m.From] = m.To
	}

	j := 0
	for i, v := range prev {
		if removed[i] {
			continue
		}
		for j < n && filled[j] {
			j++
		}
		if j >= n {
			return nil, fmt.Errorf("changeset: no slot left for previous index %d", i)
		}
		if to, ok := mutated[i]; ok {
			if to != j {
				return nil, fmt.Errorf("changeset: mutation %d->%d lands at %d", i, to, j)
			}
			v = curr[to]
		}
		out[j] = v
		filled[j] = true
	}
	return out, nil
}
