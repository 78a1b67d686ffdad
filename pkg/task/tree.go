package task

import (
	"cmp"
	"slices"
)

// SortRows orders rows by ascending SortOrder, ties broken by ascending ID.
// This is the sibling order every read path uses.
func SortRows(rows []Task) {
	slices.SortStableFunc(rows, func(a, b Task) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Materialize builds a forest from flat, already sorted rows. Each row
// appears exactly once: under the row whose ID equals its ParentID, or at
// the top level when the parent is nil or absent from rows. Rows that are
// only reachable through a parent cycle are promoted to the top level at
// the first row of the cycle in input order. rows is not modified.
func Materialize(rows []Task) []*Task {
	roots, _ := materialize(rows)
	return roots
}

// Roots materializes rows and keeps the true roots (nil ParentID) that pass
// the filter. Descendants stay attached whether or not they match.
func Roots(rows []Task, f Filter) []*Task {
	forest := Materialize(rows)
	out := make([]*Task, 0, len(forest))
	for _, n := range forest {
		if n.IsRoot() && f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Subtree materializes rows and returns the node with the given id together
// with its descendants, or nil.
func Subtree(rows []Task, id int64) *Task {
	_, index := materialize(rows)
	return index[id]
}

func materialize(rows []Task) ([]*Task, map[int64]*Task) {
	index := make(map[int64]*Task, len(rows))
	order := make([]*Task, 0, len(rows))
	for i := range rows {
		if _, dup := index[rows[i].ID]; dup {
			continue
		}
		n := rows[i]
		n.Children = []*Task{}
		index[n.ID] = &n
		order = append(order, &n)
	}

	kids := make(map[int64][]*Task)
	var roots []*Task
	for _, n := range order {
		if n.ParentID != nil && *n.ParentID != n.ID {
			if _, ok := index[*n.ParentID]; ok {
				kids[*n.ParentID] = append(kids[*n.ParentID], n)
				continue
			}
		}
		roots = append(roots, n)
	}

	placed := make(map[int64]bool, len(order))
	var attach func(n *Task)
	attach = func(n *Task) {
		placed[n.ID] = true
		for _, c := range kids[n.ID] {
			if placed[c.ID] {
				continue
			}
			n.Children = append(n.Children, c)
			attach(c)
		}
	}
	for _, r := range roots {
		attach(r)
	}
	// anything left is stuck in a parent cycle
	for _, n := range order {
		if !placed[n.ID] {
			roots = append(roots, n)
			attach(n)
		}
	}
	if roots == nil {
		roots = []*Task{}
	}
	return roots, index
}

// Walk visits every node of the forest depth-first, parents before children.
func Walk(forest []*Task, fn func(t *Task, depth int)) {
	var visit func(nodes []*Task, depth int)
	visit = func(nodes []*Task, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(forest, 0)
}
