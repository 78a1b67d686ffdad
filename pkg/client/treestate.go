package client

import (
	"slices"

	"treetodo/pkg/task"
)

// TreeState is the set of expanded task ids. It is not safe for concurrent
// use.
type TreeState struct {
	expanded map[int64]bool
}

// NewTreeState returns a state with the given ids expanded.
func NewTreeState(initial ...int64) *TreeState {
	s := &TreeState{expanded: make(map[int64]bool, len(initial))}
	for _, id := range initial {
		s.expanded[id] = true
	}
	return s
}

func (s *TreeState) Toggle(id int64) {
	if s.expanded[id] {
		delete(s.expanded, id)
		return
	}
	s.expanded[id] = true
}

func (s *TreeState) Expand(id int64)   { s.expanded[id] = true }
func (s *TreeState) Collapse(id int64) { delete(s.expanded, id) }

// ExpandAll replaces the expanded set with ids.
func (s *TreeState) ExpandAll(ids []int64) {
	s.expanded = make(map[int64]bool, len(ids))
	for _, id := range ids {
		s.expanded[id] = true
	}
}

func (s *TreeState) CollapseAll() {
	s.expanded = make(map[int64]bool)
}

func (s *TreeState) IsExpanded(id int64) bool {
	return s.expanded[id]
}

// Expanded lists the expanded ids in ascending order.
func (s *TreeState) Expanded() []int64 {
	ids := make([]int64, 0, len(s.expanded))
	for id := range s.expanded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Retain forgets expanded ids that are no longer in forest.
func (s *TreeState) Retain(forest []*task.Task) {
	present := make(map[int64]bool)
	task.Walk(forest, func(t *task.Task, _ int) { present[t.ID] = true })
	for id := range s.expanded {
		if !present[id] {
			delete(s.expanded, id)
		}
	}
}

// Row is one line of the rendered tree.
type Row struct {
	Task        *task.Task
	Depth       int
	HasChildren bool
	Expanded    bool
}

// Visible flattens forest depth-first, descending only into expanded
// nodes.
func (s *TreeState) Visible(forest []*task.Task) []Row {
	var rows []Row
	var visit func(nodes []*task.Task, depth int)
	visit = func(nodes []*task.Task, depth int) {
		for _, t := range nodes {
			open := s.expanded[t.ID]
			rows = append(rows, Row{Task: t, Depth: depth, HasChildren: len(t.Children) > 0, Expanded: open})
			if open {
				visit(t.Children, depth+1)
			}
		}
	}
	visit(forest, 0)
	return rows
}

// IDs lists every id in forest, parents before children.
func IDs(forest []*task.Task) []int64 {
	var ids []int64
	task.Walk(forest, func(t *task.Task, _ int) { ids = append(ids, t.ID) })
	return ids
}

// Prune drops the entries of per-task widget state whose task is no longer
// in forest.
func Prune[V any](state map[int64]V, forest []*task.Task) {
	present := make(map[int64]bool, len(state))
	task.Walk(forest, func(t *task.Task, _ int) { present[t.ID] = true })
	for id := range state {
		if !present[id] {
			delete(state, id)
		}
	}
}
