package task

import (
	"math"
	"reflect"
	"testing"
)

func ptr(v int64) *int64 { return &v }

func row(id int64, parent *int64, sort int) Task {
	return Task{ID: id, Title: "t", ParentID: parent, SortOrder: sort, Priority: Medium}
}

func ids(nodes []*Task) []int64 {
	out := []int64{}
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func countNodes(forest []*Task) map[int64]int {
	seen := map[int64]int{}
	Walk(forest, func(t *Task, _ int) { seen[t.ID]++ })
	return seen
}

func TestSortRows(t *testing.T) {
	rows := []Task{row(10, nil, 2), row(12, nil, 1), row(11, nil, 1)}
	SortRows(rows)
	got := []int64{rows[0].ID, rows[1].ID, rows[2].ID}
	if want := []int64{11, 12, 10}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestSortRowsExtremeValues(t *testing.T) {
	rows := []Task{row(1, nil, math.MaxInt), row(2, nil, -5), row(3, nil, math.MinInt)}
	SortRows(rows)
	got := []int64{rows[0].ID, rows[1].ID, rows[2].ID}
	if want := []int64{3, 2, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestMaterializeNestsChildren(t *testing.T) {
	rows := []Task{row(1, nil, 0), row(2, ptr(1), 0), row(3, ptr(2), 0), row(4, ptr(1), 0), row(5, nil, 0)}
	forest := Materialize(rows)

	if got := ids(forest); !reflect.DeepEqual(got, []int64{1, 5}) {
		t.Fatalf("roots = %v", got)
	}
	if got := ids(forest[0].Children); !reflect.DeepEqual(got, []int64{2, 4}) {
		t.Fatalf("children of 1 = %v", got)
	}
	if got := ids(forest[0].Children[0].Children); !reflect.DeepEqual(got, []int64{3}) {
		t.Fatalf("children of 2 = %v", got)
	}
	if forest[1].Children == nil || len(forest[1].Children) != 0 {
		t.Fatalf("leaf children should be an empty slice, got %#v", forest[1].Children)
	}
	for id, n := range countNodes(forest) {
		if n != 1 {
			t.Fatalf("task %d appears %d times", id, n)
		}
	}
}

func TestMaterializeOrphanBecomesRoot(t *testing.T) {
	// 2's parent was filtered out of the input
	rows := []Task{row(2, ptr(1), 0), row(3, ptr(2), 0)}
	forest := Materialize(rows)
	if got := ids(forest); !reflect.DeepEqual(got, []int64{2}) {
		t.Fatalf("roots = %v", got)
	}
	if got := ids(forest[0].Children); !reflect.DeepEqual(got, []int64{3}) {
		t.Fatalf("children = %v", got)
	}
}

func TestMaterializeCycles(t *testing.T) {
	rows := []Task{
		row(1, nil, 0),
		row(2, ptr(3), 0),
		row(3, ptr(2), 0),
		row(4, ptr(4), 0),
		row(5, ptr(2), 0),
	}
	forest := Materialize(rows)

	seen := countNodes(forest)
	if len(seen) != len(rows) {
		t.Fatalf("expected %d nodes, got %v", len(rows), seen)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("task %d appears %d times", id, n)
		}
	}
	// the self-parented row is a root, the 2<->3 loop is cut at 2
	if got := ids(forest); !reflect.DeepEqual(got, []int64{1, 4, 2}) {
		t.Fatalf("roots = %v", got)
	}
	if got := ids(forest[2].Children); !reflect.DeepEqual(got, []int64{3, 5}) {
		t.Fatalf("children of 2 = %v", got)
	}
}

func TestMaterializeDeterministic(t *testing.T) {
	rows := []Task{row(1, nil, 0), row(2, ptr(1), 1), row(3, ptr(1), 0), row(4, ptr(3), 0)}
	SortRows(rows)
	a := Materialize(rows)
	b := Materialize(rows)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("materializing twice gave different trees")
	}
	if a[0] == b[0] {
		t.Fatalf("materializations should not share nodes")
	}
	for _, r := range rows {
		if r.Children != nil {
			t.Fatalf("input row %d was modified", r.ID)
		}
	}
}

func TestMaterializeSkipsDuplicates(t *testing.T) {
	forest := Materialize([]Task{row(1, nil, 0), row(1, nil, 0)})
	if len(forest) != 1 {
		t.Fatalf("roots = %v", ids(forest))
	}
}

func TestMaterializeEmpty(t *testing.T) {
	forest := Materialize(nil)
	if forest == nil || len(forest) != 0 {
		t.Fatalf("expected empty non-nil forest, got %#v", forest)
	}
}

func TestRootsFiltersOnlyRoots(t *testing.T) {
	done := row(1, nil, 0)
	done.IsCompleted = true
	open := row(2, nil, 0)
	kid := row(3, ptr(2), 0)
	kid.IsCompleted = true
	high := row(4, nil, 0)
	high.Priority = High

	rows := []Task{done, open, kid, high}

	got := Roots(rows, Filter{IncludeCompleted: false})
	if !reflect.DeepEqual(ids(got), []int64{2, 4}) {
		t.Fatalf("roots = %v", ids(got))
	}
	if !reflect.DeepEqual(ids(got[0].Children), []int64{3}) {
		t.Fatalf("completed child should stay attached, got %v", ids(got[0].Children))
	}

	got = Roots(rows, Filter{IncludeCompleted: true, Priority: "HIGH"})
	if !reflect.DeepEqual(ids(got), []int64{4}) {
		t.Fatalf("priority roots = %v", ids(got))
	}

	got = Roots(rows, Filter{IncludeCompleted: true, Priority: "someday"})
	if !reflect.DeepEqual(ids(got), []int64{1, 2, 4}) {
		t.Fatalf("unknown priority should not filter, got %v", ids(got))
	}
}

func TestRootsDefaultFilterKeepsCompleted(t *testing.T) {
	done := row(1, nil, 0)
	done.IsCompleted = true
	rows := []Task{done, row(2, nil, 0)}

	if got := ids(Roots(rows, DefaultFilter())); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Fatalf("default roots = %v", got)
	}
	if got := ids(Roots(rows, Filter{})); !reflect.DeepEqual(got, []int64{2}) {
		t.Fatalf("zero filter roots = %v", got)
	}
}

func TestRootsSkipsOrphans(t *testing.T) {
	got := Roots([]Task{row(1, nil, 0), row(2, ptr(99), 0)}, Filter{IncludeCompleted: true})
	if !reflect.DeepEqual(ids(got), []int64{1}) {
		t.Fatalf("roots = %v", ids(got))
	}
}

func TestSubtree(t *testing.T) {
	rows := []Task{row(1, nil, 0), row(2, ptr(1), 0), row(3, ptr(2), 0)}
	n := Subtree(rows, 2)
	if n == nil || n.ID != 2 {
		t.Fatalf("subtree = %#v", n)
	}
	if !reflect.DeepEqual(ids(n.Children), []int64{3}) {
		t.Fatalf("children = %v", ids(n.Children))
	}
	if Subtree(rows, 42) != nil {
		t.Fatalf("expected nil for missing id")
	}
}

func TestWalkDepth(t *testing.T) {
	forest := Materialize([]Task{row(1, nil, 0), row(2, ptr(1), 0), row(3, ptr(2), 0)})
	var depths []int
	Walk(forest, func(_ *Task, d int) { depths = append(depths, d) })
	if !reflect.DeepEqual(depths, []int{0, 1, 2}) {
		t.Fatalf("depths = %v", depths)
	}
}
