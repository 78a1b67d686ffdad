package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"treetodo/pkg/task"
)

// Gruvbox-inspired color palette.
var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorBlue   = lipgloss.Color("#83a598")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
	colorHeader = lipgloss.Color("#fe8019")
)

var (
	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	styleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	styleRed    = lipgloss.NewStyle().Foreground(colorRed)
	styleBlue   = lipgloss.NewStyle().Foreground(colorBlue)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleBold   = lipgloss.NewStyle().Foreground(colorFg).Bold(true)
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// Renderer formats tasks for the terminal. With color off it emits plain
// text.
type Renderer struct {
	color bool
}

func NewRenderer(color bool) *Renderer {
	return &Renderer{color: color}
}

func (r *Renderer) paint(st lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return st.Render(s)
}

func (r *Renderer) priority(p task.Priority) string {
	st := styleBlue
	switch p {
	case task.High:
		st = styleRed
	case task.Medium:
		st = styleYellow
	}
	return r.paint(st, "["+string(p)+"]")
}

// Line renders one task without tree connectors.
func (r *Renderer) Line(t *task.Task) string {
	box := "[ ]"
	title := t.Title
	if t.IsCompleted {
		box = r.paint(styleGreen, "[x]")
		title = r.paint(styleDim, title)
	}
	parts := []string{box, r.paint(styleDim, fmt.Sprintf("#%d", t.ID)), title, r.priority(t.Priority)}
	if t.DueDate != nil {
		parts = append(parts, r.paint(styleDim, "due "+t.DueDate.Format("2006-01-02")))
	}
	return strings.Join(parts, " ")
}

// Forest renders root tasks and all descendants with box-drawing
// connectors.
func (r *Renderer) Forest(forest []*task.Task) string {
	var b strings.Builder
	for _, t := range forest {
		b.WriteString(r.Line(t) + "\n")
		r.children(&b, t.Children, "")
	}
	return b.String()
}

func (r *Renderer) children(b *strings.Builder, nodes []*task.Task, prefix string) {
	for i, t := range nodes {
		last := i == len(nodes)-1
		conn, next := treeBranch, treePipe
		if last {
			conn, next = treeCorner, treeBlank
		}
		b.WriteString(r.paint(styleDim, prefix+conn) + r.Line(t) + "\n")
		r.children(b, t.Children, prefix+next)
	}
}

// Detail renders a single task with its fields followed by its subtree.
func (r *Renderer) Detail(t *task.Task) string {
	var b strings.Builder
	b.WriteString(r.paint(styleHeader, t.Title) + "\n")
	field := func(name, value string) {
		fmt.Fprintf(&b, "  %s %s\n", r.paint(styleDim, fmt.Sprintf("%-12s", name+":")), value)
	}
	field("ID", fmt.Sprintf("%d", t.ID))
	state := "open"
	if t.IsCompleted {
		state = "done"
	}
	field("Status", state)
	field("Priority", r.priority(t.Priority))
	if t.Description != nil {
		field("Description", *t.Description)
	}
	if t.DueDate != nil {
		field("Due", t.DueDate.Format("2006-01-02"))
	}
	if t.ParentID != nil {
		field("Parent", fmt.Sprintf("#%d", *t.ParentID))
	}
	field("Created", t.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	field("Updated", t.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
	if len(t.Children) > 0 {
		b.WriteString(r.paint(styleBold, "Subtasks") + "\n")
		r.children(&b, t.Children, "")
	}
	return b.String()
}

// Stats renders task counts.
func (r *Renderer) Stats(st task.Stats) string {
	return fmt.Sprintf("%s %d  %s %d  %s %d\n",
		r.paint(styleDim, "total"), st.Total,
		r.paint(styleDim, "done"), st.Completed,
		r.paint(styleDim, "roots"), st.Roots)
}
