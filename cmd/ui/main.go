package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"treetodo/internal/config"
	"treetodo/pkg/client"
	"treetodo/pkg/task"
)

const requestTimeout = 10 * time.Second

var (
	theme *material.Theme

	colorDim    = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	colorError  = color.NRGBA{R: 0xFF, G: 0x50, B: 0x50, A: 0xFF}
	colorDelete = color.NRGBA{R: 0xC0, G: 0x30, B: 0x30, A: 0xFF}
	colorClear  = color.NRGBA{A: 0}
)

// priority filter choices; "" means all
var priorityFilters = []string{"", string(task.Low), string(task.Medium), string(task.High)}

// rowWidgets is the persistent widget state of one task row.
type rowWidgets struct {
	expand  widget.Clickable
	done    widget.Bool
	addSub  widget.Clickable
	edit    widget.Clickable
	del     widget.Clickable
	confirm widget.Clickable
	cancel  widget.Clickable
}

type UI struct {
	api *client.Client
	win *app.Window

	// mu guards everything below; fetches and mutations run off the UI
	// goroutine.
	mu      sync.Mutex
	tasks   []*task.Task
	banner  client.Banner
	loading bool

	tree *client.TreeState
	rows map[int64]*rowWidgets
	list widget.List

	// Filters
	showCompleted widget.Bool
	priority      string
	priorityBtns  []widget.Clickable
	expandAllBtn  widget.Clickable
	collapseBtn   widget.Clickable

	// New root task
	newTitle  widget.Editor
	createBtn widget.Clickable

	// Inline edit
	editing     int64
	editSort    int
	editPrio    task.Priority
	editTitle   widget.Editor
	editDesc    widget.Editor
	editDue     widget.Editor
	editPrioBtn widget.Clickable
	saveBtn     widget.Clickable
	cancelBtn   widget.Clickable

	// Sub-task form
	addingTo  int64
	subTitle  widget.Editor
	subAddBtn widget.Clickable
	subCancel widget.Clickable

	confirmDelete int64
}

func main() {
	api, err := client.New(config.APIBase())
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	theme = material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.Palette.Bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF}
	theme.Palette.Fg = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	theme.Palette.ContrastBg = color.NRGBA{R: 0x30, G: 0x60, B: 0xA0, A: 0xFF}
	theme.Palette.ContrastFg = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	ui := &UI{
		api:          api,
		win:          new(app.Window),
		tree:         client.NewTreeState(),
		rows:         make(map[int64]*rowWidgets),
		priorityBtns: make([]widget.Clickable, len(priorityFilters)),
	}
	ui.showCompleted.Value = true
	ui.list.Axis = layout.Vertical
	ui.newTitle.SingleLine = true
	ui.editTitle.SingleLine = true
	ui.editDue.SingleLine = true
	ui.subTitle.SingleLine = true

	go ui.refresh()
	go ui.watch()

	go func() {
		ui.win.Option(app.Title("TreeTodo"))
		ui.win.Option(app.Size(unit.Dp(1000), unit.Dp(760)))
		if err := ui.run(); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func (ui *UI) run() error {
	var ops op.Ops
	for {
		switch e := ui.win.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			ui.mu.Lock()
			ui.handleEvents(gtx)
			ui.layout(gtx)
			ui.mu.Unlock()
			e.Frame(gtx.Ops)
		}
	}
}

func (ui *UI) row(id int64) *rowWidgets {
	rw, ok := ui.rows[id]
	if !ok {
		rw = &rowWidgets{}
		ui.rows[id] = rw
	}
	return rw
}

// handleEvents runs with ui.mu held.
func (ui *UI) handleEvents(gtx layout.Context) {
	if ui.showCompleted.Update(gtx) {
		go ui.refresh()
	}
	for i := range ui.priorityBtns {
		if ui.priorityBtns[i].Clicked(gtx) {
			ui.priority = priorityFilters[i]
			go ui.refresh()
		}
	}
	if ui.expandAllBtn.Clicked(gtx) {
		ui.tree.ExpandAll(client.IDs(ui.tasks))
	}
	if ui.collapseBtn.Clicked(gtx) {
		ui.tree.CollapseAll()
	}
	if ui.createBtn.Clicked(gtx) {
		in, err := client.Form{Title: ui.newTitle.Text()}.CreateInput(nil)
		if err != nil {
			ui.banner.Rejected(err)
		} else {
			ui.newTitle.SetText("")
			go ui.mutate("create task", func(ctx context.Context) error {
				_, err := ui.api.Create(ctx, in)
				return err
			})
		}
	}

	for _, r := range ui.tree.Visible(ui.tasks) {
		t := r.Task
		rw := ui.row(t.ID)
		if rw.expand.Clicked(gtx) {
			ui.tree.Toggle(t.ID)
		}
		rw.done.Value = t.IsCompleted
		if rw.done.Update(gtx) {
			id := t.ID
			go ui.mutate("toggle task", func(ctx context.Context) error {
				_, err := ui.api.Toggle(ctx, id)
				return err
			})
		}
		if rw.addSub.Clicked(gtx) {
			ui.addingTo = t.ID
			ui.editing = 0
			ui.subTitle.SetText("")
			ui.tree.Expand(t.ID)
		}
		if rw.edit.Clicked(gtx) {
			ui.startEdit(t)
		}
		if rw.del.Clicked(gtx) {
			ui.confirmDelete = t.ID
		}
		if rw.cancel.Clicked(gtx) {
			ui.confirmDelete = 0
		}
		if rw.confirm.Clicked(gtx) {
			id := t.ID
			ui.confirmDelete = 0
			go ui.mutate("delete task", func(ctx context.Context) error {
				return ui.api.Delete(ctx, id)
			})
		}
	}

	if ui.editing != 0 {
		if ui.editPrioBtn.Clicked(gtx) {
			ui.editPrio = client.NextPriority(ui.editPrio)
		}
		if ui.cancelBtn.Clicked(gtx) {
			ui.editing = 0
		}
		if ui.saveBtn.Clicked(gtx) {
			form := client.Form{
				Title:       ui.editTitle.Text(),
				Description: ui.editDesc.Text(),
				Priority:    ui.editPrio,
				DueDate:     ui.editDue.Text(),
			}
			in, err := form.UpdateInput(ui.editSort)
			if err != nil {
				ui.banner.Rejected(err)
			} else {
				id := ui.editing
				ui.editing = 0
				go ui.mutate("update task", func(ctx context.Context) error {
					_, err := ui.api.Update(ctx, id, in)
					return err
				})
			}
		}
	}

	if ui.addingTo != 0 {
		if ui.subCancel.Clicked(gtx) {
			ui.addingTo = 0
		}
		if ui.subAddBtn.Clicked(gtx) {
			parent := ui.addingTo
			in, err := client.Form{Title: ui.subTitle.Text()}.CreateInput(&parent)
			if err != nil {
				ui.banner.Rejected(err)
			} else {
				ui.addingTo = 0
				go ui.mutate("create task", func(ctx context.Context) error {
					_, err := ui.api.Create(ctx, in)
					return err
				})
			}
		}
	}
}

func (ui *UI) startEdit(t *task.Task) {
	f := client.FormFor(t)
	ui.editing = t.ID
	ui.addingTo = 0
	ui.editSort = t.SortOrder
	ui.editPrio = f.Priority
	ui.editTitle.SetText(f.Title)
	ui.editDesc.SetText(f.Description)
	ui.editDue.SetText(f.DueDate)
}

func (ui *UI) layout(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Top: unit.Dp(16), Right: unit.Dp(16), Bottom: unit.Dp(16), Left: unit.Dp(16)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return material.H5(theme, "Tasks").Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(ui.layoutFilters),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(ui.layoutNewTask),
			layout.Rigid(ui.layoutStatus),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Flexed(1, ui.layoutTree),
		)
	})
}

func (ui *UI) layoutFilters(gtx layout.Context) layout.Dimensions {
	children := []layout.FlexChild{
		layout.Rigid(material.CheckBox(theme, &ui.showCompleted, "Show completed").Layout),
		layout.Rigid(layout.Spacer{Width: unit.Dp(16)}.Layout),
	}
	for i, p := range priorityFilters {
		label := p
		if label == "" {
			label = "All"
		}
		children = append(children,
			layout.Rigid(filterBtn(&ui.priorityBtns[i], label, ui.priority == p)),
			layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		)
	}
	children = append(children,
		layout.Rigid(layout.Spacer{Width: unit.Dp(16)}.Layout),
		layout.Rigid(material.Button(theme, &ui.expandAllBtn, "Expand all").Layout),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(material.Button(theme, &ui.collapseBtn, "Collapse all").Layout),
	)
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx, children...)
}

func filterBtn(btn *widget.Clickable, label string, active bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		b := material.Button(theme, btn, label)
		if active {
			b.Background = theme.Palette.ContrastBg
		} else {
			b.Background = colorClear
		}
		b.Color = theme.Palette.Fg
		return b.Layout(gtx)
	}
}

func (ui *UI) layoutNewTask(gtx layout.Context) layout.Dimensions {
	return layout.Flex{}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return material.Editor(theme, &ui.newTitle, "New task title...").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(material.Button(theme, &ui.createBtn, "Add Task").Layout),
	)
}

func (ui *UI) layoutStatus(gtx layout.Context) layout.Dimensions {
	switch msg := ui.banner.Text(); {
	case msg != "":
		label := material.Body2(theme, msg)
		label.Color = colorError
		return layout.Inset{Top: unit.Dp(8)}.Layout(gtx, label.Layout)
	case ui.loading:
		label := material.Caption(theme, "Loading...")
		label.Color = colorDim
		return layout.Inset{Top: unit.Dp(8)}.Layout(gtx, label.Layout)
	}
	return layout.Dimensions{}
}

func (ui *UI) layoutTree(gtx layout.Context) layout.Dimensions {
	rows := ui.tree.Visible(ui.tasks)
	if len(rows) == 0 && !ui.loading {
		label := material.Body1(theme, "No tasks yet.")
		label.Color = colorDim
		return label.Layout(gtx)
	}
	return material.List(theme, &ui.list).Layout(gtx, len(rows), func(gtx layout.Context, i int) layout.Dimensions {
		r := rows[i]
		return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return ui.layoutRow(gtx, r)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					indent := unit.Dp(float32(r.Depth*24 + 56))
					switch r.Task.ID {
					case ui.editing:
						return layout.Inset{Left: indent, Top: unit.Dp(4)}.Layout(gtx, ui.layoutEditForm)
					case ui.addingTo:
						return layout.Inset{Left: indent + 24, Top: unit.Dp(4)}.Layout(gtx, ui.layoutSubForm)
					}
					return layout.Dimensions{}
				}),
			)
		})
	})
}

func (ui *UI) layoutRow(gtx layout.Context, r client.Row) layout.Dimensions {
	t := r.Task
	rw := ui.row(t.ID)
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(layout.Spacer{Width: unit.Dp(float32(r.Depth * 24))}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Dp(unit.Dp(32))
			if !r.HasChildren {
				return layout.Dimensions{Size: gtx.Constraints.Min}
			}
			arrow := "▶"
			if r.Expanded {
				arrow = "▼"
			}
			b := material.Button(theme, &rw.expand, arrow)
			b.Background = colorClear
			b.Color = theme.Palette.Fg
			b.Inset = layout.UniformInset(unit.Dp(4))
			return b.Layout(gtx)
		}),
		layout.Rigid(material.CheckBox(theme, &rw.done, "").Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					label := material.Body1(theme, t.Title)
					if t.IsCompleted {
						label.Color = colorDim
					} else {
						label.Font.Weight = font.Bold
					}
					return label.Layout(gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					detail := ""
					if t.Description != nil {
						detail = *t.Description
					}
					if t.DueDate != nil {
						if detail != "" {
							detail += "  "
						}
						detail += "due " + t.DueDate.Format(client.DateLayout)
					}
					if detail == "" {
						return layout.Dimensions{}
					}
					label := material.Caption(theme, detail)
					label.Color = colorDim
					return label.Layout(gtx)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			label := material.Caption(theme, fmt.Sprintf("[%s]", t.Priority))
			label.Color = priorityColor(t.Priority)
			return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, label.Layout)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if ui.confirmDelete == t.ID {
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(material.Body2(theme, "Delete with all subtasks?").Layout),
					layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						btn := material.Button(theme, &rw.confirm, "Delete")
						btn.Background = colorDelete
						return btn.Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
					layout.Rigid(material.Button(theme, &rw.cancel, "Cancel").Layout),
				)
			}
			return layout.Flex{}.Layout(gtx,
				layout.Rigid(material.Button(theme, &rw.addSub, "+ Sub").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
				layout.Rigid(material.Button(theme, &rw.edit, "Edit").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					btn := material.Button(theme, &rw.del, "Del")
					btn.Background = colorDelete
					return btn.Layout(gtx)
				}),
			)
		}),
	)
}

func priorityColor(p task.Priority) color.NRGBA {
	switch p {
	case task.High:
		return color.NRGBA{R: 0xFF, G: 0x40, B: 0x40, A: 0xFF}
	case task.Medium:
		return color.NRGBA{R: 0xFF, G: 0xA0, B: 0x00, A: 0xFF}
	default:
		return color.NRGBA{R: 0x00, G: 0xA0, B: 0xFF, A: 0xFF}
	}
}

func (ui *UI) layoutEditForm(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(material.Editor(theme, &ui.editTitle, "Title").Layout),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Rigid(material.Editor(theme, &ui.editDesc, "Description (optional)").Layout),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, material.Editor(theme, &ui.editDue, "Due date (YYYY-MM-DD)").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(material.Button(theme, &ui.editPrioBtn, "Priority: "+string(ui.editPrio.OrDefault())).Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(material.Button(theme, &ui.saveBtn, "Save").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
				layout.Rigid(material.Button(theme, &ui.cancelBtn, "Cancel").Layout),
			)
		}),
	)
}

func (ui *UI) layoutSubForm(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, material.Editor(theme, &ui.subTitle, "Sub-task title...").Layout),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(material.Button(theme, &ui.subAddBtn, "Add").Layout),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(material.Button(theme, &ui.subCancel, "Cancel").Layout),
	)
}

// Data fetching

func (ui *UI) refresh() {
	ui.mu.Lock()
	includeCompleted := ui.showCompleted.Value
	priority := ui.priority
	ui.loading = true
	ui.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	tasks, err := ui.api.List(ctx, includeCompleted, priority)

	ui.mu.Lock()
	ui.loading = false
	ui.banner.Fetched(err)
	if err != nil {
		log.Printf("fetch tasks: %v", err)
	} else {
		ui.tasks = tasks
		ui.tree.Retain(tasks)
		client.Prune(ui.rows, tasks)
	}
	ui.mu.Unlock()
	ui.win.Invalidate()
}

// mutate runs one API call, shows its error if any and reloads the tree.
func (ui *UI) mutate(action string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	err := fn(ctx)

	if err != nil {
		log.Printf("%s: %v", action, err)
	}
	ui.mu.Lock()
	ui.banner.Acted(err, action)
	ui.mu.Unlock()
	ui.refresh()
}

// watch reloads the tree whenever another client changes it, reconnecting
// after stream failures.
func (ui *UI) watch() {
	for {
		err := ui.api.Watch(context.Background(), func(task.Change) {
			ui.refresh()
		})
		if err != nil {
			log.Printf("watch changes: %v", err)
		}
		time.Sleep(3 * time.Second)
	}
}
