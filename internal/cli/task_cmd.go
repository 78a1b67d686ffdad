package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"treetodo/pkg/client"
	"treetodo/pkg/task"
)

func newListCmd(app *App) *cobra.Command {
	var includeCompleted bool
	var priority, format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List root tasks with their subtasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.client.List(context.Background(), includeCompleted, priority)
			if err != nil {
				return userError(err, "fetch tasks")
			}
			out := cmd.OutOrStdout()
			if format == "json" {
				return printJSON(out, tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			fmt.Fprint(out, NewRenderer(app.Color).Forest(tasks))
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeCompleted, "include-completed", true, "Include completed root tasks")
	cmd.Flags().StringVar(&priority, "priority", "", "Only root tasks with this priority (Low, Medium, High)")
	cmd.Flags().StringVar(&format, "format", "tree", "Output format: tree or json")

	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a task and its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := app.client.Get(context.Background(), id)
			if err != nil {
				return userError(err, "fetch task")
			}
			if format == "json" {
				return printJSON(cmd.OutOrStdout(), t)
			}
			fmt.Fprint(cmd.OutOrStdout(), NewRenderer(app.Color).Detail(t))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "tree", "Output format: tree or json")

	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var form client.Form
	var priority string
	var parent int64
	var sortOrder int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if priority != "" {
				p, ok := task.ParsePriority(priority)
				if !ok {
					return fmt.Errorf("invalid priority %q", priority)
				}
				form.Priority = p
			}
			var parentID *int64
			if cmd.Flags().Changed("parent") {
				parentID = &parent
			}
			in, err := form.CreateInput(parentID)
			if err != nil {
				return err
			}
			in.SortOrder = sortOrder

			t, err := app.client.Create(context.Background(), in)
			if err != nil {
				return userError(err, "create task")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d %s\n", t.ID, t.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&form.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (Low, Medium, High)")
	cmd.Flags().StringVar(&form.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&parent, "parent", 0, "Parent task ID")
	cmd.Flags().IntVar(&sortOrder, "sort", 0, "Sort order among siblings")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var title, description, priority, due string
	var sortOrder int

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task's title, description, priority, due date or sort order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := app.client.Get(ctx, id)
			if err != nil {
				return userError(err, "fetch task")
			}

			form := client.FormFor(current)
			flags := cmd.Flags()
			if flags.Changed("title") {
				form.Title = title
			}
			if flags.Changed("description") {
				form.Description = description
			}
			if flags.Changed("priority") {
				p, ok := task.ParsePriority(priority)
				if !ok {
					return fmt.Errorf("invalid priority %q", priority)
				}
				form.Priority = p
			}
			if flags.Changed("due") {
				form.DueDate = due
			}
			order := current.SortOrder
			if flags.Changed("sort") {
				order = sortOrder
			}

			in, err := form.UpdateInput(order)
			if err != nil {
				return err
			}
			t, err := app.client.Update(ctx, id, in)
			if err != nil {
				return userError(err, "update task")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d %s\n", t.ID, t.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description (empty clears it)")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority (Low, Medium, High)")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD, empty clears it)")
	cmd.Flags().IntVar(&sortOrder, "sort", 0, "New sort order")

	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a task between open and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := app.client.Toggle(context.Background(), id)
			if err != nil {
				return userError(err, "toggle task")
			}
			state := "open"
			if t.IsCompleted {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d is now %s\n", t.ID, state)
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task and all of its subtasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.client.Delete(context.Background(), id); err != nil {
				return userError(err, "delete task")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.client.Stats(context.Background())
			if err != nil {
				return userError(err, "fetch status")
			}
			fmt.Fprint(cmd.OutOrStdout(), NewRenderer(app.Color).Stats(st))
			return nil
		},
	}
}
