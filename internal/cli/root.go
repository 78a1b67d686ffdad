package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"treetodo/pkg/client"
)

// App holds what every command needs: where the API lives and how to
// print.
type App struct {
	API   string
	Color bool

	client *client.Client
}

// NewRootCmd creates the top-level "todo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "todo",
		Short:         "Manage a tree of tasks through the task API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(app.API)
			if err != nil {
				return err
			}
			app.client = c
			return nil
		},
	}
	root.PersistentFlags().StringVar(&app.API, "api", app.API, "Task API base URL")

	root.AddCommand(
		newListCmd(app),
		newShowCmd(app),
		newAddCmd(app),
		newEditCmd(app),
		newToggleCmd(app),
		newRemoveCmd(app),
		newStatusCmd(app),
	)

	return root
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

// userError turns a client error into the message shown to the user.
func userError(err error, action string) error {
	return errors.New(client.Message(err, action))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
