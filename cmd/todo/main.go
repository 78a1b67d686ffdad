package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"treetodo/internal/cli"
	"treetodo/internal/config"
)

func main() {
	app := &cli.App{
		API:   config.APIBase(),
		Color: useColor(),
	}
	if err := cli.NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func useColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
