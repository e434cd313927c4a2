// Package cli provides the interactive browse session.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ambercrest/portal-fm/internal/nav"
)

// newBrowseCmd creates the 'browse' command.
func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the hierarchy interactively",
		Long: `Open an interactive session for walking the folder hierarchy.

Commands inside the session:
  ls              list the current folder
  cd NAME|PATH    enter a folder (relative name or absolute path)
  up              go up one level
  root            jump back to the scope root
  pwd             print the current path
  crumbs          print the breadcrumb trail
  refresh         reload the hierarchy from the server
  help            show this command list
  quit            leave the session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			ws, err := newWorkspace(ctx)
			if err != nil {
				return err
			}

			controller := nav.NewController(ws.cache, GetLogger())
			return runBrowseSession(ws, controller, os.Stdin, os.Stdout)
		},
	}

	return cmd
}

// runBrowseSession runs the interactive loop until quit or EOF.
func runBrowseSession(ws *workspace, controller *nav.Controller, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Browsing %s. Type 'help' for commands.\n", ws.scope)

	reader := bufio.NewReader(in)
	for {
		fmt.Fprintf(out, "%s> ", controller.CurrentPath())

		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		command, arg := splitCommand(line)
		switch command {
		case "":
			continue

		case "ls":
			view := controller.CurrentView()
			if len(view) == 0 {
				fmt.Fprintln(out, "(empty)")
				continue
			}
			for _, n := range view {
				if n.IsFolder() {
					fmt.Fprintf(out, "  %s/\n", n.Name)
				} else {
					fmt.Fprintf(out, "  %s  (%s)\n", n.Name, formatSize(n.Size))
				}
			}

		case "cd":
			if arg == "" {
				fmt.Fprintln(out, "usage: cd NAME|PATH")
				continue
			}
			if !controller.EnterFolder(joinBrowsePath(controller.CurrentPath(), arg)) {
				fmt.Fprintf(out, "no folder %q here\n", arg)
			}

		case "up":
			trail := controller.BreadcrumbTrail()
			if len(trail) < 2 {
				continue
			}
			controller.NavigateToBreadcrumb(trail[len(trail)-2].Path)

		case "root":
			controller.Reset()

		case "pwd":
			fmt.Fprintln(out, controller.CurrentPath())

		case "crumbs":
			for _, crumb := range controller.BreadcrumbTrail() {
				fmt.Fprintf(out, "  %s  (%s)\n", crumb.Name, crumb.Path)
			}

		case "refresh":
			if err := ws.cache.Rebuild(GetContext(), ws.scope); err != nil {
				fmt.Fprintf(out, "reload failed: %v\n", err)
				continue
			}
			// The current folder may be gone after a reload
			if !controller.AtRoot() {
				if _, ok := ws.cache.FindByPath(controller.CurrentPath()); !ok {
					fmt.Fprintf(out, "%s no longer exists, returning to root\n", controller.CurrentPath())
					controller.Reset()
				}
			}
			fmt.Fprintln(out, "reloaded")

		case "help":
			fmt.Fprintln(out, "commands: ls, cd NAME|PATH, up, root, pwd, crumbs, refresh, help, quit")

		case "quit", "exit", "q":
			return nil

		default:
			fmt.Fprintf(out, "unknown command %q (try 'help')\n", command)
		}
	}
}

// splitCommand separates an input line into a command word and its argument.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

// joinBrowsePath resolves a cd argument against the current path. Absolute
// arguments are used as-is.
func joinBrowsePath(current, arg string) string {
	if strings.HasPrefix(arg, "/") {
		return arg
	}
	if current == "/" {
		return "/" + arg
	}
	return current + "/" + arg
}
