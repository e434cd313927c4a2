// Package cli provides folder operation commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newFoldersCmd creates the 'folders' command group.
func newFoldersCmd() *cobra.Command {
	foldersCmd := &cobra.Command{
		Use:   "folders",
		Short: "Folder operations (create, rename, delete, tree)",
		Long:  `Commands for managing folders in the portal hierarchy.`,
	}

	foldersCmd.AddCommand(newFoldersCreateCmd())
	foldersCmd.AddCommand(newFoldersRenameCmd())
	foldersCmd.AddCommand(newFoldersDeleteCmd())
	foldersCmd.AddCommand(newFoldersTreeCmd())

	return foldersCmd
}

// newFoldersCreateCmd creates the 'folders create' command.
func newFoldersCreateCmd() *cobra.Command {
	var name string
	var parent string
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new folder",
		Long: `Create a new folder in the selected scope.

Example:
  # Create a folder at the scope root
  portal-fm --library L1 folders create --name "Projects"

  # Create a subfolder with a description
  portal-fm --library L1 folders create --name "Q3" --parent /Projects --description "Third quarter"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			if name == "" {
				return fmt.Errorf("--name is required")
			}

			ctx := GetContext()
			ws, err := newWorkspace(ctx)
			if err != nil {
				return err
			}

			parentID, err := ws.resolveFolderID(parent)
			if err != nil {
				return err
			}

			log.Info().Str("name", name).Str("parent", parent).Msg("Creating folder")

			folder, err := ws.mutator.CreateFolder(ctx, ws.scope, parentID, name, description)
			if err != nil {
				return fmt.Errorf("failed to create folder: %w", err)
			}

			fmt.Printf("Created folder %q (ID: %s)\n", folder.Name, folder.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Folder name (required)")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent folder path (default: scope root)")
	cmd.Flags().StringVar(&description, "description", "", "Folder description")

	return cmd
}

// newFoldersRenameCmd creates the 'folders rename' command.
func newFoldersRenameCmd() *cobra.Command {
	var id string
	var path string
	var name string

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			ctx := GetContext()
			ws, err := newWorkspace(ctx)
			if err != nil {
				return err
			}

			node, err := ws.resolveTarget(id, path)
			if err != nil {
				return err
			}
			if !node.IsFolder() {
				return fmt.Errorf("%q is a file; use 'files rename'", node.Path)
			}

			if err := ws.mutator.Rename(ctx, node.ID, name); err != nil {
				return fmt.Errorf("failed to rename folder: %w", err)
			}

			fmt.Printf("Renamed folder %s to %q\n", node.Path, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Folder ID")
	cmd.Flags().StringVar(&path, "path", "", "Folder path (alternative to --id)")
	cmd.Flags().StringVar(&name, "name", "", "New folder name (required)")

	return cmd
}

// newFoldersDeleteCmd creates the 'folders delete' command.
func newFoldersDeleteCmd() *cobra.Command {
	var id string
	var path string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a folder and everything beneath it",
		Long: `Delete a folder. The server removes all nested folders and files,
so this cannot be undone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			ws, err := newWorkspace(ctx)
			if err != nil {
				return err
			}

			node, err := ws.resolveTarget(id, path)
			if err != nil {
				return err
			}
			if !node.IsFolder() {
				return fmt.Errorf("%q is a file; use 'files delete'", node.Path)
			}

			if !yes {
				ok, err := promptConfirm(fmt.Sprintf("Delete folder %q and all of its contents?", node.Path))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := ws.mutator.Remove(ctx, node.ID); err != nil {
				return fmt.Errorf("failed to delete folder: %w", err)
			}

			fmt.Printf("Deleted folder %s\n", node.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Folder ID")
	cmd.Flags().StringVar(&path, "path", "", "Folder path (alternative to --id)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// newFoldersTreeCmd creates the 'folders tree' command.
func newFoldersTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the full hierarchy of the selected scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			ws, err := newWorkspace(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", ws.scope)
			printTree(os.Stdout, ws.cache.ChildrenOf(nil), 1)
			return nil
		},
	}

	return cmd
}
