// Package cli provides file operation commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ambercrest/portal-fm/internal/progress"
	"github.com/ambercrest/portal-fm/internal/upload"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "File operations (list, upload, rename, move, delete)",
		Long:  `Commands for managing files in the portal hierarchy.`,
	}

	filesCmd.AddCommand(newFilesListCmd())
	filesCmd.AddCommand(newFilesUploadCmd())
	filesCmd.AddCommand(newFilesRenameCmd())
	filesCmd.AddCommand(newFilesMoveCmd())
	filesCmd.AddCommand(newFilesDeleteCmd())

	return filesCmd
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the contents of a folder",
		Long: `List the immediate children of a folder. With no --folder the
scope root is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			ws, err := newWorkspace(ctx)
			if err != nil {
				return err
			}

			folderID, err := ws.resolveFolderID(folder)
			if err != nil {
				return err
			}

			children := ws.cache.ChildrenOf(folderID)
			if len(children) == 0 {
				fmt.Println("(empty)")
				return nil
			}
			printTree(os.Stdout, children, 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder path to list (default: scope root)")

	return cmd
}

// newFilesUploadCmd creates the 'files upload' command.
func newFilesUploadCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload one or more local files",
		Long: `Upload local files into a portal folder. Files above the chunk
threshold are sent through a chunked upload session; smaller files go up in
a single request. Files are uploaded one after another, and a failure in one
file does not stop the rest of the batch.

Example:
  portal-fm --library L1 files upload report.pdf data.csv --to /Projects/Q3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()
			ctx := GetContext()

			ws, err := newWorkspace(ctx)
			if err != nil {
				return err
			}

			folderID, err := ws.resolveFolderID(to)
			if err != nil {
				return err
			}

			var files []upload.PendingFile
			for _, arg := range args {
				pf, err := upload.FromPath(arg)
				if err != nil {
					return fmt.Errorf("cannot upload %s: %w", arg, err)
				}
				files = append(files, pf)
			}

			coord := upload.NewCoordinator(ws.client, log)

			var outcomes []upload.Outcome
			if len(files) == 1 {
				// A lone file gets a byte-level bar instead of the
				// batch display.
				rep := progress.NewCLIProgress()
				rep.Start(files[0].Size, "Uploading "+files[0].Name)
				_, outcomes = coord.Upload(ctx, ws.scope, folderID, files,
					reporterProgress(rep, files[0].Size))
				if outcomes[0].Err != nil {
					rep.Error(outcomes[0].Err)
				} else {
					rep.Finish()
				}
			} else {
				ui := progress.NewBatchUI(len(files))
				bars := make([]*progress.FileBar, len(files))
				for i, f := range files {
					bars[i] = ui.AddFileBar(i, f.Name, f.Size)
				}

				// Route log lines above the active bars while they render
				prevOut := log.Output()
				log.SetOutput(ui.Writer())

				_, outcomes = coord.Upload(ctx, ws.scope, folderID, files, func(index int, name string, percent int) {
					bars[index].SetPercent(percent)
				})

				for i, o := range outcomes {
					bars[i].Complete(o.Err)
				}
				ui.Wait()
				log.SetOutput(prevOut)
			}

			failed := 0
			for _, o := range outcomes {
				if o.Status == upload.StatusError {
					failed++
					log.Error().Str("file", o.Name).Err(o.Err).Msg("Upload failed")
				}
			}

			if upload.AnySuccess(outcomes) {
				if err := ws.cache.Rebuild(ctx, ws.scope); err != nil {
					return fmt.Errorf("uploads finished but hierarchy reload failed: %w", err)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(outcomes))
			}
			fmt.Printf("Uploaded %d file(s)\n", len(outcomes))
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination folder path (default: scope root)")

	return cmd
}

// reporterProgress adapts a byte-level Reporter to the coordinator's percent
// callbacks for a single-file batch.
func reporterProgress(rep progress.Reporter, size int64) upload.ProgressFunc {
	return func(index int, name string, percent int) {
		rep.Update(size * int64(percent) / 100)
	}
}

// newFilesRenameCmd creates the 'files rename' command.
func newFilesRenameCmd() *cobra.Command {
	var id string
	var path string
	var name string

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename a file",
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
			if node.IsFolder() {
				return fmt.Errorf("%q is a folder; use 'folders rename'", node.Path)
			}

			if err := ws.mutator.Rename(ctx, node.ID, name); err != nil {
				return fmt.Errorf("failed to rename file: %w", err)
			}

			fmt.Printf("Renamed file %s to %q\n", node.Path, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "File ID")
	cmd.Flags().StringVar(&path, "path", "", "File path (alternative to --id)")
	cmd.Flags().StringVar(&name, "name", "", "New file name (required)")

	return cmd
}

// newFilesMoveCmd creates the 'files move' command.
func newFilesMoveCmd() *cobra.Command {
	var id string
	var path string
	var to string

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a file to another folder",
		Long: `Move a file to a different folder within the same scope. With no
--to the file moves to the scope root.`,
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
			if node.IsFolder() {
				return fmt.Errorf("%q is a folder; folders cannot be moved", node.Path)
			}

			targetID, err := ws.resolveFolderID(to)
			if err != nil {
				return err
			}

			if err := ws.mutator.Move(ctx, node.ID, targetID); err != nil {
				return fmt.Errorf("failed to move file: %w", err)
			}

			dest := to
			if dest == "" {
				dest = "/"
			}
			fmt.Printf("Moved %s to %s\n", node.Path, dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "File ID")
	cmd.Flags().StringVar(&path, "path", "", "File path (alternative to --id)")
	cmd.Flags().StringVar(&to, "to", "", "Destination folder path (default: scope root)")

	return cmd
}

// newFilesDeleteCmd creates the 'files delete' command.
func newFilesDeleteCmd() *cobra.Command {
	var id string
	var path string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a file",
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
			if node.IsFolder() {
				return fmt.Errorf("%q is a folder; use 'folders delete'", node.Path)
			}

			if !yes {
				ok, err := promptConfirm(fmt.Sprintf("Delete file %q?", node.Path))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := ws.mutator.Remove(ctx, node.ID); err != nil {
				return fmt.Errorf("failed to delete file: %w", err)
			}

			fmt.Printf("Deleted file %s\n", node.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "File ID")
	cmd.Flags().StringVar(&path, "path", "", "File path (alternative to --id)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
