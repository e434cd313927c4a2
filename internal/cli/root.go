// Package cli provides the command-line interface for portal-fm.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ambercrest/portal-fm/internal/logging"
)

var (
	// Global flags
	cfgFile   string
	portalURL string
	apiToken  string
	branch    string
	verbose   bool

	// Scope selection flags, exactly one per invocation
	libraryID   string
	userFilesID string
	publicDocs  bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// Version information - set by main package at startup
var (
	Version   = "v1.2.0-dev"
	BuildTime = "unknown"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portal-fm",
		Short: "File and folder manager for the intranet portal",
		Long: `portal-fm ` + Version + ` - Built: ` + BuildTime + `
Manage files and folders in the portal's document hierarchy.

Every command operates on one hierarchy scope, selected with
--library, --user-files, or --public. Mutations reload the full
hierarchy afterwards so listings always reflect the server state.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultLogger()
			if verbose {
				logging.SetGlobalLevel(-1) // zerolog.DebugLevel
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&portalURL, "portal-url", "", "Portal base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "API token (overrides config)")
	rootCmd.PersistentFlags().StringVar(&branch, "branch", "", "Tenant branch (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.PersistentFlags().StringVar(&libraryID, "library", "", "Operate on the library with this ID")
	rootCmd.PersistentFlags().StringVar(&userFilesID, "user-files", "", "Operate on the personal files of this user ID")
	rootCmd.PersistentFlags().BoolVar(&publicDocs, "public", false, "Operate on the public documents area")

	rootCmd.Version = Version + " (" + BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling operations...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return logger
}

// GetContext returns the global CLI context. It is cancelled when the user
// presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}
