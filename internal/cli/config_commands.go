// Package cli provides configuration management commands.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ambercrest/portal-fm/internal/api"
	"github.com/ambercrest/portal-fm/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage portal-fm configuration",
		Long: `Configuration management commands.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test the portal connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath returns the effective config file path honoring --config.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup. Prompts for the portal URL, API
token, and tenant branch, then writes the config file.

Use --force to overwrite an existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}

			existing, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to read existing config: %w", err)
			}
			if existing.PortalURL != "" && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			reader := bufio.NewReader(os.Stdin)
			fmt.Println("portal-fm configuration")
			fmt.Println()

			cfg := config.New()
			if cfg.PortalURL, err = promptLine(reader, "Portal URL", existing.PortalURL); err != nil {
				return err
			}
			if cfg.APIToken, err = promptLine(reader, "API token", existing.APIToken); err != nil {
				return err
			}
			if cfg.Branch, err = promptLine(reader, "Branch (optional)", existing.Branch); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Printf("Configuration saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Portal URL: %s\n", cfg.PortalURL)
			fmt.Printf("API token:  %s\n", maskToken(cfg.APIToken))
			if cfg.Branch != "" {
				fmt.Printf("Branch:     %s\n", cfg.Branch)
			}
			return nil
		},
	}
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the portal connection",
		Long: `Load the configuration, connect to the portal, and list the
hierarchy of the selected scope. Requires a scope flag.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			scope, err := resolveScope()
			if err != nil {
				return err
			}

			client, err := api.NewClient(cfg)
			if err != nil {
				return err
			}

			listing, err := client.ListScope(GetContext(), scope)
			if err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}

			fmt.Printf("OK: %s has %d folder(s) and %d file(s)\n",
				scope, len(listing.Folders), len(listing.Files))
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

// maskToken hides all but the tail of a credential for display.
func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
