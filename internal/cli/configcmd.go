package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkgfed/pkgfed/pkg/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the feed catalog",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

// configInitCommand writes a starter catalog.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter feeds.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				var err error
				path, err = config.DefaultPath()
				if err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				printWarning("config already exists at %s (use --force to overwrite)", path)
				return nil
			}

			cfg := config.Default()
			cfg.Feeds = []config.FeedConfig{
				{Name: "main", Kind: "remote", URL: "https://feeds.example.com"},
			}
			if err := cfg.Write(path); err != nil {
				return err
			}
			printSuccess("Wrote starter catalog")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

// configShowCommand prints the resolved catalog.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved feed catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			printInfo("target %s, cache %s, %d feeds", cfg.Target, cfg.Cache, len(cfg.Feeds))
			for _, src := range cfg.Sources() {
				location := src.URL
				if location == "" {
					location = src.Path
				}
				state := ""
				if !src.Enabled {
					state = " (disabled)"
				}
				queryable := ""
				if !src.SupportsDependencyQuery() {
					queryable = " [no dependency queries]"
				}
				fmt.Println("  " + StyleValue.Render(src.Name) + " " + StyleDim.Render(fmt.Sprintf("%s %s%s%s", src.Kind, location, state, queryable)))
			}
			return nil
		},
	}
}
