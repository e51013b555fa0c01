package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"showcatalog/internal/config"
	"showcatalog/internal/domain/genre"
)

// Version is set during build via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	config.InitDefaultLogger(Version)

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "showcatalog",
		Short: "Genre-filtered, sorted and cached show catalog API",
		Long: `showcatalog serves browsable and searchable show listings on top of an
upstream catalog that only offers a full listing and a free-text search.`,
		SilenceUsage: true,
	}

	rootCmd.Version = Version

	rootCmd.AddCommand(RunServeCommand())
	rootCmd.AddCommand(RunVersionCommand(Version))
	rootCmd.AddCommand(RunGenerateConfigCommand())
	rootCmd.AddCommand(RunGenresCommand())

	return rootCmd
}

func RunServeCommand() *cobra.Command {
	var (
		configDir string
		logPath   string
	)

	command := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
	}

	command.Flags().StringVar(&configDir, "config-dir", "", "config directory or file path (default is OS-specific: ~/.config/showcatalog/)")
	command.Flags().StringVar(&logPath, "log-path", "", "log file path (default is stderr)")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New(configDir, Version)
		if err != nil {
			return errors.Wrap(err, "could not load configuration")
		}
		if logPath != "" {
			cfg.Config.LogPath = logPath
		}
		cfg.ApplyLogConfig()

		app, err := NewApplication(cfg)
		if err != nil {
			return errors.Wrap(err, "could not initialize application")
		}
		return app.Run()
	}

	return command
}

func RunVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of showcatalog",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}

func RunGenerateConfigCommand() *cobra.Command {
	var configDir string

	command := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate a default configuration file",
		Long: `Generate a default configuration file without starting the server.

If no --config-dir is specified, uses the OS-specific default location:
- Linux/macOS: ~/.config/showcatalog/config.toml
- Windows: %APPDATA%\showcatalog\config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := filepath.Join(config.GetDefaultConfigDir(), "config.toml")
			if configDir != "" {
				if strings.HasSuffix(strings.ToLower(configDir), ".toml") {
					configPath = configDir
				} else {
					configPath = filepath.Join(configDir, "config.toml")
				}
			}

			if _, err := os.Stat(configPath); err == nil {
				cmd.Printf("Configuration file already exists at: %s\n", configPath)
				cmd.Println("Skipping generation to avoid overwriting existing configuration.")
				return nil
			}

			if err := config.WriteDefaultConfig(configPath); err != nil {
				return errors.Wrap(err, "failed to create configuration file")
			}

			cmd.Printf("Configuration file created successfully at: %s\n", configPath)
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "", "config directory or file path (defaults to OS-specific location)")

	return command
}

func RunGenresCommand() *cobra.Command {
	var dashboard bool

	command := &cobra.Command{
		Use:   "genres",
		Short: "List the supported genres",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := genre.Default()
			if !dashboard {
				for _, name := range registry.Names() {
					cmd.Println(name)
				}
				return nil
			}
			for _, d := range registry.Dashboard() {
				cmd.Printf("%-18s %3d\n", d.Name, d.Popularity)
			}
			return nil
		},
	}

	command.Flags().BoolVar(&dashboard, "dashboard", false, "only featured genres, most popular first")

	return command
}
