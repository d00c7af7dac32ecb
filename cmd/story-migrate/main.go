// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the story-migrate CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the story-migrate CLI.
var rootCmd = &cobra.Command{
	Use:   "story-migrate",
	Short: "Convert a user-story plan document into tracker task files",
	Long: `story-migrate converts a markdown plan of epics and user stories into
individual task files with front-matter metadata, one file per epic and
per story, ready for ingestion by a Backlog.md-style task tracker.

Run migrate to regenerate the task files, parse for a dry run of the
document structure, and index to build a searchable SQLite index over
the generated backlog.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./story-migrate.yaml or ~/.config/story-migrate/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("story-migrate")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "story-migrate"))
		}
	}

	viper.SetEnvPrefix("STORY_MIGRATE")
	viper.AutomaticEnv()

	viper.SetDefault("source_file", "plans/user_stories.md")
	viper.SetDefault("tasks_dir", filepath.Join("backlog", "tasks"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
