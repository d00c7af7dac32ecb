// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/story-migrate/internal/emit"
	"github.com/pdiddy/story-migrate/internal/parse"
	"github.com/pdiddy/story-migrate/pkg/types"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Parse the plan document and regenerate all task files",
	Long: `Migrate parses the plan document into epics and stories, assigns
sequential task identifiers, and writes one task file per epic and per
story into the tasks directory.

Every existing task-*.md file in the tasks directory is removed before
regeneration: the emitter owns all files matching that pattern. Rerunning
on an unchanged document reproduces the same file set.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := migrationConfig(cmd)

	epics, err := parse.ParseFile(cfg.SourceFile)
	if err != nil {
		return err
	}

	emitter := emit.NewEmitter(cfg)
	if _, err := emitter.EmitAll(epics, os.Stdout); err != nil {
		return err
	}
	return nil
}

// migrationConfig resolves the pipeline settings: flags win over config
// file values, which win over the built-in defaults.
func migrationConfig(cmd *cobra.Command) types.MigrationConfig {
	source, _ := cmd.Flags().GetString("source")
	if source == "" {
		source = viper.GetString("source_file")
	}
	tasksDir, _ := cmd.Flags().GetString("tasks-dir")
	if tasksDir == "" {
		tasksDir = viper.GetString("tasks_dir")
	}

	return types.MigrationConfig{
		SourceFile: source,
		TasksDir:   tasksDir,
	}
}

func init() {
	migrateCmd.Flags().String("source", "", "plan document to parse (default from config: plans/user_stories.md)")
	migrateCmd.Flags().String("tasks-dir", "", "destination directory for task files (default from config: backlog/tasks)")

	rootCmd.AddCommand(migrateCmd)
}
