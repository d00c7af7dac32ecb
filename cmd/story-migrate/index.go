// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/story-migrate/internal/index"
	"github.com/pdiddy/story-migrate/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the task index (store, retrieve, export)",
	Long: `Index manages a local SQLite index built from the generated task files.
Use subcommands to ingest the files, query them, or export the index.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest generated task files into the index",
	Long: `Store scans the tasks directory for task-*.md files, parses their
front matter, and ingests them into a SQLite database with FTS5
indexing. Unchanged files are skipped on subsequent runs.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d task file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var indexRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the task index with full-text search and filters",
	Long: `Retrieve searches the task index using FTS5 full-text search over
titles and bodies, structured filters (status, label, parent), or a
combination of both.

Use --show with a task ID to print the full task file content.`,
	RunE: runIndexRetrieve,
}

func runIndexRetrieve(cmd *cobra.Command, args []string) error {
	showID, _ := cmd.Flags().GetString("show")

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	// Show mode: print the file behind a specific task ID.
	if showID != "" {
		text, err := store.Show(context.Background(), showID)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --status, --label, or --parent")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []index.Record, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-50s  %-8s  %-8s  %s\n",
		"ID", "Title", "Status", "Parent", "Labels")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range results {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-50s  %-8s  %-8s  %s\n",
			r.TaskID, title, r.Status, r.Parent, strings.Join(r.Labels, ","))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the task index to YAML or JSON",
	Long: `Export writes the full task index (or a filtered subset) to
<tasks-dir>/.index/export.yaml or export.json. Supports the same filter
flags as retrieve for partial exports.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := index.NewStore(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to .index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to .index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func indexConfig(cmd *cobra.Command) types.IndexConfig {
	tasksDir, _ := cmd.Flags().GetString("tasks-dir")
	if tasksDir == "" {
		tasksDir = viper.GetString("tasks_dir")
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.IndexConfig{
		TasksDir:   tasksDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	status, _ := cmd.Flags().GetString("status")
	label, _ := cmd.Flags().GetString("label")
	parent, _ := cmd.Flags().GetString("parent")
	limit, _ := cmd.Flags().GetInt("limit")

	return index.QueryOptions{
		Query:      queryText,
		Status:     status,
		Label:      label,
		Parent:     parent,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("tasks-dir", "", "directory of generated task files (default from config: backlog/tasks)")
	indexCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Retrieve flags.
	indexRetrieveCmd.Flags().String("query", "", "full-text search query")
	indexRetrieveCmd.Flags().String("status", "", "filter by status (e.g. \"To Do\")")
	indexRetrieveCmd.Flags().String("label", "", "filter by label (e.g. Epic)")
	indexRetrieveCmd.Flags().String("parent", "", "filter by parent task ID (e.g. TASK-1)")
	indexRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	indexRetrieveCmd.Flags().String("show", "", "print the task file content for a task ID")
	indexRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	indexExportCmd.Flags().String("status", "", "filter by status for partial export")
	indexExportCmd.Flags().String("label", "", "filter by label for partial export")
	indexExportCmd.Flags().String("parent", "", "filter by parent task ID for partial export")
	indexExportCmd.Flags().Int("limit", 0, "maximum tasks to export (0 = all)")

	// Wire subcommands.
	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexRetrieveCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
