// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/story-migrate/internal/parse"
	"github.com/pdiddy/story-migrate/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse the plan document and print its structure (dry run)",
	Long: `Parse reads the plan document and prints the epic and story tree it
would migrate, without writing or removing any task files. Use --json
for machine-readable output.`,
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := migrationConfig(cmd)

	epics, err := parse.ParseFile(cfg.SourceFile)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(epics)
	}

	printTree(epics)
	return nil
}

func printTree(epics []types.Epic) {
	if len(epics) == 0 {
		fmt.Println("No epics found.")
		return
	}

	stories := 0
	for _, epic := range epics {
		fmt.Printf("Epic: %s (%d stories)\n", epic.Name, len(epic.Stories))
		for _, story := range epic.Stories {
			fmt.Printf("  %s: %s (%d content lines)\n", story.IDCode, story.Title, len(story.Content))
			stories++
		}
	}

	fmt.Printf("\n%d epic(s), %d story(s)\n", len(epics), stories)
}

func init() {
	parseCmd.Flags().String("source", "", "plan document to parse (default from config: plans/user_stories.md)")
	parseCmd.Flags().String("tasks-dir", "", "tasks directory (unused by parse; accepted for symmetry with migrate)")
	parseCmd.Flags().Bool("json", false, "output the parsed structure as JSON")

	rootCmd.AddCommand(parseCmd)
}
