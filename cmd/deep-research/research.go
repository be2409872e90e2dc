// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/meshintel/deep-research/internal/workflow"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Run a web research workflow and produce a quality-scored report",
	Long: `Research searches the web for the query, builds a research tree of
results and extracted insights, scores the research quality, and renders
a Markdown report. Retrieved snippets are stored in the document index so
later ask runs can draw on them.

Without a Tavily API key the search step degrades to an empty result set
and the report reflects that.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	engine, store, err := newEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	result := engine.Research(context.Background(), query)

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	if err := writeResult(result, format, outputPath); err != nil {
		return err
	}

	if result.Status == workflow.StatusError {
		return fmt.Errorf("research failed: %s", result.ErrorMessage)
	}
	return nil
}

// writeResult renders the run result in the requested format and writes
// it to stdout, or to a file when --output is given. The report format
// emits the Markdown report alone; json and yaml emit the full result
// including the tree snapshot.
func writeResult(result workflow.Result, format, outputPath string) error {
	var text string
	switch format {
	case "report", "":
		text = result.Report + "\n"
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		text = string(data) + "\n"
	case "yaml":
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		text = string(data)
	default:
		return fmt.Errorf("unsupported format %q: use report, json, or yaml", format)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outputPath)
		return nil
	}

	fmt.Print(text)
	return nil
}

func init() {
	researchCmd.Flags().String("format", "report", "output format: report, json, or yaml")
	researchCmd.Flags().String("output", "", "write the output to a file instead of stdout")

	rootCmd.AddCommand(researchCmd)
}
