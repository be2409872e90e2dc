// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/deep-research/internal/workflow"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from ingested documents",
	Long: `Ask retrieves chunks relevant to the question from the local document
index and drafts an answer grounded in them. With --web-search the web is
also consulted and the snippets are logged, but the drafted answer stays
grounded in the uploaded documents.

With an Anthropic API key the answer is drafted by the Claude API;
without one a deterministic extractive fallback is used. If no relevant
documents are found the command reports an error instead of inventing
an answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	topic, _ := cmd.Flags().GetString("topic")
	useWebSearch, _ := cmd.Flags().GetBool("web-search")

	engine, store, err := newEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	result := engine.Ask(context.Background(), question, workflow.AskOptions{
		Topic:        topic,
		UseWebSearch: useWebSearch,
	})

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	if err := writeResult(result, format, outputPath); err != nil {
		return err
	}

	if result.Status == workflow.StatusError {
		return fmt.Errorf("ask failed: %s", result.ErrorMessage)
	}
	return nil
}

func init() {
	askCmd.Flags().String("topic", "", "restrict retrieval to documents ingested under this topic")
	askCmd.Flags().Bool("web-search", false, "also search the web for supporting snippets")
	askCmd.Flags().String("format", "report", "output format: report, json, or yaml")
	askCmd.Flags().String("output", "", "write the output to a file instead of stdout")

	rootCmd.AddCommand(askCmd)
}
