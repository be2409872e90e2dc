// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/deep-research/internal/docstore"
	"github.com/meshintel/deep-research/internal/ingest"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage the local document index (add, list)",
	Long: `Documents manages the local SQLite document index that the ask command
retrieves from. Use add to ingest text, Markdown, or PDF files (PDF
extraction requires pdftotext on PATH), and list to see what is indexed.`,
}

// --- add subcommand ---

var documentsAddCmd = &cobra.Command{
	Use:   "add [files...]",
	Short: "Ingest files into the document index",
	Long: `Add reads each file, splits it into overlapping chunks at sentence
boundaries, and stores the chunks in the index under the given topic.
Re-adding a file replaces its previous chunks. Files that fail to ingest
are reported and skipped; the rest proceed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentsAdd,
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")

	cfg := appConfig()
	store, err := docstore.NewStore(cfg.DocStore)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer store.Close()

	summary := ingest.IngestFiles(context.Background(), store, args, topic,
		cfg.Ingest, ingest.PdftotextExtractor{}, os.Stdout)

	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed ingestion", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	RunE:  runDocumentsList,
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")

	cfg := appConfig()
	store, err := docstore.NewStore(cfg.DocStore)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer store.Close()

	docs, err := store.Documents(context.Background(), topic)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("No documents indexed.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-50s  %-20s  %s\n", "Document", "Topic", "Chunks")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, d := range docs {
		name := d.Name
		if len(name) > 50 {
			name = name[:47] + "..."
		}
		topicLabel := d.Topic
		if len(topicLabel) > 20 {
			topicLabel = topicLabel[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-50s  %-20s  %d\n", name, topicLabel, d.TotalChunks)
	}
	fmt.Fprintf(os.Stdout, "\n%d document(s)\n", len(docs))
	return nil
}

func init() {
	documentsCmd.PersistentFlags().String("topic", "", "topic label for ingestion and filtering")

	documentsCmd.AddCommand(documentsAddCmd)
	documentsCmd.AddCommand(documentsListCmd)

	rootCmd.AddCommand(documentsCmd)
}
