// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deep-research CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/deep-research/internal/docstore"
	"github.com/meshintel/deep-research/internal/draft"
	"github.com/meshintel/deep-research/internal/secrets"
	"github.com/meshintel/deep-research/internal/websearch"
	"github.com/meshintel/deep-research/internal/workflow"
	"github.com/meshintel/deep-research/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the deep-research CLI.
var rootCmd = &cobra.Command{
	Use:   "deep-research",
	Short: "Research assistant combining web search, document RAG, and report drafting",
	Long: `deep-research answers research questions two ways: the research command
searches the web, builds a research tree of results and extracted insights,
and renders a quality-scored Markdown report; the ask command retrieves
relevant chunks from locally ingested documents and drafts an answer
grounded in them.

Documents are ingested with the documents subcommand and stored in a local
SQLite index. API keys live in .secrets/ (tavily-api-key, anthropic-api-key);
without them the pipelines degrade to offline behavior instead of failing.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deep-research.yaml or ~/.config/deep-research/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deep-research")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deep-research"))
		}
	}

	viper.SetEnvPrefix("DEEP_RESEARCH")
	viper.AutomaticEnv()

	viper.SetDefault("doc_store.data_dir", "data")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig assembles the component configuration from viper settings and
// loaded secrets. Config file values win over secrets for API keys.
func appConfig() types.AppConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: "deep-research/" + version,
	}

	return types.AppConfig{
		WebSearch: types.WebSearchConfig{
			HTTPConfig: httpCfg,
			APIKey:     secretDefault(secrets.TavilyAPIKey, viper.GetString("web_search.api_key")),
			MaxResults: viper.GetInt("web_search.max_results"),
		},
		DocStore: types.DocStoreConfig{
			DataDir:    viper.GetString("doc_store.data_dir"),
			MaxResults: viper.GetInt("doc_store.max_results"),
			Threshold:  viper.GetFloat64("doc_store.threshold"),
		},
		Ingest: types.IngestConfig{
			ChunkSize:    viper.GetInt("ingest.chunk_size"),
			ChunkOverlap: viper.GetInt("ingest.chunk_overlap"),
		},
		Drafting: types.DraftingConfig{
			AIConfig: types.AIConfig{
				Model:     viper.GetString("drafting.model"),
				APIKey:    secretDefault(secrets.AnthropicAPIKey, viper.GetString("drafting.api_key")),
				MaxTokens: viper.GetInt("drafting.max_tokens"),
			},
			HTTPConfig: httpCfg,
		},
		Workflow: types.WorkflowConfig{
			MaxInsights:      viper.GetInt("workflow.max_insights"),
			SummarySentences: viper.GetInt("workflow.summary_sentences"),
			MaxIterations:    viper.GetInt("workflow.max_iterations"),
		},
	}
}

// newEngine wires the workflow engine from configuration. The caller
// owns the returned store and must close it.
func newEngine() (*workflow.Engine, *docstore.Store, error) {
	cfg := appConfig()

	store, err := docstore.NewStore(cfg.DocStore)
	if err != nil {
		return nil, nil, fmt.Errorf("opening document store: %w", err)
	}

	var web websearch.Provider
	if cfg.WebSearch.APIKey != "" {
		web = websearch.NewTavily(cfg.WebSearch)
	}

	drafter := draft.NewDrafter(cfg.Drafting)
	engine := workflow.New(store, web, drafter, store, cfg.Workflow, os.Stderr)
	return engine, store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
