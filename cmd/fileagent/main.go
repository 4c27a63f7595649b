// Package main wires the interactive menu over the file-manipulation agent:
// fuzzy search, text replace, LLM-driven tabular edits, and GitHub pushes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/agent"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/config"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/logger"
)

// main is the program entry point.
func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var log logger.Logger = logger.NopLogger{}
	if cfg.Verbose {
		log = logger.NewWriterLogger(os.Stderr)
	}

	if cfg.GitHubToken == "" {
		fmt.Println("Warning: GITHUB_TOKEN is not set. GitHub push operations will fail without it.")
	}
	fmt.Printf("Using model %q at %s\n", cfg.Model, cfg.BaseURL)

	m := newMenu(cfg, agent.NewEditor(cfg, agent.WithLogger(log)), log, os.Stdin, os.Stdout)
	m.run()
}

// parseConfig assembles configuration: defaults, then config file, then
// environment, then flags.
func parseConfig() (config.Config, error) {
	_ = godotenv.Load()

	cfg := config.Default()

	configPath := flag.String("config", config.DefaultConfigPath(), "Path to the optional YAML config file")
	model := flag.String("model", "", "Model name (overrides config file and OPENAI_MODEL)")
	baseURL := flag.String("base_url", "", "LLM endpoint base URL (overrides config file and OPENAI_BASE_URL)")
	maxTurns := flag.Int("max_turns", 0, "Max tool-call turns per edit session")
	verbose := flag.Bool("verbose", false, "Verbose logging")
	flag.Parse()

	if err := config.LoadFile(*configPath, &cfg); err != nil {
		return config.Config{}, err
	}
	config.ApplyEnv(&cfg)

	if *model != "" {
		cfg.Model = *model
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *maxTurns > 0 {
		cfg.MaxTurns = *maxTurns
	}
	cfg.Verbose = *verbose

	return config.Normalize(cfg), nil
}
