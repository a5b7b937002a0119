package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"emotionagg/internal/config"
)

//go:embed templates/emotion_scoring_rules.yaml
var defaultRules []byte

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	var model string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold an emotionagg project in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(".", projectName, dsn, model)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://./emotionagg.db", "Database DSN (sqlite:// or postgres://)")
	cmd.Flags().StringVar(&model, "model", config.DefaultModel, "Scoring model: opensmile, emotion4 or emotion8")
	return cmd
}

func runInit(dir, projectName, dsn, model string) error {
	configFile := filepath.Join(dir, defaultConfigPath)
	rulesFile := filepath.Join(dir, config.DefaultRulesPath)
	for _, path := range []string{configFile, rulesFile} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\ndatabase:\n  dsn: %s\n\nmodel: %s\nrules: %s\n\naggregation:\n  concurrency: %d\n  slot_timeout: %s\n  requests_per_second: 0\n\nlogging:\n  level: info\n",
		projectName, dsn, model, config.DefaultRulesPath, config.DefaultConcurrency, config.DefaultSlotTimeout)
	if err := os.WriteFile(configFile, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}
	if err := os.WriteFile(rulesFile, defaultRules, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", rulesFile, err)
	}
	return nil
}
