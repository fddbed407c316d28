package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/config"
	"github.com/tutorkit/tutorkit/internal/llm"
	"github.com/tutorkit/tutorkit/internal/session"
	"github.com/tutorkit/tutorkit/internal/socratic"
	"github.com/tutorkit/tutorkit/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "tutorkit",
	Short: "Adaptive learning and remediation engine",
	Long: "Tutorkit — terminal adaptive tutor: tracks concept mastery, sequences atoms\n" +
		"under prerequisite constraints, routes knowledge gaps to remediation and runs\n" +
		"Socratic dialogues when you're stuck.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TUTORKIT_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides TUTORKIT_CONFIG env var)")
	rootCmd.PersistentFlags().String("learner", "", "Learner id (overrides config)")

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(gapsCmd)
	rootCmd.AddCommand(remediateCmd)
	rootCmd.AddCommand(dialogueCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importAnkiCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then TUTORKIT_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if l, _ := cmd.Flags().GetString("learner"); l != "" {
		cfg.LearnerID = l
	}
	return cfg, nil
}

// openLoop builds the full engine stack for a command. The returned
// closer owns the store.
func openLoop(cmd *cobra.Command) (*session.Loop, *store.Store, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, cfg, err
	}
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, cfg, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, cfg, fmt.Errorf("open database: %w", err)
	}

	classifier, err := buildClassifier(cmd.Context(), cfg, st)
	if err != nil {
		st.Close()
		return nil, nil, cfg, err
	}

	loop, err := session.New(st, cfg, classifier)
	if err != nil {
		st.Close()
		return nil, nil, cfg, err
	}
	return loop, st, cfg, nil
}

// buildClassifier creates the dialogue turn classifier. With no provider
// configured the heuristic classifier runs alone.
func buildClassifier(ctx context.Context, cfg config.Config, st *store.Store) (socratic.Classifier, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, st.LLMRequests())
	if err == llm.ErrDisabled {
		return socratic.Heuristic{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("configure model provider: %w", err)
	}
	return socratic.NewModelClassifier(provider, cfg.LLM.Timeout), nil
}
