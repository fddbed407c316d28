package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutorkit/tutorkit/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <pack.yaml>",
	Short: "Import a content pack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		pack, err := store.LoadPackFile(args[0])
		if err != nil {
			return err
		}
		concepts, atoms, err := st.Catalog().ImportPack(cmd.Context(), pack)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		fmt.Printf("Imported %s: %d concepts, %d atoms.\n", pack.Name, concepts, atoms)
		return nil
	},
}

var importAnkiCmd = &cobra.Command{
	Use:   "import-anki <export.yaml> <track-id>",
	Short: "Seed mastery from a spaced-repetition export",
	Long: "Seeds review signals from an external spaced-repetition export for concepts\n" +
		"with no native history. Pairs you have already studied here are never touched.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loop, st, cfg, err := openLoop(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		export, err := store.LoadAnkiExport(args[0])
		if err != nil {
			return err
		}
		seeded, err := loop.Calculator().InitializeFromAnki(cmd.Context(), export, st.Signals(), cfg.LearnerID, args[1])
		if err != nil {
			return fmt.Errorf("seed from export: %w", err)
		}
		fmt.Printf("Seeded %d concepts from track %s.\n", seeded, args[1])
		return nil
	},
}
