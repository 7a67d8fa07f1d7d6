package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"skillpath_quiz/internal/config"
	"skillpath_quiz/internal/logger"
	"skillpath_quiz/internal/quizerr"
)

var validateCmd = &cobra.Command{
	Use:   "validate [content-dir]",
	Short: "Check quiz content for integrity problems",
	Long: `Loads the catalog and every scene file the way serve does and lists every
problem found: dangling next_scene_id values, unknown profiles, missing
branches, malformed gender markers. Without an argument the content selected
by SKILLPATH_CONTENT_DIR (or the embedded bundle) is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	contentCfg := cfg.Content
	if len(args) == 1 {
		contentCfg.ContentDir = args[0]
	}
	return validateContent(cmd, contentCfg)
}

func validateContent(cmd *cobra.Command, cfg config.ContentConfig) error {
	out := cmd.OutOrStdout()
	store, err := loadContent(cmd.Context(), cfg)
	if err != nil {
		var qerr *quizerr.Error
		if errors.As(err, &qerr) && len(qerr.Details) > 0 {
			fmt.Fprintf(out, "%s:\n", qerr.Message)
			for _, d := range qerr.Details {
				fmt.Fprintf(out, "  - %s\n", d)
			}
		}
		return err
	}

	catalog := store.Catalog()
	fmt.Fprintf(out, "content OK: %d languages, %d profiles, %d branches\n",
		len(store.Languages()), len(catalog.Profiles), len(catalog.Branches))
	logger.Debug().Strs("languages", store.Languages()).Msg("content validated")
	return nil
}
