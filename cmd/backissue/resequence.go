package main

import (
	"fmt"
	"os"

	"github.com/openjournals/backissue/internal/importer"
	"github.com/openjournals/backissue/internal/repo"
	"github.com/spf13/cobra"
)

var resequenceDB string

func init() {
	resequenceCmd.Flags().StringVar(&resequenceDB, "db", "", "Path to the content store (default $BACKISSUE_DB or ./journal.db)")
	rootCmd.AddCommand(resequenceCmd)
}

var resequenceCmd = &cobra.Command{
	Use:   "resequence <journal>",
	Short: "Reorder a journal's published issues newest first",
	Long: `Reorder a journal's published issues newest first (by volume, then
issue number) and mark the newest one as the current issue. Import runs do
this automatically; use this command after manual changes to the store.`,
	Args: cobra.ExactArgs(1),
	RunE: runResequence,
}

func runResequence(cmd *cobra.Command, args []string) error {
	db, err := repo.Open(dbPath(resequenceDB))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening store: %v\n", err)
		os.Exit(ExitConfigError)
	}
	defer db.Close()

	ctx := cmd.Context()
	journal, err := db.JournalByPath(ctx, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	if journal == nil {
		fmt.Fprintf(os.Stderr, "error: journal %q not found\n", args[0])
		os.Exit(ExitConfigError)
	}

	if err := importer.ResequenceIssues(ctx, db, journal.ID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitDataError)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "resequenced issues of %s\n", journal.Path)
	return nil
}
