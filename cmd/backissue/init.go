package main

import (
	"fmt"
	"os"

	"github.com/openjournals/backissue/internal/model"
	"github.com/openjournals/backissue/internal/repo"
	"github.com/spf13/cobra"
)

var (
	initDB          string
	initLocale      string
	initAuthor      string
	initAuthorEmail string
	initEditor      string
	initEditorEmail string
)

func init() {
	initCmd.Flags().StringVar(&initDB, "db", "", "Path to the content store (default $BACKISSUE_DB or ./journal.db)")
	initCmd.Flags().StringVar(&initLocale, "locale", "en_US", "Primary journal locale")
	initCmd.Flags().StringVar(&initAuthor, "author", "importer", "Username of the default author account")
	initCmd.Flags().StringVar(&initAuthorEmail, "author-email", "", "Email of the default author account")
	initCmd.Flags().StringVar(&initEditor, "editor", "editor", "Username of the default editor account")
	initCmd.Flags().StringVar(&initEditorEmail, "editor-email", "", "Email of the default editor account")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init <journal> <title>",
	Short: "Provision a journal and its import accounts",
	Long: `Create the content store (if missing) with one journal and the two
accounts an import run needs: the default author and an editor.

Usage:
  backissue init actaex "Acta Exemplaria" --locale en_US`,
	Args: cobra.ExactArgs(2),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path, title := args[0], args[1]

	db, err := repo.Open(dbPath(initDB))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening store: %v\n", err)
		os.Exit(ExitConfigError)
	}
	defer db.Close()

	ctx := cmd.Context()
	existing, err := db.JournalByPath(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	if existing != nil {
		fmt.Fprintf(os.Stderr, "error: journal %q already exists\n", path)
		os.Exit(ExitDataError)
	}

	journal := &model.Journal{Path: path, Title: title, Locale: initLocale}
	if err := db.CreateJournal(ctx, journal); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	users := []*model.User{
		{Username: initAuthor, Email: initAuthorEmail},
		{Username: initEditor, Email: initEditorEmail, Roles: []string{model.RoleEditor}},
	}
	for _, u := range users {
		if err := db.CreateUser(ctx, u); err != nil {
			fmt.Fprintf(os.Stderr, "error: creating user %s: %v\n", u.Username, err)
			os.Exit(ExitError)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created journal %s (%s)\n", path, title)
	fmt.Fprintf(out, "created users %s (author), %s (editor)\n", initAuthor, initEditor)
	return nil
}
