package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/openjournals/backissue/internal/config"
	"github.com/openjournals/backissue/internal/importer"
	"github.com/openjournals/backissue/internal/locale"
	"github.com/openjournals/backissue/internal/repo"
	"github.com/spf13/cobra"
)

var (
	importDB     string
	importConfig string
	importNoHTML bool
)

func init() {
	importCmd.Flags().StringVar(&importDB, "db", "", "Path to the content store (default $BACKISSUE_DB or ./journal.db)")
	importCmd.Flags().StringVar(&importConfig, "config", "", "Path to a YAML configuration file")
	importCmd.Flags().BoolVar(&importNoHTML, "no-html", false, "Do not generate HTML galleys from article bodies")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <journal> <author> <editor> <email> <directory>",
	Short: "Import article back issues into a journal",
	Long: `Import article back issues into a journal.

Usage:
  backissue import actaex importer chief office@example.org ./archive

Arguments:
  journal    URL path of the target journal
  author     username owning the imported submissions
  editor     username of the assigned editor (must hold the editor role)
  email      contact address for contributors without one
  directory  root of the volume/issue/article tree`,
	Args: cobra.ExactArgs(5),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	journalPath, author, editor, email, root := args[0], args[1], args[2], args[3], args[4]

	cfg, err := config.Load(importConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	db, err := repo.Open(dbPath(importDB))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening store: %v\n", err)
		os.Exit(ExitConfigError)
	}
	defer db.Close()

	ctx := cmd.Context()
	runner, err := importer.NewRunner(ctx, db, journalPath, importer.Options{
		DefaultAuthor: author,
		DefaultEditor: editor,
		Email:         email,
		GenerateHTML:  cfg.GenerateHTML && !importNoHTML,
		CoverStem:     cfg.CoverStem,
		ParserOrder:   cfg.ParserOrder,
		Out:           cmd.OutOrStdout(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	sum, err := runner.Run(ctx, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitDataError)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nDiscovered: %d articles\n", sum.Discovered)
	fmt.Fprintf(out, "Imported:   %d versions\n", sum.Imported)
	fmt.Fprintf(out, "Skipped:    %d\n", sum.Skipped)
	fmt.Fprintf(out, "Failed:     %d\n", sum.Failed)
	if len(sum.Locales) > 0 {
		fmt.Fprintf(out, "Locales:    %s\n", formatLocales(sum.Locales))
	}

	if sum.Failed > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

// formatLocales annotates each locale with its ISO 639-3 language code,
// e.g. "en_US (eng), fr_CA (fra)".
func formatLocales(locales []string) string {
	parts := make([]string, len(locales))
	for i, l := range locales {
		if iso, err := locale.ISO3(l); err == nil {
			parts[i] = fmt.Sprintf("%s (%s)", l, iso)
		} else {
			parts[i] = l
		}
	}
	return strings.Join(parts, ", ")
}
