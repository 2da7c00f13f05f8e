// Package main provides the backissue CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "backissue",
	Short: "Batch importer for journal back issues",
	Long: `backissue imports scanned journal archives into a content store.

It walks a volume/issue/article directory tree, parses each article's
metadata XML (A++ or JATS), and creates the issues, sections, submissions
and publications the archive describes. Failed articles are rolled back
individually; a run never stops at the first bad article.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
}

// dbPath resolves the content store path: the --db flag wins, then the
// BACKISSUE_DB environment variable (a .env file is honored), then a
// journal.db in the working directory.
func dbPath(flag string) string {
	_ = godotenv.Load()
	if flag != "" {
		return flag
	}
	if p := os.Getenv("BACKISSUE_DB"); p != "" {
		return p
	}
	return "journal.db"
}
