package main

import (
	"fmt"
	"os"

	"github.com/openjournals/backissue/internal/entry"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "List importable articles without touching the store",
	Long: `Scan a volume/issue/article tree and list what an import run would
process, including the version count of each article. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var articles, versions int
	err := entry.Walk(args[0], func(e *entry.Entry) error {
		vs, err := e.Versions()
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", e.Label(), err)
			return nil
		}
		articles++
		versions += len(vs)
		fmt.Fprintf(out, "%s (%d version(s))\n", e.Label(), len(vs))
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitDataError)
	}

	fmt.Fprintf(out, "\n%d articles, %d versions\n", articles, versions)
	return nil
}
