// Command mat lists the artifacts currently tracked in the cache's SQLite
// secondary index. The original mat tool's markdown/tree-sitter rendering
// is out of scope per spec.md §1 ("terminal rendering and markdown syntax
// highlighting... consume the core but do not define it"); this wrapper
// exists to exercise cache.Index against a real argv entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"llmpipe/appconfig"
	"llmpipe/cache"
)

var rootCmd = &cobra.Command{
	Use:   "mat",
	Short: "List cached artifacts from the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appconfig.Load(os.Getenv("LLMPIPE_CONFIG"))
		if err != nil {
			return err
		}

		dir := cfg.ArtifactDirOrDefault()
		if _, err := cache.New(dir, ""); err != nil {
			return err
		}

		idx, err := cache.OpenIndex(dir)
		if err != nil {
			return err
		}
		defer idx.Close()

		entries, err := idx.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no cached artifacts indexed)")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%-40s %10d bytes  indexed_at=%d\n", e.Key, e.SizeBytes, e.IndexedAt)
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
