// Command speak fingerprints a piece of text the way a TTS cache key would
// be derived, and reports whether it is already cached. Voice selection,
// audio playback, and the gender-aware voice inference of the original
// biscuit-speaks crate are out of scope per spec.md §1 and SPEC_FULL.md
// §10; this wrapper exercises the fingerprint and cache packages against a
// real argv entry point instead.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"llmpipe/appconfig"
	"llmpipe/cache"
	"llmpipe/fingerprint"
)

var textFlag string

var rootCmd = &cobra.Command{
	Use:   "speak",
	Short: "Report the cache key and cache status for a piece of text",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appconfig.Load(os.Getenv("LLMPIPE_CONFIG"))
		if err != nil {
			return err
		}

		store, err := cache.New(cfg.ArtifactDirOrDefault(), "")
		if err != nil {
			return err
		}

		key := cache.Key(fingerprint.FastHex(textFlag, fingerprint.BlockTrim(), fingerprint.StripBlankLines()), "audio")
		status := "miss"
		if store.Exists(key) {
			status = "hit"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", key, status)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&textFlag, "text", "", "text to fingerprint")
	rootCmd.MarkFlagRequired("text")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
