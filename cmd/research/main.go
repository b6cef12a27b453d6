// Command research is a thin CLI wrapper over the model selector and
// provider registry, exercising a capability-tier resolution end to end.
// The original research tool's prompt-orchestration features (web search,
// multi-turn agent loops) are out of scope per spec.md §1; this wrapper
// exists only to drive selector.Resolve and provider.Provider from a real
// argv entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"llmpipe/appconfig"
	"llmpipe/applog"
	"llmpipe/selector"
)

var tierFlag string

var tierNames = map[string]selector.Capability{
	"fast-cheap":    selector.FastCheap,
	"fast":          selector.Fast,
	"normal":        selector.Normal,
	"normal-cheap":  selector.NormalCheap,
	"smart":         selector.Smart,
	"smart-cheap":   selector.SmartCheap,
	"creative-fast": selector.CreativeFast,
	"literal-fast":  selector.LiteralFast,
}

var rootCmd = &cobra.Command{
	Use:   "research",
	Short: "Resolve a capability tier to a concrete provider/model",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appconfig.Load(os.Getenv("LLMPIPE_CONFIG"))
		if err != nil {
			return err
		}
		logger, err := applog.New(applog.Options{Debug: cfg.Logging.Debug})
		if err != nil {
			return err
		}
		defer logger.Sync()
		sugar := applog.Sugared(logger, applog.CategorySelector)

		tier, ok := tierNames[tierFlag]
		if !ok {
			return fmt.Errorf("unknown tier %q", tierFlag)
		}

		res, err := selector.Resolve(tier)
		if err != nil {
			sugar.Errorw("tier resolution failed", "tier", tierFlag, "error", err)
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", tierFlag, res.Candidate.WireID, res.Variant.VariantName())
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&tierFlag, "tier", "normal", "capability tier to resolve")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
