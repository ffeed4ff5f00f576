package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reqcraft/internal/build"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Build and print parse/resolve diagnostics, then exit",
		Long: "Build model from path (default ./api.rqc), print every collected diagnostic, and exit.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveBuildConfig(&commandFlags{flags: cmd.Flags(), persistent: cmd.Root().PersistentFlags()}, args)
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), cfg)
		},
	}
	return cmd
}

func runBuild(ctx context.Context, cfg *BuildConfig) error {
	res := build.Run(ctx, cfg.Path, build.Options{})
	if res.Diags.HasErrors() {
		printDiagnostics(os.Stderr, res.Diags)
		return exitErrorf(3, "build: %d error(s) found in %s", len(res.Diags.Errors()), cfg.Path)
	}
	if len(res.Diags) > 0 {
		printDiagnostics(os.Stdout, res.Diags)
	}
	fmt.Fprintf(os.Stdout, "%d endpoint(s) resolved from %s\n", len(res.Model.Endpoints), cfg.Path)
	return nil
}
