package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter api.rqc in the current directory",
		Long:  "Write a starter api.rqc skeleton documenting the minimal config block.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{OutputPath: out, Verbose: verbose}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "api.rqc", "Where to write the starter file")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "api.rqc"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return exitErrorf(2, "init: resolve output path: %v", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		return exitErrorf(1, "init: %q already exists", absPath)
	}

	content := strings.TrimSpace(starterApiRqc) + "\n"
	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return exitErrorf(2, "init: cannot write %s: %v", absPath, err)
	}
	fmt.Fprintf(os.Stdout, "Wrote starter api.rqc to %s\n", absPath)
	return nil
}

const starterApiRqc = `config {
  baseUrl http://localhost:3000
}
`
