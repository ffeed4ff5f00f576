package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func newDevFlags(t *testing.T) (*pflag.FlagSet, *pflag.FlagSet) {
	t.Helper()
	flags := pflag.NewFlagSet("dev", pflag.ContinueOnError)
	flags.Bool("mock", false, "")
	flags.Bool("cors", false, "")
	flags.Int("port", 0, "")
	flags.String("host", "", "")
	flags.Bool("verbose", false, "")

	persistent := pflag.NewFlagSet("root", pflag.ContinueOnError)
	persistent.String("config", "", "")
	return flags, persistent
}

func TestResolveDevConfigDefaults(t *testing.T) {
	t.Parallel()
	flags, persistent := newDevFlags(t)
	cfg, err := resolveDevConfig(&commandFlags{flags: flags, persistent: persistent}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Path != "./api.rqc" || cfg.Port != 3000 || cfg.Host != "localhost" {
		t.Fatalf("got %#v", cfg)
	}
}

func TestResolveDevConfigFlagOverridesDefault(t *testing.T) {
	t.Parallel()
	flags, persistent := newDevFlags(t)
	if err := flags.Set("port", "8080"); err != nil {
		t.Fatal(err)
	}
	if err := flags.Set("mock", "true"); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveDevConfig(&commandFlags{flags: flags, persistent: persistent}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Port != 8080 || !cfg.Mock {
		t.Fatalf("got %#v", cfg)
	}
}

func TestResolveDevConfigEnvOverridesConfigFile(t *testing.T) {
	// Uses t.Setenv, which forbids t.Parallel().
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "reqcraft.yaml")
	if err := os.WriteFile(cfgPath, []byte("port: 7000\nhost: fromfile\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REQCRAFT_PORT", "9000")

	flags, persistent := newDevFlags(t)
	if err := persistent.Set("config", cfgPath); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveDevConfig(&commandFlags{flags: flags, persistent: persistent}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("got port %d, want env override 9000", cfg.Port)
	}
	if cfg.Host != "fromfile" {
		t.Fatalf("got host %q, want config-file value", cfg.Host)
	}
}

func TestResolveDevConfigFlagOverridesEnv(t *testing.T) {
	// Uses t.Setenv, which forbids t.Parallel().
	t.Setenv("REQCRAFT_PORT", "9000")

	flags, persistent := newDevFlags(t)
	if err := flags.Set("port", "1234"); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveDevConfig(&commandFlags{flags: flags, persistent: persistent}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Port != 1234 {
		t.Fatalf("got port %d, want flag override 1234", cfg.Port)
	}
}

func TestResolveDevConfigPositionalArgOverridesPath(t *testing.T) {
	t.Parallel()
	flags, persistent := newDevFlags(t)
	cfg, err := resolveDevConfig(&commandFlags{flags: flags, persistent: persistent}, []string{"./other.rqc"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Path != "./other.rqc" {
		t.Fatalf("got path %q", cfg.Path)
	}
}

func TestResolveDevConfigRejectsOutOfRangePort(t *testing.T) {
	t.Parallel()
	flags, persistent := newDevFlags(t)
	if err := flags.Set("port", "70000"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveDevConfig(&commandFlags{flags: flags, persistent: persistent}, nil); err == nil {
		t.Fatal("expected a validation error for an out-of-range port")
	}
}

func TestResolveBuildConfigDefaultPath(t *testing.T) {
	t.Parallel()
	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	flags.Bool("verbose", false, "")
	persistent := pflag.NewFlagSet("root", pflag.ContinueOnError)
	persistent.String("config", "", "")

	cfg, err := resolveBuildConfig(&commandFlags{flags: flags, persistent: persistent}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Path != "./api.rqc" {
		t.Fatalf("got %#v", cfg)
	}
}
